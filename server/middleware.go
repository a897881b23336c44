package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/folioworks/folio/internal/model"
	"github.com/labstack/echo/v4"
)

// authMiddleware validates the bearer token and loads the user into the
// request context.
func (s *Server) authMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		auth := c.Request().Header.Get("Authorization")
		if auth == "" {
			return fail(c, http.StatusUnauthorized, "authorization required")
		}

		token := strings.TrimPrefix(auth, "Bearer ")
		if token == auth {
			return fail(c, http.StatusUnauthorized, "invalid authorization format")
		}

		var userID, role string
		var expiresAt time.Time
		err := s.db.QueryRow(`
			SELECT u.id, u.role, s.expires_at
			FROM sessions s JOIN users u ON u.id = s.user_id
			WHERE s.token = $1`,
			token,
		).Scan(&userID, &role, &expiresAt)
		if err != nil {
			return fail(c, http.StatusUnauthorized, "invalid token")
		}

		if time.Now().After(expiresAt) {
			return fail(c, http.StatusUnauthorized, "token expired")
		}

		c.Set("user_id", userID)
		c.Set("user_role", role)
		c.Set("session_token", token)
		return next(c)
	}
}

// requireAdmin gates mutating content endpoints to the admin role.
func (s *Server) requireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		role, _ := c.Get("user_role").(string)
		if role != model.RoleAdmin {
			return fail(c, http.StatusForbidden, "admin role required")
		}
		return next(c)
	}
}
