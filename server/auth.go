package server

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"time"

	"github.com/folioworks/folio/internal/logger"
	"github.com/folioworks/folio/internal/model"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
)

const (
	accessTokenTTL  = 24 * time.Hour
	refreshTokenTTL = 30 * 24 * time.Hour
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// handleLogin verifies credentials and issues an access + refresh token pair
func (s *Server) handleLogin(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request")
	}
	if req.Email == "" || req.Password == "" {
		return fail(c, http.StatusBadRequest, "email and password required")
	}

	var user model.User
	var passwordHash string
	err := s.db.QueryRow(`
		SELECT id, name, email, role, password_hash FROM users WHERE email = $1`,
		req.Email,
	).Scan(&user.ID, &user.Name, &user.Email, &user.Role, &passwordHash)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(req.Password)); err != nil {
		return fail(c, http.StatusUnauthorized, "invalid credentials")
	}

	token, _, err := s.createSession(user.ID)
	if err != nil {
		logger.Error("Session create failed", logger.F("error", err))
		return fail(c, http.StatusInternalServerError, "internal error")
	}

	refresh, err := s.createRefreshToken(user.ID)
	if err != nil {
		logger.Error("Refresh token create failed", logger.F("error", err))
		return fail(c, http.StatusInternalServerError, "internal error")
	}

	sessionsIssued.Inc()
	logger.Info("User logged in", logger.F("email", user.Email))

	return ok(c, http.StatusOK, model.LoginResult{
		User:         user,
		Token:        token,
		RefreshToken: refresh,
	})
}

// handleLogout deletes the presented session. Idempotent.
func (s *Server) handleLogout(c echo.Context) error {
	token := c.Get("session_token").(string)
	if _, err := s.db.Exec(`DELETE FROM sessions WHERE token = $1`, token); err != nil {
		logger.Warn("Logout delete failed", logger.F("error", err))
	}
	return ok(c, http.StatusOK, nil)
}

// handleMe returns the authenticated user
func (s *Server) handleMe(c echo.Context) error {
	userID := c.Get("user_id").(string)

	var user model.User
	err := s.db.QueryRow(`
		SELECT id, name, email, role FROM users WHERE id = $1`,
		userID,
	).Scan(&user.ID, &user.Name, &user.Email, &user.Role)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "user not found")
	}

	return ok(c, http.StatusOK, user)
}

// handleChangePassword verifies the old password before setting the new one
func (s *Server) handleChangePassword(c echo.Context) error {
	var req changePasswordRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request")
	}
	if len(req.NewPassword) < 8 {
		return fail(c, http.StatusBadRequest, "password must be at least 8 characters")
	}

	userID := c.Get("user_id").(string)

	var passwordHash string
	if err := s.db.QueryRow(`SELECT password_hash FROM users WHERE id = $1`, userID).
		Scan(&passwordHash); err != nil {
		return fail(c, http.StatusUnauthorized, "user not found")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(req.OldPassword)); err != nil {
		return fail(c, http.StatusUnauthorized, "invalid credentials")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "internal error")
	}

	if _, err := s.db.Exec(`UPDATE users SET password_hash = $1, updated_at = NOW() WHERE id = $2`,
		string(hash), userID); err != nil {
		return fail(c, http.StatusInternalServerError, "internal error")
	}

	return ok(c, http.StatusOK, nil)
}

// handleRefresh mints a new access token from a valid refresh token
func (s *Server) handleRefresh(c echo.Context) error {
	var req refreshRequest
	if err := c.Bind(&req); err != nil || req.RefreshToken == "" {
		return fail(c, http.StatusBadRequest, "refresh token required")
	}

	var userID string
	var expiresAt time.Time
	err := s.db.QueryRow(`
		SELECT user_id, expires_at FROM refresh_tokens WHERE token = $1`,
		req.RefreshToken,
	).Scan(&userID, &expiresAt)
	if err != nil || time.Now().After(expiresAt) {
		return fail(c, http.StatusUnauthorized, "invalid refresh token")
	}

	token, tokenExpiry, err := s.createSession(userID)
	if err != nil {
		logger.Error("Session create failed", logger.F("error", err))
		return fail(c, http.StatusInternalServerError, "internal error")
	}

	sessionsIssued.Inc()

	return ok(c, http.StatusOK, model.RefreshResult{
		Token:     token,
		ExpiresIn: int64(time.Until(tokenExpiry).Seconds()),
	})
}

// createSession creates a new session for a user
func (s *Server) createSession(userID string) (string, time.Time, error) {
	token, err := generateToken()
	if err != nil {
		return "", time.Time{}, err
	}

	expiresAt := time.Now().Add(accessTokenTTL)
	_, err = s.db.Exec(`
		INSERT INTO sessions (user_id, token, expires_at) VALUES ($1, $2, $3)`,
		userID, token, expiresAt,
	)
	return token, expiresAt, err
}

// createRefreshToken creates a new refresh token for a user
func (s *Server) createRefreshToken(userID string) (string, error) {
	token, err := generateToken()
	if err != nil {
		return "", err
	}

	_, err = s.db.Exec(`
		INSERT INTO refresh_tokens (user_id, token, expires_at) VALUES ($1, $2, $3)`,
		userID, token, time.Now().Add(refreshTokenTTL),
	)
	return token, err
}

func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// ensureDefaultAdmin seeds an admin account when the users table is empty.
func (s *Server) ensureDefaultAdmin() error {
	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	if s.cfg.AdminPassword == "" {
		logger.Warn("No users and FOLIO_ADMIN_PASSWORD unset, skipping admin seed")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(s.cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(`
		INSERT INTO users (name, email, password_hash, role) VALUES ($1, $2, $3, $4)`,
		s.cfg.AdminName, s.cfg.AdminEmail, string(hash), model.RoleAdmin,
	)
	if err == nil {
		logger.Info("Seeded default admin", logger.F("email", s.cfg.AdminEmail))
	}
	return err
}
