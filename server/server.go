package server

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/folioworks/folio/internal/logger"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server is the content API server
type Server struct {
	cfg  *Config
	db   *sql.DB
	echo *echo.Echo
	cron *maintenance
}

// New creates a new server
func New(cfg *Config) (*Server, error) {
	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	s := &Server{cfg: cfg, db: db}

	if err := s.migrate(); err != nil {
		return nil, err
	}
	if err := s.ensureDefaultAdmin(); err != nil {
		return nil, err
	}

	s.setupEcho()
	s.cron = startMaintenance(db)

	return s, nil
}

func (s *Server) setupEcho() {
	e := echo.New()
	e.HideBanner = true

	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()

			err := next(c)

			res := c.Response()
			logger.Info("HTTP request",
				logger.F("method", req.Method),
				logger.F("uri", req.RequestURI),
				logger.F("status", res.Status),
				logger.F("duration", time.Since(start).String()))
			observeRequest(req.Method, c.Path(), res.Status)

			return err
		}
	})

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.CORS())

	e.GET("/health", s.handleHealth)
	if s.cfg.Metrics {
		e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	}

	api := e.Group("/api/v1")

	// Auth endpoints
	api.POST("/auth/login", s.handleLogin)
	api.POST("/auth/refresh", s.handleRefresh)

	authed := api.Group("/auth")
	authed.Use(s.authMiddleware)
	authed.POST("/logout", s.handleLogout)
	authed.GET("/me", s.handleMe)
	authed.PUT("/change-password", s.handleChangePassword)

	// Public content reads; the portfolio site consumes these
	api.GET("/projects", s.handleListProjects)
	api.GET("/certificates", s.handleListCertificates)
	api.GET("/timeline", s.handleListTimeline)
	api.GET("/skills", s.handleListSkills)
	api.POST("/messages", s.handleCreateMessage)

	// Admin content mutations
	admin := api.Group("")
	admin.Use(s.authMiddleware, s.requireAdmin)
	admin.POST("/projects", s.handleCreateProject)
	admin.PUT("/projects/:id", s.handleUpdateProject)
	admin.DELETE("/projects/:id", s.handleDeleteProject)
	admin.POST("/certificates", s.handleCreateCertificate)
	admin.PUT("/certificates/:id", s.handleUpdateCertificate)
	admin.DELETE("/certificates/:id", s.handleDeleteCertificate)
	admin.POST("/timeline", s.handleCreateTimelineItem)
	admin.PUT("/timeline/:id", s.handleUpdateTimelineItem)
	admin.DELETE("/timeline/:id", s.handleDeleteTimelineItem)
	admin.POST("/skills", s.handleCreateSkill)
	admin.PUT("/skills/:id", s.handleUpdateSkill)
	admin.DELETE("/skills/:id", s.handleDeleteSkill)
	admin.GET("/messages", s.handleListMessages)
	admin.PUT("/messages/:id/read", s.handleMarkMessageRead)
	admin.DELETE("/messages/:id", s.handleDeleteMessage)

	s.echo = e
}

// Close stops maintenance and closes the database connection
func (s *Server) Close() error {
	if s.cron != nil {
		s.cron.stop()
	}
	return s.db.Close()
}

// Router returns the HTTP handler
func (s *Server) Router() http.Handler {
	return s.echo
}

// Start starts the server
func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// ok writes a success envelope.
func ok(c echo.Context, status int, data interface{}) error {
	return c.JSON(status, map[string]interface{}{
		"data":    data,
		"success": true,
	})
}

// fail writes a failure envelope.
func fail(c echo.Context, status int, msg string) error {
	return c.JSON(status, map[string]interface{}{
		"success": false,
		"message": msg,
	})
}
