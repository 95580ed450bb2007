// Package api provides the HTTP server for InfraTrack.
// It uses the Echo framework to serve the browser UI, a read-only JSON API,
// health checks and Prometheus metrics.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"infratrack.io/infratrack/internal/config"
	"infratrack.io/infratrack/internal/session"
	"infratrack.io/infratrack/internal/storage"
	"infratrack.io/infratrack/internal/version"
	"infratrack.io/infratrack/internal/web"
)

// CSRF cookie and form field names.
const (
	CSRFCookieName = "_csrf"
	CSRFFormField  = "csrf_token"
)

// Server represents the InfraTrack HTTP server.
type Server struct {
	echo    *echo.Echo
	storage *storage.Storage
	config  *config.Config
	logger  *slog.Logger
	web     *web.Handler
}

// New creates a new server instance with middleware and routes installed.
func New(cfg *config.Config, store *storage.Storage, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}

	flash, err := session.NewFlash(cfg.Security.SecretKey, cfg.Security.FlashTTL, cfg.Server.TLSEnabled)
	if err != nil {
		return nil, fmt.Errorf("create flash store: %w", err)
	}

	webHandler, err := web.NewHandler(store, flash, logger)
	if err != nil {
		return nil, fmt.Errorf("create web handler: %w", err)
	}

	e := echo.New()

	// Configure Echo
	e.HideBanner = true
	e.HidePort = true
	e.Debug = cfg.Server.Debug
	e.HTTPErrorHandler = NewHTTPErrorHandler(webHandler.ErrorPage, logger)

	server := &Server{
		echo:    e,
		storage: store,
		config:  cfg,
		logger:  logger,
		web:     webHandler,
	}

	server.setupMiddleware()
	server.setupRoutes()

	return server, nil
}

// setupMiddleware configures Echo middleware.
func (s *Server) setupMiddleware() {
	s.echo.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))

	s.echo.Use(RequestLogger(s.logger))

	s.echo.Use(middleware.Recover())

	s.echo.Use(RequestMetrics)

	s.echo.Use(SecurityHeaders)

	// Rate limiting
	if s.config.Security.RateLimit > 0 {
		s.echo.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(
			rate.Limit(s.config.Security.RateLimit),
		)))
	}

	// Every unsafe request must echo the token from the _csrf cookie in the
	// csrf_token form field. A missing field is rejected with 400, a
	// mismatch with 403.
	s.echo.Use(middleware.CSRFWithConfig(middleware.CSRFConfig{
		TokenLookup:    "form:" + CSRFFormField,
		ContextKey:     web.CSRFContextKey,
		CookieName:     CSRFCookieName,
		CookiePath:     "/",
		CookieHTTPOnly: true,
		CookieSecure:   s.config.Server.TLSEnabled,
		CookieSameSite: http.SameSiteLaxMode,
	}))
}

// setupRoutes configures routes.
func (s *Server) setupRoutes() {
	s.echo.GET("/health", s.healthCheck)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Read-only JSON API
	v1 := s.echo.Group("/api/v1")
	v1.GET("/hosts", s.listHosts)
	v1.GET("/hosts/:id", s.getHost)
	v1.GET("/tasks", s.listTasks)
	v1.GET("/changes", s.listChanges)
	v1.GET("/stats", s.getStatistics)

	// Browser UI
	s.echo.GET("/", s.web.Index)

	hosts := s.echo.Group("/hosts")
	hosts.GET("", s.web.ListHosts)
	hosts.GET("/add", s.web.AddHost)
	hosts.POST("/add", s.web.AddHost)
	hosts.GET("/edit/:id", s.web.EditHost)
	hosts.POST("/edit/:id", s.web.EditHost)
	hosts.POST("/delete/:id", s.web.DeleteHost)

	tasks := s.echo.Group("/tasks")
	tasks.GET("", s.web.ListTasks)
	tasks.GET("/add", s.web.AddTask)
	tasks.POST("/add", s.web.AddTask)
	tasks.GET("/edit/:id", s.web.EditTask)
	tasks.POST("/edit/:id", s.web.EditTask)
	tasks.POST("/delete/:id", s.web.DeleteTask)

	changes := s.echo.Group("/changes")
	changes.GET("", s.web.ListChanges)
	changes.GET("/add", s.web.AddChange)
	changes.POST("/add", s.web.AddChange)
	changes.GET("/edit/:id", s.web.EditChange)
	changes.POST("/edit/:id", s.web.EditChange)
	changes.POST("/delete/:id", s.web.DeleteChange)
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
}

// Start starts the HTTP server. It blocks until the server stops and
// returns http.ErrServerClosed after a graceful shutdown.
func (s *Server) Start() error {
	addr := s.Addr()

	s.logger.Info("starting InfraTrack server",
		"address", addr,
		"database", s.storage.Driver(),
		"environment", s.config.Environment,
		"debug", s.config.Server.Debug,
		"version", version.Version,
	)

	// Configure server timeouts
	s.echo.Server.ReadTimeout = s.config.Server.ReadTimeout
	s.echo.Server.WriteTimeout = s.config.Server.WriteTimeout

	if s.config.Server.TLSEnabled {
		return s.echo.StartTLS(addr, s.config.Server.TLSCert, s.config.Server.TLSKey)
	}

	return s.echo.Start(addr)
}

// Shutdown gracefully shuts down the server and closes storage.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down InfraTrack server")

	if err := s.echo.Shutdown(ctx); err != nil {
		return fmt.Errorf("error shutting down server: %w", err)
	}

	if err := s.storage.Close(); err != nil {
		return fmt.Errorf("error closing storage: %w", err)
	}

	s.logger.Info("server shutdown complete")
	return nil
}

// healthCheck handles health check requests.
func (s *Server) healthCheck(c echo.Context) error {
	resp := HealthResponse{
		Status:   "healthy",
		Service:  "infratrack",
		Version:  version.Version,
		Database: s.storage.Driver(),
	}

	if err := s.storage.Ping(c.Request().Context()); err != nil {
		resp.Status = "unhealthy"
		resp.Error = "database connection failed"
		return c.JSON(http.StatusServiceUnavailable, resp)
	}

	return c.JSON(http.StatusOK, resp)
}

// ServeHTTP allows Server to implement http.Handler for testing
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}
