// Package api provides the HTTP API server for Quayside. It uses the
// Echo framework to serve REST endpoints and a WebSocket stream for the
// dashboard's live metrics view.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"quayside/internal/catalog"
	"quayside/internal/config"
	"quayside/internal/ops"
	"quayside/internal/version"
)

// Server represents the Quayside API server.
type Server struct {
	echo    *echo.Echo
	ops     *ops.Service
	catalog *catalog.Catalog
	config  *config.Config

	// statsInterval is the WebSocket push cadence; tests shorten it.
	statsInterval time.Duration
}

// requestValidator adapts go-playground/validator to Echo's Validator
// interface.
type requestValidator struct {
	validate *validator.Validate
}

func (v *requestValidator) Validate(i interface{}) error {
	if err := v.validate.Struct(i); err != nil {
		return BadRequestError("Validation failed", err.Error())
	}
	return nil
}

// New creates a new API server instance.
func New(cfg *config.Config, service *ops.Service, cat *catalog.Catalog) *Server {
	e := echo.New()

	e.HideBanner = true
	e.HidePort = true
	e.Debug = cfg.Server.Debug
	e.HTTPErrorHandler = HTTPErrorHandler
	e.Validator = &requestValidator{validate: validator.New()}

	server := &Server{
		echo:          e,
		ops:           service,
		catalog:       cat,
		config:        cfg,
		statsInterval: statsPushInterval,
	}

	server.setupMiddleware()
	server.setupRoutes()

	return server
}

// setupMiddleware configures Echo middleware.
func (s *Server) setupMiddleware() {
	s.echo.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "[${time_rfc3339}] ${status} ${method} ${uri} (${latency_human})\n",
	}))

	s.echo.Use(middleware.Recover())
	s.echo.Use(middleware.RequestID())

	if len(s.config.Server.AllowedOrigins) > 0 {
		s.echo.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: s.config.Server.AllowedOrigins,
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete},
			AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
		}))
	}

	if s.config.Server.RateLimit > 0 {
		s.echo.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(
			rate.Limit(s.config.Server.RateLimit),
		)))
	}
}

// setupRoutes configures API routes.
func (s *Server) setupRoutes() {
	s.echo.GET("/health", s.healthCheck)

	v1 := s.echo.Group("/api/v1")

	containers := v1.Group("/containers")
	containers.GET("", s.listContainers)
	containers.POST("", s.createContainer)
	containers.POST("/actions/:action", s.bulkAction)
	containers.GET("/:id", s.getContainer)
	containers.DELETE("/:id", s.deleteContainer)
	containers.POST("/:id/actions/:action", s.singleAction)
	containers.GET("/:id/stats", s.getContainerStats)
	containers.GET("/:id/logs", s.getContainerLogs)

	clusters := v1.Group("/clusters")
	clusters.GET("", s.listClusters)
	clusters.POST("/:cluster/actions/:action", s.clusterAction)

	services := v1.Group("/services")
	services.GET("", s.listServices)
	services.POST("", s.registerService)
	services.POST("/:name/deploy", s.deployService)

	v1.GET("/host/metrics", s.getHostMetrics)
	v1.GET("/ws/stats", s.streamStats)
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)

	s.echo.Server.ReadTimeout = s.config.Server.ReadTimeout
	s.echo.Server.WriteTimeout = s.config.Server.WriteTimeout

	return s.echo.Start(addr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.echo.Shutdown(ctx); err != nil {
		return fmt.Errorf("error shutting down server: %w", err)
	}
	return nil
}

// healthCheck handles GET /health. The daemon ping tells operators
// whether a degraded dashboard is Quayside's fault or Docker's.
func (s *Server) healthCheck(c echo.Context) error {
	daemon := "reachable"
	status := "healthy"
	code := http.StatusOK

	if err := s.ops.Ping(c.Request().Context()); err != nil {
		daemon = err.Error()
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	return c.JSON(code, map[string]interface{}{
		"status":  status,
		"service": "quayside",
		"version": version.Get().Version,
		"docker":  daemon,
	})
}

// ServeHTTP allows Server to implement http.Handler for testing
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}
