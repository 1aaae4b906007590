// Package http provides the logkit ops endpoint: health, Prometheus metrics
// and the active pipeline status.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/logkit/pkg/logging"
)

// OptionsSource exposes the options currently active in a pipeline.
// *logging.Manager satisfies it.
type OptionsSource interface {
	Options() logging.Options
}

// Server provides HTTP endpoints for logkit.
type Server struct {
	echo     *echo.Echo
	options  OptionsSource
	gatherer prometheus.Gatherer
	logger   *zap.Logger
	config   *Config
	now      func() time.Time
}

// Config holds HTTP server configuration.
type Config struct {
	Addr string
}

// NewServer creates a new HTTP server.
func NewServer(options OptionsSource, gatherer prometheus.Gatherer, logger *zap.Logger, cfg *Config) (*Server, error) {
	if options == nil {
		return nil, fmt.Errorf("options source cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required for request tracking and debugging")
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	if cfg == nil {
		cfg = &Config{Addr: "127.0.0.1:9464"}
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			logger.Debug("http request",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Int("status", c.Response().Status),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
			)

			return err
		}
	})

	s := &Server{
		echo:     e,
		options:  options,
		gatherer: gatherer,
		logger:   logger,
		config:   cfg,
		now:      time.Now,
	}
	s.registerRoutes()

	return s, nil
}

// registerRoutes sets up the HTTP endpoints.
func (s *Server) registerRoutes() {
	s.echo.GET("/health", s.handleHealth)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))

	v1 := s.echo.Group("/api/v1")
	v1.GET("/status", s.handleStatus)
}

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

// StatusResponse is the response body for GET /api/v1/status.
type StatusResponse struct {
	ConsoleEnabled bool   `json:"console_enabled"`
	FileEnabled    bool   `json:"file_enabled"`
	BasePath       string `json:"base_path"`
	CurrentFile    string `json:"current_file,omitempty"`
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

// handleStatus reports the options active right now, including the file the
// next record would be appended to.
func (s *Server) handleStatus(c echo.Context) error {
	opts := s.options.Options()
	resp := StatusResponse{
		ConsoleEnabled: opts.Console.Enabled,
		FileEnabled:    opts.File.Enabled,
		BasePath:       opts.File.BasePath,
	}
	if opts.File.Enabled {
		resp.CurrentFile = logging.FilePath(opts.File.BasePath, s.now())
	}
	return c.JSON(http.StatusOK, resp)
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting ops server", zap.String("addr", s.config.Addr))
		errCh <- s.echo.Start(s.config.Addr)
	}()

	select {
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	}
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down ops server")
	return s.echo.Shutdown(ctx)
}
