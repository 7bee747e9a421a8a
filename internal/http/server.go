// Package http serves the MCP HTTP transports plus health and metrics
// endpoints.
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

	"github.com/fyrsmithlabs/gitlabd/internal/config"
)

// Transport is the MCP handler mounted on the HTTP server.
type Transport struct {
	// Path the handler is mounted at, e.g. /mcp or /sse.
	Path string
	// Handler is the transport-specific MCP handler.
	Handler http.Handler
}

// Server wraps echo with the MCP transport, /health, and /metrics.
type Server struct {
	echo   *echo.Echo
	cfg    config.ServerConfig
	logger *zap.Logger
}

// NewServer builds the HTTP server. The prometheus gatherer backs
// /metrics; pass prometheus.DefaultGatherer unless tests need isolation.
func NewServer(cfg config.ServerConfig, transport Transport, gatherer prometheus.Gatherer, logger *zap.Logger) (*Server, error) {
	if transport.Handler == nil {
		return nil, fmt.Errorf("transport handler is required")
	}
	if logger == nil {
		logger = zap.NewNop()
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

			logger.Info("http request",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Int("status", c.Response().Status),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
			)
			return err
		}
	})

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	e.Any(transport.Path, echo.WrapHandler(transport.Handler))
	e.Any(transport.Path+"/*", echo.WrapHandler(transport.Handler))

	return &Server{echo: e, cfg: cfg, logger: logger}, nil
}

// Start serves until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	s.logger.Info("starting http server", zap.String("addr", addr))
	return s.echo.Start(addr)
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.echo.Shutdown(ctx)
}

// Handler exposes the composed handler for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}
