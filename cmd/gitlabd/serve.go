package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/gitlabd/internal/config"
	"github.com/fyrsmithlabs/gitlabd/internal/glclient"
	httpserver "github.com/fyrsmithlabs/gitlabd/internal/http"
	"github.com/fyrsmithlabs/gitlabd/internal/logging"
	"github.com/fyrsmithlabs/gitlabd/internal/mcp"
)

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger, err := logging.New(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gl, err := glclient.New(cfg.GitLab, version, logger)
	if err != nil {
		return err
	}

	metrics := mcp.NewMetrics(prometheus.DefaultRegisterer)
	srv, err := mcp.NewServer(cfg, gl, mcp.Options{
		Version: version,
		Logger:  logger,
		Metrics: metrics,
	})
	if err != nil {
		return err
	}

	logger.Info("gitlabd starting",
		zap.String("version", version),
		zap.String("transport", string(cfg.Transport)),
		zap.String("gitlab_url", cfg.GitLab.APIURL),
		zap.Bool("read_only", cfg.GitLab.ReadOnly),
		zap.Int("tools", len(srv.AvailableTools())))

	if cfg.Transport == config.ModeStdio {
		return srv.Run(ctx)
	}
	return serveHTTP(ctx, cfg, srv, logger)
}

func serveHTTP(ctx context.Context, cfg *config.Config, srv *mcp.Server, logger *zap.Logger) error {
	transport := httpserver.Transport{Path: "/mcp", Handler: srv.StreamableHTTPHandler()}
	if cfg.Transport == config.ModeSSE {
		transport = httpserver.Transport{Path: "/sse", Handler: srv.SSEHandler()}
	}

	hs, err := httpserver.NewServer(cfg.Server, transport, prometheus.DefaultGatherer, logger)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- hs.Start()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return hs.Shutdown(shutdownCtx)
}
