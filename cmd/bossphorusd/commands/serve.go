package commands

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/aplbrain/bossphorus/internal/api"
	"github.com/aplbrain/bossphorus/internal/app"
	"github.com/aplbrain/bossphorus/internal/config"
	"github.com/aplbrain/bossphorus/internal/telemetry/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the cache proxy HTTP server",
	Long: `Start the bossphorusd HTTP server.

Loads configuration, opens the metadata store, starts the usage
pipeline, and serves the cutout/metadata/health/metrics HTTP surface
until interrupted.

Examples:
  # Start with default config location (env vars only)
  bossphorusd serve

  # Start with a config file
  bossphorusd serve --config /etc/bossphorusd/config.yaml`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(GetConfigFile())
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	if err := logger.Init(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: "stdout",
	}); err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := app.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initialize application: %w", err)
	}

	logger.Info("configuration loaded",
		"upstream_host", cfg.Upstream.Host,
		"cache_root", cfg.Cache.RootPath,
		"cuboid_size", cfg.Cache.CuboidSize,
		"max_blocks", cfg.Eviction.MaxBlocks,
		"usage_tracker", cfg.Usage.Tracker,
		"blockstore_kind", cfg.Blockstore.Kind,
	)

	// The cutout/metadata/health surface and the Prometheus endpoint
	// share one listener — spec.md names only a single HTTP surface, so
	// METRICS_ADDR doubles as the combined bind address.
	handler := api.NewRouter(a.Manager, a.Registry)
	srv := &http.Server{
		Addr:    cfg.Metrics.Addr,
		Handler: handler,
	}

	serverDone := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", cfg.Metrics.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverDone <- err
			return
		}
		serverDone <- nil
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigChan:
		signal.Stop(sigChan)
		logger.Info("shutdown signal received")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown: %w", err)
		}
		logger.Info("server stopped gracefully")
	case err := <-serverDone:
		signal.Stop(sigChan)
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		logger.Info("server stopped")
	}

	return nil
}
