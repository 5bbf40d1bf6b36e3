// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hawkersg/hawker-backend/internal/config"
	"github.com/hawkersg/hawker-backend/internal/seed"
)

// drainDelay keeps the listener open after readiness flips so load
// balancers see the change before connections are refused.
const drainDelay = 5 * time.Second

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		slog.Error("hawker api exited", "error", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := newLogger(cfg.Log)
	slog.SetDefault(logger)
	logger.Info("starting",
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
		"timezone", cfg.App.Timezone,
	)

	a, err := build(ctx, cfg, logger)
	if a != nil {
		defer a.close(logger)
	}
	if err != nil {
		return err
	}

	if err := seedCatalogue(ctx, a, cfg.Seed, logger); err != nil {
		return err
	}
	a.health.SetReady(true)

	serveErr := make(chan error, 1)
	go func() { serveErr <- a.server.Start() }()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(),
		cfg.Server.ShutdownTimeout+drainDelay+5*time.Second)
	defer cancel()

	if err := a.server.Shutdown(shutdownCtx, drainDelay); err != nil {
		logger.Error("http shutdown", "error", err)
	}
	if err := a.telemetry.Shutdown(shutdownCtx); err != nil {
		logger.Error("telemetry flush", "error", err)
	}
	return nil
}

// seedCatalogue loads the hawker-centre manifest into an empty database.
// A failed pass leaves the database untouched and only stops startup when
// the config asks for it.
func seedCatalogue(ctx context.Context, a *app, cfg config.SeedConfig, logger *slog.Logger) error {
	if !cfg.Enabled {
		logger.Info("catalogue seed disabled")
		return nil
	}

	report, err := seed.NewReconciler(seed.NewSQLStore(a.db.DB), logger).Run(ctx, cfg.ManifestPath)
	switch {
	case err != nil && cfg.HaltOnError:
		return fmt.Errorf("catalogue seed: %w", err)
	case err != nil:
		logger.Error("catalogue seed failed, serving without it", "error", err)
		return nil
	}

	logger.Info("catalogue seed finished",
		"skipped", report.Skipped,
		"centres_created", report.CentresCreated,
		"businesses_created", report.BusinessesCreated,
		"rows_skipped", report.RowsSkipped,
	)
	return nil
}

func newLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}
