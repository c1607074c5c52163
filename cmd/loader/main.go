package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/riskibarqy/market-value-crawler/internal/app"
	"github.com/riskibarqy/market-value-crawler/internal/config"
	"github.com/riskibarqy/market-value-crawler/internal/observability"
	"github.com/riskibarqy/market-value-crawler/internal/platform/logging"
	"github.com/riskibarqy/market-value-crawler/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	dataDir := flag.String("data", cfg.Loader.DataDir, "directory holding the bulk CSV files")
	flag.Parse()
	if dir := strings.TrimSpace(*dataDir); dir != "" {
		cfg.Loader.DataDir = dir
	}

	logger := logging.New(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, Name: "loader"})
	logging.SetDefault(logger)

	os.Exit(run(cfg, logger))
}

func run(cfg config.Config, logger *logging.Logger) int {
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	telemetry, err := observability.Start(ctx, cfg, "loader", logger)
	if err != nil {
		logger.Error("start observability", "error", err)
		return 1
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown observability", "error", err)
		}
	}()

	loader, closeStore, err := app.NewLoaderService(ctx, cfg, logger)
	if err != nil {
		logger.Error("build loader", "error", err)
		return 1
	}
	defer func() {
		if err := closeStore(); err != nil {
			logger.Error("close store", "error", err)
		}
	}()

	report, err := loader.Load(ctx)
	if err != nil {
		logger.Error("bulk load aborted", "error", err)
		return 1
	}

	for _, table := range report.Tables {
		fields := []any{
			"table", table.Table,
			"status", table.Status,
			"read", table.Read,
			"written", table.Written,
			"invalid", table.Invalid,
			"nulled_refs", table.NulledRefs,
			"dropped", table.Dropped,
			"duration", table.Duration,
		}
		if table.Status == usecase.TableStatusFailed {
			logger.Error("table load failed", append(fields, "error", table.Err)...)
			continue
		}
		logger.Info("table load result", fields...)
	}

	if !report.AllSuccessful {
		return 1
	}
	return 0
}
