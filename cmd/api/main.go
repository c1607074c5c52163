package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/riskibarqy/market-value-crawler/internal/app"
	"github.com/riskibarqy/market-value-crawler/internal/config"
	"github.com/riskibarqy/market-value-crawler/internal/observability"
	"github.com/riskibarqy/market-value-crawler/internal/platform/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := logging.New(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, Name: "api"})
	logging.SetDefault(logger)
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	telemetry, err := observability.Start(ctx, cfg, "api", logger)
	if err != nil {
		logger.Error("start observability", "error", err)
		os.Exit(1)
	}

	queryApp, err := app.NewQueryApp(ctx, cfg, logger)
	if err != nil {
		logger.Error("build app", "error", err)
		os.Exit(1)
	}
	srv := queryApp.Server

	go func() {
		logger.Info("http server starting", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed", "error", err)
			stop()
		}
	}()

	// SIGHUP after a loader run refreshes what the API serves.
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	for running := true; running; {
		select {
		case <-ctx.Done():
			running = false
		case <-hup:
			if err := queryApp.Reload(ctx); err != nil {
				logger.Error("reload failed", "error", err)
			}
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	exitCode := 0
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
		exitCode = 1
	}
	if err := queryApp.Close(); err != nil {
		logger.Error("close app", "error", err)
	}
	if err := telemetry.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown observability", "error", err)
	}

	logger.Info("http server stopped")
	_ = logger.Sync()
	os.Exit(exitCode)
}
