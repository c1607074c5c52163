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

const sampleRows = 5

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	schedule := flag.String("schedule", cfg.Crawler.Schedule, "cron spec; empty runs a single crawl and exits")
	flag.Parse()

	logger := logging.New(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, Name: "crawler"})
	logging.SetDefault(logger)

	os.Exit(run(cfg, strings.TrimSpace(*schedule), logger))
}

func run(cfg config.Config, schedule string, logger *logging.Logger) int {
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	telemetry, err := observability.Start(ctx, cfg, "crawler", logger)
	if err != nil {
		logger.Error("start observability", "error", err)
		return 1
	}
	defer shutdownTelemetry(telemetry, logger)

	service, err := app.NewCrawlService(cfg, logger)
	if err != nil {
		logger.Error("build crawler", "error", err)
		return 1
	}

	if schedule == "" {
		if err := crawlOnce(ctx, service, logger); err != nil {
			return 1
		}
		return 0
	}

	scheduler, err := app.NewScheduler(ctx, schedule, func(ctx context.Context) {
		_ = crawlOnce(ctx, service, logger)
	}, logger)
	if err != nil {
		logger.Error("invalid crawler schedule", "error", err)
		return 1
	}

	logger.Info("crawler scheduled", "schedule", schedule)
	_ = crawlOnce(ctx, service, logger)
	scheduler.Start()
	<-ctx.Done()

	logger.Info("waiting for running crawl to stop")
	<-scheduler.Stop().Done()
	return 0
}

func shutdownTelemetry(telemetry *observability.Runtime, logger *logging.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := telemetry.Shutdown(ctx); err != nil {
		logger.Error("shutdown observability", "error", err)
	}
}

func crawlOnce(ctx context.Context, service *usecase.CrawlService, logger *logging.Logger) error {
	result, err := service.Run(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "crawl failed", "error", err)
		return err
	}

	for _, l := range result.Leagues {
		logger.InfoContext(ctx, "league summary",
			"run_id", result.RunID,
			"league", l.League,
			"club_source", l.Harvest.ClubSource,
			"clubs_found", l.Harvest.ClubsFound,
			"clubs_failed", l.Harvest.ClubsFailed,
			"players_collected", l.Harvest.PlayersCollected,
			"ranked", l.Ranked,
		)
	}
	for i, p := range result.Players {
		if i == sampleRows {
			break
		}
		logger.InfoContext(ctx, "sample row",
			"league", p.League,
			"name", p.Name,
			"team", p.Team,
			"position", p.Position,
			"market_value", p.MarketValue,
		)
	}
	logger.InfoContext(ctx, "crawl finished",
		"run_id", result.RunID,
		"players", len(result.Players),
		"sinks", result.Sinks,
		"duration", result.Duration,
	)
	return nil
}
