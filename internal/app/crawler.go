package app

import (
	"net/http"

	"github.com/riskibarqy/market-value-crawler/external/transfermarkt"
	"github.com/riskibarqy/market-value-crawler/internal/config"
	"github.com/riskibarqy/market-value-crawler/internal/infrastructure/export"
	"github.com/riskibarqy/market-value-crawler/internal/infrastructure/jobqueue"
	"github.com/riskibarqy/market-value-crawler/internal/platform/logging"
	"github.com/riskibarqy/market-value-crawler/internal/usecase"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// NewCrawlService wires fetcher, league crawler and output sinks from cfg.
func NewCrawlService(cfg config.Config, logger *logging.Logger) (*usecase.CrawlService, error) {
	if logger == nil {
		logger = logging.Default()
	}
	cc := cfg.Crawler

	httpClient := &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}
	sinks, err := crawlSinks(cc, httpClient, logger)
	if err != nil {
		return nil, err
	}

	fetcher := transfermarkt.NewFetcher(transfermarkt.FetcherConfig{
		HTTPClient:     httpClient,
		UserAgent:      cc.UserAgent,
		MaxRetries:     cc.MaxRetries,
		BaseDelay:      cc.RetryBaseDelay,
		MaxRPS:         cc.MaxRPS,
		CircuitBreaker: cc.Circuit,
		Logger:         logger.Named("fetcher"),
	})

	crawler := transfermarkt.NewCrawler(fetcher, transfermarkt.CrawlerConfig{
		BaseURL:        cc.BaseURL,
		ClubTimeout:    cc.ClubTimeout,
		PlayerTimeout:  cc.PlayerTimeout,
		ClubDelay:      cc.ClubDelay,
		FallbackPolicy: transfermarkt.FallbackPolicy(cc.FallbackPolicy),
		Workers:        cc.Workers,
		Logger:         logger.Named("crawler"),
	})

	targets := make([]usecase.CrawlTarget, 0, len(cc.Leagues))
	for _, l := range cc.Leagues {
		targets = append(targets, usecase.CrawlTarget{Name: l.Name, Code: l.Code})
	}

	return usecase.NewCrawlService(crawler, nil, sinks, nil, usecase.CrawlServiceConfig{
		Leagues:          targets,
		PlayersPerLeague: cc.PlayersPerLeague,
		LeagueDelay:      cc.LeagueDelay,
	}, logger), nil
}

func crawlSinks(cc config.CrawlerConfig, httpClient *http.Client, logger *logging.Logger) ([]usecase.RankedPlayerSink, error) {
	var sinks []usecase.RankedPlayerSink
	if cc.OutputCSV != "" {
		sinks = append(sinks, export.NewCSVSink(cc.OutputCSV))
	}
	if cc.OutputParquet != "" {
		sinks = append(sinks, export.NewParquetSink(cc.OutputParquet))
	}
	if cc.QStash.TargetURL != "" {
		sink, err := jobqueue.NewQStashSink(jobqueue.QStashSinkConfig{
			BaseURL:   cc.QStash.BaseURL,
			Token:     cc.QStash.Token,
			TargetURL: cc.QStash.TargetURL,
			Retries:   cc.QStash.Retries,
		}, httpClient, logger.Named("qstash"))
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, sink)
	}
	return sinks, nil
}
