package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/riskibarqy/market-value-crawler/internal/domain/player"
	"github.com/riskibarqy/market-value-crawler/internal/domain/ranking"
	idgen "github.com/riskibarqy/market-value-crawler/internal/platform/id"
	"github.com/riskibarqy/market-value-crawler/internal/platform/logging"
	"github.com/sourcegraph/conc/pool"
	"go.opentelemetry.io/otel/attribute"
)

// CrawlTarget is one configured league.
type CrawlTarget struct {
	Name string
	Code string
}

type CrawlState string

const (
	StateResolvingClubsPrimary  CrawlState = "resolving_clubs_primary"
	StateResolvingClubsFallback CrawlState = "resolving_clubs_fallback"
	StateFetchingPlayers        CrawlState = "fetching_players"
	StateMerged                 CrawlState = "merged"
	StateSkipped                CrawlState = "skipped"
)

// ClubSource records which endpoint produced a league's club list.
type ClubSource string

const (
	ClubSourcePrimary  ClubSource = "primary"
	ClubSourceFallback ClubSource = "fallback"
	ClubSourceNone     ClubSource = "none"
)

type HarvestReport struct {
	League           string
	Code             string
	ClubSource       ClubSource
	ClubsFound       int
	ClubsSkipped     int
	ClubsFailed      int
	PlayersCollected int
	FinalState       CrawlState
	Duration         time.Duration
}

// LeagueHarvest is every raw player collected for one league, in club order.
type LeagueHarvest struct {
	League  CrawlTarget
	Players []player.Raw
	Report  HarvestReport
}

// LeagueCrawler collects raw players for a league. Upstream failures shrink
// the harvest instead of returning an error.
type LeagueCrawler interface {
	Crawl(ctx context.Context, league CrawlTarget) LeagueHarvest
}

// RankedPlayerSink persists the combined output of a crawl run.
type RankedPlayerSink interface {
	Name() string
	Write(ctx context.Context, rows []ranking.RankedPlayer) error
}

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

type CrawlServiceConfig struct {
	Leagues          []CrawlTarget
	PlayersPerLeague int
	LeagueDelay      time.Duration
	Sleep            SleepFunc
}

type LeagueRunSummary struct {
	League      string
	Code        string
	Harvest     HarvestReport
	Ranked      int
	DroppedNoID int
	Duration    time.Duration
}

type CrawlRunResult struct {
	RunID    string
	Players  []ranking.RankedPlayer
	Leagues  []LeagueRunSummary
	Sinks    []string
	Duration time.Duration
}

type CrawlService struct {
	crawler LeagueCrawler
	ranker  *ranking.Ranker
	sinks   []RankedPlayerSink
	ids     idgen.Generator
	cfg     CrawlServiceConfig
	logger  *logging.Logger
}

func NewCrawlService(
	crawler LeagueCrawler,
	ranker *ranking.Ranker,
	sinks []RankedPlayerSink,
	ids idgen.Generator,
	cfg CrawlServiceConfig,
	logger *logging.Logger,
) *CrawlService {
	if logger == nil {
		logger = logging.Default()
	}
	if ranker == nil {
		ranker = ranking.NewRanker()
	}
	if ids == nil {
		ids = idgen.NewRunIDGenerator("crawl")
	}
	if cfg.Sleep == nil {
		cfg.Sleep = sleepContext
	}
	return &CrawlService{
		crawler: crawler,
		ranker:  ranker,
		sinks:   sinks,
		ids:     ids,
		cfg:     cfg,
		logger:  logger,
	}
}

// Run crawls every configured league in order, pausing LeagueDelay between
// leagues, and hands the combined rows to every sink. A league that yields
// nothing never aborts the run. The returned error is non-nil only for ctx
// cancellation or a failed sink.
func (s *CrawlService) Run(ctx context.Context) (CrawlRunResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CrawlService.Run")
	defer span.End()

	if s.cfg.PlayersPerLeague < 1 {
		return CrawlRunResult{}, fmt.Errorf("%w: players per league must be >= 1", ErrInvalidInput)
	}

	started := time.Now()
	runID, err := s.ids.NewID()
	if err != nil {
		return CrawlRunResult{}, fmt.Errorf("generate run id: %w", err)
	}
	logger := s.logger.With("run_id", runID)
	result := CrawlRunResult{RunID: runID}
	logger.InfoContext(ctx, "crawl run started", "leagues", len(s.cfg.Leagues), "players_per_league", s.cfg.PlayersPerLeague)

	for i, target := range s.cfg.Leagues {
		if i > 0 && s.cfg.LeagueDelay > 0 {
			if err := s.cfg.Sleep(ctx, s.cfg.LeagueDelay); err != nil {
				result.Duration = time.Since(started)
				return result, fmt.Errorf("crawl run interrupted before league %s: %w", target.Code, err)
			}
		}
		if err := ctx.Err(); err != nil {
			result.Duration = time.Since(started)
			return result, fmt.Errorf("crawl run interrupted before league %s: %w", target.Code, err)
		}

		summary, rows := s.runLeague(ctx, logger, target)
		result.Leagues = append(result.Leagues, summary)
		result.Players = append(result.Players, rows...)
	}

	result.Duration = time.Since(started)
	span.SetAttributes(
		attribute.Int("crawl.leagues", len(result.Leagues)),
		attribute.Int("crawl.players", len(result.Players)),
	)

	if len(result.Players) == 0 {
		logger.WarnContext(ctx, "no players were collected overall, check upstream availability, league codes and response shapes",
			"duration", result.Duration,
		)
		return result, nil
	}

	sinkNames, err := s.writeSinks(ctx, result.Players)
	result.Sinks = sinkNames
	if err != nil {
		return result, err
	}

	logger.InfoContext(ctx, "crawl run finished",
		"players", len(result.Players),
		"sinks", sinkNames,
		"duration", result.Duration,
	)
	return result, nil
}

func (s *CrawlService) runLeague(ctx context.Context, logger *logging.Logger, target CrawlTarget) (LeagueRunSummary, []ranking.RankedPlayer) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CrawlService.runLeague")
	defer span.End()
	span.SetAttributes(attribute.String("league.code", target.Code))

	started := time.Now()
	leagueLogger := logger.With("league", target.Name, "league_code", target.Code)

	harvest := s.crawler.Crawl(ctx, target)
	ranked := s.ranker.Rank(target.Name, harvest.Players, s.cfg.PlayersPerLeague)
	for _, name := range ranked.DroppedNoID {
		leagueLogger.WarnContext(ctx, "skipping player with missing id", "player", name)
	}

	summary := LeagueRunSummary{
		League:      target.Name,
		Code:        target.Code,
		Harvest:     harvest.Report,
		Ranked:      len(ranked.Players),
		DroppedNoID: len(ranked.DroppedNoID),
		Duration:    time.Since(started),
	}
	leagueLogger.InfoContext(ctx, "league processed",
		"collected", len(harvest.Players),
		"ranked", summary.Ranked,
		"dropped_no_id", summary.DroppedNoID,
		"duration", summary.Duration,
	)
	return summary, ranked.Players
}

func (s *CrawlService) writeSinks(ctx context.Context, rows []ranking.RankedPlayer) ([]string, error) {
	names := make([]string, 0, len(s.sinks))
	p := pool.New().WithErrors()
	for _, sink := range s.sinks {
		names = append(names, sink.Name())
		p.Go(func() error {
			if err := sink.Write(ctx, rows); err != nil {
				return fmt.Errorf("write %s: %w", sink.Name(), err)
			}
			s.logger.InfoContext(ctx, "crawl output written", "sink", sink.Name(), "rows", len(rows))
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return names, fmt.Errorf("write crawl output: %w", err)
	}
	return names, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
