package transfermarkt

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/market-value-crawler/internal/domain/player"
	"github.com/riskibarqy/market-value-crawler/internal/platform/logging"
	"github.com/riskibarqy/market-value-crawler/internal/usecase"
)

const (
	defaultClubTimeout   = 30 * time.Second
	defaultPlayerTimeout = 45 * time.Second
	defaultClubDelay     = 600 * time.Millisecond

	clubSampleChars   = 300
	playerSampleChars = 100
	decodeSampleChars = 200
	entrySampleChars  = 100
)

// PageFetcher performs one logical GET with retries.
type PageFetcher interface {
	Fetch(ctx context.Context, req Request) Result
}

// FallbackPolicy decides when the competition endpoint is tried after the
// clubs endpoint.
type FallbackPolicy string

const (
	FallbackEmptyOrMissing FallbackPolicy = "empty_or_missing"
	FallbackMissingOnly    FallbackPolicy = "missing_only"
)

type CrawlerConfig struct {
	BaseURL        string
	ClubTimeout    time.Duration
	PlayerTimeout  time.Duration
	ClubDelay      time.Duration
	FallbackPolicy FallbackPolicy
	Workers        int
	Logger         *logging.Logger
	Sleep          SleepFunc
}

// Crawler resolves a league's clubs and collects their players.
type Crawler struct {
	fetcher       PageFetcher
	baseURL       string
	clubTimeout   time.Duration
	playerTimeout time.Duration
	clubDelay     time.Duration
	policy        FallbackPolicy
	workers       int
	logger        *logging.Logger
	sleep         SleepFunc
}

func NewCrawler(fetcher PageFetcher, cfg CrawlerConfig) *Crawler {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	clubTimeout := cfg.ClubTimeout
	if clubTimeout <= 0 {
		clubTimeout = defaultClubTimeout
	}
	playerTimeout := cfg.PlayerTimeout
	if playerTimeout <= 0 {
		playerTimeout = defaultPlayerTimeout
	}
	clubDelay := cfg.ClubDelay
	if clubDelay < 0 {
		clubDelay = defaultClubDelay
	}
	policy := cfg.FallbackPolicy
	if policy != FallbackMissingOnly {
		policy = FallbackEmptyOrMissing
	}
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	sleep := cfg.Sleep
	if sleep == nil {
		sleep = SleepContext
	}

	return &Crawler{
		fetcher:       fetcher,
		baseURL:       strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		clubTimeout:   clubTimeout,
		playerTimeout: playerTimeout,
		clubDelay:     clubDelay,
		policy:        policy,
		workers:       workers,
		logger:        logger,
		sleep:         sleep,
	}
}

// Crawl never fails: upstream problems shrink the harvest and are recorded
// in the report. Only ctx cancellation stops it early.
func (c *Crawler) Crawl(ctx context.Context, league usecase.CrawlTarget) usecase.LeagueHarvest {
	started := time.Now()
	logger := c.logger.With("league", league.Name, "league_code", league.Code)
	report := usecase.HarvestReport{League: league.Name, Code: league.Code, ClubSource: usecase.ClubSourceNone}
	finish := func(players []player.Raw, state usecase.CrawlState) usecase.LeagueHarvest {
		report.PlayersCollected = len(players)
		report.FinalState = state
		report.Duration = time.Since(started)
		logger.InfoContext(ctx, "league crawl finished",
			"state", state,
			"club_source", report.ClubSource,
			"clubs_found", report.ClubsFound,
			"clubs_skipped", report.ClubsSkipped,
			"clubs_failed", report.ClubsFailed,
			"players", report.PlayersCollected,
			"duration", report.Duration,
		)
		return usecase.LeagueHarvest{League: league, Players: players, Report: report}
	}

	logger.InfoContext(ctx, "resolving league clubs", "state", usecase.StateResolvingClubsPrimary)
	clubs := c.resolveClubs(ctx, logger, c.competitionURL(league.Code)+"/clubs")
	if clubs.Found {
		report.ClubSource = usecase.ClubSourcePrimary
	}

	if c.needsFallback(clubs) && ctx.Err() == nil {
		if clubs.Found {
			logger.InfoContext(ctx, "primary endpoint yielded zero clubs, trying fallback", "state", usecase.StateResolvingClubsFallback)
		} else {
			logger.InfoContext(ctx, "primary endpoint yielded no club list, trying fallback", "state", usecase.StateResolvingClubsFallback)
		}
		clubs = c.resolveClubs(ctx, logger, c.competitionURL(league.Code))
		report.ClubSource = usecase.ClubSourceNone
		if clubs.Found {
			report.ClubSource = usecase.ClubSourceFallback
		}
	}

	if len(clubs.Entities) == 0 {
		logger.ErrorContext(ctx, "unable to fetch club list after all attempts, skipping league")
		return finish(nil, usecase.StateSkipped)
	}
	report.ClubsFound = len(clubs.Entities)

	logger.InfoContext(ctx, "fetching players per club", "state", usecase.StateFetchingPlayers, "clubs", report.ClubsFound)
	outcomes := c.collectPlayers(ctx, logger, clubs.Entities)

	var players []player.Raw
	for _, out := range outcomes {
		switch out.status {
		case clubSkipped:
			report.ClubsSkipped++
		case clubFailed:
			report.ClubsFailed++
		}
		players = append(players, out.players...)
	}
	if len(players) == 0 {
		logger.WarnContext(ctx, "no players collected for any club")
	}
	return finish(players, usecase.StateMerged)
}

func (c *Crawler) needsFallback(res Resolution) bool {
	if !res.Found {
		return true
	}
	return c.policy == FallbackEmptyOrMissing && len(res.Entities) == 0
}

func (c *Crawler) resolveClubs(ctx context.Context, logger *logging.Logger, endpoint string) Resolution {
	logger.DebugContext(ctx, "requesting club list", "url", endpoint)
	res := c.fetcher.Fetch(ctx, Request{URL: endpoint, Timeout: c.clubTimeout})
	if !res.OK() {
		logger.WarnContext(ctx, "club endpoint failed", "url", endpoint, "attempts", res.Attempts, "error", res.Err)
		return Resolution{Source: SourceNone}
	}

	resolution, err := ResolveBody(res.Body, EntityClubs)
	if err != nil {
		logger.ErrorContext(ctx, "failed to decode club list",
			"url", endpoint,
			"error", err,
			"sample", sample(res.Body, decodeSampleChars),
		)
		return resolution
	}
	if !resolution.Found {
		logger.ErrorContext(ctx, "could not find a list of clubs in response",
			"url", endpoint,
			"sample", sample(res.Body, clubSampleChars),
		)
		return resolution
	}

	logger.InfoContext(ctx, "found club list", "url", endpoint, "source", resolution.Source, "clubs", len(resolution.Entities))
	return resolution
}

type clubStatus int

const (
	clubCollected clubStatus = iota
	clubSkipped
	clubFailed
)

type clubOutcome struct {
	status  clubStatus
	players []player.Raw
}

// collectPlayers fetches every club either sequentially or on a bounded
// pool. Each club writes only its own slot, so the merged order is club order.
func (c *Crawler) collectPlayers(ctx context.Context, logger *logging.Logger, clubs []any) []clubOutcome {
	outcomes := make([]clubOutcome, len(clubs))

	if c.workers <= 1 || len(clubs) <= 1 {
		c.collectSequential(ctx, logger, clubs, outcomes)
		return outcomes
	}

	pool, err := ants.NewPool(c.workers)
	if err != nil {
		logger.WarnContext(ctx, "create club worker pool failed, falling back to sequential", "error", err)
		c.collectSequential(ctx, logger, clubs, outcomes)
		return outcomes
	}
	defer pool.Release()

	var wg sync.WaitGroup
	for i, entry := range clubs {
		wg.Add(1)
		if submitErr := pool.Submit(func() {
			defer wg.Done()
			if ctx.Err() != nil {
				outcomes[i] = clubOutcome{status: clubFailed}
				return
			}
			outcomes[i] = c.fetchClub(ctx, logger, entry, i, len(clubs))
		}); submitErr != nil {
			wg.Done()
			logger.WarnContext(ctx, "submit club task failed", "club_index", i, "error", submitErr)
			outcomes[i] = clubOutcome{status: clubFailed}
		}
	}
	wg.Wait()
	return outcomes
}

// collectSequential stops fetching once ctx is done; remaining clubs count as failed.
func (c *Crawler) collectSequential(ctx context.Context, logger *logging.Logger, clubs []any, outcomes []clubOutcome) {
	for i, entry := range clubs {
		if ctx.Err() != nil {
			outcomes[i] = clubOutcome{status: clubFailed}
			continue
		}
		outcomes[i] = c.fetchClub(ctx, logger, entry, i, len(clubs))
	}
}

func (c *Crawler) fetchClub(ctx context.Context, logger *logging.Logger, entry any, index, total int) clubOutcome {
	club, ok := entry.(map[string]any)
	if !ok {
		logger.WarnContext(ctx, "skipping club entry that is not an object", "entry", fmt.Sprint(entry))
		return clubOutcome{status: clubSkipped}
	}

	clubName := player.Raw(club).Text("name", player.UnknownClubName)
	clubID, ok := clubIdentifier(club["id"])
	if !ok {
		logger.WarnContext(ctx, "skipping club with missing id", "club", clubName)
		return clubOutcome{status: clubSkipped}
	}

	clubLogger := logger.With("club", clubName, "club_id", clubID)
	endpoint := c.baseURL + "/clubs/" + url.PathEscape(clubID) + "/players"
	clubLogger.InfoContext(ctx, "fetching club players", "progress", fmt.Sprintf("%d/%d", index+1, total))

	res := c.fetcher.Fetch(ctx, Request{URL: endpoint, Timeout: c.playerTimeout})
	if !res.OK() {
		clubLogger.WarnContext(ctx, "error fetching club players, skipping club", "attempts", res.Attempts, "error", res.Err)
		return clubOutcome{status: clubFailed}
	}

	resolution, err := ResolveBody(res.Body, EntityPlayers)
	if err != nil {
		clubLogger.WarnContext(ctx, "error decoding club players",
			"error", err,
			"sample", sample(res.Body, decodeSampleChars),
		)
		return clubOutcome{status: clubFailed}
	}
	if !resolution.Found {
		clubLogger.WarnContext(ctx, "could not find a list of players, assuming none",
			"sample", sample(res.Body, playerSampleChars),
		)
	} else {
		clubLogger.DebugContext(ctx, "found club players", "source", resolution.Source, "players", len(resolution.Entities))
	}

	players := make([]player.Raw, 0, len(resolution.Entities))
	for _, item := range resolution.Entities {
		fields, ok := item.(map[string]any)
		if !ok {
			clubLogger.WarnContext(ctx, "skipping unexpected player entry", "entry", truncateText(fmt.Sprint(item), entrySampleChars))
			continue
		}
		raw := player.Raw(fields)
		raw[player.ClubNameKey] = clubName
		players = append(players, raw)
	}

	if err := c.sleep(ctx, c.clubDelay); err != nil {
		clubLogger.DebugContext(ctx, "club delay interrupted", "error", err)
	}
	return clubOutcome{status: clubCollected, players: players}
}

func (c *Crawler) competitionURL(code string) string {
	return c.baseURL + "/competitions/" + url.PathEscape(code)
}

// clubIdentifier treats nil, blank strings and numeric zero as missing.
func clubIdentifier(v any) (string, bool) {
	id, ok := player.FormatID(v)
	if !ok || id == "0" {
		return "", false
	}
	return id, true
}

func truncateText(text string, n int) string {
	return sample([]byte(text), n)
}
