package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/riskibarqy/market-value-crawler/internal/domain/club"
	"github.com/riskibarqy/market-value-crawler/internal/domain/league"
	"github.com/riskibarqy/market-value-crawler/internal/domain/player"
	"github.com/riskibarqy/market-value-crawler/internal/domain/valuation"
	"github.com/riskibarqy/market-value-crawler/internal/platform/logging"
	"github.com/sourcegraph/conc"
)

const (
	TableLeagues    = "leagues"
	TableClubs      = "clubs"
	TablePlayers    = "players"
	TableValuations = "player_valuations"
)

// BulkSource reads flat-file tables. A missing input is reported with
// ErrSourceMissing, an input without data rows with ErrSourceEmpty.
type BulkSource interface {
	ReadLeagues(ctx context.Context) ([]league.League, error)
	ReadClubs(ctx context.Context) ([]club.Club, error)
	ReadPlayers(ctx context.Context) ([]player.Player, error)
	ReadValuations(ctx context.Context) ([]valuation.Valuation, error)
}

// BulkStore is the write side used by the loader. Upserts return the number
// of rows written.
type BulkStore interface {
	UpsertLeagues(ctx context.Context, items []league.League) (int, error)
	UpsertClubs(ctx context.Context, items []club.Club) (int, error)
	UpsertPlayers(ctx context.Context, items []player.Player) (int, error)
	// ReplaceValuations deletes existing rows for the given players and
	// inserts items atomically.
	ReplaceValuations(ctx context.Context, items []valuation.Valuation) (int, error)
	KnownLeagueIDs(ctx context.Context) ([]string, error)
	KnownClubIDs(ctx context.Context) ([]int64, error)
	KnownPlayerIDs(ctx context.Context) ([]int64, error)
}

type TableStatus string

const (
	TableStatusLoaded  TableStatus = "loaded"
	TableStatusSkipped TableStatus = "skipped"
	TableStatusFailed  TableStatus = "failed"
)

type TableLoadResult struct {
	Table      string
	Status     TableStatus
	Read       int
	Written    int
	Invalid    int
	NulledRefs int
	Dropped    int
	Err        error
	Duration   time.Duration
}

type LoadReport struct {
	Tables        []TableLoadResult
	AllSuccessful bool
	Duration      time.Duration
}

type LoaderService struct {
	source BulkSource
	store  BulkStore
	logger *logging.Logger
}

func NewLoaderService(source BulkSource, store BulkStore, logger *logging.Logger) *LoaderService {
	if logger == nil {
		logger = logging.Default()
	}
	return &LoaderService{source: source, store: store, logger: logger}
}

type bulkInput struct {
	leagues    []league.League
	leaguesErr error

	clubs    []club.Club
	clubsErr error

	players    []player.Player
	playersErr error

	valuations    []valuation.Valuation
	valuationsErr error
}

// Load reads every table concurrently, then writes them in dependency order.
// A failed table does not stop later tables; references to rows that are
// neither loaded in this run nor already stored are nulled.
func (s *LoaderService) Load(ctx context.Context) (LoadReport, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LoaderService.Load")
	defer span.End()

	started := time.Now()
	in := s.readAll(ctx)
	if err := ctx.Err(); err != nil {
		return LoadReport{}, fmt.Errorf("load interrupted: %w", err)
	}

	report := LoadReport{}
	report.Tables = append(report.Tables, s.loadLeagues(ctx, in))
	report.Tables = append(report.Tables, s.loadClubs(ctx, in))
	report.Tables = append(report.Tables, s.loadPlayers(ctx, in))
	report.Tables = append(report.Tables, s.loadValuations(ctx, in))

	report.AllSuccessful = true
	for _, table := range report.Tables {
		if table.Status == TableStatusFailed {
			report.AllSuccessful = false
		}
	}
	report.Duration = time.Since(started)

	s.logger.InfoContext(ctx, "bulk load finished",
		"all_successful", report.AllSuccessful,
		"duration", report.Duration,
	)
	return report, nil
}

func (s *LoaderService) readAll(ctx context.Context) bulkInput {
	var (
		in bulkInput
		wg conc.WaitGroup
	)
	wg.Go(func() { in.leagues, in.leaguesErr = s.source.ReadLeagues(ctx) })
	wg.Go(func() { in.clubs, in.clubsErr = s.source.ReadClubs(ctx) })
	wg.Go(func() { in.players, in.playersErr = s.source.ReadPlayers(ctx) })
	wg.Go(func() { in.valuations, in.valuationsErr = s.source.ReadValuations(ctx) })
	wg.Wait()
	return in
}

func (s *LoaderService) loadLeagues(ctx context.Context, in bulkInput) TableLoadResult {
	started := time.Now()
	result := TableLoadResult{Table: TableLeagues}
	if s.readFailed(ctx, &result, in.leaguesErr) {
		result.Duration = time.Since(started)
		return result
	}

	valid := make([]league.League, 0, len(in.leagues))
	for _, item := range in.leagues {
		if err := item.Validate(); err != nil {
			result.Invalid++
			continue
		}
		valid = append(valid, item)
	}
	result.Read = len(in.leagues)

	written, err := s.store.UpsertLeagues(ctx, valid)
	return s.finish(ctx, result, written, err, started)
}

func (s *LoaderService) loadClubs(ctx context.Context, in bulkInput) TableLoadResult {
	started := time.Now()
	result := TableLoadResult{Table: TableClubs}
	if s.readFailed(ctx, &result, in.clubsErr) {
		result.Duration = time.Since(started)
		return result
	}

	stored, err := s.store.KnownLeagueIDs(ctx)
	if err != nil {
		return s.finish(ctx, result, 0, fmt.Errorf("known league ids: %w", err), started)
	}
	known := make(map[string]struct{}, len(stored))
	for _, id := range stored {
		known[id] = struct{}{}
	}

	valid := make([]club.Club, 0, len(in.clubs))
	for _, item := range in.clubs {
		if err := item.Validate(); err != nil {
			result.Invalid++
			continue
		}
		if item.LeagueID != nil {
			if _, ok := known[*item.LeagueID]; !ok {
				item.LeagueID = nil
				result.NulledRefs++
			}
		}
		valid = append(valid, item)
	}
	result.Read = len(in.clubs)

	written, err := s.store.UpsertClubs(ctx, valid)
	return s.finish(ctx, result, written, err, started)
}

func (s *LoaderService) loadPlayers(ctx context.Context, in bulkInput) TableLoadResult {
	started := time.Now()
	result := TableLoadResult{Table: TablePlayers}
	if s.readFailed(ctx, &result, in.playersErr) {
		result.Duration = time.Since(started)
		return result
	}

	known, err := s.int64Set(ctx, s.store.KnownClubIDs)
	if err != nil {
		return s.finish(ctx, result, 0, fmt.Errorf("known club ids: %w", err), started)
	}

	valid := make([]player.Player, 0, len(in.players))
	for _, item := range in.players {
		if err := item.Validate(); err != nil {
			result.Invalid++
			continue
		}
		if item.CurrentClubID != nil {
			if _, ok := known[*item.CurrentClubID]; !ok {
				item.CurrentClubID = nil
				result.NulledRefs++
			}
		}
		valid = append(valid, item)
	}
	result.Read = len(in.players)

	written, err := s.store.UpsertPlayers(ctx, valid)
	return s.finish(ctx, result, written, err, started)
}

func (s *LoaderService) loadValuations(ctx context.Context, in bulkInput) TableLoadResult {
	started := time.Now()
	result := TableLoadResult{Table: TableValuations}
	if s.readFailed(ctx, &result, in.valuationsErr) {
		result.Duration = time.Since(started)
		return result
	}

	knownPlayers, err := s.int64Set(ctx, s.store.KnownPlayerIDs)
	if err != nil {
		return s.finish(ctx, result, 0, fmt.Errorf("known player ids: %w", err), started)
	}
	knownClubs, err := s.int64Set(ctx, s.store.KnownClubIDs)
	if err != nil {
		return s.finish(ctx, result, 0, fmt.Errorf("known club ids: %w", err), started)
	}
	storedLeagues, err := s.store.KnownLeagueIDs(ctx)
	if err != nil {
		return s.finish(ctx, result, 0, fmt.Errorf("known league ids: %w", err), started)
	}
	knownLeagues := make(map[string]struct{}, len(storedLeagues))
	for _, id := range storedLeagues {
		knownLeagues[id] = struct{}{}
	}

	valid := make([]valuation.Valuation, 0, len(in.valuations))
	for _, item := range in.valuations {
		if err := item.Validate(); err != nil {
			result.Invalid++
			continue
		}
		if _, ok := knownPlayers[item.PlayerID]; !ok {
			result.Dropped++
			continue
		}
		if item.ClubID != nil {
			if _, ok := knownClubs[*item.ClubID]; !ok {
				item.ClubID = nil
				result.NulledRefs++
			}
		}
		if item.LeagueID != nil {
			if _, ok := knownLeagues[*item.LeagueID]; !ok {
				item.LeagueID = nil
				result.NulledRefs++
			}
		}
		valid = append(valid, item)
	}
	result.Read = len(in.valuations)
	if result.Dropped > 0 {
		s.logger.WarnContext(ctx, "valuations dropped for unknown players",
			"table", TableValuations,
			"dropped", result.Dropped,
		)
	}

	written, err := s.store.ReplaceValuations(ctx, valid)
	return s.finish(ctx, result, written, err, started)
}

// readFailed classifies a source error. It reports true when the table must
// not be written.
func (s *LoaderService) readFailed(ctx context.Context, result *TableLoadResult, err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, ErrSourceEmpty):
		result.Status = TableStatusSkipped
		s.logger.InfoContext(ctx, "bulk table skipped, no data rows", "table", result.Table)
	default:
		result.Status = TableStatusFailed
		result.Err = err
		s.logger.ErrorContext(ctx, "bulk table read failed", "table", result.Table, "error", err)
	}
	return true
}

func (s *LoaderService) finish(ctx context.Context, result TableLoadResult, written int, err error, started time.Time) TableLoadResult {
	result.Duration = time.Since(started)
	if err != nil {
		result.Status = TableStatusFailed
		result.Err = err
		s.logger.ErrorContext(ctx, "bulk table load failed", "table", result.Table, "error", err)
		return result
	}

	result.Status = TableStatusLoaded
	result.Written = written
	s.logger.InfoContext(ctx, "bulk table loaded",
		"table", result.Table,
		"read", result.Read,
		"written", result.Written,
		"invalid", result.Invalid,
		"nulled_refs", result.NulledRefs,
		"dropped", result.Dropped,
		"duration", result.Duration,
	)
	return result
}

func (s *LoaderService) int64Set(ctx context.Context, load func(context.Context) ([]int64, error)) (map[int64]struct{}, error) {
	ids, err := load(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		out[id] = struct{}{}
	}
	return out, nil
}
