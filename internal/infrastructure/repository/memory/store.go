package memory

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/riskibarqy/market-value-crawler/internal/domain/club"
	"github.com/riskibarqy/market-value-crawler/internal/domain/league"
	"github.com/riskibarqy/market-value-crawler/internal/domain/player"
	"github.com/riskibarqy/market-value-crawler/internal/domain/valuation"
)

// Store keeps every table in process memory. It backs STORE_DRIVER=memory
// for dry runs and serves as the query side in tests.
type Store struct {
	mu         sync.RWMutex
	leagues    map[string]league.League
	clubs      map[int64]club.Club
	players    map[int64]player.Player
	valuations map[int64][]valuation.Valuation
}

func NewStore() *Store {
	return &Store{
		leagues:    make(map[string]league.League),
		clubs:      make(map[int64]club.Club),
		players:    make(map[int64]player.Player),
		valuations: make(map[int64][]valuation.Valuation),
	}
}

func (s *Store) Leagues() *LeagueRepository {
	return &LeagueRepository{store: s}
}

func (s *Store) Players() *PlayerRepository {
	return &PlayerRepository{store: s}
}

func (s *Store) Valuations() *ValuationRepository {
	return &ValuationRepository{store: s}
}

func (s *Store) UpsertLeagues(_ context.Context, items []league.League) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range items {
		s.leagues[item.ID] = item
	}
	return len(items), nil
}

func (s *Store) UpsertClubs(_ context.Context, items []club.Club) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range items {
		s.clubs[item.ID] = item
	}
	return len(items), nil
}

func (s *Store) UpsertPlayers(_ context.Context, items []player.Player) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range items {
		s.players[item.ID] = item
	}
	return len(items), nil
}

func (s *Store) ReplaceValuations(_ context.Context, items []valuation.Valuation) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	replaced := make(map[int64]struct{}, len(items))
	for _, item := range items {
		if _, ok := replaced[item.PlayerID]; !ok {
			replaced[item.PlayerID] = struct{}{}
			s.valuations[item.PlayerID] = nil
		}
		s.valuations[item.PlayerID] = append(s.valuations[item.PlayerID], item)
	}
	return len(items), nil
}

func (s *Store) KnownLeagueIDs(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.leagues))
	for id := range s.leagues {
		out = append(out, id)
	}
	return out, nil
}

func (s *Store) KnownClubIDs(_ context.Context) ([]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]int64, 0, len(s.clubs))
	for id := range s.clubs {
		out = append(out, id)
	}
	return out, nil
}

func (s *Store) KnownPlayerIDs(_ context.Context) ([]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]int64, 0, len(s.players))
	for id := range s.players {
		out = append(out, id)
	}
	return out, nil
}

type LeagueRepository struct {
	store *Store
}

func (r *LeagueRepository) List(_ context.Context) ([]league.League, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]league.League, 0, len(r.store.leagues))
	for _, item := range r.store.leagues {
		out = append(out, item)
	}
	slices.SortFunc(out, func(a, b league.League) int {
		if c := strings.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out, nil
}

func (r *LeagueRepository) GetByID(_ context.Context, leagueID string) (league.League, bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	item, ok := r.store.leagues[leagueID]
	return item, ok, nil
}

type PlayerRepository struct {
	store *Store
}

func (r *PlayerRepository) Search(_ context.Context, filter player.SearchFilter) ([]player.Summary, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	needle := strings.ToLower(filter.Name)
	matches := make([]player.Summary, 0)
	for _, p := range r.store.players {
		summary := r.store.summaryLocked(p)
		if filter.LeagueID != "" && (summary.LeagueID == nil || *summary.LeagueID != filter.LeagueID) {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(p.Name), needle) {
			continue
		}
		matches = append(matches, summary)
	}
	slices.SortFunc(matches, func(a, b player.Summary) int {
		if c := strings.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return compareInt64(a.ID, b.ID)
	})
	return page(matches, filter.Offset, filter.Limit), nil
}

func (r *PlayerRepository) TopByMarketValue(_ context.Context, limit int) ([]player.Summary, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	valued := make([]player.Summary, 0)
	for _, p := range r.store.players {
		summary := r.store.summaryLocked(p)
		if summary.CurrentMarketValueEUR == nil {
			continue
		}
		valued = append(valued, summary)
	}
	slices.SortFunc(valued, func(a, b player.Summary) int {
		if c := compareInt64(*b.CurrentMarketValueEUR, *a.CurrentMarketValueEUR); c != 0 {
			return c
		}
		return compareInt64(a.ID, b.ID)
	})
	return page(valued, 0, limit), nil
}

func (r *PlayerRepository) GetByID(_ context.Context, playerID int64) (player.Summary, bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	p, ok := r.store.players[playerID]
	if !ok {
		return player.Summary{}, false, nil
	}
	return r.store.summaryLocked(p), true, nil
}

type ValuationRepository struct {
	store *Store
}

func (r *ValuationRepository) ListByPlayer(_ context.Context, playerID int64) ([]valuation.Point, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	history := slices.Clone(r.store.valuations[playerID])
	slices.SortStableFunc(history, compareValuationDate)

	out := make([]valuation.Point, 0, len(history))
	for _, v := range history {
		out = append(out, valuation.Point{Date: v.Date, MarketValueEUR: v.MarketValueEUR})
	}
	return out, nil
}

func (s *Store) summaryLocked(p player.Player) player.Summary {
	summary := player.Summary{
		ID:            p.ID,
		Name:          p.Name,
		Position:      p.Position,
		SubPosition:   p.SubPosition,
		DateOfBirth:   p.DateOfBirth,
		CurrentClubID: p.CurrentClubID,
	}
	if p.CurrentClubID != nil {
		if c, ok := s.clubs[*p.CurrentClubID]; ok {
			name := c.Name
			summary.ClubName = &name
			summary.LeagueID = c.LeagueID
		}
	}
	if latest, ok := latestValuation(s.valuations[p.ID]); ok {
		summary.CurrentMarketValueEUR = latest.MarketValueEUR
	}
	return summary
}

// latestValuation picks the newest dated entry; among equal dates the one
// inserted last wins and undated entries only count when nothing is dated.
func latestValuation(history []valuation.Valuation) (valuation.Valuation, bool) {
	if len(history) == 0 {
		return valuation.Valuation{}, false
	}
	best := 0
	for i := 1; i < len(history); i++ {
		if compareValuationDate(history[i], history[best]) >= 0 {
			best = i
		}
	}
	return history[best], true
}

// compareValuationDate orders by date ascending with undated entries first.
func compareValuationDate(a, b valuation.Valuation) int {
	switch {
	case a.Date == nil && b.Date == nil:
		return 0
	case a.Date == nil:
		return -1
	case b.Date == nil:
		return 1
	default:
		return a.Date.Compare(*b.Date)
	}
}

func compareInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func page[T any](items []T, offset, limit int) []T {
	offset = max(offset, 0)
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}
