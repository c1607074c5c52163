package cache

import (
	"context"
	"fmt"
	"slices"
	"strconv"

	"github.com/riskibarqy/market-value-crawler/internal/domain/league"
	"github.com/riskibarqy/market-value-crawler/internal/domain/player"
	"github.com/riskibarqy/market-value-crawler/internal/domain/valuation"
	basecache "github.com/riskibarqy/market-value-crawler/internal/platform/cache"
)

const (
	PrefixLeague    = "league:"
	PrefixPlayer    = "player:"
	PrefixValuation = "valuation:"
)

type LeagueRepository struct {
	next  league.Repository
	cache *basecache.Store
}

func NewLeagueRepository(next league.Repository, cache *basecache.Store) *LeagueRepository {
	return &LeagueRepository{next: next, cache: cache}
}

func (r *LeagueRepository) List(ctx context.Context) ([]league.League, error) {
	items, err := basecache.Load(ctx, r.cache, PrefixLeague+"list", r.next.List)
	if err != nil {
		return nil, err
	}
	return slices.Clone(items), nil
}

func (r *LeagueRepository) GetByID(ctx context.Context, leagueID string) (league.League, bool, error) {
	cached, err := basecache.Load(ctx, r.cache, PrefixLeague+"id:"+leagueID, func(ctx context.Context) (lookup[league.League], error) {
		item, exists, err := r.next.GetByID(ctx, leagueID)
		return lookup[league.League]{value: item, exists: exists}, err
	})
	if err != nil {
		return league.League{}, false, err
	}
	return cached.value, cached.exists, nil
}

type PlayerRepository struct {
	next  player.Repository
	cache *basecache.Store
}

func NewPlayerRepository(next player.Repository, cache *basecache.Store) *PlayerRepository {
	return &PlayerRepository{next: next, cache: cache}
}

func (r *PlayerRepository) Search(ctx context.Context, filter player.SearchFilter) ([]player.Summary, error) {
	key := fmt.Sprintf("%ssearch:%s:%q:%d:%d", PrefixPlayer, filter.LeagueID, filter.Name, filter.Limit, filter.Offset)
	items, err := basecache.Load(ctx, r.cache, key, func(ctx context.Context) ([]player.Summary, error) {
		return r.next.Search(ctx, filter)
	})
	if err != nil {
		return nil, err
	}
	return slices.Clone(items), nil
}

func (r *PlayerRepository) TopByMarketValue(ctx context.Context, limit int) ([]player.Summary, error) {
	key := PrefixPlayer + "top:" + strconv.Itoa(limit)
	items, err := basecache.Load(ctx, r.cache, key, func(ctx context.Context) ([]player.Summary, error) {
		return r.next.TopByMarketValue(ctx, limit)
	})
	if err != nil {
		return nil, err
	}
	return slices.Clone(items), nil
}

func (r *PlayerRepository) GetByID(ctx context.Context, playerID int64) (player.Summary, bool, error) {
	key := PrefixPlayer + "id:" + strconv.FormatInt(playerID, 10)
	cached, err := basecache.Load(ctx, r.cache, key, func(ctx context.Context) (lookup[player.Summary], error) {
		item, exists, err := r.next.GetByID(ctx, playerID)
		return lookup[player.Summary]{value: item, exists: exists}, err
	})
	if err != nil {
		return player.Summary{}, false, err
	}
	return cached.value, cached.exists, nil
}

type ValuationRepository struct {
	next  valuation.Repository
	cache *basecache.Store
}

func NewValuationRepository(next valuation.Repository, cache *basecache.Store) *ValuationRepository {
	return &ValuationRepository{next: next, cache: cache}
}

func (r *ValuationRepository) ListByPlayer(ctx context.Context, playerID int64) ([]valuation.Point, error) {
	key := PrefixValuation + "player:" + strconv.FormatInt(playerID, 10)
	items, err := basecache.Load(ctx, r.cache, key, func(ctx context.Context) ([]valuation.Point, error) {
		return r.next.ListByPlayer(ctx, playerID)
	})
	if err != nil {
		return nil, err
	}
	return slices.Clone(items), nil
}

// lookup caches "not found" as well as hits.
type lookup[T any] struct {
	value  T
	exists bool
}

// Invalidate drops every cached league, player and valuation entry and
// reports how many keys were removed.
func Invalidate(ctx context.Context, cache *basecache.Store) int {
	removed := 0
	for _, prefix := range []string{PrefixLeague, PrefixPlayer, PrefixValuation} {
		removed += cache.DeletePrefix(ctx, prefix)
	}
	return removed
}
