package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/market-value-crawler/internal/domain/league"
	"github.com/riskibarqy/market-value-crawler/internal/domain/player"
	leaguemock "github.com/riskibarqy/market-value-crawler/internal/mocks/domain/league"
	playermock "github.com/riskibarqy/market-value-crawler/internal/mocks/domain/player"
	basecache "github.com/riskibarqy/market-value-crawler/internal/platform/cache"
	"github.com/stretchr/testify/mock"
)

func TestLeagueRepository_ListHitsBackendOnce(t *testing.T) {
	next := leaguemock.NewRepository(t)
	next.On("List", mock.Anything).Return([]league.League{{ID: "GB1", Name: "Premier League"}}, nil).Once()

	repo := NewLeagueRepository(next, basecache.NewStore(time.Minute))
	for i := 0; i < 3; i++ {
		items, err := repo.List(context.Background())
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(items) != 1 {
			t.Fatalf("unexpected items: %+v", items)
		}
	}
}

func TestLeagueRepository_CachesMisses(t *testing.T) {
	next := leaguemock.NewRepository(t)
	next.On("GetByID", mock.Anything, "XX1").Return(league.League{}, false, nil).Once()

	repo := NewLeagueRepository(next, basecache.NewStore(time.Minute))
	for i := 0; i < 2; i++ {
		_, exists, err := repo.GetByID(context.Background(), "XX1")
		if err != nil || exists {
			t.Fatalf("expected cached miss, got exists=%v err=%v", exists, err)
		}
	}
}

func TestPlayerRepository_ErrorsAreNotCached(t *testing.T) {
	next := playermock.NewRepository(t)
	boom := errors.New("db down")
	next.On("TopByMarketValue", mock.Anything, 10).Return(nil, boom).Once()
	next.On("TopByMarketValue", mock.Anything, 10).Return([]player.Summary{{ID: 1}}, nil).Once()

	repo := NewPlayerRepository(next, basecache.NewStore(time.Minute))
	if _, err := repo.TopByMarketValue(context.Background(), 10); !errors.Is(err, boom) {
		t.Fatalf("expected backend error, got %v", err)
	}
	items, err := repo.TopByMarketValue(context.Background(), 10)
	if err != nil || len(items) != 1 {
		t.Fatalf("expected reload after error, got %v %v", items, err)
	}
}

func TestPlayerRepository_SearchKeyIncludesFilter(t *testing.T) {
	next := playermock.NewRepository(t)
	first := player.SearchFilter{Name: "a", Limit: 10}
	second := player.SearchFilter{Name: "a", Limit: 10, Offset: 10}
	next.On("Search", mock.Anything, first).Return([]player.Summary{{ID: 1}}, nil).Once()
	next.On("Search", mock.Anything, second).Return([]player.Summary{{ID: 2}}, nil).Once()

	repo := NewPlayerRepository(next, basecache.NewStore(time.Minute))
	a, _ := repo.Search(context.Background(), first)
	b, _ := repo.Search(context.Background(), second)
	if a[0].ID != 1 || b[0].ID != 2 {
		t.Fatalf("filters must not share a cache entry: %+v %+v", a, b)
	}
}

func TestInvalidate_ForcesReload(t *testing.T) {
	next := leaguemock.NewRepository(t)
	next.On("List", mock.Anything).Return([]league.League{{ID: "GB1"}}, nil).Twice()

	store := basecache.NewStore(time.Minute)
	repo := NewLeagueRepository(next, store)
	if _, err := repo.List(context.Background()); err != nil {
		t.Fatalf("list: %v", err)
	}
	if removed := Invalidate(context.Background(), store); removed != 1 {
		t.Fatalf("expected one key removed, got %d", removed)
	}
	if _, err := repo.List(context.Background()); err != nil {
		t.Fatalf("list after invalidate: %v", err)
	}
}
