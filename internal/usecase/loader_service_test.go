package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/riskibarqy/market-value-crawler/internal/domain/club"
	"github.com/riskibarqy/market-value-crawler/internal/domain/league"
	"github.com/riskibarqy/market-value-crawler/internal/domain/player"
	"github.com/riskibarqy/market-value-crawler/internal/domain/valuation"
	usecasemock "github.com/riskibarqy/market-value-crawler/internal/mocks/usecase"
	"github.com/riskibarqy/market-value-crawler/internal/platform/logging"
	"github.com/riskibarqy/market-value-crawler/internal/usecase"
	"github.com/stretchr/testify/mock"
)

func ptr[T any](v T) *T { return &v }

func tableByName(t *testing.T, report usecase.LoadReport, name string) usecase.TableLoadResult {
	t.Helper()
	for _, table := range report.Tables {
		if table.Table == name {
			return table
		}
	}
	t.Fatalf("table %s missing from report", name)
	return usecase.TableLoadResult{}
}

func TestLoaderService_Load_NullsDanglingReferences(t *testing.T) {
	t.Parallel()

	source := usecasemock.NewBulkSource(t)
	store := usecasemock.NewBulkStore(t)

	source.On("ReadLeagues", mock.Anything).Return([]league.League{
		{ID: "GB1", Name: "Premier League", Country: "England"},
		{ID: "", Name: "broken"},
	}, nil).Once()
	source.On("ReadClubs", mock.Anything).Return([]club.Club{
		{ID: 11, Name: "Arsenal", LeagueID: ptr("GB1")},
		{ID: 12, Name: "Nowhere FC", LeagueID: ptr("ZZ9")},
	}, nil).Once()
	source.On("ReadPlayers", mock.Anything).Return([]player.Player{
		{ID: 100, Name: "Saka", CurrentClubID: ptr(int64(11))},
		{ID: 101, Name: "Drifter", CurrentClubID: ptr(int64(999))},
	}, nil).Once()
	source.On("ReadValuations", mock.Anything).Return([]valuation.Valuation{
		{PlayerID: 100, MarketValueEUR: ptr(int64(120_000_000)), ClubID: ptr(int64(11)), LeagueID: ptr("GB1")},
		{PlayerID: 100, MarketValueEUR: ptr(int64(90_000_000)), ClubID: ptr(int64(404)), LeagueID: ptr("XX1")},
		{PlayerID: 555, MarketValueEUR: ptr(int64(1))},
	}, nil).Once()

	store.On("UpsertLeagues", mock.Anything, mock.MatchedBy(func(items []league.League) bool {
		return len(items) == 1 && items[0].ID == "GB1"
	})).Return(1, nil).Once()
	store.On("KnownLeagueIDs", mock.Anything).Return([]string{"GB1"}, nil)
	store.On("UpsertClubs", mock.Anything, mock.MatchedBy(func(items []club.Club) bool {
		return len(items) == 2 && items[0].LeagueID != nil && items[1].LeagueID == nil
	})).Return(2, nil).Once()
	store.On("KnownClubIDs", mock.Anything).Return([]int64{11, 12}, nil)
	store.On("UpsertPlayers", mock.Anything, mock.MatchedBy(func(items []player.Player) bool {
		return len(items) == 2 && items[0].CurrentClubID != nil && items[1].CurrentClubID == nil
	})).Return(2, nil).Once()
	store.On("KnownPlayerIDs", mock.Anything).Return([]int64{100, 101}, nil).Once()
	store.On("ReplaceValuations", mock.Anything, mock.MatchedBy(func(items []valuation.Valuation) bool {
		return len(items) == 2 && items[1].ClubID == nil && items[1].LeagueID == nil
	})).Return(2, nil).Once()

	service := usecase.NewLoaderService(source, store, logging.NewNop())
	report, err := service.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !report.AllSuccessful {
		t.Fatalf("expected all tables to succeed: %+v", report.Tables)
	}

	order := []string{usecase.TableLeagues, usecase.TableClubs, usecase.TablePlayers, usecase.TableValuations}
	for i, name := range order {
		if report.Tables[i].Table != name {
			t.Fatalf("unexpected table order at %d: %s", i, report.Tables[i].Table)
		}
	}
	if got := tableByName(t, report, usecase.TableLeagues); got.Invalid != 1 || got.Written != 1 {
		t.Fatalf("unexpected leagues result: %+v", got)
	}
	if got := tableByName(t, report, usecase.TableClubs); got.NulledRefs != 1 {
		t.Fatalf("unexpected clubs result: %+v", got)
	}
	if got := tableByName(t, report, usecase.TablePlayers); got.NulledRefs != 1 {
		t.Fatalf("unexpected players result: %+v", got)
	}
	got := tableByName(t, report, usecase.TableValuations)
	if got.Dropped != 1 || got.NulledRefs != 2 || got.Written != 2 {
		t.Fatalf("unexpected valuations result: %+v", got)
	}
}

func TestLoaderService_Load_MissingAndEmptyFiles(t *testing.T) {
	t.Parallel()

	source := usecasemock.NewBulkSource(t)
	store := usecasemock.NewBulkStore(t)

	source.On("ReadLeagues", mock.Anything).
		Return(nil, fmt.Errorf("leagues.csv: %w", usecase.ErrSourceMissing)).Once()
	source.On("ReadClubs", mock.Anything).
		Return(nil, fmt.Errorf("clubs.csv: %w", usecase.ErrSourceEmpty)).Once()
	source.On("ReadPlayers", mock.Anything).Return([]player.Player{{ID: 1, Name: "Solo"}}, nil).Once()
	source.On("ReadValuations", mock.Anything).
		Return(nil, fmt.Errorf("player_valuations.csv: %w", usecase.ErrSourceEmpty)).Once()

	store.On("KnownClubIDs", mock.Anything).Return([]int64{}, nil).Once()
	store.On("UpsertPlayers", mock.Anything, mock.Anything).Return(1, nil).Once()

	service := usecase.NewLoaderService(source, store, logging.NewNop())
	report, err := service.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if report.AllSuccessful {
		t.Fatalf("missing leagues file must fail the report")
	}

	if got := tableByName(t, report, usecase.TableLeagues); got.Status != usecase.TableStatusFailed || !errors.Is(got.Err, usecase.ErrSourceMissing) {
		t.Fatalf("unexpected leagues result: %+v", got)
	}
	if got := tableByName(t, report, usecase.TableClubs); got.Status != usecase.TableStatusSkipped {
		t.Fatalf("unexpected clubs result: %+v", got)
	}
	if got := tableByName(t, report, usecase.TablePlayers); got.Status != usecase.TableStatusLoaded || got.Written != 1 {
		t.Fatalf("unexpected players result: %+v", got)
	}
	if got := tableByName(t, report, usecase.TableValuations); got.Status != usecase.TableStatusSkipped {
		t.Fatalf("unexpected valuations result: %+v", got)
	}
}

func TestLoaderService_Load_StoreFailureIsContained(t *testing.T) {
	t.Parallel()

	source := usecasemock.NewBulkSource(t)
	store := usecasemock.NewBulkStore(t)
	boom := errors.New("deadlock detected")

	source.On("ReadLeagues", mock.Anything).Return([]league.League{{ID: "FR1", Name: "Ligue 1"}}, nil).Once()
	source.On("ReadClubs", mock.Anything).Return([]club.Club{{ID: 5, Name: "PSG", LeagueID: ptr("FR1")}}, nil).Once()
	source.On("ReadPlayers", mock.Anything).Return(nil, fmt.Errorf("players.csv: %w", usecase.ErrSourceEmpty)).Once()
	source.On("ReadValuations", mock.Anything).Return(nil, fmt.Errorf("player_valuations.csv: %w", usecase.ErrSourceEmpty)).Once()

	store.On("UpsertLeagues", mock.Anything, mock.Anything).Return(0, boom).Once()
	store.On("KnownLeagueIDs", mock.Anything).Return([]string{}, nil).Once()
	store.On("UpsertClubs", mock.Anything, mock.MatchedBy(func(items []club.Club) bool {
		return len(items) == 1 && items[0].LeagueID == nil
	})).Return(1, nil).Once()

	service := usecase.NewLoaderService(source, store, logging.NewNop())
	report, err := service.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if report.AllSuccessful {
		t.Fatalf("expected failed report")
	}
	if got := tableByName(t, report, usecase.TableLeagues); !errors.Is(got.Err, boom) {
		t.Fatalf("unexpected leagues error: %v", got.Err)
	}
	if got := tableByName(t, report, usecase.TableClubs); got.Status != usecase.TableStatusLoaded || got.NulledRefs != 1 {
		t.Fatalf("unexpected clubs result: %+v", got)
	}
}
