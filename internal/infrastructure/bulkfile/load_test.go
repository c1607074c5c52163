package bulkfile_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/riskibarqy/market-value-crawler/internal/infrastructure/bulkfile"
	"github.com/riskibarqy/market-value-crawler/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/market-value-crawler/internal/platform/logging"
	"github.com/riskibarqy/market-value-crawler/internal/usecase"
)

func writeTable(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func statusByTable(report usecase.LoadReport) map[string]usecase.TableLoadResult {
	out := make(map[string]usecase.TableLoadResult, len(report.Tables))
	for _, table := range report.Tables {
		out[table.Table] = table
	}
	return out
}

func TestLoaderService_EmptyFilesAreSkipped(t *testing.T) {
	dir := t.TempDir()
	writeTable(t, dir, bulkfile.LeaguesFile, "league_id,name,country\nGB1,Premier League,England\n")
	writeTable(t, dir, bulkfile.ClubsFile, "")
	writeTable(t, dir, bulkfile.PlayersFile, "player_id,name,current_club_id\n")
	writeTable(t, dir, bulkfile.ValuationsFile, "")

	store := memory.NewStore()
	loader := usecase.NewLoaderService(bulkfile.NewReader(dir, logging.NewNop()), store, logging.NewNop())

	report, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !report.AllSuccessful {
		t.Fatalf("empty tables must not fail the run: %+v", report.Tables)
	}

	tables := statusByTable(report)
	if got := tables[usecase.TableLeagues]; got.Status != usecase.TableStatusLoaded || got.Written != 1 {
		t.Fatalf("unexpected leagues result %+v", got)
	}
	for _, name := range []string{usecase.TableClubs, usecase.TablePlayers, usecase.TableValuations} {
		if got := tables[name]; got.Status != usecase.TableStatusSkipped || got.Err != nil {
			t.Fatalf("expected %s to be skipped, got %+v", name, got)
		}
	}

	leagues, err := store.Leagues().List(context.Background())
	if err != nil || len(leagues) != 1 || leagues[0].ID != "GB1" {
		t.Fatalf("unexpected stored leagues %+v, %v", leagues, err)
	}
}

func TestLoaderService_MissingFileFailsOnlyItsTable(t *testing.T) {
	dir := t.TempDir()
	writeTable(t, dir, bulkfile.LeaguesFile, "league_id,name,country\nGB1,Premier League,England\n")
	writeTable(t, dir, bulkfile.PlayersFile, "player_id,name,current_club_id\n7,Bukayo Saka,11\n")
	writeTable(t, dir, bulkfile.ValuationsFile, "player_id,date,market_value_in_eur\n7,2023-06-01,120000000\n")

	store := memory.NewStore()
	loader := usecase.NewLoaderService(bulkfile.NewReader(dir, logging.NewNop()), store, logging.NewNop())

	report, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if report.AllSuccessful {
		t.Fatalf("a missing file must fail the run")
	}

	tables := statusByTable(report)
	clubs := tables[usecase.TableClubs]
	if clubs.Status != usecase.TableStatusFailed || !errors.Is(clubs.Err, usecase.ErrSourceMissing) {
		t.Fatalf("expected clubs to fail as missing, got %+v", clubs)
	}
	if got := tables[usecase.TablePlayers]; got.Status != usecase.TableStatusLoaded || got.NulledRefs != 1 {
		t.Fatalf("expected players to load with the unknown club nulled, got %+v", got)
	}
	if got := tables[usecase.TableValuations]; got.Status != usecase.TableStatusLoaded || got.Written != 1 {
		t.Fatalf("unexpected valuations result %+v", got)
	}
}
