package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/market-value-crawler/internal/domain/club"
	"github.com/riskibarqy/market-value-crawler/internal/domain/league"
	"github.com/riskibarqy/market-value-crawler/internal/domain/player"
	"github.com/riskibarqy/market-value-crawler/internal/domain/valuation"
	"github.com/riskibarqy/market-value-crawler/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/market-value-crawler/internal/platform/logging"
	"github.com/riskibarqy/market-value-crawler/internal/usecase"
)

type apiResponse[T any] struct {
	APIVersion string `json:"apiVersion"`
	Data       T      `json:"data"`
	Error      *struct {
		Code   int    `json:"code"`
		Status string `json:"status"`
	} `json:"error"`
}

func ptr[T any](v T) *T { return &v }

func day(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()

	if _, err := store.UpsertLeagues(ctx, []league.League{
		{ID: "GB1", Name: "Premier League", Country: "England"},
		{ID: "ES1", Name: "La Liga", Country: "Spain"},
	}); err != nil {
		t.Fatalf("seed leagues: %v", err)
	}
	if _, err := store.UpsertClubs(ctx, []club.Club{
		{ID: 11, Name: "Arsenal", LeagueID: ptr("GB1")},
		{ID: 131, Name: "Barcelona", LeagueID: ptr("ES1")},
	}); err != nil {
		t.Fatalf("seed clubs: %v", err)
	}
	if _, err := store.UpsertPlayers(ctx, []player.Player{
		{ID: 1, Name: "Bukayo Saka", CurrentClubID: ptr(int64(11)), DateOfBirth: day(2001, time.September, 5), Position: ptr("Attack")},
		{ID: 2, Name: "Pedri", CurrentClubID: ptr(int64(131))},
		{ID: 3, Name: "Free Agent"},
	}); err != nil {
		t.Fatalf("seed players: %v", err)
	}
	if _, err := store.ReplaceValuations(ctx, []valuation.Valuation{
		{PlayerID: 1, Date: day(2023, time.June, 1), MarketValueEUR: ptr(int64(110_000_000))},
		{PlayerID: 1, Date: day(2022, time.June, 1), MarketValueEUR: ptr(int64(80_000_000))},
		{PlayerID: 2, Date: day(2023, time.June, 1), MarketValueEUR: ptr(int64(100_000_000))},
	}); err != nil {
		t.Fatalf("seed valuations: %v", err)
	}

	handler := NewHandler(
		usecase.NewLeagueService(store.Leagues()),
		usecase.NewPlayerService(store.Players(), store.Valuations()),
		logging.NewNop(),
	)
	return NewRouter(handler, logging.NewNop(), true, []string{"*"})
}

func get[T any](t *testing.T, router http.Handler, target string) (int, apiResponse[T]) {
	t.Helper()
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))

	var body apiResponse[T]
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal %s: %v (%s)", target, err, rec.Body.String())
	}
	return rec.Code, body
}

func TestHandler_ListLeaguesOrderedByName(t *testing.T) {
	router := newTestRouter(t)

	code, body := get[[]leagueDTO](t, router, "/v1/leagues")
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if len(body.Data) != 2 || body.Data[0].LeagueID != "ES1" || body.Data[1].LeagueID != "GB1" {
		t.Fatalf("unexpected leagues: %+v", body.Data)
	}
}

func TestHandler_GetLeague(t *testing.T) {
	router := newTestRouter(t)

	code, body := get[leagueDTO](t, router, "/v1/leagues/gb1")
	if code != http.StatusOK || body.Data.Name != "Premier League" {
		t.Fatalf("unexpected response %d %+v", code, body.Data)
	}

	code, missing := get[leagueDTO](t, router, "/v1/leagues/XX9")
	if code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", code)
	}
	if missing.Error == nil || missing.Error.Status != "NOT_FOUND" {
		t.Fatalf("expected NOT_FOUND error body, got %+v", missing.Error)
	}
}

func TestHandler_SearchPlayers(t *testing.T) {
	router := newTestRouter(t)

	code, body := get[[]playerSummaryDTO](t, router, "/v1/players/search?league=gb1&name=SAK")
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if len(body.Data) != 1 {
		t.Fatalf("expected one player, got %+v", body.Data)
	}
	got := body.Data[0]
	if got.PlayerID != 1 || got.ClubName == nil || *got.ClubName != "Arsenal" {
		t.Fatalf("unexpected player: %+v", got)
	}
	if got.MarketValueInEUR == nil || *got.MarketValueInEUR != 110_000_000 {
		t.Fatalf("expected latest market value, got %v", got.MarketValueInEUR)
	}
	if got.DateOfBirth == nil || *got.DateOfBirth != "2001-09-05" {
		t.Fatalf("unexpected date of birth: %v", got.DateOfBirth)
	}
}

func TestHandler_SearchPlayersRejectsBadPaging(t *testing.T) {
	router := newTestRouter(t)

	for _, target := range []string{
		"/v1/players/search?limit=abc",
		"/v1/players/search?limit=501",
		"/v1/players/search?offset=-1",
		"/v1/players/top?limit=-3",
	} {
		code, _ := get[any](t, router, target)
		if code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", target, code)
		}
	}
}

func TestHandler_TopPlayersSkipsUnvalued(t *testing.T) {
	router := newTestRouter(t)

	code, body := get[[]playerSummaryDTO](t, router, "/v1/players/top")
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if len(body.Data) != 2 || body.Data[0].PlayerID != 1 || body.Data[1].PlayerID != 2 {
		t.Fatalf("unexpected top players: %+v", body.Data)
	}
}

func TestHandler_GetPlayer(t *testing.T) {
	router := newTestRouter(t)

	code, body := get[playerSummaryDTO](t, router, "/v1/players/2")
	if code != http.StatusOK || body.Data.Name != "Pedri" {
		t.Fatalf("unexpected response %d %+v", code, body.Data)
	}
	if body.Data.LeagueID == nil || *body.Data.LeagueID != "ES1" {
		t.Fatalf("expected league from club, got %v", body.Data.LeagueID)
	}

	if code, _ := get[any](t, router, "/v1/players/999"); code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown player, got %d", code)
	}
	if code, _ := get[any](t, router, "/v1/players/abc"); code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed id, got %d", code)
	}
}

func TestHandler_ListPlayerValuations(t *testing.T) {
	router := newTestRouter(t)

	code, body := get[[]valuationPointDTO](t, router, "/v1/players/1/valuations")
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if len(body.Data) != 2 || *body.Data[0].Date != "2022-06-01" || *body.Data[1].Date != "2023-06-01" {
		t.Fatalf("expected ascending history, got %+v", body.Data)
	}

	code, empty := get[[]valuationPointDTO](t, router, "/v1/players/999/valuations")
	if code != http.StatusOK || empty.Data == nil || len(empty.Data) != 0 {
		t.Fatalf("expected empty list for unknown player, got %d %+v", code, empty.Data)
	}
}

func TestHandler_DocsRoutes(t *testing.T) {
	router := newTestRouter(t)

	for _, target := range []string{"/openapi.yaml", "/docs"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
		if rec.Code != http.StatusOK || rec.Body.Len() == 0 {
			t.Fatalf("%s: expected document, got %d", target, rec.Code)
		}
	}

	hidden := NewRouter(NewHandler(nil, nil, logging.NewNop()), logging.NewNop(), false, []string{"*"})
	rec := httptest.NewRecorder()
	hidden.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/openapi.yaml", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected docs to be hidden when disabled, got %d", rec.Code)
	}
}
