package ranking

import (
	"testing"
	"time"

	"github.com/riskibarqy/market-value-crawler/internal/domain/player"
)

func fixedNow() time.Time {
	return time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
}

func TestAge(t *testing.T) {
	now := fixedNow()

	if got := Age("1990-01-01", now); got == nil || *got != 34 {
		t.Fatalf("expected 34, got %v", got)
	}
	if got := Age("1990-06-16", now); got == nil || *got != 33 {
		t.Fatalf("birthday tomorrow should not count yet, got %v", got)
	}
	if got := Age("1990-06-15", now); got == nil || *got != 34 {
		t.Fatalf("birthday today should count, got %v", got)
	}
	if got := Age("1990-1-1", now); got == nil || *got != 34 {
		t.Fatalf("unpadded date should parse, got %v", got)
	}
	if got := Age("1990-6-16", now); got == nil || *got != 33 {
		t.Fatalf("unpadded birthday tomorrow should not count yet, got %v", got)
	}
	if got := Age("invalid-date", now); got != nil {
		t.Fatalf("expected nil for invalid date, got %d", *got)
	}
	if got := Age("", now); got != nil {
		t.Fatalf("expected nil for empty date, got %d", *got)
	}
}

func TestFormatMarketValue(t *testing.T) {
	v := func(n int64) *int64 { return &n }

	cases := []struct {
		in   *int64
		want string
	}{
		{nil, "N/A"},
		{v(0), "€0"},
		{v(999), "€999"},
		{v(1000), "€1,000"},
		{v(1000000), "€1,000,000"},
		{v(180000000), "€180,000,000"},
		{v(-25000), "€-25,000"},
	}
	for _, tc := range cases {
		if got := FormatMarketValue(tc.in); got != tc.want {
			t.Fatalf("FormatMarketValue(%v): want %q, got %q", tc.in, tc.want, got)
		}
	}
}

func TestMarketValue(t *testing.T) {
	cases := []struct {
		name string
		raw  player.Raw
		want *int64
	}{
		{"float truncates", player.Raw{"marketValue": 1500000.9}, ptr(1500000)},
		{"numeric string", player.Raw{"marketValue": " 2500000 "}, ptr(2500000)},
		{"zero", player.Raw{"marketValue": float64(0)}, ptr(0)},
		{"missing", player.Raw{}, nil},
		{"null", player.Raw{"marketValue": nil}, nil},
		{"garbage string", player.Raw{"marketValue": "not-a-number"}, nil},
		{"decimal string", player.Raw{"marketValue": "1.5"}, nil},
		{"bool", player.Raw{"marketValue": true}, nil},
		{"object", player.Raw{"marketValue": map[string]any{"value": 1}}, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := MarketValue(tc.raw)
			switch {
			case tc.want == nil && got != nil:
				t.Fatalf("expected nil, got %d", *got)
			case tc.want != nil && (got == nil || *got != *tc.want):
				t.Fatalf("expected %d, got %v", *tc.want, got)
			}
		})
	}
}

func TestRank_NullValuesSortLastAndKeepOrder(t *testing.T) {
	raws := []player.Raw{
		{"id": "a", "name": "None", "marketValue": nil},
		{"id": "b", "name": "Missing"},
		{"id": "c", "name": "Garbage", "marketValue": "not-a-number"},
		{"id": "d", "name": "Zero", "marketValue": float64(0)},
	}

	res := (&Ranker{Now: fixedNow}).Rank("Premier League", raws, 10)

	wantOrder := []string{"d", "a", "b", "c"}
	if len(res.Players) != len(wantOrder) {
		t.Fatalf("expected %d players, got %d", len(wantOrder), len(res.Players))
	}
	for i, id := range wantOrder {
		if res.Players[i].PlayerID != id {
			t.Fatalf("position %d: expected %s, got %s", i, id, res.Players[i].PlayerID)
		}
	}
	if res.Players[0].MarketValue != "€0" || res.Players[0].MarketValueInt == nil {
		t.Fatalf("zero value must not be treated as missing: %+v", res.Players[0])
	}
	for _, p := range res.Players[1:] {
		if p.MarketValueInt != nil || p.MarketValue != "N/A" {
			t.Fatalf("expected null value row, got %+v", p)
		}
	}
}

func TestRank_DropsPlayersWithoutIDBeforeTruncating(t *testing.T) {
	raws := []player.Raw{
		{"name": "No ID", "marketValue": float64(90000000)},
		{"id": nil, "name": "Null ID", "marketValue": float64(80000000)},
		{"id": "  ", "name": "Blank ID", "marketValue": float64(70000000)},
		{"id": float64(418560), "name": "Erling Haaland", "marketValue": float64(180000000), "clubName": "Manchester City"},
		{"id": "433177", "name": "Bukayo Saka", "marketValue": float64(120000000), "clubName": "Arsenal FC"},
		{"id": "1", "name": "Third", "marketValue": float64(1)},
	}

	res := (&Ranker{Now: fixedNow}).Rank("Premier League", raws, 2)

	if len(res.Players) != 2 {
		t.Fatalf("expected min(2, 3 with id) rows, got %d", len(res.Players))
	}
	if res.Players[0].PlayerID != "418560" || res.Players[0].Team != "Manchester City" {
		t.Fatalf("unexpected first row: %+v", res.Players[0])
	}
	if res.Players[1].PlayerID != "433177" {
		t.Fatalf("unexpected second row: %+v", res.Players[1])
	}
	if len(res.DroppedNoID) != 3 {
		t.Fatalf("expected 3 dropped players, got %v", res.DroppedNoID)
	}
	if res.CandidateSize != 3 {
		t.Fatalf("expected 3 candidates, got %d", res.CandidateSize)
	}
}

func TestRank_ProjectsDefaults(t *testing.T) {
	raws := []player.Raw{
		{"id": "7", "dateOfBirth": "2001-09-05", "marketValue": "50000000", "position": nil},
	}

	res := (&Ranker{Now: fixedNow}).Rank("Serie A", raws, 5)
	row := res.Players[0]

	if row.League != "Serie A" {
		t.Fatalf("unexpected league %q", row.League)
	}
	if row.Name != NotAvailable || row.Position != NotAvailable || row.Team != NotAvailable {
		t.Fatalf("expected N/A defaults, got %+v", row)
	}
	if row.Age == nil || *row.Age != 22 {
		t.Fatalf("expected age 22, got %v", row.Age)
	}
	if row.MarketValue != "€50,000,000" {
		t.Fatalf("unexpected formatted value %q", row.MarketValue)
	}
}

func TestRank_EmptyInput(t *testing.T) {
	res := NewRanker().Rank("La Liga", nil, 100)
	if len(res.Players) != 0 {
		t.Fatalf("expected no rows, got %d", len(res.Players))
	}
}

func ptr(n int64) *int64 { return &n }
