package querybuilder

import "testing"

func TestSelectBuilder_JoinFilterPaging(t *testing.T) {
	query, args, err := Select("p.player_id", "p.name", "c.name AS club_name").
		From("players p").
		LeftJoin("clubs c", "c.club_id = p.current_club_id").
		Where(Eq("c.domestic_competition_id", "GB1"), ILike("p.name", "saka")).
		OrderBy("p.name ASC").
		Limit(50).
		Offset(100).
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	want := "SELECT p.player_id, p.name, c.name AS club_name FROM players p " +
		"LEFT JOIN clubs c ON c.club_id = p.current_club_id " +
		"WHERE c.domestic_competition_id = $1 AND p.name ILIKE $2 ORDER BY p.name ASC LIMIT 50 OFFSET 100"
	if query != want {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", want, query)
	}
	if len(args) != 2 || args[0] != "GB1" || args[1] != "%saka%" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestILike_EscapesWildcards(t *testing.T) {
	_, args, err := Select("name").From("players").Where(ILike("name", "100%_a")).ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}
	if args[0] != `%100\%\_a%` {
		t.Fatalf("unexpected escaped needle: %v", args[0])
	}
}

func TestSelectBuilder_ExprAndNullChecks(t *testing.T) {
	query, args, err := Select("player_id").
		From("latest_values").
		Where(IsNotNull("market_value_in_eur"), Expr("date <= ?", "2024-06-15"), In("player_id", []any{int64(1), int64(2)})).
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}
	want := "SELECT player_id FROM latest_values WHERE market_value_in_eur IS NOT NULL AND date <= $1 AND player_id IN ($2, $3)"
	if query != want {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", want, query)
	}
	if len(args) != 3 {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestInsertBuilder_MultiRowUpsert(t *testing.T) {
	query, args, err := InsertInto("leagues").
		Columns("league_id", "name", "country").
		Values("GB1", "Premier League", "England").
		Values("ES1", "La Liga", "Spain").
		OnConflictUpdate("league_id").
		ToSQL()
	if err != nil {
		t.Fatalf("build insert query: %v", err)
	}

	want := "INSERT INTO leagues (league_id, name, country) VALUES ($1, $2, $3), ($4, $5, $6) " +
		"ON CONFLICT (league_id) DO UPDATE SET name = EXCLUDED.name, country = EXCLUDED.country"
	if query != want {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", want, query)
	}
	if len(args) != 6 || args[3] != "ES1" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestInsertBuilder_RejectsRaggedRows(t *testing.T) {
	_, _, err := InsertInto("clubs").Columns("club_id", "name").Values(int64(1)).ToSQL()
	if err == nil {
		t.Fatalf("expected ragged row error")
	}
}

func TestDeleteBuilder(t *testing.T) {
	query, args, err := DeleteFrom("player_valuations").
		Where(In("player_id", []any{int64(7), int64(8)})).
		ToSQL()
	if err != nil {
		t.Fatalf("build delete query: %v", err)
	}
	if query != "DELETE FROM player_valuations WHERE player_id IN ($1, $2)" {
		t.Fatalf("unexpected query: %s", query)
	}
	if len(args) != 2 {
		t.Fatalf("unexpected args: %+v", args)
	}

	if _, _, err := DeleteFrom("player_valuations").ToSQL(); err == nil {
		t.Fatalf("expected unconditional delete to be rejected")
	}
}

type valuationRow struct {
	ID       int64  `db:"valuation_id" insert:"skip"`
	PlayerID int64  `db:"player_id"`
	Date     string `db:"date"`
	internal string
}

func TestInsertModels(t *testing.T) {
	rows := []valuationRow{
		{ID: 1, PlayerID: 10, Date: "2024-01-01"},
		{ID: 2, PlayerID: 11, Date: "2024-02-01", internal: "x"},
	}
	query, args, err := InsertModels("player_valuations", rows)
	if err != nil {
		t.Fatalf("build insert: %v", err)
	}
	want := "INSERT INTO player_valuations (player_id, date) VALUES ($1, $2), ($3, $4)"
	if query != want {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", want, query)
	}
	if len(args) != 4 || args[2] != int64(11) {
		t.Fatalf("unexpected args: %+v", args)
	}

	if _, _, err := InsertModels[valuationRow]("player_valuations", nil); err == nil {
		t.Fatalf("expected empty rows error")
	}
}
