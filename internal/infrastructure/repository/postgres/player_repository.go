package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/market-value-crawler/internal/domain/player"
	qb "github.com/riskibarqy/market-value-crawler/internal/platform/querybuilder"
)

type PlayerRepository struct {
	db *sqlx.DB
}

var playerSummaryColumns = []string{
	"p.player_id",
	"p.name",
	"p.position",
	"p.sub_position",
	"p.date_of_birth",
	"p.current_club_id",
	"c.name AS club_name",
	"c.domestic_competition_id AS league_id",
	"lv.market_value_in_eur",
}

const latestValuationJoin = `LATERAL (
    SELECT pv.market_value_in_eur
    FROM player_valuations pv
    WHERE pv.player_id = p.player_id
    ORDER BY pv.date DESC NULLS LAST, pv.valuation_id DESC
    LIMIT 1
) lv`

func NewPlayerRepository(db *sqlx.DB) *PlayerRepository {
	return &PlayerRepository{db: db}
}

func playerSummarySelect() *qb.SelectBuilder {
	return qb.Select(playerSummaryColumns...).
		From("players p").
		LeftJoin("clubs c", "c.club_id = p.current_club_id").
		LeftJoin(latestValuationJoin, "TRUE")
}

func searchPlayersQuery(filter player.SearchFilter) (string, []any, error) {
	b := playerSummarySelect()
	if filter.LeagueID != "" {
		b.Where(qb.Eq("c.domestic_competition_id", filter.LeagueID))
	}
	if filter.Name != "" {
		b.Where(qb.ILike("p.name", filter.Name))
	}
	return b.OrderBy("p.name ASC", "p.player_id ASC").
		Limit(filter.Limit).
		Offset(filter.Offset).
		ToSQL()
}

func topPlayersQuery(limit int) (string, []any, error) {
	return playerSummarySelect().
		Where(qb.IsNotNull("lv.market_value_in_eur")).
		OrderBy("lv.market_value_in_eur DESC", "p.player_id ASC").
		Limit(limit).
		ToSQL()
}

func (r *PlayerRepository) Search(ctx context.Context, filter player.SearchFilter) ([]player.Summary, error) {
	query, args, err := searchPlayersQuery(filter)
	if err != nil {
		return nil, fmt.Errorf("build search players query: %w", err)
	}
	return r.selectSummaries(ctx, "search players", query, args)
}

func (r *PlayerRepository) TopByMarketValue(ctx context.Context, limit int) ([]player.Summary, error) {
	query, args, err := topPlayersQuery(limit)
	if err != nil {
		return nil, fmt.Errorf("build top players query: %w", err)
	}
	return r.selectSummaries(ctx, "select top players", query, args)
}

func (r *PlayerRepository) GetByID(ctx context.Context, playerID int64) (player.Summary, bool, error) {
	query, args, err := playerSummarySelect().
		Where(qb.Eq("p.player_id", playerID)).
		ToSQL()
	if err != nil {
		return player.Summary{}, false, fmt.Errorf("build get player by id query: %w", err)
	}

	var row playerSummaryRow
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return player.Summary{}, false, nil
		}
		return player.Summary{}, false, fmt.Errorf("get player by id: %w", err)
	}

	return playerSummaryFromRow(row), true, nil
}

func (r *PlayerRepository) selectSummaries(ctx context.Context, op, query string, args []any) ([]player.Summary, error) {
	var rows []playerSummaryRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := make([]player.Summary, 0, len(rows))
	for _, row := range rows {
		out = append(out, playerSummaryFromRow(row))
	}
	return out, nil
}

func playerSummaryFromRow(row playerSummaryRow) player.Summary {
	return player.Summary{
		ID:                    row.PlayerID,
		Name:                  emptyIfNull(row.Name),
		Position:              nullStringPtr(row.Position),
		SubPosition:           nullStringPtr(row.SubPosition),
		DateOfBirth:           nullTimePtr(row.DateOfBirth),
		CurrentClubID:         nullInt64Ptr(row.CurrentClubID),
		ClubName:              nullStringPtr(row.ClubName),
		LeagueID:              nullStringPtr(row.LeagueID),
		CurrentMarketValueEUR: nullInt64Ptr(row.MarketValueInEUR),
	}
}
