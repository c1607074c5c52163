package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/market-value-crawler/internal/domain/valuation"
	qb "github.com/riskibarqy/market-value-crawler/internal/platform/querybuilder"
)

type ValuationRepository struct {
	db *sqlx.DB
}

func NewValuationRepository(db *sqlx.DB) *ValuationRepository {
	return &ValuationRepository{db: db}
}

func (r *ValuationRepository) ListByPlayer(ctx context.Context, playerID int64) ([]valuation.Point, error) {
	query, args, err := qb.Select("date", "market_value_in_eur").From("player_valuations").
		Where(qb.Eq("player_id", playerID)).
		OrderBy("date ASC NULLS FIRST", "valuation_id ASC").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select valuations query: %w", err)
	}

	var rows []valuationPointRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select valuations player=%d: %w", playerID, err)
	}

	out := make([]valuation.Point, 0, len(rows))
	for _, row := range rows {
		out = append(out, valuation.Point{
			Date:           nullTimePtr(row.Date),
			MarketValueEUR: nullInt64Ptr(row.MarketValueInEUR),
		})
	}
	return out, nil
}
