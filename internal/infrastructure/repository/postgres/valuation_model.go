package postgres

import (
	"database/sql"
	"time"
)

type valuationInsertModel struct {
	ValuationID      int64      `db:"valuation_id" insert:"skip"`
	PlayerID         int64      `db:"player_id"`
	Date             *time.Time `db:"date"`
	MarketValueInEUR *int64     `db:"market_value_in_eur"`
	CurrentClubID    *int64     `db:"current_club_id"`
	LeagueID         *string    `db:"player_club_domestic_competition_id"`
}

type valuationPointRow struct {
	Date             sql.NullTime  `db:"date"`
	MarketValueInEUR sql.NullInt64 `db:"market_value_in_eur"`
}
