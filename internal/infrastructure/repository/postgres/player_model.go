package postgres

import (
	"database/sql"
	"time"
)

type playerInsertModel struct {
	PlayerID      int64      `db:"player_id"`
	Name          string     `db:"name"`
	CurrentClubID *int64     `db:"current_club_id"`
	DateOfBirth   *time.Time `db:"date_of_birth"`
	Position      *string    `db:"position"`
	SubPosition   *string    `db:"sub_position"`
	Foot          *string    `db:"foot"`
	HeightCM      *int       `db:"height_cm"`
	Nationality   *string    `db:"nationality"`
	ImageURL      *string    `db:"image_url"`
	AgentName     *string    `db:"agent_name"`
}

// playerSummaryRow is a player joined with its club and latest valuation.
type playerSummaryRow struct {
	PlayerID         int64          `db:"player_id"`
	Name             sql.NullString `db:"name"`
	Position         sql.NullString `db:"position"`
	SubPosition      sql.NullString `db:"sub_position"`
	DateOfBirth      sql.NullTime   `db:"date_of_birth"`
	CurrentClubID    sql.NullInt64  `db:"current_club_id"`
	ClubName         sql.NullString `db:"club_name"`
	LeagueID         sql.NullString `db:"league_id"`
	MarketValueInEUR sql.NullInt64  `db:"market_value_in_eur"`
}
