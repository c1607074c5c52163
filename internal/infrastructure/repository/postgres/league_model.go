package postgres

import "database/sql"

type leagueTableModel struct {
	LeagueID string         `db:"league_id"`
	Name     sql.NullString `db:"name"`
	Country  sql.NullString `db:"country"`
}

type leagueInsertModel struct {
	LeagueID string  `db:"league_id"`
	Name     string  `db:"name"`
	Country  *string `db:"country"`
}
