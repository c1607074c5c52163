package postgres

type clubInsertModel struct {
	ClubID                int64   `db:"club_id"`
	Name                  string  `db:"name"`
	DomesticCompetitionID *string `db:"domestic_competition_id"`
}
