package club

import "fmt"

// Club is a team in a domestic competition. LeagueID is nil when the
// competition is unknown to the store.
type Club struct {
	ID       int64
	Name     string
	LeagueID *string
}

func (c Club) Validate() error {
	if c.ID <= 0 {
		return fmt.Errorf("club id must be positive, got %d", c.ID)
	}
	return nil
}
