package player

import (
	"fmt"
	"time"
)

// Raw is one upstream player record as decoded from JSON, plus the
// ClubNameKey tag added during a crawl.
type Raw map[string]any

const (
	ClubNameKey     = "clubName"
	UnknownClubName = "Unknown Club"
)

// Player is the stored biographical record.
type Player struct {
	ID            int64
	Name          string
	CurrentClubID *int64
	DateOfBirth   *time.Time
	Position      *string
	SubPosition   *string
	Foot          *string
	HeightCM      *int
	Nationality   *string
	ImageURL      *string
	AgentName     *string
}

func (p Player) Validate() error {
	if p.ID <= 0 {
		return fmt.Errorf("player id must be positive, got %d", p.ID)
	}
	return nil
}

// Summary is a player joined with club and latest valuation.
type Summary struct {
	ID                    int64
	Name                  string
	Position              *string
	SubPosition           *string
	DateOfBirth           *time.Time
	CurrentClubID         *int64
	ClubName              *string
	LeagueID              *string
	CurrentMarketValueEUR *int64
}

// SearchFilter narrows a player search. Empty strings mean no filter.
type SearchFilter struct {
	LeagueID string
	Name     string
	Limit    int
	Offset   int
}
