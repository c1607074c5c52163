package valuation

import (
	"fmt"
	"time"
)

// Valuation is one dated market value observation for a player.
type Valuation struct {
	PlayerID       int64
	Date           *time.Time
	MarketValueEUR *int64
	ClubID         *int64
	LeagueID       *string
}

func (v Valuation) Validate() error {
	if v.PlayerID <= 0 {
		return fmt.Errorf("valuation player id must be positive, got %d", v.PlayerID)
	}
	return nil
}

// Point is a valuation projected for history charts.
type Point struct {
	Date           *time.Time
	MarketValueEUR *int64
}
