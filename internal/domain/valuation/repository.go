package valuation

import "context"

type Repository interface {
	// ListByPlayer returns points ordered by date ascending. Unknown players
	// yield an empty slice, not an error.
	ListByPlayer(ctx context.Context, playerID int64) ([]Point, error)
}
