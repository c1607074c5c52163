package player

import "context"

// Repository describes player reads needed by the query service.
type Repository interface {
	Search(ctx context.Context, filter SearchFilter) ([]Summary, error)
	TopByMarketValue(ctx context.Context, limit int) ([]Summary, error)
	GetByID(ctx context.Context, playerID int64) (Summary, bool, error)
}
