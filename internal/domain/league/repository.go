package league

import "context"

// Repository describes league reads needed by the query service.
type Repository interface {
	List(ctx context.Context) ([]League, error)
	GetByID(ctx context.Context, leagueID string) (League, bool, error)
}
