package match

import "context"

// Repository exposes match schedule facts. The result sync job is the only
// writer; the pick engine reads.
type Repository interface {
	GetByID(ctx context.Context, matchID string) (Match, bool, error)
	ListByWeek(ctx context.Context, week int) ([]Match, error)
	ListAll(ctx context.Context) ([]Match, error)
	Upsert(ctx context.Context, m Match) error
}
