package usage

import "context"

// Repository derives a user's ledger from their active picks. Implementations
// must recount from pick rows on every call rather than maintaining counters.
type Repository interface {
	GetLedger(ctx context.Context, userID string) (Ledger, error)
}
