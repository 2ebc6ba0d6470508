package pick

import (
	"context"
	"errors"
)

// ErrConflict signals that a concurrent submission touched the same
// (user, week) row and the transaction was aborted. Callers should retry
// once against fresh state.
var ErrConflict = errors.New("concurrent pick modification detected")

// Repository describes pick persistence needs from use cases.
type Repository interface {
	// GetActiveByUserWeek returns the user's single active pick for a week.
	GetActiveByUserWeek(ctx context.Context, userID string, week int) (Pick, bool, error)
	ListByUser(ctx context.Context, userID string) ([]Pick, error)
	ListByMatch(ctx context.Context, matchID string) ([]Pick, error)
	// Upsert atomically replaces the (user, week) row. A replaced row's old
	// ledger contributions disappear with it; partial states are never
	// visible to concurrent readers.
	Upsert(ctx context.Context, p Pick) (Pick, error)
	// SetResult annotates a pick's correctness. Repeated calls with the same
	// value are no-ops.
	SetResult(ctx context.Context, pickID string, isCorrect bool) error
	// CountCorrectByUser returns scored-correct pick counts keyed by user id.
	CountCorrectByUser(ctx context.Context) (map[string]int, error)
}
