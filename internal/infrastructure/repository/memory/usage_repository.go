package memory

import (
	"context"
	"fmt"

	"github.com/offmue/pickem/internal/domain/match"
	"github.com/offmue/pickem/internal/domain/pick"
	"github.com/offmue/pickem/internal/domain/usage"
)

// UsageRepository derives ledgers from the pick and match repositories.
// It holds no state of its own: every call recounts active picks, so the
// ledger can never drift from the picks it summarizes.
type UsageRepository struct {
	picks   pick.Repository
	matches match.Repository
}

func NewUsageRepository(picks pick.Repository, matches match.Repository) *UsageRepository {
	return &UsageRepository{picks: picks, matches: matches}
}

func (r *UsageRepository) GetLedger(ctx context.Context, userID string) (usage.Ledger, error) {
	picks, err := r.picks.ListByUser(ctx, userID)
	if err != nil {
		return usage.Ledger{}, fmt.Errorf("list picks for ledger: %w", err)
	}

	matches, err := r.matches.ListAll(ctx)
	if err != nil {
		return usage.Ledger{}, fmt.Errorf("list matches for ledger: %w", err)
	}

	matchesByID := make(map[string]match.Match, len(matches))
	for _, m := range matches {
		matchesByID[m.ID] = m
	}

	return pick.BuildLedger(userID, picks, matchesByID), nil
}
