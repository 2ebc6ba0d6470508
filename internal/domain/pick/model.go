package pick

import (
	"fmt"
	"time"
)

// Pick is a user's single selection for one week: the team they expect to
// win its match. At most one active pick exists per (user, week).
type Pick struct {
	ID           string
	UserID       string
	MatchID      string
	Week         int
	ChosenTeamID string
	// IsCorrect stays nil until the scoring reconciler annotates the pick
	// from a completed match. It never feeds back into usage counts.
	IsCorrect *bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (p Pick) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("pick id is required")
	}
	if p.UserID == "" {
		return fmt.Errorf("user id is required")
	}
	if p.MatchID == "" {
		return fmt.Errorf("match id is required")
	}
	if p.Week <= 0 {
		return fmt.Errorf("week must be greater than zero")
	}
	if p.ChosenTeamID == "" {
		return fmt.Errorf("chosen team id is required")
	}

	return nil
}

// Scored reports whether the reconciler has annotated this pick.
func (p Pick) Scored() bool {
	return p.IsCorrect != nil
}
