package match

import (
	"fmt"
	"time"
)

// Match is one scheduled game between two teams in a given week.
type Match struct {
	ID           string
	Week         int
	HomeTeamID   string
	AwayTeamID   string
	StartTime    time.Time
	IsCompleted  bool
	WinnerTeamID string
	HomeScore    *int
	AwayScore    *int
}

func (m Match) Validate() error {
	if m.ID == "" {
		return fmt.Errorf("match id is required")
	}
	if m.Week <= 0 {
		return fmt.Errorf("match week must be greater than zero")
	}
	if m.HomeTeamID == "" || m.AwayTeamID == "" {
		return fmt.Errorf("match teams are required")
	}
	if m.HomeTeamID == m.AwayTeamID {
		return fmt.Errorf("match teams must differ")
	}
	if m.StartTime.IsZero() {
		return fmt.Errorf("match start time is required")
	}

	return nil
}

// Includes reports whether teamID is one of the two teams in this match.
func (m Match) Includes(teamID string) bool {
	return teamID == m.HomeTeamID || teamID == m.AwayTeamID
}

// OpponentOf returns the other team in the match, or "" when teamID
// does not play in it.
func (m Match) OpponentOf(teamID string) string {
	switch teamID {
	case m.HomeTeamID:
		return m.AwayTeamID
	case m.AwayTeamID:
		return m.HomeTeamID
	default:
		return ""
	}
}

// Locked reports whether the match can no longer be picked. A match locks
// at its scheduled start instant or when it is marked completed, whichever
// comes first. Locking is derived, not stored.
func (m Match) Locked(now time.Time) bool {
	if m.IsCompleted {
		return true
	}
	return !now.Before(m.StartTime)
}

// HasResult reports whether the match carries a usable final outcome.
func (m Match) HasResult() bool {
	return m.IsCompleted && m.WinnerTeamID != ""
}
