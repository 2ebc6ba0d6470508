package pick

import (
	"errors"
	"fmt"
	"time"

	"github.com/offmue/pickem/internal/domain/match"
	"github.com/offmue/pickem/internal/domain/usage"
)

var (
	ErrInvalidSelection      = errors.New("team does not play in this match")
	ErrDeadlinePassed        = errors.New("match already locked")
	ErrTeamExhaustedAsWinner = errors.New("team already used as winner too often")
	ErrTeamExhaustedAsLoser  = errors.New("team already used as loser too often")
)

// Rules stores pick eligibility parameters.
type Rules struct {
	Caps usage.Caps
}

func DefaultRules() Rules {
	return Rules{Caps: usage.DefaultCaps()}
}

// Evaluate decides whether the user may pick candidateTeamID to win m.
// It is a pure read: the first failing check wins and no state changes.
// existing is the user's current active pick for m's week, nil if none.
//
// Resubmitting the pick the user already holds for this match skips the
// usage checks entirely, so an unchanged pick is never penalized twice.
// The lock check still applies to it.
func Evaluate(m match.Match, candidateTeamID string, existing *Pick, ledger usage.Ledger, rules Rules, now time.Time) error {
	if !m.Includes(candidateTeamID) {
		return fmt.Errorf("%w: team=%s match=%s", ErrInvalidSelection, candidateTeamID, m.ID)
	}

	if m.Locked(now) {
		return fmt.Errorf("%w: match=%s", ErrDeadlinePassed, m.ID)
	}

	if existing != nil && existing.MatchID == m.ID && existing.ChosenTeamID == candidateTeamID {
		return nil
	}

	if ledger.WinnerEliminated(candidateTeamID, rules.Caps) {
		return fmt.Errorf("%w: team=%s used=%d cap=%d",
			ErrTeamExhaustedAsWinner, candidateTeamID, ledger.WinnerCount(candidateTeamID), rules.Caps.WinnerCap)
	}

	opponentID := m.OpponentOf(candidateTeamID)
	if ledger.LoserEliminated(opponentID, rules.Caps) {
		return fmt.Errorf("%w: team=%s used=%d cap=%d",
			ErrTeamExhaustedAsLoser, opponentID, ledger.LoserCount(opponentID), rules.Caps.LoserCap)
	}

	return nil
}

// BuildLedger derives a user's usage ledger by counting active picks against
// match facts. Each pick contributes one winner-slot use for its chosen team
// and one loser-slot use for the opponent. Picks whose match is missing from
// matchesByID contribute only their winner slot.
func BuildLedger(userID string, picks []Pick, matchesByID map[string]match.Match) usage.Ledger {
	ledger := usage.NewLedger(userID)
	for _, p := range picks {
		if p.UserID != userID {
			continue
		}
		ledger.AddWinner(p.ChosenTeamID)

		m, ok := matchesByID[p.MatchID]
		if !ok {
			continue
		}
		if opponentID := m.OpponentOf(p.ChosenTeamID); opponentID != "" {
			ledger.AddLoser(opponentID)
		}
	}

	return ledger
}
