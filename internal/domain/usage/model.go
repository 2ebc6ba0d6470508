package usage

// Role distinguishes the two ways a pick consumes a team for a user.
type Role string

const (
	// RoleWinner counts picks that selected the team to win.
	RoleWinner Role = "winner"
	// RoleLoser counts picks whose opponent selection implied this team loses.
	RoleLoser Role = "loser"
)

// Entry is one (user, team, role) usage count.
type Entry struct {
	UserID string
	TeamID string
	Role   Role
	Count  int
}

// Ledger aggregates a user's team usage. It is always derived by counting
// the user's active picks against match facts, never stored or patched
// incrementally, so it cannot drift from the picks it summarizes.
type Ledger struct {
	UserID string
	winner map[string]int
	loser  map[string]int
}

// NewLedger returns an empty ledger for userID.
func NewLedger(userID string) Ledger {
	return Ledger{
		UserID: userID,
		winner: make(map[string]int),
		loser:  make(map[string]int),
	}
}

func (l Ledger) WinnerCount(teamID string) int {
	return l.winner[teamID]
}

func (l Ledger) LoserCount(teamID string) int {
	return l.loser[teamID]
}

// AddWinner records one winner-slot use of teamID.
func (l *Ledger) AddWinner(teamID string) {
	if l.winner == nil {
		l.winner = make(map[string]int)
	}
	l.winner[teamID]++
}

// AddLoser records one loser-slot use of teamID.
func (l *Ledger) AddLoser(teamID string) {
	if l.loser == nil {
		l.loser = make(map[string]int)
	}
	l.loser[teamID]++
}

// Entries returns the non-zero counts. Zero-count teams have no entry, so
// "has this team ever been used" queries stay accurate after pick changes.
func (l Ledger) Entries() []Entry {
	out := make([]Entry, 0, len(l.winner)+len(l.loser))
	for teamID, count := range l.winner {
		out = append(out, Entry{UserID: l.UserID, TeamID: teamID, Role: RoleWinner, Count: count})
	}
	for teamID, count := range l.loser {
		out = append(out, Entry{UserID: l.UserID, TeamID: teamID, Role: RoleLoser, Count: count})
	}
	return out
}
