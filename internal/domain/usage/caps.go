package usage

// Caps stores the season-long reuse limits per (user, team).
type Caps struct {
	// WinnerCap limits how often a team may be picked to win.
	WinnerCap int
	// LoserCap limits how often a team may be implied to lose.
	LoserCap int
}

func DefaultCaps() Caps {
	return Caps{
		WinnerCap: 2,
		LoserCap:  1,
	}
}

// WinnerEliminated reports whether teamID may no longer be picked to win.
// Elimination is a view over the ledger, not separate state.
func (l Ledger) WinnerEliminated(teamID string, caps Caps) bool {
	return l.WinnerCount(teamID) >= caps.WinnerCap
}

// LoserEliminated reports whether teamID may no longer be implied to lose.
func (l Ledger) LoserEliminated(teamID string, caps Caps) bool {
	return l.LoserCount(teamID) >= caps.LoserCap
}
