package pick

import (
	"errors"
	"testing"
	"time"

	"github.com/offmue/pickem/internal/domain/match"
	"github.com/offmue/pickem/internal/domain/usage"
)

func TestEvaluate(t *testing.T) {
	now := time.Date(2025, 9, 7, 14, 0, 0, 0, time.UTC)
	openMatch := match.Match{
		ID:         "m-1",
		Week:       1,
		HomeTeamID: "den",
		AwayTeamID: "kc",
		StartTime:  now.Add(2 * time.Hour),
	}

	tests := []struct {
		name      string
		mutate    func(*match.Match, *usage.Ledger, **Pick)
		candidate string
		targetErr error
	}{
		{
			name:      "fresh pick allowed",
			mutate:    func(_ *match.Match, _ *usage.Ledger, _ **Pick) {},
			candidate: "den",
			targetErr: nil,
		},
		{
			name: "team not in match",
			mutate: func(_ *match.Match, _ *usage.Ledger, _ **Pick) {
			},
			candidate: "buf",
			targetErr: ErrInvalidSelection,
		},
		{
			name: "match started",
			mutate: func(m *match.Match, _ *usage.Ledger, _ **Pick) {
				m.StartTime = now.Add(-time.Minute)
			},
			candidate: "den",
			targetErr: ErrDeadlinePassed,
		},
		{
			name: "match completed but start in future",
			mutate: func(m *match.Match, _ *usage.Ledger, _ **Pick) {
				m.IsCompleted = true
			},
			candidate: "den",
			targetErr: ErrDeadlinePassed,
		},
		{
			name: "winner slot exhausted",
			mutate: func(_ *match.Match, ledger *usage.Ledger, _ **Pick) {
				ledger.AddWinner("den")
				ledger.AddWinner("den")
			},
			candidate: "den",
			targetErr: ErrTeamExhaustedAsWinner,
		},
		{
			name: "one winner use left is still allowed",
			mutate: func(_ *match.Match, ledger *usage.Ledger, _ **Pick) {
				ledger.AddWinner("den")
			},
			candidate: "den",
			targetErr: nil,
		},
		{
			name: "opponent loser slot exhausted",
			mutate: func(_ *match.Match, ledger *usage.Ledger, _ **Pick) {
				ledger.AddLoser("kc")
			},
			candidate: "den",
			targetErr: ErrTeamExhaustedAsLoser,
		},
		{
			name: "identical resubmission skips usage checks",
			mutate: func(_ *match.Match, ledger *usage.Ledger, existing **Pick) {
				ledger.AddWinner("den")
				ledger.AddWinner("den")
				ledger.AddLoser("kc")
				*existing = &Pick{ID: "p-1", UserID: "u-1", MatchID: "m-1", Week: 1, ChosenTeamID: "den"}
			},
			candidate: "den",
			targetErr: nil,
		},
		{
			name: "identical resubmission still honors the lock",
			mutate: func(m *match.Match, _ *usage.Ledger, existing **Pick) {
				m.StartTime = now.Add(-time.Minute)
				*existing = &Pick{ID: "p-1", UserID: "u-1", MatchID: "m-1", Week: 1, ChosenTeamID: "den"}
			},
			candidate: "den",
			targetErr: ErrDeadlinePassed,
		},
		{
			name: "existing pick on other team does not short-circuit",
			mutate: func(_ *match.Match, ledger *usage.Ledger, existing **Pick) {
				ledger.AddWinner("den")
				ledger.AddWinner("den")
				*existing = &Pick{ID: "p-1", UserID: "u-1", MatchID: "m-1", Week: 1, ChosenTeamID: "kc"}
			},
			candidate: "den",
			targetErr: ErrTeamExhaustedAsWinner,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := openMatch
			ledger := usage.NewLedger("u-1")
			var existing *Pick
			tt.mutate(&m, &ledger, &existing)

			err := Evaluate(m, tt.candidate, existing, ledger, DefaultRules(), now)
			if tt.targetErr == nil {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}

			if !errors.Is(err, tt.targetErr) {
				t.Fatalf("expected error %v, got %v", tt.targetErr, err)
			}
		})
	}
}

func TestEvaluateChecksLockBeforeUsage(t *testing.T) {
	now := time.Date(2025, 9, 7, 14, 0, 0, 0, time.UTC)
	m := match.Match{
		ID:         "m-1",
		Week:       1,
		HomeTeamID: "den",
		AwayTeamID: "kc",
		StartTime:  now.Add(-time.Hour),
	}

	ledger := usage.NewLedger("u-1")
	ledger.AddWinner("den")
	ledger.AddWinner("den")

	err := Evaluate(m, "den", nil, ledger, DefaultRules(), now)
	if !errors.Is(err, ErrDeadlinePassed) {
		t.Fatalf("expected ErrDeadlinePassed regardless of ledger state, got %v", err)
	}
}

func TestBuildLedger(t *testing.T) {
	matches := map[string]match.Match{
		"m-1": {ID: "m-1", Week: 1, HomeTeamID: "den", AwayTeamID: "kc"},
		"m-2": {ID: "m-2", Week: 2, HomeTeamID: "den", AwayTeamID: "buf"},
	}
	picks := []Pick{
		{ID: "p-1", UserID: "u-1", MatchID: "m-1", Week: 1, ChosenTeamID: "den"},
		{ID: "p-2", UserID: "u-1", MatchID: "m-2", Week: 2, ChosenTeamID: "den"},
		{ID: "p-3", UserID: "u-2", MatchID: "m-1", Week: 1, ChosenTeamID: "kc"},
	}

	ledger := BuildLedger("u-1", picks, matches)
	if got := ledger.WinnerCount("den"); got != 2 {
		t.Fatalf("expected den winner count 2, got %d", got)
	}
	if got := ledger.LoserCount("kc"); got != 1 {
		t.Fatalf("expected kc loser count 1, got %d", got)
	}
	if got := ledger.LoserCount("buf"); got != 1 {
		t.Fatalf("expected buf loser count 1, got %d", got)
	}
	if got := ledger.WinnerCount("kc"); got != 0 {
		t.Fatalf("expected other user's pick to be ignored, got winner count %d", got)
	}

	if !ledger.WinnerEliminated("den", usage.DefaultCaps()) {
		t.Fatalf("expected den to be winner-eliminated at count 2")
	}
	if ledger.WinnerEliminated("kc", usage.DefaultCaps()) {
		t.Fatalf("did not expect kc to be winner-eliminated")
	}

	entries := ledger.Entries()
	for _, entry := range entries {
		if entry.Count == 0 {
			t.Fatalf("zero-count entry must not be materialized: %+v", entry)
		}
	}
}
