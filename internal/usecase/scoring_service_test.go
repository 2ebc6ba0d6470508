package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/offmue/pickem/internal/domain/match"
	"github.com/offmue/pickem/internal/domain/pick"
	"github.com/offmue/pickem/internal/domain/user"
	"github.com/offmue/pickem/internal/infrastructure/repository/memory"
	"github.com/offmue/pickem/internal/platform/logging"
)

type scoringFixture struct {
	service *ScoringService
	picks   *memory.PickRepository
	matches *memory.MatchRepository
}

func newScoringFixture(t *testing.T) *scoringFixture {
	t.Helper()

	kickoff := time.Date(2025, time.September, 7, 18, 0, 0, 0, time.UTC)
	score := func(home, away int) (*int, *int) { return &home, &away }
	homeScore, awayScore := score(24, 17)

	matches := []match.Match{
		{
			ID: "w1-phi-dal", Week: 1, HomeTeamID: "phi", AwayTeamID: "dal",
			StartTime: kickoff, IsCompleted: true, WinnerTeamID: "phi",
			HomeScore: homeScore, AwayScore: awayScore,
		},
		{ID: "w1-kc-den", Week: 1, HomeTeamID: "kc", AwayTeamID: "den", StartTime: kickoff.Add(time.Hour)},
	}
	users := []user.User{
		{ID: "u-manuel", Username: "manuel"},
		{ID: "u-daniel", Username: "daniel"},
		{ID: "u-raff", Username: "raff"},
	}

	matchRepo := memory.NewMatchRepository(matches)
	pickRepo := memory.NewPickRepository()

	seedPicks := []pick.Pick{
		{ID: "p-1", UserID: "u-manuel", MatchID: "w1-phi-dal", Week: 1, ChosenTeamID: "phi"},
		{ID: "p-2", UserID: "u-daniel", MatchID: "w1-phi-dal", Week: 1, ChosenTeamID: "dal"},
	}
	for _, p := range seedPicks {
		p.CreatedAt = kickoff.Add(-24 * time.Hour)
		p.UpdatedAt = p.CreatedAt
		if _, err := pickRepo.Upsert(context.Background(), p); err != nil {
			t.Fatalf("seed pick %s: %v", p.ID, err)
		}
	}

	service := NewScoringService(
		memory.NewUserRepository(users),
		matchRepo,
		pickRepo,
		logging.NewNop(),
	)

	return &scoringFixture{service: service, picks: pickRepo, matches: matchRepo}
}

func TestScoringService_Reconcile_AnnotatesPicks(t *testing.T) {
	t.Parallel()

	f := newScoringFixture(t)

	updated, err := f.service.Reconcile(context.Background(), "w1-phi-dal")
	if err != nil {
		t.Fatalf("Reconcile error: %v", err)
	}
	if updated != 2 {
		t.Fatalf("picks updated: got=%d want=2", updated)
	}

	picks, err := f.picks.ListByMatch(context.Background(), "w1-phi-dal")
	if err != nil {
		t.Fatalf("ListByMatch error: %v", err)
	}
	for _, p := range picks {
		if p.IsCorrect == nil {
			t.Fatalf("pick %s not annotated", p.ID)
		}
		wantCorrect := p.ChosenTeamID == "phi"
		if *p.IsCorrect != wantCorrect {
			t.Fatalf("pick %s correctness: got=%v want=%v", p.ID, *p.IsCorrect, wantCorrect)
		}
	}
}

func TestScoringService_Reconcile_Idempotent(t *testing.T) {
	t.Parallel()

	f := newScoringFixture(t)

	if _, err := f.service.Reconcile(context.Background(), "w1-phi-dal"); err != nil {
		t.Fatalf("first Reconcile error: %v", err)
	}
	updated, err := f.service.Reconcile(context.Background(), "w1-phi-dal")
	if err != nil {
		t.Fatalf("second Reconcile error: %v", err)
	}
	if updated != 0 {
		t.Fatalf("re-running reconciliation must change nothing: got=%d updates", updated)
	}
}

func TestScoringService_Reconcile_NoPicksIsNoop(t *testing.T) {
	t.Parallel()

	f := newScoringFixture(t)

	ctx := context.Background()
	m, _, err := f.matches.GetByID(ctx, "w1-kc-den")
	if err != nil {
		t.Fatalf("GetByID error: %v", err)
	}
	m.IsCompleted = true
	m.WinnerTeamID = "kc"
	if err := f.matches.Upsert(ctx, m); err != nil {
		t.Fatalf("Upsert error: %v", err)
	}

	updated, err := f.service.Reconcile(ctx, "w1-kc-den")
	if err != nil {
		t.Fatalf("Reconcile error: %v", err)
	}
	if updated != 0 {
		t.Fatalf("match without picks: got=%d updates, want 0", updated)
	}
}

func TestScoringService_Reconcile_Preconditions(t *testing.T) {
	t.Parallel()

	f := newScoringFixture(t)
	ctx := context.Background()

	if _, err := f.service.Reconcile(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown match: got %v, want ErrNotFound", err)
	}
	if _, err := f.service.Reconcile(ctx, "w1-kc-den"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("unfinished match: got %v, want ErrInvalidInput", err)
	}
	if _, err := f.service.Reconcile(ctx, "  "); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("blank match id: got %v, want ErrInvalidInput", err)
	}
}

func TestScoringService_UserScore(t *testing.T) {
	t.Parallel()

	f := newScoringFixture(t)
	ctx := context.Background()

	if _, err := f.service.Reconcile(ctx, "w1-phi-dal"); err != nil {
		t.Fatalf("Reconcile error: %v", err)
	}

	score, err := f.service.UserScore(ctx, "u-manuel")
	if err != nil {
		t.Fatalf("UserScore error: %v", err)
	}
	if score != 1 {
		t.Fatalf("manuel score: got=%d want=1", score)
	}

	score, err = f.service.UserScore(ctx, "u-daniel")
	if err != nil {
		t.Fatalf("UserScore error: %v", err)
	}
	if score != 0 {
		t.Fatalf("daniel score: got=%d want=0", score)
	}
}

func TestScoringService_Leaderboard_TiedScoresShareRank(t *testing.T) {
	t.Parallel()

	kickoff := time.Date(2025, time.September, 7, 18, 0, 0, 0, time.UTC)
	users := []user.User{
		{ID: "u-manuel", Username: "manuel"},
		{ID: "u-daniel", Username: "daniel"},
		{ID: "u-raff", Username: "raff"},
		{ID: "u-haunschi", Username: "haunschi"},
	}

	matchRepo := memory.NewMatchRepository(nil)
	pickRepo := memory.NewPickRepository()

	correct := true
	incorrect := false
	seed := []pick.Pick{
		{ID: "p-1", UserID: "u-manuel", MatchID: "m-1", Week: 1, ChosenTeamID: "phi", IsCorrect: &correct},
		{ID: "p-2", UserID: "u-manuel", MatchID: "m-2", Week: 2, ChosenTeamID: "kc", IsCorrect: &correct},
		{ID: "p-3", UserID: "u-daniel", MatchID: "m-1", Week: 1, ChosenTeamID: "phi", IsCorrect: &correct},
		{ID: "p-4", UserID: "u-daniel", MatchID: "m-2", Week: 2, ChosenTeamID: "buf", IsCorrect: &correct},
		{ID: "p-5", UserID: "u-raff", MatchID: "m-1", Week: 1, ChosenTeamID: "phi", IsCorrect: &correct},
		{ID: "p-6", UserID: "u-raff", MatchID: "m-2", Week: 2, ChosenTeamID: "den", IsCorrect: &incorrect},
	}
	for _, p := range seed {
		p.CreatedAt = kickoff
		p.UpdatedAt = kickoff
		if _, err := pickRepo.Upsert(context.Background(), p); err != nil {
			t.Fatalf("seed pick %s: %v", p.ID, err)
		}
	}

	service := NewScoringService(
		memory.NewUserRepository(users),
		matchRepo,
		pickRepo,
		logging.NewNop(),
	)

	entries, err := service.Leaderboard(context.Background())
	if err != nil {
		t.Fatalf("Leaderboard error: %v", err)
	}
	if len(entries) != 4 {
		t.Fatalf("expected 4 entries, got=%d", len(entries))
	}

	want := []struct {
		username string
		score    int
		rank     int
	}{
		{"daniel", 2, 1},
		{"manuel", 2, 1},
		{"raff", 1, 3},
		{"haunschi", 0, 4},
	}
	for i, w := range want {
		got := entries[i]
		if got.Username != w.username || got.Score != w.score || got.Rank != w.rank {
			t.Fatalf("entry %d: got={%s %d rank=%d} want={%s %d rank=%d}",
				i, got.Username, got.Score, got.Rank, w.username, w.score, w.rank)
		}
	}
}
