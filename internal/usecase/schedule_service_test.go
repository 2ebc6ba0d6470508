package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/offmue/pickem/internal/domain/match"
	"github.com/offmue/pickem/internal/infrastructure/repository/memory"
)

func TestScheduleService_CurrentWeek(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, time.September, 14, 12, 0, 0, 0, time.UTC)

	t.Run("earliest week with an open match", func(t *testing.T) {
		matches := []match.Match{
			{ID: "m-1", Week: 1, HomeTeamID: "phi", AwayTeamID: "dal", StartTime: now.Add(-7 * 24 * time.Hour), IsCompleted: true, WinnerTeamID: "phi"},
			{ID: "m-2", Week: 2, HomeTeamID: "kc", AwayTeamID: "den", StartTime: now.Add(-time.Hour)},
			{ID: "m-3", Week: 2, HomeTeamID: "buf", AwayTeamID: "bal", StartTime: now.Add(6 * time.Hour)},
			{ID: "m-4", Week: 3, HomeTeamID: "phi", AwayTeamID: "kc", StartTime: now.Add(7 * 24 * time.Hour)},
		}

		service := NewScheduleService(memory.NewMatchRepository(matches))
		service.now = func() time.Time { return now }

		week, err := service.CurrentWeek(context.Background())
		if err != nil {
			t.Fatalf("CurrentWeek error: %v", err)
		}
		if week != 2 {
			t.Fatalf("current week: got=%d want=2", week)
		}
	})

	t.Run("all matches locked falls back to last week", func(t *testing.T) {
		matches := []match.Match{
			{ID: "m-1", Week: 1, HomeTeamID: "phi", AwayTeamID: "dal", StartTime: now.Add(-14 * 24 * time.Hour), IsCompleted: true, WinnerTeamID: "phi"},
			{ID: "m-2", Week: 2, HomeTeamID: "kc", AwayTeamID: "den", StartTime: now.Add(-time.Hour)},
		}

		service := NewScheduleService(memory.NewMatchRepository(matches))
		service.now = func() time.Time { return now }

		week, err := service.CurrentWeek(context.Background())
		if err != nil {
			t.Fatalf("CurrentWeek error: %v", err)
		}
		if week != 2 {
			t.Fatalf("current week: got=%d want=2", week)
		}
	})

	t.Run("empty schedule defaults to week one", func(t *testing.T) {
		service := NewScheduleService(memory.NewMatchRepository(nil))
		service.now = func() time.Time { return now }

		week, err := service.CurrentWeek(context.Background())
		if err != nil {
			t.Fatalf("CurrentWeek error: %v", err)
		}
		if week != 1 {
			t.Fatalf("current week: got=%d want=1", week)
		}
	})
}

func TestScheduleService_WeekMatches(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, time.September, 14, 12, 0, 0, 0, time.UTC)
	matches := []match.Match{
		{ID: "m-late", Week: 1, HomeTeamID: "kc", AwayTeamID: "den", StartTime: now.Add(4 * time.Hour)},
		{ID: "m-early", Week: 1, HomeTeamID: "phi", AwayTeamID: "dal", StartTime: now.Add(time.Hour)},
		{ID: "m-other", Week: 2, HomeTeamID: "buf", AwayTeamID: "bal", StartTime: now.Add(7 * 24 * time.Hour)},
	}

	service := NewScheduleService(memory.NewMatchRepository(matches))

	got, err := service.WeekMatches(context.Background(), 1)
	if err != nil {
		t.Fatalf("WeekMatches error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 matches, got=%d", len(got))
	}
	if got[0].ID != "m-early" || got[1].ID != "m-late" {
		t.Fatalf("matches not in kickoff order: %s, %s", got[0].ID, got[1].ID)
	}

	if _, err := service.WeekMatches(context.Background(), 0); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("week 0: got %v, want ErrInvalidInput", err)
	}
}
