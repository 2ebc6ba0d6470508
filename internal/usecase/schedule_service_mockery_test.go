package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/offmue/pickem/internal/domain/match"
	matchmock "github.com/offmue/pickem/internal/mocks/domain/match"
)

func TestScheduleService_WeekMatches_SuccessUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	matchRepo := matchmock.NewRepository(t)

	expected := []match.Match{
		{
			ID:         "2025-w3-phi-kc",
			Week:       3,
			HomeTeamID: "phi",
			AwayTeamID: "kc",
			StartTime:  time.Date(2025, time.September, 21, 17, 0, 0, 0, time.UTC),
		},
	}

	matchRepo.
		On("ListByWeek", mock.Anything, 3).
		Return(expected, nil).
		Once()

	service := NewScheduleService(matchRepo)

	got, err := service.WeekMatches(ctx, 3)
	if err != nil {
		t.Fatalf("WeekMatches error: %v", err)
	}
	if len(got) != 1 || got[0].ID != expected[0].ID {
		t.Fatalf("unexpected matches: %+v", got)
	}
}

func TestScheduleService_WeekMatches_RepositoryErrorUsingMockery(t *testing.T) {
	t.Parallel()

	matchRepo := matchmock.NewRepository(t)
	storageErr := errors.New("connection reset")

	matchRepo.
		On("ListByWeek", mock.Anything, 5).
		Return(nil, storageErr).
		Once()

	service := NewScheduleService(matchRepo)

	if _, err := service.WeekMatches(context.Background(), 5); !errors.Is(err, storageErr) {
		t.Fatalf("expected wrapped storage error, got: %v", err)
	}
}
