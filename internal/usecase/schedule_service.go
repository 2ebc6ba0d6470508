package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/offmue/pickem/internal/domain/match"
)

type ScheduleService struct {
	matchRepo match.Repository
	now       func() time.Time
}

func NewScheduleService(matchRepo match.Repository) *ScheduleService {
	return &ScheduleService{
		matchRepo: matchRepo,
		now:       time.Now,
	}
}

// WeekMatches lists one week's matches in kickoff order.
func (s *ScheduleService) WeekMatches(ctx context.Context, week int) ([]match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScheduleService.WeekMatches")
	defer span.End()

	if week <= 0 {
		return nil, fmt.Errorf("%w: week must be greater than zero", ErrInvalidInput)
	}

	matches, err := s.matchRepo.ListByWeek(ctx, week)
	if err != nil {
		return nil, fmt.Errorf("list matches for week %d: %w", week, err)
	}

	return matches, nil
}

// CurrentWeek returns the earliest week that still has an unlocked match.
// When every match has locked, the final scheduled week is current; an
// empty schedule defaults to week 1.
func (s *ScheduleService) CurrentWeek(ctx context.Context) (int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScheduleService.CurrentWeek")
	defer span.End()

	matches, err := s.matchRepo.ListAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("list matches: %w", err)
	}
	if len(matches) == 0 {
		return 1, nil
	}

	now := s.now().UTC()
	openWeeks := make([]int, 0)
	lastWeek := 0
	for _, m := range matches {
		if m.Week > lastWeek {
			lastWeek = m.Week
		}
		if !m.Locked(now) {
			openWeeks = append(openWeeks, m.Week)
		}
	}

	if len(openWeeks) == 0 {
		return lastWeek, nil
	}

	sort.Ints(openWeeks)
	return openWeeks[0], nil
}
