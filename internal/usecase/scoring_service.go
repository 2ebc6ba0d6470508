package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/offmue/pickem/internal/domain/match"
	"github.com/offmue/pickem/internal/domain/pick"
	"github.com/offmue/pickem/internal/domain/user"
	"github.com/offmue/pickem/internal/platform/logging"
	"github.com/offmue/pickem/internal/platform/resilience"
)

// LeaderboardEntry is one ranked row of the season standings.
type LeaderboardEntry struct {
	UserID   string
	Username string
	Score    int
	Rank     int
}

type ScoringService struct {
	userRepo  user.Repository
	matchRepo match.Repository
	pickRepo  pick.Repository
	logger    *logging.Logger

	reconcileFlight resilience.SingleFlight
}

func NewScoringService(
	userRepo user.Repository,
	matchRepo match.Repository,
	pickRepo pick.Repository,
	logger *logging.Logger,
) *ScoringService {
	if logger == nil {
		logger = logging.Default()
	}

	return &ScoringService{
		userRepo:  userRepo,
		matchRepo: matchRepo,
		pickRepo:  pickRepo,
		logger:    logger,
	}
}

// Reconcile annotates every pick on a completed match as correct or
// incorrect and returns how many annotations changed. It never mutates
// usage: caps count predictions made, not outcomes, so a result can never
// reopen a used slot. Re-running it on an already-scored match changes
// nothing. Concurrent runs for the same match collapse into one.
func (s *ScoringService) Reconcile(ctx context.Context, matchID string) (int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoringService.Reconcile")
	defer span.End()

	matchID = strings.TrimSpace(matchID)
	if matchID == "" {
		return 0, fmt.Errorf("%w: match id is required", ErrInvalidInput)
	}

	updated, err, _ := s.reconcileFlight.Do("reconcile:"+matchID, func() (any, error) {
		return s.reconcileOnce(ctx, matchID)
	})
	if err != nil {
		return 0, err
	}

	count, _ := updated.(int)
	return count, nil
}

func (s *ScoringService) reconcileOnce(ctx context.Context, matchID string) (int, error) {
	m, exists, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return 0, fmt.Errorf("get match: %w", err)
	}
	if !exists {
		return 0, fmt.Errorf("%w: match=%s", ErrNotFound, matchID)
	}
	if !m.HasResult() {
		return 0, fmt.Errorf("%w: match=%s has no final result", ErrInvalidInput, matchID)
	}

	picks, err := s.pickRepo.ListByMatch(ctx, matchID)
	if err != nil {
		return 0, fmt.Errorf("list picks by match: %w", err)
	}
	if len(picks) == 0 {
		// matches without picks against them are a no-op, not an error
		return 0, nil
	}

	updated := 0
	for _, p := range picks {
		isCorrect := p.ChosenTeamID == m.WinnerTeamID
		if p.IsCorrect != nil && *p.IsCorrect == isCorrect {
			continue
		}
		if err := s.pickRepo.SetResult(ctx, p.ID, isCorrect); err != nil {
			return updated, fmt.Errorf("set pick result: %w", err)
		}
		updated++
	}

	s.logger.InfoContext(ctx, "match reconciled",
		"match_id", matchID,
		"winner_team_id", m.WinnerTeamID,
		"picks_updated", updated,
	)

	return updated, nil
}

// UserScore returns the count of the user's correct picks across all weeks.
func (s *ScoringService) UserScore(ctx context.Context, userID string) (int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoringService.UserScore")
	defer span.End()

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return 0, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	scores, err := s.pickRepo.CountCorrectByUser(ctx)
	if err != nil {
		return 0, fmt.Errorf("count correct picks: %w", err)
	}

	return scores[userID], nil
}

// Leaderboard returns all users ordered by score. Rank is computed from the
// score value itself: 1 plus the number of users with a strictly greater
// score, so tied users share a rank and the next distinct score skips past
// them.
func (s *ScoringService) Leaderboard(ctx context.Context) ([]LeaderboardEntry, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoringService.Leaderboard")
	defer span.End()

	users, err := s.userRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	scores, err := s.pickRepo.CountCorrectByUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("count correct picks: %w", err)
	}

	entries := make([]LeaderboardEntry, 0, len(users))
	for _, u := range users {
		entries = append(entries, LeaderboardEntry{
			UserID:   u.ID,
			Username: u.Username,
			Score:    scores[u.ID],
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].Username < entries[j].Username
	})

	for i := range entries {
		greater := 0
		for j := range entries {
			if entries[j].Score > entries[i].Score {
				greater++
			}
		}
		entries[i].Rank = 1 + greater
	}

	return entries, nil
}
