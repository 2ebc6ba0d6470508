package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/offmue/pickem/internal/domain/match"
	"github.com/offmue/pickem/internal/domain/pick"
	"github.com/offmue/pickem/internal/domain/team"
	"github.com/offmue/pickem/internal/domain/usage"
	"github.com/offmue/pickem/internal/domain/user"
	idgen "github.com/offmue/pickem/internal/platform/id"
	"github.com/offmue/pickem/internal/platform/logging"
)

// SubmitPickInput is the incoming payload for create/update pick.
type SubmitPickInput struct {
	UserID  string
	MatchID string
	TeamID  string
}

// SubmitPickResult carries the stored pick and, on a change, the team the
// retracted pick had selected.
type SubmitPickResult struct {
	Pick        pick.Pick
	PriorTeamID string
}

// TeamUsage is a user's ledger flattened for the API layer.
type TeamUsage struct {
	WinnerSlots []TeamUsageSlot
	LoserSlots  []TeamUsageSlot
}

type TeamUsageSlot struct {
	Team  team.Team
	Count int
}

// TeamAvailability reports how a single team may still be used by a user
// in a given week.
type TeamAvailability struct {
	Team            team.Team
	WinnerUsage     int
	LoserUsage      int
	CanPickAsWinner bool
	CanPickAsLoser  bool
	PlaysThisWeek   bool
	Available       bool
}

type PickService struct {
	userRepo  user.Repository
	teamRepo  team.Repository
	matchRepo match.Repository
	pickRepo  pick.Repository
	usageRepo usage.Repository
	rules     pick.Rules
	idGen     idgen.Generator
	logger    *logging.Logger
	now       func() time.Time

	// one mutex per user serializes evaluate-then-upsert, so two racing
	// submissions can never both validate against the same ledger snapshot
	mu        sync.Mutex
	userLocks map[string]*sync.Mutex
}

func NewPickService(
	userRepo user.Repository,
	teamRepo team.Repository,
	matchRepo match.Repository,
	pickRepo pick.Repository,
	usageRepo usage.Repository,
	rules pick.Rules,
	idGen idgen.Generator,
	logger *logging.Logger,
) *PickService {
	if logger == nil {
		logger = logging.Default()
	}

	return &PickService{
		userRepo:  userRepo,
		teamRepo:  teamRepo,
		matchRepo: matchRepo,
		pickRepo:  pickRepo,
		usageRepo: usageRepo,
		rules:     rules,
		idGen:     idGen,
		logger:    logger,
		now:       time.Now,
		userLocks: make(map[string]*sync.Mutex),
	}
}

// SubmitPick applies a new pick or replaces the user's existing pick for the
// match's week. Retraction of the old contributions and application of the
// new ones commit as one unit: the derived ledger reflects exactly the old
// pick or exactly the new one, never a mix. Denials leave no state behind.
func (s *PickService) SubmitPick(ctx context.Context, input SubmitPickInput) (SubmitPickResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PickService.SubmitPick")
	defer span.End()

	input.UserID = strings.TrimSpace(input.UserID)
	input.MatchID = strings.TrimSpace(input.MatchID)
	input.TeamID = strings.TrimSpace(input.TeamID)

	if input.UserID == "" {
		return SubmitPickResult{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if input.MatchID == "" {
		return SubmitPickResult{}, fmt.Errorf("%w: match id is required", ErrInvalidInput)
	}
	if input.TeamID == "" {
		return SubmitPickResult{}, fmt.Errorf("%w: team id is required", ErrInvalidInput)
	}

	if _, exists, err := s.userRepo.GetByID(ctx, input.UserID); err != nil {
		return SubmitPickResult{}, fmt.Errorf("get user: %w", err)
	} else if !exists {
		return SubmitPickResult{}, fmt.Errorf("%w: user=%s", ErrNotFound, input.UserID)
	}

	if _, exists, err := s.teamRepo.GetByID(ctx, input.TeamID); err != nil {
		return SubmitPickResult{}, fmt.Errorf("get team: %w", err)
	} else if !exists {
		return SubmitPickResult{}, fmt.Errorf("%w: team=%s", ErrNotFound, input.TeamID)
	}

	m, exists, err := s.matchRepo.GetByID(ctx, input.MatchID)
	if err != nil {
		return SubmitPickResult{}, fmt.Errorf("get match: %w", err)
	}
	if !exists {
		return SubmitPickResult{}, fmt.Errorf("%w: match=%s", ErrNotFound, input.MatchID)
	}

	unlock := s.lockUser(input.UserID)
	defer unlock()

	now := s.now().UTC()

	// re-read inside the critical section so the verdict never rests on a
	// snapshot another submission already invalidated
	ledger, err := s.usageRepo.GetLedger(ctx, input.UserID)
	if err != nil {
		return SubmitPickResult{}, fmt.Errorf("get usage ledger: %w", err)
	}

	existing, hasExisting, err := s.pickRepo.GetActiveByUserWeek(ctx, input.UserID, m.Week)
	if err != nil {
		return SubmitPickResult{}, fmt.Errorf("get active pick: %w", err)
	}

	var existingPtr *pick.Pick
	if hasExisting {
		existingPtr = &existing
	}

	if err := pick.Evaluate(m, input.TeamID, existingPtr, ledger, s.rules, now); err != nil {
		return SubmitPickResult{}, fmt.Errorf("evaluate pick: %w", err)
	}

	priorTeamID := ""
	if hasExisting && (existing.MatchID != m.ID || existing.ChosenTeamID != input.TeamID) {
		oldMatch, oldExists, err := s.matchRepo.GetByID(ctx, existing.MatchID)
		if err != nil {
			return SubmitPickResult{}, fmt.Errorf("get prior pick match: %w", err)
		}
		if oldExists && oldMatch.Locked(now) {
			return SubmitPickResult{}, fmt.Errorf("%w: cannot retract pick, match=%s already started",
				pick.ErrDeadlinePassed, oldMatch.ID)
		}
		priorTeamID = existing.ChosenTeamID
	}

	pickID := existing.ID
	createdAt := existing.CreatedAt
	if !hasExisting {
		pickID, err = s.idGen.NewID()
		if err != nil {
			return SubmitPickResult{}, fmt.Errorf("generate pick id: %w", err)
		}
		createdAt = now
	}

	candidate := pick.Pick{
		ID:           pickID,
		UserID:       input.UserID,
		MatchID:      m.ID,
		Week:         m.Week,
		ChosenTeamID: input.TeamID,
		CreatedAt:    createdAt,
		UpdatedAt:    now,
	}
	if err := candidate.Validate(); err != nil {
		return SubmitPickResult{}, fmt.Errorf("validate pick: %w", err)
	}

	stored, err := s.pickRepo.Upsert(ctx, candidate)
	if err != nil {
		if errors.Is(err, pick.ErrConflict) {
			return SubmitPickResult{}, fmt.Errorf("%w: pick for user=%s week=%d", ErrConcurrentModification, input.UserID, m.Week)
		}
		return SubmitPickResult{}, fmt.Errorf("upsert pick: %w", err)
	}

	s.logger.InfoContext(ctx, "pick submitted",
		"user_id", input.UserID,
		"match_id", m.ID,
		"week", m.Week,
		"team_id", input.TeamID,
		"prior_team_id", priorTeamID,
	)

	return SubmitPickResult{Pick: stored, PriorTeamID: priorTeamID}, nil
}

// GetActivePick returns the user's pick for a week, if any.
func (s *PickService) GetActivePick(ctx context.Context, userID string, week int) (pick.Pick, bool, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PickService.GetActivePick")
	defer span.End()

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return pick.Pick{}, false, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if week <= 0 {
		return pick.Pick{}, false, fmt.Errorf("%w: week must be greater than zero", ErrInvalidInput)
	}

	p, exists, err := s.pickRepo.GetActiveByUserWeek(ctx, userID, week)
	if err != nil {
		return pick.Pick{}, false, fmt.Errorf("get active pick: %w", err)
	}

	return p, exists, nil
}

// GetTeamUsage returns the user's derived ledger with team data attached.
func (s *PickService) GetTeamUsage(ctx context.Context, userID string) (TeamUsage, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PickService.GetTeamUsage")
	defer span.End()

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return TeamUsage{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	if _, exists, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return TeamUsage{}, fmt.Errorf("get user: %w", err)
	} else if !exists {
		return TeamUsage{}, fmt.Errorf("%w: user=%s", ErrNotFound, userID)
	}

	ledger, err := s.usageRepo.GetLedger(ctx, userID)
	if err != nil {
		return TeamUsage{}, fmt.Errorf("get usage ledger: %w", err)
	}

	out := TeamUsage{}
	for _, entry := range ledger.Entries() {
		t, exists, err := s.teamRepo.GetByID(ctx, entry.TeamID)
		if err != nil {
			return TeamUsage{}, fmt.Errorf("get team %s: %w", entry.TeamID, err)
		}
		if !exists {
			continue
		}

		slot := TeamUsageSlot{Team: t, Count: entry.Count}
		switch entry.Role {
		case usage.RoleWinner:
			out.WinnerSlots = append(out.WinnerSlots, slot)
		case usage.RoleLoser:
			out.LoserSlots = append(out.LoserSlots, slot)
		}
	}

	return out, nil
}

// GetTeamAvailability reports, per team, whether the user can still pick it
// in the given week.
func (s *PickService) GetTeamAvailability(ctx context.Context, userID string, week int) ([]TeamAvailability, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PickService.GetTeamAvailability")
	defer span.End()

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if week <= 0 {
		return nil, fmt.Errorf("%w: week must be greater than zero", ErrInvalidInput)
	}

	ledger, err := s.usageRepo.GetLedger(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get usage ledger: %w", err)
	}

	teams, err := s.teamRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}

	weekMatches, err := s.matchRepo.ListByWeek(ctx, week)
	if err != nil {
		return nil, fmt.Errorf("list matches for week %d: %w", week, err)
	}

	playing := make(map[string]struct{}, len(weekMatches)*2)
	for _, m := range weekMatches {
		playing[m.HomeTeamID] = struct{}{}
		playing[m.AwayTeamID] = struct{}{}
	}

	out := make([]TeamAvailability, 0, len(teams))
	for _, t := range teams {
		_, playsThisWeek := playing[t.ID]
		canWin := !ledger.WinnerEliminated(t.ID, s.rules.Caps)
		canLose := !ledger.LoserEliminated(t.ID, s.rules.Caps)

		out = append(out, TeamAvailability{
			Team:            t,
			WinnerUsage:     ledger.WinnerCount(t.ID),
			LoserUsage:      ledger.LoserCount(t.ID),
			CanPickAsWinner: canWin,
			CanPickAsLoser:  canLose,
			PlaysThisWeek:   playsThisWeek,
			Available:       playsThisWeek && canWin,
		})
	}

	return out, nil
}

func (s *PickService) lockUser(userID string) func() {
	s.mu.Lock()
	lock, ok := s.userLocks[userID]
	if !ok {
		lock = &sync.Mutex{}
		s.userLocks[userID] = lock
	}
	s.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}
