package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/sourcegraph/conc/pool"

	"github.com/offmue/pickem/internal/domain/match"
	"github.com/offmue/pickem/internal/domain/team"
	"github.com/offmue/pickem/internal/platform/logging"
)

// FeedMatch is one game as reported by the external sports-data provider.
type FeedMatch struct {
	ExternalID   string
	Week         int
	HomeTeamAbbr string
	AwayTeamAbbr string
	StartTime    time.Time
	IsCompleted  bool
	WinnerAbbr   string
	HomeScore    *int
	AwayScore    *int
}

// ScheduleFeed pulls schedule and result facts from the provider.
type ScheduleFeed interface {
	FetchWeek(ctx context.Context, week int) ([]FeedMatch, error)
}

// matchReconciler is the only scoring entry point the sync path may touch.
// The sync job writes match facts and calls this; it never writes picks
// or usage.
type matchReconciler interface {
	Reconcile(ctx context.Context, matchID string) (int, error)
}

// ResultSyncResult summarizes one sync run.
type ResultSyncResult struct {
	WeeksSynced      int `json:"weeks_synced"`
	MatchesUpserted  int `json:"matches_upserted"`
	MatchesCompleted int `json:"matches_completed"`
	PicksScored      int `json:"picks_scored"`
}

type ResultSyncService struct {
	feed       ScheduleFeed
	teamRepo   team.Repository
	matchRepo  match.Repository
	reconciler matchReconciler
	maxWorkers int
	logger     *logging.Logger
}

const defaultSyncWorkers = 4

func NewResultSyncService(
	feed ScheduleFeed,
	teamRepo team.Repository,
	matchRepo match.Repository,
	reconciler matchReconciler,
	maxWorkers int,
	logger *logging.Logger,
) *ResultSyncService {
	if maxWorkers <= 0 {
		maxWorkers = defaultSyncWorkers
	}
	if logger == nil {
		logger = logging.Default()
	}

	return &ResultSyncService{
		feed:       feed,
		teamRepo:   teamRepo,
		matchRepo:  matchRepo,
		reconciler: reconciler,
		maxWorkers: maxWorkers,
		logger:     logger,
	}
}

// SyncWeeks fetches the given weeks from the feed, upserts match facts, and
// reconciles picks for matches that newly completed.
func (s *ResultSyncService) SyncWeeks(ctx context.Context, weeks []int) (ResultSyncResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ResultSyncService.SyncWeeks")
	defer span.End()

	weeks = dedupeWeeks(weeks)
	if len(weeks) == 0 {
		return ResultSyncResult{}, fmt.Errorf("%w: at least one week is required", ErrInvalidInput)
	}

	teamByAbbr, err := s.teamIndex(ctx)
	if err != nil {
		return ResultSyncResult{}, err
	}

	var fetchMu sync.Mutex
	fetched := make([]FeedMatch, 0, len(weeks)*16)

	fetchPool := pool.New().WithErrors().WithContext(ctx).WithMaxGoroutines(s.maxWorkers)
	for _, week := range weeks {
		week := week
		fetchPool.Go(func(ctx context.Context) error {
			items, err := s.feed.FetchWeek(ctx, week)
			if err != nil {
				return fmt.Errorf("fetch week %d: %w", week, err)
			}

			fetchMu.Lock()
			fetched = append(fetched, items...)
			fetchMu.Unlock()
			return nil
		})
	}
	if err := fetchPool.Wait(); err != nil {
		return ResultSyncResult{}, fmt.Errorf("%w: %v", ErrDependencyUnavailable, err)
	}

	result := ResultSyncResult{WeeksSynced: len(weeks)}

	workerPool, err := ants.NewPool(s.maxWorkers)
	if err != nil {
		return ResultSyncResult{}, fmt.Errorf("create sync worker pool: %w", err)
	}
	defer workerPool.Release()

	var (
		mu       sync.Mutex
		workers  sync.WaitGroup
		firstErr error
	)
	for _, item := range fetched {
		item := item
		workers.Add(1)
		if submitErr := workerPool.Submit(func() {
			defer workers.Done()

			upserted, completed, scored, err := s.applyFeedMatch(ctx, item, teamByAbbr)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				return
			}
			if upserted {
				result.MatchesUpserted++
			}
			if completed {
				result.MatchesCompleted++
			}
			result.PicksScored += scored
		}); submitErr != nil {
			workers.Done()
			return ResultSyncResult{}, fmt.Errorf("submit sync task: %w", submitErr)
		}
	}
	workers.Wait()

	if firstErr != nil {
		return result, firstErr
	}

	s.logger.InfoContext(ctx, "result sync finished",
		"weeks", len(weeks),
		"matches_upserted", result.MatchesUpserted,
		"matches_completed", result.MatchesCompleted,
		"picks_scored", result.PicksScored,
	)

	return result, nil
}

func (s *ResultSyncService) applyFeedMatch(ctx context.Context, item FeedMatch, teamByAbbr map[string]team.Team) (bool, bool, int, error) {
	homeTeam, ok := teamByAbbr[normalizeAbbr(item.HomeTeamAbbr)]
	if !ok {
		s.logger.WarnContext(ctx, "unknown home team in feed", "abbr", item.HomeTeamAbbr, "external_id", item.ExternalID)
		return false, false, 0, nil
	}
	awayTeam, ok := teamByAbbr[normalizeAbbr(item.AwayTeamAbbr)]
	if !ok {
		s.logger.WarnContext(ctx, "unknown away team in feed", "abbr", item.AwayTeamAbbr, "external_id", item.ExternalID)
		return false, false, 0, nil
	}

	winnerTeamID := ""
	if item.WinnerAbbr != "" {
		if winner, ok := teamByAbbr[normalizeAbbr(item.WinnerAbbr)]; ok {
			winnerTeamID = winner.ID
		}
	}

	existing, exists, err := s.matchRepo.GetByID(ctx, item.ExternalID)
	if err != nil {
		return false, false, 0, fmt.Errorf("get match %s: %w", item.ExternalID, err)
	}

	m := match.Match{
		ID:           item.ExternalID,
		Week:         item.Week,
		HomeTeamID:   homeTeam.ID,
		AwayTeamID:   awayTeam.ID,
		StartTime:    item.StartTime,
		IsCompleted:  item.IsCompleted,
		WinnerTeamID: winnerTeamID,
		HomeScore:    item.HomeScore,
		AwayScore:    item.AwayScore,
	}
	if err := m.Validate(); err != nil {
		return false, false, 0, fmt.Errorf("validate feed match %s: %w", item.ExternalID, err)
	}

	if err := s.matchRepo.Upsert(ctx, m); err != nil {
		return false, false, 0, fmt.Errorf("upsert match %s: %w", item.ExternalID, err)
	}

	newlyCompleted := m.HasResult() && (!exists || !existing.HasResult())
	if !newlyCompleted {
		return true, false, 0, nil
	}

	scored, err := s.reconciler.Reconcile(ctx, m.ID)
	if err != nil {
		return true, true, 0, fmt.Errorf("reconcile match %s: %w", m.ID, err)
	}

	return true, true, scored, nil
}

func (s *ResultSyncService) teamIndex(ctx context.Context) (map[string]team.Team, error) {
	teams, err := s.teamRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}

	out := make(map[string]team.Team, len(teams))
	for _, t := range teams {
		out[normalizeAbbr(t.Abbreviation)] = t
	}
	return out, nil
}

func normalizeAbbr(abbr string) string {
	return strings.ToUpper(strings.TrimSpace(abbr))
}

func dedupeWeeks(weeks []int) []int {
	seen := make(map[int]struct{}, len(weeks))
	out := make([]int, 0, len(weeks))
	for _, week := range weeks {
		if week <= 0 {
			continue
		}
		if _, ok := seen[week]; ok {
			continue
		}
		seen[week] = struct{}{}
		out = append(out, week)
	}
	sort.Ints(out)
	return out
}
