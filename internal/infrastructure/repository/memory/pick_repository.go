package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/offmue/pickem/internal/domain/pick"
)

type PickRepository struct {
	mu sync.RWMutex
	// one slot per (user, week): the §3 uniqueness invariant is the map key
	items map[string]pick.Pick
}

func NewPickRepository() *PickRepository {
	return &PickRepository{items: make(map[string]pick.Pick)}
}

func (r *PickRepository) GetActiveByUserWeek(_ context.Context, userID string, week int) (pick.Pick, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[pickKey(userID, week)]
	if !ok {
		return pick.Pick{}, false, nil
	}

	return clonePick(item), true, nil
}

func (r *PickRepository) ListByUser(_ context.Context, userID string) ([]pick.Pick, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]pick.Pick, 0)
	for _, item := range r.items {
		if item.UserID == userID {
			out = append(out, clonePick(item))
		}
	}
	sortPicks(out)
	return out, nil
}

func (r *PickRepository) ListByMatch(_ context.Context, matchID string) ([]pick.Pick, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]pick.Pick, 0)
	for _, item := range r.items {
		if item.MatchID == matchID {
			out = append(out, clonePick(item))
		}
	}
	sortPicks(out)
	return out, nil
}

func (r *PickRepository) Upsert(_ context.Context, p pick.Pick) (pick.Pick, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := pickKey(p.UserID, p.Week)
	if existing, ok := r.items[key]; ok {
		p.ID = existing.ID
		p.CreatedAt = existing.CreatedAt
	}

	r.items[key] = clonePick(p)
	return clonePick(p), nil
}

func (r *PickRepository) SetResult(_ context.Context, pickID string, isCorrect bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for key, item := range r.items {
		if item.ID != pickID {
			continue
		}
		value := isCorrect
		item.IsCorrect = &value
		r.items[key] = item
		return nil
	}

	return fmt.Errorf("pick %s not found", pickID)
}

func (r *PickRepository) CountCorrectByUser(_ context.Context) (map[string]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]int)
	for _, item := range r.items {
		if item.IsCorrect != nil && *item.IsCorrect {
			out[item.UserID]++
		}
	}
	return out, nil
}

func pickKey(userID string, week int) string {
	return fmt.Sprintf("%s::%d", userID, week)
}

func clonePick(p pick.Pick) pick.Pick {
	copied := p
	if p.IsCorrect != nil {
		value := *p.IsCorrect
		copied.IsCorrect = &value
	}
	return copied
}

func sortPicks(items []pick.Pick) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].Week != items[j].Week {
			return items[i].Week < items[j].Week
		}
		return items[i].UserID < items[j].UserID
	})
}
