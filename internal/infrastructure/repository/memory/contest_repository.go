package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/riskibarqy/cricket-fantasy/internal/domain/contest"
	"github.com/riskibarqy/cricket-fantasy/internal/domain/player"
)

type ContestRepository struct {
	mu    sync.RWMutex
	items map[string]contest.Contest
}

func NewContestRepository(contests ...contest.Contest) *ContestRepository {
	items := make(map[string]contest.Contest, len(contests))
	for _, item := range contests {
		items[item.ID] = item
	}
	return &ContestRepository{items: items}
}

func (r *ContestRepository) GetByID(_ context.Context, id string) (contest.Contest, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[id]
	return item, ok, nil
}

func (r *ContestRepository) List(_ context.Context) ([]contest.Contest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]contest.Contest, 0, len(r.items))
	for _, item := range r.items {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *ContestRepository) Upsert(_ context.Context, item contest.Contest) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[item.ID] = item
	return nil
}

// EntryRepository keeps entries per contest in submission order.
type EntryRepository struct {
	mu        sync.RWMutex
	byContest map[string][]contest.Entry
}

func NewEntryRepository() *EntryRepository {
	return &EntryRepository{byContest: make(map[string][]contest.Entry)}
}

func (r *EntryRepository) ListByContest(_ context.Context, contestID string) ([]contest.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := r.byContest[contestID]
	out := make([]contest.Entry, 0, len(items))
	for _, item := range items {
		out = append(out, cloneEntry(item))
	}
	return out, nil
}

func (r *EntryRepository) GetByContestAndUser(_ context.Context, contestID, userID string) (contest.Entry, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, item := range r.byContest[contestID] {
		if item.UserID == userID {
			return cloneEntry(item), true, nil
		}
	}
	return contest.Entry{}, false, nil
}

func (r *EntryRepository) Upsert(_ context.Context, item contest.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	items := r.byContest[item.ContestID]
	for idx := range items {
		if items[idx].ID == item.ID {
			items[idx] = cloneEntry(item)
			return nil
		}
	}
	r.byContest[item.ContestID] = append(items, cloneEntry(item))
	return nil
}

// UpdateStandings writes points and rank fields of known entries. The
// roster is left untouched.
func (r *EntryRepository) UpdateStandings(_ context.Context, contestID string, updates []contest.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	byID := make(map[string]contest.Entry, len(updates))
	for _, item := range updates {
		byID[item.ID] = item
	}
	items := r.byContest[contestID]
	for idx := range items {
		update, ok := byID[items[idx].ID]
		if !ok {
			continue
		}
		items[idx].Points = update.Points
		items[idx].Rank = update.Rank
		items[idx].PreviousRank = update.PreviousRank
		items[idx].Change = update.Change
		items[idx].UpdatedAt = update.UpdatedAt
		if update.LastScoredAt != nil {
			scoredAt := *update.LastScoredAt
			items[idx].LastScoredAt = &scoredAt
		}
	}
	return nil
}

func cloneEntry(item contest.Entry) contest.Entry {
	copied := item
	copied.Roster.PlayerIDs = append([]string(nil), item.Roster.PlayerIDs...)
	if item.Roster.RoleCounts != nil {
		copied.Roster.RoleCounts = make(map[player.Role]int, len(item.Roster.RoleCounts))
		for role, count := range item.Roster.RoleCounts {
			copied.Roster.RoleCounts[role] = count
		}
	}
	if item.LastScoredAt != nil {
		scoredAt := *item.LastScoredAt
		copied.LastScoredAt = &scoredAt
	}
	return copied
}
