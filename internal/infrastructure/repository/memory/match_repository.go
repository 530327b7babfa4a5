package memory

import (
	"context"
	"sync"

	"github.com/riskibarqy/cricket-fantasy/internal/domain/match"
)

type MatchRepository struct {
	mu    sync.RWMutex
	items map[string]match.Match
}

func NewMatchRepository() *MatchRepository {
	return &MatchRepository{items: make(map[string]match.Match)}
}

func (r *MatchRepository) GetByID(_ context.Context, id string) (match.Match, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[id]
	if !ok {
		return match.Match{}, false, nil
	}
	return cloneMatch(item), true, nil
}

func (r *MatchRepository) Upsert(_ context.Context, item match.Match) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[item.ID] = cloneMatch(item)
	return nil
}

func cloneMatch(item match.Match) match.Match {
	copied := item
	copied.Score = append([]match.InningsScore(nil), item.Score...)
	if item.Live != nil {
		live := *item.Live
		live.Batsmen = append([]match.LiveBatter(nil), item.Live.Batsmen...)
		live.RecentBalls = append([]string(nil), item.Live.RecentBalls...)
		if item.Live.Bowler != nil {
			bowler := *item.Live.Bowler
			live.Bowler = &bowler
		}
		copied.Live = &live
	}
	return copied
}
