package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/riskibarqy/cricket-fantasy/internal/domain/playerstats"
)

type PlayerStatsRepository struct {
	mu      sync.RWMutex
	byMatch map[string]map[string]playerstats.MatchStats
}

func NewPlayerStatsRepository() *PlayerStatsRepository {
	return &PlayerStatsRepository{byMatch: make(map[string]map[string]playerstats.MatchStats)}
}

// ListByMatch returns the match lines ordered by player id.
func (r *PlayerStatsRepository) ListByMatch(_ context.Context, matchID string) ([]playerstats.MatchStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	lines := r.byMatch[matchID]
	out := make([]playerstats.MatchStats, 0, len(lines))
	for _, item := range lines {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].PlayerID < out[j].PlayerID
	})
	return out, nil
}

func (r *PlayerStatsRepository) UpsertMany(_ context.Context, items []playerstats.MatchStats) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, item := range items {
		lines, ok := r.byMatch[item.MatchID]
		if !ok {
			lines = make(map[string]playerstats.MatchStats)
			r.byMatch[item.MatchID] = lines
		}
		lines[item.PlayerID] = item
	}
	return nil
}
