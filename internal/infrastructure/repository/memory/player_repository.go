package memory

import (
	"context"
	"sync"

	"github.com/riskibarqy/cricket-fantasy/internal/domain/player"
)

type PlayerRepository struct {
	mu    sync.RWMutex
	items map[string]player.Player
}

func NewPlayerRepository(players ...player.Player) *PlayerRepository {
	items := make(map[string]player.Player, len(players))
	for _, item := range players {
		items[item.ID] = clonePlayer(item)
	}
	return &PlayerRepository{items: items}
}

func (r *PlayerRepository) GetByID(_ context.Context, id string) (player.Player, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[id]
	if !ok {
		return player.Player{}, false, nil
	}
	return clonePlayer(item), true, nil
}

// GetByIDs returns the known players in request order. Unknown ids are
// skipped.
func (r *PlayerRepository) GetByIDs(_ context.Context, ids []string) ([]player.Player, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]player.Player, 0, len(ids))
	for _, id := range ids {
		item, ok := r.items[id]
		if !ok {
			continue
		}
		out = append(out, clonePlayer(item))
	}
	return out, nil
}

func (r *PlayerRepository) Upsert(_ context.Context, item player.Player) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[item.ID] = clonePlayer(item)
	return nil
}

func clonePlayer(item player.Player) player.Player {
	copied := item
	if item.Career != nil {
		copied.Career = make(player.CareerStats, len(item.Career))
		for format, stats := range item.Career {
			copied.Career[format] = stats
		}
	}
	return copied
}
