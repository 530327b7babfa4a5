package memory

import (
	"context"
	"sync"

	"github.com/riskibarqy/cricket-fantasy/internal/domain/team"
)

// TeamRepository indexes teams by id, provider id and normalized name.
type TeamRepository struct {
	mu         sync.RWMutex
	items      map[string]team.Team
	byExternal map[string]string
	byName     map[string]string
}

func NewTeamRepository(teams ...team.Team) *TeamRepository {
	r := &TeamRepository{
		items:      make(map[string]team.Team),
		byExternal: make(map[string]string),
		byName:     make(map[string]string),
	}
	for _, item := range teams {
		r.putLocked(item)
	}
	return r
}

func (r *TeamRepository) GetByID(_ context.Context, id string) (team.Team, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[id]
	return item, ok, nil
}

func (r *TeamRepository) GetByExternalID(_ context.Context, externalID string) (team.Team, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byExternal[externalID]
	if !ok {
		return team.Team{}, false, nil
	}
	return r.items[id], true, nil
}

func (r *TeamRepository) GetByName(_ context.Context, name string) (team.Team, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byName[team.NormalizeName(name)]
	if !ok {
		return team.Team{}, false, nil
	}
	return r.items[id], true, nil
}

func (r *TeamRepository) ListNames(_ context.Context) (map[string]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]string, len(r.items))
	for id, item := range r.items {
		out[id] = item.Name
	}
	return out, nil
}

func (r *TeamRepository) Upsert(_ context.Context, item team.Team) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if previous, ok := r.items[item.ID]; ok {
		delete(r.byName, team.NormalizeName(previous.Name))
		if previous.ExternalID != "" {
			delete(r.byExternal, previous.ExternalID)
		}
	}
	r.putLocked(item)
	return nil
}

func (r *TeamRepository) putLocked(item team.Team) {
	r.items[item.ID] = item
	if item.ExternalID != "" {
		r.byExternal[item.ExternalID] = item.ID
	}
	if name := team.NormalizeName(item.Name); name != "" {
		r.byName[name] = item.ID
	}
}
