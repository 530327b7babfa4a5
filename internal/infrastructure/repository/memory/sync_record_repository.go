package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/riskibarqy/cricket-fantasy/internal/domain/syncstate"
)

type SyncRecordRepository struct {
	mu    sync.RWMutex
	items map[string]syncstate.Record
}

func NewSyncRecordRepository() *SyncRecordRepository {
	return &SyncRecordRepository{items: make(map[string]syncstate.Record)}
}

func (r *SyncRecordRepository) Get(_ context.Context, kind syncstate.Kind, entityID string) (syncstate.Record, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[syncstate.Key(kind, entityID)]
	if !ok {
		return syncstate.Record{}, false, nil
	}
	item.Payload = append([]byte(nil), item.Payload...)
	return item, true, nil
}

func (r *SyncRecordRepository) Upsert(_ context.Context, record syncstate.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	record.Payload = append([]byte(nil), record.Payload...)
	r.items[syncstate.Key(record.Kind, record.EntityID)] = record
	return nil
}

// ListStale returns records of kind synced before the cutoff, oldest first.
func (r *SyncRecordRepository) ListStale(_ context.Context, kind syncstate.Kind, before time.Time, limit int) ([]syncstate.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]syncstate.Record, 0)
	for _, item := range r.items {
		if item.Kind != kind || !item.LastSyncedAt.Before(before) {
			continue
		}
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].LastSyncedAt.Equal(out[j].LastSyncedAt) {
			return out[i].EntityID < out[j].EntityID
		}
		return out[i].LastSyncedAt.Before(out[j].LastSyncedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
