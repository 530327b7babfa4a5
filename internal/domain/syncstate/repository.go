package syncstate

import (
	"context"
	"time"
)

// Repository persists sync records keyed by (kind, entity id).
type Repository interface {
	Get(ctx context.Context, kind Kind, entityID string) (Record, bool, error)
	Upsert(ctx context.Context, record Record) error
	ListStale(ctx context.Context, kind Kind, before time.Time, limit int) ([]Record, error)
}
