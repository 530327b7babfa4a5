package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/cricket-fantasy/internal/domain/syncstate"
	qb "github.com/riskibarqy/cricket-fantasy/internal/platform/querybuilder"
)

type syncRecordTableModel struct {
	Kind         string    `db:"kind"`
	EntityID     string    `db:"entity_id"`
	Payload      []byte    `db:"payload"`
	LastSyncedAt time.Time `db:"last_synced_at"`
}

type SyncRecordRepository struct {
	db *sqlx.DB
}

func NewSyncRecordRepository(db *sqlx.DB) *SyncRecordRepository {
	return &SyncRecordRepository{db: db}
}

func (r *SyncRecordRepository) Get(ctx context.Context, kind syncstate.Kind, entityID string) (syncstate.Record, bool, error) {
	query, args, err := qb.Select(qb.Columns(syncRecordTableModel{})...).From("sync_records").
		Where(
			qb.Eq("kind", string(kind)),
			qb.Eq("entity_id", entityID),
		).
		ToSQL()
	if err != nil {
		return syncstate.Record{}, false, fmt.Errorf("build get sync record query: %w", err)
	}

	var row syncRecordTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return syncstate.Record{}, false, nil
		}
		return syncstate.Record{}, false, fmt.Errorf("get sync record: %w", err)
	}
	return syncRecordFromRow(row), true, nil
}

// Upsert keeps the newer of two writes for the same key.
func (r *SyncRecordRepository) Upsert(ctx context.Context, record syncstate.Record) error {
	query, args, err := qb.InsertInto("sync_records").
		Columns(qb.Columns(syncRecordTableModel{})...).
		Values(string(record.Kind), record.EntityID, record.Payload, record.LastSyncedAt.UTC()).
		OnConflict("kind", "entity_id").
		DoUpdate().
		DoUpdateWhere("sync_records.last_synced_at <= EXCLUDED.last_synced_at").
		ToSQL()
	if err != nil {
		return fmt.Errorf("build upsert sync record query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert sync record %s: %w", syncstate.Key(record.Kind, record.EntityID), err)
	}
	return nil
}

func (r *SyncRecordRepository) ListStale(ctx context.Context, kind syncstate.Kind, before time.Time, limit int) ([]syncstate.Record, error) {
	builder := qb.Select(qb.Columns(syncRecordTableModel{})...).From("sync_records").
		Where(
			qb.Eq("kind", string(kind)),
			qb.Lt("last_synced_at", before.UTC()),
		).
		OrderBy("last_synced_at", "entity_id")
	if limit > 0 {
		builder = builder.Limit(limit)
	}
	query, args, err := builder.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list stale sync records query: %w", err)
	}

	var rows []syncRecordTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list stale sync records kind=%s: %w", kind, err)
	}

	out := make([]syncstate.Record, 0, len(rows))
	for _, row := range rows {
		out = append(out, syncRecordFromRow(row))
	}
	return out, nil
}

func syncRecordFromRow(row syncRecordTableModel) syncstate.Record {
	return syncstate.Record{
		Kind:         syncstate.Kind(row.Kind),
		EntityID:     row.EntityID,
		Payload:      row.Payload,
		LastSyncedAt: row.LastSyncedAt.UTC(),
	}
}
