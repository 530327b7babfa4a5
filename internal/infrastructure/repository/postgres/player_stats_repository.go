package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/cricket-fantasy/internal/domain/playerstats"
	qb "github.com/riskibarqy/cricket-fantasy/internal/platform/querybuilder"
)

const playerStatsUpsertBatch = 200

type playerMatchStatsTableModel struct {
	MatchID      string    `db:"match_id"`
	PlayerID     string    `db:"player_id"`
	PlayerName   string    `db:"player_name"`
	TeamID       string    `db:"team_id"`
	Batting      []byte    `db:"batting"`
	Bowling      []byte    `db:"bowling"`
	Fielding     []byte    `db:"fielding"`
	LastSyncedAt time.Time `db:"last_synced_at"`
}

type PlayerStatsRepository struct {
	db *sqlx.DB
}

func NewPlayerStatsRepository(db *sqlx.DB) *PlayerStatsRepository {
	return &PlayerStatsRepository{db: db}
}

func (r *PlayerStatsRepository) ListByMatch(ctx context.Context, matchID string) ([]playerstats.MatchStats, error) {
	query, args, err := qb.Select(qb.Columns(playerMatchStatsTableModel{})...).From("player_match_stats").
		Where(qb.Eq("match_id", matchID)).
		OrderBy("player_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list match stats query: %w", err)
	}

	var rows []playerMatchStatsTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list match stats: %w", err)
	}

	out := make([]playerstats.MatchStats, 0, len(rows))
	for _, row := range rows {
		item := playerstats.MatchStats{
			MatchID:      row.MatchID,
			PlayerID:     row.PlayerID,
			PlayerName:   row.PlayerName,
			TeamID:       row.TeamID,
			LastSyncedAt: row.LastSyncedAt.UTC(),
		}
		if err := decodeJSON(row.Batting, &item.Batting); err != nil {
			return nil, fmt.Errorf("decode batting key=%s: %w", item.Key(), err)
		}
		if err := decodeJSON(row.Bowling, &item.Bowling); err != nil {
			return nil, fmt.Errorf("decode bowling key=%s: %w", item.Key(), err)
		}
		if err := decodeJSON(row.Fielding, &item.Fielding); err != nil {
			return nil, fmt.Errorf("decode fielding key=%s: %w", item.Key(), err)
		}
		out = append(out, item)
	}
	return out, nil
}

// UpsertMany writes lines in batches inside one transaction.
func (r *PlayerStatsRepository) UpsertMany(ctx context.Context, items []playerstats.MatchStats) error {
	if len(items) == 0 {
		return nil
	}

	rows := make([]playerMatchStatsTableModel, 0, len(items))
	for _, item := range items {
		row, err := playerMatchStatsToRow(item)
		if err != nil {
			return err
		}
		rows = append(rows, row)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert match stats tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for start := 0; start < len(rows); start += playerStatsUpsertBatch {
		end := min(start+playerStatsUpsertBatch, len(rows))
		query, args, err := qb.UpsertModels("player_match_stats", []string{"match_id", "player_id"}, rows[start:end])
		if err != nil {
			return fmt.Errorf("build upsert match stats query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("upsert match stats batch=%d: %w", start/playerStatsUpsertBatch, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert match stats tx: %w", err)
	}
	return nil
}

func playerMatchStatsToRow(item playerstats.MatchStats) (playerMatchStatsTableModel, error) {
	batting, err := encodeJSON(item.Batting, false)
	if err != nil {
		return playerMatchStatsTableModel{}, fmt.Errorf("encode batting key=%s: %w", item.Key(), err)
	}
	bowling, err := encodeJSON(item.Bowling, false)
	if err != nil {
		return playerMatchStatsTableModel{}, fmt.Errorf("encode bowling key=%s: %w", item.Key(), err)
	}
	fielding, err := encodeJSON(item.Fielding, false)
	if err != nil {
		return playerMatchStatsTableModel{}, fmt.Errorf("encode fielding key=%s: %w", item.Key(), err)
	}
	return playerMatchStatsTableModel{
		MatchID:      item.MatchID,
		PlayerID:     item.PlayerID,
		PlayerName:   item.PlayerName,
		TeamID:       item.TeamID,
		Batting:      batting,
		Bowling:      bowling,
		Fielding:     fielding,
		LastSyncedAt: item.LastSyncedAt.UTC(),
	}, nil
}
