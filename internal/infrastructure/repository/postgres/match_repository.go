package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/cricket-fantasy/internal/domain/match"
	qb "github.com/riskibarqy/cricket-fantasy/internal/platform/querybuilder"
)

type matchTableModel struct {
	ID           string       `db:"id"`
	TournamentID string       `db:"tournament_id"`
	Name         string       `db:"name"`
	Format       string       `db:"format"`
	Status       string       `db:"status"`
	Venue        string       `db:"venue"`
	StartTime    sql.NullTime `db:"start_time"`
	TeamA        []byte       `db:"team_a"`
	TeamB        []byte       `db:"team_b"`
	Score        []byte       `db:"score"`
	Result       string       `db:"result"`
	Live         []byte       `db:"live"`
	LastSyncedAt time.Time    `db:"last_synced_at"`
	UpdatedAt    time.Time    `db:"updated_at"`
}

type MatchRepository struct {
	db *sqlx.DB
}

func NewMatchRepository(db *sqlx.DB) *MatchRepository {
	return &MatchRepository{db: db}
}

func (r *MatchRepository) GetByID(ctx context.Context, id string) (match.Match, bool, error) {
	query, args, err := qb.Select(qb.Columns(matchTableModel{})...).From("matches").
		Where(qb.Eq("id", id)).
		ToSQL()
	if err != nil {
		return match.Match{}, false, fmt.Errorf("build get match query: %w", err)
	}

	var row matchTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return match.Match{}, false, nil
		}
		return match.Match{}, false, fmt.Errorf("get match: %w", err)
	}

	item, err := matchFromRow(row)
	if err != nil {
		return match.Match{}, false, err
	}
	return item, true, nil
}

func (r *MatchRepository) Upsert(ctx context.Context, item match.Match) error {
	row, err := matchToRow(item)
	if err != nil {
		return err
	}

	query, args, err := qb.UpsertModel("matches", []string{"id"}, row)
	if err != nil {
		return fmt.Errorf("build upsert match query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert match id=%s: %w", item.ID, err)
	}
	return nil
}

func matchToRow(item match.Match) (matchTableModel, error) {
	teamA, err := encodeJSON(item.TeamA, false)
	if err != nil {
		return matchTableModel{}, fmt.Errorf("encode match team a id=%s: %w", item.ID, err)
	}
	teamB, err := encodeJSON(item.TeamB, false)
	if err != nil {
		return matchTableModel{}, fmt.Errorf("encode match team b id=%s: %w", item.ID, err)
	}
	score, err := encodeJSON(append([]match.InningsScore{}, item.Score...), false)
	if err != nil {
		return matchTableModel{}, fmt.Errorf("encode match score id=%s: %w", item.ID, err)
	}
	var live []byte
	if item.Live != nil {
		live, err = encodeJSON(item.Live, true)
		if err != nil {
			return matchTableModel{}, fmt.Errorf("encode match live state id=%s: %w", item.ID, err)
		}
	}

	return matchTableModel{
		ID:           item.ID,
		TournamentID: item.TournamentID,
		Name:         item.Name,
		Format:       string(item.Format),
		Status:       string(item.Status),
		Venue:        item.Venue,
		StartTime:    nullTime(item.StartTime),
		TeamA:        teamA,
		TeamB:        teamB,
		Score:        score,
		Result:       item.Result,
		Live:         live,
		LastSyncedAt: item.LastSyncedAt.UTC(),
		UpdatedAt:    time.Now().UTC(),
	}, nil
}

func matchFromRow(row matchTableModel) (match.Match, error) {
	out := match.Match{
		ID:           row.ID,
		TournamentID: row.TournamentID,
		Name:         row.Name,
		Format:       match.Format(row.Format),
		Status:       match.Status(row.Status),
		Venue:        row.Venue,
		StartTime:    nullTimeToTime(row.StartTime),
		Result:       row.Result,
		LastSyncedAt: row.LastSyncedAt.UTC(),
	}
	if err := decodeJSON(row.TeamA, &out.TeamA); err != nil {
		return match.Match{}, fmt.Errorf("decode match team a id=%s: %w", row.ID, err)
	}
	if err := decodeJSON(row.TeamB, &out.TeamB); err != nil {
		return match.Match{}, fmt.Errorf("decode match team b id=%s: %w", row.ID, err)
	}
	if err := decodeJSON(row.Score, &out.Score); err != nil {
		return match.Match{}, fmt.Errorf("decode match score id=%s: %w", row.ID, err)
	}
	if len(row.Live) > 0 {
		var live match.LiveState
		if err := decodeJSON(row.Live, &live); err != nil {
			return match.Match{}, fmt.Errorf("decode match live state id=%s: %w", row.ID, err)
		}
		out.Live = &live
	}
	return out, nil
}
