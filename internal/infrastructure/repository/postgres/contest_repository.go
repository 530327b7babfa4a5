package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/cricket-fantasy/internal/domain/contest"
	"github.com/riskibarqy/cricket-fantasy/internal/domain/match"
	"github.com/riskibarqy/cricket-fantasy/internal/domain/scoring"
	qb "github.com/riskibarqy/cricket-fantasy/internal/platform/querybuilder"
)

type contestTableModel struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	MatchID   string    `db:"match_id"`
	Format    string    `db:"format"`
	Rules     []byte    `db:"rules"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

type ContestRepository struct {
	db *sqlx.DB
}

func NewContestRepository(db *sqlx.DB) *ContestRepository {
	return &ContestRepository{db: db}
}

func (r *ContestRepository) GetByID(ctx context.Context, id string) (contest.Contest, bool, error) {
	query, args, err := qb.Select(qb.Columns(contestTableModel{})...).From("contests").
		Where(qb.Eq("id", id)).
		ToSQL()
	if err != nil {
		return contest.Contest{}, false, fmt.Errorf("build get contest query: %w", err)
	}

	var row contestTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return contest.Contest{}, false, nil
		}
		return contest.Contest{}, false, fmt.Errorf("get contest: %w", err)
	}

	item, err := contestFromRow(row)
	if err != nil {
		return contest.Contest{}, false, err
	}
	return item, true, nil
}

func (r *ContestRepository) List(ctx context.Context) ([]contest.Contest, error) {
	query, args, err := qb.Select(qb.Columns(contestTableModel{})...).From("contests").
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list contests query: %w", err)
	}

	var rows []contestTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list contests: %w", err)
	}

	out := make([]contest.Contest, 0, len(rows))
	for _, row := range rows {
		item, err := contestFromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

func (r *ContestRepository) Upsert(ctx context.Context, item contest.Contest) error {
	rules, err := encodeJSON(item.Rules, false)
	if err != nil {
		return fmt.Errorf("encode contest rules id=%s: %w", item.ID, err)
	}

	createdAt := item.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	query, args, err := qb.InsertInto("contests").
		Columns(qb.Columns(contestTableModel{})...).
		Values(item.ID, item.Name, item.MatchID, string(item.Format), rules, createdAt.UTC(), time.Now().UTC()).
		OnConflict("id").
		DoUpdate("name", "match_id", "format", "rules", "updated_at").
		ToSQL()
	if err != nil {
		return fmt.Errorf("build upsert contest query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert contest id=%s: %w", item.ID, err)
	}
	return nil
}

func contestFromRow(row contestTableModel) (contest.Contest, error) {
	rules := scoring.DefaultRules()
	if err := decodeJSON(row.Rules, &rules); err != nil {
		return contest.Contest{}, fmt.Errorf("decode contest rules id=%s: %w", row.ID, err)
	}
	return contest.Contest{
		ID:        row.ID,
		Name:      row.Name,
		MatchID:   row.MatchID,
		Format:    match.Format(row.Format),
		Rules:     rules,
		CreatedAt: row.CreatedAt.UTC(),
	}, nil
}
