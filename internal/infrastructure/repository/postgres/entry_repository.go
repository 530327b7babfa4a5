package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/riskibarqy/cricket-fantasy/internal/domain/contest"
	"github.com/riskibarqy/cricket-fantasy/internal/domain/fantasy"
	"github.com/riskibarqy/cricket-fantasy/internal/domain/leaderboard"
	"github.com/riskibarqy/cricket-fantasy/internal/domain/player"
	qb "github.com/riskibarqy/cricket-fantasy/internal/platform/querybuilder"
)

type entryTableModel struct {
	ID            string         `db:"id"`
	ContestID     string         `db:"contest_id"`
	UserID        string         `db:"user_id"`
	UserName      string         `db:"user_name"`
	PlayerIDs     pq.StringArray `db:"player_ids"`
	CaptainID     string         `db:"captain_id"`
	ViceCaptainID string         `db:"vice_captain_id"`
	RoleCounts    []byte         `db:"role_counts"`
	CreditsUsed   float64        `db:"credits_used"`
	Points        float64        `db:"points"`
	Rank          int            `db:"rank"`
	PreviousRank  int            `db:"previous_rank"`
	RankChange    string         `db:"rank_change"`
	LastScoredAt  sql.NullTime   `db:"last_scored_at"`
	CreatedAt     time.Time      `db:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at"`
}

type EntryRepository struct {
	db *sqlx.DB
}

func NewEntryRepository(db *sqlx.DB) *EntryRepository {
	return &EntryRepository{db: db}
}

// ListByContest returns entries in submission order.
func (r *EntryRepository) ListByContest(ctx context.Context, contestID string) ([]contest.Entry, error) {
	query, args, err := qb.Select(qb.Columns(entryTableModel{})...).From("contest_entries").
		Where(qb.Eq("contest_id", contestID)).
		OrderBy("created_at", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list entries query: %w", err)
	}

	var rows []entryTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list entries contest=%s: %w", contestID, err)
	}

	out := make([]contest.Entry, 0, len(rows))
	for _, row := range rows {
		item, err := entryFromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

func (r *EntryRepository) GetByContestAndUser(ctx context.Context, contestID, userID string) (contest.Entry, bool, error) {
	query, args, err := qb.Select(qb.Columns(entryTableModel{})...).From("contest_entries").
		Where(
			qb.Eq("contest_id", contestID),
			qb.Eq("user_id", userID),
		).
		ToSQL()
	if err != nil {
		return contest.Entry{}, false, fmt.Errorf("build get entry query: %w", err)
	}

	var row entryTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return contest.Entry{}, false, nil
		}
		return contest.Entry{}, false, fmt.Errorf("get entry: %w", err)
	}

	item, err := entryFromRow(row)
	if err != nil {
		return contest.Entry{}, false, err
	}
	return item, true, nil
}

func (r *EntryRepository) Upsert(ctx context.Context, item contest.Entry) error {
	row, err := entryToRow(item)
	if err != nil {
		return err
	}

	query, args, err := qb.UpsertModel("contest_entries", []string{"id"}, row)
	if err != nil {
		return fmt.Errorf("build upsert entry query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("upsert entry id=%s: user %s already entered contest %s: %w", item.ID, item.UserID, item.ContestID, err)
		}
		return fmt.Errorf("upsert entry id=%s: %w", item.ID, err)
	}
	return nil
}

// UpdateStandings writes points and ranks of a scoring run in one
// transaction. Rosters are not touched.
func (r *EntryRepository) UpdateStandings(ctx context.Context, contestID string, items []contest.Entry) error {
	if len(items) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update standings tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, item := range items {
		query, args, err := qb.Update("contest_entries").
			Set("points", item.Points).
			Set("rank", item.Rank).
			Set("previous_rank", item.PreviousRank).
			Set("rank_change", string(item.Change)).
			Set("last_scored_at", nullTimePtr(item.LastScoredAt)).
			Set("updated_at", item.UpdatedAt.UTC()).
			Where(
				qb.Eq("id", item.ID),
				qb.Eq("contest_id", contestID),
			).
			ToSQL()
		if err != nil {
			return fmt.Errorf("build update standing query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("update standing entry=%s: %w", item.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit update standings tx: %w", err)
	}
	return nil
}

func entryToRow(item contest.Entry) (entryTableModel, error) {
	var counts any
	if len(item.Roster.RoleCounts) > 0 {
		counts = item.Roster.RoleCounts
	}
	roleCounts, err := encodeJSON(counts, false)
	if err != nil {
		return entryTableModel{}, fmt.Errorf("encode role counts entry=%s: %w", item.ID, err)
	}

	return entryTableModel{
		ID:            item.ID,
		ContestID:     item.ContestID,
		UserID:        item.UserID,
		UserName:      item.UserName,
		PlayerIDs:     pq.StringArray(append([]string{}, item.Roster.PlayerIDs...)),
		CaptainID:     item.Roster.CaptainID,
		ViceCaptainID: item.Roster.ViceCaptainID,
		RoleCounts:    roleCounts,
		CreditsUsed:   item.Roster.CreditsUsed,
		Points:        item.Points,
		Rank:          item.Rank,
		PreviousRank:  item.PreviousRank,
		RankChange:    string(item.Change),
		LastScoredAt:  nullTimePtr(item.LastScoredAt),
		CreatedAt:     item.CreatedAt.UTC(),
		UpdatedAt:     item.UpdatedAt.UTC(),
	}, nil
}

func entryFromRow(row entryTableModel) (contest.Entry, error) {
	var counts map[player.Role]int
	if err := decodeJSON(row.RoleCounts, &counts); err != nil {
		return contest.Entry{}, fmt.Errorf("decode role counts entry=%s: %w", row.ID, err)
	}

	return contest.Entry{
		ID:        row.ID,
		ContestID: row.ContestID,
		UserID:    row.UserID,
		UserName:  row.UserName,
		Roster: fantasy.Roster{
			PlayerIDs:     []string(row.PlayerIDs),
			CaptainID:     row.CaptainID,
			ViceCaptainID: row.ViceCaptainID,
			RoleCounts:    counts,
			CreditsUsed:   row.CreditsUsed,
		},
		Points:       row.Points,
		Rank:         row.Rank,
		PreviousRank: row.PreviousRank,
		Change:       leaderboard.Change(row.RankChange),
		CreatedAt:    row.CreatedAt.UTC(),
		UpdatedAt:    row.UpdatedAt.UTC(),
		LastScoredAt: nullTimeToPtr(row.LastScoredAt),
	}, nil
}
