package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/cricket-fantasy/internal/domain/match"
	"github.com/riskibarqy/cricket-fantasy/internal/domain/tournament"
	qb "github.com/riskibarqy/cricket-fantasy/internal/platform/querybuilder"
)

type tournamentTableModel struct {
	ID           string       `db:"id"`
	Name         string       `db:"name"`
	ShortName    string       `db:"short_name"`
	StartDate    sql.NullTime `db:"start_date"`
	EndDate      sql.NullTime `db:"end_date"`
	Format       string       `db:"format"`
	TeamCount    int          `db:"team_count"`
	MatchCount   int          `db:"match_count"`
	LastSyncedAt time.Time    `db:"last_synced_at"`
	UpdatedAt    time.Time    `db:"updated_at"`
}

type TournamentRepository struct {
	db *sqlx.DB
}

func NewTournamentRepository(db *sqlx.DB) *TournamentRepository {
	return &TournamentRepository{db: db}
}

func (r *TournamentRepository) GetByID(ctx context.Context, id string) (tournament.Tournament, bool, error) {
	query, args, err := qb.Select(qb.Columns(tournamentTableModel{})...).From("tournaments").
		Where(qb.Eq("id", id)).
		ToSQL()
	if err != nil {
		return tournament.Tournament{}, false, fmt.Errorf("build get tournament query: %w", err)
	}

	var row tournamentTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return tournament.Tournament{}, false, nil
		}
		return tournament.Tournament{}, false, fmt.Errorf("get tournament: %w", err)
	}

	return tournament.Tournament{
		ID:           row.ID,
		Name:         row.Name,
		ShortName:    row.ShortName,
		StartDate:    nullTimeToTime(row.StartDate),
		EndDate:      nullTimeToTime(row.EndDate),
		Format:       match.Format(row.Format),
		TeamCount:    row.TeamCount,
		MatchCount:   row.MatchCount,
		LastSyncedAt: row.LastSyncedAt.UTC(),
	}, true, nil
}

func (r *TournamentRepository) Upsert(ctx context.Context, item tournament.Tournament) error {
	query, args, err := qb.UpsertModel("tournaments", []string{"id"}, tournamentTableModel{
		ID:           item.ID,
		Name:         item.Name,
		ShortName:    item.ShortName,
		StartDate:    nullTime(item.StartDate),
		EndDate:      nullTime(item.EndDate),
		Format:       string(item.Format),
		TeamCount:    item.TeamCount,
		MatchCount:   item.MatchCount,
		LastSyncedAt: item.LastSyncedAt.UTC(),
		UpdatedAt:    time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("build upsert tournament query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert tournament id=%s: %w", item.ID, err)
	}
	return nil
}
