package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/cricket-fantasy/internal/domain/team"
	qb "github.com/riskibarqy/cricket-fantasy/internal/platform/querybuilder"
)

type teamTableModel struct {
	ID             string         `db:"id"`
	ExternalID     sql.NullString `db:"external_id"`
	Name           string         `db:"name"`
	NormalizedName string         `db:"normalized_name"`
	ShortName      string         `db:"short_name"`
	ImageURL       string         `db:"image_url"`
	LastSyncedAt   time.Time      `db:"last_synced_at"`
	UpdatedAt      time.Time      `db:"updated_at"`
}

type TeamRepository struct {
	db *sqlx.DB
}

func NewTeamRepository(db *sqlx.DB) *TeamRepository {
	return &TeamRepository{db: db}
}

func (r *TeamRepository) GetByID(ctx context.Context, id string) (team.Team, bool, error) {
	return r.getOne(ctx, "id", id)
}

func (r *TeamRepository) GetByExternalID(ctx context.Context, externalID string) (team.Team, bool, error) {
	return r.getOne(ctx, "external_id", externalID)
}

func (r *TeamRepository) GetByName(ctx context.Context, name string) (team.Team, bool, error) {
	return r.getOne(ctx, "normalized_name", team.NormalizeName(name))
}

func (r *TeamRepository) ListNames(ctx context.Context) (map[string]string, error) {
	query, args, err := qb.Select("id", "name").From("teams").OrderBy("id").ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list team names query: %w", err)
	}

	var rows []struct {
		ID   string `db:"id"`
		Name string `db:"name"`
	}
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list team names: %w", err)
	}

	out := make(map[string]string, len(rows))
	for _, row := range rows {
		out[row.ID] = row.Name
	}
	return out, nil
}

func (r *TeamRepository) Upsert(ctx context.Context, item team.Team) error {
	query, args, err := qb.UpsertModel("teams", []string{"id"}, teamTableModel{
		ID:             item.ID,
		ExternalID:     nullString(item.ExternalID),
		Name:           item.Name,
		NormalizedName: team.NormalizeName(item.Name),
		ShortName:      item.ShortName,
		ImageURL:       item.ImageURL,
		LastSyncedAt:   item.LastSyncedAt.UTC(),
		UpdatedAt:      time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("build upsert team query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("upsert team id=%s: external id %s belongs to another team: %w", item.ID, item.ExternalID, err)
		}
		return fmt.Errorf("upsert team id=%s: %w", item.ID, err)
	}
	return nil
}

func (r *TeamRepository) getOne(ctx context.Context, column, value string) (team.Team, bool, error) {
	query, args, err := qb.Select(qb.Columns(teamTableModel{})...).From("teams").
		Where(qb.Eq(column, value)).
		OrderBy("id").
		Limit(1).
		ToSQL()
	if err != nil {
		return team.Team{}, false, fmt.Errorf("build get team query: %w", err)
	}

	var row teamTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return team.Team{}, false, nil
		}
		return team.Team{}, false, fmt.Errorf("get team by %s: %w", column, err)
	}

	return team.Team{
		ID:           row.ID,
		ExternalID:   nullStringToString(row.ExternalID),
		Name:         row.Name,
		ShortName:    row.ShortName,
		ImageURL:     row.ImageURL,
		LastSyncedAt: row.LastSyncedAt.UTC(),
	}, true, nil
}
