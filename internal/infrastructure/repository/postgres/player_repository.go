package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/cricket-fantasy/internal/domain/player"
	qb "github.com/riskibarqy/cricket-fantasy/internal/platform/querybuilder"
)

type playerTableModel struct {
	ID           string    `db:"id"`
	Name         string    `db:"name"`
	Role         string    `db:"role"`
	BattingStyle string    `db:"batting_style"`
	BowlingStyle string    `db:"bowling_style"`
	Country      string    `db:"country"`
	TeamID       string    `db:"team_id"`
	ImageURL     string    `db:"image_url"`
	Career       []byte    `db:"career"`
	LastSyncedAt time.Time `db:"last_synced_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

type PlayerRepository struct {
	db *sqlx.DB
}

func NewPlayerRepository(db *sqlx.DB) *PlayerRepository {
	return &PlayerRepository{db: db}
}

func (r *PlayerRepository) GetByID(ctx context.Context, id string) (player.Player, bool, error) {
	items, err := r.GetByIDs(ctx, []string{id})
	if err != nil {
		return player.Player{}, false, err
	}
	if len(items) == 0 {
		return player.Player{}, false, nil
	}
	return items[0], true, nil
}

// GetByIDs returns the known players in request order.
func (r *PlayerRepository) GetByIDs(ctx context.Context, ids []string) ([]player.Player, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query, args, err := qb.Select(qb.Columns(playerTableModel{})...).From("players").
		Where(qb.InStrings("id", ids)).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select players by ids query: %w", err)
	}

	var rows []playerTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select players by ids: %w", err)
	}

	byID := make(map[string]player.Player, len(rows))
	for _, row := range rows {
		item, err := playerFromRow(row)
		if err != nil {
			return nil, err
		}
		byID[item.ID] = item
	}

	out := make([]player.Player, 0, len(byID))
	for _, id := range ids {
		if item, ok := byID[id]; ok {
			out = append(out, item)
			delete(byID, id)
		}
	}
	return out, nil
}

func (r *PlayerRepository) Upsert(ctx context.Context, item player.Player) error {
	var career any
	if len(item.Career) > 0 {
		career = item.Career
	}
	careerJSON, err := encodeJSON(career, false)
	if err != nil {
		return fmt.Errorf("encode player career id=%s: %w", item.ID, err)
	}

	query, args, err := qb.UpsertModel("players", []string{"id"}, playerTableModel{
		ID:           item.ID,
		Name:         item.Name,
		Role:         string(item.Role),
		BattingStyle: item.BattingStyle,
		BowlingStyle: item.BowlingStyle,
		Country:      item.Country,
		TeamID:       item.TeamID,
		ImageURL:     item.ImageURL,
		Career:       careerJSON,
		LastSyncedAt: item.LastSyncedAt.UTC(),
		UpdatedAt:    time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("build upsert player query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert player id=%s: %w", item.ID, err)
	}
	return nil
}

func playerFromRow(row playerTableModel) (player.Player, error) {
	var career player.CareerStats
	if err := decodeJSON(row.Career, &career); err != nil {
		return player.Player{}, fmt.Errorf("decode player career id=%s: %w", row.ID, err)
	}
	if len(career) == 0 {
		career = nil
	}

	return player.Player{
		ID:           row.ID,
		Name:         row.Name,
		Role:         player.Role(row.Role),
		BattingStyle: row.BattingStyle,
		BowlingStyle: row.BowlingStyle,
		Country:      row.Country,
		TeamID:       row.TeamID,
		ImageURL:     row.ImageURL,
		Career:       career,
		LastSyncedAt: row.LastSyncedAt.UTC(),
	}, nil
}
