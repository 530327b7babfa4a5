package playerstats

import "context"

// Repository describes per-match stat persistence needs from use cases.
type Repository interface {
	ListByMatch(ctx context.Context, matchID string) ([]MatchStats, error)
	UpsertMany(ctx context.Context, items []MatchStats) error
}
