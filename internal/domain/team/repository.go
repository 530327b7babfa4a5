package team

import "context"

// Repository describes team persistence needs from use cases.
type Repository interface {
	GetByID(ctx context.Context, id string) (Team, bool, error)
	GetByExternalID(ctx context.Context, externalID string) (Team, bool, error)
	GetByName(ctx context.Context, name string) (Team, bool, error)
	ListNames(ctx context.Context) (map[string]string, error)
	Upsert(ctx context.Context, item Team) error
}
