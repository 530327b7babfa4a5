package tournament

import "context"

// Repository describes tournament persistence needs from use cases.
type Repository interface {
	GetByID(ctx context.Context, id string) (Tournament, bool, error)
	Upsert(ctx context.Context, item Tournament) error
}
