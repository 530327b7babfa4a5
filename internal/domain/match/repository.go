package match

import "context"

// Repository describes match persistence needs from use cases.
type Repository interface {
	GetByID(ctx context.Context, id string) (Match, bool, error)
	Upsert(ctx context.Context, item Match) error
}
