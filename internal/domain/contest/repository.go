package contest

import "context"

// Repository describes contest persistence needs from use cases.
type Repository interface {
	GetByID(ctx context.Context, id string) (Contest, bool, error)
	List(ctx context.Context) ([]Contest, error)
	Upsert(ctx context.Context, item Contest) error
}

// EntryRepository describes contest entry persistence needs from use cases.
type EntryRepository interface {
	ListByContest(ctx context.Context, contestID string) ([]Entry, error)
	GetByContestAndUser(ctx context.Context, contestID, userID string) (Entry, bool, error)
	Upsert(ctx context.Context, item Entry) error
	UpdateStandings(ctx context.Context, contestID string, items []Entry) error
}
