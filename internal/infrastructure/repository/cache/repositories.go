package cache

import (
	"context"
	"maps"

	"github.com/riskibarqy/cricket-fantasy/internal/domain/contest"
	"github.com/riskibarqy/cricket-fantasy/internal/domain/team"
	basecache "github.com/riskibarqy/cricket-fantasy/internal/platform/cache"
)

type ContestRepository struct {
	next  contest.Repository
	cache *basecache.Store
}

func NewContestRepository(next contest.Repository, cache *basecache.Store) *ContestRepository {
	return &ContestRepository{next: next, cache: cache}
}

func (r *ContestRepository) List(ctx context.Context) ([]contest.Contest, error) {
	v, err := r.cache.GetOrLoad(ctx, "contest:list", func(ctx context.Context) (any, error) {
		items, err := r.next.List(ctx)
		if err != nil {
			return nil, err
		}
		return append([]contest.Contest(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]contest.Contest)
	return append([]contest.Contest(nil), items...), nil
}

func (r *ContestRepository) GetByID(ctx context.Context, contestID string) (contest.Contest, bool, error) {
	v, err := r.cache.GetOrLoad(ctx, contestByIDKey(contestID), func(ctx context.Context) (any, error) {
		item, exists, err := r.next.GetByID(ctx, contestID)
		if err != nil {
			return nil, err
		}
		return cachedContestByID{value: item, exists: exists}, nil
	})
	if err != nil {
		return contest.Contest{}, false, err
	}

	cached, _ := v.(cachedContestByID)
	return cached.value, cached.exists, nil
}

func (r *ContestRepository) Upsert(ctx context.Context, item contest.Contest) error {
	if err := r.next.Upsert(ctx, item); err != nil {
		return err
	}
	r.cache.Delete(ctx, contestByIDKey(item.ID))
	r.cache.Delete(ctx, "contest:list")
	return nil
}

type cachedContestByID struct {
	value  contest.Contest
	exists bool
}

func contestByIDKey(contestID string) string {
	return "contest:id:" + contestID
}

// TeamRepository caches team lookups. Any write drops every team key since
// a rename moves the name index.
type TeamRepository struct {
	next  team.Repository
	cache *basecache.Store
}

func NewTeamRepository(next team.Repository, cache *basecache.Store) *TeamRepository {
	return &TeamRepository{next: next, cache: cache}
}

func (r *TeamRepository) GetByID(ctx context.Context, teamID string) (team.Team, bool, error) {
	return r.getOne(ctx, "team:id:"+teamID, func(ctx context.Context) (team.Team, bool, error) {
		return r.next.GetByID(ctx, teamID)
	})
}

func (r *TeamRepository) GetByExternalID(ctx context.Context, externalID string) (team.Team, bool, error) {
	return r.getOne(ctx, "team:external:"+externalID, func(ctx context.Context) (team.Team, bool, error) {
		return r.next.GetByExternalID(ctx, externalID)
	})
}

func (r *TeamRepository) GetByName(ctx context.Context, name string) (team.Team, bool, error) {
	return r.getOne(ctx, "team:name:"+team.NormalizeName(name), func(ctx context.Context) (team.Team, bool, error) {
		return r.next.GetByName(ctx, name)
	})
}

func (r *TeamRepository) ListNames(ctx context.Context) (map[string]string, error) {
	v, err := r.cache.GetOrLoad(ctx, "team:names", func(ctx context.Context) (any, error) {
		names, err := r.next.ListNames(ctx)
		if err != nil {
			return nil, err
		}
		return names, nil
	})
	if err != nil {
		return nil, err
	}

	names, _ := v.(map[string]string)
	return maps.Clone(names), nil
}

func (r *TeamRepository) Upsert(ctx context.Context, item team.Team) error {
	if err := r.next.Upsert(ctx, item); err != nil {
		return err
	}
	r.cache.DeletePrefix(ctx, "team:")
	return nil
}

func (r *TeamRepository) getOne(ctx context.Context, key string, load func(context.Context) (team.Team, bool, error)) (team.Team, bool, error) {
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		item, exists, err := load(ctx)
		if err != nil {
			return nil, err
		}
		return cachedTeam{value: item, exists: exists}, nil
	})
	if err != nil {
		return team.Team{}, false, err
	}

	cached, _ := v.(cachedTeam)
	return cached.value, cached.exists, nil
}

type cachedTeam struct {
	value  team.Team
	exists bool
}
