package usecase

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/sourcegraph/conc/pool"

	"github.com/riskibarqy/cricket-fantasy/internal/domain/match"
	"github.com/riskibarqy/cricket-fantasy/internal/domain/player"
	"github.com/riskibarqy/cricket-fantasy/internal/domain/playerstats"
	"github.com/riskibarqy/cricket-fantasy/internal/domain/provider"
	"github.com/riskibarqy/cricket-fantasy/internal/domain/syncstate"
	"github.com/riskibarqy/cricket-fantasy/internal/domain/team"
	"github.com/riskibarqy/cricket-fantasy/internal/domain/tournament"
	"github.com/riskibarqy/cricket-fantasy/internal/platform/cache"
	"github.com/riskibarqy/cricket-fantasy/internal/platform/id"
	"github.com/riskibarqy/cricket-fantasy/internal/platform/logging"
	"github.com/riskibarqy/cricket-fantasy/internal/platform/resilience"
)

const (
	defaultCacheCapacity    = 2048
	defaultSweepConcurrency = 4
	defaultSweepLimit       = 100
	defaultFetchTimeout     = 30 * time.Second
)

type StalenessCacheConfig struct {
	Capacity         int
	Policy           StalenessPolicy
	RefreshWorkers   int
	RefreshQueue     int
	SweepConcurrency int
	// FetchTimeout bounds one shared provider fetch. It does not follow the
	// context of whichever caller started it.
	FetchTimeout time.Duration
	TeamIDs      id.Generator
	Logger       *logging.Logger
	Now          func() time.Time
}

// StalenessCache sits between the store and the provider. Each read decides
// whether the stored copy is fresh, stale but usable, or missing.
type StalenessCache struct {
	provider         provider.Client
	repos            Repositories
	writer           *EntityWriter
	memory           *cache.Store
	refresher        *Refresher
	policy           StalenessPolicy
	flight           resilience.SingleFlight
	sweepConcurrency int
	fetchTimeout     time.Duration
	now              func() time.Time
	logger           *logging.Logger
}

type cachedValue struct {
	value    any
	syncedAt time.Time
}

// SweepResult summarizes one RefreshStale run.
type SweepResult struct {
	Candidates int
	Refreshing int
	Failed     int
}

func NewStalenessCache(client provider.Client, repos Repositories, cfg StalenessCacheConfig) (*StalenessCache, error) {
	if client == nil {
		return nil, fmt.Errorf("%w: provider client", ErrDependencyUnavailable)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	writer, err := NewEntityWriter(repos, cfg.TeamIDs, logger)
	if err != nil {
		return nil, err
	}
	writer.now = now

	refresher, err := NewRefresher(RefresherConfig{
		Workers:    cfg.RefreshWorkers,
		MaxPending: cfg.RefreshQueue,
		Quota:      client.RateLimitInfo,
		Logger:     logger,
		Now:        now,
	})
	if err != nil {
		return nil, err
	}

	capacity := cfg.Capacity
	if capacity <= 0 {
		capacity = defaultCacheCapacity
	}
	sweepConcurrency := cfg.SweepConcurrency
	if sweepConcurrency <= 0 {
		sweepConcurrency = defaultSweepConcurrency
	}

	fetchTimeout := cfg.FetchTimeout
	if fetchTimeout <= 0 {
		fetchTimeout = defaultFetchTimeout
	}

	return &StalenessCache{
		provider:         client,
		repos:            repos,
		writer:           writer,
		memory:           cache.NewStore(0, cache.WithCapacity(capacity), cache.WithClock(now)),
		refresher:        refresher,
		policy:           cfg.Policy.Normalize(),
		sweepConcurrency: sweepConcurrency,
		fetchTimeout:     fetchTimeout,
		now:              now,
		logger:           logger.Named("staleness_cache"),
	}, nil
}

func (c *StalenessCache) Policy() StalenessPolicy {
	return c.policy
}

func (c *StalenessCache) RateLimitInfo() provider.RateLimitInfo {
	return c.provider.RateLimitInfo()
}

func (c *StalenessCache) RefreshStats() RefreshStats {
	return c.refresher.Stats()
}

func (c *StalenessCache) InFlight() []string {
	return c.refresher.InFlight()
}

// WaitRefreshes blocks until background refreshes drain.
func (c *StalenessCache) WaitRefreshes(ctx context.Context) error {
	return c.refresher.Wait(ctx)
}

// MemoryKeys lists the in-memory keys from oldest to newest.
func (c *StalenessCache) MemoryKeys() []string {
	return c.memory.Keys()
}

func (c *StalenessCache) Shutdown(ctx context.Context) error {
	return c.refresher.Shutdown(ctx)
}

func (c *StalenessCache) GetTournaments(ctx context.Context) ([]tournament.Tournament, syncstate.Source, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StalenessCache.GetTournaments")
	defer span.End()

	return resolve(ctx, c, c.tournamentsLookup())
}

func (c *StalenessCache) GetTournament(ctx context.Context, tournamentID string) (tournament.Tournament, syncstate.Source, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StalenessCache.GetTournament")
	defer span.End()

	tournamentID = strings.TrimSpace(tournamentID)
	if tournamentID == "" {
		return tournament.Tournament{}, "", fmt.Errorf("%w: tournament id is required", ErrInvalidInput)
	}
	return resolve(ctx, c, c.tournamentLookup(tournamentID))
}

func (c *StalenessCache) GetMatches(ctx context.Context, tournamentID string) ([]match.Match, syncstate.Source, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StalenessCache.GetMatches")
	defer span.End()

	tournamentID = strings.TrimSpace(tournamentID)
	if tournamentID == "" {
		return nil, "", fmt.Errorf("%w: tournament id is required", ErrInvalidInput)
	}
	return resolve(ctx, c, c.matchesLookup(tournamentID))
}

func (c *StalenessCache) GetMatch(ctx context.Context, matchID string) (match.Match, syncstate.Source, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StalenessCache.GetMatch")
	defer span.End()

	matchID = strings.TrimSpace(matchID)
	if matchID == "" {
		return match.Match{}, "", fmt.Errorf("%w: match id is required", ErrInvalidInput)
	}
	return resolve(ctx, c, c.matchLookup(syncstate.KindMatch, matchID))
}

// GetLiveMatch is GetMatch backed by the live score feed. In-play matches
// carry the crease view.
func (c *StalenessCache) GetLiveMatch(ctx context.Context, matchID string) (match.Match, syncstate.Source, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StalenessCache.GetLiveMatch")
	defer span.End()

	matchID = strings.TrimSpace(matchID)
	if matchID == "" {
		return match.Match{}, "", fmt.Errorf("%w: match id is required", ErrInvalidInput)
	}
	return resolve(ctx, c, c.matchLookup(syncstate.KindLiveMatch, matchID))
}

func (c *StalenessCache) GetPlayer(ctx context.Context, playerID string) (player.Player, syncstate.Source, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StalenessCache.GetPlayer")
	defer span.End()

	playerID = strings.TrimSpace(playerID)
	if playerID == "" {
		return player.Player{}, "", fmt.Errorf("%w: player id is required", ErrInvalidInput)
	}
	return resolve(ctx, c, c.playerLookup(playerID))
}

func (c *StalenessCache) GetSquads(ctx context.Context, tournamentID string) ([]team.Squad, syncstate.Source, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StalenessCache.GetSquads")
	defer span.End()

	tournamentID = strings.TrimSpace(tournamentID)
	if tournamentID == "" {
		return nil, "", fmt.Errorf("%w: tournament id is required", ErrInvalidInput)
	}
	return resolve(ctx, c, c.squadsLookup(tournamentID))
}

func (c *StalenessCache) GetMatchStats(ctx context.Context, matchID string) ([]playerstats.MatchStats, syncstate.Source, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StalenessCache.GetMatchStats")
	defer span.End()

	matchID = strings.TrimSpace(matchID)
	if matchID == "" {
		return nil, "", fmt.Errorf("%w: match id is required", ErrInvalidInput)
	}
	return resolve(ctx, c, c.matchStatsLookup(ctx, matchID))
}

// GetPlayerMatchStats answers from the match's full stats record when one is
// stored, and fetches the single line otherwise.
func (c *StalenessCache) GetPlayerMatchStats(ctx context.Context, matchID, playerID string) (playerstats.MatchStats, syncstate.Source, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StalenessCache.GetPlayerMatchStats")
	defer span.End()

	matchID = strings.TrimSpace(matchID)
	playerID = strings.TrimSpace(playerID)
	if matchID == "" || playerID == "" {
		return playerstats.MatchStats{}, "", fmt.Errorf("%w: match id and player id are required", ErrInvalidInput)
	}

	_, _, stored, err := load[[]playerstats.MatchStats](ctx, c, syncstate.KindMatchStats, matchID)
	if err != nil {
		return playerstats.MatchStats{}, "", err
	}
	if stored {
		items, source, err := c.GetMatchStats(ctx, matchID)
		if err != nil {
			return playerstats.MatchStats{}, "", err
		}
		for _, item := range items {
			if item.PlayerID == playerID {
				return item, source, nil
			}
		}
		return playerstats.MatchStats{}, "", fmt.Errorf("%w: no stats for player=%s in match=%s", ErrNotFound, playerID, matchID)
	}
	return resolve(ctx, c, c.playerMatchStatsLookup(ctx, matchID, playerID))
}

// Sync fetches an entity from the provider now, whatever its freshness, and
// returns the number of items written.
func (c *StalenessCache) Sync(ctx context.Context, kind syncstate.Kind, entityID string) (int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StalenessCache.Sync")
	defer span.End()

	entityID = strings.TrimSpace(entityID)
	switch kind {
	case syncstate.KindTournamentList:
		items, err := fetchLookup(ctx, c, c.tournamentsLookup())
		return len(items), err
	case syncstate.KindTournament:
		_, err := fetchLookup(ctx, c, c.tournamentLookup(entityID))
		return 1, err
	case syncstate.KindMatchList:
		items, err := fetchLookup(ctx, c, c.matchesLookup(entityID))
		return len(items), err
	case syncstate.KindMatch, syncstate.KindLiveMatch:
		_, err := fetchLookup(ctx, c, c.matchLookup(kind, entityID))
		return 1, err
	case syncstate.KindPlayer:
		_, err := fetchLookup(ctx, c, c.playerLookup(entityID))
		return 1, err
	case syncstate.KindSquad:
		items, err := fetchLookup(ctx, c, c.squadsLookup(entityID))
		count := 0
		for _, squad := range items {
			count += len(squad.Players)
		}
		return count, err
	case syncstate.KindMatchStats:
		if matchID, playerID, ok := strings.Cut(entityID, "/"); ok {
			_, err := fetchLookup(ctx, c, c.playerMatchStatsLookup(ctx, matchID, playerID))
			return 1, err
		}
		items, err := fetchLookup(ctx, c, c.matchStatsLookup(ctx, entityID))
		return len(items), err
	default:
		return 0, fmt.Errorf("%w: unknown kind %q", ErrInvalidInput, kind)
	}
}

// SyncPlayerCatalog pages through the provider's player catalogue from the
// start and stores every listing. It stops at the first empty page or after
// maxPages pages, and returns the number of players written.
func (c *StalenessCache) SyncPlayerCatalog(ctx context.Context, maxPages int) (int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StalenessCache.SyncPlayerCatalog")
	defer span.End()

	if maxPages <= 0 {
		return 0, fmt.Errorf("%w: max pages must be positive", ErrInvalidInput)
	}
	key := "player_catalog:" + strconv.Itoa(maxPages)
	out, err, _ := c.flight.DoShared(ctx, key, c.fetchTimeout, func(ctx context.Context) (any, error) {
		written, offset := 0, 0
		for page := 0; page < maxPages; page++ {
			items, err := c.provider.GetPlayers(ctx, offset)
			if err != nil {
				return written, providerError("fetch player catalogue", err)
			}
			if len(items) == 0 {
				break
			}
			saved, err := c.writer.WritePlayerListing(ctx, items)
			written += len(saved)
			if err != nil {
				return written, err
			}
			offset += len(items)
		}
		c.logger.DebugContext(ctx, "player catalogue synced", "players", written, "offset", offset)
		return written, nil
	})
	count, _ := out.(int)
	return count, err
}

func (c *StalenessCache) tournamentsLookup() lookup[[]tournament.Tournament] {
	return lookup[[]tournament.Tournament]{
		kind: syncstate.KindTournamentList,
		id:   tournamentListID,
		threshold: func([]tournament.Tournament) time.Duration {
			return c.policy.Tournament
		},
		fetch: c.fetchTournaments,
	}
}

func (c *StalenessCache) tournamentLookup(tournamentID string) lookup[tournament.Tournament] {
	return lookup[tournament.Tournament]{
		kind: syncstate.KindTournament,
		id:   tournamentID,
		threshold: func(item tournament.Tournament) time.Duration {
			return c.policy.TournamentThreshold(item, c.now())
		},
		fetch: func(ctx context.Context) (tournament.Tournament, error) {
			items, err := c.fetchTournaments(ctx)
			if err != nil {
				return tournament.Tournament{}, err
			}
			for _, item := range items {
				if item.ID == tournamentID {
					return item, nil
				}
			}
			return tournament.Tournament{}, fmt.Errorf("%w: tournament id=%s", ErrNotFound, tournamentID)
		},
	}
}

func (c *StalenessCache) fetchTournaments(ctx context.Context) ([]tournament.Tournament, error) {
	items, err := c.provider.GetTournaments(ctx)
	if err != nil {
		return nil, providerError("fetch tournaments", err)
	}
	written, err := c.writer.WriteTournaments(ctx, items)
	if err != nil {
		return nil, err
	}
	c.remember(syncstate.KindTournamentList, tournamentListID, written)
	return written, nil
}

func (c *StalenessCache) matchesLookup(tournamentID string) lookup[[]match.Match] {
	return lookup[[]match.Match]{
		kind: syncstate.KindMatchList,
		id:   tournamentID,
		threshold: func([]match.Match) time.Duration {
			return c.policy.MatchList
		},
		fetch: func(ctx context.Context) ([]match.Match, error) {
			payloads, err := c.provider.GetMatches(ctx, tournamentID)
			if err != nil {
				return nil, providerError("fetch matches", err)
			}
			items, err := c.writer.WriteMatches(ctx, tournamentID, payloads)
			if err != nil {
				return nil, err
			}
			for _, item := range items {
				c.remember(syncstate.KindMatch, item.ID, item)
			}
			return items, nil
		},
	}
}

func (c *StalenessCache) matchLookup(kind syncstate.Kind, matchID string) lookup[match.Match] {
	fetch := c.provider.GetMatch
	if kind == syncstate.KindLiveMatch {
		fetch = c.provider.GetLiveScore
	}
	return lookup[match.Match]{
		kind: kind,
		id:   matchID,
		threshold: func(item match.Match) time.Duration {
			return c.policy.MatchThreshold(item, c.provider.RateLimitInfo(), c.now())
		},
		fetch: func(ctx context.Context) (match.Match, error) {
			payload, err := fetch(ctx, matchID)
			if err != nil {
				return match.Match{}, providerError("fetch match", err)
			}
			return c.writer.WriteMatchPayload(ctx, kind, payload)
		},
	}
}

func (c *StalenessCache) playerLookup(playerID string) lookup[player.Player] {
	return lookup[player.Player]{
		kind: syncstate.KindPlayer,
		id:   playerID,
		threshold: func(player.Player) time.Duration {
			return c.policy.Player
		},
		fetch: func(ctx context.Context) (player.Player, error) {
			item, err := c.provider.GetPlayer(ctx, playerID)
			if err != nil {
				return player.Player{}, providerError("fetch player", err)
			}
			return c.writer.WritePlayer(ctx, item)
		},
	}
}

func (c *StalenessCache) squadsLookup(tournamentID string) lookup[[]team.Squad] {
	return lookup[[]team.Squad]{
		kind: syncstate.KindSquad,
		id:   tournamentID,
		threshold: func([]team.Squad) time.Duration {
			return c.policy.Squad
		},
		fetch: func(ctx context.Context) ([]team.Squad, error) {
			squads, err := c.provider.GetSquad(ctx, tournamentID)
			if err != nil {
				return nil, providerError("fetch squads", err)
			}
			return c.writer.WriteSquads(ctx, tournamentID, squads)
		},
	}
}

func (c *StalenessCache) matchStatsLookup(ctx context.Context, matchID string) lookup[[]playerstats.MatchStats] {
	return lookup[[]playerstats.MatchStats]{
		kind: syncstate.KindMatchStats,
		id:   matchID,
		threshold: func([]playerstats.MatchStats) time.Duration {
			return c.matchStatsThreshold(ctx, matchID)
		},
		fetch: func(ctx context.Context) ([]playerstats.MatchStats, error) {
			items, err := c.provider.GetAllPlayerMatchStats(ctx, matchID)
			if err != nil {
				return nil, providerError("fetch match stats", err)
			}
			return c.writer.WriteMatchStats(ctx, matchID, items)
		},
	}
}

func (c *StalenessCache) playerMatchStatsLookup(ctx context.Context, matchID, playerID string) lookup[playerstats.MatchStats] {
	return lookup[playerstats.MatchStats]{
		kind: syncstate.KindMatchStats,
		id:   playerStatsEntityID(matchID, playerID),
		threshold: func(playerstats.MatchStats) time.Duration {
			return c.matchStatsThreshold(ctx, matchID)
		},
		fetch: func(ctx context.Context) (playerstats.MatchStats, error) {
			item, err := c.provider.GetPlayerMatchStats(ctx, matchID, playerID)
			if err != nil {
				return playerstats.MatchStats{}, providerError("fetch player match stats", err)
			}
			item.MatchID = matchID
			return c.writer.WritePlayerMatchStats(ctx, item)
		},
	}
}

// matchStatsThreshold follows the stored match. Stats of an unknown match
// use the upcoming threshold.
func (c *StalenessCache) matchStatsThreshold(ctx context.Context, matchID string) time.Duration {
	item, ok, err := c.repos.Matches.GetByID(ctx, matchID)
	if err != nil {
		c.logger.WarnContext(ctx, "load match for stats threshold failed", "match_id", matchID, "error", err)
		return c.policy.MatchUpcoming
	}
	if !ok {
		return c.policy.MatchUpcoming
	}
	return c.policy.MatchThreshold(item, c.provider.RateLimitInfo(), c.now())
}

// RefreshStale walks stored records older than each kind's sweep threshold
// and reads them through the cache, which queues refreshes for the ones that
// are stale under the full policy.
func (c *StalenessCache) RefreshStale(ctx context.Context, kinds []syncstate.Kind, limit int) (SweepResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StalenessCache.RefreshStale")
	defer span.End()

	if len(kinds) == 0 {
		kinds = syncstate.Kinds
	}
	if limit <= 0 {
		limit = defaultSweepLimit
	}

	var candidates, refreshing, failed atomic.Int64
	now := c.now()
	workers := pool.New().WithMaxGoroutines(c.sweepConcurrency).WithContext(ctx)
	for _, kind := range kinds {
		kind := kind
		workers.Go(func(ctx context.Context) error {
			before := now.Add(-c.policy.SweepThreshold(kind))
			records, err := c.repos.SyncRecords.ListStale(ctx, kind, before, limit)
			if err != nil {
				return fmt.Errorf("list stale %s records: %w", kind, err)
			}
			for _, record := range records {
				candidates.Add(1)
				source, err := c.touch(ctx, record.Kind, record.EntityID)
				if err != nil {
					failed.Add(1)
					c.logger.WarnContext(ctx, "sweep read failed", "kind", record.Kind, "entity_id", record.EntityID, "error", err)
					continue
				}
				if source == syncstate.SourceCacheBackgroundUpdate {
					refreshing.Add(1)
				}
			}
			return nil
		})
	}
	err := workers.Wait()

	result := SweepResult{
		Candidates: int(candidates.Load()),
		Refreshing: int(refreshing.Load()),
		Failed:     int(failed.Load()),
	}
	if err != nil {
		return result, err
	}
	c.logger.InfoContext(ctx, "stale sweep done",
		"candidates", result.Candidates,
		"refreshing", result.Refreshing,
		"failed", result.Failed,
	)
	return result, nil
}

func (c *StalenessCache) touch(ctx context.Context, kind syncstate.Kind, entityID string) (syncstate.Source, error) {
	var (
		source syncstate.Source
		err    error
	)
	switch kind {
	case syncstate.KindTournamentList:
		_, source, err = c.GetTournaments(ctx)
	case syncstate.KindTournament:
		_, source, err = c.GetTournament(ctx, entityID)
	case syncstate.KindMatchList:
		_, source, err = c.GetMatches(ctx, entityID)
	case syncstate.KindMatch:
		_, source, err = c.GetMatch(ctx, entityID)
	case syncstate.KindLiveMatch:
		_, source, err = c.GetLiveMatch(ctx, entityID)
	case syncstate.KindPlayer:
		_, source, err = c.GetPlayer(ctx, entityID)
	case syncstate.KindSquad:
		_, source, err = c.GetSquads(ctx, entityID)
	case syncstate.KindMatchStats:
		if matchID, playerID, ok := strings.Cut(entityID, "/"); ok {
			_, source, err = c.GetPlayerMatchStats(ctx, matchID, playerID)
		} else {
			_, source, err = c.GetMatchStats(ctx, entityID)
		}
	default:
		return "", fmt.Errorf("%w: unknown kind %q", ErrInvalidInput, kind)
	}
	return source, err
}

type lookup[T any] struct {
	kind      syncstate.Kind
	id        string
	threshold func(T) time.Duration
	fetch     func(context.Context) (T, error)
}

func resolve[T any](ctx context.Context, c *StalenessCache, l lookup[T]) (T, syncstate.Source, error) {
	var zero T
	key := syncstate.Key(l.kind, l.id)

	value, syncedAt, found, err := load[T](ctx, c, l.kind, l.id)
	if err != nil {
		return zero, "", err
	}
	if !found {
		fetched, err := fetchLookup(ctx, c, l)
		if err != nil {
			return zero, "", err
		}
		return fetched, syncstate.SourceAPI, nil
	}

	if !IsStale(syncedAt, c.now(), l.threshold(value)) {
		return value, syncstate.SourceCache, nil
	}

	c.refresher.Submit(key, func(ctx context.Context) error {
		_, err := fetchLookup(ctx, c, l)
		return err
	})
	return value, syncstate.SourceCacheBackgroundUpdate, nil
}

// fetchLookup runs one provider fetch per key and stores the result in the
// memory layer. The fetch outlives any single caller's deadline.
func fetchLookup[T any](ctx context.Context, c *StalenessCache, l lookup[T]) (T, error) {
	var zero T
	key := syncstate.Key(l.kind, l.id)
	out, err, _ := c.flight.DoShared(ctx, key, c.fetchTimeout, func(ctx context.Context) (any, error) {
		fetched, err := l.fetch(ctx)
		if err != nil {
			return nil, err
		}
		c.remember(l.kind, l.id, fetched)
		return fetched, nil
	})
	if err != nil {
		return zero, err
	}
	typed, ok := out.(T)
	if !ok {
		return zero, fmt.Errorf("unexpected cached value type %T for %s", out, key)
	}
	return typed, nil
}

// load reads the memory layer, then the store. A store hit is decoded and
// promoted to memory.
func load[T any](ctx context.Context, c *StalenessCache, kind syncstate.Kind, entityID string) (T, time.Time, bool, error) {
	var zero T
	key := syncstate.Key(kind, entityID)

	if raw, ok := c.memory.Get(ctx, key); ok {
		if cached, ok := raw.(cachedValue); ok {
			if typed, ok := cached.value.(T); ok {
				return typed, cached.syncedAt, true, nil
			}
		}
		c.memory.Delete(ctx, key)
	}

	record, ok, err := c.repos.SyncRecords.Get(ctx, kind, entityID)
	if err != nil {
		return zero, time.Time{}, false, fmt.Errorf("get %s record id=%s: %w", kind, entityID, err)
	}
	if !ok {
		return zero, time.Time{}, false, nil
	}

	var decoded T
	if err := sonic.Unmarshal(record.Payload, &decoded); err != nil {
		c.logger.WarnContext(ctx, "discard undecodable sync record", "kind", kind, "entity_id", entityID, "error", err)
		return zero, time.Time{}, false, nil
	}
	c.memory.Set(ctx, key, cachedValue{value: decoded, syncedAt: record.LastSyncedAt})
	return decoded, record.LastSyncedAt, true, nil
}

func (c *StalenessCache) remember(kind syncstate.Kind, entityID string, value any) {
	c.memory.Set(context.Background(), syncstate.Key(kind, entityID), cachedValue{value: value, syncedAt: c.now().UTC()})
}

// providerError maps a provider not-found to ErrNotFound and keeps the rest
// of the chain intact.
func providerError(action string, err error) error {
	if errors.Is(err, provider.ErrEntityNotFound) {
		return fmt.Errorf("%s: %w: %w", action, ErrNotFound, err)
	}
	return fmt.Errorf("%s: %w", action, err)
}
