package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/cricket-fantasy/external/offline"
	"github.com/riskibarqy/cricket-fantasy/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/cricket-fantasy/internal/platform/id"
	"github.com/riskibarqy/cricket-fantasy/internal/platform/logging"
)

var harnessStart = time.Date(2026, 4, 10, 12, 0, 0, 0, time.UTC)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock(start time.Time) *testClock {
	return &testClock{now: start}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type cacheHarness struct {
	clock    *testClock
	provider *offline.Client
	repos    Repositories
	cache    *StalenessCache
}

type harnessOption func(*offline.Config, *StalenessCacheConfig)

func withDailyLimit(limit int) harnessOption {
	return func(cfg *offline.Config, _ *StalenessCacheConfig) {
		cfg.DailyLimit = limit
	}
}

func withLatency(latency time.Duration) harnessOption {
	return func(cfg *offline.Config, _ *StalenessCacheConfig) {
		cfg.Latency = latency
	}
}

func withCapacity(capacity int) harnessOption {
	return func(_ *offline.Config, cfg *StalenessCacheConfig) {
		cfg.Capacity = capacity
	}
}

func newMemoryRepositories() Repositories {
	return Repositories{
		Tournaments: memory.NewTournamentRepository(),
		Matches:     memory.NewMatchRepository(),
		Teams:       memory.NewTeamRepository(),
		Players:     memory.NewPlayerRepository(),
		PlayerStats: memory.NewPlayerStatsRepository(),
		SyncRecords: memory.NewSyncRecordRepository(),
	}
}

func newCacheHarness(t *testing.T, opts ...harnessOption) *cacheHarness {
	t.Helper()

	clock := newTestClock(harnessStart)
	providerCfg := offline.Config{Now: clock.Now}
	cacheCfg := StalenessCacheConfig{
		TeamIDs: &id.Sequence{Prefix: "team_"},
		Logger:  logging.NewNop(),
		Now:     clock.Now,
	}
	for _, opt := range opts {
		opt(&providerCfg, &cacheCfg)
	}

	client := offline.NewClient(providerCfg)
	repos := newMemoryRepositories()
	cache, err := NewStalenessCache(client, repos, cacheCfg)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = cache.Shutdown(context.Background())
	})

	return &cacheHarness{clock: clock, provider: client, repos: repos, cache: cache}
}

// drain waits for queued background refreshes.
func (h *cacheHarness) drain(t *testing.T) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, h.cache.WaitRefreshes(ctx))
}
