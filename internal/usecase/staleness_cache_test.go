package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/cricket-fantasy/external/offline"
	"github.com/riskibarqy/cricket-fantasy/internal/domain/match"
	"github.com/riskibarqy/cricket-fantasy/internal/domain/provider"
	"github.com/riskibarqy/cricket-fantasy/internal/domain/syncstate"
)

func TestStalenessCache_MissThenHit(t *testing.T) {
	t.Parallel()

	h := newCacheHarness(t)
	ctx := context.Background()

	first, source, err := h.cache.GetMatch(ctx, offline.UpcomingMatchID)
	require.NoError(t, err)
	require.Equal(t, syncstate.SourceAPI, source)
	require.Equal(t, match.StatusUpcoming, first.Status)
	require.NotEmpty(t, first.TeamA.ID)

	second, source, err := h.cache.GetMatch(ctx, offline.UpcomingMatchID)
	require.NoError(t, err)
	require.Equal(t, syncstate.SourceCache, source)
	require.Equal(t, first.ID, second.ID)
	require.Equal(t, 1, h.provider.Calls("GetMatch"))
}

func TestStalenessCache_StaleReadServesCachedAndRefreshes(t *testing.T) {
	t.Parallel()

	h := newCacheHarness(t)
	ctx := context.Background()

	_, _, err := h.cache.GetMatch(ctx, offline.UpcomingMatchID)
	require.NoError(t, err)

	h.provider.UpdateMatch(offline.UpcomingMatchID, func(m *match.Match) {
		m.Venue = "New Venue"
	})
	h.clock.Advance(2 * time.Hour)

	stale, source, err := h.cache.GetMatch(ctx, offline.UpcomingMatchID)
	require.NoError(t, err)
	require.Equal(t, syncstate.SourceCacheBackgroundUpdate, source)
	require.NotEqual(t, "New Venue", stale.Venue)

	h.drain(t)

	fresh, source, err := h.cache.GetMatch(ctx, offline.UpcomingMatchID)
	require.NoError(t, err)
	require.Equal(t, syncstate.SourceCache, source)
	require.Equal(t, "New Venue", fresh.Venue)
	require.Equal(t, 2, h.provider.Calls("GetMatch"))
}

func TestStalenessCache_FinalMatchNeverRefetched(t *testing.T) {
	t.Parallel()

	h := newCacheHarness(t)
	ctx := context.Background()

	_, _, err := h.cache.GetMatch(ctx, offline.CompletedMatchID)
	require.NoError(t, err)

	h.clock.Advance(30 * 24 * time.Hour)
	_, source, err := h.cache.GetMatch(ctx, offline.CompletedMatchID)
	require.NoError(t, err)
	require.Equal(t, syncstate.SourceCache, source)
	require.Equal(t, 1, h.provider.Calls("GetMatch"))
}

func TestStalenessCache_LiveThresholdFollowsQuota(t *testing.T) {
	t.Parallel()

	t.Run("headroom polls at ceiling", func(t *testing.T) {
		t.Parallel()

		h := newCacheHarness(t, withDailyLimit(100000))
		ctx := context.Background()

		live, source, err := h.cache.GetLiveMatch(ctx, offline.LiveMatchID)
		require.NoError(t, err)
		require.Equal(t, syncstate.SourceAPI, source)
		require.NotNil(t, live.Live)
		require.Len(t, live.Live.Batsmen, 2)

		h.clock.Advance(31 * time.Second)
		_, source, err = h.cache.GetLiveMatch(ctx, offline.LiveMatchID)
		require.NoError(t, err)
		require.Equal(t, syncstate.SourceCacheBackgroundUpdate, source)
		h.drain(t)
		require.Equal(t, 2, h.provider.Calls("GetLiveScore"))
	})

	t.Run("unknown quota backs off", func(t *testing.T) {
		t.Parallel()

		h := newCacheHarness(t)
		ctx := context.Background()

		_, _, err := h.cache.GetLiveMatch(ctx, offline.LiveMatchID)
		require.NoError(t, err)

		h.clock.Advance(10 * time.Minute)
		_, source, err := h.cache.GetLiveMatch(ctx, offline.LiveMatchID)
		require.NoError(t, err)
		require.Equal(t, syncstate.SourceCache, source)
		require.Equal(t, 1, h.provider.Calls("GetLiveScore"))
	})
}

func TestStalenessCache_ExhaustedQuotaServesStaleWithoutCalls(t *testing.T) {
	t.Parallel()

	h := newCacheHarness(t, withDailyLimit(1))
	ctx := context.Background()

	_, _, err := h.cache.GetMatch(ctx, offline.UpcomingMatchID)
	require.NoError(t, err)
	require.True(t, h.cache.RateLimitInfo().Exhausted(h.clock.Now()))

	h.clock.Advance(2 * time.Hour)
	item, source, err := h.cache.GetMatch(ctx, offline.UpcomingMatchID)
	require.NoError(t, err)
	require.Equal(t, syncstate.SourceCacheBackgroundUpdate, source)
	require.Equal(t, offline.UpcomingMatchID, item.ID)
	require.EqualValues(t, 1, h.cache.RefreshStats().Skipped)
	require.Equal(t, 1, h.provider.TotalCalls())

	// A miss has nothing to fall back on.
	_, _, err = h.cache.GetMatch(ctx, offline.CompletedMatchID)
	require.Error(t, err)
	require.True(t, errors.Is(err, provider.ErrQuotaExhausted))
}

func TestStalenessCache_NotFound(t *testing.T) {
	t.Parallel()

	h := newCacheHarness(t)
	_, _, err := h.cache.GetMatch(context.Background(), "m-missing")
	require.ErrorIs(t, err, ErrNotFound)

	_, _, err = h.cache.GetMatch(context.Background(), "  ")
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestStalenessCache_MemoryLayerEvictsOldestFirst(t *testing.T) {
	t.Parallel()

	h := newCacheHarness(t, withCapacity(2))
	ctx := context.Background()

	ids := []string{
		offline.PlayerID("t-chennai", 0),
		offline.PlayerID("t-chennai", 1),
		offline.PlayerID("t-chennai", 2),
	}
	for _, playerID := range ids {
		_, _, err := h.cache.GetPlayer(ctx, playerID)
		require.NoError(t, err)
	}
	require.Equal(t, []string{
		syncstate.Key(syncstate.KindPlayer, ids[1]),
		syncstate.Key(syncstate.KindPlayer, ids[2]),
	}, h.cache.MemoryKeys())

	// The evicted player still comes from the store.
	item, source, err := h.cache.GetPlayer(ctx, ids[0])
	require.NoError(t, err)
	require.Equal(t, syncstate.SourceCache, source)
	require.NotEmpty(t, item.Career)
	require.Equal(t, 3, h.provider.Calls("GetPlayer"))
}

func TestStalenessCache_ConcurrentMissesShareOneFetch(t *testing.T) {
	t.Parallel()

	h := newCacheHarness(t, withLatency(50*time.Millisecond))
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := h.cache.GetSquads(ctx, offline.LeagueTournamentID)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}
	require.Equal(t, 1, h.provider.Calls("GetSquad"))
}

func TestStalenessCache_SharedFetchSurvivesFirstCallerDeadline(t *testing.T) {
	t.Parallel()

	h := newCacheHarness(t, withLatency(200*time.Millisecond))

	shortCtx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	firstErr := make(chan error, 1)
	go func() {
		_, _, err := h.cache.GetTournaments(shortCtx)
		firstErr <- err
	}()
	require.Eventually(t, func() bool {
		return h.provider.Calls("GetTournaments") == 1
	}, time.Second, time.Millisecond)

	got, _, err := h.cache.GetTournaments(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, got)

	require.ErrorIs(t, <-firstErr, context.DeadlineExceeded)
	require.Equal(t, 1, h.provider.Calls("GetTournaments"))
}

func TestStalenessCache_SyncPlayerCatalog(t *testing.T) {
	t.Parallel()

	h := newCacheHarness(t)
	ctx := context.Background()

	count, err := h.cache.SyncPlayerCatalog(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, 25, count)
	require.Equal(t, 1, h.provider.Calls("GetPlayers"))

	total, err := h.cache.SyncPlayerCatalog(ctx, 100)
	require.NoError(t, err)
	require.Greater(t, total, count)
	// Paging stops at the first empty page.
	require.Equal(t, 1+(total+24)/25+1, h.provider.Calls("GetPlayers"))

	playerID := offline.PlayerID("t-chennai", 1)
	stored, ok, err := h.repos.Players.GetByID(ctx, playerID)
	require.NoError(t, err)
	require.True(t, ok)
	require.Empty(t, stored.Career)

	// A listing leaves no player record, so the profile is still fetched.
	detail, source, err := h.cache.GetPlayer(ctx, playerID)
	require.NoError(t, err)
	require.Equal(t, syncstate.SourceAPI, source)
	require.NotEmpty(t, detail.Career)

	_, err = h.cache.SyncPlayerCatalog(ctx, 0)
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestStalenessCache_PlayerMatchStatsUsesMatchRecord(t *testing.T) {
	t.Parallel()

	h := newCacheHarness(t)
	ctx := context.Background()

	all, _, err := h.cache.GetMatchStats(ctx, offline.CompletedMatchID)
	require.NoError(t, err)
	require.NotEmpty(t, all)

	line, source, err := h.cache.GetPlayerMatchStats(ctx, offline.CompletedMatchID, all[0].PlayerID)
	require.NoError(t, err)
	require.Equal(t, syncstate.SourceCache, source)
	require.Equal(t, all[0].Batting, line.Batting)
	require.Zero(t, h.provider.Calls("GetPlayerMatchStats"))

	_, _, err = h.cache.GetPlayerMatchStats(ctx, offline.CompletedMatchID, "nobody")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestStalenessCache_SquadsAttachTeams(t *testing.T) {
	t.Parallel()

	h := newCacheHarness(t)
	ctx := context.Background()

	squads, _, err := h.cache.GetSquads(ctx, offline.LeagueTournamentID)
	require.NoError(t, err)
	require.Len(t, squads, 4)

	for _, squad := range squads {
		require.NotEmpty(t, squad.Team.ID)
		for _, item := range squad.Players {
			require.Equal(t, squad.Team.ID, item.TeamID)
		}
	}

	// Matches resolve to the same team ids as squads.
	item, _, err := h.cache.GetMatch(ctx, offline.CompletedMatchID)
	require.NoError(t, err)
	require.Equal(t, squads[0].Team.ID, item.TeamA.ID)
}

func TestStalenessCache_RefreshStale(t *testing.T) {
	t.Parallel()

	h := newCacheHarness(t)
	ctx := context.Background()

	_, _, err := h.cache.GetMatch(ctx, offline.UpcomingMatchID)
	require.NoError(t, err)
	_, _, err = h.cache.GetMatch(ctx, offline.CompletedMatchID)
	require.NoError(t, err)

	h.clock.Advance(2 * time.Hour)
	result, err := h.cache.RefreshStale(ctx, []syncstate.Kind{syncstate.KindMatch}, 10)
	require.NoError(t, err)
	require.Equal(t, 2, result.Candidates)
	require.Equal(t, 1, result.Refreshing)
	require.Zero(t, result.Failed)

	h.drain(t)
	require.Equal(t, 3, h.provider.Calls("GetMatch"))
}

func TestStalenessCache_SyncForcesFetch(t *testing.T) {
	t.Parallel()

	h := newCacheHarness(t)
	ctx := context.Background()

	_, _, err := h.cache.GetMatches(ctx, offline.LeagueTournamentID)
	require.NoError(t, err)

	count, err := h.cache.Sync(ctx, syncstate.KindMatchList, offline.LeagueTournamentID)
	require.NoError(t, err)
	require.Equal(t, 5, count)
	require.Equal(t, 2, h.provider.Calls("GetMatches"))

	_, err = h.cache.Sync(ctx, syncstate.Kind("bogus"), "x")
	require.ErrorIs(t, err, ErrInvalidInput)
}
