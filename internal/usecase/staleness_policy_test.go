package usecase

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/cricket-fantasy/internal/domain/match"
	"github.com/riskibarqy/cricket-fantasy/internal/domain/provider"
	"github.com/riskibarqy/cricket-fantasy/internal/domain/syncstate"
	"github.com/riskibarqy/cricket-fantasy/internal/domain/tournament"
)

var policyNow = time.Date(2026, 4, 10, 12, 0, 0, 0, time.UTC)

func TestStalenessPolicy_MatchThreshold(t *testing.T) {
	t.Parallel()

	policy := DefaultStalenessPolicy()
	plenty := provider.RateLimitInfo{Known: true, Limit: 10000, Remaining: 9000, ResetAt: policyNow.Add(time.Hour)}

	tests := []struct {
		name   string
		status match.Status
		quota  provider.RateLimitInfo
		want   time.Duration
	}{
		{name: "completed never stale", status: match.StatusCompleted, quota: plenty, want: NeverStale},
		{name: "abandoned never stale", status: match.StatusAbandoned, quota: plenty, want: NeverStale},
		{name: "upcoming hourly", status: match.StatusUpcoming, quota: plenty, want: time.Hour},
		{name: "live with headroom hits ceiling", status: match.StatusLive, quota: plenty, want: 30 * time.Second},
		{name: "innings break is live", status: match.StatusInningsBreak, quota: plenty, want: 30 * time.Second},
		{name: "live with unknown quota backs off", status: match.StatusLive, quota: provider.RateLimitInfo{}, want: time.Hour},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := policy.MatchThreshold(match.Match{Status: tc.status}, tc.quota, policyNow)
			if got != tc.want {
				t.Fatalf("got=%v want=%v", got, tc.want)
			}
		})
	}
}

func TestStalenessPolicy_LiveIntervalSpreadsQuota(t *testing.T) {
	t.Parallel()

	policy := DefaultStalenessPolicy()

	// 150 left, 50 reserved: 100 calls over 100 minutes.
	quota := provider.RateLimitInfo{Known: true, Limit: 200, Remaining: 150, ResetAt: policyNow.Add(100 * time.Minute)}
	require.Equal(t, time.Minute, policy.LiveInterval(quota, policyNow))

	// Inside the reserve every call is stretched over the whole window.
	quota.Remaining = 10
	require.Equal(t, time.Hour, policy.LiveInterval(quota, policyNow))

	quota.Remaining = 0
	require.Equal(t, time.Hour, policy.LiveInterval(quota, policyNow))
}

func TestStalenessPolicy_LiveIntervalIsMonotonicInRemaining(t *testing.T) {
	t.Parallel()

	policy := DefaultStalenessPolicy()
	previous := time.Duration(0)
	for remaining := 1000; remaining >= 0; remaining -= 25 {
		quota := provider.RateLimitInfo{Known: true, Limit: 1000, Remaining: remaining, ResetAt: policyNow.Add(6 * time.Hour)}
		got := policy.LiveInterval(quota, policyNow)
		if got < previous {
			t.Fatalf("interval shrank as quota fell: remaining=%d got=%v previous=%v", remaining, got, previous)
		}
		if got < policy.LiveCeiling || got > policy.LiveQuotaMax {
			t.Fatalf("interval out of bounds: remaining=%d got=%v", remaining, got)
		}
		previous = got
	}
}

func TestStalenessPolicy_TournamentThreshold(t *testing.T) {
	t.Parallel()

	policy := DefaultStalenessPolicy()
	active := tournament.Tournament{EndDate: time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC)}
	finished := tournament.Tournament{EndDate: time.Date(2026, 4, 8, 0, 0, 0, 0, time.UTC)}

	require.Equal(t, 6*time.Hour, policy.TournamentThreshold(active, policyNow))
	require.Equal(t, NeverStale, policy.TournamentThreshold(finished, policyNow))
	require.Equal(t, 6*time.Hour, policy.TournamentThreshold(tournament.Tournament{}, policyNow))
}

func TestStalenessPolicy_NormalizeFillsDefaults(t *testing.T) {
	t.Parallel()

	got := StalenessPolicy{Player: time.Minute, LiveQuotaMax: time.Second, LiveQuotaReserve: -3}.Normalize()
	require.Equal(t, time.Minute, got.Player)
	require.Equal(t, 6*time.Hour, got.Tournament)
	require.Equal(t, got.LiveCeiling, got.LiveQuotaMax)
	require.Zero(t, got.LiveQuotaReserve)
	require.Equal(t, got.LiveCeiling, got.SweepThreshold(syncstate.KindMatchStats))
}

func TestIsStale(t *testing.T) {
	t.Parallel()

	require.True(t, IsStale(time.Time{}, policyNow, time.Hour))
	require.False(t, IsStale(time.Time{}, policyNow, NeverStale))
	require.False(t, IsStale(policyNow.Add(-time.Hour), policyNow, time.Hour))
	require.True(t, IsStale(policyNow.Add(-time.Hour-time.Second), policyNow, time.Hour))
}
