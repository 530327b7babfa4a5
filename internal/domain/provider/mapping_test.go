package provider

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/riskibarqy/cricket-fantasy/internal/domain/match"
	"github.com/riskibarqy/cricket-fantasy/internal/domain/player"
)

func TestMapStatus(t *testing.T) {
	t.Parallel()

	cases := []struct {
		raw     string
		started bool
		ended   bool
		want    match.Status
	}{
		{raw: "Live", want: match.StatusLive},
		{raw: "Match not started", want: match.StatusUpcoming},
		{raw: "India won by 7 wkts", ended: true, want: match.StatusCompleted},
		{raw: "Match abandoned due to rain", want: match.StatusAbandoned},
		{raw: "No Result", want: match.StatusAbandoned},
		{raw: "Innings Break", started: true, want: match.StatusInningsBreak},
		{raw: "Day 2: Stumps - Australia lead by 120 runs", started: true, want: match.StatusInningsBreak},
		{raw: "England need 45 runs in 30 balls", started: true, want: match.StatusLive},
		{raw: "", started: true, want: match.StatusLive},
		{raw: "", started: true, ended: true, want: match.StatusCompleted},
		{raw: "", want: match.StatusUpcoming},
	}

	for _, tc := range cases {
		got := MapStatus(tc.raw, tc.started, tc.ended)
		if got != tc.want {
			t.Fatalf("MapStatus(%q) got=%s want=%s", tc.raw, got, tc.want)
		}
	}
}

func TestMapRole(t *testing.T) {
	t.Parallel()

	cases := map[string]player.Role{
		"WK-Batsman":          player.RoleWicketKeeper,
		"Batting Allrounder":  player.RoleAllRounder,
		"Bowling Allrounder":  player.RoleAllRounder,
		"Bowler":              player.RoleBowler,
		"Batsman":             player.RoleBatsman,
		"Top-order Batter":    player.RoleBatsman,
		"Wicketkeeper Batter": player.RoleWicketKeeper,
		"Fast bowling":        player.RoleBowler,
		"coach":               player.RoleUnknown,
	}

	for raw, want := range cases {
		if got := MapRole(raw); got != want {
			t.Fatalf("MapRole(%q) got=%q want=%q", raw, got, want)
		}
	}
}

func TestQuotaError_MatchesBothSentinels(t *testing.T) {
	t.Parallel()

	reset := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	err := fmt.Errorf("get match: %w", NewQuotaError(reset))

	if !errors.Is(err, ErrQuotaExhausted) {
		t.Fatalf("expected quota error to match ErrQuotaExhausted")
	}
	if !errors.Is(err, ErrProviderUnavailable) {
		t.Fatalf("expected quota error to match ErrProviderUnavailable")
	}
	if errors.Is(err, ErrMalformedUpstreamData) {
		t.Fatalf("quota error must not match ErrMalformedUpstreamData")
	}
	got, ok := QuotaResetAt(err)
	if !ok || !got.Equal(reset) {
		t.Fatalf("unexpected reset got=%v ok=%v want=%v", got, ok, reset)
	}
}

func TestRateLimitInfo_Exhausted(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	reset := NextUTCMidnight(now)
	if want := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC); !reset.Equal(want) {
		t.Fatalf("unexpected midnight got=%v want=%v", reset, want)
	}

	if (RateLimitInfo{}).Exhausted(now) {
		t.Fatalf("unknown quota must not be exhausted")
	}
	info := RateLimitInfo{Limit: 100, Remaining: 0, ResetAt: reset, Known: true}
	if !info.Exhausted(now) {
		t.Fatalf("expected exhausted before reset")
	}
	if info.Exhausted(reset.Add(time.Second)) {
		t.Fatalf("expected quota to be available after reset")
	}
	if got := info.UntilReset(now); got != 12*time.Hour {
		t.Fatalf("unexpected until reset got=%v want=12h", got)
	}
}
