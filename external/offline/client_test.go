package offline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/cricket-fantasy/internal/domain/fantasy"
	"github.com/riskibarqy/cricket-fantasy/internal/domain/match"
	"github.com/riskibarqy/cricket-fantasy/internal/domain/player"
	"github.com/riskibarqy/cricket-fantasy/internal/domain/provider"
)

var fixedNow = time.Date(2026, 4, 10, 12, 0, 0, 0, time.UTC)

func TestClient_SeededLifecycleStates(t *testing.T) {
	t.Parallel()

	client := NewClient(Config{Now: func() time.Time { return fixedNow }})
	payloads, err := client.GetMatches(context.Background(), LeagueTournamentID)
	if err != nil {
		t.Fatalf("GetMatches error: %v", err)
	}

	seen := make(map[match.Status]bool)
	for _, payload := range payloads {
		item, err := match.Unwrap(payload)
		if err != nil {
			t.Fatalf("unwrap error: %v", err)
		}
		if err := item.Validate(); err != nil {
			t.Fatalf("seeded match invalid: %v", err)
		}
		seen[item.Status] = true
	}
	for _, status := range []match.Status{match.StatusUpcoming, match.StatusLive, match.StatusInningsBreak, match.StatusCompleted, match.StatusAbandoned} {
		if !seen[status] {
			t.Fatalf("missing seeded status %s", status)
		}
	}

	tournaments, err := client.GetTournaments(context.Background())
	if err != nil {
		t.Fatalf("GetTournaments error: %v", err)
	}
	if !tournaments[0].Active(fixedNow) || tournaments[1].Active(fixedNow) {
		t.Fatalf("unexpected tournament activity: %+v", tournaments)
	}
}

func TestClient_LiveScoreVariant(t *testing.T) {
	t.Parallel()

	client := NewClient(Config{Now: func() time.Time { return fixedNow }})

	live, err := client.GetLiveScore(context.Background(), LiveMatchID)
	if err != nil {
		t.Fatalf("GetLiveScore error: %v", err)
	}
	if _, ok := live.(match.LiveMatch); !ok {
		t.Fatalf("expected live payload, got %T", live)
	}

	done, err := client.GetLiveScore(context.Background(), CompletedMatchID)
	if err != nil {
		t.Fatalf("GetLiveScore error: %v", err)
	}
	if _, ok := done.(match.BasicMatch); !ok {
		t.Fatalf("expected basic payload for completed match, got %T", done)
	}
}

func TestClient_SquadsFormValidRosters(t *testing.T) {
	t.Parallel()

	client := NewClient(Config{Now: func() time.Time { return fixedNow }})
	squads, err := client.GetSquad(context.Background(), LeagueTournamentID)
	if err != nil {
		t.Fatalf("GetSquad error: %v", err)
	}
	if len(squads) != 4 {
		t.Fatalf("unexpected squad count got=%d want=4", len(squads))
	}

	pool := make(map[string]fantasy.Pick)
	ids := make([]string, 0, 11)
	for idx, squad := range squads[:2] {
		for n, p := range squad.Players {
			pool[p.ID] = fantasy.Pick{PlayerID: p.ID, TeamID: squad.Team.ExternalID, Role: p.Role, Credit: 8.5}
			// keeper, batters 1-3 and bowlers from team one; the rest from team two.
			if (idx == 0 && n <= 3) || (idx == 0 && n >= 9) || (idx == 1 && n >= 4 && n <= 8) {
				ids = append(ids, p.ID)
			}
		}
	}
	roster := fantasy.Roster{PlayerIDs: ids, CaptainID: ids[0], ViceCaptainID: ids[1]}
	if err := fantasy.ValidateRoster(roster, pool, fantasy.DefaultTeamRules()); err != nil {
		t.Fatalf("expected seeded squad to form a valid roster: %v (ids=%v)", err, ids)
	}
}

func TestClient_PlayerCareerOnlyOnDetail(t *testing.T) {
	t.Parallel()

	client := NewClient(Config{Now: func() time.Time { return fixedNow }})
	id := PlayerID("t-mumbai", 7)

	detail, err := client.GetPlayer(context.Background(), id)
	if err != nil {
		t.Fatalf("GetPlayer error: %v", err)
	}
	if detail.Role != player.RoleBowler {
		t.Fatalf("unexpected role got=%s want=%s", detail.Role, player.RoleBowler)
	}
	if detail.Career[player.CareerT20].Bowling == nil {
		t.Fatalf("expected bowling career on detail")
	}

	page, err := client.GetPlayers(context.Background(), 0)
	if err != nil {
		t.Fatalf("GetPlayers error: %v", err)
	}
	if len(page) != playersPageSize || page[0].Career != nil {
		t.Fatalf("unexpected players page len=%d", len(page))
	}

	if _, err := client.GetPlayer(context.Background(), "ghost"); !errors.Is(err, provider.ErrEntityNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestClient_DailyQuota(t *testing.T) {
	t.Parallel()

	now := fixedNow
	client := NewClient(Config{DailyLimit: 2, Now: func() time.Time { return now }})

	for i := 0; i < 2; i++ {
		if _, err := client.GetMatch(context.Background(), UpcomingMatchID); err != nil {
			t.Fatalf("call %d error: %v", i, err)
		}
	}
	info := client.RateLimitInfo()
	if !info.Known || info.Remaining != 0 {
		t.Fatalf("unexpected quota info: %+v", info)
	}

	_, err := client.GetMatch(context.Background(), UpcomingMatchID)
	if !errors.Is(err, provider.ErrQuotaExhausted) {
		t.Fatalf("expected quota error, got %v", err)
	}
	resetAt, ok := provider.QuotaResetAt(err)
	if !ok || !resetAt.Equal(time.Date(2026, 4, 11, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected reset got=%s ok=%v", resetAt, ok)
	}
}

func TestClient_FailNext(t *testing.T) {
	t.Parallel()

	client := NewClient(Config{Now: func() time.Time { return fixedNow }})
	client.FailNext(provider.ErrProviderUnavailable)

	if _, err := client.GetTournaments(context.Background()); !errors.Is(err, provider.ErrProviderUnavailable) {
		t.Fatalf("expected injected failure, got %v", err)
	}
	if _, err := client.GetTournaments(context.Background()); err != nil {
		t.Fatalf("expected recovery after injected failure, got %v", err)
	}
	if got := client.Calls("GetTournaments"); got != 2 {
		t.Fatalf("unexpected call count got=%d want=2", got)
	}
}
