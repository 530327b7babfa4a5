package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/cricket-fantasy/internal/domain/contest"
	"github.com/riskibarqy/cricket-fantasy/internal/domain/fantasy"
	"github.com/riskibarqy/cricket-fantasy/internal/domain/match"
	"github.com/riskibarqy/cricket-fantasy/internal/domain/player"
	"github.com/riskibarqy/cricket-fantasy/internal/domain/scoring"
	"github.com/riskibarqy/cricket-fantasy/internal/domain/syncstate"
	"github.com/riskibarqy/cricket-fantasy/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/cricket-fantasy/internal/platform/id"
)

type fakePlayers struct {
	mu    sync.Mutex
	items map[string]player.Player
	calls int
}

func (f *fakePlayers) GetPlayer(_ context.Context, playerID string) (player.Player, syncstate.Source, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls++
	item, ok := f.items[playerID]
	if !ok {
		return player.Player{}, "", fmt.Errorf("%w: player id=%s", ErrNotFound, playerID)
	}
	return item, syncstate.SourceCache, nil
}

// newSquadPlayers builds two teams without career history: one keeper, four
// batsmen, two all-rounders and four bowlers per side.
func newSquadPlayers() *fakePlayers {
	roles := []player.Role{
		player.RoleWicketKeeper,
		player.RoleBatsman, player.RoleBatsman, player.RoleBatsman, player.RoleBatsman,
		player.RoleAllRounder, player.RoleAllRounder,
		player.RoleBowler, player.RoleBowler, player.RoleBowler, player.RoleBowler,
	}
	out := &fakePlayers{items: make(map[string]player.Player)}
	for _, teamID := range []string{"a", "b"} {
		for idx, role := range roles {
			playerID := fmt.Sprintf("%s%02d", teamID, idx+1)
			out.items[playerID] = player.Player{ID: playerID, Name: playerID, Role: role, TeamID: "team_" + teamID}
		}
	}
	return out
}

// validRoster takes six from team a and five from team b with the role mix
// of one side.
func validRoster() []string {
	return []string{"a01", "a02", "a03", "a06", "a08", "a09", "b04", "b05", "b07", "b10", "b11"}
}

type rosterFixture struct {
	matches *fakeMatches
	entries *memory.EntryRepository
	service *RosterService
}

func newRosterFixture(t *testing.T) *rosterFixture {
	t.Helper()

	matches := newFakeMatches(match.Match{ID: "m1", Name: "A vs B", Format: match.FormatT20, Status: match.StatusUpcoming})
	contests := memory.NewContestRepository(contest.Contest{ID: "c1", MatchID: "m1", Format: match.FormatT20, Rules: scoring.DefaultRules()})
	entries := memory.NewEntryRepository()
	credits := NewCreditService(newSquadPlayers())

	svc := NewRosterService(contests, entries, matches, credits, fantasy.DefaultTeamRules(), &id.Sequence{Prefix: "entry_"})
	svc.now = func() time.Time { return harnessStart }
	return &rosterFixture{matches: matches, entries: entries, service: svc}
}

func TestRosterService_CreateEntry(t *testing.T) {
	t.Parallel()

	f := newRosterFixture(t)
	ctx := context.Background()

	entry, err := f.service.CreateEntry(ctx, CreateEntryInput{
		ContestID:     "c1",
		UserID:        "u1",
		PlayerIDs:     validRoster(),
		CaptainID:     "a02",
		ViceCaptainID: "b10",
	})
	require.NoError(t, err)

	if entry.ID != "entry_1" || entry.UserName != "u1" {
		t.Fatalf("unexpected entry identity, got id=%s name=%s", entry.ID, entry.UserName)
	}
	if entry.Roster.CreditsUsed != 90.5 {
		t.Fatalf("unexpected credits used, got=%v want=90.5", entry.Roster.CreditsUsed)
	}
	wantCounts := map[player.Role]int{
		player.RoleWicketKeeper: 1,
		player.RoleBatsman:      4,
		player.RoleAllRounder:   2,
		player.RoleBowler:       4,
	}
	require.Equal(t, wantCounts, entry.Roster.RoleCounts)

	// A second submission replaces the roster under the same entry.
	again, err := f.service.CreateEntry(ctx, CreateEntryInput{
		ContestID:     "c1",
		UserID:        "u1",
		UserName:      "Umar",
		PlayerIDs:     validRoster(),
		CaptainID:     "b10",
		ViceCaptainID: "a02",
	})
	require.NoError(t, err)
	if again.ID != entry.ID || again.Roster.CaptainID != "b10" || again.UserName != "Umar" {
		t.Fatalf("unexpected resubmission, got=%+v", again)
	}

	stored, err := f.entries.ListByContest(ctx, "c1")
	require.NoError(t, err)
	if len(stored) != 1 {
		t.Fatalf("expected one stored entry, got=%d", len(stored))
	}
}

func TestRosterService_CreateEntryRejects(t *testing.T) {
	t.Parallel()

	withPlayer := func(ids []string, idx int, playerID string) []string {
		out := append([]string(nil), ids...)
		out[idx] = playerID
		return out
	}

	tests := []struct {
		name  string
		input CreateEntryInput
		want  error
	}{
		{
			name:  "missing user",
			input: CreateEntryInput{ContestID: "c1", PlayerIDs: validRoster(), CaptainID: "a02", ViceCaptainID: "b10"},
			want:  ErrInvalidInput,
		},
		{
			name:  "unknown contest",
			input: CreateEntryInput{ContestID: "c404", UserID: "u1", PlayerIDs: validRoster(), CaptainID: "a02", ViceCaptainID: "b10"},
			want:  ErrNotFound,
		},
		{
			name:  "captain is vice-captain",
			input: CreateEntryInput{ContestID: "c1", UserID: "u1", PlayerIDs: validRoster(), CaptainID: "a02", ViceCaptainID: "a02"},
			want:  fantasy.ErrCaptainIsViceCaptain,
		},
		{
			name:  "short roster",
			input: CreateEntryInput{ContestID: "c1", UserID: "u1", PlayerIDs: validRoster()[:10], CaptainID: "a02", ViceCaptainID: "b10"},
			want:  fantasy.ErrInvalidRosterSize,
		},
		{
			name:  "unknown player",
			input: CreateEntryInput{ContestID: "c1", UserID: "u1", PlayerIDs: withPlayer(validRoster(), 10, "zz99"), CaptainID: "a02", ViceCaptainID: "b10"},
			want:  fantasy.ErrUnknownPlayer,
		},
		{
			name:  "no wicket-keeper",
			input: CreateEntryInput{ContestID: "c1", UserID: "u1", PlayerIDs: withPlayer(validRoster(), 0, "a04"), CaptainID: "a02", ViceCaptainID: "b10"},
			want:  fantasy.ErrRoleOutOfRange,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			f := newRosterFixture(t)
			_, err := f.service.CreateEntry(context.Background(), tc.input)
			if !errors.Is(err, tc.want) {
				t.Fatalf("unexpected error, got=%v want=%v", err, tc.want)
			}
		})
	}
}

func TestRosterService_LockedOnceMatchStarts(t *testing.T) {
	t.Parallel()

	f := newRosterFixture(t)
	f.matches.setStatus("m1", match.StatusLive)

	_, err := f.service.CreateEntry(context.Background(), CreateEntryInput{
		ContestID:     "c1",
		UserID:        "u1",
		PlayerIDs:     validRoster(),
		CaptainID:     "a02",
		ViceCaptainID: "b10",
	})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict after lock, got=%v", err)
	}
}

func TestRosterService_BudgetCap(t *testing.T) {
	t.Parallel()

	f := newRosterFixture(t)
	f.service.rules.BudgetCap = 80

	_, err := f.service.CreateEntry(context.Background(), CreateEntryInput{
		ContestID:     "c1",
		UserID:        "u1",
		PlayerIDs:     validRoster(),
		CaptainID:     "a02",
		ViceCaptainID: "b10",
	})
	if !errors.Is(err, fantasy.ErrExceededBudget) {
		t.Fatalf("expected ErrExceededBudget, got=%v", err)
	}
}
