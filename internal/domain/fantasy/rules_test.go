package fantasy

import (
	"errors"
	"fmt"
	"testing"

	"github.com/riskibarqy/cricket-fantasy/internal/domain/player"
)

func validPool() map[string]Pick {
	roles := []player.Role{
		player.RoleWicketKeeper,
		player.RoleBatsman, player.RoleBatsman, player.RoleBatsman, player.RoleBatsman,
		player.RoleAllRounder, player.RoleAllRounder,
		player.RoleBowler, player.RoleBowler, player.RoleBowler, player.RoleBowler,
	}
	pool := make(map[string]Pick, len(roles)+1)
	for i, role := range roles {
		id := fmt.Sprintf("p%d", i+1)
		teamID := "t1"
		if i%2 == 1 {
			teamID = "t2"
		}
		pool[id] = Pick{PlayerID: id, TeamID: teamID, Role: role, Credit: 9}
	}
	pool["p12"] = Pick{PlayerID: "p12", TeamID: "t2", Role: player.RoleBowler, Credit: 8}
	return pool
}

func validRoster() Roster {
	ids := make([]string, 0, 11)
	for i := 1; i <= 11; i++ {
		ids = append(ids, fmt.Sprintf("p%d", i))
	}
	return Roster{PlayerIDs: ids, CaptainID: "p2", ViceCaptainID: "p8"}
}

func TestValidateRoster(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		mutate    func(*Roster, map[string]Pick, *TeamRules)
		kindErr   error
		targetErr error
	}{
		{
			name:   "valid roster",
			mutate: func(_ *Roster, _ map[string]Pick, _ *TeamRules) {},
		},
		{
			name: "captain equals vice-captain",
			mutate: func(r *Roster, _ map[string]Pick, _ *TeamRules) {
				r.ViceCaptainID = r.CaptainID
			},
			kindErr:   ErrInvariantViolation,
			targetErr: ErrCaptainIsViceCaptain,
		},
		{
			name: "duplicate player",
			mutate: func(r *Roster, _ map[string]Pick, _ *TeamRules) {
				r.PlayerIDs[10] = "p1"
			},
			kindErr:   ErrInvariantViolation,
			targetErr: ErrDuplicatePlayer,
		},
		{
			name: "captain outside roster",
			mutate: func(r *Roster, _ map[string]Pick, _ *TeamRules) {
				r.CaptainID = "p12"
			},
			kindErr:   ErrInvariantViolation,
			targetErr: ErrCaptainNotInRoster,
		},
		{
			name: "vice-captain outside roster",
			mutate: func(r *Roster, _ map[string]Pick, _ *TeamRules) {
				r.ViceCaptainID = "p12"
			},
			kindErr:   ErrInvariantViolation,
			targetErr: ErrViceCaptainNotInRoster,
		},
		{
			name: "invalid size",
			mutate: func(r *Roster, _ map[string]Pick, _ *TeamRules) {
				r.PlayerIDs = r.PlayerIDs[:10]
			},
			kindErr:   ErrValidation,
			targetErr: ErrInvalidRosterSize,
		},
		{
			name: "unknown player",
			mutate: func(r *Roster, _ map[string]Pick, _ *TeamRules) {
				r.PlayerIDs[10] = "ghost"
			},
			kindErr:   ErrValidation,
			targetErr: ErrUnknownPlayer,
		},
		{
			name: "unknown role",
			mutate: func(_ *Roster, pool map[string]Pick, _ *TeamRules) {
				pick := pool["p3"]
				pick.Role = player.RoleUnknown
				pool["p3"] = pick
			},
			kindErr:   ErrValidation,
			targetErr: ErrUnknownPlayerRole,
		},
		{
			name: "team limit exceeded",
			mutate: func(_ *Roster, pool map[string]Pick, _ *TeamRules) {
				for _, id := range []string{"p2", "p4"} {
					pick := pool[id]
					pick.TeamID = "t1"
					pool[id] = pick
				}
			},
			kindErr:   ErrValidation,
			targetErr: ErrExceededTeamLimit,
		},
		{
			name: "budget exceeded",
			mutate: func(_ *Roster, pool map[string]Pick, _ *TeamRules) {
				pick := pool["p1"]
				pick.Credit = 11.5
				pool["p1"] = pick
			},
			kindErr:   ErrValidation,
			targetErr: ErrExceededBudget,
		},
		{
			name: "role out of range",
			mutate: func(r *Roster, _ map[string]Pick, _ *TeamRules) {
				r.PlayerIDs[0] = "p12"
			},
			kindErr:   ErrValidation,
			targetErr: ErrRoleOutOfRange,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			roster := validRoster()
			pool := validPool()
			rules := DefaultTeamRules()
			tc.mutate(&roster, pool, &rules)

			err := ValidateRoster(roster, pool, rules)
			if tc.targetErr == nil {
				if err != nil {
					t.Fatalf("expected nil error, got %v", err)
				}
				return
			}
			if !errors.Is(err, tc.kindErr) {
				t.Fatalf("expected kind %v, got %v", tc.kindErr, err)
			}
			if !errors.Is(err, tc.targetErr) {
				t.Fatalf("expected %v, got %v", tc.targetErr, err)
			}
		})
	}
}

func TestBuildRoster_Summary(t *testing.T) {
	t.Parallel()

	pool := validPool()
	base := validRoster()
	roster := BuildRoster(base.PlayerIDs, base.CaptainID, base.ViceCaptainID, pool)

	if roster.CreditsUsed != 99 {
		t.Fatalf("unexpected credits used: got=%v want=99", roster.CreditsUsed)
	}
	want := map[player.Role]int{
		player.RoleWicketKeeper: 1,
		player.RoleBatsman:      4,
		player.RoleAllRounder:   2,
		player.RoleBowler:       4,
	}
	for role, count := range want {
		if roster.RoleCounts[role] != count {
			t.Fatalf("unexpected %s count: got=%d want=%d", role, roster.RoleCounts[role], count)
		}
	}
	if roster.Designation("p2") != DesignationCaptain || roster.Designation("p8") != DesignationViceCaptain {
		t.Fatalf("unexpected designations")
	}
	if roster.Designation("p1") != DesignationNone {
		t.Fatalf("expected no designation for p1")
	}
}
