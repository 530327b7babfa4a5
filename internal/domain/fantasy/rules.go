package fantasy

import (
	"errors"
	"fmt"
	"math"

	"github.com/riskibarqy/cricket-fantasy/internal/domain/player"
)

var (
	ErrValidation         = errors.New("roster validation failed")
	ErrInvariantViolation = errors.New("roster invariant violated")

	ErrInvalidRosterSize      = errors.New("invalid roster size")
	ErrExceededBudget         = errors.New("budget cap exceeded")
	ErrExceededTeamLimit      = errors.New("max players from same team exceeded")
	ErrRoleOutOfRange         = errors.New("role count out of range")
	ErrUnknownPlayer          = errors.New("unknown player")
	ErrUnknownPlayerRole      = errors.New("unknown player role")
	ErrDuplicatePlayer        = errors.New("duplicate player in roster")
	ErrCaptainIsViceCaptain   = errors.New("captain and vice-captain must differ")
	ErrCaptainNotInRoster     = errors.New("captain not in roster")
	ErrViceCaptainNotInRoster = errors.New("vice-captain not in roster")
)

// RoleLimit is an inclusive [Min, Max] count for one role.
type RoleLimit struct {
	Min int
	Max int
}

// TeamRules stores roster validation parameters.
type TeamRules struct {
	RosterSize int
	MaxPerTeam int
	BudgetCap  float64
	RoleLimits map[player.Role]RoleLimit
}

func DefaultTeamRules() TeamRules {
	return TeamRules{
		RosterSize: 11,
		MaxPerTeam: 7,
		BudgetCap:  100,
		RoleLimits: map[player.Role]RoleLimit{
			player.RoleBatsman:      {Min: 3, Max: 6},
			player.RoleBowler:       {Min: 3, Max: 6},
			player.RoleAllRounder:   {Min: 1, Max: 4},
			player.RoleWicketKeeper: {Min: 1, Max: 4},
		},
	}
}

// orderedRoles keeps error messages deterministic.
var orderedRoles = []player.Role{
	player.RoleWicketKeeper,
	player.RoleBatsman,
	player.RoleAllRounder,
	player.RoleBowler,
}

// ValidateRoster checks invariants first, then the team rules. pool holds
// the selectable players keyed by id.
func ValidateRoster(roster Roster, pool map[string]Pick, rules TeamRules) error {
	if roster.CaptainID == "" || roster.ViceCaptainID == "" {
		return fmt.Errorf("%w: captain and vice-captain are required", ErrInvariantViolation)
	}
	if roster.CaptainID == roster.ViceCaptainID {
		return fmt.Errorf("%w: %w: %s", ErrInvariantViolation, ErrCaptainIsViceCaptain, roster.CaptainID)
	}

	seen := make(map[string]struct{}, len(roster.PlayerIDs))
	for _, playerID := range roster.PlayerIDs {
		if _, exists := seen[playerID]; exists {
			return fmt.Errorf("%w: %w: %s", ErrInvariantViolation, ErrDuplicatePlayer, playerID)
		}
		seen[playerID] = struct{}{}
	}
	if _, ok := seen[roster.CaptainID]; !ok {
		return fmt.Errorf("%w: %w: %s", ErrInvariantViolation, ErrCaptainNotInRoster, roster.CaptainID)
	}
	if _, ok := seen[roster.ViceCaptainID]; !ok {
		return fmt.Errorf("%w: %w: %s", ErrInvariantViolation, ErrViceCaptainNotInRoster, roster.ViceCaptainID)
	}

	if len(roster.PlayerIDs) != rules.RosterSize {
		return fmt.Errorf("%w: %w: expected %d, got %d", ErrValidation, ErrInvalidRosterSize, rules.RosterSize, len(roster.PlayerIDs))
	}

	teamCounter := make(map[string]int)
	for _, playerID := range roster.PlayerIDs {
		pick, ok := pool[playerID]
		if !ok {
			return fmt.Errorf("%w: %w: %s", ErrValidation, ErrUnknownPlayer, playerID)
		}
		if _, ok := player.AllRoles[pick.Role]; !ok {
			return fmt.Errorf("%w: %w: player=%s role=%q", ErrValidation, ErrUnknownPlayerRole, playerID, pick.Role)
		}
		if pick.TeamID == "" {
			continue
		}
		teamCounter[pick.TeamID]++
		if teamCounter[pick.TeamID] > rules.MaxPerTeam {
			return fmt.Errorf("%w: %w: team=%s max=%d", ErrValidation, ErrExceededTeamLimit, pick.TeamID, rules.MaxPerTeam)
		}
	}

	used := CreditsUsed(roster.PlayerIDs, pool)
	if used > rules.BudgetCap+budgetEpsilon {
		return fmt.Errorf("%w: %w: cap=%.1f used=%.1f", ErrValidation, ErrExceededBudget, rules.BudgetCap, used)
	}

	counts := ComputeRoleCounts(roster.PlayerIDs, pool)
	for _, role := range orderedRoles {
		limit, ok := rules.RoleLimits[role]
		if !ok {
			continue
		}
		if counts[role] < limit.Min || counts[role] > limit.Max {
			return fmt.Errorf("%w: %w: role=%s min=%d max=%d current=%d", ErrValidation, ErrRoleOutOfRange, role, limit.Min, limit.Max, counts[role])
		}
	}

	return nil
}

const budgetEpsilon = 1e-9

// ComputeRoleCounts counts the roster by role. Players missing from the pool
// are ignored.
func ComputeRoleCounts(playerIDs []string, pool map[string]Pick) map[player.Role]int {
	out := make(map[player.Role]int, len(orderedRoles))
	for _, playerID := range playerIDs {
		pick, ok := pool[playerID]
		if !ok {
			continue
		}
		out[pick.Role]++
	}
	return out
}

// CreditsUsed sums the credit cost of the roster.
func CreditsUsed(playerIDs []string, pool map[string]Pick) float64 {
	var total float64
	for _, playerID := range playerIDs {
		total += pool[playerID].Credit
	}
	return math.Round(total*10) / 10
}
