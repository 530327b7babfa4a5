package player

import (
	"fmt"
	"time"
)

// Role is the canonical playing role used by team rules and credit blending.
type Role string

const (
	RoleBatsman      Role = "batsman"
	RoleBowler       Role = "bowler"
	RoleAllRounder   Role = "all-rounder"
	RoleWicketKeeper Role = "wicket-keeper"
	RoleUnknown      Role = ""
)

var AllRoles = map[Role]struct{}{
	RoleBatsman:      {},
	RoleBowler:       {},
	RoleAllRounder:   {},
	RoleWicketKeeper: {},
}

// Player is a selectable cricketer with optional career history.
type Player struct {
	ID           string
	Name         string
	Role         Role
	BattingStyle string
	BowlingStyle string
	Country      string
	TeamID       string
	ImageURL     string
	Career       CareerStats
	LastSyncedAt time.Time
}

func (p Player) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("player id is required")
	}
	if p.Name == "" {
		return fmt.Errorf("player name is required")
	}
	if p.Role != RoleUnknown {
		if _, ok := AllRoles[p.Role]; !ok {
			return fmt.Errorf("invalid player role: %s", p.Role)
		}
	}

	return nil
}
