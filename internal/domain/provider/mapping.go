package provider

import (
	"strings"

	"github.com/riskibarqy/cricket-fantasy/internal/domain/match"
	"github.com/riskibarqy/cricket-fantasy/internal/domain/player"
)

var exactStatus = map[string]match.Status{
	"upcoming":      match.StatusUpcoming,
	"not started":   match.StatusUpcoming,
	"scheduled":     match.StatusUpcoming,
	"fixture":       match.StatusUpcoming,
	"live":          match.StatusLive,
	"in progress":   match.StatusLive,
	"innings break": match.StatusInningsBreak,
	"stumps":        match.StatusInningsBreak,
	"tea":           match.StatusInningsBreak,
	"lunch":         match.StatusInningsBreak,
	"drinks":        match.StatusLive,
	"completed":     match.StatusCompleted,
	"finished":      match.StatusCompleted,
	"result":        match.StatusCompleted,
	"abandoned":     match.StatusAbandoned,
	"cancelled":     match.StatusAbandoned,
	"no result":     match.StatusAbandoned,
}

// MapStatus maps provider status text onto the canonical lifecycle. The
// started/ended flags come from providers that report them separately.
func MapStatus(raw string, started, ended bool) match.Status {
	value := strings.ToLower(strings.TrimSpace(raw))
	if status, ok := exactStatus[value]; ok {
		return status
	}

	switch {
	case strings.Contains(value, "abandon"), strings.Contains(value, "no result"), strings.Contains(value, "cancel"):
		return match.StatusAbandoned
	case strings.Contains(value, "won by"), strings.Contains(value, "match tied"),
		strings.Contains(value, "drawn"), strings.Contains(value, "result"):
		return match.StatusCompleted
	case strings.Contains(value, "innings break"), strings.Contains(value, "stumps"):
		return match.StatusInningsBreak
	case strings.Contains(value, "need"), strings.Contains(value, "trail"),
		strings.Contains(value, "lead by"), strings.Contains(value, "opt to"),
		strings.Contains(value, "elected to"), strings.Contains(value, "live"):
		return match.StatusLive
	case strings.Contains(value, "starts at"), strings.Contains(value, "not started"):
		return match.StatusUpcoming
	}

	switch {
	case ended:
		return match.StatusCompleted
	case started:
		return match.StatusLive
	default:
		return match.StatusUpcoming
	}
}

var exactRole = map[string]player.Role{
	"batsman":            player.RoleBatsman,
	"batter":             player.RoleBatsman,
	"bowler":             player.RoleBowler,
	"allrounder":         player.RoleAllRounder,
	"all-rounder":        player.RoleAllRounder,
	"batting allrounder": player.RoleAllRounder,
	"bowling allrounder": player.RoleAllRounder,
	"wk-batsman":         player.RoleWicketKeeper,
	"wicketkeeper":       player.RoleWicketKeeper,
	"wicket-keeper":      player.RoleWicketKeeper,
	"wicket keeper":      player.RoleWicketKeeper,
}

// MapRole maps provider role text onto a player role. Unrecognized text maps
// to RoleUnknown.
func MapRole(raw string) player.Role {
	value := strings.ToLower(strings.TrimSpace(raw))
	if role, ok := exactRole[value]; ok {
		return role
	}

	switch {
	case strings.Contains(value, "wk"), strings.Contains(value, "keeper"):
		return player.RoleWicketKeeper
	case strings.Contains(value, "allrounder"), strings.Contains(value, "all-rounder"), strings.Contains(value, "all rounder"):
		return player.RoleAllRounder
	case strings.Contains(value, "bowl"):
		return player.RoleBowler
	case strings.Contains(value, "bat"):
		return player.RoleBatsman
	default:
		return player.RoleUnknown
	}
}
