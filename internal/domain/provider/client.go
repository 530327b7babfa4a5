package provider

import (
	"context"
	"time"

	"github.com/riskibarqy/cricket-fantasy/internal/domain/match"
	"github.com/riskibarqy/cricket-fantasy/internal/domain/player"
	"github.com/riskibarqy/cricket-fantasy/internal/domain/playerstats"
	"github.com/riskibarqy/cricket-fantasy/internal/domain/team"
	"github.com/riskibarqy/cricket-fantasy/internal/domain/tournament"
)

// Client is the sports-data provider contract. Implementations normalize
// the upstream vocabulary into domain types before returning.
type Client interface {
	GetTournaments(ctx context.Context) ([]tournament.Tournament, error)
	GetMatches(ctx context.Context, tournamentID string) ([]match.Payload, error)
	GetMatch(ctx context.Context, matchID string) (match.Payload, error)
	GetLiveScore(ctx context.Context, matchID string) (match.Payload, error)
	GetPlayers(ctx context.Context, offset int) ([]player.Player, error)
	GetPlayer(ctx context.Context, playerID string) (player.Player, error)
	GetSquad(ctx context.Context, tournamentID string) ([]team.Squad, error)
	GetPlayerMatchStats(ctx context.Context, matchID, playerID string) (playerstats.MatchStats, error)
	GetAllPlayerMatchStats(ctx context.Context, matchID string) ([]playerstats.MatchStats, error)
	RateLimitInfo() RateLimitInfo
}

// RateLimitInfo is the last observed quota window. Known is false until the
// provider has reported its quota at least once.
type RateLimitInfo struct {
	Limit     int
	Remaining int
	ResetAt   time.Time
	Known     bool
}

// Exhausted reports whether no calls are left in the current window.
func (r RateLimitInfo) Exhausted(now time.Time) bool {
	if !r.Known || r.Remaining > 0 {
		return false
	}
	return r.ResetAt.IsZero() || now.Before(r.ResetAt)
}

// UntilReset is the time left in the current window, never negative.
func (r RateLimitInfo) UntilReset(now time.Time) time.Duration {
	if r.ResetAt.IsZero() || !now.Before(r.ResetAt) {
		return 0
	}
	return r.ResetAt.Sub(now)
}

// NextUTCMidnight is the default reset for daily quotas.
func NextUTCMidnight(now time.Time) time.Time {
	y, m, d := now.UTC().Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, time.UTC)
}
