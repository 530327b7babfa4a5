package usecase

import (
	"math"
	"time"

	"github.com/riskibarqy/cricket-fantasy/internal/domain/match"
	"github.com/riskibarqy/cricket-fantasy/internal/domain/provider"
	"github.com/riskibarqy/cricket-fantasy/internal/domain/syncstate"
	"github.com/riskibarqy/cricket-fantasy/internal/domain/tournament"
)

// NeverStale marks data that can no longer change upstream.
const NeverStale = time.Duration(math.MaxInt64)

// StalenessPolicy holds the per-entity freshness thresholds.
type StalenessPolicy struct {
	Tournament    time.Duration
	MatchList     time.Duration
	MatchUpcoming time.Duration
	Player        time.Duration
	Squad         time.Duration

	// LiveCeiling is the shortest live refresh interval, used only when the
	// provider has confirmed quota headroom.
	LiveCeiling time.Duration
	// LiveQuotaMax is the interval used when quota is unknown or spent.
	LiveQuotaMax time.Duration
	// LiveQuotaReserve is the number of calls kept back from live polling.
	LiveQuotaReserve int
}

func DefaultStalenessPolicy() StalenessPolicy {
	return StalenessPolicy{
		Tournament:       6 * time.Hour,
		MatchList:        time.Hour,
		MatchUpcoming:    time.Hour,
		Player:           24 * time.Hour,
		Squad:            7 * 24 * time.Hour,
		LiveCeiling:      30 * time.Second,
		LiveQuotaMax:     time.Hour,
		LiveQuotaReserve: 50,
	}
}

// Normalize fills unset thresholds with defaults.
func (p StalenessPolicy) Normalize() StalenessPolicy {
	defaults := DefaultStalenessPolicy()
	if p.Tournament <= 0 {
		p.Tournament = defaults.Tournament
	}
	if p.MatchList <= 0 {
		p.MatchList = defaults.MatchList
	}
	if p.MatchUpcoming <= 0 {
		p.MatchUpcoming = defaults.MatchUpcoming
	}
	if p.Player <= 0 {
		p.Player = defaults.Player
	}
	if p.Squad <= 0 {
		p.Squad = defaults.Squad
	}
	if p.LiveCeiling <= 0 {
		p.LiveCeiling = defaults.LiveCeiling
	}
	if p.LiveQuotaMax <= 0 {
		p.LiveQuotaMax = defaults.LiveQuotaMax
	}
	if p.LiveQuotaMax < p.LiveCeiling {
		p.LiveQuotaMax = p.LiveCeiling
	}
	if p.LiveQuotaReserve < 0 {
		p.LiveQuotaReserve = 0
	}
	return p
}

func (p StalenessPolicy) TournamentThreshold(item tournament.Tournament, now time.Time) time.Duration {
	if !item.Active(now) {
		return NeverStale
	}
	return p.Tournament
}

func (p StalenessPolicy) MatchThreshold(item match.Match, quota provider.RateLimitInfo, now time.Time) time.Duration {
	switch {
	case item.Status.Final():
		return NeverStale
	case item.Status.InPlay():
		return p.LiveInterval(quota, now)
	default:
		return p.MatchUpcoming
	}
}

// LiveInterval spreads the remaining quota, minus the reserve, over the time
// left until reset. The result stays within [LiveCeiling, LiveQuotaMax].
func (p StalenessPolicy) LiveInterval(quota provider.RateLimitInfo, now time.Time) time.Duration {
	if !quota.Known || quota.Exhausted(now) {
		return p.LiveQuotaMax
	}

	budget := quota.Remaining - p.LiveQuotaReserve
	if budget < 1 {
		budget = 1
	}
	interval := quota.UntilReset(now) / time.Duration(budget)
	if interval < p.LiveCeiling {
		return p.LiveCeiling
	}
	if interval > p.LiveQuotaMax {
		return p.LiveQuotaMax
	}
	return interval
}

// SweepThreshold is the age past which a record of kind is a refresh
// candidate. Records are re-checked against their full policy before refresh.
func (p StalenessPolicy) SweepThreshold(kind syncstate.Kind) time.Duration {
	switch kind {
	case syncstate.KindTournament, syncstate.KindTournamentList:
		return p.Tournament
	case syncstate.KindMatchList:
		return p.MatchList
	case syncstate.KindMatch, syncstate.KindLiveMatch, syncstate.KindMatchStats:
		return p.LiveCeiling
	case syncstate.KindPlayer:
		return p.Player
	case syncstate.KindSquad:
		return p.Squad
	default:
		return p.LiveQuotaMax
	}
}

// IsStale reports whether data synced at lastSyncedAt has outlived threshold.
func IsStale(lastSyncedAt, now time.Time, threshold time.Duration) bool {
	if threshold == NeverStale {
		return false
	}
	if lastSyncedAt.IsZero() {
		return true
	}
	return now.Sub(lastSyncedAt) > threshold
}
