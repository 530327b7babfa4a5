package syncstate

import (
	"fmt"
	"strings"
	"time"
)

// Kind names the cached entity family. It is the first half of a cache key.
type Kind string

const (
	KindTournament     Kind = "tournament"
	KindTournamentList Kind = "tournament_list"
	KindMatch          Kind = "match"
	KindMatchList      Kind = "match_list"
	KindLiveMatch      Kind = "live_match"
	KindPlayer         Kind = "player"
	KindSquad          Kind = "squad"
	KindMatchStats     Kind = "match_stats"
)

// Kinds lists every kind in sweep order.
var Kinds = []Kind{
	KindTournamentList,
	KindTournament,
	KindMatchList,
	KindMatch,
	KindLiveMatch,
	KindMatchStats,
	KindSquad,
	KindPlayer,
}

func ParseKind(raw string) (Kind, error) {
	value := Kind(strings.ToLower(strings.TrimSpace(raw)))
	for _, kind := range Kinds {
		if kind == value {
			return kind, nil
		}
	}
	return "", fmt.Errorf("unknown sync kind %q", raw)
}

// Source tells the caller where a cached read was answered from.
type Source string

const (
	SourceCache                 Source = "cache"
	SourceAPI                   Source = "api"
	SourceCacheBackgroundUpdate Source = "cache-then-background-refresh"
)

// Record is the persisted freshness row for one cached entity. Payload holds
// the encoded value as last fetched from the provider.
type Record struct {
	Kind         Kind
	EntityID     string
	Payload      []byte
	LastSyncedAt time.Time
}

// Key is the memory-layer key for a kind/id pair.
func Key(kind Kind, entityID string) string {
	return string(kind) + ":" + entityID
}

// Age is how long ago the record was synced.
func (r Record) Age(now time.Time) time.Duration {
	return now.Sub(r.LastSyncedAt)
}
