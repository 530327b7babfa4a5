package usecase

import (
	"context"

	"github.com/riskibarqy/cricket-fantasy/internal/domain/match"
	"github.com/riskibarqy/cricket-fantasy/internal/domain/player"
	"github.com/riskibarqy/cricket-fantasy/internal/domain/playerstats"
	"github.com/riskibarqy/cricket-fantasy/internal/domain/syncstate"
)

// The cache-backed reads the contest services depend on. StalenessCache
// implements all of them.

type MatchReader interface {
	GetMatch(ctx context.Context, matchID string) (match.Match, syncstate.Source, error)
}

type PlayerReader interface {
	GetPlayer(ctx context.Context, playerID string) (player.Player, syncstate.Source, error)
}

type MatchStatsReader interface {
	GetMatchStats(ctx context.Context, matchID string) ([]playerstats.MatchStats, syncstate.Source, error)
}

var (
	_ MatchReader      = (*StalenessCache)(nil)
	_ PlayerReader     = (*StalenessCache)(nil)
	_ MatchStatsReader = (*StalenessCache)(nil)
)
