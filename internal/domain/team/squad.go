package team

import (
	"time"

	"github.com/riskibarqy/cricket-fantasy/internal/domain/player"
)

// Squad is the roster metadata of one team inside a tournament.
type Squad struct {
	TournamentID string
	Team         Team
	Players      []player.Player
	LastSyncedAt time.Time
}
