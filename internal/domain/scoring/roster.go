package scoring

import (
	"sort"

	"github.com/riskibarqy/cricket-fantasy/internal/domain/fantasy"
	"github.com/riskibarqy/cricket-fantasy/internal/domain/playerstats"
)

// PlayerPoints is one roster slot after multipliers.
type PlayerPoints struct {
	PlayerID    string              `json:"playerId"`
	Designation fantasy.Designation `json:"designation,omitempty"`
	Raw         float64             `json:"raw"`
	Final       float64             `json:"final"`
	HasStats    bool                `json:"hasStats"`
}

// RosterPoints is the roster total and its per-player lines, ordered by
// player id.
type RosterPoints struct {
	Total   float64        `json:"total"`
	Players []PlayerPoints `json:"players"`
}

// ComputeRosterPoints sums final points over the roster. Players without
// stats contribute zero. The result does not depend on input order.
func ComputeRosterPoints(
	playerIDs []string,
	captainID, viceCaptainID string,
	statsByPlayer map[string]playerstats.MatchStats,
	rules Rules,
) RosterPoints {
	roster := fantasy.Roster{CaptainID: captainID, ViceCaptainID: viceCaptainID}

	ids := make([]string, len(playerIDs))
	copy(ids, playerIDs)
	sort.Strings(ids)

	out := RosterPoints{Players: make([]PlayerPoints, 0, len(ids))}
	for _, playerID := range ids {
		row := PlayerPoints{
			PlayerID:    playerID,
			Designation: roster.Designation(playerID),
		}
		if stats, ok := statsByPlayer[playerID]; ok {
			row.HasStats = true
			row.Raw = ComputePlayerPoints(stats, rules).Raw
			row.Final = ApplyMultiplier(row.Raw, row.Designation, rules)
		}
		out.Total += row.Final
		out.Players = append(out.Players, row)
	}
	return out
}
