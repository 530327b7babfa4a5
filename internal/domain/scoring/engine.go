package scoring

import (
	"math"

	"github.com/riskibarqy/cricket-fantasy/internal/domain/fantasy"
	"github.com/riskibarqy/cricket-fantasy/internal/domain/playerstats"
)

// Points is one player's raw score split by discipline.
type Points struct {
	Batting  float64 `json:"batting"`
	Bowling  float64 `json:"bowling"`
	Fielding float64 `json:"fielding"`
	Raw      float64 `json:"raw"`
}

// ComputePlayerPoints scores one player's match line. Missing fields count as
// zero; the function never fails.
func ComputePlayerPoints(stats playerstats.MatchStats, rules Rules) Points {
	var out Points
	for _, item := range Breakdown(stats, rules) {
		switch item.Discipline {
		case DisciplineBatting:
			out.Batting += item.Points
		case DisciplineBowling:
			out.Bowling += item.Points
		case DisciplineFielding:
			out.Fielding += item.Points
		}
	}
	out.Raw = out.Batting + out.Bowling + out.Fielding
	return out
}

// ApplyMultiplier applies the captain or vice-captain multiplier and rounds
// the result to the nearest integer. Other designations are unchanged.
func ApplyMultiplier(raw float64, designation fantasy.Designation, rules Rules) float64 {
	switch designation {
	case fantasy.DesignationCaptain:
		return math.Round(raw * rules.CaptainMultiplier)
	case fantasy.DesignationViceCaptain:
		return math.Round(raw * rules.ViceCaptainMultiplier)
	default:
		return raw
	}
}
