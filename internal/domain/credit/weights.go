package credit

import (
	"github.com/riskibarqy/cricket-fantasy/internal/domain/match"
	"github.com/riskibarqy/cricket-fantasy/internal/domain/player"
)

// formatRelevance weights each career format against the contest format.
var formatRelevance = map[match.Format]map[player.CareerFormat]float64{
	match.FormatT20: {
		player.CareerT20:   1.0,
		player.CareerT20I:  1.0,
		player.CareerODI:   0.5,
		player.CareerListA: 0.4,
		player.CareerFC:    0.15,
		player.CareerTest:  0.1,
	},
	match.FormatODI: {
		player.CareerT20:   0.5,
		player.CareerT20I:  0.6,
		player.CareerODI:   1.0,
		player.CareerListA: 0.9,
		player.CareerFC:    0.4,
		player.CareerTest:  0.35,
	},
	match.FormatTest: {
		player.CareerT20:   0.1,
		player.CareerT20I:  0.15,
		player.CareerODI:   0.4,
		player.CareerListA: 0.35,
		player.CareerFC:    1.0,
		player.CareerTest:  1.0,
	},
}

// Relevance returns the weight of a career format for a target format.
func Relevance(target match.Format, format player.CareerFormat) float64 {
	return formatRelevance[target][format]
}

const (
	battingAverageWeight    = 0.35
	battingStrikeRateWeight = 0.25
	battingRunsWeight       = 0.20
	battingBoundaryWeight   = 0.20

	bowlingWicketsWeight    = 0.35
	bowlingEconomyWeight    = 0.25
	bowlingAverageWeight    = 0.20
	bowlingStrikeRateWeight = 0.20

	minMatches       = 3
	minWickets       = 5
	runsSaturation   = 3000.0
	strikeRateSpan   = 60.0
	wicketsPerMatch  = 2.0
	boundaryDivisor  = 4.0
	bowlAverageBest  = 15.0
	bowlAverageWorst = 45.0
	bowlSRBest       = 12.0
	bowlSRWorst      = 40.0

	defaultBattingScore = 50.0
	defaultBowlingScore = 30.0

	creditMid   = 8.75
	creditSlope = 2.75 / 50
	MinCredit   = 6.0
	MaxCredit   = 11.5
)

// formatClass groups career formats that share normalization constants.
type formatClass int

const (
	classShort formatClass = iota
	classOneDay
	classLong
)

func classOf(format player.CareerFormat) formatClass {
	switch format {
	case player.CareerODI, player.CareerListA:
		return classOneDay
	case player.CareerFC, player.CareerTest:
		return classLong
	default:
		return classShort
	}
}

func battingAverageCeiling(class formatClass) float64 {
	if class == classLong {
		return 55
	}
	return 50
}

func strikeRateFloor(class formatClass) float64 {
	switch class {
	case classOneDay:
		return 70
	case classLong:
		return 40
	default:
		return 100
	}
}

// economyRange returns the best and worst economy for a format class.
func economyRange(class formatClass) (float64, float64) {
	switch class {
	case classOneDay:
		return 4.5, 6.5
	case classLong:
		return 2.5, 4.0
	default:
		return 6, 10
	}
}

// roleBlend is the batting share of the combined score.
func roleBlend(role player.Role) float64 {
	switch role {
	case player.RoleBatsman, player.RoleWicketKeeper:
		return 0.9
	case player.RoleBowler:
		return 0.2
	case player.RoleAllRounder:
		return 0.5
	default:
		return 0.6
	}
}
