package credit

import (
	"math"

	"github.com/riskibarqy/cricket-fantasy/internal/domain/match"
	"github.com/riskibarqy/cricket-fantasy/internal/domain/player"
)

// FormatScore is the per-format contribution to a valuation. A nil score
// means the format did not qualify.
type FormatScore struct {
	Format    player.CareerFormat `json:"format"`
	Relevance float64             `json:"relevance"`
	Batting   *float64            `json:"batting,omitempty"`
	Bowling   *float64            `json:"bowling,omitempty"`
}

// Valuation explains how a credit was reached.
type Valuation struct {
	Target       match.Format  `json:"target"`
	Role         player.Role   `json:"role"`
	BattingScore float64       `json:"battingScore"`
	BowlingScore float64       `json:"bowlingScore"`
	Score        float64       `json:"score"`
	Credit       float64       `json:"credit"`
	Formats      []FormatScore `json:"formats"`
}

// ComputeCredits maps a career record to a credit in [MinCredit, MaxCredit]
// quantized to 0.5.
func ComputeCredits(role player.Role, career player.CareerStats, target match.Format) float64 {
	return Evaluate(role, career, target).Credit
}

// Evaluate is ComputeCredits with the intermediate scores attached.
func Evaluate(role player.Role, career player.CareerStats, target match.Format) Valuation {
	if _, ok := formatRelevance[target]; !ok {
		target = match.FormatT20
	}

	out := Valuation{Target: target, Role: role}
	var batSum, batWeight, bowlSum, bowlWeight float64
	for _, format := range player.CareerFormats {
		relevance := Relevance(target, format)
		stats, ok := career[format]
		if !ok || relevance <= 0 {
			continue
		}
		row := FormatScore{Format: format, Relevance: relevance}
		class := classOf(format)
		if score, ok := battingScore(stats.Batting, class); ok {
			row.Batting = &score
			batSum += score * relevance
			batWeight += relevance
		}
		if score, ok := bowlingScore(stats.Bowling, class); ok {
			row.Bowling = &score
			bowlSum += score * relevance
			bowlWeight += relevance
		}
		out.Formats = append(out.Formats, row)
	}

	out.BattingScore = defaultBattingScore
	if batWeight > 0 {
		out.BattingScore = batSum / batWeight
	}
	out.BowlingScore = defaultBowlingScore
	if bowlWeight > 0 {
		out.BowlingScore = bowlSum / bowlWeight
	}

	blend := roleBlend(role)
	out.Score = out.BattingScore*blend + out.BowlingScore*(1-blend)
	out.Credit = ScoreToCredit(out.Score)
	return out
}

// ScoreToCredit maps a 0..100 score onto the credit scale. A score of 50
// lands on the 8.75 midpoint.
func ScoreToCredit(score float64) float64 {
	value := creditMid + (score-50)*creditSlope
	value = clamp(value, MinCredit, MaxCredit)
	return math.Round(value*2) / 2
}

// battingScore returns a 0..100 score. Absent factors are dropped and the
// remaining weights renormalized.
func battingScore(stats *player.BattingCareer, class formatClass) (float64, bool) {
	if stats == nil || stats.Matches < minMatches {
		return 0, false
	}

	var sum, weight float64
	add := func(w, v float64) {
		sum += w * clamp(v, 0, 1)
		weight += w
	}

	if stats.Average != nil {
		add(battingAverageWeight, *stats.Average/battingAverageCeiling(class))
	}
	if stats.StrikeRate != nil {
		add(battingStrikeRateWeight, (*stats.StrikeRate-strikeRateFloor(class))/strikeRateSpan)
	}
	add(battingRunsWeight, 1-math.Exp(-float64(stats.Runs)/runsSaturation))
	if stats.Fours != nil && stats.Sixes != nil && stats.Innings > 0 {
		innings := float64(stats.Innings)
		rate := float64(*stats.Fours)/innings + 2*float64(*stats.Sixes)/innings
		add(battingBoundaryWeight, rate/boundaryDivisor)
	}

	return 100 * sum / weight, true
}

func bowlingScore(stats *player.BowlingCareer, class formatClass) (float64, bool) {
	if stats == nil || stats.Matches < minMatches || stats.Wickets < minWickets {
		return 0, false
	}

	var sum, weight float64
	add := func(w, v float64) {
		sum += w * clamp(v, 0, 1)
		weight += w
	}

	add(bowlingWicketsWeight, float64(stats.Wickets)/float64(stats.Matches)/wicketsPerMatch)
	if stats.Economy != nil {
		best, worst := economyRange(class)
		add(bowlingEconomyWeight, (worst-*stats.Economy)/(worst-best))
	}
	if stats.Average != nil {
		add(bowlingAverageWeight, (bowlAverageWorst-*stats.Average)/(bowlAverageWorst-bowlAverageBest))
	}
	if stats.StrikeRate != nil {
		add(bowlingStrikeRateWeight, (bowlSRWorst-*stats.StrikeRate)/(bowlSRWorst-bowlSRBest))
	}

	return 100 * sum / weight, true
}

func clamp(v, lo, hi float64) float64 {
	switch {
	case math.IsNaN(v):
		return lo
	case v < lo:
		return lo
	case v > hi:
		return hi
	default:
		return v
	}
}
