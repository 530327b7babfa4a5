package scoring

import "fmt"

// BattingRules are points per batting event.
type BattingRules struct {
	Run         float64 `json:"run"`
	Four        float64 `json:"four"`
	Six         float64 `json:"six"`
	HalfCentury float64 `json:"halfCentury"`
	Century     float64 `json:"century"`
	Duck        float64 `json:"duck"`
}

// BowlingRules are points per bowling event.
type BowlingRules struct {
	Wicket          float64 `json:"wicket"`
	Maiden          float64 `json:"maiden"`
	ThreeWicketHaul float64 `json:"threeWicketHaul"`
	FiveWicketHaul  float64 `json:"fiveWicketHaul"`
}

// FieldingRules are points per fielding event.
type FieldingRules struct {
	Catch    float64 `json:"catch"`
	Stumping float64 `json:"stumping"`
	RunOut   float64 `json:"runOut"`
}

// Rules is the scoring table of a contest. It is data, so contests can swap
// tables without code changes.
type Rules struct {
	Batting               BattingRules  `json:"batting"`
	Bowling               BowlingRules  `json:"bowling"`
	Fielding              FieldingRules `json:"fielding"`
	CaptainMultiplier     float64       `json:"captainMultiplier"`
	ViceCaptainMultiplier float64       `json:"viceCaptainMultiplier"`
}

func DefaultRules() Rules {
	return Rules{
		Batting: BattingRules{
			Run:         1,
			Four:        1,
			Six:         2,
			HalfCentury: 8,
			Century:     16,
			Duck:        -2,
		},
		Bowling: BowlingRules{
			Wicket:          25,
			Maiden:          12,
			ThreeWicketHaul: 4,
			FiveWicketHaul:  16,
		},
		Fielding: FieldingRules{
			Catch:    8,
			Stumping: 12,
			RunOut:   6,
		},
		CaptainMultiplier:     2,
		ViceCaptainMultiplier: 1.5,
	}
}

func (r Rules) Validate() error {
	if r.CaptainMultiplier <= 0 {
		return fmt.Errorf("captain multiplier must be greater than zero")
	}
	if r.ViceCaptainMultiplier <= 0 {
		return fmt.Errorf("vice-captain multiplier must be greater than zero")
	}
	return nil
}
