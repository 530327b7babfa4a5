package scoring

import "github.com/riskibarqy/cricket-fantasy/internal/domain/playerstats"

type Discipline string

const (
	DisciplineBatting  Discipline = "batting"
	DisciplineBowling  Discipline = "bowling"
	DisciplineFielding Discipline = "fielding"
)

// Stat names one scoring event in a breakdown.
type Stat string

const (
	StatRun             Stat = "run"
	StatFour            Stat = "four"
	StatSix             Stat = "six"
	StatHalfCentury     Stat = "half_century"
	StatCentury         Stat = "century"
	StatDuck            Stat = "duck"
	StatWicket          Stat = "wicket"
	StatMaiden          Stat = "maiden"
	StatThreeWicketHaul Stat = "three_wicket_haul"
	StatFiveWicketHaul  Stat = "five_wicket_haul"
	StatCatch           Stat = "catch"
	StatStumping        Stat = "stumping"
	StatRunOut          Stat = "run_out"
)

// LineItem is one contributing event. Points is Count times the rule value.
type LineItem struct {
	Discipline Discipline `json:"discipline"`
	Stat       Stat       `json:"stat"`
	Count      int        `json:"count"`
	Points     float64    `json:"points"`
}

// Breakdown lists the contributing events in a fixed order. Items that
// contribute zero points are omitted, so the sum always equals Raw.
func Breakdown(stats playerstats.MatchStats, rules Rules) []LineItem {
	bat := stats.Batting
	bowl := stats.Bowling
	field := stats.Fielding

	items := []LineItem{
		{Discipline: DisciplineBatting, Stat: StatRun, Count: bat.Runs, Points: float64(bat.Runs) * rules.Batting.Run},
		{Discipline: DisciplineBatting, Stat: StatFour, Count: bat.Fours, Points: float64(bat.Fours) * rules.Batting.Four},
		{Discipline: DisciplineBatting, Stat: StatSix, Count: bat.Sixes, Points: float64(bat.Sixes) * rules.Batting.Six},
	}
	switch {
	case bat.Runs >= 100:
		items = append(items, LineItem{Discipline: DisciplineBatting, Stat: StatCentury, Count: 1, Points: rules.Batting.Century})
	case bat.Runs >= 50:
		items = append(items, LineItem{Discipline: DisciplineBatting, Stat: StatHalfCentury, Count: 1, Points: rules.Batting.HalfCentury})
	}
	if bat.Runs == 0 && bat.Batted() {
		items = append(items, LineItem{Discipline: DisciplineBatting, Stat: StatDuck, Count: 1, Points: rules.Batting.Duck})
	}

	items = append(items,
		LineItem{Discipline: DisciplineBowling, Stat: StatWicket, Count: bowl.Wickets, Points: float64(bowl.Wickets) * rules.Bowling.Wicket},
		LineItem{Discipline: DisciplineBowling, Stat: StatMaiden, Count: bowl.Maidens, Points: float64(bowl.Maidens) * rules.Bowling.Maiden},
	)
	switch {
	case bowl.Wickets >= 5:
		items = append(items, LineItem{Discipline: DisciplineBowling, Stat: StatFiveWicketHaul, Count: 1, Points: rules.Bowling.FiveWicketHaul})
	case bowl.Wickets >= 3:
		items = append(items, LineItem{Discipline: DisciplineBowling, Stat: StatThreeWicketHaul, Count: 1, Points: rules.Bowling.ThreeWicketHaul})
	}

	items = append(items,
		LineItem{Discipline: DisciplineFielding, Stat: StatCatch, Count: field.Catches, Points: float64(field.Catches) * rules.Fielding.Catch},
		LineItem{Discipline: DisciplineFielding, Stat: StatStumping, Count: field.Stumpings, Points: float64(field.Stumpings) * rules.Fielding.Stumping},
		LineItem{Discipline: DisciplineFielding, Stat: StatRunOut, Count: field.RunOuts(), Points: float64(field.RunOuts()) * rules.Fielding.RunOut},
	)

	out := items[:0]
	for _, item := range items {
		if item.Points == 0 {
			continue
		}
		out = append(out, item)
	}
	return out
}
