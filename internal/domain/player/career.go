package player

// CareerFormat names a format bucket in a player's career record.
type CareerFormat string

const (
	CareerT20   CareerFormat = "t20"
	CareerT20I  CareerFormat = "t20i"
	CareerODI   CareerFormat = "odi"
	CareerListA CareerFormat = "listA"
	CareerFC    CareerFormat = "fc"
	CareerTest  CareerFormat = "test"
)

// CareerFormats lists every bucket in a fixed order.
var CareerFormats = []CareerFormat{CareerT20, CareerT20I, CareerODI, CareerListA, CareerFC, CareerTest}

// CareerStats maps a format bucket to aggregate figures.
type CareerStats map[CareerFormat]FormatStats

type FormatStats struct {
	Batting *BattingCareer
	Bowling *BowlingCareer
}

// BattingCareer holds aggregate batting figures. Nil pointers mean the
// provider did not report the figure.
type BattingCareer struct {
	Matches    int
	Innings    int
	Runs       int
	NotOuts    int
	Average    *float64
	StrikeRate *float64
	Fours      *int
	Sixes      *int
	Hundreds   int
	Fifties    int
}

// BowlingCareer holds aggregate bowling figures.
type BowlingCareer struct {
	Matches    int
	Innings    int
	Wickets    int
	Economy    *float64
	Average    *float64
	StrikeRate *float64
}
