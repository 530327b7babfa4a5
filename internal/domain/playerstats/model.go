package playerstats

import (
	"fmt"
	"time"
)

// MatchStats is one player's line in one match. (MatchID, PlayerID) is the
// upsert key.
type MatchStats struct {
	MatchID      string
	PlayerID     string
	PlayerName   string
	TeamID       string
	Batting      Batting
	Bowling      Bowling
	Fielding     Fielding
	LastSyncedAt time.Time
}

type Batting struct {
	Runs       int
	Balls      int
	Fours      int
	Sixes      int
	StrikeRate float64
	Dismissal  string
}

// Batted reports whether the player faced at least one ball.
func (b Batting) Batted() bool {
	return b.Balls > 0
}

type Bowling struct {
	Overs        float64
	Maidens      int
	RunsConceded int
	Wickets      int
	Economy      float64
}

type Fielding struct {
	Catches         int
	Stumpings       int
	RunOutsDirect   int
	RunOutsAssisted int
}

// RunOuts is the total run-out involvement.
func (f Fielding) RunOuts() int {
	return f.RunOutsDirect + f.RunOutsAssisted
}

func (s MatchStats) Key() string {
	return s.MatchID + "/" + s.PlayerID
}

func (s MatchStats) Validate() error {
	if s.MatchID == "" {
		return fmt.Errorf("match id is required")
	}
	if s.PlayerID == "" {
		return fmt.Errorf("player id is required for match %s", s.MatchID)
	}

	return nil
}

// Merge folds an innings-level line into an existing match line. Providers
// report one line per innings for Test matches.
func (s MatchStats) Merge(other MatchStats) MatchStats {
	out := s
	out.Batting.Runs += other.Batting.Runs
	out.Batting.Balls += other.Batting.Balls
	out.Batting.Fours += other.Batting.Fours
	out.Batting.Sixes += other.Batting.Sixes
	if out.Batting.Balls > 0 {
		out.Batting.StrikeRate = float64(out.Batting.Runs) * 100 / float64(out.Batting.Balls)
	}
	if other.Batting.Dismissal != "" {
		out.Batting.Dismissal = other.Batting.Dismissal
	}

	out.Bowling.Overs = addOvers(out.Bowling.Overs, other.Bowling.Overs)
	out.Bowling.Maidens += other.Bowling.Maidens
	out.Bowling.RunsConceded += other.Bowling.RunsConceded
	out.Bowling.Wickets += other.Bowling.Wickets
	if balls := oversToBalls(out.Bowling.Overs); balls > 0 {
		out.Bowling.Economy = float64(out.Bowling.RunsConceded) * 6 / float64(balls)
	}

	out.Fielding.Catches += other.Fielding.Catches
	out.Fielding.Stumpings += other.Fielding.Stumpings
	out.Fielding.RunOutsDirect += other.Fielding.RunOutsDirect
	out.Fielding.RunOutsAssisted += other.Fielding.RunOutsAssisted
	if out.PlayerName == "" {
		out.PlayerName = other.PlayerName
	}
	if out.TeamID == "" {
		out.TeamID = other.TeamID
	}
	return out
}

// oversToBalls converts cricket notation (4.3 = 4 overs 3 balls) to balls.
func oversToBalls(overs float64) int {
	whole := int(overs)
	part := int((overs-float64(whole))*10 + 0.5)
	return whole*6 + part
}

func addOvers(a, b float64) float64 {
	balls := oversToBalls(a) + oversToBalls(b)
	return float64(balls/6) + float64(balls%6)/10
}
