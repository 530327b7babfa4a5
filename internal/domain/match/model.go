package match

import (
	"fmt"
	"strings"
	"time"
)

// Format is the match format a contest is played against.
type Format string

const (
	FormatT20  Format = "T20"
	FormatODI  Format = "ODI"
	FormatTest Format = "Test"
)

// ParseFormat accepts the usual spellings ("t20", "T20I", "odi", "test").
func ParseFormat(raw string) (Format, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "t20", "t20i", "it20":
		return FormatT20, true
	case "odi", "lista", "list a":
		return FormatODI, true
	case "test", "fc", "first-class":
		return FormatTest, true
	default:
		return "", false
	}
}

// Status is the canonical lifecycle state of a match.
type Status string

const (
	StatusUpcoming     Status = "upcoming"
	StatusLive         Status = "live"
	StatusInningsBreak Status = "innings_break"
	StatusCompleted    Status = "completed"
	StatusAbandoned    Status = "abandoned"
)

// InPlay reports whether stats can still change.
func (s Status) InPlay() bool {
	return s == StatusLive || s == StatusInningsBreak
}

// Final reports whether the match can no longer change.
func (s Status) Final() bool {
	return s == StatusCompleted || s == StatusAbandoned
}

// TeamRef points a match at a stored team. ID is the internal team id,
// resolved when the match is written.
type TeamRef struct {
	ID         string
	ExternalID string
	Name       string
	ShortName  string
	ImageURL   string
}

// InningsScore is one innings of the score snapshot.
type InningsScore struct {
	TeamName string
	Inning   string
	Runs     int
	Wickets  int
	Overs    float64
	RunRate  float64
}

// LiveBatter is a batter currently at the crease.
type LiveBatter struct {
	PlayerID string
	Name     string
	Runs     int
	Balls    int
	Fours    int
	Sixes    int
	OnStrike bool
}

// LiveBowler is the bowler of the current over.
type LiveBowler struct {
	PlayerID string
	Name     string
	Overs    float64
	Maidens  int
	Runs     int
	Wickets  int
}

// LiveState is the ball-by-ball view attached to a live match.
type LiveState struct {
	Batsmen     []LiveBatter
	Bowler      *LiveBowler
	RecentBalls []string
}

// Match is the canonical match shape shared by every provider.
type Match struct {
	ID           string
	TournamentID string
	Name         string
	Format       Format
	Status       Status
	Venue        string
	StartTime    time.Time
	TeamA        TeamRef
	TeamB        TeamRef
	Score        []InningsScore
	Result       string
	Live         *LiveState
	LastSyncedAt time.Time
}

func (m Match) Validate() error {
	if m.ID == "" {
		return fmt.Errorf("match id is required")
	}
	if m.TeamA.Name == "" && m.TeamA.ExternalID == "" {
		return fmt.Errorf("match %s team A is required", m.ID)
	}
	if m.TeamB.Name == "" && m.TeamB.ExternalID == "" {
		return fmt.Errorf("match %s team B is required", m.ID)
	}
	switch m.Status {
	case StatusUpcoming, StatusLive, StatusInningsBreak, StatusCompleted, StatusAbandoned:
	default:
		return fmt.Errorf("match %s has unknown status %q", m.ID, m.Status)
	}

	return nil
}
