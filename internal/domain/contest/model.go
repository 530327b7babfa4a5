package contest

import (
	"fmt"
	"time"

	"github.com/riskibarqy/cricket-fantasy/internal/domain/fantasy"
	"github.com/riskibarqy/cricket-fantasy/internal/domain/leaderboard"
	"github.com/riskibarqy/cricket-fantasy/internal/domain/match"
	"github.com/riskibarqy/cricket-fantasy/internal/domain/scoring"
)

// Contest is a fantasy competition over one match with its own scoring table.
type Contest struct {
	ID        string
	Name      string
	MatchID   string
	Format    match.Format
	Rules     scoring.Rules
	CreatedAt time.Time
}

func (c Contest) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("contest id is required")
	}
	if c.MatchID == "" {
		return fmt.Errorf("contest %s match id is required", c.ID)
	}
	if err := c.Rules.Validate(); err != nil {
		return fmt.Errorf("contest %s rules: %w", c.ID, err)
	}
	return nil
}

// Entry is one user's roster in a contest with its latest standing.
type Entry struct {
	ID           string
	ContestID    string
	UserID       string
	UserName     string
	Roster       fantasy.Roster
	Points       float64
	Rank         int
	PreviousRank int
	Change       leaderboard.Change
	CreatedAt    time.Time
	UpdatedAt    time.Time
	LastScoredAt *time.Time
}

func (e Entry) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("entry id is required")
	}
	if e.ContestID == "" {
		return fmt.Errorf("entry %s contest id is required", e.ID)
	}
	if e.UserID == "" {
		return fmt.Errorf("entry %s user id is required", e.ID)
	}
	return nil
}

// LeaderboardEntry projects the entry onto the ranker input.
func (e Entry) LeaderboardEntry() leaderboard.Entry {
	return leaderboard.Entry{
		EntryID:      e.ID,
		UserID:       e.UserID,
		UserName:     e.UserName,
		Points:       e.Points,
		PreviousRank: e.Rank,
		CreatedAt:    e.CreatedAt,
	}
}
