package leaderboard

import (
	"fmt"
	"strings"
	"time"
)

// Change is the movement of an entry since the previous ranking.
type Change string

const (
	ChangeNew  Change = "new"
	ChangeUp   Change = "up"
	ChangeDown Change = "down"
	ChangeSame Change = "same"
)

// TieBreak decides the order of entries with equal points.
type TieBreak string

const (
	// TieBreakStable keeps the input order of tied entries.
	TieBreakStable    TieBreak = "stable"
	TieBreakCreatedAt TieBreak = "created_at"
	TieBreakName      TieBreak = "name"
)

func ParseTieBreak(raw string) (TieBreak, error) {
	switch value := TieBreak(strings.ToLower(strings.TrimSpace(raw))); value {
	case "":
		return TieBreakStable, nil
	case TieBreakStable, TieBreakCreatedAt, TieBreakName:
		return value, nil
	default:
		return "", fmt.Errorf("unknown tie break %q", raw)
	}
}

// Entry is one contest entry to rank. PreviousRank is zero when the entry
// has never been ranked.
type Entry struct {
	EntryID      string
	UserID       string
	UserName     string
	Points       float64
	PreviousRank int
	CreatedAt    time.Time
}

// Standing is a ranked entry.
type Standing struct {
	Entry
	Rank   int
	Change Change
}

// ChangeOf compares a new rank with the previous one.
func ChangeOf(rank, previous int) Change {
	switch {
	case previous <= 0:
		return ChangeNew
	case rank < previous:
		return ChangeUp
	case rank > previous:
		return ChangeDown
	default:
		return ChangeSame
	}
}
