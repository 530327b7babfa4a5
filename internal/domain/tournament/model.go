package tournament

import (
	"fmt"
	"time"

	"github.com/riskibarqy/cricket-fantasy/internal/domain/match"
)

// Tournament is a series or league season as reported by the data provider.
type Tournament struct {
	ID           string
	Name         string
	ShortName    string
	StartDate    time.Time
	EndDate      time.Time
	Format       match.Format
	TeamCount    int
	MatchCount   int
	LastSyncedAt time.Time
}

// Active reports whether the tournament still produces fresh data at now.
// A tournament without an end date is treated as active. The end date is a
// calendar day, so the tournament stays active until that day is over.
func (t Tournament) Active(now time.Time) bool {
	if t.EndDate.IsZero() {
		return true
	}
	return now.Before(t.EndDate.Add(24 * time.Hour))
}

func (t Tournament) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("tournament id is required")
	}
	if t.Name == "" {
		return fmt.Errorf("tournament name is required")
	}

	return nil
}
