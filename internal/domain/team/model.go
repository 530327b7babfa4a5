package team

import (
	"fmt"
	"strings"
	"time"
	"unicode"
)

// Team is a real-world cricket side. ID is internal; ExternalID is the
// provider reference and may be empty for teams first seen by name only.
type Team struct {
	ID           string
	ExternalID   string
	Name         string
	ShortName    string
	ImageURL     string
	LastSyncedAt time.Time
}

func (t Team) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("team id is required")
	}
	if t.Name == "" {
		return fmt.Errorf("team name is required")
	}

	return nil
}

// NormalizeName folds a team name for lookups: lower case, letters and digits
// only, single spaces.
func NormalizeName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	space := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			space = false
			b.WriteRune(r)
		default:
			space = true
		}
	}
	return b.String()
}
