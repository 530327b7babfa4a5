package fantasy

import "github.com/riskibarqy/cricket-fantasy/internal/domain/player"

// Pick is a selectable player as seen by team rules.
type Pick struct {
	PlayerID string
	TeamID   string
	Role     player.Role
	Credit   float64
}

// Roster is a user's eleven with captain designations and derived summary.
type Roster struct {
	PlayerIDs     []string
	CaptainID     string
	ViceCaptainID string
	RoleCounts    map[player.Role]int
	CreditsUsed   float64
}

// BuildRoster fills the derived summary fields from the pool.
func BuildRoster(playerIDs []string, captainID, viceCaptainID string, pool map[string]Pick) Roster {
	ids := make([]string, len(playerIDs))
	copy(ids, playerIDs)
	return Roster{
		PlayerIDs:     ids,
		CaptainID:     captainID,
		ViceCaptainID: viceCaptainID,
		RoleCounts:    ComputeRoleCounts(ids, pool),
		CreditsUsed:   CreditsUsed(ids, pool),
	}
}

// Designation returns the multiplier designation of a player in the roster.
func (r Roster) Designation(playerID string) Designation {
	switch playerID {
	case r.CaptainID:
		return DesignationCaptain
	case r.ViceCaptainID:
		return DesignationViceCaptain
	default:
		return DesignationNone
	}
}

// Designation marks captain and vice-captain picks.
type Designation string

const (
	DesignationNone        Designation = ""
	DesignationCaptain     Designation = "captain"
	DesignationViceCaptain Designation = "vice_captain"
)
