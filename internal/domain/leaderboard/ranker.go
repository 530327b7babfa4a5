package leaderboard

import "sort"

// Ranker orders entries by points with a configured tie-break.
type Ranker struct {
	TieBreak TieBreak
}

func NewRanker(tieBreak TieBreak) Ranker {
	if tieBreak == "" {
		tieBreak = TieBreakStable
	}
	return Ranker{TieBreak: tieBreak}
}

// Rank sorts entries by points descending and assigns 1-based positional
// ranks with change markers. The input slice is not modified.
func (r Ranker) Rank(entries []Entry) []Standing {
	out := make([]Standing, len(entries))
	for idx, entry := range entries {
		out[idx] = Standing{Entry: entry}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Points != out[j].Points {
			return out[i].Points > out[j].Points
		}
		switch r.TieBreak {
		case TieBreakCreatedAt:
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		case TieBreakName:
			if out[i].UserName != out[j].UserName {
				return out[i].UserName < out[j].UserName
			}
			return out[i].UserID < out[j].UserID
		default:
			return false
		}
	})

	for idx := range out {
		out[idx].Rank = idx + 1
		out[idx].Change = ChangeOf(out[idx].Rank, out[idx].PreviousRank)
	}
	return out
}

// Page returns the window [offset, offset+limit) of ranked standings. A
// non-positive limit returns everything after offset.
func Page(standings []Standing, offset, limit int) []Standing {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(standings) {
		return []Standing{}
	}
	end := len(standings)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	out := make([]Standing, end-offset)
	copy(out, standings[offset:end])
	return out
}

// RankFor is the competition rank for a points value: one plus the number
// of entries with strictly more points.
func RankFor(points float64, all []Standing) int {
	rank := 1
	for _, item := range all {
		if item.Points > points {
			rank++
		}
	}
	return rank
}

// FindUser returns the first standing of a user.
func FindUser(standings []Standing, userID string) (Standing, bool) {
	for _, item := range standings {
		if item.UserID == userID {
			return item, true
		}
	}
	return Standing{}, false
}
