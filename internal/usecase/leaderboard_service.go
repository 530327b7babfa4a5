package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/riskibarqy/cricket-fantasy/internal/domain/contest"
	"github.com/riskibarqy/cricket-fantasy/internal/domain/leaderboard"
	"github.com/riskibarqy/cricket-fantasy/internal/platform/logging"
)

const (
	defaultLeaderboardLimit = 50
	maxLeaderboardLimit     = 200
)

type contestEnsurer interface {
	EnsureContestUpToDate(ctx context.Context, contestID string) error
}

type LeaderboardService struct {
	contests contest.Repository
	entries  contest.EntryRepository
	ranker   leaderboard.Ranker
	ensurer  contestEnsurer
	logger   *logging.Logger
}

type LeaderboardQuery struct {
	ContestID string
	Offset    int
	Limit     int
	UserID    string
}

type Leaderboard struct {
	ContestID        string
	Total            int
	Offset           int
	Limit            int
	Entries          []leaderboard.Standing
	CurrentUserEntry *leaderboard.Standing
}

func NewLeaderboardService(
	contests contest.Repository,
	entries contest.EntryRepository,
	ranker leaderboard.Ranker,
	ensurer contestEnsurer,
	logger *logging.Logger,
) *LeaderboardService {
	if logger == nil {
		logger = logging.Default()
	}
	return &LeaderboardService{
		contests: contests,
		entries:  entries,
		ranker:   ranker,
		ensurer:  ensurer,
		logger:   logger.Named("leaderboard"),
	}
}

// GetLeaderboard returns a page of standings and, when UserID is set, that
// user's own standing. Standings come from the last recompute; entries never
// scored are ranked on the fly.
func (s *LeaderboardService) GetLeaderboard(ctx context.Context, query LeaderboardQuery) (Leaderboard, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeaderboardService.GetLeaderboard")
	defer span.End()

	query.ContestID = strings.TrimSpace(query.ContestID)
	if query.ContestID == "" {
		return Leaderboard{}, fmt.Errorf("%w: contest id is required", ErrInvalidInput)
	}
	if query.Offset < 0 {
		return Leaderboard{}, fmt.Errorf("%w: offset must be >= 0", ErrInvalidInput)
	}
	switch {
	case query.Limit <= 0:
		query.Limit = defaultLeaderboardLimit
	case query.Limit > maxLeaderboardLimit:
		query.Limit = maxLeaderboardLimit
	}

	if _, ok, err := s.contests.GetByID(ctx, query.ContestID); err != nil {
		return Leaderboard{}, fmt.Errorf("get contest id=%s: %w", query.ContestID, err)
	} else if !ok {
		return Leaderboard{}, fmt.Errorf("%w: contest id=%s", ErrNotFound, query.ContestID)
	}

	if s.ensurer != nil {
		if err := s.ensurer.EnsureContestUpToDate(ctx, query.ContestID); err != nil {
			s.logger.WarnContext(ctx, "serve last standings, recompute failed", "contest_id", query.ContestID, "error", err)
		}
	}

	entries, err := s.entries.ListByContest(ctx, query.ContestID)
	if err != nil {
		return Leaderboard{}, fmt.Errorf("list entries for contest=%s: %w", query.ContestID, err)
	}
	standings := s.standings(entries)

	out := Leaderboard{
		ContestID: query.ContestID,
		Total:     len(standings),
		Offset:    query.Offset,
		Limit:     query.Limit,
		Entries:   leaderboard.Page(standings, query.Offset, query.Limit),
	}
	if userID := strings.TrimSpace(query.UserID); userID != "" {
		if own, ok := leaderboard.FindUser(standings, userID); ok {
			// Tied users share the better rank: one plus the count strictly ahead.
			own.Rank = leaderboard.RankFor(own.Points, standings)
			out.CurrentUserEntry = &own
		}
	}
	return out, nil
}

func (s *LeaderboardService) standings(entries []contest.Entry) []leaderboard.Standing {
	scored := true
	for _, entry := range entries {
		if entry.Rank <= 0 {
			scored = false
			break
		}
	}

	if !scored {
		items := make([]leaderboard.Entry, 0, len(entries))
		for _, entry := range entries {
			items = append(items, entry.LeaderboardEntry())
		}
		return s.ranker.Rank(items)
	}

	out := make([]leaderboard.Standing, 0, len(entries))
	for _, entry := range entries {
		row := entry.LeaderboardEntry()
		row.PreviousRank = entry.PreviousRank
		change := entry.Change
		if change == "" {
			change = leaderboard.ChangeOf(entry.Rank, entry.PreviousRank)
		}
		out = append(out, leaderboard.Standing{Entry: row, Rank: entry.Rank, Change: change})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Rank < out[j].Rank
	})
	return out
}
