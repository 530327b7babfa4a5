package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/riskibarqy/cricket-fantasy/internal/domain/contest"
	"github.com/riskibarqy/cricket-fantasy/internal/domain/leaderboard"
	"github.com/riskibarqy/cricket-fantasy/internal/domain/playerstats"
	"github.com/riskibarqy/cricket-fantasy/internal/domain/scoring"
	"github.com/riskibarqy/cricket-fantasy/internal/domain/syncstate"
	"github.com/riskibarqy/cricket-fantasy/internal/platform/logging"
	"github.com/riskibarqy/cricket-fantasy/internal/platform/resilience"
)

const (
	defaultScoringEnsureInterval = 30 * time.Second
	defaultRecomputeConcurrency  = 4
)

// ScoringService scores contest entries from persisted match stats and
// stores the resulting standings.
type ScoringService struct {
	contests       contest.Repository
	entries        contest.EntryRepository
	matches        MatchReader
	stats          MatchStatsReader
	ranker         leaderboard.Ranker
	logger         *logging.Logger
	now            func() time.Time
	ensureFlight   resilience.SingleFlight
	ensureMu       sync.Mutex
	lastEnsureAt   map[string]time.Time
	ensureInterval time.Duration
}

type RecomputeResult struct {
	ContestID  string
	MatchID    string
	Entries    int
	StatsLines int
	Source     syncstate.Source
	ScoredAt   time.Time
}

// PlayerScore is a single player's points with the line items behind them.
type PlayerScore struct {
	Points    scoring.Points
	Breakdown []scoring.LineItem
}

func NewScoringService(
	contests contest.Repository,
	entries contest.EntryRepository,
	matches MatchReader,
	stats MatchStatsReader,
	ranker leaderboard.Ranker,
	logger *logging.Logger,
) *ScoringService {
	if logger == nil {
		logger = logging.Default()
	}
	return &ScoringService{
		contests:       contests,
		entries:        entries,
		matches:        matches,
		stats:          stats,
		ranker:         ranker,
		logger:         logger.Named("scoring"),
		now:            time.Now,
		lastEnsureAt:   make(map[string]time.Time),
		ensureInterval: defaultScoringEnsureInterval,
	}
}

// ScorePlayer computes points for one stat line. Nil rules mean defaults.
func (s *ScoringService) ScorePlayer(stats playerstats.MatchStats, rules *scoring.Rules) (PlayerScore, error) {
	table, err := rulesOrDefault(rules)
	if err != nil {
		return PlayerScore{}, err
	}
	return PlayerScore{
		Points:    scoring.ComputePlayerPoints(stats, table),
		Breakdown: scoring.Breakdown(stats, table),
	}, nil
}

// ScoreRoster totals a roster over the given stat lines.
func (s *ScoringService) ScoreRoster(
	playerIDs []string,
	captainID, viceCaptainID string,
	stats []playerstats.MatchStats,
	rules *scoring.Rules,
) (scoring.RosterPoints, error) {
	table, err := rulesOrDefault(rules)
	if err != nil {
		return scoring.RosterPoints{}, err
	}
	if captainID != "" && captainID == viceCaptainID {
		return scoring.RosterPoints{}, fmt.Errorf("%w: captain and vice-captain must differ", ErrInvalidInput)
	}
	return scoring.ComputeRosterPoints(playerIDs, captainID, viceCaptainID, statsByPlayer(stats), table), nil
}

// RecomputeContest scores every entry of a contest and re-ranks them.
func (s *ScoringService) RecomputeContest(ctx context.Context, contestID string) (RecomputeResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoringService.RecomputeContest")
	defer span.End()

	contestID = strings.TrimSpace(contestID)
	if contestID == "" {
		return RecomputeResult{}, fmt.Errorf("%w: contest id is required", ErrInvalidInput)
	}

	out, err, _ := s.ensureFlight.Do("scoring:recompute:"+contestID, func() (any, error) {
		runNow := s.now().UTC()
		result, err := s.recomputeOnce(ctx, contestID, runNow)
		if err != nil {
			return nil, err
		}
		s.markEnsure(contestID, runNow)
		return result, nil
	})
	if err != nil {
		return RecomputeResult{}, err
	}
	return out.(RecomputeResult), nil
}

// EnsureContestUpToDate recomputes a contest unless it was recomputed within
// the ensure interval.
func (s *ScoringService) EnsureContestUpToDate(ctx context.Context, contestID string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoringService.EnsureContestUpToDate")
	defer span.End()

	now := s.now().UTC()
	if s.shouldSkipEnsure(contestID, now) {
		return nil
	}

	key := "scoring:ensure:" + contestID
	_, err, _ := s.ensureFlight.Do(key, func() (any, error) {
		runNow := s.now().UTC()
		if s.shouldSkipEnsure(contestID, runNow) {
			return nil, nil
		}

		if _, runErr := s.recomputeOnce(ctx, contestID, runNow); runErr != nil {
			return nil, runErr
		}
		s.markEnsure(contestID, runNow)
		return nil, nil
	})
	return err
}

// RecomputeLiveContests refreshes standings of contests whose match is in
// play. It returns the number of contests recomputed.
func (s *ScoringService) RecomputeLiveContests(ctx context.Context) (int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoringService.RecomputeLiveContests")
	defer span.End()

	items, err := s.contests.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("list contests: %w", err)
	}

	var mu sync.Mutex
	recomputed := 0
	workers := pool.New().WithMaxGoroutines(defaultRecomputeConcurrency).WithContext(ctx)
	for _, item := range items {
		item := item
		workers.Go(func(ctx context.Context) error {
			fixture, _, err := s.matches.GetMatch(ctx, item.MatchID)
			if err != nil {
				s.logger.WarnContext(ctx, "load contest match failed", "contest_id", item.ID, "match_id", item.MatchID, "error", err)
				return nil
			}
			if !fixture.Status.InPlay() {
				return nil
			}
			if err := s.EnsureContestUpToDate(ctx, item.ID); err != nil {
				s.logger.WarnContext(ctx, "recompute live contest failed", "contest_id", item.ID, "error", err)
				return nil
			}
			mu.Lock()
			recomputed++
			mu.Unlock()
			return nil
		})
	}
	if err := workers.Wait(); err != nil {
		return recomputed, err
	}
	return recomputed, nil
}

func (s *ScoringService) recomputeOnce(ctx context.Context, contestID string, now time.Time) (RecomputeResult, error) {
	item, ok, err := s.contests.GetByID(ctx, contestID)
	if err != nil {
		return RecomputeResult{}, fmt.Errorf("get contest id=%s: %w", contestID, err)
	}
	if !ok {
		return RecomputeResult{}, fmt.Errorf("%w: contest id=%s", ErrNotFound, contestID)
	}

	stats, source, err := s.stats.GetMatchStats(ctx, item.MatchID)
	if err != nil {
		return RecomputeResult{}, fmt.Errorf("load match stats for contest=%s: %w", contestID, err)
	}
	byPlayer := statsByPlayer(stats)

	entries, err := s.entries.ListByContest(ctx, contestID)
	if err != nil {
		return RecomputeResult{}, fmt.Errorf("list entries for contest=%s: %w", contestID, err)
	}

	ranked := make([]leaderboard.Entry, 0, len(entries))
	byID := make(map[string]contest.Entry, len(entries))
	for _, entry := range entries {
		points := scoring.ComputeRosterPoints(
			entry.Roster.PlayerIDs,
			entry.Roster.CaptainID,
			entry.Roster.ViceCaptainID,
			byPlayer,
			item.Rules,
		)
		entry.Points = points.Total
		byID[entry.ID] = entry
		ranked = append(ranked, entry.LeaderboardEntry())
	}

	standings := s.ranker.Rank(ranked)
	updated := make([]contest.Entry, 0, len(standings))
	for _, standing := range standings {
		entry := byID[standing.EntryID]
		entry.PreviousRank = standing.PreviousRank
		entry.Rank = standing.Rank
		entry.Change = standing.Change
		entry.UpdatedAt = now
		scoredAt := now
		entry.LastScoredAt = &scoredAt
		updated = append(updated, entry)
	}

	if err := s.entries.UpdateStandings(ctx, contestID, updated); err != nil {
		return RecomputeResult{}, fmt.Errorf("update standings for contest=%s: %w", contestID, err)
	}

	s.logger.InfoContext(ctx, "contest recomputed",
		"contest_id", contestID,
		"match_id", item.MatchID,
		"entries", len(updated),
		"stats_lines", len(stats),
		"source", source,
	)
	return RecomputeResult{
		ContestID:  contestID,
		MatchID:    item.MatchID,
		Entries:    len(updated),
		StatsLines: len(stats),
		Source:     source,
		ScoredAt:   now,
	}, nil
}

func (s *ScoringService) shouldSkipEnsure(contestID string, now time.Time) bool {
	s.ensureMu.Lock()
	defer s.ensureMu.Unlock()

	last, ok := s.lastEnsureAt[contestID]
	if !ok {
		return false
	}
	return now.Sub(last) < s.ensureInterval
}

func (s *ScoringService) markEnsure(contestID string, now time.Time) {
	s.ensureMu.Lock()
	defer s.ensureMu.Unlock()
	s.lastEnsureAt[contestID] = now
}

func rulesOrDefault(rules *scoring.Rules) (scoring.Rules, error) {
	if rules == nil {
		return scoring.DefaultRules(), nil
	}
	if err := rules.Validate(); err != nil {
		return scoring.Rules{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return *rules, nil
}

func statsByPlayer(items []playerstats.MatchStats) map[string]playerstats.MatchStats {
	out := make(map[string]playerstats.MatchStats, len(items))
	for _, item := range items {
		if current, ok := out[item.PlayerID]; ok {
			out[item.PlayerID] = current.Merge(item)
			continue
		}
		out[item.PlayerID] = item
	}
	return out
}
