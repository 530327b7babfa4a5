package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/riskibarqy/cricket-fantasy/internal/domain/contest"
	"github.com/riskibarqy/cricket-fantasy/internal/domain/scoring"
)

type ContestService struct {
	contests contest.Repository
	matches  MatchReader
	now      func() time.Time
}

type UpsertContestInput struct {
	ID      string
	Name    string
	MatchID string
	Rules   *scoring.Rules
}

func NewContestService(contests contest.Repository, matches MatchReader) *ContestService {
	return &ContestService{contests: contests, matches: matches, now: time.Now}
}

func (s *ContestService) GetContest(ctx context.Context, contestID string) (contest.Contest, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ContestService.GetContest")
	defer span.End()

	contestID = strings.TrimSpace(contestID)
	if contestID == "" {
		return contest.Contest{}, fmt.Errorf("%w: contest id is required", ErrInvalidInput)
	}
	item, ok, err := s.contests.GetByID(ctx, contestID)
	if err != nil {
		return contest.Contest{}, fmt.Errorf("get contest id=%s: %w", contestID, err)
	}
	if !ok {
		return contest.Contest{}, fmt.Errorf("%w: contest id=%s", ErrNotFound, contestID)
	}
	return item, nil
}

func (s *ContestService) ListContests(ctx context.Context) ([]contest.Contest, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ContestService.ListContests")
	defer span.End()

	items, err := s.contests.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list contests: %w", err)
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].ID < items[j].ID
	})
	return items, nil
}

// UpsertContest creates or replaces a contest. The format follows the match
// and the default scoring table applies when no rules are given.
func (s *ContestService) UpsertContest(ctx context.Context, input UpsertContestInput) (contest.Contest, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ContestService.UpsertContest")
	defer span.End()

	input.ID = strings.TrimSpace(input.ID)
	input.MatchID = strings.TrimSpace(input.MatchID)
	if input.ID == "" || input.MatchID == "" {
		return contest.Contest{}, fmt.Errorf("%w: contest id and match id are required", ErrInvalidInput)
	}

	item, _, err := s.matches.GetMatch(ctx, input.MatchID)
	if err != nil {
		return contest.Contest{}, fmt.Errorf("load contest match: %w", err)
	}

	rules := scoring.DefaultRules()
	if input.Rules != nil {
		rules = *input.Rules
	}

	existing, exists, err := s.contests.GetByID(ctx, input.ID)
	if err != nil {
		return contest.Contest{}, fmt.Errorf("get contest id=%s: %w", input.ID, err)
	}
	createdAt := s.now().UTC()
	if exists {
		createdAt = existing.CreatedAt
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		name = item.Name
	}
	out := contest.Contest{
		ID:        input.ID,
		Name:      name,
		MatchID:   item.ID,
		Format:    item.Format,
		Rules:     rules,
		CreatedAt: createdAt,
	}
	if err := out.Validate(); err != nil {
		return contest.Contest{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := s.contests.Upsert(ctx, out); err != nil {
		return contest.Contest{}, fmt.Errorf("upsert contest id=%s: %w", out.ID, err)
	}
	return out, nil
}
