package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/cricket-fantasy/internal/domain/contest"
	"github.com/riskibarqy/cricket-fantasy/internal/domain/fantasy"
	"github.com/riskibarqy/cricket-fantasy/internal/domain/match"
	"github.com/riskibarqy/cricket-fantasy/internal/platform/id"
)

// RosterService validates rosters against team rules and stores them as
// contest entries.
type RosterService struct {
	contests contest.Repository
	entries  contest.EntryRepository
	matches  MatchReader
	credits  *CreditService
	rules    fantasy.TeamRules
	ids      id.Generator
	now      func() time.Time
}

type CreateEntryInput struct {
	ContestID     string
	UserID        string
	UserName      string
	PlayerIDs     []string
	CaptainID     string
	ViceCaptainID string
}

func NewRosterService(
	contests contest.Repository,
	entries contest.EntryRepository,
	matches MatchReader,
	credits *CreditService,
	rules fantasy.TeamRules,
	ids id.Generator,
) *RosterService {
	if ids == nil {
		ids = id.NewRandomGenerator().WithPrefix("entry_")
	}
	return &RosterService{
		contests: contests,
		entries:  entries,
		matches:  matches,
		credits:  credits,
		rules:    rules,
		ids:      ids,
		now:      time.Now,
	}
}

// Rules returns the team rules rosters are checked against.
func (s *RosterService) Rules() fantasy.TeamRules {
	return s.rules
}

// BuildPool values the given players for a format and returns them as picks.
func (s *RosterService) BuildPool(ctx context.Context, playerIDs []string, format match.Format) (map[string]fantasy.Pick, error) {
	credits, err := s.credits.PlayerCredits(ctx, playerIDs, format)
	if err != nil {
		return nil, err
	}
	pool := make(map[string]fantasy.Pick, len(credits))
	for playerID, item := range credits {
		pool[playerID] = fantasy.Pick{
			PlayerID: playerID,
			TeamID:   item.Player.TeamID,
			Role:     item.Player.Role,
			Credit:   item.Valuation.Credit,
		}
	}
	return pool, nil
}

// CreateEntry validates the roster and stores the user's entry. A second
// submission by the same user replaces the roster until the match starts.
func (s *RosterService) CreateEntry(ctx context.Context, input CreateEntryInput) (contest.Entry, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RosterService.CreateEntry")
	defer span.End()

	input.ContestID = strings.TrimSpace(input.ContestID)
	input.UserID = strings.TrimSpace(input.UserID)
	if input.ContestID == "" || input.UserID == "" {
		return contest.Entry{}, fmt.Errorf("%w: contest id and user id are required", ErrInvalidInput)
	}

	item, ok, err := s.contests.GetByID(ctx, input.ContestID)
	if err != nil {
		return contest.Entry{}, fmt.Errorf("get contest id=%s: %w", input.ContestID, err)
	}
	if !ok {
		return contest.Entry{}, fmt.Errorf("%w: contest id=%s", ErrNotFound, input.ContestID)
	}

	fixture, _, err := s.matches.GetMatch(ctx, item.MatchID)
	if err != nil {
		return contest.Entry{}, fmt.Errorf("load contest match: %w", err)
	}
	if fixture.Status != match.StatusUpcoming {
		return contest.Entry{}, fmt.Errorf("%w: contest %s is locked, match is %s", ErrConflict, item.ID, fixture.Status)
	}

	pool, err := s.BuildPool(ctx, input.PlayerIDs, item.Format)
	if err != nil {
		return contest.Entry{}, err
	}
	roster := fantasy.BuildRoster(input.PlayerIDs, input.CaptainID, input.ViceCaptainID, pool)
	if err := fantasy.ValidateRoster(roster, pool, s.rules); err != nil {
		return contest.Entry{}, err
	}

	now := s.now().UTC()
	existing, exists, err := s.entries.GetByContestAndUser(ctx, item.ID, input.UserID)
	if err != nil {
		return contest.Entry{}, fmt.Errorf("get entry contest=%s user=%s: %w", item.ID, input.UserID, err)
	}

	entry := contest.Entry{
		ContestID: item.ID,
		UserID:    input.UserID,
		UserName:  strings.TrimSpace(input.UserName),
		Roster:    roster,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if exists {
		entry.ID = existing.ID
		entry.CreatedAt = existing.CreatedAt
		entry.Rank = existing.Rank
		entry.PreviousRank = existing.PreviousRank
		entry.Change = existing.Change
		if entry.UserName == "" {
			entry.UserName = existing.UserName
		}
	} else {
		entry.ID, err = s.ids.NewID()
		if err != nil {
			return contest.Entry{}, fmt.Errorf("generate entry id: %w", err)
		}
	}
	if entry.UserName == "" {
		entry.UserName = entry.UserID
	}

	if err := entry.Validate(); err != nil {
		return contest.Entry{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := s.entries.Upsert(ctx, entry); err != nil {
		return contest.Entry{}, fmt.Errorf("upsert entry id=%s: %w", entry.ID, err)
	}
	return entry, nil
}
