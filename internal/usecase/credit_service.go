package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/sourcegraph/conc/pool"

	"github.com/riskibarqy/cricket-fantasy/internal/domain/credit"
	"github.com/riskibarqy/cricket-fantasy/internal/domain/match"
	"github.com/riskibarqy/cricket-fantasy/internal/domain/player"
	"github.com/riskibarqy/cricket-fantasy/internal/domain/syncstate"
)

const defaultCreditConcurrency = 4

type CreditService struct {
	players     PlayerReader
	concurrency int
}

type PlayerCredit struct {
	Player    player.Player
	Valuation credit.Valuation
	Source    syncstate.Source
}

func NewCreditService(players PlayerReader) *CreditService {
	return &CreditService{players: players, concurrency: defaultCreditConcurrency}
}

// PlayerCredit values a player for a contest format. An empty format means
// T20.
func (s *CreditService) PlayerCredit(ctx context.Context, playerID, format string) (PlayerCredit, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CreditService.PlayerCredit")
	defer span.End()

	target, err := parseTargetFormat(format)
	if err != nil {
		return PlayerCredit{}, err
	}

	item, source, err := s.players.GetPlayer(ctx, playerID)
	if err != nil {
		return PlayerCredit{}, err
	}
	return PlayerCredit{
		Player:    item,
		Valuation: credit.Evaluate(item.Role, item.Career, target),
		Source:    source,
	}, nil
}

// PlayerCredits values many players concurrently. Players that cannot be
// found are left out of the result.
func (s *CreditService) PlayerCredits(ctx context.Context, playerIDs []string, target match.Format) (map[string]PlayerCredit, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CreditService.PlayerCredits")
	defer span.End()

	var mu sync.Mutex
	out := make(map[string]PlayerCredit, len(playerIDs))
	workers := pool.New().WithMaxGoroutines(s.concurrency).WithContext(ctx).WithCancelOnError()
	for _, playerID := range uniqueStrings(playerIDs) {
		playerID := playerID
		workers.Go(func(ctx context.Context) error {
			item, source, err := s.players.GetPlayer(ctx, playerID)
			if err != nil {
				if errors.Is(err, ErrNotFound) {
					return nil
				}
				return fmt.Errorf("load player id=%s: %w", playerID, err)
			}
			valuation := credit.Evaluate(item.Role, item.Career, target)
			mu.Lock()
			out[playerID] = PlayerCredit{Player: item, Valuation: valuation, Source: source}
			mu.Unlock()
			return nil
		})
	}
	if err := workers.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func parseTargetFormat(raw string) (match.Format, error) {
	if strings.TrimSpace(raw) == "" {
		return match.FormatT20, nil
	}
	format, ok := match.ParseFormat(raw)
	if !ok {
		return "", fmt.Errorf("%w: unknown format %q", ErrInvalidInput, raw)
	}
	return format, nil
}

func uniqueStrings(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, value := range values {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		out = append(out, value)
	}
	return out
}
