package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/cricket-fantasy/external/offline"
	"github.com/riskibarqy/cricket-fantasy/internal/domain/credit"
	"github.com/riskibarqy/cricket-fantasy/internal/domain/match"
)

func TestCreditService_PlayerCredit(t *testing.T) {
	t.Parallel()

	svc := NewCreditService(newSquadPlayers())
	ctx := context.Background()

	out, err := svc.PlayerCredit(ctx, "a02", "")
	require.NoError(t, err)
	if out.Valuation.Target != match.FormatT20 {
		t.Fatalf("expected T20 default target, got=%s", out.Valuation.Target)
	}
	if out.Valuation.Credit != 8.5 {
		t.Fatalf("unexpected credit without career, got=%v want=8.5", out.Valuation.Credit)
	}

	if _, err := svc.PlayerCredit(ctx, "a02", "hundred"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for unknown format, got=%v", err)
	}
	if _, err := svc.PlayerCredit(ctx, "zz99", "odi"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got=%v", err)
	}
}

func TestCreditService_PlayerCreditsSkipsMissing(t *testing.T) {
	t.Parallel()

	players := newSquadPlayers()
	svc := NewCreditService(players)

	out, err := svc.PlayerCredits(context.Background(), []string{"a01", "a08", "a01", " ", "zz99"}, match.FormatODI)
	require.NoError(t, err)
	require.Len(t, out, 2)
	if players.calls != 3 {
		t.Fatalf("expected duplicates collapsed, got calls=%d want=3", players.calls)
	}
	for playerID, item := range out {
		if item.Valuation.Credit < credit.MinCredit || item.Valuation.Credit > credit.MaxCredit {
			t.Fatalf("credit out of range for %s, got=%v", playerID, item.Valuation.Credit)
		}
	}
}

func TestCreditService_UsesCareerFromProvider(t *testing.T) {
	t.Parallel()

	h := newCacheHarness(t)
	svc := NewCreditService(h.cache)
	playerID := offline.PlayerID("t-chennai", 1)

	t20, err := svc.PlayerCredit(context.Background(), playerID, "t20")
	require.NoError(t, err)
	require.NotEmpty(t, t20.Valuation.Formats)

	again, err := svc.PlayerCredit(context.Background(), playerID, "test")
	require.NoError(t, err)
	if again.Valuation.Target != match.FormatTest {
		t.Fatalf("unexpected target, got=%s", again.Valuation.Target)
	}
	if got := h.provider.Calls("GetPlayer"); got != 1 {
		t.Fatalf("expected one provider fetch, got=%d", got)
	}
}
