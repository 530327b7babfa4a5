package offline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/riskibarqy/cricket-fantasy/internal/domain/match"
	"github.com/riskibarqy/cricket-fantasy/internal/domain/player"
	"github.com/riskibarqy/cricket-fantasy/internal/domain/playerstats"
	"github.com/riskibarqy/cricket-fantasy/internal/domain/provider"
	"github.com/riskibarqy/cricket-fantasy/internal/domain/team"
	"github.com/riskibarqy/cricket-fantasy/internal/domain/tournament"
)

const playersPageSize = 25

type Config struct {
	// DailyLimit caps calls per UTC day. Zero leaves the quota unreported.
	DailyLimit int
	Latency    time.Duration
	Now        func() time.Time
}

// Client is a deterministic provider backed by seeded data. It counts calls
// against a daily quota and can be told to fail.
type Client struct {
	mu       sync.Mutex
	data     *dataset
	now      func() time.Time
	latency  time.Duration
	limit    int
	used     int
	resetAt  time.Time
	failures []error
	calls    map[string]int
}

var _ provider.Client = (*Client)(nil)

func NewClient(cfg Config) *Client {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	current := now()
	return &Client{
		data:    buildDataset(current),
		now:     now,
		latency: cfg.Latency,
		limit:   cfg.DailyLimit,
		resetAt: provider.NextUTCMidnight(current),
		calls:   make(map[string]int),
	}
}

// FailNext queues errors returned by the next calls, one per call.
func (c *Client) FailNext(errs ...error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failures = append(c.failures, errs...)
}

// Calls reports how many times an operation reached the provider.
func (c *Client) Calls(operation string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[operation]
}

func (c *Client) TotalCalls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	total := 0
	for _, n := range c.calls {
		total += n
	}
	return total
}

// UpdateMatch mutates a seeded match, e.g. to move it through its lifecycle.
func (c *Client) UpdateMatch(matchID string, fn func(*match.Match)) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	item, ok := c.data.matches[matchID]
	if !ok {
		return false
	}
	fn(&item)
	c.data.matches[matchID] = item
	return true
}

// SetMatchStats replaces the scorecard of a match.
func (c *Client) SetMatchStats(matchID string, stats []playerstats.MatchStats) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data.stats[matchID] = append([]playerstats.MatchStats(nil), stats...)
}

func (c *Client) RateLimitInfo() provider.RateLimitInfo {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rollLocked()
	if c.limit <= 0 {
		return provider.RateLimitInfo{}
	}
	remaining := c.limit - c.used
	if remaining < 0 {
		remaining = 0
	}
	return provider.RateLimitInfo{Limit: c.limit, Remaining: remaining, ResetAt: c.resetAt, Known: true}
}

func (c *Client) GetTournaments(ctx context.Context) ([]tournament.Tournament, error) {
	if err := c.call(ctx, "GetTournaments"); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]tournament.Tournament(nil), c.data.tournaments...), nil
}

func (c *Client) GetMatches(ctx context.Context, tournamentID string) ([]match.Payload, error) {
	if err := c.call(ctx, "GetMatches"); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.hasTournamentLocked(tournamentID) {
		return nil, fmt.Errorf("%w: tournament %s", provider.ErrEntityNotFound, tournamentID)
	}
	out := make([]match.Payload, 0, len(c.data.matchOrder))
	for _, id := range c.data.matchOrder {
		item := c.data.matches[id]
		if item.TournamentID != tournamentID {
			continue
		}
		out = append(out, match.BasicMatch{Match: item})
	}
	return out, nil
}

func (c *Client) GetMatch(ctx context.Context, matchID string) (match.Payload, error) {
	if err := c.call(ctx, "GetMatch"); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	item, ok := c.data.matches[matchID]
	if !ok {
		return nil, fmt.Errorf("%w: match %s", provider.ErrEntityNotFound, matchID)
	}
	return match.BasicMatch{Match: item}, nil
}

func (c *Client) GetLiveScore(ctx context.Context, matchID string) (match.Payload, error) {
	if err := c.call(ctx, "GetLiveScore"); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	item, ok := c.data.matches[matchID]
	if !ok {
		return nil, fmt.Errorf("%w: match %s", provider.ErrEntityNotFound, matchID)
	}
	if !item.Status.InPlay() {
		return match.BasicMatch{Match: item}, nil
	}
	return match.LiveMatch{Match: item, State: c.data.live[matchID]}, nil
}

func (c *Client) GetPlayers(ctx context.Context, offset int) ([]player.Player, error) {
	if err := c.call(ctx, "GetPlayers"); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if offset < 0 {
		offset = 0
	}
	if offset >= len(c.data.playerOrder) {
		return []player.Player{}, nil
	}
	end := offset + playersPageSize
	if end > len(c.data.playerOrder) {
		end = len(c.data.playerOrder)
	}
	out := make([]player.Player, 0, end-offset)
	for _, id := range c.data.playerOrder[offset:end] {
		item := c.data.players[id]
		item.Career = nil
		out = append(out, item)
	}
	return out, nil
}

func (c *Client) GetPlayer(ctx context.Context, playerID string) (player.Player, error) {
	if err := c.call(ctx, "GetPlayer"); err != nil {
		return player.Player{}, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	item, ok := c.data.players[playerID]
	if !ok {
		return player.Player{}, fmt.Errorf("%w: player %s", provider.ErrEntityNotFound, playerID)
	}
	return item, nil
}

func (c *Client) GetSquad(ctx context.Context, tournamentID string) ([]team.Squad, error) {
	if err := c.call(ctx, "GetSquad"); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	squads, ok := c.data.squads[tournamentID]
	if !ok {
		return nil, fmt.Errorf("%w: squads for %s", provider.ErrEntityNotFound, tournamentID)
	}
	out := make([]team.Squad, 0, len(squads))
	for _, squad := range squads {
		squad.Players = append([]player.Player(nil), squad.Players...)
		out = append(out, squad)
	}
	return out, nil
}

func (c *Client) GetPlayerMatchStats(ctx context.Context, matchID, playerID string) (playerstats.MatchStats, error) {
	if err := c.call(ctx, "GetPlayerMatchStats"); err != nil {
		return playerstats.MatchStats{}, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, item := range c.data.stats[matchID] {
		if item.PlayerID == playerID {
			return item, nil
		}
	}
	return playerstats.MatchStats{}, fmt.Errorf("%w: stats for player %s in match %s", provider.ErrEntityNotFound, playerID, matchID)
}

func (c *Client) GetAllPlayerMatchStats(ctx context.Context, matchID string) ([]playerstats.MatchStats, error) {
	if err := c.call(ctx, "GetAllPlayerMatchStats"); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.data.matches[matchID]; !ok {
		return nil, fmt.Errorf("%w: match %s", provider.ErrEntityNotFound, matchID)
	}
	return append([]playerstats.MatchStats{}, c.data.stats[matchID]...), nil
}

// call charges one unit of quota, then applies injected failures and latency.
func (c *Client) call(ctx context.Context, operation string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	c.rollLocked()
	if c.limit > 0 && c.used >= c.limit {
		resetAt := c.resetAt
		c.mu.Unlock()
		return provider.NewQuotaError(resetAt)
	}
	c.used++
	c.calls[operation]++
	var injected error
	if len(c.failures) > 0 {
		injected = c.failures[0]
		c.failures = c.failures[1:]
	}
	latency := c.latency
	c.mu.Unlock()

	if latency > 0 {
		timer := time.NewTimer(latency)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return injected
}

func (c *Client) rollLocked() {
	now := c.now()
	if now.Before(c.resetAt) {
		return
	}
	c.used = 0
	c.resetAt = provider.NextUTCMidnight(now)
}

func (c *Client) hasTournamentLocked(id string) bool {
	for _, item := range c.data.tournaments {
		if item.ID == id {
			return true
		}
	}
	return false
}
