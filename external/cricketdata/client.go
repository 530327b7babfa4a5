package cricketdata

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/valyala/fasthttp"
	"golang.org/x/time/rate"

	"github.com/riskibarqy/cricket-fantasy/internal/domain/match"
	"github.com/riskibarqy/cricket-fantasy/internal/domain/player"
	"github.com/riskibarqy/cricket-fantasy/internal/domain/playerstats"
	"github.com/riskibarqy/cricket-fantasy/internal/domain/provider"
	"github.com/riskibarqy/cricket-fantasy/internal/domain/team"
	"github.com/riskibarqy/cricket-fantasy/internal/domain/tournament"
	"github.com/riskibarqy/cricket-fantasy/internal/platform/logging"
	"github.com/riskibarqy/cricket-fantasy/internal/platform/resilience"
)

const (
	defaultBaseURL     = "https://api.cricapi.com/v1"
	defaultTimeout     = 15 * time.Second
	maxSeriesPages     = 4
	maxResponseBodyLen = 6 << 20
)

var apiKeyParamRegex = regexp.MustCompile(`apikey=[^&\s"']+`)
var errCricketDataTransient = crerr.New("cricketdata transient failure")

type ClientConfig struct {
	HTTPClient        *fasthttp.Client
	BaseURL           string
	APIKey            string
	Timeout           time.Duration
	MaxRetries        int
	RequestsPerSecond float64
	Burst             int
	Logger            *logging.Logger
	CircuitBreaker    resilience.CircuitBreakerConfig
	Now               func() time.Time
}

// Client speaks to a CricketData-style REST API and normalizes its payloads.
type Client struct {
	httpClient *fasthttp.Client
	baseURL    string
	apiKey     string
	timeout    time.Duration
	maxRetries int
	logger     *logging.Logger
	breaker    *resilience.CircuitBreaker
	limiter    *rate.Limiter
	quota      *quotaTracker
	flight     resilience.SingleFlight
	now        func() time.Time
}

var _ provider.Client = (*Client)(nil)

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &fasthttp.Client{
			Name:                "cricket-fantasy",
			ReadTimeout:         timeout,
			WriteTimeout:        timeout,
			MaxConnsPerHost:     32,
			MaxIdleConnDuration: time.Minute,
		}
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}

	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		apiKey:     strings.TrimSpace(cfg.APIKey),
		timeout:    timeout,
		maxRetries: maxRetries,
		logger:     logger.Named("cricketdata"),
		breaker:    resilience.NewCircuitBreakerFromConfig(cfg.CircuitBreaker),
		limiter:    limiter,
		quota:      newQuotaTracker(now),
		now:        now,
	}
}

func (c *Client) RateLimitInfo() provider.RateLimitInfo {
	return c.quota.snapshot()
}

func (c *Client) GetTournaments(ctx context.Context) ([]tournament.Tournament, error) {
	out := make([]tournament.Tournament, 0, 64)
	offset := 0
	for page := 0; page < maxSeriesPages; page++ {
		var payload envelope[[]seriesItem]
		if err := c.doJSON(ctx, "/series", map[string]string{"offset": strconv.Itoa(offset)}, &payload); err != nil {
			return nil, fmt.Errorf("fetch series offset=%d: %w", offset, err)
		}
		for _, item := range payload.Data {
			mapped, err := mapSeries(item)
			if err != nil {
				c.logger.WarnContext(ctx, "skip malformed series", "series_id", item.ID, "error", err)
				continue
			}
			out = append(out, mapped)
		}

		offset += len(payload.Data)
		if len(payload.Data) == 0 || offset >= payload.Info.TotalRows.Int() {
			break
		}
	}
	return out, nil
}

func (c *Client) GetMatches(ctx context.Context, tournamentID string) ([]match.Payload, error) {
	if strings.TrimSpace(tournamentID) == "" {
		return nil, fmt.Errorf("tournament id is required")
	}

	var payload envelope[seriesInfo]
	if err := c.doJSON(ctx, "/series_info", map[string]string{"id": tournamentID}, &payload); err != nil {
		return nil, fmt.Errorf("fetch series info id=%s: %w", tournamentID, err)
	}

	out := make([]match.Payload, 0, len(payload.Data.MatchList))
	for _, item := range payload.Data.MatchList {
		mapped, err := mapMatch(item, tournamentID)
		if err != nil {
			c.logger.WarnContext(ctx, "skip malformed match", "tournament_id", tournamentID, "match_id", item.ID, "error", err)
			continue
		}
		out = append(out, match.BasicMatch{Match: mapped})
	}
	return out, nil
}

func (c *Client) GetMatch(ctx context.Context, matchID string) (match.Payload, error) {
	if strings.TrimSpace(matchID) == "" {
		return nil, fmt.Errorf("match id is required")
	}

	var payload envelope[matchItem]
	if err := c.doJSON(ctx, "/match_info", map[string]string{"id": matchID}, &payload); err != nil {
		return nil, fmt.Errorf("fetch match info id=%s: %w", matchID, err)
	}
	mapped, err := mapMatch(payload.Data, "")
	if err != nil {
		return nil, err
	}
	return match.BasicMatch{Match: mapped}, nil
}

// GetLiveScore reads the scorecard. In-play matches carry the crease view.
func (c *Client) GetLiveScore(ctx context.Context, matchID string) (match.Payload, error) {
	card, err := c.fetchScorecard(ctx, matchID)
	if err != nil {
		return nil, err
	}
	mapped, err := mapMatch(card.matchItem, "")
	if err != nil {
		return nil, err
	}
	if !mapped.Status.InPlay() {
		return match.BasicMatch{Match: mapped}, nil
	}
	return match.LiveMatch{Match: mapped, State: mapLiveState(card.Scorecard)}, nil
}

func (c *Client) GetPlayers(ctx context.Context, offset int) ([]player.Player, error) {
	if offset < 0 {
		offset = 0
	}
	var payload envelope[[]playerItem]
	if err := c.doJSON(ctx, "/players", map[string]string{"offset": strconv.Itoa(offset)}, &payload); err != nil {
		return nil, fmt.Errorf("fetch players offset=%d: %w", offset, err)
	}

	out := make([]player.Player, 0, len(payload.Data))
	for _, item := range payload.Data {
		mapped, err := mapPlayer(item)
		if err != nil {
			c.logger.WarnContext(ctx, "skip malformed player", "player_id", item.ID, "error", err)
			continue
		}
		out = append(out, mapped)
	}
	return out, nil
}

func (c *Client) GetPlayer(ctx context.Context, playerID string) (player.Player, error) {
	if strings.TrimSpace(playerID) == "" {
		return player.Player{}, fmt.Errorf("player id is required")
	}

	var payload envelope[playerInfo]
	if err := c.doJSON(ctx, "/players_info", map[string]string{"id": playerID}, &payload); err != nil {
		return player.Player{}, fmt.Errorf("fetch player info id=%s: %w", playerID, err)
	}
	mapped, err := mapPlayer(payload.Data.playerItem)
	if err != nil {
		return player.Player{}, err
	}
	mapped.Career = mapCareer(payload.Data.Stats)
	return mapped, nil
}

func (c *Client) GetSquad(ctx context.Context, tournamentID string) ([]team.Squad, error) {
	if strings.TrimSpace(tournamentID) == "" {
		return nil, fmt.Errorf("tournament id is required")
	}

	var payload envelope[[]squadItem]
	if err := c.doJSON(ctx, "/series_squad", map[string]string{"id": tournamentID}, &payload); err != nil {
		return nil, fmt.Errorf("fetch series squad id=%s: %w", tournamentID, err)
	}

	out := make([]team.Squad, 0, len(payload.Data))
	for _, item := range payload.Data {
		name := strings.TrimSpace(item.TeamName)
		if name == "" {
			c.logger.WarnContext(ctx, "skip squad without team name", "tournament_id", tournamentID)
			continue
		}
		squad := team.Squad{
			TournamentID: tournamentID,
			Team: team.Team{
				Name:      name,
				ShortName: strings.TrimSpace(item.ShortName),
				ImageURL:  strings.TrimSpace(item.Img),
			},
			Players: make([]player.Player, 0, len(item.Players)),
		}
		for _, row := range item.Players {
			mapped, err := mapPlayer(row)
			if err != nil {
				c.logger.WarnContext(ctx, "skip malformed squad player", "tournament_id", tournamentID, "team", name, "error", err)
				continue
			}
			squad.Players = append(squad.Players, mapped)
		}
		out = append(out, squad)
	}
	return out, nil
}

func (c *Client) GetPlayerMatchStats(ctx context.Context, matchID, playerID string) (playerstats.MatchStats, error) {
	all, err := c.GetAllPlayerMatchStats(ctx, matchID)
	if err != nil {
		return playerstats.MatchStats{}, err
	}
	for _, item := range all {
		if item.PlayerID == playerID {
			return item, nil
		}
	}
	return playerstats.MatchStats{}, fmt.Errorf("%w: player %s has no line in match %s", provider.ErrEntityNotFound, playerID, matchID)
}

func (c *Client) GetAllPlayerMatchStats(ctx context.Context, matchID string) ([]playerstats.MatchStats, error) {
	card, err := c.fetchScorecard(ctx, matchID)
	if err != nil {
		return nil, err
	}
	return mapScorecard(matchID, card.Scorecard), nil
}

func (c *Client) fetchScorecard(ctx context.Context, matchID string) (scorecardItem, error) {
	if strings.TrimSpace(matchID) == "" {
		return scorecardItem{}, fmt.Errorf("match id is required")
	}
	var payload envelope[scorecardItem]
	if err := c.doJSON(ctx, "/match_scorecard", map[string]string{"id": matchID}, &payload); err != nil {
		return scorecardItem{}, fmt.Errorf("fetch match scorecard id=%s: %w", matchID, err)
	}
	return payload.Data, nil
}

// statusFailure is the body-level refusal of a 200 response.
type statusFailure struct {
	Status string    `json:"status"`
	Reason string    `json:"reason"`
	Info   quotaInfo `json:"info"`
}

func (c *Client) doJSON(ctx context.Context, path string, query map[string]string, target any) error {
	if err := c.quota.preflight(); err != nil {
		return err
	}
	if c.breaker != nil {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "cricketdata circuit breaker rejected request", "state", c.breaker.State())
			return fmt.Errorf("%w: circuit open", provider.ErrProviderUnavailable)
		}
	}

	values := url.Values{}
	for key, value := range query {
		values.Set(key, value)
	}
	key := path + "?" + values.Encode()
	values.Set("apikey", c.apiKey)
	fullURL := c.baseURL + path + "?" + values.Encode()

	out, err, _ := c.flight.DoShared(ctx, key, c.sharedRequestTimeout(), func(ctx context.Context) (any, error) {
		raw, reqErr := c.executeRequest(ctx, fullURL)
		if c.breaker != nil {
			if reqErr != nil && crerr.Is(reqErr, errCricketDataTransient) {
				c.breaker.RecordFailure()
			} else {
				c.breaker.RecordSuccess()
			}
		}
		return raw, reqErr
	})
	if err != nil {
		return err
	}

	raw, ok := out.([]byte)
	if !ok {
		return fmt.Errorf("unexpected response payload type %T", out)
	}

	var head statusFailure
	if err := sonic.Unmarshal(raw, &head); err != nil {
		return fmt.Errorf("%w: decode envelope: %v", provider.ErrMalformedUpstreamData, err)
	}
	c.quota.observeBody(head.Info)
	if !strings.EqualFold(strings.TrimSpace(head.Status), "success") {
		return c.statusError(head)
	}

	if err := sonic.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("%w: decode %s: %v", provider.ErrMalformedUpstreamData, path, err)
	}
	return nil
}

// sharedRequestTimeout covers every attempt of one deduplicated request,
// including backoff.
func (c *Client) sharedRequestTimeout() time.Duration {
	attempts := time.Duration(c.maxRetries + 1)
	return attempts * (c.timeout + time.Duration(c.maxRetries+1)*500*time.Millisecond)
}

func (c *Client) statusError(head statusFailure) error {
	reason := strings.ToLower(strings.TrimSpace(head.Reason))
	switch {
	case strings.Contains(reason, "hits"), strings.Contains(reason, "limit"), strings.Contains(reason, "quota"):
		resetAt := c.quota.markExhausted(time.Time{})
		return provider.NewQuotaError(resetAt)
	case strings.Contains(reason, "not found"), strings.Contains(reason, "invalid id"), strings.Contains(reason, "no data"):
		return fmt.Errorf("%w: %s", provider.ErrEntityNotFound, head.Reason)
	default:
		return fmt.Errorf("%w: provider status=%q reason=%q", provider.ErrProviderUnavailable, head.Status, head.Reason)
	}
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		raw, status, err := c.send(fullURL)
		switch {
		case err != nil:
			lastErr = fmt.Errorf("%w: %w: send request: %s", provider.ErrProviderUnavailable, errCricketDataTransient, sanitizeSensitiveText(err.Error(), c.apiKey))
		case status >= 200 && status < 300:
			return raw, nil
		case status == fasthttp.StatusTooManyRequests && c.quota.snapshot().Exhausted(c.now()):
			return nil, provider.NewQuotaError(c.quota.snapshot().ResetAt)
		case isRetryableStatus(status):
			lastErr = fmt.Errorf("%w: %w: provider status=%d body=%s", provider.ErrProviderUnavailable, errCricketDataTransient, status, abbreviateBody(raw))
		default:
			return nil, fmt.Errorf("%w: provider status=%d body=%s", provider.ErrProviderUnavailable, status, abbreviateBody(raw))
		}

		if attempt == c.maxRetries {
			break
		}
		backoff := time.Duration(attempt+1) * 500 * time.Millisecond
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("%w: provider request failed", provider.ErrProviderUnavailable)
	}
	c.logger.WarnContext(ctx, "cricketdata request failed", "url", redactAPIURL(fullURL), "error", lastErr)
	return nil, lastErr
}

// send performs one GET and records quota headers. The body is copied out of
// the pooled response.
func (c *Client) send(fullURL string) ([]byte, int, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(fullURL)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/json")

	if err := c.httpClient.DoTimeout(req, resp, c.timeout); err != nil {
		return nil, 0, err
	}

	c.quota.observeHeaders(
		string(resp.Header.Peek("X-RateLimit-Limit")),
		string(resp.Header.Peek("X-RateLimit-Remaining")),
		string(resp.Header.Peek("X-RateLimit-Reset")),
	)
	status := resp.StatusCode()
	if status == fasthttp.StatusTooManyRequests {
		if wait, err := strconv.Atoi(strings.TrimSpace(string(resp.Header.Peek("Retry-After")))); err == nil && wait > 0 && c.breaker != nil {
			c.breaker.HoldOpen(c.now().Add(time.Duration(wait) * time.Second))
		}
	}

	body := resp.Body()
	if len(body) > maxResponseBodyLen {
		body = body[:maxResponseBodyLen]
	}
	raw := make([]byte, len(body))
	copy(raw, body)
	return raw, status, nil
}

func malformed(detail string) error {
	return fmt.Errorf("%w: %s", provider.ErrMalformedUpstreamData, detail)
}

func sanitizeSensitiveText(value, apiKey string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return value
	}
	if apiKey != "" {
		value = strings.ReplaceAll(value, apiKey, "REDACTED")
	}
	return apiKeyParamRegex.ReplaceAllString(value, "apikey=REDACTED")
}

func isRetryableStatus(code int) bool {
	return code == fasthttp.StatusTooManyRequests || code >= fasthttp.StatusInternalServerError
}

func redactAPIURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return sanitizeSensitiveText(rawURL, "")
	}
	query := parsed.Query()
	if query.Has("apikey") {
		query.Set("apikey", "REDACTED")
		parsed.RawQuery = query.Encode()
	}
	return parsed.String()
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= 240 {
		return text
	}
	return text[:240] + "..."
}
