package cricketdata

import (
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/riskibarqy/cricket-fantasy/internal/domain/provider"
)

// quotaTracker keeps the last observed daily quota. The response body info
// block and X-RateLimit-* headers both feed it.
type quotaTracker struct {
	mu   sync.Mutex
	info provider.RateLimitInfo
	now  func() time.Time
}

func newQuotaTracker(now func() time.Time) *quotaTracker {
	return &quotaTracker{now: now}
}

func (q *quotaTracker) snapshot() provider.RateLimitInfo {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.rollLocked()
	return q.info
}

// preflight refuses a call while the quota is spent and the window is open.
func (q *quotaTracker) preflight() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.rollLocked()
	if q.info.Exhausted(q.now()) {
		return provider.NewQuotaError(q.info.ResetAt)
	}
	return nil
}

func (q *quotaTracker) observeBody(info quotaInfo) {
	limit := info.HitsLimit.Int()
	if limit <= 0 {
		return
	}
	q.mu.Lock()
	defer q.mu.Unlock()

	remaining := limit - info.HitsToday.Int()
	if remaining < 0 {
		remaining = 0
	}
	q.info.Limit = limit
	q.info.Remaining = remaining
	q.info.Known = true
	q.ensureResetLocked()
}

func (q *quotaTracker) observeHeaders(limitRaw, remainingRaw, resetRaw string) {
	limit, limitErr := strconv.Atoi(strings.TrimSpace(limitRaw))
	remaining, remainingErr := strconv.Atoi(strings.TrimSpace(remainingRaw))
	if limitErr != nil && remainingErr != nil {
		return
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	if limitErr == nil && limit > 0 {
		q.info.Limit = limit
	}
	if remainingErr == nil && remaining >= 0 {
		q.info.Remaining = remaining
		q.info.Known = true
	}
	if reset, ok := parseResetHeader(resetRaw, q.now()); ok {
		q.info.ResetAt = reset
	}
	q.ensureResetLocked()
}

// markExhausted records a provider refusal for quota reasons.
func (q *quotaTracker) markExhausted(resetAt time.Time) time.Time {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.info.Remaining = 0
	q.info.Known = true
	if !resetAt.IsZero() {
		q.info.ResetAt = resetAt
	}
	q.ensureResetLocked()
	return q.info.ResetAt
}

func (q *quotaTracker) ensureResetLocked() {
	now := q.now()
	if q.info.ResetAt.IsZero() || !q.info.ResetAt.After(now) {
		q.info.ResetAt = provider.NextUTCMidnight(now)
	}
}

// rollLocked restores the budget once the window has passed.
func (q *quotaTracker) rollLocked() {
	if !q.info.Known || q.info.ResetAt.IsZero() {
		return
	}
	now := q.now()
	if now.Before(q.info.ResetAt) {
		return
	}
	q.info.Remaining = q.info.Limit
	q.info.ResetAt = provider.NextUTCMidnight(now)
}

// parseResetHeader accepts epoch seconds, a delta in seconds, or RFC1123.
func parseResetHeader(raw string, now time.Time) (time.Time, bool) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return time.Time{}, false
	}
	if n, err := strconv.ParseInt(value, 10, 64); err == nil {
		if n > 1_000_000_000 {
			return time.Unix(n, 0).UTC(), true
		}
		if n >= 0 {
			return now.Add(time.Duration(n) * time.Second), true
		}
		return time.Time{}, false
	}
	if parsed, err := time.Parse(time.RFC1123, value); err == nil {
		return parsed.UTC(), true
	}
	return time.Time{}, false
}
