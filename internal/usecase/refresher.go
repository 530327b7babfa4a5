package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/riskibarqy/cricket-fantasy/internal/domain/provider"
	"github.com/riskibarqy/cricket-fantasy/internal/platform/logging"
)

const (
	defaultRefreshWorkers    = 4
	defaultRefreshMaxPending = 256
	defaultRefreshTimeout    = 30 * time.Second
	defaultReleaseTimeout    = 5 * time.Second
)

type RefresherConfig struct {
	Workers int
	// MaxPending caps distinct keys queued or running. Extra submissions are
	// dropped.
	MaxPending int
	// TaskTimeout bounds a single refresh.
	TaskTimeout time.Duration
	// Quota reports the provider quota. Submissions are skipped while it is
	// exhausted.
	Quota  func() provider.RateLimitInfo
	Logger *logging.Logger
	Now    func() time.Time
}

type RefreshStats struct {
	Submitted uint64
	Completed uint64
	Failed    uint64
	Dropped   uint64
	Skipped   uint64
	InFlight  int
}

// Refresher runs background refreshes on a bounded pool with at most one
// refresh in flight per key.
type Refresher struct {
	pool        *ants.Pool
	ctx         context.Context
	cancel      context.CancelFunc
	logger      *logging.Logger
	quota       func() provider.RateLimitInfo
	now         func() time.Time
	maxPending  int
	taskTimeout time.Duration

	mu       sync.Mutex
	inFlight map[string]struct{}
	wg       sync.WaitGroup

	submitted atomic.Uint64
	completed atomic.Uint64
	failed    atomic.Uint64
	dropped   atomic.Uint64
	skipped   atomic.Uint64
}

func NewRefresher(cfg RefresherConfig) (*Refresher, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	logger = logger.Named("refresher")

	workers := cfg.Workers
	if workers <= 0 {
		workers = defaultRefreshWorkers
	}
	maxPending := cfg.MaxPending
	if maxPending <= 0 {
		maxPending = defaultRefreshMaxPending
	}
	taskTimeout := cfg.TaskTimeout
	if taskTimeout <= 0 {
		taskTimeout = defaultRefreshTimeout
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	pool, err := ants.NewPool(
		workers,
		ants.WithMaxBlockingTasks(maxPending),
		ants.WithPanicHandler(func(recovered any) {
			logger.Error("background refresh panicked", "panic", fmt.Sprint(recovered))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("create refresh pool: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Refresher{
		pool:        pool,
		ctx:         ctx,
		cancel:      cancel,
		logger:      logger,
		quota:       cfg.Quota,
		now:         now,
		maxPending:  maxPending,
		taskTimeout: taskTimeout,
		inFlight:    make(map[string]struct{}),
	}, nil
}

// Submit queues task under key and returns whether it was accepted. The
// caller never waits for the task to run.
func (r *Refresher) Submit(key string, task func(ctx context.Context) error) bool {
	if r == nil || task == nil {
		return false
	}
	if r.ctx.Err() != nil {
		r.dropped.Add(1)
		return false
	}
	if r.quota != nil {
		if info := r.quota(); info.Exhausted(r.now()) {
			r.skipped.Add(1)
			return false
		}
	}

	r.mu.Lock()
	if _, ok := r.inFlight[key]; ok {
		r.mu.Unlock()
		r.dropped.Add(1)
		return false
	}
	if len(r.inFlight) >= r.maxPending {
		r.mu.Unlock()
		r.dropped.Add(1)
		r.logger.Warn("refresh queue full, dropping", "key", key, "max_pending", r.maxPending)
		return false
	}
	r.inFlight[key] = struct{}{}
	r.wg.Add(1)
	r.mu.Unlock()

	// Submit blocks while all workers are busy, so hand off from a goroutine.
	go func() {
		if err := r.pool.Submit(func() { r.run(key, task) }); err != nil {
			r.release(key)
			r.dropped.Add(1)
			if !errors.Is(err, ants.ErrPoolClosed) {
				r.logger.Warn("submit background refresh failed", "key", key, "error", err)
			}
		}
	}()
	r.submitted.Add(1)
	return true
}

func (r *Refresher) run(key string, task func(ctx context.Context) error) {
	defer r.release(key)

	ctx, cancel := context.WithTimeout(r.ctx, r.taskTimeout)
	defer cancel()

	start := r.now()
	if err := task(ctx); err != nil {
		r.failed.Add(1)
		if resetAt, ok := provider.QuotaResetAt(err); ok {
			r.logger.Warn("background refresh stopped by quota", "key", key, "reset_at", resetAt)
			return
		}
		r.logger.Warn("background refresh failed", "key", key, "error", err)
		return
	}
	r.completed.Add(1)
	r.logger.Debug("background refresh done", "key", key, "duration_ms", r.now().Sub(start).Milliseconds())
}

func (r *Refresher) release(key string) {
	r.mu.Lock()
	delete(r.inFlight, key)
	r.mu.Unlock()
	r.wg.Done()
}

// InFlight lists keys queued or running, sorted.
func (r *Refresher) InFlight() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.inFlight))
	for key := range r.inFlight {
		out = append(out, key)
	}
	sort.Strings(out)
	return out
}

func (r *Refresher) Stats() RefreshStats {
	r.mu.Lock()
	inFlight := len(r.inFlight)
	r.mu.Unlock()
	return RefreshStats{
		Submitted: r.submitted.Load(),
		Completed: r.completed.Load(),
		Failed:    r.failed.Load(),
		Dropped:   r.dropped.Load(),
		Skipped:   r.skipped.Load(),
		InFlight:  inFlight,
	}
}

// Wait blocks until no refresh is queued or running, or ctx is done.
func (r *Refresher) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown cancels running refreshes and releases the pool.
func (r *Refresher) Shutdown(ctx context.Context) error {
	r.cancel()

	timeout := defaultReleaseTimeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
	}
	if timeout <= 0 {
		r.pool.Release()
		return nil
	}
	if err := r.pool.ReleaseTimeout(timeout); err != nil {
		return fmt.Errorf("release refresh pool: %w", err)
	}
	return nil
}
