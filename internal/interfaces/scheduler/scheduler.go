package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/riskibarqy/cricket-fantasy/internal/domain/syncstate"
	"github.com/riskibarqy/cricket-fantasy/internal/platform/logging"
	"github.com/riskibarqy/cricket-fantasy/internal/usecase"
)

const (
	jobStaleSweep     = "stale-sweep"
	jobLiveRecompute  = "live-contest-recompute"
	defaultBatchSize  = 200
	minJobRunDeadline = 5 * time.Second
)

type StaleSweeper interface {
	RefreshStale(ctx context.Context, kinds []syncstate.Kind, limit int) (usecase.SweepResult, error)
}

type LiveRecomputer interface {
	RecomputeLiveContests(ctx context.Context) (int, error)
}

type Config struct {
	SweepInterval            time.Duration
	SweepBatchSize           int
	ContestRecomputeInterval time.Duration
	Location                 *time.Location
}

// Scheduler runs the periodic stale sweep and the live contest recompute.
// Each job is a singleton: a run that overlaps the previous one is skipped.
type Scheduler struct {
	s          gocron.Scheduler
	sweeper    StaleSweeper
	recomputer LiveRecomputer
	cfg        Config
	logger     *logging.Logger
	ctx        context.Context
	cancel     context.CancelFunc
}

func New(sweeper StaleSweeper, recomputer LiveRecomputer, cfg Config, logger *logging.Logger) (*Scheduler, error) {
	if sweeper == nil || recomputer == nil {
		return nil, fmt.Errorf("%w: scheduler jobs", usecase.ErrDependencyUnavailable)
	}
	if cfg.SweepInterval <= 0 {
		return nil, fmt.Errorf("sweep interval must be > 0")
	}
	if cfg.ContestRecomputeInterval <= 0 {
		return nil, fmt.Errorf("contest recompute interval must be > 0")
	}
	if cfg.SweepBatchSize <= 0 {
		cfg.SweepBatchSize = defaultBatchSize
	}
	if logger == nil {
		logger = logging.Default()
	}

	opts := []gocron.SchedulerOption{}
	if cfg.Location != nil {
		opts = append(opts, gocron.WithLocation(cfg.Location))
	}
	s, err := gocron.NewScheduler(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		s:          s,
		sweeper:    sweeper,
		recomputer: recomputer,
		cfg:        cfg,
		logger:     logger.Named("scheduler"),
		ctx:        ctx,
		cancel:     cancel,
	}, nil
}

func (s *Scheduler) Start() error {
	_, err := s.s.NewJob(
		gocron.DurationJob(s.cfg.SweepInterval),
		gocron.NewTask(s.runStaleSweep),
		gocron.WithName(jobStaleSweep),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		return fmt.Errorf("failed to create %s job: %w", jobStaleSweep, err)
	}

	_, err = s.s.NewJob(
		gocron.DurationJob(s.cfg.ContestRecomputeInterval),
		gocron.NewTask(s.runLiveRecompute),
		gocron.WithName(jobLiveRecompute),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("failed to create %s job: %w", jobLiveRecompute, err)
	}

	s.s.Start()
	s.logger.Info("scheduler started",
		"sweep_interval", s.cfg.SweepInterval.String(),
		"sweep_batch_size", s.cfg.SweepBatchSize,
		"contest_recompute_interval", s.cfg.ContestRecomputeInterval.String(),
	)
	return nil
}

// Shutdown cancels running jobs and waits for them to return.
func (s *Scheduler) Shutdown() error {
	s.cancel()
	return s.s.Shutdown()
}

func (s *Scheduler) runStaleSweep() {
	ctx, cancel := context.WithTimeout(s.ctx, jobDeadline(s.cfg.SweepInterval))
	defer cancel()

	result, err := s.sweeper.RefreshStale(ctx, nil, s.cfg.SweepBatchSize)
	if err != nil {
		s.logger.WarnContext(ctx, "stale sweep failed", "error", err)
		return
	}
	if result.Candidates > 0 {
		s.logger.InfoContext(ctx, "stale sweep queued refreshes",
			"candidates", result.Candidates,
			"refreshing", result.Refreshing,
			"failed", result.Failed,
		)
	}
}

func (s *Scheduler) runLiveRecompute() {
	ctx, cancel := context.WithTimeout(s.ctx, jobDeadline(s.cfg.ContestRecomputeInterval))
	defer cancel()

	count, err := s.recomputer.RecomputeLiveContests(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "live contest recompute failed", "recomputed", count, "error", err)
		return
	}
	if count > 0 {
		s.logger.InfoContext(ctx, "live contests recomputed", "recomputed", count)
	}
}

func jobDeadline(interval time.Duration) time.Duration {
	if interval < minJobRunDeadline {
		return minJobRunDeadline
	}
	return interval
}
