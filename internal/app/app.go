package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/cricket-fantasy/internal/config"
	"github.com/riskibarqy/cricket-fantasy/internal/domain/fantasy"
	"github.com/riskibarqy/cricket-fantasy/internal/domain/leaderboard"
	"github.com/riskibarqy/cricket-fantasy/internal/interfaces/httpapi"
	"github.com/riskibarqy/cricket-fantasy/internal/interfaces/scheduler"
	idgen "github.com/riskibarqy/cricket-fantasy/internal/platform/id"
	"github.com/riskibarqy/cricket-fantasy/internal/platform/logging"
	"github.com/riskibarqy/cricket-fantasy/internal/usecase"
)

// App owns the HTTP server and the background pieces that share its
// lifetime.
type App struct {
	Server    *http.Server
	Scheduler *scheduler.Scheduler

	cache  *usecase.StalenessCache
	db     *sqlx.DB
	logger *logging.Logger
}

func New(cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.HTTPAddr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	st, err := openStores(cfg, logger)
	if err != nil {
		return nil, err
	}

	client := newProviderClient(cfg, logger)
	cache, err := usecase.NewStalenessCache(client, st.repos, usecase.StalenessCacheConfig{
		Capacity:       cfg.CacheCapacity,
		Policy:         stalenessPolicy(cfg),
		RefreshWorkers: cfg.CacheRefreshWorkers,
		RefreshQueue:   cfg.CacheRefreshQueue,
		TeamIDs:        idgen.NewRandomGenerator().WithPrefix("team_"),
		Logger:         logger,
	})
	if err != nil {
		st.close(logger)
		return nil, fmt.Errorf("build staleness cache: %w", err)
	}

	tieBreak, err := leaderboard.ParseTieBreak(cfg.LeaderboardTieBreak)
	if err != nil {
		st.close(logger)
		return nil, fmt.Errorf("parse leaderboard tie break: %w", err)
	}
	ranker := leaderboard.NewRanker(tieBreak)

	creditSvc := usecase.NewCreditService(cache)
	scoringSvc := usecase.NewScoringService(st.contests, st.entries, cache, cache, ranker, logger)
	contestSvc := usecase.NewContestService(st.contests, cache)
	rosterSvc := usecase.NewRosterService(
		st.contests,
		st.entries,
		cache,
		creditSvc,
		fantasy.DefaultTeamRules(),
		idgen.NewRandomGenerator().WithPrefix("entry_"),
	)
	leaderboardSvc := usecase.NewLeaderboardService(st.contests, st.entries, ranker, scoringSvc, logger)
	resyncSvc := usecase.NewResyncService(cache)

	handler := httpapi.NewHandler(
		cache,
		creditSvc,
		scoringSvc,
		contestSvc,
		rosterSvc,
		leaderboardSvc,
		resyncSvc,
		logger,
	)
	router := httpapi.NewRouter(handler, logger, cfg.CORSAllowedOrigins, cfg.InternalJobToken)

	out := &App{
		Server: &http.Server{
			Addr:         cfg.HTTPAddr,
			Handler:      router,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
		cache:  cache,
		db:     st.db,
		logger: logger,
	}

	if cfg.SchedulerEnabled {
		out.Scheduler, err = scheduler.New(cache, scoringSvc, scheduler.Config{
			SweepInterval:            cfg.SweepInterval,
			SweepBatchSize:           cfg.SweepBatchSize,
			ContestRecomputeInterval: cfg.ContestRecomputeInterval,
		}, logger)
		if err != nil {
			_ = cache.Shutdown(context.Background())
			st.close(logger)
			return nil, fmt.Errorf("build scheduler: %w", err)
		}
	}

	return out, nil
}

// Start launches the scheduler, if any. The HTTP server is started by the
// caller.
func (a *App) Start() error {
	if a.Scheduler == nil {
		return nil
	}
	return a.Scheduler.Start()
}

// Shutdown stops the server first so no new work reaches the cache, then
// drains background refreshes and closes the database.
func (a *App) Shutdown(ctx context.Context) error {
	var errs []error
	if err := a.Server.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("shutdown http server: %w", err))
	}
	if a.Scheduler != nil {
		if err := a.Scheduler.Shutdown(); err != nil {
			errs = append(errs, fmt.Errorf("shutdown scheduler: %w", err))
		}
	}
	if err := a.cache.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("shutdown staleness cache: %w", err))
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close database: %w", err))
		}
	}
	return errors.Join(errs...)
}

func stalenessPolicy(cfg config.Config) usecase.StalenessPolicy {
	return usecase.StalenessPolicy{
		Tournament:       cfg.StalenessTournament,
		MatchList:        cfg.StalenessMatchList,
		MatchUpcoming:    cfg.StalenessMatchUpcoming,
		Player:           cfg.StalenessPlayer,
		Squad:            cfg.StalenessSquad,
		LiveCeiling:      cfg.LiveCeiling,
		LiveQuotaMax:     cfg.LiveQuotaMax,
		LiveQuotaReserve: cfg.LiveQuotaReserve,
	}.Normalize()
}
