package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"

	"github.com/riskibarqy/cricket-fantasy/internal/config"
	"github.com/riskibarqy/cricket-fantasy/internal/domain/contest"
	"github.com/riskibarqy/cricket-fantasy/internal/domain/team"
	cacherepo "github.com/riskibarqy/cricket-fantasy/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/cricket-fantasy/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/cricket-fantasy/internal/infrastructure/repository/postgres"
	basecache "github.com/riskibarqy/cricket-fantasy/internal/platform/cache"
	"github.com/riskibarqy/cricket-fantasy/internal/platform/dburl"
	"github.com/riskibarqy/cricket-fantasy/internal/platform/logging"
	"github.com/riskibarqy/cricket-fantasy/internal/usecase"
)

const dbPingTimeout = 5 * time.Second

type stores struct {
	repos    usecase.Repositories
	contests contest.Repository
	entries  contest.EntryRepository
	db       *sqlx.DB
}

// openStores picks postgres when DB_URL is set and the in-memory store
// otherwise. Contest and team reads go through the TTL cache when enabled.
func openStores(cfg config.Config, logger *logging.Logger) (stores, error) {
	var (
		out   stores
		teams team.Repository
	)

	if cfg.DBURL == "" {
		logger.Warn("DB_URL is empty, using in-memory store")
		teams = memory.NewTeamRepository()
		out.repos = usecase.Repositories{
			Tournaments: memory.NewTournamentRepository(),
			Matches:     memory.NewMatchRepository(),
			Players:     memory.NewPlayerRepository(),
			PlayerStats: memory.NewPlayerStatsRepository(),
			SyncRecords: memory.NewSyncRecordRepository(),
		}
		out.contests = memory.NewContestRepository()
		out.entries = memory.NewEntryRepository()
	} else {
		db, err := openDB(cfg)
		if err != nil {
			return stores{}, err
		}
		logger.Info("connected to postgres", "db_name", dburl.DatabaseName(cfg.DBURL))

		out.db = db
		teams = postgres.NewTeamRepository(db)
		out.repos = usecase.Repositories{
			Tournaments: postgres.NewTournamentRepository(db),
			Matches:     postgres.NewMatchRepository(db),
			Players:     postgres.NewPlayerRepository(db),
			PlayerStats: postgres.NewPlayerStatsRepository(db),
			SyncRecords: postgres.NewSyncRecordRepository(db),
		}
		out.contests = postgres.NewContestRepository(db)
		out.entries = postgres.NewEntryRepository(db)
	}

	if cfg.CacheEnabled {
		store := basecache.NewStore(cfg.CacheTTL, basecache.WithCapacity(cfg.CacheCapacity))
		teams = cacherepo.NewTeamRepository(teams, store)
		out.contests = cacherepo.NewContestRepository(out.contests, store)
	}
	out.repos.Teams = teams

	return out, nil
}

func openDB(cfg config.Config) (*sqlx.DB, error) {
	dsn := dburl.Normalize(cfg.DBURL, cfg.DBDisablePreparedBinary)
	db, err := otelsqlx.Open("postgres", dsn,
		otelsql.WithDBSystem("postgresql"),
		otelsql.WithDBName(dburl.DatabaseName(cfg.DBURL)),
		otelsql.WithQueryFormatter(dburl.TraceQuery),
	)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), dbPingTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return db, nil
}

func (s stores) close(logger *logging.Logger) {
	if s.db == nil {
		return
	}
	if err := s.db.Close(); err != nil {
		logger.Warn("close database failed", "error", err)
	}
}
