package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/riskibarqy/cricket-fantasy/internal/domain/match"
	"github.com/riskibarqy/cricket-fantasy/internal/domain/syncstate"
	"github.com/riskibarqy/cricket-fantasy/internal/domain/team"
)

const (
	defaultResyncWorkers = 4
	defaultCatalogPages  = 4
)

type ResyncInput struct {
	TournamentID string
	SyncData     []string
	MaxWorkers   int
	// CatalogPages caps the player catalogue pages fetched by the
	// player_catalog task.
	CatalogPages int
}

type ResyncResult struct {
	TournamentID  string             `json:"tournament_id"`
	TaskCount     int                `json:"task_count"`
	SuccessCount  int                `json:"success_count"`
	FailedCount   int                `json:"failed_count"`
	SkippedCount  int                `json:"skipped_count"`
	WorkerCount   int                `json:"worker_count"`
	Tasks         []ResyncTaskResult `json:"tasks"`
	RequestedData []string           `json:"requested_data"`
}

type ResyncTaskResult struct {
	SyncData   string `json:"sync_data"`
	EntityID   string `json:"entity_id"`
	Status     string `json:"status"`
	Records    int    `json:"records"`
	DurationMs int64  `json:"duration_ms"`
	Message    string `json:"message,omitempty"`
}

const (
	resyncStatusSuccess = "success"
	resyncStatusFailed  = "failed"
	resyncStatusSkipped = "skipped"

	resyncDataTournaments = "tournaments"
	resyncDataMatches     = "matches"
	resyncDataSquads      = "squads"
	resyncDataPlayers     = "players"
	resyncDataMatchStats  = "match_stats"
	// The catalogue is provider-wide and paged, so it only runs on request.
	resyncDataPlayerCatalog = "player_catalog"
)

var resyncDataOrder = []string{
	resyncDataTournaments,
	resyncDataMatches,
	resyncDataSquads,
	resyncDataPlayers,
	resyncDataMatchStats,
	resyncDataPlayerCatalog,
}

var resyncDefaultData = resyncDataOrder[:len(resyncDataOrder)-1]

type resyncSource interface {
	Sync(ctx context.Context, kind syncstate.Kind, entityID string) (int, error)
	GetMatches(ctx context.Context, tournamentID string) ([]match.Match, syncstate.Source, error)
	GetSquads(ctx context.Context, tournamentID string) ([]team.Squad, syncstate.Source, error)
	SyncPlayerCatalog(ctx context.Context, maxPages int) (int, error)
}

// ResyncService forces a provider fetch of a tournament's data, bypassing
// freshness checks. Tasks fan out on a worker pool.
type ResyncService struct {
	source resyncSource
}

func NewResyncService(source resyncSource) *ResyncService {
	return &ResyncService{source: source}
}

func (s *ResyncService) Resync(ctx context.Context, input ResyncInput) (ResyncResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ResyncService.Resync")
	defer span.End()

	input.TournamentID = strings.TrimSpace(input.TournamentID)
	if input.TournamentID == "" {
		return ResyncResult{}, fmt.Errorf("%w: tournament id is required", ErrInvalidInput)
	}
	requested, err := normalizeResyncData(input.SyncData)
	if err != nil {
		return ResyncResult{}, err
	}
	workerCount := input.MaxWorkers
	if workerCount <= 0 {
		workerCount = defaultResyncWorkers
	}
	catalogPages := input.CatalogPages
	if catalogPages <= 0 {
		catalogPages = defaultCatalogPages
	}

	result := ResyncResult{
		TournamentID:  input.TournamentID,
		TaskCount:     len(requested),
		WorkerCount:   workerCount,
		RequestedData: requested,
	}

	results := make(chan ResyncTaskResult, len(requested))
	var successCount, failedCount, skippedCount atomic.Int32

	pool, err := ants.NewPool(workerCount)
	if err != nil {
		return ResyncResult{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var workers sync.WaitGroup
	for _, kind := range requested {
		kind := kind
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			start := time.Now()
			row := ResyncTaskResult{SyncData: kind, EntityID: input.TournamentID}
			row.Records, row.Status, row.Message = s.runResyncTask(ctx, input.TournamentID, kind, catalogPages)
			row.DurationMs = time.Since(start).Milliseconds()

			switch row.Status {
			case resyncStatusSuccess:
				successCount.Add(1)
			case resyncStatusSkipped:
				skippedCount.Add(1)
			default:
				failedCount.Add(1)
			}
			results <- row
		}); err != nil {
			workers.Done()
			return ResyncResult{}, fmt.Errorf("submit task to worker pool: %w", err)
		}
	}

	workers.Wait()
	close(results)

	for row := range results {
		result.Tasks = append(result.Tasks, row)
	}
	sort.SliceStable(result.Tasks, func(i, j int) bool {
		return resyncRank(result.Tasks[i].SyncData) < resyncRank(result.Tasks[j].SyncData)
	})

	result.SuccessCount = int(successCount.Load())
	result.FailedCount = int(failedCount.Load())
	result.SkippedCount = int(skippedCount.Load())
	return result, nil
}

func (s *ResyncService) runResyncTask(ctx context.Context, tournamentID, kind string, catalogPages int) (int, string, string) {
	var (
		count int
		err   error
	)
	switch kind {
	case resyncDataTournaments:
		count, err = s.source.Sync(ctx, syncstate.KindTournamentList, tournamentListID)
	case resyncDataMatches:
		count, err = s.source.Sync(ctx, syncstate.KindMatchList, tournamentID)
	case resyncDataSquads:
		count, err = s.source.Sync(ctx, syncstate.KindSquad, tournamentID)
	case resyncDataPlayers:
		count, err = s.resyncPlayers(ctx, tournamentID)
	case resyncDataMatchStats:
		count, err = s.resyncMatchStats(ctx, tournamentID)
	case resyncDataPlayerCatalog:
		count, err = s.source.SyncPlayerCatalog(ctx, catalogPages)
	default:
		return 0, resyncStatusSkipped, "unsupported sync_data"
	}
	if err != nil {
		return count, resyncStatusFailed, err.Error()
	}
	if count == 0 {
		return 0, resyncStatusSkipped, "provider returned no " + kind
	}
	return count, resyncStatusSuccess, ""
}

// resyncPlayers refreshes the career of every squad player of the
// tournament. Failures stop the task at the first error.
func (s *ResyncService) resyncPlayers(ctx context.Context, tournamentID string) (int, error) {
	squads, _, err := s.source.GetSquads(ctx, tournamentID)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, squad := range squads {
		for _, item := range squad.Players {
			if _, err := s.source.Sync(ctx, syncstate.KindPlayer, item.ID); err != nil {
				return count, fmt.Errorf("sync player id=%s: %w", item.ID, err)
			}
			count++
		}
	}
	return count, nil
}

// resyncMatchStats refreshes scorecards of matches that have started.
func (s *ResyncService) resyncMatchStats(ctx context.Context, tournamentID string) (int, error) {
	matches, _, err := s.source.GetMatches(ctx, tournamentID)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, item := range matches {
		if item.Status == match.StatusUpcoming || item.Status == match.StatusAbandoned {
			continue
		}
		lines, err := s.source.Sync(ctx, syncstate.KindMatchStats, item.ID)
		if err != nil {
			return count, fmt.Errorf("sync stats match id=%s: %w", item.ID, err)
		}
		count += lines
	}
	return count, nil
}

func normalizeResyncData(raw []string) ([]string, error) {
	if len(raw) == 0 {
		return append([]string(nil), resyncDefaultData...), nil
	}
	seen := make(map[string]struct{}, len(raw))
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		value := strings.ToLower(strings.TrimSpace(item))
		if value == "" {
			continue
		}
		if resyncRank(value) < 0 {
			return nil, fmt.Errorf("%w: unsupported sync_data %q", ErrInvalidInput, item)
		}
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		out = append(out, value)
	}
	if len(out) == 0 {
		return append([]string(nil), resyncDefaultData...), nil
	}
	return out, nil
}

func resyncRank(kind string) int {
	for idx, item := range resyncDataOrder {
		if item == kind {
			return idx
		}
	}
	return -1
}
