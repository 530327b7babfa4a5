package httpapi

import (
	"fmt"
	"net/http"

	"github.com/riskibarqy/cricket-fantasy/internal/domain/syncstate"
	"github.com/riskibarqy/cricket-fantasy/internal/usecase"
)

func (h *Handler) RunResync(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunResync")
	defer span.End()

	var req resyncRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.resyncService.Resync(ctx, usecase.ResyncInput{
		TournamentID: req.TournamentID,
		SyncData:     req.SyncData,
		MaxWorkers:   req.MaxWorkers,
		CatalogPages: req.CatalogPages,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "resync failed", "tournament_id", req.TournamentID, "error", err)
		writeError(ctx, w, err)
		return
	}

	h.logger.InfoContext(ctx, "resync finished",
		"tournament_id", result.TournamentID,
		"success", result.SuccessCount,
		"failed", result.FailedCount,
		"skipped", result.SkippedCount,
	)
	writeSuccess(ctx, w, http.StatusOK, result)
}

func (h *Handler) RunRefreshStale(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunRefreshStale")
	defer span.End()

	var req refreshStaleRequest
	if err := decodeJSON(r, &req, true); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	kinds := make([]syncstate.Kind, 0, len(req.Kinds))
	for _, raw := range req.Kinds {
		kind, err := syncstate.ParseKind(raw)
		if err != nil {
			writeError(ctx, w, fmt.Errorf("%w: %v", usecase.ErrInvalidInput, err))
			return
		}
		kinds = append(kinds, kind)
	}

	result, err := h.data.RefreshStale(ctx, kinds, req.Limit)
	if err != nil {
		h.logger.WarnContext(ctx, "refresh stale failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusAccepted, sweepDTO{
		Candidates: result.Candidates,
		Refreshing: result.Refreshing,
		Failed:     result.Failed,
	})
}

func (h *Handler) GetCacheStats(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetCacheStats")
	defer span.End()

	stats := h.data.RefreshStats()
	inFlight := h.data.InFlight()
	if inFlight == nil {
		inFlight = []string{}
	}
	writeSuccess(ctx, w, http.StatusOK, cacheStatsDTO{
		Submitted:  stats.Submitted,
		Completed:  stats.Completed,
		Failed:     stats.Failed,
		Dropped:    stats.Dropped,
		Skipped:    stats.Skipped,
		InFlight:   inFlight,
		MemoryKeys: len(h.data.MemoryKeys()),
		RateLimit:  rateLimitToDTO(h.data.RateLimitInfo(), nowFunc()),
	})
}
