package httpapi

import (
	"net/http"
	"strings"

	"github.com/riskibarqy/cricket-fantasy/internal/usecase"
)

func (h *Handler) ListContests(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListContests")
	defer span.End()

	items, err := h.contestService.ListContests(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list contests failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	out := make([]contestDTO, 0, len(items))
	for _, item := range items {
		out = append(out, contestToDTO(item))
	}
	writeSuccess(ctx, w, http.StatusOK, out)
}

func (h *Handler) GetContest(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetContest")
	defer span.End()

	contestID := strings.TrimSpace(r.PathValue("contestID"))
	item, err := h.contestService.GetContest(ctx, contestID)
	if err != nil {
		h.logger.WarnContext(ctx, "get contest failed", "contest_id", contestID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, contestToDTO(item))
}

func (h *Handler) UpsertContest(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UpsertContest")
	defer span.End()

	contestID := strings.TrimSpace(r.PathValue("contestID"))
	var req upsertContestRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.contestService.UpsertContest(ctx, usecase.UpsertContestInput{
		ID:      contestID,
		Name:    req.Name,
		MatchID: strings.TrimSpace(req.MatchID),
		Rules:   req.Rules,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "upsert contest failed", "contest_id", contestID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, contestToDTO(item))
}

func (h *Handler) CreateContestEntry(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreateContestEntry")
	defer span.End()

	contestID := strings.TrimSpace(r.PathValue("contestID"))
	var req createEntryRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.rosterService.CreateEntry(ctx, usecase.CreateEntryInput{
		ContestID:     contestID,
		UserID:        strings.TrimSpace(req.UserID),
		UserName:      strings.TrimSpace(req.UserName),
		PlayerIDs:     req.PlayerIDs,
		CaptainID:     strings.TrimSpace(req.CaptainID),
		ViceCaptainID: strings.TrimSpace(req.ViceCaptainID),
	})
	if err != nil {
		h.logger.WarnContext(ctx, "create contest entry failed", "contest_id", contestID, "user_id", req.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, entryToDTO(item))
}

func (h *Handler) RecomputeContest(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RecomputeContest")
	defer span.End()

	contestID := strings.TrimSpace(r.PathValue("contestID"))
	result, err := h.scoringService.RecomputeContest(ctx, contestID)
	if err != nil {
		h.logger.WarnContext(ctx, "recompute contest failed", "contest_id", contestID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSourced(ctx, w, result.Source, recomputeDTO{
		ContestID:  result.ContestID,
		MatchID:    result.MatchID,
		Entries:    result.Entries,
		StatsLines: result.StatsLines,
		ScoredAt:   formatTime(result.ScoredAt),
	})
}

func (h *Handler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetLeaderboard")
	defer span.End()

	contestID := strings.TrimSpace(r.PathValue("contestID"))
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	board, err := h.leaderboardService.GetLeaderboard(ctx, usecase.LeaderboardQuery{
		ContestID: contestID,
		Offset:    offset,
		Limit:     limit,
		UserID:    strings.TrimSpace(r.URL.Query().Get("user_id")),
	})
	if err != nil {
		h.logger.WarnContext(ctx, "get leaderboard failed", "contest_id", contestID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, leaderboardToDTO(board))
}
