package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/riskibarqy/cricket-fantasy/internal/domain/playerstats"
	"github.com/riskibarqy/cricket-fantasy/internal/domain/scoring"
	"github.com/riskibarqy/cricket-fantasy/internal/domain/syncstate"
)

func (h *Handler) ComputePlayerPoints(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ComputePlayerPoints")
	defer span.End()

	var req playerPointsRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	rules, err := h.resolveRules(ctx, req.Rules, req.ContestID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var (
		stats  playerstats.MatchStats
		source syncstate.Source
	)
	if req.Stats != nil {
		stats = req.Stats.toDomain()
	} else {
		stats, source, err = h.data.GetPlayerMatchStats(ctx, strings.TrimSpace(req.MatchID), strings.TrimSpace(req.PlayerID))
		if err != nil {
			h.logger.WarnContext(ctx, "load player stats failed", "match_id", req.MatchID, "player_id", req.PlayerID, "error", err)
			writeError(ctx, w, err)
			return
		}
	}

	score, err := h.scoringService.ScorePlayer(stats, rules)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	if score.Breakdown == nil {
		score.Breakdown = []scoring.LineItem{}
	}

	writeSourced(ctx, w, source, playerPointsDTO{
		MatchID:   stats.MatchID,
		PlayerID:  stats.PlayerID,
		Points:    score.Points,
		Breakdown: score.Breakdown,
	})
}

func (h *Handler) ComputeRosterPoints(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ComputeRosterPoints")
	defer span.End()

	var req rosterPointsRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	rules, err := h.resolveRules(ctx, req.Rules, req.ContestID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	matchID := strings.TrimSpace(req.MatchID)
	stats, source, err := h.data.GetMatchStats(ctx, matchID)
	if err != nil {
		h.logger.WarnContext(ctx, "load match stats failed", "match_id", matchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	points, err := h.scoringService.ScoreRoster(req.PlayerIDs, req.CaptainID, req.ViceCaptainID, stats, rules)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSourced(ctx, w, source, rosterPointsDTO{MatchID: matchID, RosterPoints: points})
}

// resolveRules prefers an explicit table, then the contest's table. Nil means
// defaults.
func (h *Handler) resolveRules(ctx context.Context, explicit *scoring.Rules, contestID string) (*scoring.Rules, error) {
	if explicit != nil {
		return explicit, nil
	}
	contestID = strings.TrimSpace(contestID)
	if contestID == "" {
		return nil, nil
	}
	item, err := h.contestService.GetContest(ctx, contestID)
	if err != nil {
		return nil, err
	}
	return &item.Rules, nil
}
