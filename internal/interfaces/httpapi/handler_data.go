package httpapi

import (
	"net/http"
	"strings"
)

func (h *Handler) ListTournaments(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListTournaments")
	defer span.End()

	items, source, err := h.data.GetTournaments(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "list tournaments failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	out := make([]tournamentDTO, 0, len(items))
	for _, item := range items {
		out = append(out, tournamentToDTO(item))
	}
	writeSourced(ctx, w, source, out)
}

func (h *Handler) GetTournament(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetTournament")
	defer span.End()

	tournamentID := strings.TrimSpace(r.PathValue("tournamentID"))
	item, source, err := h.data.GetTournament(ctx, tournamentID)
	if err != nil {
		h.logger.WarnContext(ctx, "get tournament failed", "tournament_id", tournamentID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSourced(ctx, w, source, tournamentToDTO(item))
}

func (h *Handler) ListMatchesByTournament(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListMatchesByTournament")
	defer span.End()

	tournamentID := strings.TrimSpace(r.PathValue("tournamentID"))
	items, source, err := h.data.GetMatches(ctx, tournamentID)
	if err != nil {
		h.logger.WarnContext(ctx, "list matches failed", "tournament_id", tournamentID, "error", err)
		writeError(ctx, w, err)
		return
	}

	out := make([]matchDTO, 0, len(items))
	for _, item := range items {
		out = append(out, matchToDTO(item))
	}
	writeSourced(ctx, w, source, out)
}

func (h *Handler) ListSquadsByTournament(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListSquadsByTournament")
	defer span.End()

	tournamentID := strings.TrimSpace(r.PathValue("tournamentID"))
	items, source, err := h.data.GetSquads(ctx, tournamentID)
	if err != nil {
		h.logger.WarnContext(ctx, "list squads failed", "tournament_id", tournamentID, "error", err)
		writeError(ctx, w, err)
		return
	}

	out := make([]squadDTO, 0, len(items))
	for _, item := range items {
		out = append(out, squadToDTO(item))
	}
	writeSourced(ctx, w, source, out)
}

func (h *Handler) GetMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMatch")
	defer span.End()

	matchID := strings.TrimSpace(r.PathValue("matchID"))
	item, source, err := h.data.GetMatch(ctx, matchID)
	if err != nil {
		h.logger.WarnContext(ctx, "get match failed", "match_id", matchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSourced(ctx, w, source, matchToDTO(item))
}

func (h *Handler) GetLiveMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetLiveMatch")
	defer span.End()

	matchID := strings.TrimSpace(r.PathValue("matchID"))
	item, source, err := h.data.GetLiveMatch(ctx, matchID)
	if err != nil {
		h.logger.WarnContext(ctx, "get live match failed", "match_id", matchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSourced(ctx, w, source, matchToDTO(item))
}

func (h *Handler) ListMatchStats(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListMatchStats")
	defer span.End()

	matchID := strings.TrimSpace(r.PathValue("matchID"))
	items, source, err := h.data.GetMatchStats(ctx, matchID)
	if err != nil {
		h.logger.WarnContext(ctx, "list match stats failed", "match_id", matchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	out := make([]statsLineDTO, 0, len(items))
	for _, item := range items {
		out = append(out, statsLineToDTO(item))
	}
	writeSourced(ctx, w, source, out)
}

func (h *Handler) GetPlayerMatchStats(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetPlayerMatchStats")
	defer span.End()

	matchID := strings.TrimSpace(r.PathValue("matchID"))
	playerID := strings.TrimSpace(r.PathValue("playerID"))
	item, source, err := h.data.GetPlayerMatchStats(ctx, matchID, playerID)
	if err != nil {
		h.logger.WarnContext(ctx, "get player match stats failed", "match_id", matchID, "player_id", playerID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSourced(ctx, w, source, statsLineToDTO(item))
}

func (h *Handler) GetPlayer(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetPlayer")
	defer span.End()

	playerID := strings.TrimSpace(r.PathValue("playerID"))
	item, source, err := h.data.GetPlayer(ctx, playerID)
	if err != nil {
		h.logger.WarnContext(ctx, "get player failed", "player_id", playerID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSourced(ctx, w, source, playerToDTO(item))
}

func (h *Handler) GetPlayerCredits(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetPlayerCredits")
	defer span.End()

	playerID := strings.TrimSpace(r.PathValue("playerID"))
	item, err := h.creditService.PlayerCredit(ctx, playerID, r.URL.Query().Get("format"))
	if err != nil {
		h.logger.WarnContext(ctx, "get player credits failed", "player_id", playerID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSourced(ctx, w, item.Source, playerCreditToDTO(item))
}
