package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	mux.HandleFunc("GET /v1/provider/rate-limit", handler.GetRateLimit)
}

func registerDataRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/tournaments", handler.ListTournaments)
	mux.HandleFunc("GET /v1/tournaments/{tournamentID}", handler.GetTournament)
	mux.HandleFunc("GET /v1/tournaments/{tournamentID}/matches", handler.ListMatchesByTournament)
	mux.HandleFunc("GET /v1/tournaments/{tournamentID}/squads", handler.ListSquadsByTournament)
	mux.HandleFunc("GET /v1/matches/{matchID}", handler.GetMatch)
	mux.HandleFunc("GET /v1/matches/{matchID}/live", handler.GetLiveMatch)
	mux.HandleFunc("GET /v1/matches/{matchID}/stats", handler.ListMatchStats)
	mux.HandleFunc("GET /v1/matches/{matchID}/players/{playerID}/stats", handler.GetPlayerMatchStats)
	mux.HandleFunc("GET /v1/players/{playerID}", handler.GetPlayer)
	mux.HandleFunc("GET /v1/players/{playerID}/credits", handler.GetPlayerCredits)
}

func registerScoringRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("POST /v1/scoring/player-points", handler.ComputePlayerPoints)
	mux.HandleFunc("POST /v1/scoring/roster-points", handler.ComputeRosterPoints)
}

func registerContestRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.HandleFunc("GET /v1/contests", handler.ListContests)
	mux.HandleFunc("GET /v1/contests/{contestID}", handler.GetContest)
	mux.Handle("PUT /v1/contests/{contestID}", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.UpsertContest)))
	mux.HandleFunc("POST /v1/contests/{contestID}/entries", handler.CreateContestEntry)
	mux.HandleFunc("POST /v1/contests/{contestID}/recompute", handler.RecomputeContest)
	mux.HandleFunc("GET /v1/contests/{contestID}/leaderboard", handler.GetLeaderboard)
}

func registerInternalRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /v1/internal/sync/resync", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunResync)))
	mux.Handle("POST /v1/internal/sync/refresh-stale", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunRefreshStale)))
	mux.Handle("GET /v1/internal/cache/stats", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.GetCacheStats)))
}
