package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/cricket-fantasy/external/offline"
	creditdomain "github.com/riskibarqy/cricket-fantasy/internal/domain/credit"
	"github.com/riskibarqy/cricket-fantasy/internal/domain/fantasy"
	"github.com/riskibarqy/cricket-fantasy/internal/domain/leaderboard"
	"github.com/riskibarqy/cricket-fantasy/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/cricket-fantasy/internal/platform/id"
	"github.com/riskibarqy/cricket-fantasy/internal/platform/logging"
	"github.com/riskibarqy/cricket-fantasy/internal/usecase"
)

const testJobToken = "job-secret"

var apiStart = time.Date(2026, 4, 10, 12, 0, 0, 0, time.UTC)

type apiHarness struct {
	provider *offline.Client
	cache    *usecase.StalenessCache
	router   http.Handler
}

func newAPIHarness(t *testing.T, providerCfg offline.Config) *apiHarness {
	t.Helper()

	now := func() time.Time { return apiStart }
	providerCfg.Now = now
	client := offline.NewClient(providerCfg)
	cache, err := usecase.NewStalenessCache(client, usecase.Repositories{
		Tournaments: memory.NewTournamentRepository(),
		Matches:     memory.NewMatchRepository(),
		Teams:       memory.NewTeamRepository(),
		Players:     memory.NewPlayerRepository(),
		PlayerStats: memory.NewPlayerStatsRepository(),
		SyncRecords: memory.NewSyncRecordRepository(),
	}, usecase.StalenessCacheConfig{
		TeamIDs: &id.Sequence{Prefix: "team_"},
		Logger:  logging.NewNop(),
		Now:     now,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = cache.Shutdown(context.Background())
	})

	contests := memory.NewContestRepository()
	entries := memory.NewEntryRepository()
	ranker := leaderboard.NewRanker(leaderboard.TieBreakStable)
	credits := usecase.NewCreditService(cache)
	scoringService := usecase.NewScoringService(contests, entries, cache, cache, ranker, logging.NewNop())

	// The budget is generous so seeded careers never trip the cap.
	rules := fantasy.DefaultTeamRules()
	rules.BudgetCap = 200

	handler := NewHandler(
		cache,
		credits,
		scoringService,
		usecase.NewContestService(contests, cache),
		usecase.NewRosterService(contests, entries, cache, credits, rules, &id.Sequence{Prefix: "entry_"}),
		usecase.NewLeaderboardService(contests, entries, ranker, scoringService, logging.NewNop()),
		usecase.NewResyncService(cache),
		logging.NewNop(),
	)

	return &apiHarness{
		provider: client,
		cache:    cache,
		router:   NewRouter(handler, logging.NewNop(), nil, testJobToken),
	}
}

func (h *apiHarness) do(t *testing.T, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	return rec
}

type testEnvelope[T any] struct {
	APIVersion string           `json:"apiVersion"`
	Data       T                `json:"data"`
	Error      *googleErrorBody `json:"error"`
}

func decodeEnvelope[T any](t *testing.T, rec *httptest.ResponseRecorder) testEnvelope[T] {
	t.Helper()

	var env testEnvelope[T]
	require.NoError(t, sonic.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

func TestHandler_Healthz(t *testing.T) {
	t.Parallel()

	h := newAPIHarness(t, offline.Config{})
	rec := h.do(t, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status, got=%d want=%d", rec.Code, http.StatusOK)
	}
	env := decodeEnvelope[map[string]string](t, rec)
	require.Equal(t, "ok", env.Data["status"])
}

func TestHandler_DataSourceHeader(t *testing.T) {
	t.Parallel()

	h := newAPIHarness(t, offline.Config{})

	first := h.do(t, http.MethodGet, "/v1/tournaments", "")
	require.Equal(t, http.StatusOK, first.Code)
	require.Equal(t, "api", first.Header().Get(headerDataSource))

	second := h.do(t, http.MethodGet, "/v1/tournaments", "")
	require.Equal(t, http.StatusOK, second.Code)
	require.Equal(t, "cache", second.Header().Get(headerDataSource))

	env := decodeEnvelope[[]tournamentDTO](t, second)
	require.Len(t, env.Data, 2)
	if got := h.provider.Calls("GetTournaments"); got != 1 {
		t.Fatalf("expected one provider call, got=%d", got)
	}
}

func TestHandler_MatchRoutes(t *testing.T) {
	t.Parallel()

	h := newAPIHarness(t, offline.Config{})

	rec := h.do(t, http.MethodGet, "/v1/tournaments/"+offline.LeagueTournamentID+"/matches", "")
	require.Equal(t, http.StatusOK, rec.Code)
	matches := decodeEnvelope[[]matchDTO](t, rec)
	require.Len(t, matches.Data, 5)

	rec = h.do(t, http.MethodGet, "/v1/matches/"+offline.LiveMatchID+"/live", "")
	require.Equal(t, http.StatusOK, rec.Code)
	live := decodeEnvelope[matchDTO](t, rec)
	require.Equal(t, "live", live.Data.Status)
	require.NotNil(t, live.Data.Live)
	require.Len(t, live.Data.Live.Batsmen, 2)

	rec = h.do(t, http.MethodGet, "/v1/matches/m-missing", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	missing := decodeEnvelope[any](t, rec)
	require.NotNil(t, missing.Error)
	require.Equal(t, "NOT_FOUND", missing.Error.Status)
}

func TestHandler_SquadsAndCredits(t *testing.T) {
	t.Parallel()

	h := newAPIHarness(t, offline.Config{})

	rec := h.do(t, http.MethodGet, "/v1/tournaments/"+offline.LeagueTournamentID+"/squads", "")
	require.Equal(t, http.StatusOK, rec.Code)
	squads := decodeEnvelope[[]squadDTO](t, rec)
	require.Len(t, squads.Data, 4)
	require.Len(t, squads.Data[0].Players, 11)

	playerID := offline.PlayerID("t-chennai", 1)
	rec = h.do(t, http.MethodGet, "/v1/players/"+playerID+"/credits?format=ODI", "")
	require.Equal(t, http.StatusOK, rec.Code)
	credit := decodeEnvelope[playerCreditDTO](t, rec)
	require.Equal(t, playerID, credit.Data.PlayerID)
	if credit.Data.Credit < creditdomain.MinCredit || credit.Data.Credit > creditdomain.MaxCredit {
		t.Fatalf("credit out of range, got=%v", credit.Data.Credit)
	}

	rec = h.do(t, http.MethodGet, "/v1/players/"+playerID+"/credits?format=hundred", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_ComputePlayerPointsInline(t *testing.T) {
	t.Parallel()

	h := newAPIHarness(t, offline.Config{})
	body := `{"stats":{"match_id":"m1","player_id":"p1","batting":{"runs":52,"balls":30,"fours":5,"sixes":2},"fielding":{"catches":1}}}`

	rec := h.do(t, http.MethodPost, "/v1/scoring/player-points", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	env := decodeEnvelope[playerPointsDTO](t, rec)
	if env.Data.Points.Raw != 77 || env.Data.Points.Batting != 69 || env.Data.Points.Fielding != 8 {
		t.Fatalf("unexpected points, got=%+v want raw=77", env.Data.Points)
	}
	require.Len(t, env.Data.Breakdown, 5)
	if h.provider.TotalCalls() != 0 {
		t.Fatalf("inline stats must not reach the provider, got calls=%d", h.provider.TotalCalls())
	}
}

func TestHandler_ComputePlayerPointsRejects(t *testing.T) {
	t.Parallel()

	h := newAPIHarness(t, offline.Config{})
	tests := []struct {
		name string
		body string
		want int
	}{
		{name: "malformed json", body: `{"stats":`, want: http.StatusBadRequest},
		{name: "unknown field", body: `{"match":"m1"}`, want: http.StatusBadRequest},
		{name: "nothing to score", body: `{}`, want: http.StatusBadRequest},
		{name: "negative runs", body: `{"stats":{"batting":{"runs":-1}}}`, want: http.StatusBadRequest},
		{name: "zero captain multiplier", body: `{"stats":{},"rules":{"captainMultiplier":0,"viceCaptainMultiplier":1.5}}`, want: http.StatusBadRequest},
		{name: "unknown contest rules", body: `{"stats":{},"contest_id":"c404"}`, want: http.StatusNotFound},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			rec := h.do(t, http.MethodPost, "/v1/scoring/player-points", tc.body)
			if rec.Code != tc.want {
				t.Fatalf("unexpected status, got=%d want=%d body=%s", rec.Code, tc.want, rec.Body.String())
			}
		})
	}
}

func TestHandler_ComputeRosterPointsFromStoredStats(t *testing.T) {
	t.Parallel()

	h := newAPIHarness(t, offline.Config{})
	captain := offline.PlayerID("t-chennai", 1)
	vice := offline.PlayerID("t-mumbai", 8)
	body := `{"match_id":"` + offline.CompletedMatchID + `","player_ids":["` + captain + `","` + vice + `","unknown"],` +
		`"captain_id":"` + captain + `","vice_captain_id":"` + vice + `"}`

	rec := h.do(t, http.MethodPost, "/v1/scoring/roster-points", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Equal(t, "api", rec.Header().Get(headerDataSource))

	env := decodeEnvelope[rosterPointsDTO](t, rec)
	require.Len(t, env.Data.Players, 3)
	var sum float64
	for _, item := range env.Data.Players {
		sum += item.Final
		if item.PlayerID == "unknown" && (item.HasStats || item.Final != 0) {
			t.Fatalf("player without stats must score zero, got=%+v", item)
		}
	}
	require.InDelta(t, env.Data.Total, sum, 1e-9)
}

func TestHandler_ContestFlow(t *testing.T) {
	t.Parallel()

	h := newAPIHarness(t, offline.Config{})

	rec := h.do(t, http.MethodPut, "/v1/contests/c-up", `{"match_id":"`+offline.UpcomingMatchID+`"}`)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = h.do(t, http.MethodPut, "/v1/contests/c-up", `{"name":"Sunday Cup","match_id":"`+offline.UpcomingMatchID+`"}`,
		headerInternalJobToken, testJobToken)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	created := decodeEnvelope[contestDTO](t, rec)
	require.Equal(t, "Sunday Cup", created.Data.Name)
	require.Equal(t, "T20", created.Data.Format)

	mumbai := func(n int) string { return offline.PlayerID("t-mumbai", n) }
	kolkata := func(n int) string { return offline.PlayerID("t-kolkata", n) }
	picks := []string{
		mumbai(0), mumbai(1), mumbai(2), mumbai(3), mumbai(5), mumbai(7), mumbai(8),
		kolkata(1), kolkata(6), kolkata(9), kolkata(10),
	}
	entryBody := `{"user_id":"u1","user_name":"Asha","player_ids":["` + strings.Join(picks, `","`) + `"],` +
		`"captain_id":"` + mumbai(1) + `","vice_captain_id":"` + kolkata(6) + `"}`

	rec = h.do(t, http.MethodPost, "/v1/contests/c-up/entries", entryBody)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	entry := decodeEnvelope[entryDTO](t, rec)
	require.Equal(t, "entry_1", entry.Data.ID)
	require.Equal(t, 4, entry.Data.RoleCounts["batsman"])
	require.Equal(t, 1, entry.Data.RoleCounts["wicket-keeper"])

	rec = h.do(t, http.MethodGet, "/v1/contests/c-up/leaderboard?user_id=u1", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	board := decodeEnvelope[leaderboardDTO](t, rec)
	require.Len(t, board.Data.Entries, 1)
	require.NotNil(t, board.Data.CurrentUserEntry)
	if board.Data.CurrentUserEntry.Rank != 1 || board.Data.CurrentUserEntry.Change != "new" {
		t.Fatalf("unexpected standing, got=%+v", *board.Data.CurrentUserEntry)
	}

	rec = h.do(t, http.MethodGet, "/v1/contests", "")
	require.Equal(t, http.StatusOK, rec.Code)
	list := decodeEnvelope[[]contestDTO](t, rec)
	require.Len(t, list.Data, 1)
}

func TestHandler_ContestEntryErrors(t *testing.T) {
	t.Parallel()

	h := newAPIHarness(t, offline.Config{})
	rec := h.do(t, http.MethodPut, "/v1/contests/c-live", `{"match_id":"`+offline.LiveMatchID+`"}`,
		headerInternalJobToken, testJobToken)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	tests := []struct {
		name string
		path string
		body string
		want int
	}{
		{
			name: "locked once the match starts",
			path: "/v1/contests/c-live/entries",
			body: `{"user_id":"u1","player_ids":["a"],"captain_id":"a","vice_captain_id":"b"}`,
			want: http.StatusConflict,
		},
		{
			name: "unknown contest",
			path: "/v1/contests/c404/entries",
			body: `{"user_id":"u1","player_ids":["a"],"captain_id":"a","vice_captain_id":"b"}`,
			want: http.StatusNotFound,
		},
		{
			name: "missing captain",
			path: "/v1/contests/c-live/entries",
			body: `{"user_id":"u1","player_ids":["a"],"vice_captain_id":"b"}`,
			want: http.StatusBadRequest,
		},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			rec := h.do(t, http.MethodPost, tc.path, tc.body)
			if rec.Code != tc.want {
				t.Fatalf("unexpected status, got=%d want=%d body=%s", rec.Code, tc.want, rec.Body.String())
			}
		})
	}
}

func TestHandler_RecomputeCompletedContest(t *testing.T) {
	t.Parallel()

	h := newAPIHarness(t, offline.Config{})
	rec := h.do(t, http.MethodPut, "/v1/contests/c-done", `{"match_id":"`+offline.CompletedMatchID+`"}`,
		headerInternalJobToken, testJobToken)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = h.do(t, http.MethodPost, "/v1/contests/c-done/recompute", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NotEmpty(t, rec.Header().Get(headerDataSource))

	env := decodeEnvelope[recomputeDTO](t, rec)
	require.Equal(t, offline.CompletedMatchID, env.Data.MatchID)
	require.Positive(t, env.Data.StatsLines)
	require.Zero(t, env.Data.Entries)
}

func TestHandler_QuotaExhaustedSetsRetryAfter(t *testing.T) {
	t.Parallel()

	h := newAPIHarness(t, offline.Config{DailyLimit: 1})

	rec := h.do(t, http.MethodGet, "/v1/matches/"+offline.UpcomingMatchID, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = h.do(t, http.MethodGet, "/v1/matches/"+offline.CompletedMatchID, "")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code, rec.Body.String())
	require.NotEmpty(t, rec.Header().Get(headerRetryAfter))
	env := decodeEnvelope[any](t, rec)
	require.Equal(t, "RESOURCE_EXHAUSTED", env.Error.Status)

	rec = h.do(t, http.MethodGet, "/v1/provider/rate-limit", "")
	require.Equal(t, http.StatusOK, rec.Code)
	quota := decodeEnvelope[rateLimitDTO](t, rec)
	if !quota.Data.Known || quota.Data.Remaining != 0 || quota.Data.Limit != 1 {
		t.Fatalf("unexpected quota, got=%+v", quota.Data)
	}
}

func TestHandler_InternalRoutes(t *testing.T) {
	t.Parallel()

	h := newAPIHarness(t, offline.Config{})

	rec := h.do(t, http.MethodPost, "/v1/internal/sync/resync", `{"tournament_id":"`+offline.LeagueTournamentID+`","sync_data":["matches"]}`,
		headerInternalJobToken, "wrong")
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = h.do(t, http.MethodPost, "/v1/internal/sync/resync", `{"tournament_id":"`+offline.LeagueTournamentID+`","sync_data":["matches"]}`,
		headerInternalJobToken, testJobToken)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resync := decodeEnvelope[usecase.ResyncResult](t, rec)
	require.Equal(t, 1, resync.Data.SuccessCount)

	rec = h.do(t, http.MethodPost, "/v1/internal/sync/refresh-stale", `{"kinds":["match_list"]}`,
		headerInternalJobToken, testJobToken)
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())

	rec = h.do(t, http.MethodPost, "/v1/internal/sync/refresh-stale", `{"kinds":["fixtures"]}`,
		headerInternalJobToken, testJobToken)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = h.do(t, http.MethodGet, "/v1/internal/cache/stats", "", headerInternalJobToken, testJobToken)
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decodeEnvelope[cacheStatsDTO](t, rec)
	require.NotNil(t, stats.Data.InFlight)
}

func TestRequireInternalJobToken_NotConfigured(t *testing.T) {
	t.Parallel()

	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/internal/sync/resync", nil)
	req.Header.Set(headerInternalJobToken, "anything")
	RequireInternalJobToken(" ", next).ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("unexpected status, got=%d want=%d", rec.Code, http.StatusServiceUnavailable)
	}
}
