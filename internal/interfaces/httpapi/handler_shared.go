package httpapi

import (
	"sort"
	"time"

	"github.com/riskibarqy/cricket-fantasy/internal/domain/contest"
	"github.com/riskibarqy/cricket-fantasy/internal/domain/credit"
	"github.com/riskibarqy/cricket-fantasy/internal/domain/leaderboard"
	"github.com/riskibarqy/cricket-fantasy/internal/domain/match"
	"github.com/riskibarqy/cricket-fantasy/internal/domain/player"
	"github.com/riskibarqy/cricket-fantasy/internal/domain/playerstats"
	"github.com/riskibarqy/cricket-fantasy/internal/domain/provider"
	"github.com/riskibarqy/cricket-fantasy/internal/domain/scoring"
	"github.com/riskibarqy/cricket-fantasy/internal/domain/team"
	"github.com/riskibarqy/cricket-fantasy/internal/domain/tournament"
	"github.com/riskibarqy/cricket-fantasy/internal/usecase"
)

type statsLineRequest struct {
	MatchID  string          `json:"match_id"`
	PlayerID string          `json:"player_id"`
	Batting  battingRequest  `json:"batting"`
	Bowling  bowlingRequest  `json:"bowling"`
	Fielding fieldingRequest `json:"fielding"`
}

type battingRequest struct {
	Runs      int    `json:"runs" validate:"gte=0"`
	Balls     int    `json:"balls" validate:"gte=0"`
	Fours     int    `json:"fours" validate:"gte=0"`
	Sixes     int    `json:"sixes" validate:"gte=0"`
	Dismissal string `json:"dismissal" validate:"omitempty,max=64"`
}

type bowlingRequest struct {
	Overs        float64 `json:"overs" validate:"gte=0"`
	Maidens      int     `json:"maidens" validate:"gte=0"`
	RunsConceded int     `json:"runs_conceded" validate:"gte=0"`
	Wickets      int     `json:"wickets" validate:"gte=0,lte=10"`
}

type fieldingRequest struct {
	Catches         int `json:"catches" validate:"gte=0"`
	Stumpings       int `json:"stumpings" validate:"gte=0"`
	RunOutsDirect   int `json:"run_outs_direct" validate:"gte=0"`
	RunOutsAssisted int `json:"run_outs_assisted" validate:"gte=0"`
}

// playerPointsRequest scores either an inline stat line or the stored line of
// match_id/player_id.
type playerPointsRequest struct {
	MatchID   string            `json:"match_id" validate:"required_without=Stats"`
	PlayerID  string            `json:"player_id" validate:"required_without=Stats"`
	ContestID string            `json:"contest_id"`
	Stats     *statsLineRequest `json:"stats"`
	Rules     *scoring.Rules    `json:"rules"`
}

type rosterPointsRequest struct {
	MatchID       string         `json:"match_id" validate:"required"`
	ContestID     string         `json:"contest_id"`
	PlayerIDs     []string       `json:"player_ids" validate:"required,min=1,max=30,dive,required"`
	CaptainID     string         `json:"captain_id"`
	ViceCaptainID string         `json:"vice_captain_id"`
	Rules         *scoring.Rules `json:"rules"`
}

type createEntryRequest struct {
	UserID        string   `json:"user_id" validate:"required,max=128"`
	UserName      string   `json:"user_name" validate:"omitempty,max=100"`
	PlayerIDs     []string `json:"player_ids" validate:"required,dive,required"`
	CaptainID     string   `json:"captain_id" validate:"required"`
	ViceCaptainID string   `json:"vice_captain_id" validate:"required"`
}

type upsertContestRequest struct {
	Name    string         `json:"name" validate:"omitempty,max=200"`
	MatchID string         `json:"match_id" validate:"required"`
	Rules   *scoring.Rules `json:"rules"`
}

type resyncRequest struct {
	TournamentID string   `json:"tournament_id" validate:"required"`
	SyncData     []string `json:"sync_data" validate:"omitempty,dive,required"`
	MaxWorkers   int      `json:"max_workers" validate:"gte=0,lte=32"`
	CatalogPages int      `json:"catalog_pages" validate:"gte=0,lte=200"`
}

type refreshStaleRequest struct {
	Kinds []string `json:"kinds" validate:"omitempty,dive,required"`
	Limit int      `json:"limit" validate:"gte=0,lte=5000"`
}

type rateLimitDTO struct {
	Known     bool   `json:"known"`
	Limit     int    `json:"limit"`
	Remaining int    `json:"remaining"`
	ResetAt   string `json:"resetAt,omitempty"`
	Exhausted bool   `json:"exhausted"`
}

type tournamentDTO struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	ShortName    string `json:"shortName,omitempty"`
	Format       string `json:"format,omitempty"`
	StartDate    string `json:"startDate,omitempty"`
	EndDate      string `json:"endDate,omitempty"`
	TeamCount    int    `json:"teamCount"`
	MatchCount   int    `json:"matchCount"`
	LastSyncedAt string `json:"lastSyncedAt,omitempty"`
}

type teamRefDTO struct {
	ID        string `json:"id,omitempty"`
	Name      string `json:"name"`
	ShortName string `json:"shortName,omitempty"`
	ImageURL  string `json:"imageUrl,omitempty"`
}

type inningsScoreDTO struct {
	TeamName string  `json:"teamName"`
	Inning   string  `json:"inning"`
	Runs     int     `json:"runs"`
	Wickets  int     `json:"wickets"`
	Overs    float64 `json:"overs"`
	RunRate  float64 `json:"runRate"`
}

type liveBatterDTO struct {
	PlayerID string `json:"playerId,omitempty"`
	Name     string `json:"name"`
	Runs     int    `json:"runs"`
	Balls    int    `json:"balls"`
	Fours    int    `json:"fours"`
	Sixes    int    `json:"sixes"`
	OnStrike bool   `json:"onStrike"`
}

type liveBowlerDTO struct {
	PlayerID string  `json:"playerId,omitempty"`
	Name     string  `json:"name"`
	Overs    float64 `json:"overs"`
	Maidens  int     `json:"maidens"`
	Runs     int     `json:"runs"`
	Wickets  int     `json:"wickets"`
}

type liveStateDTO struct {
	Batsmen     []liveBatterDTO `json:"batsmen"`
	Bowler      *liveBowlerDTO  `json:"bowler,omitempty"`
	RecentBalls []string        `json:"recentBalls"`
}

type matchDTO struct {
	ID           string            `json:"id"`
	TournamentID string            `json:"tournamentId,omitempty"`
	Name         string            `json:"name"`
	Format       string            `json:"format"`
	Status       string            `json:"status"`
	Venue        string            `json:"venue,omitempty"`
	StartTime    string            `json:"startTime,omitempty"`
	TeamA        teamRefDTO        `json:"teamA"`
	TeamB        teamRefDTO        `json:"teamB"`
	Score        []inningsScoreDTO `json:"score"`
	Result       string            `json:"result,omitempty"`
	Live         *liveStateDTO     `json:"live,omitempty"`
	LastSyncedAt string            `json:"lastSyncedAt,omitempty"`
}

type battingCareerDTO struct {
	Matches    int      `json:"matches"`
	Innings    int      `json:"innings"`
	Runs       int      `json:"runs"`
	NotOuts    int      `json:"notOuts"`
	Average    *float64 `json:"average,omitempty"`
	StrikeRate *float64 `json:"strikeRate,omitempty"`
	Fours      *int     `json:"fours,omitempty"`
	Sixes      *int     `json:"sixes,omitempty"`
	Hundreds   int      `json:"hundreds"`
	Fifties    int      `json:"fifties"`
}

type bowlingCareerDTO struct {
	Matches    int      `json:"matches"`
	Innings    int      `json:"innings"`
	Wickets    int      `json:"wickets"`
	Economy    *float64 `json:"economy,omitempty"`
	Average    *float64 `json:"average,omitempty"`
	StrikeRate *float64 `json:"strikeRate,omitempty"`
}

type careerFormatDTO struct {
	Format  string            `json:"format"`
	Batting *battingCareerDTO `json:"batting,omitempty"`
	Bowling *bowlingCareerDTO `json:"bowling,omitempty"`
}

type playerDTO struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Role         string            `json:"role"`
	BattingStyle string            `json:"battingStyle,omitempty"`
	BowlingStyle string            `json:"bowlingStyle,omitempty"`
	Country      string            `json:"country,omitempty"`
	TeamID       string            `json:"teamId,omitempty"`
	ImageURL     string            `json:"imageUrl,omitempty"`
	Career       []careerFormatDTO `json:"career,omitempty"`
	LastSyncedAt string            `json:"lastSyncedAt,omitempty"`
}

type squadDTO struct {
	Team    teamRefDTO  `json:"team"`
	Players []playerDTO `json:"players"`
}

type statsLineDTO struct {
	MatchID    string  `json:"matchId"`
	PlayerID   string  `json:"playerId"`
	PlayerName string  `json:"playerName,omitempty"`
	TeamID     string  `json:"teamId,omitempty"`
	Runs       int     `json:"runs"`
	Balls      int     `json:"balls"`
	Fours      int     `json:"fours"`
	Sixes      int     `json:"sixes"`
	StrikeRate float64 `json:"strikeRate"`
	Dismissal  string  `json:"dismissal,omitempty"`
	Overs      float64 `json:"overs"`
	Maidens    int     `json:"maidens"`
	Conceded   int     `json:"runsConceded"`
	Wickets    int     `json:"wickets"`
	Economy    float64 `json:"economy"`
	Catches    int     `json:"catches"`
	Stumpings  int     `json:"stumpings"`
	RunOuts    int     `json:"runOuts"`
}

type playerCreditDTO struct {
	PlayerID  string           `json:"playerId"`
	Name      string           `json:"name"`
	Role      string           `json:"role"`
	Credit    float64          `json:"credit"`
	Valuation credit.Valuation `json:"valuation"`
}

type playerPointsDTO struct {
	MatchID   string             `json:"matchId,omitempty"`
	PlayerID  string             `json:"playerId,omitempty"`
	Points    scoring.Points     `json:"points"`
	Breakdown []scoring.LineItem `json:"breakdown"`
}

type rosterPointsDTO struct {
	MatchID string `json:"matchId"`
	scoring.RosterPoints
}

type contestDTO struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	MatchID   string        `json:"matchId"`
	Format    string        `json:"format"`
	Rules     scoring.Rules `json:"rules"`
	CreatedAt string        `json:"createdAt"`
}

type entryDTO struct {
	ID            string         `json:"id"`
	ContestID     string         `json:"contestId"`
	UserID        string         `json:"userId"`
	UserName      string         `json:"userName,omitempty"`
	PlayerIDs     []string       `json:"playerIds"`
	CaptainID     string         `json:"captainId"`
	ViceCaptainID string         `json:"viceCaptainId"`
	RoleCounts    map[string]int `json:"roleCounts"`
	CreditsUsed   float64        `json:"creditsUsed"`
	Points        float64        `json:"points"`
	Rank          int            `json:"rank,omitempty"`
	CreatedAt     string         `json:"createdAt"`
}

type recomputeDTO struct {
	ContestID  string `json:"contestId"`
	MatchID    string `json:"matchId"`
	Entries    int    `json:"entries"`
	StatsLines int    `json:"statsLines"`
	ScoredAt   string `json:"scoredAt"`
}

type standingDTO struct {
	EntryID      string  `json:"entryId"`
	UserID       string  `json:"userId"`
	UserName     string  `json:"userName,omitempty"`
	Points       float64 `json:"points"`
	Rank         int     `json:"rank"`
	PreviousRank int     `json:"previousRank,omitempty"`
	Change       string  `json:"change"`
}

type leaderboardDTO struct {
	ContestID        string        `json:"contestId"`
	Total            int           `json:"total"`
	Offset           int           `json:"offset"`
	Limit            int           `json:"limit"`
	Entries          []standingDTO `json:"entries"`
	CurrentUserEntry *standingDTO  `json:"currentUserEntry,omitempty"`
}

type sweepDTO struct {
	Candidates int `json:"candidates"`
	Refreshing int `json:"refreshing"`
	Failed     int `json:"failed"`
}

type cacheStatsDTO struct {
	Submitted  uint64       `json:"submitted"`
	Completed  uint64       `json:"completed"`
	Failed     uint64       `json:"failed"`
	Dropped    uint64       `json:"dropped"`
	Skipped    uint64       `json:"skipped"`
	InFlight   []string     `json:"inFlight"`
	MemoryKeys int          `json:"memoryKeys"`
	RateLimit  rateLimitDTO `json:"rateLimit"`
}

func formatTime(v time.Time) string {
	if v.IsZero() {
		return ""
	}
	return v.UTC().Format(time.RFC3339)
}

func formatDate(v time.Time) string {
	if v.IsZero() {
		return ""
	}
	return v.UTC().Format(time.DateOnly)
}

func rateLimitToDTO(info provider.RateLimitInfo, now time.Time) rateLimitDTO {
	return rateLimitDTO{
		Known:     info.Known,
		Limit:     info.Limit,
		Remaining: info.Remaining,
		ResetAt:   formatTime(info.ResetAt),
		Exhausted: info.Exhausted(now),
	}
}

func tournamentToDTO(v tournament.Tournament) tournamentDTO {
	return tournamentDTO{
		ID:           v.ID,
		Name:         v.Name,
		ShortName:    v.ShortName,
		Format:       string(v.Format),
		StartDate:    formatDate(v.StartDate),
		EndDate:      formatDate(v.EndDate),
		TeamCount:    v.TeamCount,
		MatchCount:   v.MatchCount,
		LastSyncedAt: formatTime(v.LastSyncedAt),
	}
}

func teamRefToDTO(v match.TeamRef) teamRefDTO {
	return teamRefDTO{ID: v.ID, Name: v.Name, ShortName: v.ShortName, ImageURL: v.ImageURL}
}

func teamToDTO(v team.Team) teamRefDTO {
	return teamRefDTO{ID: v.ID, Name: v.Name, ShortName: v.ShortName, ImageURL: v.ImageURL}
}

func matchToDTO(v match.Match) matchDTO {
	out := matchDTO{
		ID:           v.ID,
		TournamentID: v.TournamentID,
		Name:         v.Name,
		Format:       string(v.Format),
		Status:       string(v.Status),
		Venue:        v.Venue,
		StartTime:    formatTime(v.StartTime),
		TeamA:        teamRefToDTO(v.TeamA),
		TeamB:        teamRefToDTO(v.TeamB),
		Score:        make([]inningsScoreDTO, 0, len(v.Score)),
		Result:       v.Result,
		LastSyncedAt: formatTime(v.LastSyncedAt),
	}
	for _, inning := range v.Score {
		out.Score = append(out.Score, inningsScoreDTO(inning))
	}
	if v.Live != nil {
		live := &liveStateDTO{
			Batsmen:     make([]liveBatterDTO, 0, len(v.Live.Batsmen)),
			RecentBalls: append([]string{}, v.Live.RecentBalls...),
		}
		for _, batter := range v.Live.Batsmen {
			live.Batsmen = append(live.Batsmen, liveBatterDTO(batter))
		}
		if v.Live.Bowler != nil {
			bowler := liveBowlerDTO(*v.Live.Bowler)
			live.Bowler = &bowler
		}
		out.Live = live
	}
	return out
}

func playerToDTO(v player.Player) playerDTO {
	out := playerDTO{
		ID:           v.ID,
		Name:         v.Name,
		Role:         string(v.Role),
		BattingStyle: v.BattingStyle,
		BowlingStyle: v.BowlingStyle,
		Country:      v.Country,
		TeamID:       v.TeamID,
		ImageURL:     v.ImageURL,
		LastSyncedAt: formatTime(v.LastSyncedAt),
	}
	for _, format := range player.CareerFormats {
		stats, ok := v.Career[format]
		if !ok {
			continue
		}
		item := careerFormatDTO{Format: string(format)}
		if stats.Batting != nil {
			batting := battingCareerDTO(*stats.Batting)
			item.Batting = &batting
		}
		if stats.Bowling != nil {
			bowling := bowlingCareerDTO(*stats.Bowling)
			item.Bowling = &bowling
		}
		out.Career = append(out.Career, item)
	}
	return out
}

func squadToDTO(v team.Squad) squadDTO {
	out := squadDTO{Team: teamToDTO(v.Team), Players: make([]playerDTO, 0, len(v.Players))}
	for _, item := range v.Players {
		out.Players = append(out.Players, playerToDTO(item))
	}
	return out
}

func statsLineToDTO(v playerstats.MatchStats) statsLineDTO {
	return statsLineDTO{
		MatchID:    v.MatchID,
		PlayerID:   v.PlayerID,
		PlayerName: v.PlayerName,
		TeamID:     v.TeamID,
		Runs:       v.Batting.Runs,
		Balls:      v.Batting.Balls,
		Fours:      v.Batting.Fours,
		Sixes:      v.Batting.Sixes,
		StrikeRate: v.Batting.StrikeRate,
		Dismissal:  v.Batting.Dismissal,
		Overs:      v.Bowling.Overs,
		Maidens:    v.Bowling.Maidens,
		Conceded:   v.Bowling.RunsConceded,
		Wickets:    v.Bowling.Wickets,
		Economy:    v.Bowling.Economy,
		Catches:    v.Fielding.Catches,
		Stumpings:  v.Fielding.Stumpings,
		RunOuts:    v.Fielding.RunOuts(),
	}
}

func (r statsLineRequest) toDomain() playerstats.MatchStats {
	return playerstats.MatchStats{
		MatchID:  r.MatchID,
		PlayerID: r.PlayerID,
		Batting: playerstats.Batting{
			Runs:      r.Batting.Runs,
			Balls:     r.Batting.Balls,
			Fours:     r.Batting.Fours,
			Sixes:     r.Batting.Sixes,
			Dismissal: r.Batting.Dismissal,
		},
		Bowling: playerstats.Bowling{
			Overs:        r.Bowling.Overs,
			Maidens:      r.Bowling.Maidens,
			RunsConceded: r.Bowling.RunsConceded,
			Wickets:      r.Bowling.Wickets,
		},
		Fielding: playerstats.Fielding{
			Catches:         r.Fielding.Catches,
			Stumpings:       r.Fielding.Stumpings,
			RunOutsDirect:   r.Fielding.RunOutsDirect,
			RunOutsAssisted: r.Fielding.RunOutsAssisted,
		},
	}
}

func playerCreditToDTO(v usecase.PlayerCredit) playerCreditDTO {
	return playerCreditDTO{
		PlayerID:  v.Player.ID,
		Name:      v.Player.Name,
		Role:      string(v.Player.Role),
		Credit:    v.Valuation.Credit,
		Valuation: v.Valuation,
	}
}

func contestToDTO(v contest.Contest) contestDTO {
	return contestDTO{
		ID:        v.ID,
		Name:      v.Name,
		MatchID:   v.MatchID,
		Format:    string(v.Format),
		Rules:     v.Rules,
		CreatedAt: formatTime(v.CreatedAt),
	}
}

func entryToDTO(v contest.Entry) entryDTO {
	counts := make(map[string]int, len(v.Roster.RoleCounts))
	for role, count := range v.Roster.RoleCounts {
		counts[string(role)] = count
	}
	ids := append([]string{}, v.Roster.PlayerIDs...)
	sort.Strings(ids)
	return entryDTO{
		ID:            v.ID,
		ContestID:     v.ContestID,
		UserID:        v.UserID,
		UserName:      v.UserName,
		PlayerIDs:     ids,
		CaptainID:     v.Roster.CaptainID,
		ViceCaptainID: v.Roster.ViceCaptainID,
		RoleCounts:    counts,
		CreditsUsed:   v.Roster.CreditsUsed,
		Points:        v.Points,
		Rank:          v.Rank,
		CreatedAt:     formatTime(v.CreatedAt),
	}
}

func standingToDTO(v leaderboard.Standing) standingDTO {
	return standingDTO{
		EntryID:      v.EntryID,
		UserID:       v.UserID,
		UserName:     v.UserName,
		Points:       v.Points,
		Rank:         v.Rank,
		PreviousRank: v.PreviousRank,
		Change:       string(v.Change),
	}
}

func leaderboardToDTO(v usecase.Leaderboard) leaderboardDTO {
	out := leaderboardDTO{
		ContestID: v.ContestID,
		Total:     v.Total,
		Offset:    v.Offset,
		Limit:     v.Limit,
		Entries:   make([]standingDTO, 0, len(v.Entries)),
	}
	for _, item := range v.Entries {
		out.Entries = append(out.Entries, standingToDTO(item))
	}
	if v.CurrentUserEntry != nil {
		current := standingToDTO(*v.CurrentUserEntry)
		out.CurrentUserEntry = &current
	}
	return out
}
