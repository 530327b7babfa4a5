package offline

import (
	"fmt"
	"time"

	"github.com/riskibarqy/cricket-fantasy/internal/domain/match"
	"github.com/riskibarqy/cricket-fantasy/internal/domain/player"
	"github.com/riskibarqy/cricket-fantasy/internal/domain/playerstats"
	"github.com/riskibarqy/cricket-fantasy/internal/domain/team"
	"github.com/riskibarqy/cricket-fantasy/internal/domain/tournament"
)

const (
	LeagueTournamentID = "s-premier-2026"
	TestTournamentID   = "s-test-series-2025"

	CompletedMatchID    = "m-premier-01"
	LiveMatchID         = "m-premier-02"
	InningsBreakMatchID = "m-premier-03"
	UpcomingMatchID     = "m-premier-04"
	AbandonedMatchID    = "m-premier-05"
	TestMatchID         = "m-test-01"
)

type seedTeam struct {
	externalID string
	name       string
	short      string
}

var seedTeams = []seedTeam{
	{externalID: "t-chennai", name: "Chennai Super Kings", short: "CSK"},
	{externalID: "t-mumbai", name: "Mumbai Indians", short: "MI"},
	{externalID: "t-bengaluru", name: "Royal Challengers Bengaluru", short: "RCB"},
	{externalID: "t-kolkata", name: "Kolkata Knight Riders", short: "KKR"},
}

// squadShape is the role order of an eleven: keeper, four batters, two
// all-rounders, four bowlers.
var squadShape = []player.Role{
	player.RoleWicketKeeper,
	player.RoleBatsman, player.RoleBatsman, player.RoleBatsman, player.RoleBatsman,
	player.RoleAllRounder, player.RoleAllRounder,
	player.RoleBowler, player.RoleBowler, player.RoleBowler, player.RoleBowler,
}

var roleLabel = map[player.Role]string{
	player.RoleWicketKeeper: "Keeper",
	player.RoleBatsman:      "Batter",
	player.RoleAllRounder:   "Allrounder",
	player.RoleBowler:       "Bowler",
}

type dataset struct {
	tournaments []tournament.Tournament
	teams       []team.Team
	players     map[string]player.Player
	playerOrder []string
	squads      map[string][]team.Squad
	matches     map[string]match.Match
	matchOrder  []string
	live        map[string]match.LiveState
	stats       map[string][]playerstats.MatchStats
}

// PlayerID is the seeded id of the n-th player (0-based) of a team.
func PlayerID(teamExternalID string, n int) string {
	return fmt.Sprintf("%s-p%02d", teamExternalID, n+1)
}

func buildDataset(now time.Time) *dataset {
	day := now.UTC().Truncate(24 * time.Hour)
	ds := &dataset{
		players: make(map[string]player.Player),
		squads:  make(map[string][]team.Squad),
		matches: make(map[string]match.Match),
		live:    make(map[string]match.LiveState),
		stats:   make(map[string][]playerstats.MatchStats),
	}

	ds.tournaments = []tournament.Tournament{
		{
			ID:         LeagueTournamentID,
			Name:       "Premier T20 League 2026",
			ShortName:  "PTL 2026",
			StartDate:  day.AddDate(0, 0, -20),
			EndDate:    day.AddDate(0, 0, 30),
			Format:     match.FormatT20,
			TeamCount:  len(seedTeams),
			MatchCount: 5,
		},
		{
			ID:         TestTournamentID,
			Name:       "Winter Test Series 2025",
			ShortName:  "WTS 2025",
			StartDate:  day.AddDate(0, 0, -220),
			EndDate:    day.AddDate(0, 0, -200),
			Format:     match.FormatTest,
			TeamCount:  2,
			MatchCount: 1,
		},
	}

	leagueSquads := make([]team.Squad, 0, len(seedTeams))
	for teamIdx, st := range seedTeams {
		item := team.Team{ExternalID: st.externalID, Name: st.name, ShortName: st.short}
		ds.teams = append(ds.teams, item)

		squad := team.Squad{TournamentID: LeagueTournamentID, Team: item}
		for n, role := range squadShape {
			p := player.Player{
				ID:           PlayerID(st.externalID, n),
				Name:         fmt.Sprintf("%s %s %d", st.short, roleLabel[role], n+1),
				Role:         role,
				BattingStyle: battingStyle(n),
				BowlingStyle: bowlingStyle(role, n),
				Country:      "India",
				Career:       seedCareer(role, teamIdx, n),
			}
			ds.players[p.ID] = p
			ds.playerOrder = append(ds.playerOrder, p.ID)

			listed := p
			listed.Career = nil
			squad.Players = append(squad.Players, listed)
		}
		leagueSquads = append(leagueSquads, squad)
	}
	ds.squads[LeagueTournamentID] = leagueSquads
	ds.squads[TestTournamentID] = []team.Squad{
		{TournamentID: TestTournamentID, Team: ds.teams[0], Players: leagueSquads[0].Players},
		{TournamentID: TestTournamentID, Team: ds.teams[1], Players: leagueSquads[1].Players},
	}

	addMatch := func(m match.Match) {
		ds.matches[m.ID] = m
		ds.matchOrder = append(ds.matchOrder, m.ID)
	}

	completed := newMatch(CompletedMatchID, LeagueTournamentID, match.FormatT20, 0, 1, day.AddDate(0, 0, -3))
	completed.Status = match.StatusCompleted
	completed.Score = []match.InningsScore{
		innings(seedTeams[0].name, 1, 186, 5, 20),
		innings(seedTeams[1].name, 1, 171, 8, 20),
	}
	completed.Result = "Chennai Super Kings won by 15 runs"
	addMatch(completed)
	ds.stats[CompletedMatchID] = seedScorecard(CompletedMatchID, 0, 1, 7)

	live := newMatch(LiveMatchID, LeagueTournamentID, match.FormatT20, 2, 3, now.Add(-90*time.Minute))
	live.Status = match.StatusLive
	live.Score = []match.InningsScore{
		innings(seedTeams[2].name, 1, 201, 4, 20),
		innings(seedTeams[3].name, 1, 122, 3, 13.4),
	}
	addMatch(live)
	ds.stats[LiveMatchID] = seedScorecard(LiveMatchID, 2, 3, 11)
	ds.live[LiveMatchID] = match.LiveState{
		Batsmen: []match.LiveBatter{
			{PlayerID: PlayerID(seedTeams[3].externalID, 2), Name: "KKR Batter 3", Runs: 44, Balls: 29, Fours: 4, Sixes: 2, OnStrike: true},
			{PlayerID: PlayerID(seedTeams[3].externalID, 5), Name: "KKR Allrounder 6", Runs: 18, Balls: 12, Fours: 1, Sixes: 1},
		},
		Bowler:      &match.LiveBowler{PlayerID: PlayerID(seedTeams[2].externalID, 8), Name: "RCB Bowler 9", Overs: 2.4, Runs: 21, Wickets: 1},
		RecentBalls: []string{"1", "4", "0", "W", "6", "1"},
	}

	breakMatch := newMatch(InningsBreakMatchID, LeagueTournamentID, match.FormatT20, 0, 2, now.Add(-80*time.Minute))
	breakMatch.Status = match.StatusInningsBreak
	breakMatch.Score = []match.InningsScore{innings(seedTeams[0].name, 1, 164, 7, 20)}
	addMatch(breakMatch)
	ds.stats[InningsBreakMatchID] = seedScorecard(InningsBreakMatchID, 0, 2, 3)

	upcoming := newMatch(UpcomingMatchID, LeagueTournamentID, match.FormatT20, 1, 3, day.AddDate(0, 0, 2).Add(14*time.Hour))
	upcoming.Status = match.StatusUpcoming
	addMatch(upcoming)

	abandoned := newMatch(AbandonedMatchID, LeagueTournamentID, match.FormatT20, 1, 2, day.AddDate(0, 0, -6))
	abandoned.Status = match.StatusAbandoned
	abandoned.Result = "No result (rain)"
	addMatch(abandoned)

	test := newMatch(TestMatchID, TestTournamentID, match.FormatTest, 0, 1, day.AddDate(0, 0, -210))
	test.Status = match.StatusCompleted
	test.Score = []match.InningsScore{
		innings(seedTeams[0].name, 1, 356, 10, 98.2),
		innings(seedTeams[1].name, 1, 289, 10, 84.1),
		innings(seedTeams[0].name, 2, 201, 6, 55),
		innings(seedTeams[1].name, 2, 190, 10, 61.3),
	}
	test.Result = "Chennai Super Kings won by 78 runs"
	addMatch(test)
	ds.stats[TestMatchID] = mergeInnings(seedScorecard(TestMatchID, 0, 1, 5), seedScorecard(TestMatchID, 0, 1, 13))

	return ds
}

func newMatch(id, tournamentID string, format match.Format, a, b int, start time.Time) match.Match {
	ref := func(idx int) match.TeamRef {
		st := seedTeams[idx]
		return match.TeamRef{ExternalID: st.externalID, Name: st.name, ShortName: st.short}
	}
	return match.Match{
		ID:           id,
		TournamentID: tournamentID,
		Name:         fmt.Sprintf("%s vs %s", seedTeams[a].short, seedTeams[b].short),
		Format:       format,
		Venue:        "Seeded Oval",
		StartTime:    start,
		TeamA:        ref(a),
		TeamB:        ref(b),
	}
}

func innings(teamName string, n, runs, wickets int, overs float64) match.InningsScore {
	out := match.InningsScore{
		TeamName: teamName,
		Inning:   fmt.Sprintf("%s Inning %d", teamName, n),
		Runs:     runs,
		Wickets:  wickets,
		Overs:    overs,
	}
	whole := int(overs)
	balls := whole*6 + int((overs-float64(whole))*10+0.5)
	if balls > 0 {
		out.RunRate = float64(runs) * 6 / float64(balls)
	}
	return out
}

// seedScorecard produces one stat line per player of both teams. salt varies
// the numbers between matches without randomness.
func seedScorecard(matchID string, a, b, salt int) []playerstats.MatchStats {
	out := make([]playerstats.MatchStats, 0, 2*len(squadShape))
	for _, teamIdx := range []int{a, b} {
		st := seedTeams[teamIdx]
		for n, role := range squadShape {
			k := n + salt + teamIdx*3
			line := playerstats.MatchStats{
				MatchID:    matchID,
				PlayerID:   PlayerID(st.externalID, n),
				PlayerName: fmt.Sprintf("%s %s %d", st.short, roleLabel[role], n+1),
			}
			if role != player.RoleBowler || k%3 == 0 {
				balls := 4 + (k*7)%38
				runs := (k * 13) % 71
				if k%9 == 0 {
					runs = 0
				}
				line.Batting = playerstats.Batting{
					Runs:      runs,
					Balls:     balls,
					Fours:     runs / 12,
					Sixes:     runs / 25,
					Dismissal: "c fielder b bowler",
				}
				line.Batting.StrikeRate = float64(runs) * 100 / float64(balls)
			}
			if role == player.RoleBowler || role == player.RoleAllRounder {
				wickets := k % 4
				if role == player.RoleBowler && k%11 == 0 {
					wickets = 5
				}
				conceded := 18 + (k*5)%22
				line.Bowling = playerstats.Bowling{
					Overs:        4,
					Maidens:      k % 2,
					RunsConceded: conceded,
					Wickets:      wickets,
					Economy:      float64(conceded) / 4,
				}
			}
			if k%4 == 1 {
				line.Fielding.Catches = 1
			}
			if role == player.RoleWicketKeeper && k%2 == 0 {
				line.Fielding.Stumpings = 1
			}
			if k%7 == 3 {
				line.Fielding.RunOutsDirect = 1
			}
			out = append(out, line)
		}
	}
	return out
}

func mergeInnings(first, second []playerstats.MatchStats) []playerstats.MatchStats {
	out := make([]playerstats.MatchStats, len(first))
	for idx := range first {
		out[idx] = first[idx].Merge(second[idx])
	}
	return out
}

func battingStyle(n int) string {
	if n%3 == 0 {
		return "Left Handed Bat"
	}
	return "Right Handed Bat"
}

func bowlingStyle(role player.Role, n int) string {
	switch role {
	case player.RoleBowler:
		if n%2 == 0 {
			return "Right-arm fast"
		}
		return "Right-arm offbreak"
	case player.RoleAllRounder:
		return "Slow left-arm orthodox"
	default:
		return ""
	}
}

// seedCareer builds plausible career figures from the role and position.
func seedCareer(role player.Role, teamIdx, n int) player.CareerStats {
	k := teamIdx*11 + n
	career := player.CareerStats{}

	batting := func(matches int, avg, sr float64) *player.BattingCareer {
		innings := matches - matches/8
		runs := int(avg * float64(innings-innings/6))
		fours := runs / 9
		sixes := runs / 30
		return &player.BattingCareer{
			Matches:    matches,
			Innings:    innings,
			Runs:       runs,
			NotOuts:    innings / 6,
			Average:    floatPtr(avg),
			StrikeRate: floatPtr(sr),
			Fours:      &fours,
			Sixes:      &sixes,
			Hundreds:   runs / 1500,
			Fifties:    runs / 400,
		}
	}
	bowling := func(matches int, wicketsPerMatch, economy, avg, sr float64) *player.BowlingCareer {
		return &player.BowlingCareer{
			Matches:    matches,
			Innings:    matches - matches/10,
			Wickets:    int(wicketsPerMatch * float64(matches)),
			Economy:    floatPtr(economy),
			Average:    floatPtr(avg),
			StrikeRate: floatPtr(sr),
		}
	}

	t20Matches := 20 + (k*7)%90
	odiMatches := (k * 5) % 60
	spread := float64(k%5) * 3

	switch role {
	case player.RoleBatsman, player.RoleWicketKeeper:
		career[player.CareerT20] = player.FormatStats{Batting: batting(t20Matches, 24+spread, 122+spread*2)}
		if odiMatches >= 3 {
			career[player.CareerODI] = player.FormatStats{Batting: batting(odiMatches, 31+spread, 84+spread)}
		}
	case player.RoleBowler:
		career[player.CareerT20] = player.FormatStats{
			Batting: batting(t20Matches, 8+spread/3, 95),
			Bowling: bowling(t20Matches, 0.9+spread/20, 7.2+spread/10, 24+spread, 18+spread/2),
		}
	case player.RoleAllRounder:
		career[player.CareerT20] = player.FormatStats{
			Batting: batting(t20Matches, 21+spread, 132+spread),
			Bowling: bowling(t20Matches, 0.7+spread/25, 7.9, 29+spread, 22),
		}
		if odiMatches >= 3 {
			career[player.CareerODI] = player.FormatStats{
				Batting: batting(odiMatches, 28, 90),
				Bowling: bowling(odiMatches, 1.1, 5.4, 33, 36),
			}
		}
	}
	return career
}

func floatPtr(v float64) *float64 {
	return &v
}
