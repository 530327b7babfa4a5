package cricketdata

import (
	"bytes"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/cricket-fantasy/internal/domain/match"
	"github.com/riskibarqy/cricket-fantasy/internal/domain/player"
	"github.com/riskibarqy/cricket-fantasy/internal/domain/playerstats"
	"github.com/riskibarqy/cricket-fantasy/internal/domain/provider"
	"github.com/riskibarqy/cricket-fantasy/internal/domain/team"
	"github.com/riskibarqy/cricket-fantasy/internal/domain/tournament"
)

// number accepts both JSON numbers and numeric strings ("12", " 45.5 ", "-").
type number float64

func (n *number) UnmarshalJSON(raw []byte) error {
	value := strings.TrimSpace(string(bytes.Trim(raw, `"`)))
	if value == "" || value == "null" || value == "-" {
		*n = 0
		return nil
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		*n = 0
		return nil
	}
	*n = number(parsed)
	return nil
}

func (n number) Int() int       { return int(n) }
func (n number) Float() float64 { return float64(n) }

type quotaInfo struct {
	HitsToday number `json:"hitsToday"`
	HitsUsed  number `json:"hitsUsed"`
	HitsLimit number `json:"hitsLimit"`
	TotalRows number `json:"totalRows"`
}

type envelope[T any] struct {
	Status string    `json:"status"`
	Reason string    `json:"reason"`
	Data   T         `json:"data"`
	Info   quotaInfo `json:"info"`
}

type seriesItem struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	ODI       number `json:"odi"`
	T20       number `json:"t20"`
	Test      number `json:"test"`
	Squads    number `json:"squads"`
	Matches   number `json:"matches"`
}

type seriesInfo struct {
	Info      seriesItem  `json:"info"`
	MatchList []matchItem `json:"matchList"`
}

type teamInfoItem struct {
	Name      string `json:"name"`
	ShortName string `json:"shortname"`
	Img       string `json:"img"`
}

type scoreItem struct {
	R      number `json:"r"`
	W      number `json:"w"`
	O      number `json:"o"`
	Inning string `json:"inning"`
}

type matchItem struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	MatchType    string         `json:"matchType"`
	Status       string         `json:"status"`
	Venue        string         `json:"venue"`
	Date         string         `json:"date"`
	DateTimeGMT  string         `json:"dateTimeGMT"`
	Teams        []string       `json:"teams"`
	TeamInfo     []teamInfoItem `json:"teamInfo"`
	Score        []scoreItem    `json:"score"`
	SeriesID     string         `json:"series_id"`
	MatchStarted bool           `json:"matchStarted"`
	MatchEnded   bool           `json:"matchEnded"`
}

type personRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type battingRow struct {
	Batsman   personRef `json:"batsman"`
	Dismissal string    `json:"dismissal-text"`
	R         number    `json:"r"`
	B         number    `json:"b"`
	Fours     number    `json:"4s"`
	Sixes     number    `json:"6s"`
	SR        number    `json:"sr"`
}

type bowlingRow struct {
	Bowler personRef `json:"bowler"`
	O      number    `json:"o"`
	M      number    `json:"m"`
	R      number    `json:"r"`
	W      number    `json:"w"`
	Eco    number    `json:"eco"`
}

type catchingRow struct {
	Catcher personRef `json:"catcher"`
	Stumped number    `json:"stumped"`
	RunOut  number    `json:"runout"`
	Catch   number    `json:"catch"`
}

type inningsCard struct {
	Inning   string        `json:"inning"`
	Batting  []battingRow  `json:"batting"`
	Bowling  []bowlingRow  `json:"bowling"`
	Catching []catchingRow `json:"catching"`
}

type scorecardItem struct {
	matchItem
	Scorecard []inningsCard `json:"scorecard"`
}

type playerItem struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Role         string `json:"role"`
	BattingStyle string `json:"battingStyle"`
	BowlingStyle string `json:"bowlingStyle"`
	Country      string `json:"country"`
	PlayerImg    string `json:"playerImg"`
}

type careerStatItem struct {
	Fn        string `json:"fn"`
	MatchType string `json:"matchtype"`
	Stat      string `json:"stat"`
	Value     number `json:"value"`
}

type playerInfo struct {
	playerItem
	Stats []careerStatItem `json:"stats"`
}

type squadItem struct {
	TeamName  string       `json:"teamName"`
	ShortName string       `json:"shortname"`
	Img       string       `json:"img"`
	Players   []playerItem `json:"players"`
}

func mapSeries(item seriesItem) (tournament.Tournament, error) {
	if strings.TrimSpace(item.ID) == "" || strings.TrimSpace(item.Name) == "" {
		return tournament.Tournament{}, malformed("series without id or name")
	}
	out := tournament.Tournament{
		ID:         strings.TrimSpace(item.ID),
		Name:       strings.TrimSpace(item.Name),
		MatchCount: item.Matches.Int(),
		TeamCount:  item.Squads.Int(),
		Format:     dominantFormat(item),
	}
	if parsed := parseProviderDate(item.StartDate); parsed != nil {
		out.StartDate = *parsed
	}
	if parsed := parseSeriesEnd(out.StartDate, item.EndDate); parsed != nil {
		out.EndDate = *parsed
	}
	return out, nil
}

func dominantFormat(item seriesItem) match.Format {
	switch {
	case item.Test > item.ODI && item.Test > item.T20:
		return match.FormatTest
	case item.ODI > item.T20:
		return match.FormatODI
	default:
		return match.FormatT20
	}
}

func mapMatch(item matchItem, tournamentID string) (match.Match, error) {
	id := strings.TrimSpace(item.ID)
	if id == "" {
		return match.Match{}, malformed("match without id")
	}

	teamA, teamB, ok := mapMatchTeams(item)
	if !ok {
		return match.Match{}, malformed("match " + id + " without two teams")
	}

	format, ok := match.ParseFormat(item.MatchType)
	if !ok {
		format = match.FormatT20
	}

	out := match.Match{
		ID:           id,
		TournamentID: firstNonEmpty(item.SeriesID, tournamentID),
		Name:         strings.TrimSpace(item.Name),
		Format:       format,
		Status:       provider.MapStatus(item.Status, item.MatchStarted, item.MatchEnded),
		Venue:        strings.TrimSpace(item.Venue),
		TeamA:        teamA,
		TeamB:        teamB,
		Score:        mapScore(item.Score),
	}
	if out.Status.Final() {
		out.Result = strings.TrimSpace(item.Status)
	}
	if parsed := parseProviderDateTime(item.DateTimeGMT); parsed != nil {
		out.StartTime = *parsed
	} else if parsed := parseProviderDate(item.Date); parsed != nil {
		out.StartTime = *parsed
	}
	return out, nil
}

func mapMatchTeams(item matchItem) (match.TeamRef, match.TeamRef, bool) {
	refs := make([]match.TeamRef, 0, 2)
	for idx, name := range item.Teams {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		ref := match.TeamRef{Name: name}
		for _, info := range item.TeamInfo {
			if team.NormalizeName(info.Name) == team.NormalizeName(name) {
				ref.ShortName = strings.TrimSpace(info.ShortName)
				ref.ImageURL = strings.TrimSpace(info.Img)
				break
			}
		}
		if ref.ShortName == "" && idx < len(item.TeamInfo) && item.TeamInfo[idx].Name == "" {
			ref.ShortName = strings.TrimSpace(item.TeamInfo[idx].ShortName)
		}
		refs = append(refs, ref)
	}
	if len(refs) < 2 {
		return match.TeamRef{}, match.TeamRef{}, false
	}
	return refs[0], refs[1], true
}

func mapScore(items []scoreItem) []match.InningsScore {
	out := make([]match.InningsScore, 0, len(items))
	for _, item := range items {
		row := match.InningsScore{
			Inning:  strings.TrimSpace(item.Inning),
			Runs:    item.R.Int(),
			Wickets: item.W.Int(),
			Overs:   item.O.Float(),
		}
		row.TeamName = inningTeam(row.Inning)
		if balls := oversToBalls(row.Overs); balls > 0 {
			row.RunRate = float64(row.Runs) * 6 / float64(balls)
		}
		out = append(out, row)
	}
	return out
}

// inningTeam strips the "Inning 1" suffix from "India Inning 1".
func inningTeam(inning string) string {
	lower := strings.ToLower(inning)
	if idx := strings.Index(lower, " inning"); idx > 0 {
		return strings.TrimSpace(inning[:idx])
	}
	return inning
}

func oversToBalls(overs float64) int {
	whole := int(overs)
	part := int((overs-float64(whole))*10 + 0.5)
	return whole*6 + part
}

// mapScorecard folds a scorecard into one stat line per player. Test matches
// report two innings per player; those lines are merged.
func mapScorecard(matchID string, cards []inningsCard) []playerstats.MatchStats {
	byPlayer := make(map[string]playerstats.MatchStats)
	order := make([]string, 0, 32)
	touch := func(ref personRef) (playerstats.MatchStats, bool) {
		id := strings.TrimSpace(ref.ID)
		if id == "" {
			return playerstats.MatchStats{}, false
		}
		current, ok := byPlayer[id]
		if !ok {
			current = playerstats.MatchStats{MatchID: matchID, PlayerID: id, PlayerName: strings.TrimSpace(ref.Name)}
			order = append(order, id)
		}
		return current, true
	}

	for _, card := range cards {
		for _, row := range card.Batting {
			current, ok := touch(row.Batsman)
			if !ok {
				continue
			}
			byPlayer[current.PlayerID] = current.Merge(playerstats.MatchStats{
				Batting: playerstats.Batting{
					Runs:      row.R.Int(),
					Balls:     row.B.Int(),
					Fours:     row.Fours.Int(),
					Sixes:     row.Sixes.Int(),
					Dismissal: strings.TrimSpace(row.Dismissal),
				},
			})
		}
		for _, row := range card.Bowling {
			current, ok := touch(row.Bowler)
			if !ok {
				continue
			}
			byPlayer[current.PlayerID] = current.Merge(playerstats.MatchStats{
				Bowling: playerstats.Bowling{
					Overs:        row.O.Float(),
					Maidens:      row.M.Int(),
					RunsConceded: row.R.Int(),
					Wickets:      row.W.Int(),
				},
			})
		}
		for _, row := range card.Catching {
			current, ok := touch(row.Catcher)
			if !ok {
				continue
			}
			byPlayer[current.PlayerID] = current.Merge(playerstats.MatchStats{
				Fielding: playerstats.Fielding{
					Catches:       row.Catch.Int(),
					Stumpings:     row.Stumped.Int(),
					RunOutsDirect: row.RunOut.Int(),
				},
			})
		}
	}

	out := make([]playerstats.MatchStats, 0, len(order))
	for _, id := range order {
		out = append(out, byPlayer[id])
	}
	return out
}

// mapLiveState reads the crease from the last innings of a scorecard.
func mapLiveState(cards []inningsCard) match.LiveState {
	if len(cards) == 0 {
		return match.LiveState{}
	}
	current := cards[len(cards)-1]

	state := match.LiveState{}
	for _, row := range current.Batting {
		dismissal := strings.ToLower(strings.TrimSpace(row.Dismissal))
		if dismissal != "" && dismissal != "not out" && dismissal != "batting" {
			continue
		}
		state.Batsmen = append(state.Batsmen, match.LiveBatter{
			PlayerID: row.Batsman.ID,
			Name:     row.Batsman.Name,
			Runs:     row.R.Int(),
			Balls:    row.B.Int(),
			Fours:    row.Fours.Int(),
			Sixes:    row.Sixes.Int(),
		})
	}
	if len(current.Bowling) > 0 {
		last := current.Bowling[len(current.Bowling)-1]
		state.Bowler = &match.LiveBowler{
			PlayerID: last.Bowler.ID,
			Name:     last.Bowler.Name,
			Overs:    last.O.Float(),
			Maidens:  last.M.Int(),
			Runs:     last.R.Int(),
			Wickets:  last.W.Int(),
		}
	}
	return state
}

func mapPlayer(item playerItem) (player.Player, error) {
	id := strings.TrimSpace(item.ID)
	name := strings.TrimSpace(item.Name)
	if id == "" || name == "" {
		return player.Player{}, malformed("player without id or name")
	}
	return player.Player{
		ID:           id,
		Name:         name,
		Role:         provider.MapRole(item.Role),
		BattingStyle: strings.TrimSpace(item.BattingStyle),
		BowlingStyle: strings.TrimSpace(item.BowlingStyle),
		Country:      strings.TrimSpace(item.Country),
		ImageURL:     strings.TrimSpace(item.PlayerImg),
	}, nil
}

func careerFormat(raw string) (player.CareerFormat, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "t20", "ipl", "t20s":
		return player.CareerT20, true
	case "t20i", "it20":
		return player.CareerT20I, true
	case "odi":
		return player.CareerODI, true
	case "lista", "list a", "list-a":
		return player.CareerListA, true
	case "fc", "first-class", "firstclass":
		return player.CareerFC, true
	case "test":
		return player.CareerTest, true
	default:
		return "", false
	}
}

// mapCareer pivots the flat (fn, matchtype, stat, value) rows into per
// format aggregates. Unknown formats and stats are ignored.
func mapCareer(rows []careerStatItem) player.CareerStats {
	out := player.CareerStats{}
	for _, row := range rows {
		format, ok := careerFormat(row.MatchType)
		if !ok {
			continue
		}
		stats := out[format]
		stat := strings.ToLower(strings.TrimSpace(row.Stat))
		switch strings.ToLower(strings.TrimSpace(row.Fn)) {
		case "batting":
			if stats.Batting == nil {
				stats.Batting = &player.BattingCareer{}
			}
			applyBattingStat(stats.Batting, stat, row.Value)
		case "bowling":
			if stats.Bowling == nil {
				stats.Bowling = &player.BowlingCareer{}
			}
			applyBowlingStat(stats.Bowling, stat, row.Value)
		default:
			continue
		}
		out[format] = stats
	}
	return out
}

func applyBattingStat(dst *player.BattingCareer, stat string, value number) {
	switch stat {
	case "m":
		dst.Matches = value.Int()
	case "inn":
		dst.Innings = value.Int()
	case "runs":
		dst.Runs = value.Int()
	case "no":
		dst.NotOuts = value.Int()
	case "avg":
		v := value.Float()
		dst.Average = &v
	case "sr":
		v := value.Float()
		dst.StrikeRate = &v
	case "4s":
		v := value.Int()
		dst.Fours = &v
	case "6s":
		v := value.Int()
		dst.Sixes = &v
	case "100s", "100":
		dst.Hundreds = value.Int()
	case "50s", "50":
		dst.Fifties = value.Int()
	}
}

func applyBowlingStat(dst *player.BowlingCareer, stat string, value number) {
	switch stat {
	case "m":
		dst.Matches = value.Int()
	case "inn":
		dst.Innings = value.Int()
	case "wkts":
		dst.Wickets = value.Int()
	case "econ":
		v := value.Float()
		dst.Economy = &v
	case "avg":
		v := value.Float()
		dst.Average = &v
	case "sr":
		v := value.Float()
		dst.StrikeRate = &v
	}
}

func parseProviderDate(raw string) *time.Time {
	value := strings.TrimSpace(raw)
	if value == "" {
		return nil
	}
	for _, layout := range []string{"2006-01-02", "2 Jan 2006", "Jan 2, 2006"} {
		parsed, err := time.Parse(layout, value)
		if err == nil {
			v := parsed.UTC()
			return &v
		}
	}
	return nil
}

// parseSeriesEnd handles end dates reported without a year ("May 26"). The
// year is taken from the start date, rolling over when the end would precede
// the start.
func parseSeriesEnd(start time.Time, raw string) *time.Time {
	if parsed := parseProviderDate(raw); parsed != nil {
		return parsed
	}
	value := strings.TrimSpace(raw)
	if value == "" || start.IsZero() {
		return nil
	}
	parsed, err := time.Parse("Jan 2", value)
	if err != nil {
		return nil
	}
	end := time.Date(start.Year(), parsed.Month(), parsed.Day(), 0, 0, 0, 0, time.UTC)
	if end.Before(start) {
		end = end.AddDate(1, 0, 0)
	}
	return &end
}

func parseProviderDateTime(raw string) *time.Time {
	value := strings.TrimSpace(raw)
	if value == "" {
		return nil
	}
	for _, layout := range []string{"2006-01-02T15:04:05", "2006-01-02 15:04:05", time.RFC3339} {
		parsed, err := time.Parse(layout, value)
		if err == nil {
			v := parsed.UTC()
			return &v
		}
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, item := range values {
		if strings.TrimSpace(item) != "" {
			return strings.TrimSpace(item)
		}
	}
	return ""
}
