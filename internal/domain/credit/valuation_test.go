package credit

import (
	"math"
	"testing"

	"github.com/riskibarqy/cricket-fantasy/internal/domain/match"
	"github.com/riskibarqy/cricket-fantasy/internal/domain/player"
)

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }

func eliteT20Batter() player.CareerStats {
	return player.CareerStats{
		player.CareerT20: {
			Batting: &player.BattingCareer{
				Matches: 250, Innings: 240, Runs: 8000,
				Average: floatPtr(45), StrikeRate: floatPtr(150),
				Fours: intPtr(700), Sixes: intPtr(300),
			},
		},
		player.CareerT20I: {
			Batting: &player.BattingCareer{
				Matches: 100, Innings: 95, Runs: 3500,
				Average: floatPtr(50), StrikeRate: floatPtr(140),
				Fours: intPtr(300), Sixes: intPtr(120),
			},
		},
	}
}

func TestScoreToCredit_Bounds(t *testing.T) {
	t.Parallel()

	cases := []struct {
		score float64
		want  float64
	}{
		{score: 50, want: 9.0},
		{score: 0, want: 6.0},
		{score: -40, want: 6.0},
		{score: 100, want: 11.5},
		{score: 180, want: 11.5},
		{score: 30, want: 7.5},
	}
	for _, tc := range cases {
		if got := ScoreToCredit(tc.score); got != tc.want {
			t.Fatalf("ScoreToCredit(%v) got=%v want=%v", tc.score, got, tc.want)
		}
	}
}

func TestComputeCredits_BoundsAndQuantization(t *testing.T) {
	t.Parallel()

	careers := []player.CareerStats{
		nil,
		{},
		eliteT20Batter(),
		{player.CareerTest: {Bowling: &player.BowlingCareer{Matches: 2, Wickets: 9}}},
		{player.CareerODI: {
			Batting: &player.BattingCareer{Matches: 3, Innings: 3, Runs: 0, Average: floatPtr(0), StrikeRate: floatPtr(0)},
			Bowling: &player.BowlingCareer{Matches: 3, Wickets: 5, Economy: floatPtr(12), Average: floatPtr(90), StrikeRate: floatPtr(80)},
		}},
	}
	roles := []player.Role{player.RoleBatsman, player.RoleBowler, player.RoleAllRounder, player.RoleWicketKeeper, player.RoleUnknown}
	targets := []match.Format{match.FormatT20, match.FormatODI, match.FormatTest}

	for _, career := range careers {
		for _, role := range roles {
			for _, target := range targets {
				got := ComputeCredits(role, career, target)
				if got < MinCredit || got > MaxCredit {
					t.Fatalf("credit out of bounds: role=%s target=%s got=%v", role, target, got)
				}
				if math.Mod(got*2, 1) != 0 {
					t.Fatalf("credit not quantized to 0.5: got=%v", got)
				}
			}
		}
	}
}

func TestComputeCredits_NoDataUsesDefaults(t *testing.T) {
	t.Parallel()

	// 0.9*50 + 0.1*30 = 48 -> 8.64 -> 8.5
	if got := ComputeCredits(player.RoleBatsman, nil, match.FormatT20); got != 8.5 {
		t.Fatalf("unexpected batsman default credit: got=%v want=8.5", got)
	}
	// 0.2*50 + 0.8*30 = 34 -> 7.87 -> 8.0
	if got := ComputeCredits(player.RoleBowler, nil, match.FormatT20); got != 8.0 {
		t.Fatalf("unexpected bowler default credit: got=%v want=8", got)
	}
}

func TestEvaluate_FormatRelevance(t *testing.T) {
	t.Parallel()

	career := eliteT20Batter()
	t20 := Evaluate(player.RoleBatsman, career, match.FormatT20)
	if t20.Credit < 10 {
		t.Fatalf("elite T20 batter should be premium in T20: got=%v", t20.Credit)
	}
	if len(t20.Formats) != 2 || t20.Formats[0].Format != player.CareerT20 || t20.Formats[1].Format != player.CareerT20I {
		t.Fatalf("unexpected format order: %+v", t20.Formats)
	}

	test := Evaluate(player.RoleBatsman, career, match.FormatTest)
	if test.BattingScore <= 0 || test.BattingScore > 100 {
		t.Fatalf("unexpected test batting score: %v", test.BattingScore)
	}
}

func TestEvaluate_BowlingThreshold(t *testing.T) {
	t.Parallel()

	career := player.CareerStats{
		player.CareerT20: {Bowling: &player.BowlingCareer{Matches: 10, Wickets: 4, Economy: floatPtr(6)}},
	}
	got := Evaluate(player.RoleBowler, career, match.FormatT20)
	if got.BowlingScore != defaultBowlingScore {
		t.Fatalf("bowling below wicket threshold must use default: got=%v", got.BowlingScore)
	}

	career[player.CareerT20].Bowling.Wickets = 20
	got = Evaluate(player.RoleBowler, career, match.FormatT20)
	// wickets/match 2 -> 1.0, economy 6 -> 1.0
	if got.BowlingScore != 100 {
		t.Fatalf("unexpected bowling score: got=%v want=100", got.BowlingScore)
	}
	if got.Credit != 11.0 {
		// 0.2*50 + 0.8*100 = 90 -> 10.95 -> 11.0
		t.Fatalf("unexpected credit: got=%v want=11", got.Credit)
	}
}

func TestEvaluate_AbsentFactorsRenormalize(t *testing.T) {
	t.Parallel()

	career := player.CareerStats{
		player.CareerODI: {Batting: &player.BattingCareer{Matches: 5, Innings: 5, Runs: 0, Average: floatPtr(50)}},
	}
	got := Evaluate(player.RoleBatsman, career, match.FormatODI)
	// average 1.0 at weight 0.35, runs 0.0 at weight 0.20
	want := 100 * 0.35 / 0.55
	if math.Abs(got.BattingScore-want) > 1e-9 {
		t.Fatalf("unexpected batting score: got=%v want=%v", got.BattingScore, want)
	}
}
