package coupon

import (
	"testing"

	"github.com/riskibarqy/daily-coupon/internal/domain/matchday"
)

func testCatalog() matchday.Catalog {
	return matchday.Catalog{
		Day: "2026-02-11",
		Matches: []matchday.Match{
			{ID: 1, League: "Süper Lig", HomeTeam: "Galatasaray", AwayTeam: "Fenerbahçe", Odds: matchday.Odds{Home: 2.0, Draw: 3.0, Away: 3.5}},
			{ID: 2, League: "La Liga", HomeTeam: "Real Madrid", AwayTeam: "Barcelona", Odds: matchday.Odds{Home: 1.5, Draw: 3.2, Away: 2.4}},
			{ID: 3, League: "Serie A", HomeTeam: "Milan", AwayTeam: "Inter", Odds: matchday.Odds{Home: 2.25, Draw: 2.9, Away: 2.1}},
		},
	}
}

func TestNormalizePicks(t *testing.T) {
	catalog := testCatalog()

	tests := []struct {
		name  string
		items []RawItem
		want  []Pick
	}{
		{
			name:  "unknown match dropped",
			items: []RawItem{{MatchID: 9999, Prediction: "1"}, {MatchID: 1, Prediction: "1"}},
			want:  []Pick{{MatchID: 1, Outcome: matchday.OutcomeHome, Odd: 2.0}},
		},
		{
			name:  "unmapped label dropped",
			items: []RawItem{{MatchID: 1, Prediction: "home"}, {MatchID: 2, Prediction: "x"}, {MatchID: 3, Prediction: "2"}},
			want:  []Pick{{MatchID: 3, Outcome: matchday.OutcomeAway, Odd: 2.1}},
		},
		{
			name:  "order preserved and odds captured",
			items: []RawItem{{MatchID: 2, Prediction: "X"}, {MatchID: 1, Prediction: "2"}},
			want: []Pick{
				{MatchID: 2, Outcome: matchday.OutcomeDraw, Odd: 3.2},
				{MatchID: 1, Outcome: matchday.OutcomeAway, Odd: 3.5},
			},
		},
		{
			name:  "duplicate match keeps last prediction at first position",
			items: []RawItem{{MatchID: 1, Prediction: "1"}, {MatchID: 2, Prediction: "1"}, {MatchID: 1, Prediction: "X"}},
			want: []Pick{
				{MatchID: 1, Outcome: matchday.OutcomeDraw, Odd: 3.0},
				{MatchID: 2, Outcome: matchday.OutcomeHome, Odd: 1.5},
			},
		},
		{
			name:  "nothing valid",
			items: []RawItem{{MatchID: 42, Prediction: "1"}},
			want:  []Pick{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizePicks(catalog, tt.items)
			if len(got) != len(tt.want) {
				t.Fatalf("expected %d picks, got %d: %+v", len(tt.want), len(got), got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("pick %d: expected %+v, got %+v", i, tt.want[i], got[i])
				}
			}
		})
	}
}

func TestScore(t *testing.T) {
	picks := []Pick{
		{MatchID: 1, Outcome: matchday.OutcomeHome, Odd: 2.0},
		{MatchID: 2, Outcome: matchday.OutcomeDraw, Odd: 3.2},
	}

	tests := []struct {
		name       string
		outcomes   map[int64]matchday.Outcome
		allCorrect bool
		award      int64
		missed     int
	}{
		{
			name:       "all correct compounds odds",
			outcomes:   map[int64]matchday.Outcome{1: matchday.OutcomeHome, 2: matchday.OutcomeDraw, 3: matchday.OutcomeAway},
			allCorrect: true,
			award:      64,
		},
		{
			name:     "one wrong pick zeroes the award",
			outcomes: map[int64]matchday.Outcome{1: matchday.OutcomeHome, 2: matchday.OutcomeAway},
			award:    0,
			missed:   1,
		},
		{
			name:     "unresolved match counts as miss",
			outcomes: map[int64]matchday.Outcome{1: matchday.OutcomeHome},
			award:    0,
			missed:   1,
		},
		{
			name:     "empty result set",
			outcomes: map[int64]matchday.Outcome{},
			award:    0,
			missed:   2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eval := Score(picks, matchday.ResultSet{Day: "2026-02-11", Outcomes: tt.outcomes})
			if eval.AllCorrect != tt.allCorrect {
				t.Fatalf("expected all correct=%t, got %t", tt.allCorrect, eval.AllCorrect)
			}
			if eval.AwardedPoints != tt.award {
				t.Fatalf("expected award %d, got %d", tt.award, eval.AwardedPoints)
			}
			if len(eval.MissedMatchIDs) != tt.missed {
				t.Fatalf("expected %d missed picks, got %v", tt.missed, eval.MissedMatchIDs)
			}
		})
	}
}

func TestScore_NoPicksNeverWins(t *testing.T) {
	eval := Score(nil, matchday.ResultSet{Outcomes: map[int64]matchday.Outcome{1: matchday.OutcomeHome}})
	if eval.AllCorrect || eval.AwardedPoints != 0 {
		t.Fatalf("expected empty coupon to score zero, got %+v", eval)
	}
}

func TestAward(t *testing.T) {
	tests := []struct {
		name string
		odds []float64
		want int64
	}{
		{name: "single pick", odds: []float64{2.0}, want: 20},
		{name: "product of odds", odds: []float64{1.5, 2.5, 3.0}, want: 113},
		{name: "rounds down below half", odds: []float64{1.53}, want: 15},
		{name: "half rounds away from zero", odds: []float64{1.25}, want: 13},
		{name: "rounds up above half", odds: []float64{2.58}, want: 26},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			picks := make([]Pick, 0, len(tt.odds))
			for i, odd := range tt.odds {
				picks = append(picks, Pick{MatchID: int64(i + 1), Outcome: matchday.OutcomeHome, Odd: odd})
			}
			if got := Award(picks); got != tt.want {
				t.Fatalf("expected award %d, got %d", tt.want, got)
			}
		})
	}
}

func TestState_CanTransition(t *testing.T) {
	tests := []struct {
		from State
		to   State
		want bool
	}{
		{from: StateOpen, to: StateLocked, want: true},
		{from: StateLocked, to: StateEvaluated, want: true},
		{from: StateOpen, to: StateEvaluated, want: false},
		{from: StateLocked, to: StateOpen, want: false},
		{from: StateEvaluated, to: StateLocked, want: false},
		{from: StateEvaluated, to: StateEvaluated, want: false},
		{from: State("void"), to: StateLocked, want: false},
	}

	for _, tt := range tests {
		if got := tt.from.CanTransition(tt.to); got != tt.want {
			t.Fatalf("%s -> %s: expected %t, got %t", tt.from, tt.to, tt.want, got)
		}
	}
}
