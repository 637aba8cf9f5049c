package coupon

import (
	"math"

	"github.com/riskibarqy/daily-coupon/internal/domain/matchday"
)

// PointsMultiplier scales the compounded odd of a winning coupon.
const PointsMultiplier = 10

// RawItem is an unvalidated (match, prediction) pair as submitted by a user.
type RawItem struct {
	MatchID    int64
	Prediction string
}

// NormalizePicks resolves raw items against the day's catalog. Items with an
// unknown match or an unmapped prediction are dropped. When the same match is
// submitted more than once the last prediction wins and keeps the position of
// the first occurrence. The odd of every pick is captured from the catalog.
func NormalizePicks(catalog matchday.Catalog, items []RawItem) []Pick {
	picks := make([]Pick, 0, len(items))
	indexByMatch := make(map[int64]int, len(items))

	for _, item := range items {
		m, ok := catalog.MatchByID(item.MatchID)
		if !ok {
			continue
		}
		outcome, ok := matchday.ParseOutcome(item.Prediction)
		if !ok {
			continue
		}
		odd, ok := m.Odds.For(outcome)
		if !ok {
			continue
		}

		pick := Pick{MatchID: m.ID, Outcome: outcome, Odd: odd}
		if idx, exists := indexByMatch[m.ID]; exists {
			picks[idx] = pick
			continue
		}
		indexByMatch[m.ID] = len(picks)
		picks = append(picks, pick)
	}

	return picks
}

// Evaluation is the outcome of scoring one coupon against a result set.
type Evaluation struct {
	AllCorrect    bool
	TotalOdd      float64
	AwardedPoints int64
	// MissedMatchIDs lists picks that were wrong or unresolved, in pick order.
	MissedMatchIDs []int64
}

// Score checks every pick against results. A coupon wins only when all picks
// hit; an unresolved match counts as a miss. The award of a winning coupon is
// Award(picks), otherwise zero.
func Score(picks []Pick, results matchday.ResultSet) Evaluation {
	eval := Evaluation{
		AllCorrect: len(picks) > 0,
		TotalOdd:   TotalOdd(picks),
	}

	for _, pick := range picks {
		outcome, ok := results.OutcomeOf(pick.MatchID)
		if !ok || outcome != pick.Outcome {
			eval.AllCorrect = false
			eval.MissedMatchIDs = append(eval.MissedMatchIDs, pick.MatchID)
		}
	}

	if eval.AllCorrect {
		eval.AwardedPoints = Award(picks)
	}

	return eval
}

// TotalOdd multiplies the captured odds in pick order, starting from 1.
func TotalOdd(picks []Pick) float64 {
	total := 1.0
	for _, pick := range picks {
		total *= pick.Odd
	}
	return total
}

// Award returns round(10 * product of odds), rounding half away from zero.
func Award(picks []Pick) int64 {
	return int64(math.Round(TotalOdd(picks) * PointsMultiplier))
}
