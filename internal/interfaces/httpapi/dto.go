package httpapi

import (
	"strconv"
	"time"

	"github.com/riskibarqy/daily-coupon/internal/domain/coupon"
	"github.com/riskibarqy/daily-coupon/internal/domain/matchday"
	"github.com/riskibarqy/daily-coupon/internal/domain/user"
	"github.com/riskibarqy/daily-coupon/internal/usecase"
)

type registerRequest struct {
	Name string `json:"name" validate:"required,max=64"`
}

type loginRequest struct {
	Token string `json:"token" validate:"required"`
}

type couponItemRequest struct {
	MatchID    int64  `json:"match_id"`
	Prediction string `json:"prediction"`
}

type submitCouponRequest struct {
	Items []couponItemRequest `json:"items" validate:"max=100"`
}

type settleJobRequest struct {
	Day string `json:"day" validate:"omitempty,datetime=2006-01-02"`
}

type accountDTO struct {
	UserID string `json:"user_id"`
	Token  string `json:"token,omitempty"`
	Name   string `json:"name"`
	Points int64  `json:"points"`
}

type matchDTO struct {
	ID       int64   `json:"id"`
	League   string  `json:"league"`
	HomeTeam string  `json:"home_team"`
	AwayTeam string  `json:"away_team"`
	Odd1     float64 `json:"odd_1"`
	OddX     float64 `json:"odd_x"`
	Odd2     float64 `json:"odd_2"`
}

type matchesDTO struct {
	Date    string     `json:"date"`
	Matches []matchDTO `json:"matches"`
}

type couponItemDTO struct {
	MatchID    int64   `json:"match_id"`
	Prediction string  `json:"prediction"`
	Odd        float64 `json:"odd"`
}

type couponDTO struct {
	ID            string          `json:"id"`
	UserID        string          `json:"user_id"`
	Date          string          `json:"date"`
	Items         []couponItemDTO `json:"items"`
	State         string          `json:"state"`
	Locked        bool            `json:"locked"`
	Evaluated     bool            `json:"evaluated"`
	TotalOdd      float64         `json:"total_odd"`
	GainedPoints  int64           `json:"gained_points"`
	CreatedAt     string          `json:"created_at"`
	UpdatedAt     string          `json:"updated_at"`
	LockedAt      string          `json:"locked_at,omitempty"`
	EvaluatedAt   string          `json:"evaluated_at,omitempty"`
	PotentialGain int64           `json:"potential_gain"`
}

type todayCouponDTO struct {
	Date   string     `json:"date"`
	Coupon *couponDTO `json:"coupon"`
}

type evaluationDTO struct {
	Message      string            `json:"message,omitempty"`
	Coupon       couponDTO         `json:"coupon"`
	Results      map[string]string `json:"results"`
	AllCorrect   bool              `json:"all_correct"`
	GainedPoints int64             `json:"gained_points"`
	TotalPoints  int64             `json:"total_points"`
}

type leaderboardEntryDTO struct {
	Rank   int    `json:"rank"`
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Points int64  `json:"points"`
}

type leaderboardDTO struct {
	Players []leaderboardEntryDTO `json:"players"`
}

type settlementItemDTO struct {
	CouponID      string `json:"coupon_id"`
	UserID        string `json:"user_id"`
	Status        string `json:"status"`
	AwardedPoints int64  `json:"awarded_points"`
	Message       string `json:"message,omitempty"`
}

type settlementDTO struct {
	Day        string              `json:"day"`
	Total      int                 `json:"total"`
	Won        int                 `json:"won"`
	Lost       int                 `json:"lost"`
	Skipped    int                 `json:"skipped"`
	Failed     int                 `json:"failed"`
	DurationMs int64               `json:"duration_ms"`
	Items      []settlementItemDTO `json:"items"`
}

func accountToDTO(u user.User, withToken bool) accountDTO {
	out := accountDTO{UserID: u.ID, Name: u.Name, Points: u.Points}
	if withToken {
		out.Token = u.Token
	}
	return out
}

func catalogToDTO(c matchday.Catalog) matchesDTO {
	items := make([]matchDTO, 0, len(c.Matches))
	for _, m := range c.Matches {
		items = append(items, matchDTO{
			ID:       m.ID,
			League:   m.League,
			HomeTeam: m.HomeTeam,
			AwayTeam: m.AwayTeam,
			Odd1:     m.Odds.Home,
			OddX:     m.Odds.Draw,
			Odd2:     m.Odds.Away,
		})
	}
	return matchesDTO{Date: c.Day, Matches: items}
}

func couponToDTO(c coupon.Coupon) couponDTO {
	items := make([]couponItemDTO, 0, len(c.Picks))
	for _, p := range c.Picks {
		items = append(items, couponItemDTO{MatchID: p.MatchID, Prediction: string(p.Outcome), Odd: p.Odd})
	}

	return couponDTO{
		ID:            c.ID,
		UserID:        c.UserID,
		Date:          c.Day,
		Items:         items,
		State:         string(c.State),
		Locked:        c.State != coupon.StateOpen,
		Evaluated:     c.State == coupon.StateEvaluated,
		TotalOdd:      coupon.TotalOdd(c.Picks),
		GainedPoints:  c.AwardedPoints,
		PotentialGain: coupon.Award(c.Picks),
		CreatedAt:     formatTime(c.CreatedAt),
		UpdatedAt:     formatTime(c.UpdatedAt),
		LockedAt:      formatOptionalTime(c.LockedAt),
		EvaluatedAt:   formatOptionalTime(c.EvaluatedAt),
	}
}

func evaluationToDTO(res usecase.EvaluationResult) evaluationDTO {
	results := make(map[string]string, len(res.Results.Outcomes))
	for id, outcome := range res.Results.Outcomes {
		results[strconv.FormatInt(id, 10)] = string(outcome)
	}

	out := evaluationDTO{
		Coupon:       couponToDTO(res.Coupon),
		Results:      results,
		AllCorrect:   res.AllCorrect,
		GainedPoints: res.AwardedPoints,
		TotalPoints:  res.TotalPoints,
	}
	if res.AlreadyEvaluated {
		out.Message = "Already evaluated"
	}
	return out
}

func leaderboardToDTO(entries []usecase.LeaderboardEntry) leaderboardDTO {
	players := make([]leaderboardEntryDTO, 0, len(entries))
	for _, e := range entries {
		players = append(players, leaderboardEntryDTO{Rank: e.Rank, UserID: e.UserID, Name: e.Name, Points: e.Points})
	}
	return leaderboardDTO{Players: players}
}

func settlementToDTO(res usecase.SettlementResult) settlementDTO {
	items := make([]settlementItemDTO, 0, len(res.Items))
	for _, it := range res.Items {
		items = append(items, settlementItemDTO{
			CouponID:      it.CouponID,
			UserID:        it.UserID,
			Status:        it.Status,
			AwardedPoints: it.AwardedPoints,
			Message:       it.Message,
		})
	}

	return settlementDTO{
		Day:        res.Day,
		Total:      res.Total,
		Won:        res.WonCount,
		Lost:       res.LostCount,
		Skipped:    res.SkippedCount,
		Failed:     res.FailedCount,
		DurationMs: res.DurationMs,
		Items:      items,
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func formatOptionalTime(v *time.Time) string {
	if v == nil {
		return ""
	}
	return formatTime(*v)
}
