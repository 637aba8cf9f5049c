package coupon

import (
	"fmt"
	"time"

	"github.com/riskibarqy/daily-coupon/internal/domain/matchday"
)

// State is the lifecycle position of a coupon. States only move forward.
type State string

const (
	StateOpen      State = "open"
	StateLocked    State = "locked"
	StateEvaluated State = "evaluated"
)

var stateRank = map[State]int{
	StateOpen:      0,
	StateLocked:    1,
	StateEvaluated: 2,
}

func (s State) Valid() bool {
	_, ok := stateRank[s]
	return ok
}

// CanTransition reports whether s may move to next. Only single forward
// steps are allowed.
func (s State) CanTransition(next State) bool {
	from, ok := stateRank[s]
	if !ok {
		return false
	}
	to, ok := stateRank[next]
	if !ok {
		return false
	}
	return to == from+1
}

// Pick is one prediction inside a coupon. Odd is the catalog odd captured
// when the coupon was saved.
type Pick struct {
	MatchID int64
	Outcome matchday.Outcome
	Odd     float64
}

// Coupon is a user's prediction slip for one day.
type Coupon struct {
	ID            string
	UserID        string
	Day           string
	Picks         []Pick
	State         State
	AwardedPoints int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
	LockedAt      *time.Time
	EvaluatedAt   *time.Time
}

func (c Coupon) Editable() bool {
	return c.State == StateOpen
}

func (c Coupon) ValidateBasic() error {
	if c.ID == "" {
		return fmt.Errorf("coupon id is required")
	}
	if c.UserID == "" {
		return fmt.Errorf("user id is required")
	}
	if _, err := matchday.ParseDay(c.Day); err != nil {
		return err
	}
	if !c.State.Valid() {
		return fmt.Errorf("unknown coupon state %q", c.State)
	}
	if len(c.Picks) == 0 {
		return ErrNoValidItems
	}
	for _, pick := range c.Picks {
		if pick.MatchID <= 0 {
			return fmt.Errorf("pick match id must be greater than zero")
		}
		if _, ok := matchday.AllOutcomes[pick.Outcome]; !ok {
			return fmt.Errorf("pick for match %d has unknown outcome %q", pick.MatchID, pick.Outcome)
		}
		if pick.Odd <= 0 {
			return fmt.Errorf("pick for match %d has non-positive odd", pick.MatchID)
		}
	}
	if c.AwardedPoints < 0 {
		return fmt.Errorf("awarded points cannot be negative")
	}

	return nil
}

func Clone(c Coupon) Coupon {
	copied := c
	copied.Picks = append([]Pick(nil), c.Picks...)
	if c.LockedAt != nil {
		lockedAt := *c.LockedAt
		copied.LockedAt = &lockedAt
	}
	if c.EvaluatedAt != nil {
		evaluatedAt := *c.EvaluatedAt
		copied.EvaluatedAt = &evaluatedAt
	}
	return copied
}
