package usecase

import (
	"context"
	"time"

	"github.com/riskibarqy/daily-coupon/internal/domain/matchday"
)

// CatalogProvider sources the matches and odds of a day. Implementations do
// not need to be idempotent; MatchdayService calls them at most once per day
// and keeps the first published catalog.
type CatalogProvider interface {
	FetchCatalog(ctx context.Context, day string) ([]matchday.Match, error)
}

// ResultProvider sources realized outcomes for a published catalog. Matches
// may be omitted; they stay unresolved.
type ResultProvider interface {
	FetchResults(ctx context.Context, catalog matchday.Catalog) (map[int64]matchday.Outcome, error)
}

const (
	EventCouponSubmitted = "coupon.submitted"
	EventCouponLocked    = "coupon.locked"
	EventCouponEvaluated = "coupon.evaluated"
)

// CouponEvent is emitted after a coupon mutation has been committed.
type CouponEvent struct {
	Type          string    `json:"type"`
	CouponID      string    `json:"coupon_id"`
	UserID        string    `json:"user_id"`
	Day           string    `json:"day"`
	State         string    `json:"state"`
	PickCount     int       `json:"pick_count"`
	AwardedPoints int64     `json:"awarded_points"`
	TotalPoints   int64     `json:"total_points,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// EventPublisher delivers coupon events. Delivery is best effort: a failed
// publish never rolls back the committed mutation.
type EventPublisher interface {
	Publish(ctx context.Context, event CouponEvent) error
}

type NopEventPublisher struct{}

func (NopEventPublisher) Publish(context.Context, CouponEvent) error { return nil }
