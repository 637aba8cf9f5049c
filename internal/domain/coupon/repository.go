package coupon

import "context"

// Repository describes coupon persistence needs from use cases.
//
// Upsert creates the (user, day) coupon or replaces the picks of an open one;
// it never overwrites a coupon that is past open.
// UpdateState and Settle are compare-and-set commit points: they fail with
// ErrStateConflict when the stored coupon is not in the expected state.
// Settle moves a locked coupon to evaluated, stores the award and credits the
// owner's balance in one atomic step, returning the owner's new balance.
type Repository interface {
	GetByUserAndDay(ctx context.Context, userID, day string) (Coupon, bool, error)
	ListByDayAndState(ctx context.Context, day string, state State) ([]Coupon, error)
	Upsert(ctx context.Context, c Coupon) error
	UpdateState(ctx context.Context, c Coupon, from State) error
	Settle(ctx context.Context, c Coupon) (int64, error)
}
