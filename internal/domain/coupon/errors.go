package coupon

import "errors"

var (
	ErrNoMatchesPublished = errors.New("no matches published for day")
	ErrCouponLocked       = errors.New("coupon already locked")
	ErrAlreadyLocked      = errors.New("coupon is already locked")
	ErrNoValidItems       = errors.New("no valid items")
	ErrNoCoupon           = errors.New("no coupon for day")
	ErrNotLocked          = errors.New("coupon must be locked first")

	// ErrStateConflict is returned by repositories when a compare-and-set on
	// the coupon state finds a different state than expected.
	ErrStateConflict = errors.New("coupon state conflict")
)
