package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/riskibarqy/daily-coupon/internal/domain/coupon"
)

// CouponRepository keeps coupons in memory. Settle credits balances through
// the UserRepository it was built with, while holding the coupon lock.
type CouponRepository struct {
	mu    sync.RWMutex
	items map[string]coupon.Coupon
	users *UserRepository
}

func NewCouponRepository(users *UserRepository) *CouponRepository {
	return &CouponRepository{
		items: make(map[string]coupon.Coupon),
		users: users,
	}
}

func (r *CouponRepository) GetByUserAndDay(_ context.Context, userID, day string) (coupon.Coupon, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.items[couponKey(userID, day)]
	if !ok {
		return coupon.Coupon{}, false, nil
	}
	return coupon.Clone(c), true, nil
}

func (r *CouponRepository) ListByDayAndState(_ context.Context, day string, state coupon.State) ([]coupon.Coupon, error) {
	r.mu.RLock()
	out := make([]coupon.Coupon, 0)
	for _, c := range r.items {
		if c.Day == day && c.State == state {
			out = append(out, coupon.Clone(c))
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *CouponRepository) Upsert(_ context.Context, c coupon.Coupon) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := couponKey(c.UserID, c.Day)
	if existing, ok := r.items[key]; ok && !existing.Editable() {
		return fmt.Errorf("%w: coupon %s is %s", coupon.ErrStateConflict, existing.ID, existing.State)
	}
	r.items[key] = coupon.Clone(c)
	return nil
}

func (r *CouponRepository) UpdateState(_ context.Context, c coupon.Coupon, from coupon.State) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := couponKey(c.UserID, c.Day)
	existing, ok := r.items[key]
	if !ok || existing.State != from || !from.CanTransition(c.State) {
		return fmt.Errorf("%w: expected %s -> %s", coupon.ErrStateConflict, from, c.State)
	}
	r.items[key] = coupon.Clone(c)
	return nil
}

func (r *CouponRepository) Settle(_ context.Context, c coupon.Coupon) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := couponKey(c.UserID, c.Day)
	existing, ok := r.items[key]
	if !ok || existing.State != coupon.StateLocked || c.State != coupon.StateEvaluated {
		return 0, fmt.Errorf("%w: settle requires a locked coupon", coupon.ErrStateConflict)
	}

	total, err := r.users.credit(c.UserID, c.AwardedPoints)
	if err != nil {
		return 0, fmt.Errorf("credit user: %w", err)
	}
	r.items[key] = coupon.Clone(c)
	return total, nil
}

func couponKey(userID, day string) string {
	return userID + "::" + day
}
