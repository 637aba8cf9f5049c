package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/daily-coupon/internal/domain/coupon"
	qb "github.com/riskibarqy/daily-coupon/internal/platform/querybuilder"
)

const couponsTable = "coupons"

var couponColumns = qb.Columns(couponTableModel{})

// upsertCouponConflict replaces picks of an open coupon only. A coupon past
// open makes the upsert return no row.
const upsertCouponConflict = `(user_public_id, day) DO UPDATE SET
    picks = EXCLUDED.picks,
    updated_at = EXCLUDED.updated_at
WHERE coupons.state = 'open'`

type CouponRepository struct {
	db *sqlx.DB
}

func NewCouponRepository(db *sqlx.DB) *CouponRepository {
	return &CouponRepository{db: db}
}

func (r *CouponRepository) GetByUserAndDay(ctx context.Context, userID, day string) (coupon.Coupon, bool, error) {
	query, args, err := qb.Select(couponColumns...).
		From(couponsTable).
		Where(qb.Eq("user_public_id", userID), qb.Eq("day", day)).
		ToSQL()
	if err != nil {
		return coupon.Coupon{}, false, fmt.Errorf("build select coupon query: %w", err)
	}

	var row couponTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return coupon.Coupon{}, false, nil
		}
		return coupon.Coupon{}, false, fmt.Errorf("get coupon: %w", err)
	}

	c, err := row.toDomain()
	if err != nil {
		return coupon.Coupon{}, false, err
	}
	return c, true, nil
}

func (r *CouponRepository) ListByDayAndState(ctx context.Context, day string, state coupon.State) ([]coupon.Coupon, error) {
	query, args, err := qb.Select(couponColumns...).
		From(couponsTable).
		Where(qb.Eq("day", day), qb.Eq("state", string(state))).
		OrderBy("created_at ASC", "id ASC").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list coupons query: %w", err)
	}

	var rows []couponTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list coupons by day and state: %w", err)
	}

	out := make([]coupon.Coupon, 0, len(rows))
	for _, row := range rows {
		c, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func (r *CouponRepository) Upsert(ctx context.Context, c coupon.Coupon) error {
	picks, err := encodePicks(c.Picks)
	if err != nil {
		return err
	}
	builder, err := qb.InsertModel(couponsTable, couponInsertModel{
		PublicID:      c.ID,
		UserID:        c.UserID,
		Day:           c.Day,
		Picks:         picks,
		State:         string(c.State),
		AwardedPoints: c.AwardedPoints,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	})
	if err != nil {
		return err
	}
	query, args, err := builder.OnConflict(upsertCouponConflict).Returning("public_id").ToSQL()
	if err != nil {
		return fmt.Errorf("build upsert coupon query: %w", err)
	}

	var publicID string
	if err := r.db.GetContext(ctx, &publicID, query, args...); err != nil {
		if isNotFound(err) {
			return fmt.Errorf("%w: coupon for %s on %s is not open", coupon.ErrStateConflict, c.UserID, c.Day)
		}
		return fmt.Errorf("upsert coupon: %w", err)
	}
	return nil
}

func (r *CouponRepository) UpdateState(ctx context.Context, c coupon.Coupon, from coupon.State) error {
	if !from.CanTransition(c.State) {
		return fmt.Errorf("%w: expected %s -> %s", coupon.ErrStateConflict, from, c.State)
	}

	query, args, err := qb.Update(couponsTable).
		Set("state", string(c.State)).
		Set("locked_at", toNullTime(c.LockedAt)).
		Set("updated_at", c.UpdatedAt).
		Where(
			qb.Eq("user_public_id", c.UserID),
			qb.Eq("day", c.Day),
			qb.Eq("state", string(from)),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update coupon state query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update coupon state: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update coupon state rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: expected %s -> %s", coupon.ErrStateConflict, from, c.State)
	}
	return nil
}

// Settle evaluates a locked coupon and credits its owner in one transaction.
func (r *CouponRepository) Settle(ctx context.Context, c coupon.Coupon) (int64, error) {
	if c.State != coupon.StateEvaluated {
		return 0, fmt.Errorf("%w: settle requires an evaluated coupon", coupon.ErrStateConflict)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx for coupon settle: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	settleQuery, settleArgs, err := qb.Update(couponsTable).
		Set("state", string(coupon.StateEvaluated)).
		Set("awarded_points", c.AwardedPoints).
		Set("evaluated_at", toNullTime(c.EvaluatedAt)).
		Set("updated_at", c.UpdatedAt).
		Where(
			qb.Eq("user_public_id", c.UserID),
			qb.Eq("day", c.Day),
			qb.Eq("state", string(coupon.StateLocked)),
		).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build settle coupon query: %w", err)
	}

	res, err := tx.ExecContext(ctx, settleQuery, settleArgs...)
	if err != nil {
		return 0, fmt.Errorf("settle coupon: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("settle coupon rows affected: %w", err)
	}
	if affected == 0 {
		return 0, fmt.Errorf("%w: settle requires a locked coupon", coupon.ErrStateConflict)
	}

	creditQuery, creditArgs, err := qb.Update(usersTable).
		SetExpr("points", "points + ?", c.AwardedPoints).
		Where(qb.Eq("public_id", c.UserID)).
		Returning("points").
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build credit user query: %w", err)
	}

	var total int64
	if err := tx.GetContext(ctx, &total, creditQuery, creditArgs...); err != nil {
		if isNotFound(err) {
			return 0, fmt.Errorf("credit user %s: user not found", c.UserID)
		}
		return 0, fmt.Errorf("credit user %s: %w", c.UserID, err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit coupon settle: %w", err)
	}
	return total, nil
}
