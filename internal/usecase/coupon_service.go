package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/daily-coupon/internal/domain/coupon"
	"github.com/riskibarqy/daily-coupon/internal/domain/matchday"
	"github.com/riskibarqy/daily-coupon/internal/platform/concurrency"
	idgen "github.com/riskibarqy/daily-coupon/internal/platform/id"
	"github.com/riskibarqy/daily-coupon/internal/platform/logging"
	"github.com/riskibarqy/daily-coupon/internal/platform/metrics"
)

// SubmitCouponInput is the incoming payload for create/replace coupon.
type SubmitCouponInput struct {
	UserID string
	Day    string
	Items  []coupon.RawItem
}

type CouponService struct {
	catalogRepo matchday.CatalogRepository
	couponRepo  coupon.Repository
	locks       *concurrency.KeyedMutex
	idGen       idgen.Generator
	publisher   EventPublisher
	metrics     *metrics.Recorder
	logger      *logging.Logger
	now         func() time.Time
}

// NewCouponService builds the coupon store. locks must be shared with the
// ScoringService so that every mutation of a (user, day) coupon is serialized.
func NewCouponService(
	catalogRepo matchday.CatalogRepository,
	couponRepo coupon.Repository,
	locks *concurrency.KeyedMutex,
	idGen idgen.Generator,
	publisher EventPublisher,
	recorder *metrics.Recorder,
	logger *logging.Logger,
) *CouponService {
	if logger == nil {
		logger = logging.Default()
	}
	if locks == nil {
		locks = concurrency.NewKeyedMutex()
	}
	if publisher == nil {
		publisher = NopEventPublisher{}
	}

	return &CouponService{
		catalogRepo: catalogRepo,
		couponRepo:  couponRepo,
		locks:       locks,
		idGen:       idGen,
		publisher:   publisher,
		metrics:     recorder,
		logger:      logger,
		now:         time.Now,
	}
}

// Submit creates the user's coupon for the day or replaces the picks of an
// open one. Items naming an unknown match or an unmapped outcome are dropped.
func (s *CouponService) Submit(ctx context.Context, input SubmitCouponInput) (result coupon.Coupon, err error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CouponService.Submit", couponSpanAttrs(input.UserID, input.Day)...)
	defer span.End()
	defer func() {
		recordSpanError(span, err)
		s.metrics.CouponOp("submit", opResult(err))
	}()

	userID, day, err := normalizeCouponKey(input.UserID, input.Day)
	if err != nil {
		return coupon.Coupon{}, err
	}

	unlock := s.locks.Lock(couponLockKey(userID, day))
	defer unlock()

	catalog, exists, err := s.catalogRepo.GetByDay(ctx, day)
	if err != nil {
		return coupon.Coupon{}, fmt.Errorf("get catalog day=%s: %w", day, err)
	}
	if !exists {
		return coupon.Coupon{}, coupon.ErrNoMatchesPublished
	}

	existing, exists, err := s.couponRepo.GetByUserAndDay(ctx, userID, day)
	if err != nil {
		return coupon.Coupon{}, fmt.Errorf("get existing coupon: %w", err)
	}
	if exists && !existing.Editable() {
		return coupon.Coupon{}, coupon.ErrCouponLocked
	}

	picks := coupon.NormalizePicks(catalog, input.Items)
	if len(picks) == 0 {
		return coupon.Coupon{}, coupon.ErrNoValidItems
	}

	now := s.now().UTC()
	c := coupon.Coupon{
		UserID:    userID,
		Day:       day,
		Picks:     picks,
		State:     coupon.StateOpen,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if exists {
		c.ID = existing.ID
		c.CreatedAt = existing.CreatedAt
	} else {
		c.ID, err = s.idGen.NewID()
		if err != nil {
			return coupon.Coupon{}, fmt.Errorf("generate coupon id: %w", err)
		}
	}

	if err := c.ValidateBasic(); err != nil {
		return coupon.Coupon{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := s.couponRepo.Upsert(ctx, c); err != nil {
		if errors.Is(err, coupon.ErrStateConflict) {
			return coupon.Coupon{}, coupon.ErrCouponLocked
		}
		return coupon.Coupon{}, fmt.Errorf("upsert coupon: %w", err)
	}

	s.logger.InfoContext(ctx, "coupon submitted",
		"coupon_id", c.ID,
		"user_id", userID,
		"day", day,
		"picks", len(c.Picks),
		"dropped", len(input.Items)-len(c.Picks),
	)
	s.publish(ctx, EventCouponSubmitted, c, 0)

	return coupon.Clone(c), nil
}

// Lock freezes the user's open coupon for the day.
func (s *CouponService) Lock(ctx context.Context, userID, day string) (result coupon.Coupon, err error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CouponService.Lock", couponSpanAttrs(userID, day)...)
	defer span.End()
	defer func() {
		recordSpanError(span, err)
		s.metrics.CouponOp("lock", opResult(err))
	}()

	userID, day, err = normalizeCouponKey(userID, day)
	if err != nil {
		return coupon.Coupon{}, err
	}

	unlock := s.locks.Lock(couponLockKey(userID, day))
	defer unlock()

	c, exists, err := s.couponRepo.GetByUserAndDay(ctx, userID, day)
	if err != nil {
		return coupon.Coupon{}, fmt.Errorf("get coupon: %w", err)
	}
	if !exists {
		return coupon.Coupon{}, coupon.ErrNoCoupon
	}
	if c.State != coupon.StateOpen {
		return coupon.Coupon{}, coupon.ErrAlreadyLocked
	}

	now := s.now().UTC()
	c.State = coupon.StateLocked
	c.LockedAt = &now
	c.UpdatedAt = now

	if err := s.couponRepo.UpdateState(ctx, c, coupon.StateOpen); err != nil {
		if errors.Is(err, coupon.ErrStateConflict) {
			return coupon.Coupon{}, coupon.ErrAlreadyLocked
		}
		return coupon.Coupon{}, fmt.Errorf("lock coupon: %w", err)
	}

	s.logger.InfoContext(ctx, "coupon locked", "coupon_id", c.ID, "user_id", userID, "day", day)
	s.publish(ctx, EventCouponLocked, c, 0)

	return c, nil
}

// GetToday returns the user's coupon for the day, if any.
func (s *CouponService) GetToday(ctx context.Context, userID, day string) (coupon.Coupon, bool, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CouponService.GetToday", couponSpanAttrs(userID, day)...)
	defer span.End()

	userID, day, err := normalizeCouponKey(userID, day)
	if err != nil {
		return coupon.Coupon{}, false, err
	}

	c, exists, err := s.couponRepo.GetByUserAndDay(ctx, userID, day)
	if err != nil {
		return coupon.Coupon{}, false, fmt.Errorf("get coupon: %w", err)
	}
	return c, exists, nil
}

func (s *CouponService) publish(ctx context.Context, eventType string, c coupon.Coupon, total int64) {
	publishCouponEvent(ctx, s.publisher, s.logger, s.now, eventType, c, total)
}

func publishCouponEvent(
	ctx context.Context,
	publisher EventPublisher,
	logger *logging.Logger,
	now func() time.Time,
	eventType string,
	c coupon.Coupon,
	total int64,
) {
	event := CouponEvent{
		Type:          eventType,
		CouponID:      c.ID,
		UserID:        c.UserID,
		Day:           c.Day,
		State:         string(c.State),
		PickCount:     len(c.Picks),
		AwardedPoints: c.AwardedPoints,
		TotalPoints:   total,
		OccurredAt:    now().UTC(),
	}
	if err := publisher.Publish(ctx, event); err != nil {
		logger.WarnContext(ctx, "publish coupon event failed",
			"event", eventType,
			"coupon_id", c.ID,
			"error", err,
		)
	}
}

func normalizeCouponKey(userID, day string) (string, string, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return "", "", fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	day, err := normalizeDay(day)
	if err != nil {
		return "", "", err
	}
	return userID, day, nil
}

func couponLockKey(userID, day string) string {
	return userID + "::" + day
}

func opResult(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, coupon.ErrNoMatchesPublished):
		return "no_matches"
	case errors.Is(err, coupon.ErrCouponLocked), errors.Is(err, coupon.ErrAlreadyLocked):
		return "locked"
	case errors.Is(err, coupon.ErrNoValidItems):
		return "no_valid_items"
	case errors.Is(err, coupon.ErrNoCoupon):
		return "no_coupon"
	case errors.Is(err, coupon.ErrNotLocked):
		return "not_locked"
	case errors.Is(err, ErrInvalidInput):
		return "invalid"
	case errors.Is(err, ErrDependencyUnavailable):
		return "unavailable"
	default:
		return "error"
	}
}
