package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/riskibarqy/daily-coupon/internal/domain/coupon"
	"github.com/riskibarqy/daily-coupon/internal/domain/matchday"
	"github.com/riskibarqy/daily-coupon/internal/domain/user"
	"github.com/riskibarqy/daily-coupon/internal/platform/concurrency"
	"github.com/riskibarqy/daily-coupon/internal/platform/logging"
	"github.com/riskibarqy/daily-coupon/internal/platform/metrics"
)

// EvaluationResult is what Evaluate reports back to the caller.
type EvaluationResult struct {
	Coupon        coupon.Coupon
	Results       matchday.ResultSet
	AllCorrect    bool
	AwardedPoints int64
	TotalPoints   int64
	// AlreadyEvaluated is set when the coupon had been scored before this
	// call and no balance changed.
	AlreadyEvaluated bool
}

type ScoringService struct {
	couponRepo coupon.Repository
	userRepo   user.Repository
	matchdays  *MatchdayService
	locks      *concurrency.KeyedMutex
	publisher  EventPublisher
	metrics    *metrics.Recorder
	logger     *logging.Logger
	now        func() time.Time
}

func NewScoringService(
	couponRepo coupon.Repository,
	userRepo user.Repository,
	matchdays *MatchdayService,
	locks *concurrency.KeyedMutex,
	publisher EventPublisher,
	recorder *metrics.Recorder,
	logger *logging.Logger,
) *ScoringService {
	if logger == nil {
		logger = logging.Default()
	}
	if locks == nil {
		locks = concurrency.NewKeyedMutex()
	}
	if publisher == nil {
		publisher = NopEventPublisher{}
	}

	return &ScoringService{
		couponRepo: couponRepo,
		userRepo:   userRepo,
		matchdays:  matchdays,
		locks:      locks,
		publisher:  publisher,
		metrics:    recorder,
		logger:     logger,
		now:        time.Now,
	}
}

// Evaluate scores the user's locked coupon of the day and credits the award
// exactly once. Evaluating an already evaluated coupon returns the stored
// award without touching the balance.
func (s *ScoringService) Evaluate(ctx context.Context, userID, day string) (result EvaluationResult, err error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoringService.Evaluate", couponSpanAttrs(userID, day)...)
	defer span.End()
	defer func() {
		recordSpanError(span, err)
		s.metrics.CouponOp("evaluate", opResult(err))
	}()

	userID, day, err = normalizeCouponKey(userID, day)
	if err != nil {
		return EvaluationResult{}, err
	}

	unlock := s.locks.Lock(couponLockKey(userID, day))
	defer unlock()

	c, exists, err := s.couponRepo.GetByUserAndDay(ctx, userID, day)
	if err != nil {
		return EvaluationResult{}, fmt.Errorf("get coupon: %w", err)
	}
	if !exists {
		return EvaluationResult{}, coupon.ErrNoCoupon
	}

	switch c.State {
	case coupon.StateOpen:
		return EvaluationResult{}, coupon.ErrNotLocked
	case coupon.StateEvaluated:
		return s.storedEvaluation(ctx, c)
	}

	results, err := s.matchdays.Results(ctx, day)
	if err != nil {
		return EvaluationResult{}, err
	}

	eval := coupon.Score(c.Picks, results)
	now := s.now().UTC()
	c.State = coupon.StateEvaluated
	c.AwardedPoints = eval.AwardedPoints
	c.EvaluatedAt = &now
	c.UpdatedAt = now

	total, err := s.couponRepo.Settle(ctx, c)
	if err != nil {
		if !errors.Is(err, coupon.ErrStateConflict) {
			return EvaluationResult{}, fmt.Errorf("settle coupon: %w", err)
		}
		// Another process committed first.
		stored, exists, getErr := s.couponRepo.GetByUserAndDay(ctx, userID, day)
		if getErr != nil {
			return EvaluationResult{}, fmt.Errorf("get coupon after conflict: %w", getErr)
		}
		if !exists || stored.State != coupon.StateEvaluated {
			return EvaluationResult{}, fmt.Errorf("settle coupon: %w", err)
		}
		return s.storedEvaluation(ctx, stored)
	}

	s.metrics.CouponEvaluated(eval.AllCorrect, eval.AwardedPoints)
	s.logger.InfoContext(ctx, "coupon evaluated",
		"coupon_id", c.ID,
		"user_id", userID,
		"day", day,
		"all_correct", eval.AllCorrect,
		"awarded_points", eval.AwardedPoints,
		"total_points", total,
	)
	publishCouponEvent(ctx, s.publisher, s.logger, s.now, EventCouponEvaluated, c, total)

	return EvaluationResult{
		Coupon:        c,
		Results:       results,
		AllCorrect:    eval.AllCorrect,
		AwardedPoints: eval.AwardedPoints,
		TotalPoints:   total,
	}, nil
}

func (s *ScoringService) storedEvaluation(ctx context.Context, c coupon.Coupon) (EvaluationResult, error) {
	results, err := s.matchdays.Results(ctx, c.Day)
	if err != nil {
		return EvaluationResult{}, err
	}

	u, exists, err := s.userRepo.GetByID(ctx, c.UserID)
	if err != nil {
		return EvaluationResult{}, fmt.Errorf("get user: %w", err)
	}
	if !exists {
		return EvaluationResult{}, fmt.Errorf("%w: user=%s", ErrNotFound, c.UserID)
	}

	return EvaluationResult{
		Coupon:           c,
		Results:          results,
		AllCorrect:       coupon.Score(c.Picks, results).AllCorrect,
		AwardedPoints:    c.AwardedPoints,
		TotalPoints:      u.Points,
		AlreadyEvaluated: true,
	}, nil
}
