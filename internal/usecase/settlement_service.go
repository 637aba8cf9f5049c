package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/riskibarqy/daily-coupon/internal/domain/coupon"
	"github.com/riskibarqy/daily-coupon/internal/platform/logging"
	"github.com/riskibarqy/daily-coupon/internal/platform/metrics"
)

const defaultSettlementWorkers = 4

const (
	settleStatusWon     = "won"
	settleStatusLost    = "lost"
	settleStatusSkipped = "skipped"
	settleStatusFailed  = "failed"
)

type SettlementItem struct {
	CouponID      string
	UserID        string
	Status        string
	AwardedPoints int64
	Message       string
}

type SettlementResult struct {
	Day          string
	Total        int
	WonCount     int
	LostCount    int
	SkippedCount int
	FailedCount  int
	Items        []SettlementItem
	DurationMs   int64
}

// SettlementService evaluates every locked coupon of a day in the background
// so users do not have to call evaluate themselves.
type SettlementService struct {
	couponRepo coupon.Repository
	scoring    *ScoringService
	workers    int
	metrics    *metrics.Recorder
	logger     *logging.Logger
}

func NewSettlementService(
	couponRepo coupon.Repository,
	scoring *ScoringService,
	workers int,
	recorder *metrics.Recorder,
	logger *logging.Logger,
) *SettlementService {
	if logger == nil {
		logger = logging.Default()
	}
	if workers <= 0 {
		workers = defaultSettlementWorkers
	}

	return &SettlementService{
		couponRepo: couponRepo,
		scoring:    scoring,
		workers:    workers,
		metrics:    recorder,
		logger:     logger,
	}
}

func (s *SettlementService) SettleDay(ctx context.Context, day string) (SettlementResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SettlementService.SettleDay", couponSpanAttrs("", day)...)
	defer span.End()

	start := time.Now()
	day, err := normalizeDay(day)
	if err != nil {
		return SettlementResult{}, err
	}

	coupons, err := s.couponRepo.ListByDayAndState(ctx, day, coupon.StateLocked)
	if err != nil {
		return SettlementResult{}, fmt.Errorf("list locked coupons day=%s: %w", day, err)
	}

	result := SettlementResult{Day: day, Total: len(coupons)}
	if len(coupons) == 0 {
		result.Items = []SettlementItem{}
		return result, nil
	}

	// Fail fast when results cannot be materialized instead of failing every
	// coupon with the same error.
	if _, err := s.scoring.matchdays.Results(ctx, day); err != nil {
		return SettlementResult{}, err
	}

	workerCount := s.workers
	if workerCount > len(coupons) {
		workerCount = len(coupons)
	}

	pool, err := ants.NewPool(workerCount)
	if err != nil {
		return SettlementResult{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	items := make(chan SettlementItem, len(coupons))
	var wonCount, lostCount, skippedCount, failedCount atomic.Int32

	var workers sync.WaitGroup
	for _, c := range coupons {
		c := c
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			item := SettlementItem{CouponID: c.ID, UserID: c.UserID}
			eval, err := s.scoring.Evaluate(ctx, c.UserID, day)
			switch {
			case err != nil:
				item.Status = settleStatusFailed
				item.Message = err.Error()
				failedCount.Add(1)
				s.logger.WarnContext(ctx, "settle coupon failed", "coupon_id", c.ID, "day", day, "error", err)
			case eval.AlreadyEvaluated:
				item.Status = settleStatusSkipped
				item.AwardedPoints = eval.AwardedPoints
				skippedCount.Add(1)
			case eval.AllCorrect:
				item.Status = settleStatusWon
				item.AwardedPoints = eval.AwardedPoints
				wonCount.Add(1)
			default:
				item.Status = settleStatusLost
				lostCount.Add(1)
			}
			items <- item
		}); err != nil {
			workers.Done()
			workers.Wait()
			return SettlementResult{}, fmt.Errorf("submit task to worker pool: %w", err)
		}
	}

	workers.Wait()
	close(items)

	for item := range items {
		result.Items = append(result.Items, item)
	}
	sort.SliceStable(result.Items, func(i, j int) bool {
		return result.Items[i].CouponID < result.Items[j].CouponID
	})

	result.WonCount = int(wonCount.Load())
	result.LostCount = int(lostCount.Load())
	result.SkippedCount = int(skippedCount.Load())
	result.FailedCount = int(failedCount.Load())
	elapsed := time.Since(start)
	result.DurationMs = elapsed.Milliseconds()
	s.metrics.SettlementFinished(elapsed)

	s.logger.InfoContext(ctx, "settlement finished",
		"day", day,
		"total", result.Total,
		"won", result.WonCount,
		"lost", result.LostCount,
		"skipped", result.SkippedCount,
		"failed", result.FailedCount,
		"duration_ms", result.DurationMs,
	)
	return result, nil
}
