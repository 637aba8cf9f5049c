package httpapi

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	sonic "github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/daily-coupon/internal/platform/logging"
	"github.com/riskibarqy/daily-coupon/internal/usecase"
)

const maxRequestBodyBytes = 1 << 20

type Handler struct {
	userService        *usecase.UserService
	matchdayService    *usecase.MatchdayService
	couponService      *usecase.CouponService
	scoringService     *usecase.ScoringService
	leaderboardService *usecase.LeaderboardService
	settlementService  *usecase.SettlementService
	logger             *logging.Logger
	validator          *validator.Validate
}

func NewHandler(
	userService *usecase.UserService,
	matchdayService *usecase.MatchdayService,
	couponService *usecase.CouponService,
	scoringService *usecase.ScoringService,
	leaderboardService *usecase.LeaderboardService,
	settlementService *usecase.SettlementService,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		userService:        userService,
		matchdayService:    matchdayService,
		couponService:      couponService,
		scoringService:     scoringService,
		leaderboardService: leaderboardService,
		settlementService:  settlementService,
		logger:             logger,
		validator:          validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}
	return nil
}

var strictJSON = sonic.Config{DisallowUnknownFields: true}.Froze()

// decodeAndValidate reads a JSON body into dst and validates it. An empty
// body is accepted when allowEmpty is set.
func (h *Handler) decodeAndValidate(r *http.Request, dst any, allowEmpty bool) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBodyBytes))
	if err != nil {
		return fmt.Errorf("%w: read request body: %v", usecase.ErrInvalidInput, err)
	}

	if len(bytes.TrimSpace(body)) == 0 {
		if !allowEmpty {
			return fmt.Errorf("%w: request body is required", usecase.ErrInvalidInput)
		}
	} else if err := strictJSON.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}

	return h.validateRequest(r.Context(), dst)
}

func (h *Handler) principal(ctx context.Context) (string, error) {
	return userIDFromContext(ctx)
}
