package httpapi

import (
	"net/http"

	"github.com/riskibarqy/daily-coupon/internal/domain/coupon"
	"github.com/riskibarqy/daily-coupon/internal/usecase"
)

func (h *Handler) TodayMatches(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.TodayMatches")
	defer span.End()

	day := h.matchdayService.Today()
	catalog, err := h.matchdayService.TodayCatalog(ctx, day)
	if err != nil {
		h.logger.WarnContext(ctx, "load today catalog failed", "day", day, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, catalogToDTO(catalog))
}

func (h *Handler) SubmitCoupon(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SubmitCoupon")
	defer span.End()

	userID, err := h.principal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req submitCouponRequest
	if err := h.decodeAndValidate(r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}

	items := make([]coupon.RawItem, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, coupon.RawItem{MatchID: it.MatchID, Prediction: it.Prediction})
	}

	c, err := h.couponService.Submit(ctx, usecase.SubmitCouponInput{
		UserID: userID,
		Day:    h.matchdayService.Today(),
		Items:  items,
	})
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]couponDTO{"coupon": couponToDTO(c)})
}

func (h *Handler) LockCoupon(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.LockCoupon")
	defer span.End()

	userID, err := h.principal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	c, err := h.couponService.Lock(ctx, userID, h.matchdayService.Today())
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]couponDTO{"coupon": couponToDTO(c)})
}

func (h *Handler) TodayCoupon(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.TodayCoupon")
	defer span.End()

	userID, err := h.principal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	day := h.matchdayService.Today()
	c, exists, err := h.couponService.GetToday(ctx, userID, day)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	out := todayCouponDTO{Date: day}
	if exists {
		dto := couponToDTO(c)
		out.Coupon = &dto
	}
	writeSuccess(ctx, w, http.StatusOK, out)
}

func (h *Handler) EvaluateCoupon(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.EvaluateCoupon")
	defer span.End()

	userID, err := h.principal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	day := h.matchdayService.Today()
	result, err := h.scoringService.Evaluate(ctx, userID, day)
	if err != nil {
		h.logger.WarnContext(ctx, "evaluate coupon failed", "user_id", userID, "day", day, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, evaluationToDTO(result))
}

func (h *Handler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Leaderboard")
	defer span.End()

	entries, err := h.leaderboardService.Top(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "load leaderboard failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, leaderboardToDTO(entries))
}
