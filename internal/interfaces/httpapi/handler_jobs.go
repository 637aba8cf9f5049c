package httpapi

import (
	"fmt"
	"net/http"

	"github.com/riskibarqy/daily-coupon/internal/usecase"
)

// RunSettleJob settles every locked coupon of a day. The day defaults to
// today when the body is empty.
func (h *Handler) RunSettleJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunSettleJob")
	defer span.End()

	if h.settlementService == nil {
		writeError(ctx, w, fmt.Errorf("%w: settlement is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	var req settleJobRequest
	if err := h.decodeAndValidate(r, &req, true); err != nil {
		writeError(ctx, w, err)
		return
	}
	if req.Day == "" {
		req.Day = h.matchdayService.Today()
	}

	result, err := h.settlementService.SettleDay(ctx, req.Day)
	if err != nil {
		h.logger.WarnContext(ctx, "run settle job failed", "day", req.Day, "error", err)
		writeError(ctx, w, err)
		return
	}

	h.logger.InfoContext(ctx, "settle job finished",
		"day", result.Day,
		"total", result.Total,
		"won", result.WonCount,
		"failed", result.FailedCount,
	)
	writeSuccess(ctx, w, http.StatusOK, settlementToDTO(result))
}
