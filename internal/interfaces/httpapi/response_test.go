package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/daily-coupon/internal/domain/coupon"
	"github.com/riskibarqy/daily-coupon/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteSuccess_GoogleEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	writeSuccess(context.Background(), rec, http.StatusOK, map[string]string{"status": "ok"})

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, sonic.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "2.0", body["apiVersion"])
	assert.Contains(t, body, "data")
	assert.NotContains(t, body, "error")
}

func TestWriteError_GoogleEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(context.Background(), rec, fmt.Errorf("%w: bad payload", usecase.ErrInvalidInput))

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body map[string]any
	require.NoError(t, sonic.Unmarshal(rec.Body.Bytes(), &body))
	errorObj, ok := body["error"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "INVALID_ARGUMENT", errorObj["status"])
}

func TestMapError(t *testing.T) {
	tests := []struct {
		err    error
		status int
		reason string
	}{
		{err: usecase.ErrInvalidInput, status: http.StatusBadRequest, reason: "invalidInput"},
		{err: usecase.ErrNotFound, status: http.StatusNotFound, reason: "notFound"},
		{err: usecase.ErrUnauthorized, status: http.StatusUnauthorized, reason: "unauthorized"},
		{err: usecase.ErrProviderUnavailable, status: http.StatusServiceUnavailable, reason: "dependencyUnavailable"},
		{err: coupon.ErrNoMatchesPublished, status: http.StatusBadRequest, reason: "noMatchesPublished"},
		{err: coupon.ErrCouponLocked, status: http.StatusBadRequest, reason: "couponLocked"},
		{err: coupon.ErrAlreadyLocked, status: http.StatusBadRequest, reason: "alreadyLocked"},
		{err: coupon.ErrNoValidItems, status: http.StatusBadRequest, reason: "noValidItems"},
		{err: coupon.ErrNoCoupon, status: http.StatusNotFound, reason: "noCoupon"},
		{err: coupon.ErrNotLocked, status: http.StatusBadRequest, reason: "notLocked"},
		{err: coupon.ErrStateConflict, status: http.StatusConflict, reason: "stateConflict"},
		{err: fmt.Errorf("boom"), status: http.StatusInternalServerError, reason: "internalError"},
	}

	for _, tt := range tests {
		t.Run(tt.reason, func(t *testing.T) {
			mapped := mapError(context.Background(), fmt.Errorf("wrapped: %w", tt.err))
			assert.Equal(t, tt.status, mapped.HTTPStatus)
			assert.Equal(t, tt.reason, mapped.Reason)
		})
	}
}
