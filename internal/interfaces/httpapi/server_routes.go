package httpapi

import (
	"net/http"

	"github.com/riskibarqy/daily-coupon/internal/platform/metrics"
)

func registerSystemRoutes(mux *http.ServeMux, handler *Handler, recorder *metrics.Recorder, swaggerEnabled bool) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	if recorder != nil {
		mux.Handle("GET /metrics", recorder.Handler())
	}
	if !swaggerEnabled {
		return
	}

	mux.HandleFunc("GET /openapi.yaml", handler.OpenAPI)
	mux.HandleFunc("GET /docs", handler.SwaggerUI)
	mux.HandleFunc("GET /docs/", handler.SwaggerUI)
}

func registerPublicRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("POST /api/register", handler.Register)
	mux.HandleFunc("POST /api/login", handler.Login)
	mux.HandleFunc("GET /api/matches/today", handler.TodayMatches)
	mux.HandleFunc("GET /api/leaderboard", handler.Leaderboard)
}

func registerAuthorizedRoutes(mux *http.ServeMux, handler *Handler, resolver PrincipalResolver) {
	mux.Handle("GET /api/me", RequireAuth(resolver, http.HandlerFunc(handler.Me)))
	mux.Handle("POST /api/coupon", RequireAuth(resolver, http.HandlerFunc(handler.SubmitCoupon)))
	mux.Handle("POST /api/coupon/lock", RequireAuth(resolver, http.HandlerFunc(handler.LockCoupon)))
	mux.Handle("GET /api/coupon/today", RequireAuth(resolver, http.HandlerFunc(handler.TodayCoupon)))
	mux.Handle("POST /api/results/evaluate", RequireAuth(resolver, http.HandlerFunc(handler.EvaluateCoupon)))
}

func registerInternalJobRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /v1/internal/jobs/settle", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunSettleJob)))
}
