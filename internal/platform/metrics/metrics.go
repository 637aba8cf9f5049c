package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "daily_coupon"

// Recorder holds the service's Prometheus collectors. A nil *Recorder is a
// valid no-op recorder.
type Recorder struct {
	registry *prometheus.Registry

	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
	couponOps        *prometheus.CounterVec
	awardedPoints    prometheus.Counter
	evaluations      *prometheus.CounterVec
	providerFetches  *prometheus.CounterVec
	settlementLength prometheus.Histogram
	circuitState     *prometheus.GaugeVec
}

func New() *Recorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		httpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}, []string{"method", "route"}),
		couponOps: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "coupon_operations_total",
			Help:      "Coupon lifecycle operations by result",
		}, []string{"op", "result"}),
		awardedPoints: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "awarded_points_total",
			Help:      "Points credited to users by evaluated coupons",
		}),
		evaluations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "coupon_evaluations_total",
			Help:      "Evaluated coupons by outcome",
		}, []string{"outcome"}),
		providerFetches: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_fetches_total",
			Help:      "Catalog and result provider fetches by result",
		}, []string{"kind", "result"}),
		settlementLength: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "settlement_duration_seconds",
			Help:      "Duration of day settlement jobs",
			Buckets:   prometheus.ExponentialBuckets(0.01, 4, 8),
		}),
		circuitState: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "circuit_breaker_state",
			Help:      "Circuit breaker state per dependency: 0 closed, 1 half_open, 2 open",
		}, []string{"dependency"}),
	}
}

func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

func (r *Recorder) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	r.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// CouponOp counts one Submit/Lock/Evaluate call; result is "ok" or an error
// reason.
func (r *Recorder) CouponOp(op, result string) {
	if r == nil {
		return
	}
	r.couponOps.WithLabelValues(op, result).Inc()
}

func (r *Recorder) CouponEvaluated(won bool, points int64) {
	if r == nil {
		return
	}
	outcome := "lost"
	if won {
		outcome = "won"
	}
	r.evaluations.WithLabelValues(outcome).Inc()
	r.awardedPoints.Add(float64(points))
}

func (r *Recorder) ProviderFetch(kind string, err error) {
	if r == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	r.providerFetches.WithLabelValues(kind, result).Inc()
}

func (r *Recorder) SettlementFinished(elapsed time.Duration) {
	if r == nil {
		return
	}
	r.settlementLength.Observe(elapsed.Seconds())
}

// CircuitState records the current breaker state for a named dependency.
func (r *Recorder) CircuitState(dependency, state string) {
	if r == nil {
		return
	}
	value := 0.0
	switch state {
	case "half_open":
		value = 1
	case "open":
		value = 2
	}
	r.circuitState.WithLabelValues(dependency).Set(value)
}
