package resilience

import "time"

// StateChangeFunc observes breaker transitions. It runs with the breaker
// locked and must not call back into it.
type StateChangeFunc func(name string, from, to CircuitState)

// CircuitBreakerConfig describes one outbound dependency guard, such as the
// odds provider or the coupon event topic.
type CircuitBreakerConfig struct {
	Name             string
	Enabled          bool
	FailureThreshold int
	OpenTimeout      time.Duration
	HalfOpenMaxReq   int
	OnStateChange    StateChangeFunc
}

func DefaultCircuitBreakerConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Enabled:          true,
		FailureThreshold: 5,
		OpenTimeout:      15 * time.Second,
		HalfOpenMaxReq:   2,
	}
}

// NormalizeCircuitBreakerConfig fills zero thresholds with defaults and keeps
// the name and hook untouched.
func NormalizeCircuitBreakerConfig(cfg CircuitBreakerConfig) CircuitBreakerConfig {
	defaults := DefaultCircuitBreakerConfig()
	if cfg.FailureThreshold < 1 {
		cfg.FailureThreshold = defaults.FailureThreshold
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = defaults.OpenTimeout
	}
	if cfg.HalfOpenMaxReq < 1 {
		cfg.HalfOpenMaxReq = defaults.HalfOpenMaxReq
	}
	return cfg
}

// WithObserver returns a copy of cfg named name that reports transitions to fn.
func (cfg CircuitBreakerConfig) WithObserver(name string, fn StateChangeFunc) CircuitBreakerConfig {
	cfg.Name = name
	cfg.OnStateChange = fn
	return cfg
}
