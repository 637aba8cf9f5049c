package observability

import (
	"runtime"

	"github.com/grafana/pyroscope-go"

	"github.com/riskibarqy/daily-coupon/internal/config"
	"github.com/riskibarqy/daily-coupon/internal/platform/logging"
)

// Lock profiles stay empty unless the runtime samples contention.
const (
	mutexProfileFraction = 5
	blockProfileRate     = 5
)

// InitPyroscope starts continuous profiling when enabled. The returned stop
// func also resets runtime contention sampling.
func InitPyroscope(cfg config.Config, logger *logging.Logger) (func() error, error) {
	if logger == nil {
		logger = logging.Default()
	}

	if !cfg.PyroscopeEnabled {
		logger.Info("pyroscope disabled", "reason", "PYROSCOPE_ENABLED=false")
		return func() error { return nil }, nil
	}

	prevMutexFraction := runtime.SetMutexProfileFraction(mutexProfileFraction)
	runtime.SetBlockProfileRate(blockProfileRate)

	profiler, err := pyroscope.Start(pyroscope.Config{
		ApplicationName:   cfg.PyroscopeAppName,
		ServerAddress:     cfg.PyroscopeServerAddress,
		AuthToken:         cfg.PyroscopeAuthToken,
		BasicAuthUser:     cfg.PyroscopeBasicAuthUser,
		BasicAuthPassword: cfg.PyroscopeBasicAuthPassword,
		UploadRate:        cfg.PyroscopeUploadRate,
		Logger:            logger.Zap().Sugar(),
		Tags:              profileTags(cfg),
		ProfileTypes: []pyroscope.ProfileType{
			pyroscope.ProfileCPU,
			pyroscope.ProfileAllocSpace,
			pyroscope.ProfileInuseSpace,
			pyroscope.ProfileGoroutines,
			pyroscope.ProfileMutexDuration,
			pyroscope.ProfileBlockDuration,
		},
	})
	if err != nil {
		runtime.SetMutexProfileFraction(prevMutexFraction)
		runtime.SetBlockProfileRate(0)
		return nil, err
	}

	logger.Info("pyroscope enabled",
		"server_address", cfg.PyroscopeServerAddress,
		"application", cfg.PyroscopeAppName,
	)

	return func() error {
		err := profiler.Stop()
		runtime.SetMutexProfileFraction(prevMutexFraction)
		runtime.SetBlockProfileRate(0)
		return err
	}, nil
}

// profileTags lets flame graphs be split by deployment shape.
func profileTags(cfg config.Config) map[string]string {
	tags := map[string]string{
		"env":      cfg.AppEnv,
		"service":  cfg.ServiceName,
		"version":  cfg.ServiceVersion,
		"storage":  cfg.StorageBackend,
		"provider": cfg.Provider,
	}
	for key, value := range tags {
		if value == "" {
			delete(tags, key)
		}
	}
	return tags
}
