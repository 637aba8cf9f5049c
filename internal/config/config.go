package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/daily-coupon/internal/platform/logging"
	"github.com/riskibarqy/daily-coupon/internal/platform/resilience"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"

	ProviderDemo        = "demo"
	ProviderAPIFootball = "apifootball"
)

// Config stores runtime configuration for the service.
type Config struct {
	AppEnv             string
	ServiceName        string
	ServiceVersion     string
	HTTPAddr           string
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	ShutdownTimeout    time.Duration
	CORSAllowedOrigins []string
	SwaggerEnabled     bool
	LogLevel           logging.Level

	AppTimezone      *time.Location
	LeaderboardLimit int

	StorageBackend          string
	DBURL                   string
	DBMaxOpenConns          int
	DBMaxIdleConns          int
	DBConnMaxLifetime       time.Duration
	CacheEnabled            bool
	CacheTTL                time.Duration

	RedisEnabled   bool
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	RedisTTL       time.Duration
	RedisKeyPrefix string

	Provider               string
	DemoMatchesPerDay      int
	DemoSalt               string
	APIFootballBaseURL     string
	APIFootballKey         string
	APIFootballLeagueIDs   []int64
	APIFootballBookmakerID int64
	APIFootballMaxMatches  int
	APIFootballTimeout     time.Duration
	APIFootballMaxRetries  int
	APIFootballCircuit     resilience.CircuitBreakerConfig

	KafkaEnabled      bool
	KafkaBrokers      []string
	KafkaTopic        string
	KafkaWriteTimeout time.Duration
	KafkaCircuit      resilience.CircuitBreakerConfig

	InternalJobToken  string
	SettlementWorkers int

	UptraceEnabled             bool
	UptraceDSN                 string
	UptraceLogsEnabled         bool
	PprofEnabled               bool
	PprofAddr                  string
	PyroscopeEnabled           bool
	PyroscopeServerAddress     string
	PyroscopeAppName           string
	PyroscopeAuthToken         string
	PyroscopeBasicAuthUser     string
	PyroscopeBasicAuthPassword string
	PyroscopeUploadRate        time.Duration
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	swaggerDefault := "true"
	if appEnv == EnvProd {
		swaggerDefault = "false"
	}

	swaggerEnabled, err := strconv.ParseBool(getEnv("SWAGGER_ENABLED", swaggerDefault))
	if err != nil {
		return Config{}, fmt.Errorf("parse SWAGGER_ENABLED: %w", err)
	}

	readTimeout, err := time.ParseDuration(getEnv("HTTP_READ_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse HTTP_READ_TIMEOUT: %w", err)
	}
	if readTimeout <= 0 {
		return Config{}, fmt.Errorf("HTTP_READ_TIMEOUT must be > 0")
	}

	writeTimeout, err := time.ParseDuration(getEnv("HTTP_WRITE_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse HTTP_WRITE_TIMEOUT: %w", err)
	}
	if writeTimeout <= 0 {
		return Config{}, fmt.Errorf("HTTP_WRITE_TIMEOUT must be > 0")
	}

	shutdownTimeout, err := time.ParseDuration(getEnv("HTTP_SHUTDOWN_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse HTTP_SHUTDOWN_TIMEOUT: %w", err)
	}
	if shutdownTimeout <= 0 {
		return Config{}, fmt.Errorf("HTTP_SHUTDOWN_TIMEOUT must be > 0")
	}

	timezoneName := strings.TrimSpace(getEnv("APP_TIMEZONE", "UTC"))
	timezone, err := time.LoadLocation(timezoneName)
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_TIMEZONE: %w", err)
	}

	leaderboardLimit, err := getEnvAsInt("LEADERBOARD_LIMIT", 50)
	if err != nil {
		return Config{}, fmt.Errorf("parse LEADERBOARD_LIMIT: %w", err)
	}
	if leaderboardLimit <= 0 {
		return Config{}, fmt.Errorf("LEADERBOARD_LIMIT must be > 0")
	}

	storageBackend, err := parseChoice("STORAGE_BACKEND", getEnv("STORAGE_BACKEND", StorageMemory), StorageMemory, StoragePostgres)
	if err != nil {
		return Config{}, err
	}
	dbURL := strings.TrimSpace(getEnv("DB_URL", ""))
	if storageBackend == StoragePostgres && dbURL == "" {
		return Config{}, fmt.Errorf("DB_URL is required when STORAGE_BACKEND=postgres")
	}
	dbMaxOpenConns, err := getEnvAsInt("DB_MAX_OPEN_CONNS", 20)
	if err != nil {
		return Config{}, fmt.Errorf("parse DB_MAX_OPEN_CONNS: %w", err)
	}
	if dbMaxOpenConns <= 0 {
		return Config{}, fmt.Errorf("DB_MAX_OPEN_CONNS must be > 0")
	}
	dbMaxIdleConns, err := getEnvAsInt("DB_MAX_IDLE_CONNS", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse DB_MAX_IDLE_CONNS: %w", err)
	}
	if dbMaxIdleConns < 0 || dbMaxIdleConns > dbMaxOpenConns {
		return Config{}, fmt.Errorf("DB_MAX_IDLE_CONNS must be between 0 and DB_MAX_OPEN_CONNS")
	}
	dbConnMaxLifetime, err := time.ParseDuration(getEnv("DB_CONN_MAX_LIFETIME", "30m"))
	if err != nil {
		return Config{}, fmt.Errorf("parse DB_CONN_MAX_LIFETIME: %w", err)
	}
	if dbConnMaxLifetime <= 0 {
		return Config{}, fmt.Errorf("DB_CONN_MAX_LIFETIME must be > 0")
	}

	cacheEnabled, err := strconv.ParseBool(getEnv("CACHE_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CACHE_ENABLED: %w", err)
	}
	cacheTTL, err := time.ParseDuration(getEnv("CACHE_TTL", "10m"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CACHE_TTL: %w", err)
	}
	if cacheTTL <= 0 {
		return Config{}, fmt.Errorf("CACHE_TTL must be > 0")
	}

	redisEnabled, err := strconv.ParseBool(getEnv("REDIS_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse REDIS_ENABLED: %w", err)
	}
	redisAddr := strings.TrimSpace(getEnv("REDIS_ADDR", "localhost:6379"))
	if redisEnabled && redisAddr == "" {
		return Config{}, fmt.Errorf("REDIS_ADDR is required when REDIS_ENABLED=true")
	}
	redisDB, err := getEnvAsInt("REDIS_DB", 0)
	if err != nil {
		return Config{}, fmt.Errorf("parse REDIS_DB: %w", err)
	}
	if redisDB < 0 {
		return Config{}, fmt.Errorf("REDIS_DB must be >= 0")
	}
	redisTTL, err := time.ParseDuration(getEnv("REDIS_TTL", "72h"))
	if err != nil {
		return Config{}, fmt.Errorf("parse REDIS_TTL: %w", err)
	}
	if redisTTL < 0 {
		return Config{}, fmt.Errorf("REDIS_TTL must be >= 0")
	}

	provider, err := parseChoice("MATCH_PROVIDER", getEnv("MATCH_PROVIDER", ProviderDemo), ProviderDemo, ProviderAPIFootball)
	if err != nil {
		return Config{}, err
	}
	demoMatchesPerDay, err := getEnvAsInt("DEMO_MATCHES_PER_DAY", 6)
	if err != nil {
		return Config{}, fmt.Errorf("parse DEMO_MATCHES_PER_DAY: %w", err)
	}
	if demoMatchesPerDay <= 0 {
		return Config{}, fmt.Errorf("DEMO_MATCHES_PER_DAY must be > 0")
	}

	apiFootballKey := strings.TrimSpace(getEnv("APIFOOTBALL_API_KEY", ""))
	if provider == ProviderAPIFootball && apiFootballKey == "" {
		return Config{}, fmt.Errorf("APIFOOTBALL_API_KEY is required when MATCH_PROVIDER=apifootball")
	}
	apiFootballLeagueIDs, err := parseIDList(getEnv("APIFOOTBALL_LEAGUE_IDS", ""))
	if err != nil {
		return Config{}, fmt.Errorf("parse APIFOOTBALL_LEAGUE_IDS: %w", err)
	}
	apiFootballBookmakerID, err := getEnvAsInt("APIFOOTBALL_BOOKMAKER_ID", 8)
	if err != nil {
		return Config{}, fmt.Errorf("parse APIFOOTBALL_BOOKMAKER_ID: %w", err)
	}
	if apiFootballBookmakerID <= 0 {
		return Config{}, fmt.Errorf("APIFOOTBALL_BOOKMAKER_ID must be > 0")
	}
	apiFootballMaxMatches, err := getEnvAsInt("APIFOOTBALL_MAX_MATCHES", 10)
	if err != nil {
		return Config{}, fmt.Errorf("parse APIFOOTBALL_MAX_MATCHES: %w", err)
	}
	if apiFootballMaxMatches <= 0 {
		return Config{}, fmt.Errorf("APIFOOTBALL_MAX_MATCHES must be > 0")
	}
	apiFootballTimeout, err := time.ParseDuration(getEnv("APIFOOTBALL_TIMEOUT", "20s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APIFOOTBALL_TIMEOUT: %w", err)
	}
	if apiFootballTimeout <= 0 {
		return Config{}, fmt.Errorf("APIFOOTBALL_TIMEOUT must be > 0")
	}
	apiFootballMaxRetries, err := getEnvAsInt("APIFOOTBALL_MAX_RETRIES", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse APIFOOTBALL_MAX_RETRIES: %w", err)
	}
	if apiFootballMaxRetries < 0 {
		return Config{}, fmt.Errorf("APIFOOTBALL_MAX_RETRIES must be >= 0")
	}
	apiFootballCircuit, err := parseCircuitBreaker("APIFOOTBALL")
	if err != nil {
		return Config{}, err
	}

	kafkaEnabled, err := strconv.ParseBool(getEnv("KAFKA_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse KAFKA_ENABLED: %w", err)
	}
	kafkaBrokers := splitCSV(getEnv("KAFKA_BROKERS", "localhost:9092"))
	if kafkaEnabled && len(kafkaBrokers) == 0 {
		return Config{}, fmt.Errorf("KAFKA_BROKERS is required when KAFKA_ENABLED=true")
	}
	kafkaTopic := strings.TrimSpace(getEnv("KAFKA_COUPON_TOPIC", "daily-coupon.events"))
	if kafkaEnabled && kafkaTopic == "" {
		return Config{}, fmt.Errorf("KAFKA_COUPON_TOPIC is required when KAFKA_ENABLED=true")
	}
	kafkaWriteTimeout, err := time.ParseDuration(getEnv("KAFKA_WRITE_TIMEOUT", "5s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse KAFKA_WRITE_TIMEOUT: %w", err)
	}
	if kafkaWriteTimeout <= 0 {
		return Config{}, fmt.Errorf("KAFKA_WRITE_TIMEOUT must be > 0")
	}
	kafkaCircuit, err := parseCircuitBreaker("KAFKA")
	if err != nil {
		return Config{}, err
	}

	settlementWorkers, err := getEnvAsInt("SETTLEMENT_WORKERS", 4)
	if err != nil {
		return Config{}, fmt.Errorf("parse SETTLEMENT_WORKERS: %w", err)
	}
	if settlementWorkers <= 0 {
		return Config{}, fmt.Errorf("SETTLEMENT_WORKERS must be > 0")
	}

	uptraceEnabled, err := strconv.ParseBool(getEnv("UPTRACE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_ENABLED: %w", err)
	}
	uptraceDSN := strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if uptraceDSN == "" {
		uptraceDSN = parseUptraceDSNFromOTLPHeaders(getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""))
	}
	if uptraceEnabled && uptraceDSN == "" {
		return Config{}, fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}
	uptraceLogsEnabled, err := strconv.ParseBool(getEnv("UPTRACE_LOGS_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_LOGS_ENABLED: %w", err)
	}

	pprofEnabled, err := strconv.ParseBool(getEnv("PPROF_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PPROF_ENABLED: %w", err)
	}
	pprofAddr := strings.TrimSpace(getEnv("PPROF_ADDR", ":6060"))
	if pprofEnabled && pprofAddr == "" {
		return Config{}, fmt.Errorf("PPROF_ADDR is required when PPROF_ENABLED=true")
	}

	pyroscopeEnabled, err := strconv.ParseBool(getEnv("PYROSCOPE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_ENABLED: %w", err)
	}
	pyroscopeServerAddress := strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", ""))
	if pyroscopeEnabled && pyroscopeServerAddress == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	pyroscopeUploadRate, err := time.ParseDuration(getEnv("PYROSCOPE_UPLOAD_RATE", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_UPLOAD_RATE: %w", err)
	}
	if pyroscopeUploadRate <= 0 {
		return Config{}, fmt.Errorf("PYROSCOPE_UPLOAD_RATE must be > 0")
	}

	serviceName := getEnv("SERVICE_NAME", "daily-coupon-api")

	cfg := Config{
		AppEnv:             appEnv,
		ServiceName:        serviceName,
		ServiceVersion:     getEnv("SERVICE_VERSION", "dev"),
		HTTPAddr:           getEnv("APP_HTTP_ADDR", ":8080"),
		ReadTimeout:        readTimeout,
		WriteTimeout:       writeTimeout,
		ShutdownTimeout:    shutdownTimeout,
		CORSAllowedOrigins: splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		SwaggerEnabled:     swaggerEnabled,
		LogLevel:           parseLogLevel(getEnv("APP_LOG_LEVEL", "info")),

		AppTimezone:      timezone,
		LeaderboardLimit: leaderboardLimit,

		StorageBackend:          storageBackend,
		DBURL:                   dbURL,
		DBMaxOpenConns:          dbMaxOpenConns,
		DBMaxIdleConns:          dbMaxIdleConns,
		DBConnMaxLifetime:       dbConnMaxLifetime,
		CacheEnabled:            cacheEnabled,
		CacheTTL:                cacheTTL,

		RedisEnabled:   redisEnabled,
		RedisAddr:      redisAddr,
		RedisPassword:  getEnv("REDIS_PASSWORD", ""),
		RedisDB:        redisDB,
		RedisTTL:       redisTTL,
		RedisKeyPrefix: strings.TrimSpace(getEnv("REDIS_KEY_PREFIX", "daily-coupon")),

		Provider:               provider,
		DemoMatchesPerDay:      demoMatchesPerDay,
		DemoSalt:               getEnv("DEMO_SALT", ""),
		APIFootballBaseURL:     strings.TrimSpace(getEnv("APIFOOTBALL_BASE_URL", "https://v3.football.api-sports.io")),
		APIFootballKey:         apiFootballKey,
		APIFootballLeagueIDs:   apiFootballLeagueIDs,
		APIFootballBookmakerID: int64(apiFootballBookmakerID),
		APIFootballMaxMatches:  apiFootballMaxMatches,
		APIFootballTimeout:     apiFootballTimeout,
		APIFootballMaxRetries:  apiFootballMaxRetries,
		APIFootballCircuit:     apiFootballCircuit,

		KafkaEnabled:      kafkaEnabled,
		KafkaBrokers:      kafkaBrokers,
		KafkaTopic:        kafkaTopic,
		KafkaWriteTimeout: kafkaWriteTimeout,
		KafkaCircuit:      kafkaCircuit,

		InternalJobToken:  strings.TrimSpace(getEnv("INTERNAL_JOB_TOKEN", "")),
		SettlementWorkers: settlementWorkers,

		UptraceEnabled:             uptraceEnabled,
		UptraceDSN:                 uptraceDSN,
		UptraceLogsEnabled:         uptraceLogsEnabled,
		PprofEnabled:               pprofEnabled,
		PprofAddr:                  pprofAddr,
		PyroscopeEnabled:           pyroscopeEnabled,
		PyroscopeServerAddress:     pyroscopeServerAddress,
		PyroscopeAppName:           getEnv("PYROSCOPE_APP_NAME", serviceName),
		PyroscopeAuthToken:         getEnv("PYROSCOPE_AUTH_TOKEN", ""),
		PyroscopeBasicAuthUser:     getEnv("PYROSCOPE_BASIC_AUTH_USER", ""),
		PyroscopeBasicAuthPassword: getEnv("PYROSCOPE_BASIC_AUTH_PASSWORD", ""),
		PyroscopeUploadRate:        pyroscopeUploadRate,
	}

	return cfg, nil
}

// parseCircuitBreaker reads <PREFIX>_CIRCUIT_* settings.
func parseCircuitBreaker(prefix string) (resilience.CircuitBreakerConfig, error) {
	defaults := resilience.DefaultCircuitBreakerConfig()

	enabledKey := prefix + "_CIRCUIT_ENABLED"
	enabled, err := strconv.ParseBool(getEnv(enabledKey, strconv.FormatBool(defaults.Enabled)))
	if err != nil {
		return resilience.CircuitBreakerConfig{}, fmt.Errorf("parse %s: %w", enabledKey, err)
	}

	failureKey := prefix + "_CIRCUIT_FAILURE_COUNT"
	failureCount, err := getEnvAsInt(failureKey, defaults.FailureThreshold)
	if err != nil {
		return resilience.CircuitBreakerConfig{}, fmt.Errorf("parse %s: %w", failureKey, err)
	}
	if failureCount < 1 {
		return resilience.CircuitBreakerConfig{}, fmt.Errorf("%s must be >= 1", failureKey)
	}

	openKey := prefix + "_CIRCUIT_OPEN_TIMEOUT"
	openTimeout, err := time.ParseDuration(getEnv(openKey, defaults.OpenTimeout.String()))
	if err != nil {
		return resilience.CircuitBreakerConfig{}, fmt.Errorf("parse %s: %w", openKey, err)
	}
	if openTimeout <= 0 {
		return resilience.CircuitBreakerConfig{}, fmt.Errorf("%s must be > 0", openKey)
	}

	halfOpenKey := prefix + "_CIRCUIT_HALF_OPEN_MAX_REQ"
	halfOpenMaxReq, err := getEnvAsInt(halfOpenKey, defaults.HalfOpenMaxReq)
	if err != nil {
		return resilience.CircuitBreakerConfig{}, fmt.Errorf("parse %s: %w", halfOpenKey, err)
	}
	if halfOpenMaxReq < 1 {
		return resilience.CircuitBreakerConfig{}, fmt.Errorf("%s must be >= 1", halfOpenKey)
	}

	return resilience.CircuitBreakerConfig{
		Enabled:          enabled,
		FailureThreshold: failureCount,
		OpenTimeout:      openTimeout,
		HalfOpenMaxReq:   halfOpenMaxReq,
	}, nil
}

func parseLogLevel(v string) logging.Level {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "debug":
		return logging.LevelDebug
	case "warn", "warning":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		out = append(out, item)
	}

	return out
}

func parseIDList(raw string) ([]int64, error) {
	items := splitCSV(raw)
	out := make([]int64, 0, len(items))
	for _, item := range items {
		value, err := strconv.ParseInt(item, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid id %q: %w", item, err)
		}
		if value <= 0 {
			return nil, fmt.Errorf("id must be > 0, got %q", item)
		}
		out = append(out, value)
	}
	return out, nil
}

func parseChoice(key, raw string, allowed ...string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(raw))
	for _, candidate := range allowed {
		if value == candidate {
			return value, nil
		}
	}
	return "", fmt.Errorf("invalid %s %q: valid values are %s", key, raw, strings.Join(allowed, ", "))
}

func parseUptraceDSNFromOTLPHeaders(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	items := strings.Split(raw, ",")
	for _, item := range items {
		parts := strings.SplitN(strings.TrimSpace(item), "=", 2)
		if len(parts) != 2 {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(parts[0]), "uptrace-dsn") {
			value := strings.TrimSpace(parts[1])
			return strings.Trim(value, "\"'")
		}
	}

	return ""
}

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}
