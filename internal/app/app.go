package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/riskibarqy/daily-coupon/external/apifootball"
	"github.com/riskibarqy/daily-coupon/external/demo"
	"github.com/riskibarqy/daily-coupon/external/eventbus"
	"github.com/riskibarqy/daily-coupon/internal/config"
	"github.com/riskibarqy/daily-coupon/internal/domain/coupon"
	"github.com/riskibarqy/daily-coupon/internal/domain/matchday"
	"github.com/riskibarqy/daily-coupon/internal/domain/user"
	cacherepo "github.com/riskibarqy/daily-coupon/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/daily-coupon/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/daily-coupon/internal/infrastructure/repository/postgres"
	redisrepo "github.com/riskibarqy/daily-coupon/internal/infrastructure/repository/redis"
	"github.com/riskibarqy/daily-coupon/internal/interfaces/httpapi"
	basecache "github.com/riskibarqy/daily-coupon/internal/platform/cache"
	"github.com/riskibarqy/daily-coupon/internal/platform/concurrency"
	idgen "github.com/riskibarqy/daily-coupon/internal/platform/id"
	"github.com/riskibarqy/daily-coupon/internal/platform/logging"
	"github.com/riskibarqy/daily-coupon/internal/platform/metrics"
	"github.com/riskibarqy/daily-coupon/internal/platform/resilience"
	"github.com/riskibarqy/daily-coupon/internal/usecase"
)

type repositories struct {
	users    user.Repository
	coupons  coupon.Repository
	catalogs matchday.CatalogRepository
	results  matchday.ResultRepository
}

type provider interface {
	usecase.CatalogProvider
	usecase.ResultProvider
}

// resources collects what must be released on shutdown, in reverse order.
type resources struct {
	closers []func(context.Context) error
}

func (r *resources) add(fn func(context.Context) error) {
	r.closers = append(r.closers, fn)
}

func (r *resources) close(ctx context.Context) error {
	var errs []error
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	r.closers = nil
	return errors.Join(errs...)
}

// NewHTTPServer wires storage, providers and services into the HTTP server.
// The returned cleanup releases database, Redis and Kafka handles.
func NewHTTPServer(ctx context.Context, cfg config.Config, logger *logging.Logger) (*http.Server, func(context.Context) error, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.HTTPAddr == "" {
		return nil, nil, fmt.Errorf("http server addr cannot be empty")
	}

	res := &resources{}
	fail := func(err error) (*http.Server, func(context.Context) error, error) {
		_ = res.close(context.Background())
		return nil, nil, err
	}

	repos, err := buildRepositories(ctx, cfg, logger, res)
	if err != nil {
		return fail(err)
	}

	recorder := metrics.New()
	publisher, err := buildPublisher(cfg, recorder, logger, res)
	if err != nil {
		return fail(err)
	}

	source := buildProvider(cfg, recorder, logger)
	locks := concurrency.NewKeyedMutex()
	ids := idgen.NewRandomGenerator()

	userSvc := usecase.NewUserService(repos.users, ids, idgen.NewTokenGenerator(), logger)
	matchdaySvc := usecase.NewMatchdayService(repos.catalogs, repos.results, source, source, cfg.AppTimezone, recorder, logger)
	couponSvc := usecase.NewCouponService(repos.catalogs, repos.coupons, locks, ids, publisher, recorder, logger)
	scoringSvc := usecase.NewScoringService(repos.coupons, repos.users, matchdaySvc, locks, publisher, recorder, logger)
	leaderboardSvc := usecase.NewLeaderboardService(repos.users, cfg.LeaderboardLimit)
	settlementSvc := usecase.NewSettlementService(repos.coupons, scoringSvc, cfg.SettlementWorkers, recorder, logger)

	handler := httpapi.NewHandler(userSvc, matchdaySvc, couponSvc, scoringSvc, leaderboardSvc, settlementSvc, logger)
	router := httpapi.NewRouter(handler, userSvc, recorder, logger, httpapi.RouterConfig{
		SwaggerEnabled:     cfg.SwaggerEnabled,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		InternalJobToken:   cfg.InternalJobToken,
	})

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	logger.Info("application wired",
		"storage", cfg.StorageBackend,
		"provider", cfg.Provider,
		"redis_enabled", cfg.RedisEnabled,
		"cache_enabled", cfg.CacheEnabled,
		"kafka_enabled", cfg.KafkaEnabled,
		"timezone", cfg.AppTimezone.String(),
	)

	return server, res.close, nil
}

func buildRepositories(ctx context.Context, cfg config.Config, logger *logging.Logger, res *resources) (repositories, error) {
	var repos repositories

	switch cfg.StorageBackend {
	case config.StoragePostgres:
		db, err := openPostgres(ctx, cfg)
		if err != nil {
			return repositories{}, err
		}
		res.add(func(context.Context) error { return db.Close() })

		repos = repositories{
			users:    postgres.NewUserRepository(db),
			coupons:  postgres.NewCouponRepository(db),
			catalogs: postgres.NewCatalogRepository(db),
			results:  postgres.NewResultRepository(db),
		}
	default:
		users := memory.NewUserRepository()
		repos = repositories{
			users:    users,
			coupons:  memory.NewCouponRepository(users),
			catalogs: memory.NewCatalogRepository(),
			results:  memory.NewResultRepository(),
		}
	}

	// Redis owns day data when enabled so every replica sees one catalog.
	if cfg.RedisEnabled {
		client, err := redisrepo.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return repositories{}, err
		}
		res.add(func(context.Context) error { return client.Close() })

		opts := []redisrepo.Option{
			redisrepo.WithKeyPrefix(cfg.RedisKeyPrefix),
			redisrepo.WithTTL(cfg.RedisTTL),
		}
		repos.catalogs = redisrepo.NewCatalogRepository(client, opts...)
		repos.results = redisrepo.NewResultRepository(client, opts...)
		logger.Info("redis day store enabled", "addr", cfg.RedisAddr, "db", cfg.RedisDB)
	}

	if cfg.CacheEnabled {
		repos.catalogs = cacherepo.NewCatalogRepository(repos.catalogs, basecache.NewStore[matchday.Catalog](cfg.CacheTTL))
		repos.results = cacherepo.NewResultRepository(repos.results, basecache.NewStore[matchday.ResultSet](cfg.CacheTTL))
	}

	return repos, nil
}

func buildProvider(cfg config.Config, recorder *metrics.Recorder, logger *logging.Logger) provider {
	if cfg.Provider == config.ProviderAPIFootball {
		return apifootball.NewClient(apifootball.ClientConfig{
			BaseURL:        cfg.APIFootballBaseURL,
			APIKey:         cfg.APIFootballKey,
			Timeout:        cfg.APIFootballTimeout,
			MaxRetries:     cfg.APIFootballMaxRetries,
			BookmakerID:    cfg.APIFootballBookmakerID,
			LeagueIDs:      cfg.APIFootballLeagueIDs,
			MaxMatches:     cfg.APIFootballMaxMatches,
			Logger:         logger,
			CircuitBreaker: cfg.APIFootballCircuit.WithObserver("apifootball", observeCircuit(recorder, logger)),
		})
	}

	return demo.NewProvider(
		demo.WithMatchesPerDay(cfg.DemoMatchesPerDay),
		demo.WithSalt(cfg.DemoSalt),
	)
}

func buildPublisher(cfg config.Config, recorder *metrics.Recorder, logger *logging.Logger, res *resources) (usecase.EventPublisher, error) {
	if !cfg.KafkaEnabled {
		return usecase.NopEventPublisher{}, nil
	}

	kafkaCfg := eventbus.KafkaPublisherConfig{
		Brokers:        cfg.KafkaBrokers,
		Topic:          cfg.KafkaTopic,
		WriteTimeout:   cfg.KafkaWriteTimeout,
		CircuitBreaker: cfg.KafkaCircuit.WithObserver("kafka", observeCircuit(recorder, logger)),
	}
	writer, err := eventbus.NewKafkaWriter(kafkaCfg)
	if err != nil {
		return nil, fmt.Errorf("build kafka writer: %w", err)
	}

	publisher := eventbus.NewKafkaPublisher(writer, kafkaCfg, logger)
	res.add(func(context.Context) error { return publisher.Close() })
	return publisher, nil
}

func observeCircuit(recorder *metrics.Recorder, logger *logging.Logger) resilience.StateChangeFunc {
	return func(name string, from, to resilience.CircuitState) {
		recorder.CircuitState(name, string(to))
		logger.Warn("circuit breaker state changed", "dependency", name, "from", string(from), "to", string(to))
	}
}
