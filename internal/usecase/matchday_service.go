package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/daily-coupon/internal/domain/coupon"
	"github.com/riskibarqy/daily-coupon/internal/domain/matchday"
	"github.com/riskibarqy/daily-coupon/internal/platform/logging"
	"github.com/riskibarqy/daily-coupon/internal/platform/metrics"
	"github.com/riskibarqy/daily-coupon/internal/platform/resilience"
)

// MatchdayService materializes the catalog and result set of a day. Both are
// fetched at most once per day per process and, once stored, never change.
type MatchdayService struct {
	catalogRepo     matchday.CatalogRepository
	resultRepo      matchday.ResultRepository
	catalogProvider CatalogProvider
	resultProvider  ResultProvider
	location        *time.Location
	metrics         *metrics.Recorder
	logger          *logging.Logger
	now             func() time.Time

	catalogFlight resilience.SingleFlight[matchday.Catalog]
	resultFlight  resilience.SingleFlight[matchday.ResultSet]
}

func NewMatchdayService(
	catalogRepo matchday.CatalogRepository,
	resultRepo matchday.ResultRepository,
	catalogProvider CatalogProvider,
	resultProvider ResultProvider,
	location *time.Location,
	recorder *metrics.Recorder,
	logger *logging.Logger,
) *MatchdayService {
	if logger == nil {
		logger = logging.Default()
	}
	if location == nil {
		location = time.UTC
	}

	return &MatchdayService{
		catalogRepo:     catalogRepo,
		resultRepo:      resultRepo,
		catalogProvider: catalogProvider,
		resultProvider:  resultProvider,
		location:        location,
		metrics:         recorder,
		logger:          logger,
		now:             time.Now,
	}
}

// Today returns the current day key in the configured timezone.
func (s *MatchdayService) Today() string {
	return matchday.DayKey(s.now(), s.location)
}

// TodayCatalog returns the stored catalog of day, fetching and publishing it on
// first access.
func (s *MatchdayService) TodayCatalog(ctx context.Context, day string) (matchday.Catalog, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchdayService.TodayCatalog")
	defer span.End()

	day, err := normalizeDay(day)
	if err != nil {
		return matchday.Catalog{}, err
	}

	stored, exists, err := s.catalogRepo.GetByDay(ctx, day)
	if err != nil {
		return matchday.Catalog{}, fmt.Errorf("get catalog day=%s: %w", day, err)
	}
	if exists {
		return stored, nil
	}

	catalog, err, _ := s.catalogFlight.Do(day, func() (matchday.Catalog, error) {
		return s.publishCatalog(ctx, day)
	})
	if err != nil {
		return matchday.Catalog{}, err
	}
	return matchday.CloneCatalog(catalog), nil
}

func (s *MatchdayService) publishCatalog(ctx context.Context, day string) (matchday.Catalog, error) {
	stored, exists, err := s.catalogRepo.GetByDay(ctx, day)
	if err != nil {
		return matchday.Catalog{}, fmt.Errorf("get catalog day=%s: %w", day, err)
	}
	if exists {
		return stored, nil
	}

	matches, err := s.catalogProvider.FetchCatalog(ctx, day)
	s.metrics.ProviderFetch("catalog", err)
	if err != nil {
		s.logger.WarnContext(ctx, "catalog provider failed", "day", day, "error", err)
		return matchday.Catalog{}, fmt.Errorf("%w: fetch catalog day=%s: %v", ErrProviderUnavailable, day, err)
	}

	catalog := matchday.Catalog{
		Day:         day,
		Matches:     append([]matchday.Match(nil), matches...),
		PublishedAt: s.now().UTC(),
	}
	if err := catalog.Validate(); err != nil {
		return matchday.Catalog{}, fmt.Errorf("%w: provider returned invalid catalog: %v", ErrProviderUnavailable, err)
	}

	saved, err := s.catalogRepo.SaveIfAbsent(ctx, catalog)
	if err != nil {
		return matchday.Catalog{}, fmt.Errorf("save catalog day=%s: %w", day, err)
	}

	s.logger.InfoContext(ctx, "catalog published",
		"day", day,
		"matches", len(saved.Matches),
	)
	return saved, nil
}

// PublishedCatalog returns the stored catalog of day without ever calling
// the provider.
func (s *MatchdayService) PublishedCatalog(ctx context.Context, day string) (matchday.Catalog, bool, error) {
	day, err := normalizeDay(day)
	if err != nil {
		return matchday.Catalog{}, false, err
	}

	catalog, exists, err := s.catalogRepo.GetByDay(ctx, day)
	if err != nil {
		return matchday.Catalog{}, false, fmt.Errorf("get catalog day=%s: %w", day, err)
	}
	return catalog, exists, nil
}

// Results returns the stored result set of day, resolving it on first access.
// The day's catalog must already be published.
func (s *MatchdayService) Results(ctx context.Context, day string) (matchday.ResultSet, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchdayService.Results")
	defer span.End()

	day, err := normalizeDay(day)
	if err != nil {
		return matchday.ResultSet{}, err
	}

	stored, exists, err := s.resultRepo.GetByDay(ctx, day)
	if err != nil {
		return matchday.ResultSet{}, fmt.Errorf("get results day=%s: %w", day, err)
	}
	if exists {
		return stored, nil
	}

	results, err, _ := s.resultFlight.Do(day, func() (matchday.ResultSet, error) {
		return s.resolveResults(ctx, day)
	})
	if err != nil {
		return matchday.ResultSet{}, err
	}
	return matchday.CloneResultSet(results), nil
}

func (s *MatchdayService) resolveResults(ctx context.Context, day string) (matchday.ResultSet, error) {
	stored, exists, err := s.resultRepo.GetByDay(ctx, day)
	if err != nil {
		return matchday.ResultSet{}, fmt.Errorf("get results day=%s: %w", day, err)
	}
	if exists {
		return stored, nil
	}

	catalog, exists, err := s.catalogRepo.GetByDay(ctx, day)
	if err != nil {
		return matchday.ResultSet{}, fmt.Errorf("get catalog day=%s: %w", day, err)
	}
	if !exists {
		return matchday.ResultSet{}, coupon.ErrNoMatchesPublished
	}

	outcomes, err := s.resultProvider.FetchResults(ctx, catalog)
	s.metrics.ProviderFetch("results", err)
	if err != nil {
		s.logger.WarnContext(ctx, "result provider failed", "day", day, "error", err)
		return matchday.ResultSet{}, fmt.Errorf("%w: fetch results day=%s: %v", ErrProviderUnavailable, day, err)
	}

	results := matchday.ResultSet{
		Day:        day,
		Outcomes:   make(map[int64]matchday.Outcome, len(catalog.Matches)),
		ResolvedAt: s.now().UTC(),
	}
	for _, m := range catalog.Matches {
		outcome, ok := outcomes[m.ID]
		if !ok {
			continue
		}
		if _, known := matchday.AllOutcomes[outcome]; !known {
			s.logger.WarnContext(ctx, "result provider returned unknown outcome", "day", day, "match_id", m.ID, "outcome", string(outcome))
			continue
		}
		results.Outcomes[m.ID] = outcome
	}

	saved, err := s.resultRepo.SaveIfAbsent(ctx, results)
	if err != nil {
		return matchday.ResultSet{}, fmt.Errorf("save results day=%s: %w", day, err)
	}

	s.logger.InfoContext(ctx, "results resolved",
		"day", day,
		"resolved", len(saved.Outcomes),
		"matches", len(catalog.Matches),
	)
	return saved, nil
}

func normalizeDay(day string) (string, error) {
	day = strings.TrimSpace(day)
	if day == "" {
		return "", fmt.Errorf("%w: day is required", ErrInvalidInput)
	}
	if _, err := matchday.ParseDay(day); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return day, nil
}
