// Package apifootball sources daily catalogs and results from the
// api-football v3 REST API.
package apifootball

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"

	"github.com/riskibarqy/daily-coupon/internal/domain/matchday"
	"github.com/riskibarqy/daily-coupon/internal/platform/logging"
	"github.com/riskibarqy/daily-coupon/internal/platform/resilience"
	"github.com/riskibarqy/daily-coupon/internal/usecase"
)

const (
	defaultBaseURL       = "https://v3.football.api-sports.io"
	defaultBookmakerID   = 8
	matchWinnerBetID     = 1
	defaultMaxMatches    = 10
	maxOddsPages         = 10
	authHeader           = "x-apisports-key"
	maxResponseBodyBytes = 6 << 20
)

var errAPIFootballTransient = crerr.New("api-football transient failure")

var finishedStatuses = map[string]struct{}{
	"FT":  {},
	"AET": {},
	"PEN": {},
}

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	APIKey         string
	Timeout        time.Duration
	MaxRetries     int
	BookmakerID    int64
	LeagueIDs      []int64
	MaxMatches     int
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client implements usecase.CatalogProvider and usecase.ResultProvider.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	apiKey         string
	maxRetries     int
	bookmakerID    int64
	leagues        map[int64]struct{}
	maxMatches     int
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	flight         resilience.SingleFlight[[]byte]
	retryBackoff   time.Duration
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 20 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	bookmakerID := cfg.BookmakerID
	if bookmakerID <= 0 {
		bookmakerID = defaultBookmakerID
	}
	maxMatches := cfg.MaxMatches
	if maxMatches <= 0 {
		maxMatches = defaultMaxMatches
	}
	leagues := make(map[int64]struct{}, len(cfg.LeagueIDs))
	for _, id := range cfg.LeagueIDs {
		if id > 0 {
			leagues[id] = struct{}{}
		}
	}
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		apiKey:         strings.TrimSpace(cfg.APIKey),
		maxRetries:     max(cfg.MaxRetries, 0),
		bookmakerID:    bookmakerID,
		leagues:        leagues,
		maxMatches:     maxMatches,
		logger:         logger,
		breaker:        resilience.NewCircuitBreakerFromConfig(breakerCfg),
		circuitEnabled: breakerCfg.Enabled,
		retryBackoff:   time.Second,
	}
}

// FetchCatalog lists the day's fixtures that have a full 1X2 market at the
// configured bookmaker. The api-football fixture id is used as match id.
func (c *Client) FetchCatalog(ctx context.Context, day string) ([]matchday.Match, error) {
	if _, err := matchday.ParseDay(day); err != nil {
		return nil, err
	}

	fixtures, err := c.fetchFixtures(ctx, day)
	if err != nil {
		return nil, err
	}

	odds, err := c.fetchMatchWinnerOdds(ctx, day)
	if err != nil {
		return nil, err
	}

	matches := make([]matchday.Match, 0, len(fixtures))
	for _, item := range fixtures {
		if item.Fixture.ID <= 0 || !c.leagueAllowed(item.League.ID) {
			continue
		}
		if item.Fixture.Status.Short != "NS" && item.Fixture.Status.Short != "TBD" {
			continue
		}
		fixtureOdds, ok := odds[item.Fixture.ID]
		if !ok {
			continue
		}
		matches = append(matches, matchday.Match{
			ID:       item.Fixture.ID,
			League:   strings.TrimSpace(item.League.Name),
			HomeTeam: strings.TrimSpace(item.Teams.Home.Name),
			AwayTeam: strings.TrimSpace(item.Teams.Away.Name),
			Odds:     fixtureOdds,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool { return matches[i].ID < matches[j].ID })
	if len(matches) > c.maxMatches {
		matches = matches[:c.maxMatches]
	}

	c.logger.InfoContext(ctx, "api-football catalog fetched",
		"day", day,
		"fixtures", len(fixtures),
		"matches", len(matches),
	)
	return matches, nil
}

// FetchResults resolves finished fixtures of the catalog from their full
// time score. Fixtures still running or postponed are left out.
func (c *Client) FetchResults(ctx context.Context, catalog matchday.Catalog) (map[int64]matchday.Outcome, error) {
	fixtures, err := c.fetchFixtures(ctx, catalog.Day)
	if err != nil {
		return nil, err
	}

	out := make(map[int64]matchday.Outcome, len(catalog.Matches))
	for _, item := range fixtures {
		if _, ok := catalog.MatchByID(item.Fixture.ID); !ok {
			continue
		}
		if outcome, ok := resolveOutcome(item); ok {
			out[item.Fixture.ID] = outcome
		}
	}
	return out, nil
}

func (c *Client) fetchFixtures(ctx context.Context, day string) ([]fixtureItem, error) {
	var envelope fixturesEnvelope
	if err := c.doJSON(ctx, "/fixtures", map[string]string{"date": day}, &envelope); err != nil {
		return nil, fmt.Errorf("fetch fixtures date=%s: %w", day, err)
	}
	if len(envelope.Errors) > 0 {
		return nil, fmt.Errorf("fetch fixtures date=%s: provider errors: %s", day, envelope.Errors)
	}
	return envelope.Response, nil
}

func (c *Client) fetchMatchWinnerOdds(ctx context.Context, day string) (map[int64]matchday.Odds, error) {
	out := make(map[int64]matchday.Odds, 64)
	for page := 1; page <= maxOddsPages; page++ {
		query := map[string]string{
			"date":      day,
			"bookmaker": strconv.FormatInt(c.bookmakerID, 10),
			"bet":       strconv.Itoa(matchWinnerBetID),
			"page":      strconv.Itoa(page),
		}

		var envelope oddsEnvelope
		if err := c.doJSON(ctx, "/odds", query, &envelope); err != nil {
			return nil, fmt.Errorf("fetch odds date=%s page=%d: %w", day, page, err)
		}
		if len(envelope.Errors) > 0 {
			return nil, fmt.Errorf("fetch odds date=%s page=%d: provider errors: %s", day, page, envelope.Errors)
		}

		for _, item := range envelope.Response {
			if odds, ok := matchWinnerOdds(item); ok {
				out[item.Fixture.ID] = odds
			}
		}

		if envelope.Paging.Total <= page {
			break
		}
	}
	return out, nil
}

func (c *Client) leagueAllowed(id int64) bool {
	if len(c.leagues) == 0 {
		return true
	}
	_, ok := c.leagues[id]
	return ok
}

func matchWinnerOdds(item oddsItem) (matchday.Odds, bool) {
	for _, bookmaker := range item.Bookmakers {
		for _, b := range bookmaker.Bets {
			if b.ID != matchWinnerBetID {
				continue
			}
			var odds matchday.Odds
			for _, v := range b.Values {
				switch strings.ToLower(strings.TrimSpace(v.Value)) {
				case "home":
					odds.Home = parseOdd(v.Odd)
				case "draw":
					odds.Draw = parseOdd(v.Odd)
				case "away":
					odds.Away = parseOdd(v.Odd)
				}
			}
			if odds.Home > 0 && odds.Draw > 0 && odds.Away > 0 {
				return odds, true
			}
		}
	}
	return matchday.Odds{}, false
}

func resolveOutcome(item fixtureItem) (matchday.Outcome, bool) {
	if _, ok := finishedStatuses[item.Fixture.Status.Short]; !ok {
		return "", false
	}
	score := item.Score.Fulltime
	if score.Home == nil || score.Away == nil {
		score = item.Goals
	}
	if score.Home == nil || score.Away == nil {
		return "", false
	}

	switch {
	case *score.Home > *score.Away:
		return matchday.OutcomeHome, true
	case *score.Home < *score.Away:
		return matchday.OutcomeAway, true
	default:
		return matchday.OutcomeDraw, true
	}
}

func (c *Client) doJSON(ctx context.Context, path string, query map[string]string, target any) error {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "api-football circuit breaker rejected request", "state", c.breaker.State())
			return fmt.Errorf("%w: odds provider is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
	}

	values := url.Values{}
	for key, value := range query {
		values.Set(key, value)
	}
	fullURL := c.baseURL + path
	if encoded := values.Encode(); encoded != "" {
		fullURL += "?" + encoded
	}

	raw, err, _ := c.flight.Do(fullURL, func() ([]byte, error) {
		raw, reqErr := c.executeRequest(ctx, fullURL)
		if c.circuitEnabled {
			if isCircuitFailure(reqErr) {
				c.breaker.RecordFailure()
			} else {
				c.breaker.RecordSuccess()
			}
		}
		return raw, reqErr
	})
	if err != nil {
		return err
	}

	if err := sonic.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("decode provider payload: %w", err)
	}
	return nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("accept", "application/json")
		req.Header.Set(authHeader, c.apiKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = crerr.Wrapf(errAPIFootballTransient, "send request: %s", redactKey(err.Error(), c.apiKey))
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodyBytes))
			_ = resp.Body.Close()
			switch {
			case readErr != nil:
				lastErr = crerr.Wrapf(errAPIFootballTransient, "read response body: %v", readErr)
			case resp.StatusCode >= 200 && resp.StatusCode < 300:
				return raw, nil
			case isRetryableStatus(resp.StatusCode):
				lastErr = crerr.Wrapf(errAPIFootballTransient, "provider status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
			default:
				return nil, fmt.Errorf("provider status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
			}
		}

		if attempt == c.maxRetries {
			break
		}
		timer := time.NewTimer(time.Duration(attempt+1) * c.retryBackoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("provider request failed")
	}
	c.logger.WarnContext(ctx, "api-football request failed", "url", fullURL, "error", lastErr)
	return nil, lastErr
}

func isCircuitFailure(err error) bool {
	return err != nil && crerr.Is(err, errAPIFootballTransient)
}

func isRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func redactKey(value, key string) string {
	if key == "" {
		return value
	}
	return strings.ReplaceAll(value, key, "REDACTED")
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= 240 {
		return text
	}
	return text[:240] + "..."
}
