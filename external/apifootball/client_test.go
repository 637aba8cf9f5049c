package apifootball

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/daily-coupon/internal/domain/matchday"
	"github.com/riskibarqy/daily-coupon/internal/platform/logging"
	"github.com/riskibarqy/daily-coupon/internal/platform/resilience"
	"github.com/riskibarqy/daily-coupon/internal/usecase"
)

const fixturesPayload = `{
  "errors": [],
  "results": 3,
  "paging": {"current": 1, "total": 1},
  "response": [
    {"fixture": {"id": 101, "status": {"short": "NS"}}, "league": {"id": 203, "name": "Süper Lig"},
     "teams": {"home": {"id": 1, "name": "Galatasaray"}, "away": {"id": 2, "name": "Fenerbahçe"}},
     "goals": {"home": null, "away": null}, "score": {"fulltime": {"home": null, "away": null}}},
    {"fixture": {"id": 102, "status": {"short": "NS"}}, "league": {"id": 140, "name": "La Liga"},
     "teams": {"home": {"id": 3, "name": "Real Madrid"}, "away": {"id": 4, "name": "Barcelona"}},
     "goals": {"home": null, "away": null}, "score": {"fulltime": {"home": null, "away": null}}},
    {"fixture": {"id": 103, "status": {"short": "NS"}}, "league": {"id": 39, "name": "Premier League"},
     "teams": {"home": {"id": 5, "name": "Liverpool"}, "away": {"id": 6, "name": "Manchester City"}},
     "goals": {"home": null, "away": null}, "score": {"fulltime": {"home": null, "away": null}}}
  ]
}`

const oddsPayload = `{
  "errors": [],
  "paging": {"current": 1, "total": 1},
  "response": [
    {"fixture": {"id": 101}, "bookmakers": [{"id": 8, "name": "Bet365", "bets": [
      {"id": 1, "name": "Match Winner", "values": [
        {"value": "Home", "odd": "2.10"}, {"value": "Draw", "odd": "3.40"}, {"value": "Away", "odd": "3.25"}]}]}]},
    {"fixture": {"id": 102}, "bookmakers": [{"id": 8, "name": "Bet365", "bets": [
      {"id": 1, "name": "Match Winner", "values": [
        {"value": "Home", "odd": "1.95"}, {"value": "Draw", "odd": "3.60"}]}]}]}
  ]
}`

const finishedPayload = `{
  "errors": [],
  "paging": {"current": 1, "total": 1},
  "response": [
    {"fixture": {"id": 101, "status": {"short": "FT"}}, "league": {"id": 203, "name": "Süper Lig"},
     "teams": {"home": {"name": "Galatasaray"}, "away": {"name": "Fenerbahçe"}},
     "goals": {"home": 2, "away": 1}, "score": {"fulltime": {"home": 2, "away": 1}}},
    {"fixture": {"id": 102, "status": {"short": "PEN"}}, "league": {"id": 140, "name": "La Liga"},
     "teams": {"home": {"name": "Real Madrid"}, "away": {"name": "Barcelona"}},
     "goals": {"home": 1, "away": 1}, "score": {"fulltime": {"home": 1, "away": 1}}},
    {"fixture": {"id": 103, "status": {"short": "2H"}}, "league": {"id": 39, "name": "Premier League"},
     "teams": {"home": {"name": "Liverpool"}, "away": {"name": "Manchester City"}},
     "goals": {"home": 0, "away": 3}, "score": {"fulltime": {"home": null, "away": null}}}
  ]
}`

func newTestClient(t *testing.T, handler http.Handler, breaker resilience.CircuitBreakerConfig) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewClient(ClientConfig{
		BaseURL:        server.URL,
		APIKey:         "secret",
		MaxRetries:     2,
		Logger:         logging.NewNop(),
		CircuitBreaker: breaker,
	})
	client.retryBackoff = time.Millisecond
	return client
}

func TestClient_FetchCatalog(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.Header.Get(authHeader))
		assert.Equal(t, "2026-02-11", r.URL.Query().Get("date"))
		switch r.URL.Path {
		case "/fixtures":
			_, _ = w.Write([]byte(fixturesPayload))
		case "/odds":
			assert.Equal(t, "1", r.URL.Query().Get("bet"))
			_, _ = w.Write([]byte(oddsPayload))
		default:
			http.NotFound(w, r)
		}
	}), resilience.CircuitBreakerConfig{})

	matches, err := client.FetchCatalog(context.Background(), "2026-02-11")
	require.NoError(t, err)
	require.Len(t, matches, 1, "fixtures without a full 1X2 market are skipped")
	assert.Equal(t, matchday.Match{
		ID:       101,
		League:   "Süper Lig",
		HomeTeam: "Galatasaray",
		AwayTeam: "Fenerbahçe",
		Odds:     matchday.Odds{Home: 2.10, Draw: 3.40, Away: 3.25},
	}, matches[0])
}

func TestClient_FetchResults(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(finishedPayload))
	}), resilience.CircuitBreakerConfig{})

	catalog := matchday.Catalog{Day: "2026-02-11", Matches: []matchday.Match{{ID: 101}, {ID: 102}, {ID: 103}}}
	results, err := client.FetchResults(context.Background(), catalog)
	require.NoError(t, err)
	assert.Equal(t, map[int64]matchday.Outcome{
		101: matchday.OutcomeHome,
		102: matchday.OutcomeDraw,
	}, results)
}

func TestClient_RetriesTransientStatus(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(finishedPayload))
	}), resilience.CircuitBreakerConfig{})

	_, err := client.FetchResults(context.Background(), matchday.Catalog{Day: "2026-02-11"})
	require.NoError(t, err)
	assert.EqualValues(t, 3, calls.Load())
}

func TestClient_DoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"message":"invalid key"}`))
	}), resilience.CircuitBreakerConfig{})

	_, err := client.FetchCatalog(context.Background(), "2026-02-11")
	require.Error(t, err)
	assert.EqualValues(t, 1, calls.Load())
	assert.False(t, isCircuitFailure(err))
}

func TestClient_ProviderErrorsInBody(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"errors": {"requests": "daily limit reached"}, "response": []}`))
	}), resilience.CircuitBreakerConfig{})

	_, err := client.FetchCatalog(context.Background(), "2026-02-11")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "daily limit reached")
}

func TestClient_CircuitOpensAfterTransientFailures(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}), resilience.CircuitBreakerConfig{
		Enabled:          true,
		FailureThreshold: 1,
		OpenTimeout:      time.Minute,
		HalfOpenMaxReq:   1,
	})
	client.maxRetries = 0

	_, err := client.FetchResults(context.Background(), matchday.Catalog{Day: "2026-02-11"})
	require.Error(t, err)
	assert.True(t, isCircuitFailure(err))

	_, err = client.FetchResults(context.Background(), matchday.Catalog{Day: "2026-02-11"})
	require.True(t, errors.Is(err, usecase.ErrDependencyUnavailable))
	assert.EqualValues(t, 1, calls.Load())
}
