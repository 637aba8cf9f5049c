package usecase

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/riskibarqy/daily-coupon/internal/domain/matchday"
	"github.com/riskibarqy/daily-coupon/internal/domain/user"
	"github.com/riskibarqy/daily-coupon/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/daily-coupon/internal/platform/concurrency"
	"github.com/riskibarqy/daily-coupon/internal/platform/logging"
	"github.com/stretchr/testify/require"
)

const testDay = "2026-02-11"

var testNow = time.Date(2026, 2, 11, 9, 0, 0, 0, time.UTC)

type sequenceIDGenerator struct {
	prefix string
	next   atomic.Int64
}

func (g *sequenceIDGenerator) NewID() (string, error) {
	return fmt.Sprintf("%s-%03d", g.prefix, g.next.Add(1)), nil
}

type staticCatalogProvider struct {
	matches []matchday.Match
	calls   atomic.Int32
}

func (p *staticCatalogProvider) FetchCatalog(context.Context, string) ([]matchday.Match, error) {
	p.calls.Add(1)
	return append([]matchday.Match(nil), p.matches...), nil
}

type staticResultProvider struct {
	mu       sync.Mutex
	outcomes map[int64]matchday.Outcome
	calls    atomic.Int32
}

func (p *staticResultProvider) FetchResults(context.Context, matchday.Catalog) (map[int64]matchday.Outcome, error) {
	p.calls.Add(1)
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make(map[int64]matchday.Outcome, len(p.outcomes))
	for id, outcome := range p.outcomes {
		out[id] = outcome
	}
	return out, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []CouponEvent
}

func (p *recordingPublisher) Publish(_ context.Context, event CouponEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) Types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

func testMatches() []matchday.Match {
	return []matchday.Match{
		{ID: 1, League: "Süper Lig", HomeTeam: "Galatasaray", AwayTeam: "Fenerbahçe", Odds: matchday.Odds{Home: 2.0, Draw: 3.0, Away: 3.5}},
		{ID: 2, League: "La Liga", HomeTeam: "Real Madrid", AwayTeam: "Barcelona", Odds: matchday.Odds{Home: 1.5, Draw: 3.2, Away: 2.4}},
		{ID: 3, League: "Serie A", HomeTeam: "Milan", AwayTeam: "Inter", Odds: matchday.Odds{Home: 2.25, Draw: 2.9, Away: 2.1}},
	}
}

// testGame wires every service over memory repositories.
type testGame struct {
	users       *memory.UserRepository
	coupons     *memory.CouponRepository
	catalogs    *memory.CatalogRepository
	results     *memory.ResultRepository
	provider    *staticCatalogProvider
	outcomes    *staticResultProvider
	publisher   *recordingPublisher
	matchdays   *MatchdayService
	couponSvc   *CouponService
	scoring     *ScoringService
	userSvc     *UserService
	leaderboard *LeaderboardService
	settlement  *SettlementService
}

func newTestGame(t *testing.T, outcomes map[int64]matchday.Outcome) *testGame {
	t.Helper()

	logger := logging.NewNop()
	g := &testGame{
		users:     memory.NewUserRepository(),
		catalogs:  memory.NewCatalogRepository(),
		results:   memory.NewResultRepository(),
		provider:  &staticCatalogProvider{matches: testMatches()},
		outcomes:  &staticResultProvider{outcomes: outcomes},
		publisher: &recordingPublisher{},
	}
	g.coupons = memory.NewCouponRepository(g.users)

	locks := concurrency.NewKeyedMutex()
	g.matchdays = NewMatchdayService(g.catalogs, g.results, g.provider, g.outcomes, time.UTC, nil, logger)
	g.matchdays.now = func() time.Time { return testNow }
	g.couponSvc = NewCouponService(g.catalogs, g.coupons, locks, &sequenceIDGenerator{prefix: "coupon"}, g.publisher, nil, logger)
	g.couponSvc.now = func() time.Time { return testNow }
	g.scoring = NewScoringService(g.coupons, g.users, g.matchdays, locks, g.publisher, nil, logger)
	g.scoring.now = func() time.Time { return testNow.Add(2 * time.Hour) }
	g.userSvc = NewUserService(g.users, &sequenceIDGenerator{prefix: "user"}, &sequenceIDGenerator{prefix: "token"}, logger)
	g.userSvc.now = func() time.Time { return testNow }
	g.leaderboard = NewLeaderboardService(g.users, 0)
	g.settlement = NewSettlementService(g.coupons, g.scoring, 3, nil, logger)

	return g
}

func (g *testGame) register(t *testing.T, name string) user.User {
	t.Helper()
	u, err := g.userSvc.Register(context.Background(), name)
	require.NoError(t, err)
	return u
}

func (g *testGame) publish(t *testing.T) matchday.Catalog {
	t.Helper()
	catalog, err := g.matchdays.TodayCatalog(context.Background(), testDay)
	require.NoError(t, err)
	return catalog
}

func (g *testGame) balance(t *testing.T, userID string) int64 {
	t.Helper()
	u, ok, err := g.users.GetByID(context.Background(), userID)
	require.NoError(t, err)
	require.True(t, ok)
	return u.Points
}
