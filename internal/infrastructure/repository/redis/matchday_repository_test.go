package redis

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/daily-coupon/internal/domain/matchday"
)

type fakeCommands struct {
	mu   sync.Mutex
	data map[string]string
	ttls map[string]time.Duration
	fail error
}

func newFakeCommands() *fakeCommands {
	return &fakeCommands{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeCommands) Get(_ context.Context, key string) *goredis.StringCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return goredis.NewStringResult("", f.fail)
	}
	value, ok := f.data[key]
	if !ok {
		return goredis.NewStringResult("", goredis.Nil)
	}
	return goredis.NewStringResult(value, nil)
}

func (f *fakeCommands) SetNX(_ context.Context, key string, value any, expiration time.Duration) *goredis.BoolCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return goredis.NewBoolResult(false, f.fail)
	}
	if _, ok := f.data[key]; ok {
		return goredis.NewBoolResult(false, nil)
	}
	f.data[key] = string(value.([]byte))
	f.ttls[key] = expiration
	return goredis.NewBoolResult(true, nil)
}

func TestCatalogRepository_SaveIfAbsent(t *testing.T) {
	ctx := context.Background()
	rdb := newFakeCommands()
	repo := NewCatalogRepository(rdb, WithKeyPrefix("test"), WithTTL(48*time.Hour))

	_, ok, err := repo.GetByDay(ctx, "2026-02-11")
	require.NoError(t, err)
	assert.False(t, ok)

	published := time.Date(2026, 2, 11, 8, 0, 0, 0, time.UTC)
	first := matchday.Catalog{
		Day:         "2026-02-11",
		PublishedAt: published,
		Matches: []matchday.Match{
			{ID: 1, League: "Süper Lig", HomeTeam: "Galatasaray", AwayTeam: "Fenerbahçe", Odds: matchday.Odds{Home: 2.0, Draw: 3.0, Away: 3.5}},
		},
	}
	saved, err := repo.SaveIfAbsent(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, first, saved)
	assert.Equal(t, 48*time.Hour, rdb.ttls["test:catalog:2026-02-11"])

	loser := matchday.CloneCatalog(first)
	loser.Matches[0].Odds.Home = 9.9
	saved, err = repo.SaveIfAbsent(ctx, loser)
	require.NoError(t, err)
	assert.Equal(t, 2.0, saved.Matches[0].Odds.Home, "first writer wins")

	got, ok, err := repo.GetByDay(ctx, "2026-02-11")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, first.Matches, got.Matches)
	assert.True(t, published.Equal(got.PublishedAt))
}

func TestResultRepository_RoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewResultRepository(newFakeCommands())

	results := matchday.ResultSet{
		Day:      "2026-02-11",
		Outcomes: map[int64]matchday.Outcome{1: matchday.OutcomeHome, 2: matchday.OutcomeDraw},
	}
	_, err := repo.SaveIfAbsent(ctx, results)
	require.NoError(t, err)

	got, ok, err := repo.GetByDay(ctx, "2026-02-11")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, results.Outcomes, got.Outcomes)
}

func TestRepository_PropagatesRedisErrors(t *testing.T) {
	rdb := newFakeCommands()
	rdb.fail = errors.New("connection refused")
	repo := NewResultRepository(rdb)

	_, _, err := repo.GetByDay(context.Background(), "2026-02-11")
	require.ErrorContains(t, err, "connection refused")

	_, err = repo.SaveIfAbsent(context.Background(), matchday.ResultSet{Day: "2026-02-11"})
	require.ErrorContains(t, err, "connection refused")
}
