package postgres

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/daily-coupon/internal/domain/coupon"
	"github.com/riskibarqy/daily-coupon/internal/domain/matchday"
	"github.com/riskibarqy/daily-coupon/internal/domain/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const migrationsSource = "file://../../../../db/migrations"

func setupDB(t *testing.T) *sqlx.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres integration test in short mode")
	}

	ctx := context.Background()
	var (
		container *tcpostgres.PostgresContainer
		err       error
	)
	func() {
		defer func() {
			if r := recover(); r != nil {
				t.Skipf("docker unavailable: %v", r)
			}
		}()
		container, err = tcpostgres.Run(ctx,
			"postgres:16-alpine",
			tcpostgres.WithDatabase("daily_coupon"),
			tcpostgres.WithUsername("coupon"),
			tcpostgres.WithPassword("coupon"),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(30*time.Second)),
		)
	}()
	if err != nil {
		t.Skipf("start postgres container: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("terminate postgres container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	m, err := migrate.New(migrationsSource, dsn)
	require.NoError(t, err)
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		t.Fatalf("apply migrations: %v", err)
	}
	_, _ = m.Close()

	db, err := sqlx.Connect("postgres", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestRepositories_Integration(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	now := time.Date(2026, 2, 11, 9, 0, 0, 0, time.UTC)
	day := "2026-02-11"

	users := NewUserRepository(db)
	coupons := NewCouponRepository(db)
	catalogs := NewCatalogRepository(db)
	results := NewResultRepository(db)

	alice, err := users.Create(ctx, user.User{ID: "usr-a", Name: "alice", Token: "tok-a", CreatedAt: now})
	require.NoError(t, err)
	bob, err := users.Create(ctx, user.User{ID: "usr-b", Name: "bob", Token: "tok-b", CreatedAt: now})
	require.NoError(t, err)
	assert.Less(t, alice.Seq, bob.Seq)

	_, err = users.Create(ctx, user.User{ID: "usr-c", Name: "carol", Token: "tok-a", CreatedAt: now})
	require.Error(t, err)

	t.Run("catalog first writer wins", func(t *testing.T) {
		first := matchday.Catalog{Day: day, PublishedAt: now, Matches: []matchday.Match{
			{ID: 1, League: "Süper Lig", HomeTeam: "Galatasaray", AwayTeam: "Fenerbahçe", Odds: matchday.Odds{Home: 2.0, Draw: 3.0, Away: 3.5}},
		}}
		second := matchday.Catalog{Day: day, PublishedAt: now, Matches: []matchday.Match{
			{ID: 9, League: "Other", HomeTeam: "A", AwayTeam: "B", Odds: matchday.Odds{Home: 1.1, Draw: 1.1, Away: 1.1}},
		}}

		stored, err := catalogs.SaveIfAbsent(ctx, first)
		require.NoError(t, err)
		require.Len(t, stored.Matches, 1)

		stored, err = catalogs.SaveIfAbsent(ctx, second)
		require.NoError(t, err)
		assert.Equal(t, int64(1), stored.Matches[0].ID)
		assert.Equal(t, "Fenerbahçe", stored.Matches[0].AwayTeam)
	})

	t.Run("results first writer wins", func(t *testing.T) {
		stored, err := results.SaveIfAbsent(ctx, matchday.ResultSet{Day: day, ResolvedAt: now, Outcomes: map[int64]matchday.Outcome{1: matchday.OutcomeHome}})
		require.NoError(t, err)
		assert.Equal(t, matchday.OutcomeHome, stored.Outcomes[1])

		stored, err = results.SaveIfAbsent(ctx, matchday.ResultSet{Day: day, ResolvedAt: now, Outcomes: map[int64]matchday.Outcome{1: matchday.OutcomeAway}})
		require.NoError(t, err)
		assert.Equal(t, matchday.OutcomeHome, stored.Outcomes[1])
	})

	t.Run("coupon lifecycle settles once", func(t *testing.T) {
		c := coupon.Coupon{
			ID:        "cpn-a",
			UserID:    alice.ID,
			Day:       day,
			Picks:     []coupon.Pick{{MatchID: 1, Outcome: matchday.OutcomeHome, Odd: 2.0}},
			State:     coupon.StateOpen,
			CreatedAt: now,
			UpdatedAt: now,
		}
		require.NoError(t, coupons.Upsert(ctx, c))

		c.Picks = []coupon.Pick{{MatchID: 1, Outcome: matchday.OutcomeDraw, Odd: 3.0}}
		require.NoError(t, coupons.Upsert(ctx, c))

		lockedAt := now.Add(time.Hour)
		c.State = coupon.StateLocked
		c.LockedAt = &lockedAt
		require.NoError(t, coupons.UpdateState(ctx, c, coupon.StateOpen))
		require.ErrorIs(t, coupons.UpdateState(ctx, c, coupon.StateOpen), coupon.ErrStateConflict)
		require.ErrorIs(t, coupons.Upsert(ctx, c), coupon.ErrStateConflict)

		locked, err := coupons.ListByDayAndState(ctx, day, coupon.StateLocked)
		require.NoError(t, err)
		require.Len(t, locked, 1)
		assert.Equal(t, matchday.OutcomeDraw, locked[0].Picks[0].Outcome)

		evaluatedAt := now.Add(2 * time.Hour)
		c.State = coupon.StateEvaluated
		c.AwardedPoints = 30
		c.EvaluatedAt = &evaluatedAt

		var (
			wg        sync.WaitGroup
			mu        sync.Mutex
			successes int
			conflicts int
		)
		for range 5 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := coupons.Settle(ctx, c)
				mu.Lock()
				defer mu.Unlock()
				switch {
				case err == nil:
					successes++
				case errors.Is(err, coupon.ErrStateConflict):
					conflicts++
				}
			}()
		}
		wg.Wait()
		assert.Equal(t, 1, successes)
		assert.Equal(t, 4, conflicts)

		stored, ok, err := users.GetByID(ctx, alice.ID)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, int64(30), stored.Points)
	})

	t.Run("leaderboard orders by points then registration", func(t *testing.T) {
		top, err := users.ListTop(ctx, 10)
		require.NoError(t, err)
		require.Len(t, top, 2)
		assert.Equal(t, alice.ID, top[0].ID)
		assert.Equal(t, bob.ID, top[1].ID)

		top, err = users.ListTop(ctx, 1)
		require.NoError(t, err)
		assert.Len(t, top, 1)
	})
}
