package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/daily-coupon/internal/domain/coupon"
	"github.com/riskibarqy/daily-coupon/internal/domain/matchday"
)

func TestLeaderboardService_Top(t *testing.T) {
	g := newTestGame(t, map[int64]matchday.Outcome{1: matchday.OutcomeHome})
	ctx := context.Background()

	empty, err := g.leaderboard.Top(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty)

	g.publish(t)
	first := g.register(t, "first")
	second := g.register(t, "second")
	third := g.register(t, "third")

	submitAndLock(t, g, third.ID, []coupon.RawItem{{MatchID: 1, Prediction: "1"}})
	_, err = g.scoring.Evaluate(ctx, third.ID, testDay)
	require.NoError(t, err)

	top, err := g.leaderboard.Top(ctx)
	require.NoError(t, err)
	require.Len(t, top, 3)
	assert.Equal(t, LeaderboardEntry{Rank: 1, UserID: third.ID, Name: "third", Points: 20}, top[0])
	assert.Equal(t, first.ID, top[1].UserID)
	assert.Equal(t, second.ID, top[2].UserID)

	limited := NewLeaderboardService(g.users, 2)
	top, err = limited.Top(ctx)
	require.NoError(t, err)
	assert.Len(t, top, 2)
}
