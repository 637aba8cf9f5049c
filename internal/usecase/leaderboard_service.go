package usecase

import (
	"context"
	"fmt"

	"github.com/riskibarqy/daily-coupon/internal/domain/user"
)

const defaultLeaderboardLimit = 50

// LeaderboardEntry is one ranked row of the leaderboard.
type LeaderboardEntry struct {
	Rank   int
	UserID string
	Name   string
	Points int64
}

type LeaderboardService struct {
	userRepo user.Repository
	limit    int
}

func NewLeaderboardService(userRepo user.Repository, limit int) *LeaderboardService {
	if limit <= 0 {
		limit = defaultLeaderboardLimit
	}
	return &LeaderboardService{userRepo: userRepo, limit: limit}
}

// Top returns users by descending points, ties broken by registration order.
func (s *LeaderboardService) Top(ctx context.Context) ([]LeaderboardEntry, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeaderboardService.Top")
	defer span.End()

	users, err := s.userRepo.ListTop(ctx, s.limit)
	if err != nil {
		return nil, fmt.Errorf("list top users: %w", err)
	}

	out := make([]LeaderboardEntry, 0, len(users))
	for i, u := range users {
		out = append(out, LeaderboardEntry{
			Rank:   i + 1,
			UserID: u.ID,
			Name:   u.Name,
			Points: u.Points,
		})
	}
	return out, nil
}
