package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/riskibarqy/daily-coupon/internal/domain/user"
)

type UserRepository struct {
	mu      sync.RWMutex
	items   map[string]user.User
	byToken map[string]string
	seq     int64
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		items:   make(map[string]user.User),
		byToken: make(map[string]string),
	}
}

func (r *UserRepository) Create(_ context.Context, u user.User) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[u.ID]; ok {
		return user.User{}, fmt.Errorf("user %s already exists", u.ID)
	}
	if _, ok := r.byToken[u.Token]; ok {
		return user.User{}, fmt.Errorf("user token already issued")
	}

	r.seq++
	u.Seq = r.seq
	r.items[u.ID] = u
	r.byToken[u.Token] = u.ID
	return u, nil
}

func (r *UserRepository) GetByID(_ context.Context, id string) (user.User, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.items[id]
	return u, ok, nil
}

func (r *UserRepository) GetByToken(_ context.Context, token string) (user.User, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byToken[token]
	if !ok {
		return user.User{}, false, nil
	}
	u, ok := r.items[id]
	return u, ok, nil
}

func (r *UserRepository) ListTop(_ context.Context, limit int) ([]user.User, error) {
	r.mu.RLock()
	out := make([]user.User, 0, len(r.items))
	for _, u := range r.items {
		out = append(out, u)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Points != out[j].Points {
			return out[i].Points > out[j].Points
		}
		return out[i].Seq < out[j].Seq
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// credit adds points to a user's balance. Callers must not hold r.mu.
func (r *UserRepository) credit(userID string, points int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.items[userID]
	if !ok {
		return 0, fmt.Errorf("user %s not found", userID)
	}
	u.Points += points
	r.items[userID] = u
	return u.Points, nil
}
