package user

import "context"

// Repository exposes user persistence operations. ListTop orders by points
// descending, then by registration sequence.
type Repository interface {
	Create(ctx context.Context, u User) (User, error)
	GetByID(ctx context.Context, id string) (User, bool, error)
	GetByToken(ctx context.Context, token string) (User, bool, error)
	ListTop(ctx context.Context, limit int) ([]User, error)
}
