package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/daily-coupon/internal/domain/user"
	qb "github.com/riskibarqy/daily-coupon/internal/platform/querybuilder"
)

const usersTable = "users"

var userColumns = qb.Columns(userTableModel{})

type UserRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, u user.User) (user.User, error) {
	builder, err := qb.InsertModel(usersTable, userInsertModel{
		PublicID:  u.ID,
		Name:      u.Name,
		Token:     u.Token,
		Points:    u.Points,
		CreatedAt: u.CreatedAt,
	})
	if err != nil {
		return user.User{}, err
	}
	query, args, err := builder.Returning(userColumns...).ToSQL()
	if err != nil {
		return user.User{}, fmt.Errorf("build insert user query: %w", err)
	}

	var row userTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isUniqueViolation(err) {
			return user.User{}, fmt.Errorf("user %s already exists: %w", u.ID, err)
		}
		return user.User{}, fmt.Errorf("insert user: %w", err)
	}
	return row.toDomain(), nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (user.User, bool, error) {
	return r.getBy(ctx, "public_id", id)
}

func (r *UserRepository) GetByToken(ctx context.Context, token string) (user.User, bool, error) {
	return r.getBy(ctx, "token", token)
}

func (r *UserRepository) getBy(ctx context.Context, column, value string) (user.User, bool, error) {
	query, args, err := qb.Select(userColumns...).
		From(usersTable).
		Where(qb.Eq(column, value)).
		ToSQL()
	if err != nil {
		return user.User{}, false, fmt.Errorf("build select user query: %w", err)
	}

	var row userTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return user.User{}, false, nil
		}
		return user.User{}, false, fmt.Errorf("get user by %s: %w", column, err)
	}
	return row.toDomain(), true, nil
}

func (r *UserRepository) ListTop(ctx context.Context, limit int) ([]user.User, error) {
	query, args, err := qb.Select(userColumns...).
		From(usersTable).
		OrderBy("points DESC", "id ASC").
		Limit(limit).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build leaderboard query: %w", err)
	}

	var rows []userTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list top users: %w", err)
	}

	out := make([]user.User, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}
