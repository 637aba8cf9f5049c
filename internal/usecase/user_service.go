package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/daily-coupon/internal/domain/user"
	idgen "github.com/riskibarqy/daily-coupon/internal/platform/id"
	"github.com/riskibarqy/daily-coupon/internal/platform/logging"
)

const maxUserNameLength = 64

type UserService struct {
	userRepo user.Repository
	idGen    idgen.Generator
	tokenGen idgen.Generator
	logger   *logging.Logger
	now      func() time.Time
}

func NewUserService(userRepo user.Repository, idGen, tokenGen idgen.Generator, logger *logging.Logger) *UserService {
	if logger == nil {
		logger = logging.Default()
	}

	return &UserService{
		userRepo: userRepo,
		idGen:    idGen,
		tokenGen: tokenGen,
		logger:   logger,
		now:      time.Now,
	}
}

// Register creates a user with a zero balance and a fresh opaque token.
func (s *UserService) Register(ctx context.Context, name string) (user.User, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.UserService.Register")
	defer span.End()

	name = strings.TrimSpace(name)
	if name == "" {
		return user.User{}, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if len([]rune(name)) > maxUserNameLength {
		return user.User{}, fmt.Errorf("%w: name must be at most %d characters", ErrInvalidInput, maxUserNameLength)
	}

	id, err := s.idGen.NewID()
	if err != nil {
		return user.User{}, fmt.Errorf("generate user id: %w", err)
	}
	token, err := s.tokenGen.NewID()
	if err != nil {
		return user.User{}, fmt.Errorf("generate user token: %w", err)
	}

	u := user.User{
		ID:        id,
		Name:      name,
		Token:     token,
		CreatedAt: s.now().UTC(),
	}
	if err := u.ValidateBasic(); err != nil {
		return user.User{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	created, err := s.userRepo.Create(ctx, u)
	if err != nil {
		return user.User{}, fmt.Errorf("create user: %w", err)
	}

	s.logger.InfoContext(ctx, "user registered", "user_id", created.ID)
	return created, nil
}

// Login returns the user owning token.
func (s *UserService) Login(ctx context.Context, token string) (user.User, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.UserService.Login")
	defer span.End()

	token = strings.TrimSpace(token)
	if token == "" {
		return user.User{}, fmt.Errorf("%w: token is required", ErrInvalidInput)
	}

	u, exists, err := s.userRepo.GetByToken(ctx, token)
	if err != nil {
		return user.User{}, fmt.Errorf("get user by token: %w", err)
	}
	if !exists {
		return user.User{}, fmt.Errorf("%w: unknown token", ErrNotFound)
	}
	return u, nil
}

// Resolve maps a request credential to a principal. Unknown or empty tokens
// are ErrUnauthorized.
func (s *UserService) Resolve(ctx context.Context, token string) (user.Principal, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return user.Principal{}, fmt.Errorf("%w: missing token", ErrUnauthorized)
	}

	u, exists, err := s.userRepo.GetByToken(ctx, token)
	if err != nil {
		return user.Principal{}, fmt.Errorf("%w: resolve token: %v", ErrDependencyUnavailable, err)
	}
	if !exists {
		return user.Principal{}, fmt.Errorf("%w: invalid token", ErrUnauthorized)
	}
	return user.Principal{UserID: u.ID, Name: u.Name}, nil
}

// Profile returns the user behind an authenticated principal.
func (s *UserService) Profile(ctx context.Context, userID string) (user.User, error) {
	u, exists, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return user.User{}, fmt.Errorf("get user: %w", err)
	}
	if !exists {
		return user.User{}, fmt.Errorf("%w: user=%s", ErrNotFound, userID)
	}
	return u, nil
}
