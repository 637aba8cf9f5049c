package usecase

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService_RegisterLoginResolve(t *testing.T) {
	g := newTestGame(t, nil)
	ctx := context.Background()

	u, err := g.userSvc.Register(ctx, "  Ayşe  ")
	require.NoError(t, err)
	assert.Equal(t, "Ayşe", u.Name)
	assert.Zero(t, u.Points)
	assert.NotEmpty(t, u.Token)

	logged, err := g.userSvc.Login(ctx, u.Token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, logged.ID)

	principal, err := g.userSvc.Resolve(ctx, u.Token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, principal.UserID)

	_, err = g.userSvc.Login(ctx, "nope")
	require.ErrorIs(t, err, ErrNotFound)

	_, err = g.userSvc.Resolve(ctx, "nope")
	require.ErrorIs(t, err, ErrUnauthorized)

	_, err = g.userSvc.Resolve(ctx, "")
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestUserService_Register_Validation(t *testing.T) {
	g := newTestGame(t, nil)

	_, err := g.userSvc.Register(context.Background(), "   ")
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = g.userSvc.Register(context.Background(), strings.Repeat("a", maxUserNameLength+1))
	require.ErrorIs(t, err, ErrInvalidInput)
}
