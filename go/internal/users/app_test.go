package users

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcdev12/arena/go/internal/apperrors"
	"github.com/mcdev12/arena/go/internal/authz"
	"github.com/mcdev12/arena/go/internal/models"
	"github.com/mcdev12/arena/go/internal/store/memory"
)

func adminCtx() context.Context {
	return authz.WithPrincipal(context.Background(), authz.System())
}

func newTestApp(t *testing.T) (*App, *authz.Tokens, *clockwork.FakeClock) {
	t.Helper()
	clock := clockwork.NewFakeClockAt(time.Now().Truncate(time.Second))
	tokens, err := authz.NewTokens("test-secret", "arena")
	require.NoError(t, err)
	return NewApp(memory.New(clock).Users(), tokens, clock), tokens, clock
}

func TestCreateUser(t *testing.T) {
	app, _, _ := newTestApp(t)

	user, err := app.CreateUser(adminCtx(), CreateUserRequest{
		Username: "tenz",
		Email:    "tenz@example.com",
		Roles:    []models.Role{models.RolePlayer, models.RolePlayer},
	})
	require.NoError(t, err)
	assert.Equal(t, []models.Role{models.RoleUser, models.RolePlayer}, user.Roles)
	assert.Equal(t, models.RolePlayer, user.Role)

	found, err := app.GetUserByUsername(context.Background(), "TENZ")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)

	_, err = app.CreateUser(adminCtx(), CreateUserRequest{Username: "Tenz"})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestCreateUserValidation(t *testing.T) {
	app, _, _ := newTestApp(t)

	tests := []struct {
		name string
		req  CreateUserRequest
	}{
		{name: "missing username", req: CreateUserRequest{Email: "a@b.co"}},
		{name: "bad email", req: CreateUserRequest{Username: "a", Email: "nope"}},
		{name: "derived role", req: CreateUserRequest{Username: "a", Roles: []models.Role{models.RoleTeamCaptain}}},
		{name: "unknown role", req: CreateUserRequest{Username: "a", Roles: []models.Role{"OWNER"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := app.CreateUser(adminCtx(), tt.req)
			assert.ErrorIs(t, err, apperrors.ErrValidation)
		})
	}

	_, err := app.CreateUser(context.Background(), CreateUserRequest{Username: "a"})
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestGetUserByUsernameNotFound(t *testing.T) {
	app, _, _ := newTestApp(t)
	_, err := app.GetUserByUsername(context.Background(), "ghost")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = app.GetUser(context.Background(), uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestIssueToken(t *testing.T) {
	app, tokens, clock := newTestApp(t)
	user, err := app.CreateUser(adminCtx(), CreateUserRequest{Username: "admin2", Roles: []models.Role{models.RoleAdmin}})
	require.NoError(t, err)

	resp, err := app.IssueToken(adminCtx(), user.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, clock.Now().Add(DefaultTokenTTL), resp.ExpiresAt)

	p, err := tokens.Parse(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, p.UserID)
	assert.True(t, p.IsAdmin())

	_, err = app.IssueToken(context.Background(), user.ID, time.Hour)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}
