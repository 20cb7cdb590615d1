package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcdev12/arena/go/internal/apperrors"
	"github.com/mcdev12/arena/go/internal/models"
	"github.com/mcdev12/arena/go/internal/store"
)

func TestWithinTxRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	s := New(clockwork.NewFakeClock())

	team := &models.Team{Name: "Rollback", Slug: "rollback"}
	require.NoError(t, s.Teams().CreateTeam(ctx, team))

	boom := errors.New("boom")
	err := s.WithinTx(ctx, func(tx store.Tx) error {
		loaded, err := tx.Teams().GetTeam(ctx, team.ID)
		require.NoError(t, err)
		loaded.Name = "Changed"
		require.NoError(t, tx.Teams().UpdateTeam(ctx, loaded))
		require.NoError(t, tx.Users().CreateUser(ctx, &models.User{Username: "ghost"}))
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := s.Teams().GetTeam(ctx, team.ID)
	require.NoError(t, err)
	assert.Equal(t, "Rollback", got.Name, "update should be rolled back")

	users, err := s.Users().ListUsers(ctx)
	require.NoError(t, err)
	assert.Empty(t, users, "created user should be rolled back")
}

func TestUpdateChecksVersion(t *testing.T) {
	ctx := context.Background()
	s := New(clockwork.NewFakeClock())

	user := &models.User{Username: "ace", Roles: []models.Role{models.RoleUser}}
	require.NoError(t, s.Users().CreateUser(ctx, user))
	assert.Equal(t, 1, user.Version)

	first, err := s.Users().GetUser(ctx, user.ID)
	require.NoError(t, err)
	second, err := s.Users().GetUser(ctx, user.ID)
	require.NoError(t, err)

	require.NoError(t, s.Users().UpdateUser(ctx, first))
	assert.Equal(t, 2, first.Version)

	err = s.Users().UpdateUser(ctx, second)
	assert.ErrorIs(t, err, apperrors.ErrStaleWrite)
}

func TestReturnedEntitiesAreCopies(t *testing.T) {
	ctx := context.Background()
	s := New(clockwork.NewFakeClock())

	member := uuid.New()
	team := &models.Team{Name: "Copy", Slug: "copy", Members: []uuid.UUID{member}}
	require.NoError(t, s.Teams().CreateTeam(ctx, team))

	team.Members[0] = uuid.New()

	got, err := s.Teams().GetTeam(ctx, team.ID)
	require.NoError(t, err)
	assert.Equal(t, member, got.Members[0])
}

func TestPlayerFinders(t *testing.T) {
	ctx := context.Background()
	s := New(clockwork.NewFakeClock())

	userID := uuid.New()
	teamID := uuid.New()
	p := &models.Player{
		IGN:    "TenZ",
		Slug:   "tenz",
		UserID: &userID,
		Games:  []models.GameProfile{{Game: "Valorant", TeamID: &teamID}},
	}
	require.NoError(t, s.Players().CreatePlayer(ctx, p))

	byIGN, err := s.Players().FindPlayerByIGN(ctx, "tenz")
	require.NoError(t, err)
	require.NotNil(t, byIGN)
	assert.Equal(t, p.ID, byIGN.ID)

	byUser, err := s.Players().FindPlayerByUserID(ctx, userID)
	require.NoError(t, err)
	require.NotNil(t, byUser)

	missing, err := s.Players().FindPlayerByIGN(ctx, "nobody")
	require.NoError(t, err)
	assert.Nil(t, missing)

	onTeam, err := s.Players().ListPlayersByTeam(ctx, teamID)
	require.NoError(t, err)
	assert.Len(t, onTeam, 1)

	exists, err := s.Players().SlugExists(ctx, "TENZ")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestFaultHook(t *testing.T) {
	ctx := context.Background()
	s := New(clockwork.NewFakeClock())
	s.SetFault(func(op string, id uuid.UUID) error {
		if op == "ListAllTeams" {
			return apperrors.ErrStoreUnavailable
		}
		return nil
	})

	_, err := s.Teams().ListAllTeams(ctx)
	assert.ErrorIs(t, err, apperrors.ErrStoreUnavailable)

	s.SetFault(nil)
	_, err = s.Teams().ListAllTeams(ctx)
	assert.NoError(t, err)
}

func TestGetMissingIsNotFound(t *testing.T) {
	_, err := New(nil).Players().GetPlayer(context.Background(), uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
