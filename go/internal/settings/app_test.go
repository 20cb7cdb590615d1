package settings

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcdev12/arena/go/internal/apperrors"
	"github.com/mcdev12/arena/go/internal/authz"
	"github.com/mcdev12/arena/go/internal/models"
)

type mapCache struct {
	value       map[string]int
	sets        int
	invalidated int
}

func (c *mapCache) Get(context.Context) (map[string]int, bool, error) {
	if c.value == nil {
		return nil, false, nil
	}
	return c.value, true, nil
}

func (c *mapCache) Set(_ context.Context, bonuses map[string]int) error {
	c.value = bonuses
	c.sets++
	return nil
}

func (c *mapCache) Invalidate(context.Context) error {
	c.value = nil
	c.invalidated++
	return nil
}

func adminCtx() context.Context {
	return authz.WithPrincipal(context.Background(), authz.Principal{Username: "root", Roles: []models.Role{models.RoleAdmin}})
}

func TestRoleBonusesFallsBackToDefaults(t *testing.T) {
	app := NewApp(&MemoryRepository{}, nil)

	bonuses, err := app.RoleBonuses(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, bonuses.Bonus("PLAYER"))
	assert.Equal(t, 3, bonuses.Bonus("IGL"))
}

func TestSetRoleBonuses(t *testing.T) {
	cache := &mapCache{}
	app := NewApp(&MemoryRepository{}, cache)
	ctx := adminCtx()

	_, err := app.RoleBonuses(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.sets, "first read should fill the cache")

	table, err := app.SetRoleBonuses(ctx, map[string]int{"Duelist": 7})
	require.NoError(t, err)
	assert.Equal(t, 7, table.Effective["DUELIST"])
	assert.Equal(t, 2, table.Defaults["DUELIST"])
	assert.Equal(t, 1, cache.invalidated, "a write should drop the cached table")

	bonuses, err := app.RoleBonuses(ctx)
	require.NoError(t, err)
	assert.Equal(t, 7, bonuses.Bonus("duelist"))
}

func TestSetRoleBonusesValidation(t *testing.T) {
	app := NewApp(&MemoryRepository{}, nil)

	_, err := app.SetRoleBonuses(adminCtx(), map[string]int{"IGL": 500})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = app.SetRoleBonuses(adminCtx(), map[string]int{" ": 1})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestRoleBonusAdminRequiresAdmin(t *testing.T) {
	app := NewApp(&MemoryRepository{}, nil)

	_, err := app.GetRoleBonuses(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	_, err = app.SetRoleBonuses(context.Background(), map[string]int{"IGL": 1})
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestRoleBonusesPropagatesStoreErrors(t *testing.T) {
	app := NewApp(&MemoryRepository{Err: apperrors.ErrStoreUnavailable}, nil)

	_, err := app.RoleBonuses(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrStoreUnavailable)
}
