// Package settings serves the admin-editable role bonus table.
package settings

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/mcdev12/arena/go/internal/apperrors"
	"github.com/mcdev12/arena/go/internal/authz"
	"github.com/mcdev12/arena/go/internal/catalog"
	"github.com/mcdev12/arena/go/internal/metrics"
)

// MaxRoleBonus bounds an override in either direction.
const MaxRoleBonus = 50

// SettingsRepository defines what the app layer needs from the repository
type SettingsRepository interface {
	GetRoleBonusOverrides(ctx context.Context) (map[string]int, error)
	SetRoleBonusOverrides(ctx context.Context, overrides map[string]int) error
}

// RoleBonusTable is what GetRoleBonuses returns.
type RoleBonusTable struct {
	Defaults  map[string]int `json:"defaults"`
	Overrides map[string]int `json:"overrides"`
	Effective map[string]int `json:"effective"`
}

// App handles settings business logic
type App struct {
	repo  SettingsRepository
	cache Cache
}

// NewApp creates a settings App; cache may be nil.
func NewApp(repo SettingsRepository, cache Cache) *App {
	return &App{repo: repo, cache: cache}
}

// RoleBonuses returns defaults merged with the stored overrides. A cache
// failure falls through to the repository.
func (a *App) RoleBonuses(ctx context.Context) (catalog.RoleBonuses, error) {
	if a.cache != nil {
		cached, ok, err := a.cache.Get(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("role bonus cache unavailable")
		} else if ok {
			metrics.RecordCacheHit()
			return catalog.RoleBonuses(cached), nil
		}
		metrics.RecordCacheMiss()
	}

	overrides, err := a.repo.GetRoleBonusOverrides(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load role bonuses: %w", err)
	}
	merged := catalog.MergeRoleBonuses(overrides)

	if a.cache != nil {
		if err := a.cache.Set(ctx, merged); err != nil {
			log.Warn().Err(err).Msg("failed to cache role bonuses")
		}
	}
	return merged, nil
}

// GetRoleBonuses returns the defaults, the overrides and the effective table
func (a *App) GetRoleBonuses(ctx context.Context) (*RoleBonusTable, error) {
	if err := authz.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	overrides, err := a.repo.GetRoleBonusOverrides(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load role bonuses: %w", err)
	}
	if overrides == nil {
		overrides = map[string]int{}
	}

	return &RoleBonusTable{
		Defaults:  catalog.DefaultRoleBonuses(),
		Overrides: overrides,
		Effective: catalog.MergeRoleBonuses(overrides),
	}, nil
}

// SetRoleBonuses replaces the override table
func (a *App) SetRoleBonuses(ctx context.Context, overrides map[string]int) (*RoleBonusTable, error) {
	if err := authz.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	if err := validateOverrides(overrides); err != nil {
		return nil, err
	}

	if err := a.repo.SetRoleBonusOverrides(ctx, overrides); err != nil {
		return nil, fmt.Errorf("failed to save role bonuses: %w", err)
	}
	if a.cache != nil {
		if err := a.cache.Invalidate(ctx); err != nil {
			log.Warn().Err(err).Msg("failed to invalidate role bonus cache")
		}
	}

	log.Info().Int("overrides", len(overrides)).Msg("role bonuses updated")
	return a.GetRoleBonuses(ctx)
}

func validateOverrides(overrides map[string]int) error {
	for role, bonus := range overrides {
		if strings.TrimSpace(role) == "" {
			return apperrors.Validation("role name cannot be empty")
		}
		if bonus < -MaxRoleBonus || bonus > MaxRoleBonus {
			return apperrors.Validation("bonus for %s must be between %d and %d", role, -MaxRoleBonus, MaxRoleBonus)
		}
	}
	return nil
}
