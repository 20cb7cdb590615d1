package settings

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/mcdev12/arena/go/internal/settings/db"
	"github.com/mcdev12/arena/go/internal/sqlutil"
)

const roleBonusesKey = "role_bonuses"

// Querier defines what the repository needs from the database layer
type Querier interface {
	GetSetting(ctx context.Context, key string) (db.Setting, error)
	UpsertSetting(ctx context.Context, arg db.UpsertSettingParams) (db.Setting, error)
}

// Repository stores the role bonus override table in the settings table
type Repository struct {
	queries Querier
}

// NewRepository creates a new settings repository
func NewRepository(querier Querier) *Repository {
	return &Repository{queries: querier}
}

// GetRoleBonusOverrides returns the stored overrides, or nil when none were saved
func (r *Repository) GetRoleBonusOverrides(ctx context.Context) (map[string]int, error) {
	row, err := r.queries.GetSetting(ctx, roleBonusesKey)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get role bonuses: %w", sqlutil.Classify(err))
	}

	var overrides map[string]int
	if err := json.Unmarshal(row.Value, &overrides); err != nil {
		return nil, fmt.Errorf("failed to decode role bonuses: %w", err)
	}
	return overrides, nil
}

// SetRoleBonusOverrides replaces the stored overrides
func (r *Repository) SetRoleBonusOverrides(ctx context.Context, overrides map[string]int) error {
	data, err := json.Marshal(overrides)
	if err != nil {
		return fmt.Errorf("failed to encode role bonuses: %w", err)
	}
	if _, err := r.queries.UpsertSetting(ctx, db.UpsertSettingParams{Key: roleBonusesKey, Value: data}); err != nil {
		return fmt.Errorf("failed to save role bonuses: %w", sqlutil.Classify(err))
	}
	return nil
}

// MemoryRepository keeps overrides in process.
type MemoryRepository struct {
	mu        sync.Mutex
	overrides map[string]int
	Err       error
}

func (m *MemoryRepository) GetRoleBonusOverrides(context.Context) (map[string]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	if m.overrides == nil {
		return nil, nil
	}
	out := make(map[string]int, len(m.overrides))
	for k, v := range m.overrides {
		out[k] = v
	}
	return out, nil
}

func (m *MemoryRepository) SetRoleBonusOverrides(_ context.Context, overrides map[string]int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.overrides = make(map[string]int, len(overrides))
	for k, v := range overrides {
		m.overrides[k] = v
	}
	return nil
}
