package player

import (
	"github.com/google/uuid"

	"github.com/mcdev12/arena/go/internal/models"
)

// CreatePlayerRequest represents the data needed to create a player by hand
type CreatePlayerRequest struct {
	IGN      string     `json:"ign"`
	RealName string     `json:"real_name,omitempty"`
	Country  string     `json:"country,omitempty"`
	UserID   *uuid.UUID `json:"user_id,omitempty"`
}

// UpdateGameProfileRequest patches the profile of one game; nil fields are left alone
type UpdateGameProfileRequest struct {
	Game     string           `json:"game"`
	Stats    *models.StatLine `json:"stats,omitempty"`
	Role     *string          `json:"role,omitempty"`
	IsActive *bool            `json:"is_active,omitempty"`
}

// RecalculateResult reports a bulk OVR recalculation
type RecalculateResult struct {
	PlayersScanned int `json:"players_scanned"`
	PlayersUpdated int `json:"players_updated"`
}
