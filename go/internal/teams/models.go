package teams

import (
	"github.com/google/uuid"

	"github.com/mcdev12/arena/go/internal/models"
)

// CreateTeamRequest represents the data needed to create a new team
type CreateTeamRequest struct {
	Name        string              `json:"name"`
	Slug        string              `json:"slug,omitempty"`
	CaptainID   *uuid.UUID          `json:"captain_id,omitempty"`
	Members     []uuid.UUID         `json:"members,omitempty"`
	Lineup      []models.RosterSlot `json:"lineup,omitempty"`
	Substitutes []models.RosterSlot `json:"substitutes,omitempty"`
	GameFocus   string              `json:"game_focus"`
	// Status defaults to PENDING
	Status   *models.TeamStatus `json:"status,omitempty"`
	IsBanned bool               `json:"is_banned"`
}

// UpdateTeamRequest is a partial update; nil fields are left alone
type UpdateTeamRequest struct {
	Name         *string              `json:"name,omitempty"`
	Slug         *string              `json:"slug,omitempty"`
	CaptainID    *uuid.UUID           `json:"captain_id,omitempty"`
	ClearCaptain bool                 `json:"clear_captain,omitempty"`
	Lineup       *[]models.RosterSlot `json:"lineup,omitempty"`
	Substitutes  *[]models.RosterSlot `json:"substitutes,omitempty"`
	GameFocus    *string              `json:"game_focus,omitempty"`
	Status       *models.TeamStatus   `json:"status,omitempty"`
	IsBanned     *bool                `json:"is_banned,omitempty"`
}

type teamEvent struct {
	TeamID uuid.UUID         `json:"team_id"`
	Name   string            `json:"name"`
	Status models.TeamStatus `json:"status"`
}

type captainChangedEvent struct {
	TeamID     uuid.UUID  `json:"team_id"`
	OldCaptain *uuid.UUID `json:"old_captain_id,omitempty"`
	NewCaptain *uuid.UUID `json:"new_captain_id,omitempty"`
}

type memberEvent struct {
	TeamID uuid.UUID `json:"team_id"`
	UserID uuid.UUID `json:"user_id"`
}
