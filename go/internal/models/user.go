package models

import (
	"time"

	"github.com/google/uuid"
)

// Role is a global, login-identity level role tag.
type Role string

const (
	RoleAdmin                 Role = "ADMIN"
	RoleTeamCaptain           Role = "TEAM_CAPTAIN"
	RoleTeamMember            Role = "TEAM_MEMBER"
	RolePlayer                Role = "PLAYER"
	RoleTournamentParticipant Role = "TOURNAMENT_PARTICIPANT"
	RoleUser                  Role = "USER"
)

// TeamRole is a role scoped to a single team membership.
type TeamRole string

const (
	TeamRoleCaptain    TeamRole = "CAPTAIN"
	TeamRoleMember     TeamRole = "MEMBER"
	TeamRolePlayer     TeamRole = "PLAYER"
	TeamRoleSubstitute TeamRole = "SUBSTITUTE"
)

// TeamMembership is one (team, game) participation entry on a user.
type TeamMembership struct {
	TeamID uuid.UUID `json:"team_id"`
	Game   string    `json:"game"`
	Role   TeamRole  `json:"role"`
}

// User represents a login identity
type User struct {
	ID          uuid.UUID        `json:"id"`
	Username    string           `json:"username"`
	DisplayName string           `json:"display_name"`
	Email       string           `json:"email"`
	Roles       []Role           `json:"roles"`
	Role        Role             `json:"role"`
	Teams       []TeamMembership `json:"teams"`
	PlayerID    *uuid.UUID       `json:"player_id,omitempty"`
	IsBanned    bool             `json:"is_banned"`
	Version     int              `json:"version"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// HasRole reports whether r is in the user's role set.
func (u *User) HasRole(r Role) bool {
	for _, have := range u.Roles {
		if have == r {
			return true
		}
	}
	return false
}

// Name returns the display name, falling back to the username.
func (u *User) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Username
}

// MembershipFor returns the index of the entry for teamID, or -1.
func (u *User) MembershipFor(teamID uuid.UUID) int {
	for i, m := range u.Teams {
		if m.TeamID == teamID {
			return i
		}
	}
	return -1
}
