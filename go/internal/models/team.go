package models

import (
	"time"

	"github.com/google/uuid"
)

// TeamStatus is the approval state of a team.
type TeamStatus string

const (
	TeamStatusPending  TeamStatus = "PENDING"
	TeamStatusApproved TeamStatus = "APPROVED"
	TeamStatusRejected TeamStatus = "REJECTED"
)

// Valid reports whether s is one of the known statuses.
func (s TeamStatus) Valid() bool {
	switch s {
	case TeamStatusPending, TeamStatusApproved, TeamStatusRejected:
		return true
	}
	return false
}

const (
	MaxLineupSlots     = 5
	MaxSubstituteSlots = 2
)

// RosterSlot is a free-text roster entry. UserID is set only when the slot
// was linked to a registered account.
type RosterSlot struct {
	IGN           string     `json:"ign"`
	DiscordHandle string     `json:"discord_handle,omitempty"`
	UserID        *uuid.UUID `json:"user_id,omitempty"`
}

// Team represents an esports team
type Team struct {
	ID          uuid.UUID    `json:"id"`
	Name        string       `json:"name"`
	Slug        string       `json:"slug"`
	CaptainID   *uuid.UUID   `json:"captain_id,omitempty"`
	Members     []uuid.UUID  `json:"members"`
	Lineup      []RosterSlot `json:"lineup"`
	Substitutes []RosterSlot `json:"substitutes"`
	GameFocus   string       `json:"game_focus"`
	Status      TeamStatus   `json:"status"`
	IsBanned    bool         `json:"is_banned"`
	Version     int          `json:"version"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// HasMember reports whether userID is in the team's member set.
func (t *Team) HasMember(userID uuid.UUID) bool {
	for _, m := range t.Members {
		if m == userID {
			return true
		}
	}
	return false
}

// AddMember adds userID to the member set if it is not already there.
func (t *Team) AddMember(userID uuid.UUID) {
	if !t.HasMember(userID) {
		t.Members = append(t.Members, userID)
	}
}

// RemoveMember drops userID from the member set.
func (t *Team) RemoveMember(userID uuid.UUID) {
	kept := make([]uuid.UUID, 0, len(t.Members))
	for _, m := range t.Members {
		if m != userID {
			kept = append(kept, m)
		}
	}
	t.Members = kept
}

// IsCaptain reports whether userID is the team's captain.
func (t *Team) IsCaptain(userID uuid.UUID) bool {
	return t.CaptainID != nil && *t.CaptainID == userID
}
