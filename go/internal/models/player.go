package models

import (
	"time"

	"github.com/google/uuid"
)

// MaxGameProfiles is the number of games a player can hold a profile for.
const MaxGameProfiles = 3

// StatLine is the fixed six-axis stat vector. Axis meaning depends on the
// genre (see catalog labels); absent values decode as 0.
type StatLine struct {
	Dmg float64 `json:"dmg"`
	Scr float64 `json:"scr"`
	Fks float64 `json:"fks"`
	Hs  float64 `json:"hs"`
	Ast float64 `json:"ast"`
	Clu float64 `json:"clu"`
}

// StatKeys lists the stat axes in their canonical order.
var StatKeys = []string{"dmg", "scr", "fks", "hs", "ast", "clu"}

// Values returns the stats keyed by axis name.
func (s StatLine) Values() map[string]float64 {
	return map[string]float64{
		"dmg": s.Dmg,
		"scr": s.Scr,
		"fks": s.Fks,
		"hs":  s.Hs,
		"ast": s.Ast,
		"clu": s.Clu,
	}
}

// GameProfile is a player's performance profile for one game.
type GameProfile struct {
	Game     string     `json:"game"`
	Role     string     `json:"role"`
	TeamID   *uuid.UUID `json:"team,omitempty"`
	Stats    StatLine   `json:"stats"`
	Overall  int        `json:"overall"`
	IsActive bool       `json:"is_active"`
}

// Player is a performance profile, separate from a login identity.
type Player struct {
	ID        uuid.UUID     `json:"id"`
	IGN       string        `json:"ign"`
	RealName  string        `json:"real_name"`
	Slug      string        `json:"slug"`
	UserID    *uuid.UUID    `json:"user_id,omitempty"`
	Country   string        `json:"country"`
	Games     []GameProfile `json:"games"`
	Version   int           `json:"version"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}
