package catalog

import (
	"sort"
	"strings"
)

// RoleBonuses maps a role tag to the bonus added on top of the base rating.
// Keys are stored upper-cased so lookups are case-insensitive.
type RoleBonuses map[string]int

// ROLE_BONUSES_DEFAULT in the admin console; used when no override is stored.
var defaultRoleBonuses = map[string]int{
	// team-scoped roles, used by profiles created from roster sync
	"CAPTAIN":    2,
	"PLAYER":     1,
	"SUBSTITUTE": 0,
	"MEMBER":     0,

	"IGL":        3,
	"DUELIST":    2,
	"ENTRY":      2,
	"AWPER":      2,
	"INITIATOR":  1,
	"CONTROLLER": 1,
	"SENTINEL":   1,
	"SUPPORT":    1,
	"LURKER":     1,
	"FLEX":       1,

	"CARRY":   2,
	"MID":     2,
	"ADC":     2,
	"JUNGLE":  1,
	"TOP":     1,
	"OFFLANE": 1,
	"ROAMER":  1,

	"FRAGGER": 2,
	"SCOUT":   1,
	"ANCHOR":  1,

	"STRIKER":    2,
	"PLAYMAKER":  2,
	"MIDFIELDER": 1,
	"DEFENDER":   1,
	"GOALKEEPER": 1,
}

func roleKey(role string) string {
	return strings.ToUpper(strings.TrimSpace(role))
}

// DefaultRoleBonuses returns a fresh copy of the hard-coded defaults.
func DefaultRoleBonuses() RoleBonuses {
	out := make(RoleBonuses, len(defaultRoleBonuses))
	for k, v := range defaultRoleBonuses {
		out[k] = v
	}
	return out
}

// MergeRoleBonuses overlays overrides on the defaults. Override keys are
// applied in sorted order so keys differing only in case resolve the same
// way every time.
func MergeRoleBonuses(overrides map[string]int) RoleBonuses {
	out := DefaultRoleBonuses()
	keys := make([]string, 0, len(overrides))
	for k := range overrides {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if roleKey(k) == "" {
			continue
		}
		out[roleKey(k)] = overrides[k]
	}
	return out
}

// Bonus returns the bonus for role, 0 when unknown.
func (b RoleBonuses) Bonus(role string) int {
	return b[roleKey(role)]
}
