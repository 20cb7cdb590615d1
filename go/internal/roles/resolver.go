// Package roles keeps a user's global role set consistent with their team
// memberships and resolves the primary role.
package roles

import (
	"github.com/google/uuid"

	"github.com/mcdev12/arena/go/internal/models"
)

// Precedence lists global roles from highest to lowest.
var Precedence = []models.Role{
	models.RoleAdmin,
	models.RoleTeamCaptain,
	models.RoleTeamMember,
	models.RolePlayer,
	models.RoleTournamentParticipant,
	models.RoleUser,
}

// ResolvePrimaryRole returns the highest-precedence role in set. Callers
// must pass a non-empty set; an empty or unrecognized set resolves to USER.
func ResolvePrimaryRole(set []models.Role) models.Role {
	for _, candidate := range Precedence {
		for _, r := range set {
			if r == candidate {
				return candidate
			}
		}
	}
	return models.RoleUser
}

// Flags says which team-derived roles a membership list implies.
type Flags struct {
	HasTeamMember  bool
	HasCaptainRole bool
}

// DeriveRoleFlags reports TEAM_MEMBER when memberships is non-empty and
// TEAM_CAPTAIN when any entry is a CAPTAIN entry.
func DeriveRoleFlags(memberships []models.TeamMembership) Flags {
	flags := Flags{HasTeamMember: len(memberships) > 0}
	for _, m := range memberships {
		if m.Role == models.TeamRoleCaptain {
			flags.HasCaptainRole = true
			break
		}
	}
	return flags
}

// Reconcile brings u.Roles and u.Role in line with u.Teams: TEAM_MEMBER and
// TEAM_CAPTAIN are added or dropped per DeriveRoleFlags, duplicates are
// removed, an empty set falls back to {USER}, and Role is re-resolved.
// It reports whether anything changed.
func Reconcile(u *models.User) bool {
	flags := DeriveRoleFlags(u.Teams)

	next := make([]models.Role, 0, len(u.Roles)+2)
	seen := make(map[models.Role]bool, len(u.Roles)+2)
	add := func(r models.Role) {
		if !seen[r] {
			seen[r] = true
			next = append(next, r)
		}
	}

	for _, r := range u.Roles {
		switch r {
		case models.RoleTeamMember:
			if flags.HasTeamMember {
				add(r)
			}
		case models.RoleTeamCaptain:
			if flags.HasCaptainRole {
				add(r)
			}
		default:
			add(r)
		}
	}
	if flags.HasTeamMember {
		add(models.RoleTeamMember)
	}
	if flags.HasCaptainRole {
		add(models.RoleTeamCaptain)
	}
	if len(next) == 0 {
		add(models.RoleUser)
	}

	primary := ResolvePrimaryRole(next)
	changed := primary != u.Role || !equal(next, u.Roles)
	u.Roles = next
	u.Role = primary
	return changed
}

// Grant adds r to the user's role set and re-resolves the primary role.
// Team-derived roles are governed by u.Teams, so granting them has no lasting effect.
func Grant(u *models.User, r models.Role) bool {
	if u.HasRole(r) {
		return Reconcile(u)
	}
	u.Roles = append(u.Roles, r)
	Reconcile(u)
	return true
}

// CaptainsOtherTeam reports whether u holds a CAPTAIN entry for a team other than teamID.
func CaptainsOtherTeam(u *models.User, teamID uuid.UUID) (bool, models.TeamMembership) {
	for _, m := range u.Teams {
		if m.Role == models.TeamRoleCaptain && m.TeamID != teamID {
			return true, m
		}
	}
	return false, models.TeamMembership{}
}

func equal(a, b []models.Role) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
