package roles

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/mcdev12/arena/go/internal/models"
)

func TestResolvePrimaryRole(t *testing.T) {
	tests := []struct {
		name string
		set  []models.Role
		want models.Role
	}{
		{"admin beats everything", []models.Role{models.RoleUser, models.RoleTeamCaptain, models.RoleAdmin}, models.RoleAdmin},
		{"captain over member", []models.Role{models.RoleTeamMember, models.RoleTeamCaptain}, models.RoleTeamCaptain},
		{"player over participant", []models.Role{models.RoleTournamentParticipant, models.RolePlayer}, models.RolePlayer},
		{"user only", []models.Role{models.RoleUser}, models.RoleUser},
		{"empty falls back", nil, models.RoleUser},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolvePrimaryRole(tt.set))
		})
	}
}

func TestDeriveRoleFlags(t *testing.T) {
	assert.Equal(t, Flags{}, DeriveRoleFlags(nil))

	member := []models.TeamMembership{{TeamID: uuid.New(), Role: models.TeamRoleSubstitute}}
	assert.Equal(t, Flags{HasTeamMember: true}, DeriveRoleFlags(member))

	captain := append(member, models.TeamMembership{TeamID: uuid.New(), Role: models.TeamRoleCaptain})
	assert.Equal(t, Flags{HasTeamMember: true, HasCaptainRole: true}, DeriveRoleFlags(captain))
}

func TestReconcile(t *testing.T) {
	teamID := uuid.New()

	t.Run("adds team roles from memberships", func(t *testing.T) {
		u := &models.User{
			Roles: []models.Role{models.RoleUser},
			Role:  models.RoleUser,
			Teams: []models.TeamMembership{{TeamID: teamID, Role: models.TeamRoleCaptain}},
		}

		assert.True(t, Reconcile(u))
		assert.ElementsMatch(t, []models.Role{models.RoleUser, models.RoleTeamMember, models.RoleTeamCaptain}, u.Roles)
		assert.Equal(t, models.RoleTeamCaptain, u.Role)
	})

	t.Run("drops stale team roles and falls back to USER", func(t *testing.T) {
		u := &models.User{
			Roles: []models.Role{models.RoleTeamCaptain, models.RoleTeamMember},
			Role:  models.RoleTeamCaptain,
		}

		assert.True(t, Reconcile(u))
		assert.Equal(t, []models.Role{models.RoleUser}, u.Roles)
		assert.Equal(t, models.RoleUser, u.Role)
	})

	t.Run("keeps unrelated roles", func(t *testing.T) {
		u := &models.User{
			Roles: []models.Role{models.RoleAdmin, models.RoleTeamCaptain, models.RolePlayer},
			Teams: []models.TeamMembership{{TeamID: teamID, Role: models.TeamRoleMember}},
		}

		Reconcile(u)
		assert.ElementsMatch(t, []models.Role{models.RoleAdmin, models.RolePlayer, models.RoleTeamMember}, u.Roles)
		assert.Equal(t, models.RoleAdmin, u.Role)
	})

	t.Run("no change is reported when consistent", func(t *testing.T) {
		u := &models.User{
			Roles: []models.Role{models.RoleUser, models.RoleTeamMember},
			Role:  models.RoleTeamMember,
			Teams: []models.TeamMembership{{TeamID: teamID, Role: models.TeamRoleMember}},
		}

		assert.False(t, Reconcile(u))
	})
}

func TestGrant(t *testing.T) {
	u := &models.User{Roles: []models.Role{models.RoleUser}, Role: models.RoleUser}

	assert.True(t, Grant(u, models.RolePlayer))
	assert.Equal(t, models.RolePlayer, u.Role)
	assert.False(t, Grant(u, models.RolePlayer))
}

func TestCaptainsOtherTeam(t *testing.T) {
	teamA, teamB := uuid.New(), uuid.New()
	u := &models.User{Teams: []models.TeamMembership{
		{TeamID: teamA, Role: models.TeamRoleCaptain},
		{TeamID: teamB, Role: models.TeamRoleMember},
	}}

	other, entry := CaptainsOtherTeam(u, teamB)
	assert.True(t, other)
	assert.Equal(t, teamA, entry.TeamID)

	other, _ = CaptainsOtherTeam(u, teamA)
	assert.False(t, other)
}
