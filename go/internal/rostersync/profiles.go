package rostersync

import (
	"strings"

	"github.com/google/uuid"

	"github.com/mcdev12/arena/go/internal/models"
	"github.com/mcdev12/arena/go/internal/rating"
)

func newProfile(game string, teamID uuid.UUID, role models.TeamRole, games Games, calc rating.Calculator) models.GameProfile {
	team := teamID
	p := models.GameProfile{
		Game:     game,
		Role:     string(role),
		TeamID:   &team,
		Stats:    rating.BaselineStats(),
		IsActive: true,
	}
	p.Overall = calc.Overall(p, games.CategoryOf(game))
	return p
}

// normalizeProfiles rewrites every profile's game to its canonical name and
// collapses profiles that now name the same game. Of two duplicates the
// first is kept, unless only the later carries a team reference, or both
// carry one and only the later points at preferTeam.
func normalizeProfiles(profiles []models.GameProfile, preferTeam uuid.UUID, games Games) []models.GameProfile {
	out := make([]models.GameProfile, 0, len(profiles))
	index := make(map[string]int, len(profiles))

	for _, p := range profiles {
		p.Game = games.Normalize(p.Game)
		k := strings.ToLower(p.Game)
		i, dup := index[k]
		if !dup {
			index[k] = len(out)
			out = append(out, p)
			continue
		}
		if replaces(out[i], p, preferTeam) {
			out[i] = p
		}
	}
	return out
}

func replaces(kept, later models.GameProfile, preferTeam uuid.UUID) bool {
	switch {
	case later.TeamID == nil:
		return false
	case kept.TeamID == nil:
		return true
	}
	return *kept.TeamID != preferTeam && *later.TeamID == preferTeam
}

func findProfile(profiles []models.GameProfile, game string) int {
	for i, p := range profiles {
		if strings.EqualFold(p.Game, game) {
			return i
		}
	}
	return -1
}

// recomputeOverall refreshes every profile's OVR with its own genre.
func recomputeOverall(profiles []models.GameProfile, games Games, calc rating.Calculator) {
	for i := range profiles {
		profiles[i].Overall = calc.Overall(profiles[i], games.CategoryOf(profiles[i].Game))
	}
}
