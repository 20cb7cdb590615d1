// Package rating computes a player's Overall Rating (OVR) for one game.
package rating

import (
	"math"

	"github.com/mcdev12/arena/go/internal/catalog"
	"github.com/mcdev12/arena/go/internal/models"
)

// BaselineValue is the neutral value every axis starts at for an unranked profile.
const BaselineValue = 50

// BaselineStats returns the "average, unranked" stat line given to new profiles.
func BaselineStats() models.StatLine {
	return models.StatLine{
		Dmg: BaselineValue,
		Scr: BaselineValue,
		Fks: BaselineValue,
		Hs:  BaselineValue,
		Ast: BaselineValue,
		Clu: BaselineValue,
	}
}

// CalculateOVR returns round(genre-weighted mean of stats) + bonuses[role].
// Values outside [0,100] are used as-is; an unknown role adds nothing.
func CalculateOVR(stats models.StatLine, role string, bonuses catalog.RoleBonuses, genre catalog.Genre) int {
	weights := catalog.Spec(genre).Weights
	values := stats.Values()

	var sum, totalWeight float64
	for _, key := range models.StatKeys {
		w := weights[key]
		sum += w * values[key]
		totalWeight += w
	}

	var base float64
	if totalWeight > 0 {
		base = sum / totalWeight
	} else {
		for _, key := range models.StatKeys {
			base += values[key]
		}
		base /= float64(len(models.StatKeys))
	}

	return int(math.Round(base)) + bonuses.Bonus(role)
}

// Calculator binds a bonus table so callers only pass the profile and genre.
type Calculator struct {
	Bonuses catalog.RoleBonuses
}

// NewCalculator creates a calculator; a nil table means the defaults.
func NewCalculator(bonuses catalog.RoleBonuses) Calculator {
	if bonuses == nil {
		bonuses = catalog.DefaultRoleBonuses()
	}
	return Calculator{Bonuses: bonuses}
}

// Overall computes the OVR of a profile in genre.
func (c Calculator) Overall(profile models.GameProfile, genre catalog.Genre) int {
	return CalculateOVR(profile.Stats, profile.Role, c.Bonuses, genre)
}
