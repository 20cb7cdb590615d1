package rating

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mcdev12/arena/go/internal/catalog"
	"github.com/mcdev12/arena/go/internal/models"
)

func TestCalculateOVR(t *testing.T) {
	bonuses := catalog.DefaultRoleBonuses()

	tests := []struct {
		name  string
		stats models.StatLine
		role  string
		genre catalog.Genre
		want  int
	}{
		{"baseline player", BaselineStats(), "PLAYER", catalog.GenreFPS, 51},
		{"baseline unknown role", BaselineStats(), "Coach", catalog.GenreFPS, 50},
		{"empty stats", models.StatLine{}, "", catalog.GenreMOBA, 0},
		{"igl bonus", models.StatLine{Dmg: 80, Scr: 80, Fks: 80, Hs: 80, Ast: 80, Clu: 80}, "IGL", catalog.GenreFPS, 83},
		{"fps weighting", models.StatLine{Dmg: 100}, "", catalog.GenreFPS, 25},
		{"moba weighting", models.StatLine{Scr: 100}, "", catalog.GenreMOBA, 25},
		{"out of range values", models.StatLine{Dmg: 400, Scr: -20, Fks: 0, Hs: 0, Ast: 0, Clu: 0}, "", catalog.GenreFPS, 96},
		{"unknown genre uses default weights", models.StatLine{Dmg: 100}, "", catalog.Genre("RACING"), 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CalculateOVR(tt.stats, tt.role, bonuses, tt.genre))
		})
	}
}

func TestCalculateOVRIsDeterministic(t *testing.T) {
	stats := models.StatLine{Dmg: 71.3, Scr: 64.9, Fks: 12, Hs: 33.3, Ast: 90, Clu: 47.5}
	bonuses := catalog.MergeRoleBonuses(map[string]int{"Duelist": 4})

	first := CalculateOVR(stats, "Duelist", bonuses, catalog.GenreBattleRoyale)
	for i := 0; i < 100; i++ {
		assert.Equal(t, first, CalculateOVR(stats, "Duelist", bonuses, catalog.GenreBattleRoyale))
	}
}

func TestCalculatorUsesDefaultsWhenNil(t *testing.T) {
	calc := NewCalculator(nil)
	profile := models.GameProfile{Role: "SUBSTITUTE", Stats: BaselineStats()}

	assert.Equal(t, 50, calc.Overall(profile, catalog.GenreSports))
}
