// Package catalog holds the static genre/role configuration and the game
// registry the rating and roster code look games up in.
package catalog

import (
	"sort"
	"strings"
)

// Genre is a game-category bucket.
type Genre string

const (
	GenreFPS          Genre = "FPS"
	GenreMOBA         Genre = "MOBA"
	GenreBattleRoyale Genre = "BATTLE_ROYALE"
	GenreSports       Genre = "SPORTS"
)

// DefaultGenre is used for games the registry does not know.
const DefaultGenre = GenreFPS

// GenreSpec describes how a genre labels and weighs the six stat axes.
type GenreSpec struct {
	Genre   Genre              `json:"genre"`
	Labels  map[string]string  `json:"labels"`
	Roles   []string           `json:"roles"`
	Weights map[string]float64 `json:"weights"`
}

var genres = map[Genre]GenreSpec{
	GenreFPS: {
		Genre: GenreFPS,
		Labels: map[string]string{
			"dmg": "Average Damage",
			"scr": "Combat Score",
			"fks": "First Kills",
			"hs":  "Headshot %",
			"ast": "Assists",
			"clu": "Clutches",
		},
		Roles:   []string{"Duelist", "Initiator", "Controller", "Sentinel", "IGL", "Entry", "AWPer", "Support", "Lurker", "Flex"},
		Weights: map[string]float64{"dmg": 0.25, "scr": 0.20, "fks": 0.15, "hs": 0.15, "ast": 0.10, "clu": 0.15},
	},
	GenreMOBA: {
		Genre: GenreMOBA,
		Labels: map[string]string{
			"dmg": "Damage Share",
			"scr": "KDA",
			"fks": "First Blood",
			"hs":  "Farm",
			"ast": "Kill Participation",
			"clu": "Objective Control",
		},
		Roles:   []string{"Top", "Jungle", "Mid", "ADC", "Support", "Carry", "Offlane", "Roamer"},
		Weights: map[string]float64{"dmg": 0.20, "scr": 0.25, "fks": 0.10, "hs": 0.15, "ast": 0.20, "clu": 0.10},
	},
	GenreBattleRoyale: {
		Genre: GenreBattleRoyale,
		Labels: map[string]string{
			"dmg": "Damage",
			"scr": "Placement",
			"fks": "Eliminations",
			"hs":  "Accuracy",
			"ast": "Knock Assists",
			"clu": "Survival",
		},
		Roles:   []string{"Fragger", "IGL", "Support", "Scout", "Anchor"},
		Weights: map[string]float64{"dmg": 0.25, "scr": 0.25, "fks": 0.20, "hs": 0.10, "ast": 0.05, "clu": 0.15},
	},
	GenreSports: {
		Genre: GenreSports,
		Labels: map[string]string{
			"dmg": "Attack",
			"scr": "Goals",
			"fks": "Possession",
			"hs":  "Shot Accuracy",
			"ast": "Assists",
			"clu": "Defense",
		},
		Roles:   []string{"Striker", "Playmaker", "Midfielder", "Defender", "Goalkeeper"},
		Weights: map[string]float64{"dmg": 0.20, "scr": 0.20, "fks": 0.15, "hs": 0.15, "ast": 0.15, "clu": 0.15},
	},
}

var genreAliases = map[string]Genre{
	"FPS":           GenreFPS,
	"SHOOTER":       GenreFPS,
	"TACTICAL_FPS":  GenreFPS,
	"MOBA":          GenreMOBA,
	"BATTLE_ROYALE": GenreBattleRoyale,
	"BR":            GenreBattleRoyale,
	"SPORTS":        GenreSports,
	"SPORTS_SIM":    GenreSports,
	"SPORT":         GenreSports,
}

// ParseGenre maps a registry category to a genre, falling back to DefaultGenre.
func ParseGenre(category string) Genre {
	key := strings.ToUpper(strings.TrimSpace(category))
	key = strings.NewReplacer(" ", "_", "-", "_").Replace(key)
	if g, ok := genreAliases[key]; ok {
		return g
	}
	return DefaultGenre
}

// Spec returns the configuration of g, or of DefaultGenre when g is unknown.
func Spec(g Genre) GenreSpec {
	if spec, ok := genres[g]; ok {
		return spec
	}
	return genres[DefaultGenre]
}

// Genres returns every genre spec ordered by name.
func Genres() []GenreSpec {
	out := make([]GenreSpec, 0, len(genres))
	for _, spec := range genres {
		out = append(out, spec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Genre < out[j].Genre })
	return out
}

// IsRole reports whether role is valid for g (case-insensitive).
func IsRole(g Genre, role string) bool {
	for _, r := range Spec(g).Roles {
		if strings.EqualFold(r, role) {
			return true
		}
	}
	return false
}
