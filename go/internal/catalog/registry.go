package catalog

import (
	"context"
	"fmt"
	"os"

	"github.com/mcdev12/arena/go/internal/models"
	"gopkg.in/yaml.v3"
)

// Registry provides the canonical games known to the platform.
type Registry interface {
	ListGames(ctx context.Context) ([]models.Game, error)
}

var defaultGames = []models.Game{
	{Title: "Valorant", Slug: "valorant", Aliases: []string{"val", "valo"}, Category: "FPS"},
	{Title: "Counter-Strike 2", Slug: "counter-strike-2", Aliases: []string{"cs2", "cs 2", "counter-strike", "counter strike", "csgo", "cs:go"}, Category: "FPS"},
	{Title: "Rainbow Six Siege", Slug: "rainbow-six-siege", Aliases: []string{"r6", "r6s", "siege"}, Category: "FPS"},
	{Title: "Overwatch 2", Slug: "overwatch-2", Aliases: []string{"ow2", "overwatch"}, Category: "FPS"},
	{Title: "League of Legends", Slug: "league-of-legends", Aliases: []string{"lol", "league"}, Category: "MOBA"},
	{Title: "Dota 2", Slug: "dota-2", Aliases: []string{"dota", "dota2"}, Category: "MOBA"},
	{Title: "Mobile Legends: Bang Bang", Slug: "mobile-legends", Aliases: []string{"mlbb", "mobile legends"}, Category: "MOBA"},
	{Title: "PUBG: Battlegrounds", Slug: "pubg", Aliases: []string{"pubg", "pubg mobile"}, Category: "BATTLE_ROYALE"},
	{Title: "Apex Legends", Slug: "apex-legends", Aliases: []string{"apex"}, Category: "BATTLE_ROYALE"},
	{Title: "Fortnite", Slug: "fortnite", Aliases: []string{"fn"}, Category: "BATTLE_ROYALE"},
	{Title: "EA Sports FC 25", Slug: "ea-sports-fc-25", Aliases: []string{"fc25", "fc 25", "fifa"}, Category: "SPORTS"},
	{Title: "Rocket League", Slug: "rocket-league", Aliases: []string{"rl"}, Category: "SPORTS"},
}

// DefaultGames returns a copy of the built-in registry.
func DefaultGames() []models.Game {
	out := make([]models.Game, len(defaultGames))
	for i, g := range defaultGames {
		g.Aliases = append([]string(nil), g.Aliases...)
		out[i] = g
	}
	return out
}

// StaticRegistry serves a fixed list of games.
type StaticRegistry struct {
	games []models.Game
}

// NewStaticRegistry creates a registry over games; nil means the defaults.
func NewStaticRegistry(games []models.Game) *StaticRegistry {
	if games == nil {
		games = DefaultGames()
	}
	return &StaticRegistry{games: games}
}

// ListGames returns the configured games
func (r *StaticRegistry) ListGames(ctx context.Context) ([]models.Game, error) {
	return r.games, nil
}

type registryFile struct {
	Games []models.Game `yaml:"games"`
}

// LoadGamesFile reads a YAML game registry of the form `games: [{title, slug, aliases, category}]`.
func LoadGamesFile(path string) ([]models.Game, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read game registry: %w", err)
	}

	var file registryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse game registry: %w", err)
	}

	for i, g := range file.Games {
		if g.Title == "" {
			return nil, fmt.Errorf("game registry entry %d has no title", i)
		}
	}

	return file.Games, nil
}

// FallbackRegistry serves the primary registry, or the fallback when the
// primary has no games.
type FallbackRegistry struct {
	Primary  Registry
	Fallback Registry
}

// ListGames returns the primary registry's games unless it is empty
func (r FallbackRegistry) ListGames(ctx context.Context) ([]models.Game, error) {
	games, err := r.Primary.ListGames(ctx)
	if err != nil {
		return nil, err
	}
	if len(games) == 0 {
		return r.Fallback.ListGames(ctx)
	}
	return games, nil
}
