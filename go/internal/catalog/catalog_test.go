package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcdev12/arena/go/internal/apperrors"
	"github.com/mcdev12/arena/go/internal/catalog/db"
	"github.com/mcdev12/arena/go/internal/models"
)

func TestParseGenre(t *testing.T) {
	tests := []struct {
		category string
		want     Genre
	}{
		{"FPS", GenreFPS},
		{"moba", GenreMOBA},
		{"Battle Royale", GenreBattleRoyale},
		{"sports-sim", GenreSports},
		{"", DefaultGenre},
		{"card game", DefaultGenre},
	}

	for _, tt := range tests {
		t.Run(tt.category, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseGenre(tt.category))
		})
	}
}

func TestGenreSpecsCoverEveryStatAxis(t *testing.T) {
	for _, spec := range Genres() {
		total := 0.0
		for _, key := range []string{"dmg", "scr", "fks", "hs", "ast", "clu"} {
			assert.NotEmpty(t, spec.Labels[key], "genre %s missing label for %s", spec.Genre, key)
			total += spec.Weights[key]
		}
		assert.InDelta(t, 1.0, total, 1e-9, "weights of %s should sum to 1", spec.Genre)
		assert.NotEmpty(t, spec.Roles)
	}
}

func TestMergeRoleBonuses(t *testing.T) {
	merged := MergeRoleBonuses(map[string]int{"duelist": 5, "Coach": 4})

	assert.Equal(t, 5, merged.Bonus("Duelist"), "override should replace default")
	assert.Equal(t, 4, merged.Bonus("COACH"), "new roles should be added")
	assert.Equal(t, 3, merged.Bonus("igl"), "untouched defaults should remain")
	assert.Equal(t, 0, merged.Bonus("unknown"))

	assert.Equal(t, 2, DefaultRoleBonuses().Bonus("duelist"), "defaults must not be mutated by a merge")
}

func TestLoadGamesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "games.yaml")
	content := `games:
  - title: Valorant
    slug: valorant
    aliases: [val]
    category: FPS
  - title: Dota 2
    slug: dota-2
    category: MOBA
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	games, err := LoadGamesFile(path)
	require.NoError(t, err)
	require.Len(t, games, 2)
	assert.Equal(t, "Valorant", games[0].Title)
	assert.Equal(t, []string{"val"}, games[0].Aliases)
	assert.Equal(t, "MOBA", games[1].Category)
}

func TestLoadGamesFileRejectsUntitledEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "games.yaml")
	require.NoError(t, os.WriteFile(path, []byte("games:\n  - slug: nameless\n"), 0o600))

	_, err := LoadGamesFile(path)
	assert.Error(t, err)
}

type stubRegistry struct {
	games []models.Game
	err   error
}

func (s stubRegistry) ListGames(context.Context) ([]models.Game, error) {
	return s.games, s.err
}

func TestFallbackRegistry(t *testing.T) {
	ctx := context.Background()
	fallback := NewStaticRegistry(nil)

	games, err := FallbackRegistry{Primary: stubRegistry{}, Fallback: fallback}.ListGames(ctx)
	require.NoError(t, err)
	assert.Len(t, games, len(DefaultGames()))

	own := []models.Game{{Title: "Tekken 8", Slug: "tekken-8", Category: "FIGHTING"}}
	games, err = FallbackRegistry{Primary: stubRegistry{games: own}, Fallback: fallback}.ListGames(ctx)
	require.NoError(t, err)
	assert.Equal(t, own, games)

	_, err = FallbackRegistry{Primary: stubRegistry{err: apperrors.ErrStoreUnavailable}, Fallback: fallback}.ListGames(ctx)
	assert.ErrorIs(t, err, apperrors.ErrStoreUnavailable)
}

type stubQuerier struct {
	rows []db.Game
}

func (s stubQuerier) ListGames(context.Context) ([]db.Game, error) {
	return s.rows, nil
}

func TestPostgresRegistryMapsRows(t *testing.T) {
	reg := NewPostgresRegistry(stubQuerier{rows: []db.Game{
		{Slug: "dota-2", Title: "Dota 2", Aliases: []string{"dota"}, Category: "MOBA"},
	}})

	games, err := reg.ListGames(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []models.Game{{Title: "Dota 2", Slug: "dota-2", Aliases: []string{"dota"}, Category: "MOBA"}}, games)
}

func TestGetCatalog(t *testing.T) {
	svc := NewService(NewStaticRegistry(nil))

	resp, err := svc.GetCatalog(context.Background(), connect.NewRequest(&GetCatalogRequest{}))
	require.NoError(t, err)
	assert.Len(t, resp.Msg.Genres, 4)
	assert.Equal(t, "Valorant", resp.Msg.Games[0].Title)
}
