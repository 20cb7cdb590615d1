package gamename

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcdev12/arena/go/internal/catalog"
	"github.com/mcdev12/arena/go/internal/models"
)

func TestNormalize(t *testing.T) {
	n := New(catalog.DefaultGames())

	tests := []struct {
		in   string
		want string
	}{
		{"cs2", "Counter-Strike 2"},
		{"CS 2", "Counter-Strike 2"},
		{"  counter-strike ", "Counter-Strike 2"},
		{"Counter-Strike 2", "Counter-Strike 2"},
		{"counter-strike-2", "Counter-Strike 2"},
		{"CS:GO", "Counter-Strike 2"},
		{"VALORANT", "Valorant"},
		{"league of legends", "League of Legends"},
		{"  Some Indie Game ", "Some Indie Game"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, n.Normalize(tt.in))
		})
	}
}

func TestCategoryOf(t *testing.T) {
	n := New(catalog.DefaultGames())

	assert.Equal(t, catalog.GenreMOBA, n.CategoryOf("Dota 2"))
	assert.Equal(t, catalog.GenreSports, n.GenreOf("rocket league"))
	assert.Equal(t, catalog.GenreBattleRoyale, n.GenreOf("apex"))
	assert.Equal(t, catalog.DefaultGenre, n.CategoryOf("Some Indie Game"))
}

func TestSameGame(t *testing.T) {
	n := New(catalog.DefaultGames())

	assert.True(t, n.SameGame("cs2", "Counter-Strike 2"))
	assert.True(t, n.SameGame("Indie", "indie "), "unmatched names compare case-insensitively")
	assert.False(t, n.SameGame("cs2", "valorant"))
}

func TestFirstGameWinsAliasCollision(t *testing.T) {
	n := New([]models.Game{
		{Title: "Alpha", Aliases: []string{"shared"}, Category: "FPS"},
		{Title: "Beta", Aliases: []string{"shared"}, Category: "MOBA"},
	})

	assert.Equal(t, "Alpha", n.Normalize("Shared"))
}

func TestLoad(t *testing.T) {
	n, err := Load(context.Background(), catalog.NewStaticRegistry(nil))
	require.NoError(t, err)

	assert.Equal(t, "Valorant", n.Normalize("valo"))
}
