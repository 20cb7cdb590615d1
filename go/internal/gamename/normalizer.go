// Package gamename canonicalizes free-text game titles against the game registry.
package gamename

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/mcdev12/arena/go/internal/catalog"
	"github.com/mcdev12/arena/go/internal/models"
)

// Normalizer maps titles, slugs and aliases to the registry's canonical title.
type Normalizer struct {
	byKey      map[string]string
	byCompact  map[string]string
	categories map[string]string
}

// New builds a normalizer from games. Earlier entries win when two games
// claim the same alias.
func New(games []models.Game) *Normalizer {
	n := &Normalizer{
		byKey:      make(map[string]string),
		byCompact:  make(map[string]string),
		categories: make(map[string]string),
	}

	for _, g := range games {
		title := strings.TrimSpace(g.Title)
		if title == "" {
			continue
		}
		if _, ok := n.categories[title]; !ok {
			n.categories[title] = g.Category
		}
		names := append([]string{title, g.Slug}, g.Aliases...)
		for _, name := range names {
			n.register(name, title)
		}
	}

	return n
}

// Load builds a normalizer from the registry's current games.
func Load(ctx context.Context, registry catalog.Registry) (*Normalizer, error) {
	games, err := registry.ListGames(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load game registry: %w", err)
	}
	return New(games), nil
}

func (n *Normalizer) register(name, title string) {
	if k := key(name); k != "" {
		if _, ok := n.byKey[k]; !ok {
			n.byKey[k] = title
		}
	}
	if c := compact(name); c != "" {
		if _, ok := n.byCompact[c]; !ok {
			n.byCompact[c] = title
		}
	}
}

func key(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// compact drops everything but letters and digits so "CS:GO", "cs go" and
// "csgo" collide.
func compact(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Normalize returns the canonical title for freeText. Unknown names come
// back trimmed and otherwise unchanged.
func (n *Normalizer) Normalize(freeText string) string {
	trimmed := strings.TrimSpace(freeText)
	if title, ok := n.byKey[key(trimmed)]; ok {
		return title
	}
	if title, ok := n.byCompact[compact(trimmed)]; ok {
		return title
	}
	return trimmed
}

// CategoryOf returns the genre of a canonical name; unknown names get the default genre.
func (n *Normalizer) CategoryOf(canonical string) catalog.Genre {
	category, ok := n.categories[canonical]
	if !ok {
		return catalog.DefaultGenre
	}
	return catalog.ParseGenre(category)
}

// GenreOf normalizes freeText and returns its genre.
func (n *Normalizer) GenreOf(freeText string) catalog.Genre {
	return n.CategoryOf(n.Normalize(freeText))
}

// SameGame reports whether a and b name the same canonical game.
func (n *Normalizer) SameGame(a, b string) bool {
	return strings.EqualFold(n.Normalize(a), n.Normalize(b))
}
