package catalog

import (
	"context"
	"fmt"

	"github.com/mcdev12/arena/go/internal/catalog/db"
	"github.com/mcdev12/arena/go/internal/models"
	"github.com/mcdev12/arena/go/internal/sqlutil"
)

// Querier defines what the registry needs from the database layer
type Querier interface {
	ListGames(ctx context.Context) ([]db.Game, error)
}

// PostgresRegistry reads the game registry from the games table
type PostgresRegistry struct {
	queries Querier
}

// NewPostgresRegistry creates a registry over the games table
func NewPostgresRegistry(querier Querier) *PostgresRegistry {
	return &PostgresRegistry{queries: querier}
}

// ListGames returns every registered game ordered by title
func (r *PostgresRegistry) ListGames(ctx context.Context) ([]models.Game, error) {
	rows, err := r.queries.ListGames(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", sqlutil.Classify(err))
	}

	games := make([]models.Game, len(rows))
	for i, row := range rows {
		games[i] = models.Game{
			Title:    row.Title,
			Slug:     row.Slug,
			Aliases:  row.Aliases,
			Category: row.Category,
		}
	}
	return games, nil
}
