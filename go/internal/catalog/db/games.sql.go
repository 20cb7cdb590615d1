package db

import (
	"context"

	"github.com/lib/pq"
)

type Game struct {
	Slug     string   `json:"slug"`
	Title    string   `json:"title"`
	Aliases  []string `json:"aliases"`
	Category string   `json:"category"`
}

const listGames = `-- name: ListGames :many
SELECT slug, title, aliases, category FROM games ORDER BY title`

func (q *Queries) ListGames(ctx context.Context) ([]Game, error) {
	rows, err := q.db.QueryContext(ctx, listGames)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Game
	for rows.Next() {
		var i Game
		if err := rows.Scan(&i.Slug, &i.Title, pq.Array(&i.Aliases), &i.Category); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
