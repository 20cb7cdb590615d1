package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mcdev12/arena/go/internal/catalog"
	"github.com/mcdev12/arena/go/internal/dbconfig"
	"github.com/mcdev12/arena/go/internal/models"
	"github.com/mcdev12/arena/go/internal/slug"
)

func main() {
	path := flag.String("file", "", "YAML game registry to load; empty seeds the built-in games")
	flag.Parse()

	// 1) Load the games
	games := catalog.DefaultGames()
	if *path != "" {
		loaded, err := catalog.LoadGamesFile(*path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "load registry: %v\n", err)
			os.Exit(1)
		}
		games = loaded
	}

	// 2) Connect using shared dbconfig
	cfg, err := dbconfig.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	pool, err := pgxpool.New(context.Background(), cfg.DSN())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to connect: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	// 3) Upsert and count
	var (
		total    = len(games)
		inserted int
		updated  int
		errs     int
	)

	for _, g := range games {
		wasInsert, err := upsert(context.Background(), pool, g)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error upserting game %s: %v\n", g.Title, err)
			errs++
			continue
		}
		if wasInsert {
			inserted++
		} else {
			updated++
		}
	}

	// 4) Print summary
	fmt.Printf(
		"Games seed complete: %d total, %d inserted, %d updated, %d errors\n",
		total, inserted, updated, errs,
	)
	if errs > 0 {
		os.Exit(1)
	}
}

// upsert writes g keyed by slug and reports whether the row was new
func upsert(ctx context.Context, pool *pgxpool.Pool, g models.Game) (bool, error) {
	key := g.Slug
	if key == "" {
		key = slug.Make(g.Title)
	}
	aliases := g.Aliases
	if aliases == nil {
		aliases = []string{}
	}

	var wasInsert bool
	err := pool.QueryRow(ctx, `
        INSERT INTO games (slug, title, aliases, category)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (slug) DO UPDATE
          SET title = EXCLUDED.title, aliases = EXCLUDED.aliases, category = EXCLUDED.category
        RETURNING (xmax = 0)
    `, key, g.Title, aliases, string(catalog.ParseGenre(g.Category))).Scan(&wasInsert)
	return wasInsert, err
}
