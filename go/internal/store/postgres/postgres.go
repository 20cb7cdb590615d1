// Package postgres implements store.Store on database/sql with lib/pq.
package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"

	"github.com/mcdev12/arena/go/internal/player"
	playerdb "github.com/mcdev12/arena/go/internal/player/db"
	"github.com/mcdev12/arena/go/internal/sqlutil"
	"github.com/mcdev12/arena/go/internal/store"
	"github.com/mcdev12/arena/go/internal/teams"
	teamsdb "github.com/mcdev12/arena/go/internal/teams/db"
	"github.com/mcdev12/arena/go/internal/users"
	usersdb "github.com/mcdev12/arena/go/internal/users/db"
)

//go:embed schema.sql
var schema string

// Migrate creates the tables the store needs if they do not exist.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", sqlutil.Classify(err))
	}
	return nil
}

// repos binds the three repositories to one DBTX (the pool or a tx).
type repos struct {
	teams   *teams.Repository
	players *player.Repository
	users   *users.Repository
}

func newRepos(conn teamsdb.DBTX) *repos {
	return &repos{
		teams:   teams.NewRepository(teamsdb.New(conn)),
		players: player.NewRepository(playerdb.New(conn)),
		users:   users.NewRepository(usersdb.New(conn)),
	}
}

func (r *repos) Teams() store.TeamRepository     { return r.teams }
func (r *repos) Players() store.PlayerRepository { return r.players }
func (r *repos) Users() store.UserRepository     { return r.users }

// Store is the Postgres-backed store.
type Store struct {
	*repos
	db *sql.DB
}

var _ store.Store = (*Store)(nil)

// New creates a store over database.
func New(database *sql.DB) *Store {
	return &Store{
		repos: newRepos(database),
		db:    database,
	}
}

// Concurrent writers to the same row fail with a serialization error, which
// Classify reports as apperrors.ErrStaleWrite.
var txOptions = &sql.TxOptions{Isolation: sql.LevelRepeatableRead}

// WithinTx runs fn in a single database transaction.
func (s *Store) WithinTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return sqlutil.Run(ctx, s.db, txOptions, func(tx *sql.Tx) *repos {
		return newRepos(tx)
	}, func(r *repos) error {
		return fn(r)
	})
}
