// Package store declares the transactional repository the roster services
// read and write Teams, Players and Users through.
package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/mcdev12/arena/go/internal/models"
)

// TeamRepository provides team persistence. Update is conditional on the
// team's Version and fails with apperrors.ErrStaleWrite when it moved.
type TeamRepository interface {
	GetTeam(ctx context.Context, id uuid.UUID) (*models.Team, error)
	ListAllTeams(ctx context.Context) ([]models.Team, error)
	CreateTeam(ctx context.Context, team *models.Team) error
	UpdateTeam(ctx context.Context, team *models.Team) error
	DeleteTeam(ctx context.Context, id uuid.UUID) error
}

// PlayerRepository provides player persistence. Find methods return
// (nil, nil) when nothing matches.
type PlayerRepository interface {
	GetPlayer(ctx context.Context, id uuid.UUID) (*models.Player, error)
	FindPlayerByUserID(ctx context.Context, userID uuid.UUID) (*models.Player, error)
	// FindPlayerByIGN matches ign case-insensitively and exactly.
	FindPlayerByIGN(ctx context.Context, ign string) (*models.Player, error)
	ListPlayers(ctx context.Context) ([]models.Player, error)
	// ListPlayersByTeam returns players with a game profile referencing teamID.
	ListPlayersByTeam(ctx context.Context, teamID uuid.UUID) ([]models.Player, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	CreatePlayer(ctx context.Context, player *models.Player) error
	UpdatePlayer(ctx context.Context, player *models.Player) error
}

// UserRepository provides user persistence.
type UserRepository interface {
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	// FindUserByUsername matches case-insensitively; (nil, nil) when absent.
	FindUserByUsername(ctx context.Context, username string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	CreateUser(ctx context.Context, user *models.User) error
	UpdateUser(ctx context.Context, user *models.User) error
}

// Tx is a unit of work across the three repositories.
type Tx interface {
	Teams() TeamRepository
	Players() PlayerRepository
	Users() UserRepository
}

// Store exposes the repositories outside a transaction and runs fn inside one.
// If fn returns an error nothing it wrote is kept.
type Store interface {
	Tx
	WithinTx(ctx context.Context, fn func(tx Tx) error) error
}
