package db

import (
	"context"

	"github.com/google/uuid"
)

type Querier interface {
	CreatePlayer(ctx context.Context, arg CreatePlayerParams) (Player, error)
	GetPlayer(ctx context.Context, id uuid.UUID) (Player, error)
	GetPlayerByIgn(ctx context.Context, ign string) (Player, error)
	GetPlayerByUserID(ctx context.Context, userID uuid.UUID) (Player, error)
	ListPlayers(ctx context.Context) ([]Player, error)
	ListPlayersByTeam(ctx context.Context, teamID uuid.UUID) ([]Player, error)
	PlayerSlugExists(ctx context.Context, slug string) (bool, error)
	UpdatePlayer(ctx context.Context, arg UpdatePlayerParams) (Player, error)
}

var _ Querier = (*Queries)(nil)
