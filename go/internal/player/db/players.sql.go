package db

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/google/uuid"
)

const playerColumns = `id, ign, real_name, slug, user_id, country, games, version, created_at, updated_at`

func scanPlayer(row interface{ Scan(...interface{}) error }) (Player, error) {
	var i Player
	err := row.Scan(
		&i.ID,
		&i.Ign,
		&i.RealName,
		&i.Slug,
		&i.UserID,
		&i.Country,
		&i.Games,
		&i.Version,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

func (q *Queries) listPlayers(ctx context.Context, query string, args ...interface{}) ([]Player, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Player
	for rows.Next() {
		i, err := scanPlayer(rows)
		if err != nil {
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

const createPlayer = `-- name: CreatePlayer :one
INSERT INTO players (id, ign, real_name, slug, user_id, country, games, version)
VALUES ($1, $2, $3, $4, $5, $6, $7, 1)
RETURNING ` + playerColumns

type CreatePlayerParams struct {
	ID       uuid.UUID       `json:"id"`
	Ign      string          `json:"ign"`
	RealName sql.NullString  `json:"real_name"`
	Slug     string          `json:"slug"`
	UserID   uuid.NullUUID   `json:"user_id"`
	Country  sql.NullString  `json:"country"`
	Games    json.RawMessage `json:"games"`
}

func (q *Queries) CreatePlayer(ctx context.Context, arg CreatePlayerParams) (Player, error) {
	row := q.db.QueryRowContext(ctx, createPlayer,
		arg.ID,
		arg.Ign,
		arg.RealName,
		arg.Slug,
		arg.UserID,
		arg.Country,
		arg.Games,
	)
	return scanPlayer(row)
}

const getPlayer = `-- name: GetPlayer :one
SELECT ` + playerColumns + ` FROM players WHERE id = $1`

func (q *Queries) GetPlayer(ctx context.Context, id uuid.UUID) (Player, error) {
	return scanPlayer(q.db.QueryRowContext(ctx, getPlayer, id))
}

const getPlayerByUserID = `-- name: GetPlayerByUserID :one
SELECT ` + playerColumns + ` FROM players WHERE user_id = $1 ORDER BY created_at, id LIMIT 1`

func (q *Queries) GetPlayerByUserID(ctx context.Context, userID uuid.UUID) (Player, error) {
	return scanPlayer(q.db.QueryRowContext(ctx, getPlayerByUserID, userID))
}

const getPlayerByIgn = `-- name: GetPlayerByIgn :one
SELECT ` + playerColumns + ` FROM players WHERE lower(ign) = lower($1) ORDER BY created_at, id LIMIT 1`

func (q *Queries) GetPlayerByIgn(ctx context.Context, ign string) (Player, error) {
	return scanPlayer(q.db.QueryRowContext(ctx, getPlayerByIgn, ign))
}

const listPlayers = `-- name: ListPlayers :many
SELECT ` + playerColumns + ` FROM players ORDER BY created_at, id`

func (q *Queries) ListPlayers(ctx context.Context) ([]Player, error) {
	return q.listPlayers(ctx, listPlayers)
}

const listPlayersByTeam = `-- name: ListPlayersByTeam :many
SELECT ` + playerColumns + ` FROM players
WHERE games @> jsonb_build_array(jsonb_build_object('team', $1::text))
ORDER BY created_at, id`

func (q *Queries) ListPlayersByTeam(ctx context.Context, teamID uuid.UUID) ([]Player, error) {
	return q.listPlayers(ctx, listPlayersByTeam, teamID.String())
}

const playerSlugExists = `-- name: PlayerSlugExists :one
SELECT EXISTS (SELECT 1 FROM players WHERE lower(slug) = lower($1))`

func (q *Queries) PlayerSlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := q.db.QueryRowContext(ctx, playerSlugExists, slug).Scan(&exists)
	return exists, err
}

const updatePlayer = `-- name: UpdatePlayer :one
UPDATE players
SET ign = $3,
    real_name = $4,
    slug = $5,
    user_id = $6,
    country = $7,
    games = $8,
    version = version + 1,
    updated_at = NOW()
WHERE id = $1 AND version = $2
RETURNING ` + playerColumns

type UpdatePlayerParams struct {
	ID       uuid.UUID       `json:"id"`
	Version  int32           `json:"version"`
	Ign      string          `json:"ign"`
	RealName sql.NullString  `json:"real_name"`
	Slug     string          `json:"slug"`
	UserID   uuid.NullUUID   `json:"user_id"`
	Country  sql.NullString  `json:"country"`
	Games    json.RawMessage `json:"games"`
}

func (q *Queries) UpdatePlayer(ctx context.Context, arg UpdatePlayerParams) (Player, error) {
	row := q.db.QueryRowContext(ctx, updatePlayer,
		arg.ID,
		arg.Version,
		arg.Ign,
		arg.RealName,
		arg.Slug,
		arg.UserID,
		arg.Country,
		arg.Games,
	)
	return scanPlayer(row)
}
