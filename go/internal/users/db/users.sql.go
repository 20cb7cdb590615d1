package db

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sqlc-dev/pqtype"
)

const userColumns = `id, username, display_name, email, roles, role, teams, player_id, is_banned, version, created_at, updated_at`

func scanUser(row interface{ Scan(...interface{}) error }) (User, error) {
	var i User
	err := row.Scan(
		&i.ID,
		&i.Username,
		&i.DisplayName,
		&i.Email,
		pq.Array(&i.Roles),
		&i.Role,
		&i.Teams,
		&i.PlayerID,
		&i.IsBanned,
		&i.Version,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const createUser = `-- name: CreateUser :one
INSERT INTO users (id, username, display_name, email, roles, role, teams, player_id, is_banned, version)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 1)
RETURNING ` + userColumns

type CreateUserParams struct {
	ID          uuid.UUID             `json:"id"`
	Username    string                `json:"username"`
	DisplayName sql.NullString        `json:"display_name"`
	Email       string                `json:"email"`
	Roles       []string              `json:"roles"`
	Role        string                `json:"role"`
	Teams       pqtype.NullRawMessage `json:"teams"`
	PlayerID    uuid.NullUUID         `json:"player_id"`
	IsBanned    bool                  `json:"is_banned"`
}

func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (User, error) {
	row := q.db.QueryRowContext(ctx, createUser,
		arg.ID,
		arg.Username,
		arg.DisplayName,
		arg.Email,
		pq.Array(arg.Roles),
		arg.Role,
		arg.Teams,
		arg.PlayerID,
		arg.IsBanned,
	)
	return scanUser(row)
}

const getUser = `-- name: GetUser :one
SELECT ` + userColumns + ` FROM users WHERE id = $1`

func (q *Queries) GetUser(ctx context.Context, id uuid.UUID) (User, error) {
	return scanUser(q.db.QueryRowContext(ctx, getUser, id))
}

const getUserByUsername = `-- name: GetUserByUsername :one
SELECT ` + userColumns + ` FROM users WHERE lower(username) = lower($1)`

func (q *Queries) GetUserByUsername(ctx context.Context, username string) (User, error) {
	return scanUser(q.db.QueryRowContext(ctx, getUserByUsername, username))
}

const listUsers = `-- name: ListUsers :many
SELECT ` + userColumns + ` FROM users ORDER BY username`

func (q *Queries) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := q.db.QueryContext(ctx, listUsers)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []User
	for rows.Next() {
		i, err := scanUser(rows)
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

const updateUser = `-- name: UpdateUser :one
UPDATE users
SET username = $3,
    display_name = $4,
    email = $5,
    roles = $6,
    role = $7,
    teams = $8,
    player_id = $9,
    is_banned = $10,
    version = version + 1,
    updated_at = NOW()
WHERE id = $1 AND version = $2
RETURNING ` + userColumns

type UpdateUserParams struct {
	ID          uuid.UUID             `json:"id"`
	Version     int32                 `json:"version"`
	Username    string                `json:"username"`
	DisplayName sql.NullString        `json:"display_name"`
	Email       string                `json:"email"`
	Roles       []string              `json:"roles"`
	Role        string                `json:"role"`
	Teams       pqtype.NullRawMessage `json:"teams"`
	PlayerID    uuid.NullUUID         `json:"player_id"`
	IsBanned    bool                  `json:"is_banned"`
}

func (q *Queries) UpdateUser(ctx context.Context, arg UpdateUserParams) (User, error) {
	row := q.db.QueryRowContext(ctx, updateUser,
		arg.ID,
		arg.Version,
		arg.Username,
		arg.DisplayName,
		arg.Email,
		pq.Array(arg.Roles),
		arg.Role,
		arg.Teams,
		arg.PlayerID,
		arg.IsBanned,
	)
	return scanUser(row)
}
