package db

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/sqlc-dev/pqtype"
)

const teamColumns = `id, name, slug, captain_id, members, lineup, substitutes, game_focus, status, is_banned, version, created_at, updated_at`

func scanTeam(row interface{ Scan(...interface{}) error }) (Team, error) {
	var i Team
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.Slug,
		&i.CaptainID,
		&i.Members,
		&i.Lineup,
		&i.Substitutes,
		&i.GameFocus,
		&i.Status,
		&i.IsBanned,
		&i.Version,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const createTeam = `-- name: CreateTeam :one
INSERT INTO teams (id, name, slug, captain_id, members, lineup, substitutes, game_focus, status, is_banned, version)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, 1)
RETURNING ` + teamColumns

type CreateTeamParams struct {
	ID          uuid.UUID             `json:"id"`
	Name        string                `json:"name"`
	Slug        string                `json:"slug"`
	CaptainID   uuid.NullUUID         `json:"captain_id"`
	Members     json.RawMessage       `json:"members"`
	Lineup      pqtype.NullRawMessage `json:"lineup"`
	Substitutes pqtype.NullRawMessage `json:"substitutes"`
	GameFocus   string                `json:"game_focus"`
	Status      string                `json:"status"`
	IsBanned    bool                  `json:"is_banned"`
}

func (q *Queries) CreateTeam(ctx context.Context, arg CreateTeamParams) (Team, error) {
	row := q.db.QueryRowContext(ctx, createTeam,
		arg.ID,
		arg.Name,
		arg.Slug,
		arg.CaptainID,
		arg.Members,
		arg.Lineup,
		arg.Substitutes,
		arg.GameFocus,
		arg.Status,
		arg.IsBanned,
	)
	return scanTeam(row)
}

const getTeam = `-- name: GetTeam :one
SELECT ` + teamColumns + ` FROM teams WHERE id = $1`

func (q *Queries) GetTeam(ctx context.Context, id uuid.UUID) (Team, error) {
	row := q.db.QueryRowContext(ctx, getTeam, id)
	return scanTeam(row)
}

const listAllTeams = `-- name: ListAllTeams :many
SELECT ` + teamColumns + ` FROM teams ORDER BY created_at, id`

func (q *Queries) ListAllTeams(ctx context.Context) ([]Team, error) {
	rows, err := q.db.QueryContext(ctx, listAllTeams)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Team
	for rows.Next() {
		i, err := scanTeam(rows)
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

const updateTeam = `-- name: UpdateTeam :one
UPDATE teams
SET name = $3,
    slug = $4,
    captain_id = $5,
    members = $6,
    lineup = $7,
    substitutes = $8,
    game_focus = $9,
    status = $10,
    is_banned = $11,
    version = version + 1,
    updated_at = NOW()
WHERE id = $1 AND version = $2
RETURNING ` + teamColumns

type UpdateTeamParams struct {
	ID          uuid.UUID             `json:"id"`
	Version     int32                 `json:"version"`
	Name        string                `json:"name"`
	Slug        string                `json:"slug"`
	CaptainID   uuid.NullUUID         `json:"captain_id"`
	Members     json.RawMessage       `json:"members"`
	Lineup      pqtype.NullRawMessage `json:"lineup"`
	Substitutes pqtype.NullRawMessage `json:"substitutes"`
	GameFocus   string                `json:"game_focus"`
	Status      string                `json:"status"`
	IsBanned    bool                  `json:"is_banned"`
}

func (q *Queries) UpdateTeam(ctx context.Context, arg UpdateTeamParams) (Team, error) {
	row := q.db.QueryRowContext(ctx, updateTeam,
		arg.ID,
		arg.Version,
		arg.Name,
		arg.Slug,
		arg.CaptainID,
		arg.Members,
		arg.Lineup,
		arg.Substitutes,
		arg.GameFocus,
		arg.Status,
		arg.IsBanned,
	)
	return scanTeam(row)
}

const deleteTeam = `-- name: DeleteTeam :execrows
DELETE FROM teams WHERE id = $1`

func (q *Queries) DeleteTeam(ctx context.Context, id uuid.UUID) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteTeam, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
