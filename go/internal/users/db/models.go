package db

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/sqlc-dev/pqtype"
)

type User struct {
	ID          uuid.UUID             `json:"id"`
	Username    string                `json:"username"`
	DisplayName sql.NullString        `json:"display_name"`
	Email       string                `json:"email"`
	Roles       []string              `json:"roles"`
	Role        string                `json:"role"`
	Teams       pqtype.NullRawMessage `json:"teams"`
	PlayerID    uuid.NullUUID         `json:"player_id"`
	IsBanned    bool                  `json:"is_banned"`
	Version     int32                 `json:"version"`
	CreatedAt   time.Time             `json:"created_at"`
	UpdatedAt   time.Time             `json:"updated_at"`
}
