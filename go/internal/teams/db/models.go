package db

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/sqlc-dev/pqtype"
)

type Team struct {
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
	Version     int32                 `json:"version"`
	CreatedAt   time.Time             `json:"created_at"`
	UpdatedAt   time.Time             `json:"updated_at"`
}
