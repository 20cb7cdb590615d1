package db

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type Player struct {
	ID        uuid.UUID       `json:"id"`
	Ign       string          `json:"ign"`
	RealName  sql.NullString  `json:"real_name"`
	Slug      string          `json:"slug"`
	UserID    uuid.NullUUID   `json:"user_id"`
	Country   sql.NullString  `json:"country"`
	Games     json.RawMessage `json:"games"`
	Version   int32           `json:"version"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}
