package users

import (
	"time"

	"github.com/mcdev12/arena/go/internal/models"
)

// CreateUserRequest represents the data needed to create a new user
type CreateUserRequest struct {
	Username    string        `json:"username"`
	DisplayName string        `json:"display_name,omitempty"`
	Email       string        `json:"email"`
	Roles       []models.Role `json:"roles,omitempty"`
}

// IssueTokenRequest asks for a bearer token naming an existing user
type IssueTokenRequest struct {
	UserID string        `json:"user_id"`
	TTL    time.Duration `json:"ttl_ns,omitempty"`
}

// IssueTokenResponse carries a signed bearer token
type IssueTokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}
