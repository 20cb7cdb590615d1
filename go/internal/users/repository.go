package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/mcdev12/arena/go/internal/apperrors"
	"github.com/mcdev12/arena/go/internal/models"
	"github.com/mcdev12/arena/go/internal/sqlutil"
	"github.com/mcdev12/arena/go/internal/store"
	"github.com/mcdev12/arena/go/internal/users/db"
)

// Querier defines what the repository needs from the database layer
type Querier interface {
	CreateUser(ctx context.Context, arg db.CreateUserParams) (db.User, error)
	GetUser(ctx context.Context, id uuid.UUID) (db.User, error)
	GetUserByUsername(ctx context.Context, username string) (db.User, error)
	ListUsers(ctx context.Context) ([]db.User, error)
	UpdateUser(ctx context.Context, arg db.UpdateUserParams) (db.User, error)
}

// Repository implements user data access operations
type Repository struct {
	queries Querier
}

var _ store.UserRepository = (*Repository)(nil)

// NewRepository creates a new users repository
func NewRepository(querier Querier) *Repository {
	return &Repository{
		queries: querier,
	}
}

// CreateUser inserts user and refreshes it with the stored row
func (r *Repository) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}

	teams, err := sqlutil.ToNullRawMessage(user.Teams)
	if err != nil {
		return fmt.Errorf("failed to encode team memberships: %w", err)
	}

	row, err := r.queries.CreateUser(ctx, db.CreateUserParams{
		ID:          user.ID,
		Username:    user.Username,
		DisplayName: sqlutil.ToSqlString(user.DisplayName),
		Email:       user.Email,
		Roles:       rolesToStrings(user.Roles),
		Role:        string(user.Role),
		Teams:       teams,
		PlayerID:    sqlutil.ToNullUUID(user.PlayerID),
		IsBanned:    user.IsBanned,
	})
	if err != nil {
		return fmt.Errorf("failed to create user: %w", sqlutil.Classify(err))
	}

	return dbUserInto(row, user)
}

// GetUser retrieves a user by ID
func (r *Repository) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	row, err := r.queries.GetUser(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("user", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", sqlutil.Classify(err))
	}

	var user models.User
	if err := dbUserInto(row, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// FindUserByUsername returns the user named username ignoring case, or nil
func (r *Repository) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	row, err := r.queries.GetUserByUsername(ctx, username)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by username: %w", sqlutil.Classify(err))
	}

	var user models.User
	if err := dbUserInto(row, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ListUsers retrieves all users ordered by username
func (r *Repository) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := r.queries.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", sqlutil.Classify(err))
	}

	users := make([]models.User, len(rows))
	for i, row := range rows {
		if err := dbUserInto(row, &users[i]); err != nil {
			return nil, err
		}
	}
	return users, nil
}

// UpdateUser writes user if its version is still current
func (r *Repository) UpdateUser(ctx context.Context, user *models.User) error {
	teams, err := sqlutil.ToNullRawMessage(user.Teams)
	if err != nil {
		return fmt.Errorf("failed to encode team memberships: %w", err)
	}

	row, err := r.queries.UpdateUser(ctx, db.UpdateUserParams{
		ID:          user.ID,
		Version:     int32(user.Version),
		Username:    user.Username,
		DisplayName: sqlutil.ToSqlString(user.DisplayName),
		Email:       user.Email,
		Roles:       rolesToStrings(user.Roles),
		Role:        string(user.Role),
		Teams:       teams,
		PlayerID:    sqlutil.ToNullUUID(user.PlayerID),
		IsBanned:    user.IsBanned,
	})
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("failed to update user %s: %w", user.ID, apperrors.ErrStaleWrite)
	}
	if err != nil {
		return fmt.Errorf("failed to update user: %w", sqlutil.Classify(err))
	}

	return dbUserInto(row, user)
}

func rolesToStrings(roles []models.Role) []string {
	out := make([]string, len(roles))
	for i, r := range roles {
		out[i] = string(r)
	}
	return out
}

// dbUserInto converts a database row into the domain model
func dbUserInto(row db.User, user *models.User) error {
	*user = models.User{
		ID:          row.ID,
		Username:    row.Username,
		DisplayName: sqlutil.FromSqlString(row.DisplayName, ""),
		Email:       row.Email,
		Role:        models.Role(row.Role),
		PlayerID:    sqlutil.FromNullUUID(row.PlayerID),
		IsBanned:    row.IsBanned,
		Version:     int(row.Version),
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
	for _, r := range row.Roles {
		user.Roles = append(user.Roles, models.Role(r))
	}
	if err := sqlutil.FromNullRawMessage(row.Teams, &user.Teams); err != nil {
		return fmt.Errorf("failed to decode team memberships of user %s: %w", row.ID, err)
	}
	return nil
}
