package users

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/arena/go/internal/apperrors"
	"github.com/mcdev12/arena/go/internal/authz"
	"github.com/mcdev12/arena/go/internal/models"
	"github.com/mcdev12/arena/go/internal/roles"
	"github.com/mcdev12/arena/go/internal/store"
)

// DefaultTokenTTL is used when a token request names no ttl
const DefaultTokenTTL = 12 * time.Hour

// TokenIssuer signs bearer tokens
type TokenIssuer interface {
	Issue(p authz.Principal, ttl time.Duration, now time.Time) (string, error)
}

// App handles users business logic
type App struct {
	repo   store.UserRepository
	tokens TokenIssuer
	clock  clockwork.Clock
}

// NewApp creates a new users App
func NewApp(repo store.UserRepository, tokens TokenIssuer, clock clockwork.Clock) *App {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &App{
		repo:   repo,
		tokens: tokens,
		clock:  clock,
	}
}

// CreateUser creates a new user with validation. Team roles are derived
// from memberships and cannot be granted here.
func (a *App) CreateUser(ctx context.Context, req CreateUserRequest) (*models.User, error) {
	if err := authz.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	if err := validateCreateUserRequest(req); err != nil {
		return nil, err
	}

	existing, err := a.repo.FindUserByUsername(ctx, req.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to look up username: %w", err)
	}
	if existing != nil {
		return nil, apperrors.Validation("user with username %s already exists", req.Username)
	}

	user := &models.User{
		ID:          uuid.New(),
		Username:    strings.TrimSpace(req.Username),
		DisplayName: strings.TrimSpace(req.DisplayName),
		Email:       strings.TrimSpace(req.Email),
		Roles:       append([]models.Role{models.RoleUser}, req.Roles...),
	}
	roles.Reconcile(user)

	if err := a.repo.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	log.Info().
		Str("user_id", user.ID.String()).
		Str("username", user.Username).
		Str("role", string(user.Role)).
		Msg("Created user")
	return user, nil
}

// GetUser retrieves a user by ID
func (a *App) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := a.repo.GetUser(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// GetUserByUsername retrieves a user by username
func (a *App) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	user, err := a.repo.FindUserByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to get user by username: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("%w: user %s", apperrors.ErrNotFound, username)
	}
	return user, nil
}

// ListUsers retrieves all users
func (a *App) ListUsers(ctx context.Context) ([]models.User, error) {
	users, err := a.repo.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// IssueToken signs a bearer token carrying the user's current roles
func (a *App) IssueToken(ctx context.Context, userID uuid.UUID, ttl time.Duration) (*IssueTokenResponse, error) {
	if err := authz.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}

	user, err := a.repo.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user.IsBanned {
		return nil, apperrors.Validation("user %s is banned", user.Username)
	}

	now := a.clock.Now()
	token, err := a.tokens.Issue(authz.Principal{UserID: user.ID, Username: user.Username, Roles: user.Roles}, ttl, now)
	if err != nil {
		return nil, err
	}

	log.Info().Str("user_id", user.ID.String()).Dur("ttl", ttl).Msg("Issued token")
	return &IssueTokenResponse{Token: token, ExpiresAt: now.Add(ttl)}, nil
}

// validateCreateUserRequest validates create user request
func validateCreateUserRequest(req CreateUserRequest) error {
	if strings.TrimSpace(req.Username) == "" {
		return apperrors.Validation("username is required")
	}
	if email := strings.TrimSpace(req.Email); email != "" && (!strings.Contains(email, "@") || !strings.Contains(email, ".")) {
		return apperrors.Validation("email format is invalid")
	}
	for _, r := range req.Roles {
		switch r {
		case models.RoleAdmin, models.RolePlayer, models.RoleTournamentParticipant, models.RoleUser:
		case models.RoleTeamCaptain, models.RoleTeamMember:
			return apperrors.Validation("role %s is derived from team memberships", r)
		default:
			return apperrors.Validation("unknown role %q", r)
		}
	}
	return nil
}
