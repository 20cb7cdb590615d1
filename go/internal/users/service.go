package users

import (
	"context"
	"net/http"
	"time"

	"connectrpc.com/connect"
	"github.com/google/uuid"

	"github.com/mcdev12/arena/go/internal/apperrors"
	"github.com/mcdev12/arena/go/internal/models"
	"github.com/mcdev12/arena/go/internal/rpc"
)

const UserServiceName = "UserService"

var (
	createUserProcedure        = rpc.Procedure(UserServiceName, "CreateUser")
	getUserProcedure           = rpc.Procedure(UserServiceName, "GetUser")
	getUserByUsernameProcedure = rpc.Procedure(UserServiceName, "GetUserByUsername")
	listUsersProcedure         = rpc.Procedure(UserServiceName, "ListUsers")
	issueTokenProcedure        = rpc.Procedure(UserServiceName, "IssueToken")
)

type GetUserRequest struct {
	ID string `json:"id"`
}

type GetUserByUsernameRequest struct {
	Username string `json:"username"`
}

type ListUsersRequest struct{}

type UserResponse struct {
	User *models.User `json:"user"`
}

type ListUsersResponse struct {
	Users []models.User `json:"users"`
}

// UsersApp defines what the service layer needs from the users application
type UsersApp interface {
	CreateUser(ctx context.Context, req CreateUserRequest) (*models.User, error)
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	IssueToken(ctx context.Context, userID uuid.UUID, ttl time.Duration) (*IssueTokenResponse, error)
}

// Service implements the UserService connect interface
type Service struct {
	app UsersApp
}

// NewService creates a new users service
func NewService(app UsersApp) *Service {
	return &Service{
		app: app,
	}
}

// CreateUser creates a new user
func (s *Service) CreateUser(ctx context.Context, req *connect.Request[CreateUserRequest]) (*connect.Response[UserResponse], error) {
	user, err := s.app.CreateUser(ctx, *req.Msg)
	if err != nil {
		return nil, apperrors.ToConnect(err)
	}
	return connect.NewResponse(&UserResponse{User: user}), nil
}

// GetUser retrieves a user by ID
func (s *Service) GetUser(ctx context.Context, req *connect.Request[GetUserRequest]) (*connect.Response[UserResponse], error) {
	id, err := uuid.Parse(req.Msg.ID)
	if err != nil {
		return nil, apperrors.ToConnect(apperrors.Validation("invalid id: %v", err))
	}

	user, err := s.app.GetUser(ctx, id)
	if err != nil {
		return nil, apperrors.ToConnect(err)
	}
	return connect.NewResponse(&UserResponse{User: user}), nil
}

// GetUserByUsername retrieves a user by username
func (s *Service) GetUserByUsername(ctx context.Context, req *connect.Request[GetUserByUsernameRequest]) (*connect.Response[UserResponse], error) {
	user, err := s.app.GetUserByUsername(ctx, req.Msg.Username)
	if err != nil {
		return nil, apperrors.ToConnect(err)
	}
	return connect.NewResponse(&UserResponse{User: user}), nil
}

// ListUsers retrieves all users
func (s *Service) ListUsers(ctx context.Context, req *connect.Request[ListUsersRequest]) (*connect.Response[ListUsersResponse], error) {
	users, err := s.app.ListUsers(ctx)
	if err != nil {
		return nil, apperrors.ToConnect(err)
	}
	return connect.NewResponse(&ListUsersResponse{Users: users}), nil
}

// IssueToken signs a bearer token for a user
func (s *Service) IssueToken(ctx context.Context, req *connect.Request[IssueTokenRequest]) (*connect.Response[IssueTokenResponse], error) {
	id, err := uuid.Parse(req.Msg.UserID)
	if err != nil {
		return nil, apperrors.ToConnect(apperrors.Validation("invalid user_id: %v", err))
	}

	resp, err := s.app.IssueToken(ctx, id, req.Msg.TTL)
	if err != nil {
		return nil, apperrors.ToConnect(err)
	}
	return connect.NewResponse(resp), nil
}

// NewUserServiceHandler builds the HTTP handler for the user service
func NewUserServiceHandler(svc *Service, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = rpc.WithCodec(opts...)
	return rpc.Mount(UserServiceName, map[string]http.Handler{
		createUserProcedure:        connect.NewUnaryHandler(createUserProcedure, svc.CreateUser, opts...),
		getUserProcedure:           connect.NewUnaryHandler(getUserProcedure, svc.GetUser, opts...),
		getUserByUsernameProcedure: connect.NewUnaryHandler(getUserByUsernameProcedure, svc.GetUserByUsername, opts...),
		listUsersProcedure:         connect.NewUnaryHandler(listUsersProcedure, svc.ListUsers, opts...),
		issueTokenProcedure:        connect.NewUnaryHandler(issueTokenProcedure, svc.IssueToken, opts...),
	})
}
