package teams

import (
	"context"
	"net/http"

	"connectrpc.com/connect"
	"github.com/google/uuid"

	"github.com/mcdev12/arena/go/internal/apperrors"
	"github.com/mcdev12/arena/go/internal/models"
	"github.com/mcdev12/arena/go/internal/rpc"
)

const TeamServiceName = "TeamService"

var (
	createTeamProcedure       = rpc.Procedure(TeamServiceName, "CreateTeam")
	getTeamProcedure          = rpc.Procedure(TeamServiceName, "GetTeam")
	listTeamsProcedure        = rpc.Procedure(TeamServiceName, "ListTeams")
	updateTeamProcedure       = rpc.Procedure(TeamServiceName, "UpdateTeam")
	updateTeamStatusProcedure = rpc.Procedure(TeamServiceName, "UpdateTeamStatus")
	deleteTeamProcedure       = rpc.Procedure(TeamServiceName, "DeleteTeam")
	addMemberProcedure        = rpc.Procedure(TeamServiceName, "AddMember")
	removeMemberProcedure     = rpc.Procedure(TeamServiceName, "RemoveMember")
)

type TeamIDRequest struct {
	ID string `json:"id"`
}

type UpdateTeamMessage struct {
	ID string `json:"id"`
	UpdateTeamRequest
}

type UpdateTeamStatusRequest struct {
	ID     string            `json:"id"`
	Status models.TeamStatus `json:"status"`
}

type MemberRequest struct {
	TeamID string `json:"team_id"`
	UserID string `json:"user_id"`
}

type TeamResponse struct {
	Team *models.Team `json:"team"`
}

type ListTeamsRequest struct{}

type ListTeamsResponse struct {
	Teams []models.Team `json:"teams"`
}

type DeleteTeamResponse struct{}

// TeamsApp defines what the service layer needs from the teams application
type TeamsApp interface {
	CreateTeam(ctx context.Context, req CreateTeamRequest) (*models.Team, error)
	GetTeam(ctx context.Context, id uuid.UUID) (*models.Team, error)
	ListTeams(ctx context.Context) ([]models.Team, error)
	UpdateTeam(ctx context.Context, id uuid.UUID, req UpdateTeamRequest) (*models.Team, error)
	UpdateTeamStatus(ctx context.Context, id uuid.UUID, status models.TeamStatus) (*models.Team, error)
	DeleteTeam(ctx context.Context, id uuid.UUID) error
	AddMember(ctx context.Context, teamID, userID uuid.UUID) (*models.Team, error)
	RemoveMember(ctx context.Context, teamID, userID uuid.UUID) (*models.Team, error)
}

// Service implements the TeamService connect interface
type Service struct {
	app TeamsApp
}

// NewService creates a new teams service
func NewService(app TeamsApp) *Service {
	return &Service{
		app: app,
	}
}

// CreateTeam creates a new team
func (s *Service) CreateTeam(ctx context.Context, req *connect.Request[CreateTeamRequest]) (*connect.Response[TeamResponse], error) {
	team, err := s.app.CreateTeam(ctx, *req.Msg)
	if err != nil {
		return nil, apperrors.ToConnect(err)
	}
	return connect.NewResponse(&TeamResponse{Team: team}), nil
}

// GetTeam retrieves a team by ID
func (s *Service) GetTeam(ctx context.Context, req *connect.Request[TeamIDRequest]) (*connect.Response[TeamResponse], error) {
	id, err := parseID("id", req.Msg.ID)
	if err != nil {
		return nil, err
	}

	team, err := s.app.GetTeam(ctx, id)
	if err != nil {
		return nil, apperrors.ToConnect(err)
	}
	return connect.NewResponse(&TeamResponse{Team: team}), nil
}

// ListTeams retrieves all teams
func (s *Service) ListTeams(ctx context.Context, req *connect.Request[ListTeamsRequest]) (*connect.Response[ListTeamsResponse], error) {
	teams, err := s.app.ListTeams(ctx)
	if err != nil {
		return nil, apperrors.ToConnect(err)
	}
	return connect.NewResponse(&ListTeamsResponse{Teams: teams}), nil
}

// UpdateTeam applies a partial update to a team
func (s *Service) UpdateTeam(ctx context.Context, req *connect.Request[UpdateTeamMessage]) (*connect.Response[TeamResponse], error) {
	id, err := parseID("id", req.Msg.ID)
	if err != nil {
		return nil, err
	}

	team, err := s.app.UpdateTeam(ctx, id, req.Msg.UpdateTeamRequest)
	if err != nil {
		return nil, apperrors.ToConnect(err)
	}
	return connect.NewResponse(&TeamResponse{Team: team}), nil
}

// UpdateTeamStatus sets the team's status
func (s *Service) UpdateTeamStatus(ctx context.Context, req *connect.Request[UpdateTeamStatusRequest]) (*connect.Response[TeamResponse], error) {
	id, err := parseID("id", req.Msg.ID)
	if err != nil {
		return nil, err
	}

	team, err := s.app.UpdateTeamStatus(ctx, id, req.Msg.Status)
	if err != nil {
		return nil, apperrors.ToConnect(err)
	}
	return connect.NewResponse(&TeamResponse{Team: team}), nil
}

// DeleteTeam deletes a team and cleans up memberships
func (s *Service) DeleteTeam(ctx context.Context, req *connect.Request[TeamIDRequest]) (*connect.Response[DeleteTeamResponse], error) {
	id, err := parseID("id", req.Msg.ID)
	if err != nil {
		return nil, err
	}

	if err := s.app.DeleteTeam(ctx, id); err != nil {
		return nil, apperrors.ToConnect(err)
	}
	return connect.NewResponse(&DeleteTeamResponse{}), nil
}

// AddMember adds a user to a team
func (s *Service) AddMember(ctx context.Context, req *connect.Request[MemberRequest]) (*connect.Response[TeamResponse], error) {
	teamID, userID, err := parseMember(req.Msg)
	if err != nil {
		return nil, err
	}

	team, err := s.app.AddMember(ctx, teamID, userID)
	if err != nil {
		return nil, apperrors.ToConnect(err)
	}
	return connect.NewResponse(&TeamResponse{Team: team}), nil
}

// RemoveMember removes a user from a team
func (s *Service) RemoveMember(ctx context.Context, req *connect.Request[MemberRequest]) (*connect.Response[TeamResponse], error) {
	teamID, userID, err := parseMember(req.Msg)
	if err != nil {
		return nil, err
	}

	team, err := s.app.RemoveMember(ctx, teamID, userID)
	if err != nil {
		return nil, apperrors.ToConnect(err)
	}
	return connect.NewResponse(&TeamResponse{Team: team}), nil
}

func parseID(field, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperrors.ToConnect(apperrors.Validation("invalid %s: %v", field, err))
	}
	return id, nil
}

func parseMember(msg *MemberRequest) (uuid.UUID, uuid.UUID, error) {
	teamID, err := parseID("team_id", msg.TeamID)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	userID, err := parseID("user_id", msg.UserID)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return teamID, userID, nil
}

// NewTeamServiceHandler builds the HTTP handler for the team service
func NewTeamServiceHandler(svc *Service, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = rpc.WithCodec(opts...)
	return rpc.Mount(TeamServiceName, map[string]http.Handler{
		createTeamProcedure:       connect.NewUnaryHandler(createTeamProcedure, svc.CreateTeam, opts...),
		getTeamProcedure:          connect.NewUnaryHandler(getTeamProcedure, svc.GetTeam, opts...),
		listTeamsProcedure:        connect.NewUnaryHandler(listTeamsProcedure, svc.ListTeams, opts...),
		updateTeamProcedure:       connect.NewUnaryHandler(updateTeamProcedure, svc.UpdateTeam, opts...),
		updateTeamStatusProcedure: connect.NewUnaryHandler(updateTeamStatusProcedure, svc.UpdateTeamStatus, opts...),
		deleteTeamProcedure:       connect.NewUnaryHandler(deleteTeamProcedure, svc.DeleteTeam, opts...),
		addMemberProcedure:        connect.NewUnaryHandler(addMemberProcedure, svc.AddMember, opts...),
		removeMemberProcedure:     connect.NewUnaryHandler(removeMemberProcedure, svc.RemoveMember, opts...),
	})
}
