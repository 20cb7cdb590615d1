package player

import (
	"context"
	"net/http"

	"connectrpc.com/connect"
	"github.com/google/uuid"

	"github.com/mcdev12/arena/go/internal/apperrors"
	"github.com/mcdev12/arena/go/internal/models"
	"github.com/mcdev12/arena/go/internal/rpc"
)

const PlayerServiceName = "PlayerService"

var (
	createPlayerProcedure          = rpc.Procedure(PlayerServiceName, "CreatePlayer")
	getPlayerProcedure             = rpc.Procedure(PlayerServiceName, "GetPlayer")
	listPlayersProcedure           = rpc.Procedure(PlayerServiceName, "ListPlayers")
	updateGameProfileProcedure     = rpc.Procedure(PlayerServiceName, "UpdateGameProfile")
	recalculateAllRatingsProcedure = rpc.Procedure(PlayerServiceName, "RecalculateAllRatings")
)

type GetPlayerRequest struct {
	ID string `json:"id"`
}

type ListPlayersRequest struct{}

type UpdateGameProfileMessage struct {
	PlayerID string `json:"player_id"`
	UpdateGameProfileRequest
}

type RecalculateAllRatingsRequest struct{}

type PlayerResponse struct {
	Player *models.Player `json:"player"`
}

type ListPlayersResponse struct {
	Players []models.Player `json:"players"`
}

// PlayerApp defines what the service layer needs from the player application
type PlayerApp interface {
	CreatePlayer(ctx context.Context, req CreatePlayerRequest) (*models.Player, error)
	GetPlayer(ctx context.Context, id uuid.UUID) (*models.Player, error)
	ListPlayers(ctx context.Context) ([]models.Player, error)
	UpdateGameProfile(ctx context.Context, playerID uuid.UUID, req UpdateGameProfileRequest) (*models.Player, error)
	RecalculateAllRatings(ctx context.Context) (*RecalculateResult, error)
}

// Service implements the PlayerService connect interface
type Service struct {
	app PlayerApp
}

// NewService creates a new player service
func NewService(app PlayerApp) *Service {
	return &Service{
		app: app,
	}
}

// CreatePlayer creates a new player
func (s *Service) CreatePlayer(ctx context.Context, req *connect.Request[CreatePlayerRequest]) (*connect.Response[PlayerResponse], error) {
	p, err := s.app.CreatePlayer(ctx, *req.Msg)
	if err != nil {
		return nil, apperrors.ToConnect(err)
	}
	return connect.NewResponse(&PlayerResponse{Player: p}), nil
}

// GetPlayer retrieves a player by ID
func (s *Service) GetPlayer(ctx context.Context, req *connect.Request[GetPlayerRequest]) (*connect.Response[PlayerResponse], error) {
	id, err := uuid.Parse(req.Msg.ID)
	if err != nil {
		return nil, apperrors.ToConnect(apperrors.Validation("invalid id: %v", err))
	}

	p, err := s.app.GetPlayer(ctx, id)
	if err != nil {
		return nil, apperrors.ToConnect(err)
	}
	return connect.NewResponse(&PlayerResponse{Player: p}), nil
}

// ListPlayers retrieves all players
func (s *Service) ListPlayers(ctx context.Context, req *connect.Request[ListPlayersRequest]) (*connect.Response[ListPlayersResponse], error) {
	players, err := s.app.ListPlayers(ctx)
	if err != nil {
		return nil, apperrors.ToConnect(err)
	}
	return connect.NewResponse(&ListPlayersResponse{Players: players}), nil
}

// UpdateGameProfile sets stats or role for one of a player's games
func (s *Service) UpdateGameProfile(ctx context.Context, req *connect.Request[UpdateGameProfileMessage]) (*connect.Response[PlayerResponse], error) {
	id, err := uuid.Parse(req.Msg.PlayerID)
	if err != nil {
		return nil, apperrors.ToConnect(apperrors.Validation("invalid player_id: %v", err))
	}

	p, err := s.app.UpdateGameProfile(ctx, id, req.Msg.UpdateGameProfileRequest)
	if err != nil {
		return nil, apperrors.ToConnect(err)
	}
	return connect.NewResponse(&PlayerResponse{Player: p}), nil
}

// RecalculateAllRatings recomputes every OVR
func (s *Service) RecalculateAllRatings(ctx context.Context, req *connect.Request[RecalculateAllRatingsRequest]) (*connect.Response[RecalculateResult], error) {
	result, err := s.app.RecalculateAllRatings(ctx)
	if err != nil {
		return nil, apperrors.ToConnect(err)
	}
	return connect.NewResponse(result), nil
}

// NewPlayerServiceHandler builds the HTTP handler for the player service
func NewPlayerServiceHandler(svc *Service, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = rpc.WithCodec(opts...)
	return rpc.Mount(PlayerServiceName, map[string]http.Handler{
		createPlayerProcedure:          connect.NewUnaryHandler(createPlayerProcedure, svc.CreatePlayer, opts...),
		getPlayerProcedure:             connect.NewUnaryHandler(getPlayerProcedure, svc.GetPlayer, opts...),
		listPlayersProcedure:           connect.NewUnaryHandler(listPlayersProcedure, svc.ListPlayers, opts...),
		updateGameProfileProcedure:     connect.NewUnaryHandler(updateGameProfileProcedure, svc.UpdateGameProfile, opts...),
		recalculateAllRatingsProcedure: connect.NewUnaryHandler(recalculateAllRatingsProcedure, svc.RecalculateAllRatings, opts...),
	})
}
