package settings

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mcdev12/arena/go/internal/apperrors"
	"github.com/mcdev12/arena/go/internal/rpc"
)

const SettingsServiceName = "SettingsService"

var (
	getRoleBonusesProcedure = rpc.Procedure(SettingsServiceName, "GetRoleBonuses")
	setRoleBonusesProcedure = rpc.Procedure(SettingsServiceName, "SetRoleBonuses")
)

type GetRoleBonusesRequest struct{}

type SetRoleBonusesRequest struct {
	Overrides map[string]int `json:"overrides"`
}

type RoleBonusesResponse struct {
	RoleBonuses *RoleBonusTable `json:"role_bonuses"`
}

// SettingsApp defines what the service layer needs from the settings application
type SettingsApp interface {
	GetRoleBonuses(ctx context.Context) (*RoleBonusTable, error)
	SetRoleBonuses(ctx context.Context, overrides map[string]int) (*RoleBonusTable, error)
}

// Service implements the SettingsService connect interface
type Service struct {
	app SettingsApp
}

// NewService creates a new settings service
func NewService(app SettingsApp) *Service {
	return &Service{app: app}
}

// GetRoleBonuses returns the role bonus table
func (s *Service) GetRoleBonuses(ctx context.Context, req *connect.Request[GetRoleBonusesRequest]) (*connect.Response[RoleBonusesResponse], error) {
	table, err := s.app.GetRoleBonuses(ctx)
	if err != nil {
		return nil, apperrors.ToConnect(err)
	}
	return connect.NewResponse(&RoleBonusesResponse{RoleBonuses: table}), nil
}

// SetRoleBonuses replaces the role bonus overrides
func (s *Service) SetRoleBonuses(ctx context.Context, req *connect.Request[SetRoleBonusesRequest]) (*connect.Response[RoleBonusesResponse], error) {
	table, err := s.app.SetRoleBonuses(ctx, req.Msg.Overrides)
	if err != nil {
		return nil, apperrors.ToConnect(err)
	}
	return connect.NewResponse(&RoleBonusesResponse{RoleBonuses: table}), nil
}

// NewSettingsServiceHandler builds the HTTP handler for the settings service
func NewSettingsServiceHandler(svc *Service, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = rpc.WithCodec(opts...)
	return rpc.Mount(SettingsServiceName, map[string]http.Handler{
		getRoleBonusesProcedure: connect.NewUnaryHandler(getRoleBonusesProcedure, svc.GetRoleBonuses, opts...),
		setRoleBonusesProcedure: connect.NewUnaryHandler(setRoleBonusesProcedure, svc.SetRoleBonuses, opts...),
	})
}
