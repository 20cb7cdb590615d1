package rostersync

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mcdev12/arena/go/internal/apperrors"
	"github.com/mcdev12/arena/go/internal/rpc"
)

const RosterSyncServiceName = "RosterSyncService"

var triggerRosterSyncProcedure = rpc.Procedure(RosterSyncServiceName, "TriggerRosterSync")

type TriggerRosterSyncRequest struct{}

// SyncApp defines what the service layer needs from the sync application
type SyncApp interface {
	Trigger(ctx context.Context) (*Result, error)
}

// Service implements the RosterSyncService connect interface
type Service struct {
	app SyncApp
}

// NewService creates a new roster sync service
func NewService(app SyncApp) *Service {
	return &Service{app: app}
}

// TriggerRosterSync runs a sync and reports its summary. A run that aborted
// part way still answers with its partial summary and the error message.
func (s *Service) TriggerRosterSync(ctx context.Context, req *connect.Request[TriggerRosterSyncRequest]) (*connect.Response[Result], error) {
	result, err := s.app.Trigger(ctx)
	if result == nil {
		return nil, apperrors.ToConnect(err)
	}
	// results are shared between joined triggers
	out := *result
	if err != nil {
		out.Success = false
		out.Error = err.Error()
	}
	return connect.NewResponse(&out), nil
}

// NewRosterSyncServiceHandler builds the HTTP handler for the roster sync service
func NewRosterSyncServiceHandler(svc *Service, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = rpc.WithCodec(opts...)
	return rpc.Mount(RosterSyncServiceName, map[string]http.Handler{
		triggerRosterSyncProcedure: connect.NewUnaryHandler(triggerRosterSyncProcedure, svc.TriggerRosterSync, opts...),
	})
}
