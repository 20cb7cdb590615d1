package catalog

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mcdev12/arena/go/internal/apperrors"
	"github.com/mcdev12/arena/go/internal/models"
	"github.com/mcdev12/arena/go/internal/rpc"
)

const CatalogServiceName = "CatalogService"

var getCatalogProcedure = rpc.Procedure(CatalogServiceName, "GetCatalog")

type GetCatalogRequest struct{}

type CatalogResponse struct {
	Genres []GenreSpec   `json:"genres"`
	Games  []models.Game `json:"games"`
}

// Service implements the CatalogService connect interface
type Service struct {
	registry Registry
}

// NewService creates a new catalog service
func NewService(registry Registry) *Service {
	return &Service{registry: registry}
}

// GetCatalog returns the genre table and the game registry
func (s *Service) GetCatalog(ctx context.Context, req *connect.Request[GetCatalogRequest]) (*connect.Response[CatalogResponse], error) {
	games, err := s.registry.ListGames(ctx)
	if err != nil {
		return nil, apperrors.ToConnect(err)
	}
	return connect.NewResponse(&CatalogResponse{Genres: Genres(), Games: games}), nil
}

// NewCatalogServiceHandler builds the HTTP handler for the catalog service
func NewCatalogServiceHandler(svc *Service, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = rpc.WithCodec(opts...)
	return rpc.Mount(CatalogServiceName, map[string]http.Handler{
		getCatalogProcedure: connect.NewUnaryHandler(getCatalogProcedure, svc.GetCatalog, opts...),
	})
}
