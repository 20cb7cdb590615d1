package main

import (
	"net/http"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mcdev12/arena/go/internal/authz"
	"github.com/mcdev12/arena/go/internal/catalog"
	"github.com/mcdev12/arena/go/internal/config"
	"github.com/mcdev12/arena/go/internal/player"
	"github.com/mcdev12/arena/go/internal/rostersync"
	"github.com/mcdev12/arena/go/internal/settings"
	"github.com/mcdev12/arena/go/internal/teams"
	"github.com/mcdev12/arena/go/internal/users"
)

func setupServer(cfg *config.Config, services *Services, tokens *authz.Tokens) *http.Server {
	mux := http.NewServeMux()

	// Setup CORS middleware
	c := cors.New(cors.Options{
		AllowedMethods: []string{
			http.MethodHead,
			http.MethodGet,
			http.MethodPost,
		},
		AllowedOrigins: []string{"*"},
		AllowedHeaders: []string{"*"},
	})

	// Register services
	registerServices(mux, services, connect.WithInterceptors(authz.NewInterceptor(tokens)))

	mux.Handle("/metrics", promhttp.Handler())

	// Add health check endpoint
	setupHealthCheck(mux)

	// Wrap with CORS
	handler := c.Handler(mux)

	// Setup HTTP/2 server
	return &http.Server{
		Addr:    cfg.Addr(),
		Handler: h2c.NewHandler(handler, &http2.Server{}),
	}
}

func registerServices(mux *http.ServeMux, services *Services, opts ...connect.HandlerOption) {
	// Register team service
	teamServicePath, teamServiceHandler := teams.NewTeamServiceHandler(services.Teams, opts...)
	mux.Handle(teamServicePath, teamServiceHandler)

	// Register player service
	playerServicePath, playerServiceHandler := player.NewPlayerServiceHandler(services.Players, opts...)
	mux.Handle(playerServicePath, playerServiceHandler)

	// Register user service
	userServicePath, userServiceHandler := users.NewUserServiceHandler(services.Users, opts...)
	mux.Handle(userServicePath, userServiceHandler)

	// Register settings service
	settingsServicePath, settingsServiceHandler := settings.NewSettingsServiceHandler(services.Settings, opts...)
	mux.Handle(settingsServicePath, settingsServiceHandler)

	// Register catalog service
	catalogServicePath, catalogServiceHandler := catalog.NewCatalogServiceHandler(services.Catalog, opts...)
	mux.Handle(catalogServicePath, catalogServiceHandler)

	// Register roster sync service
	syncServicePath, syncServiceHandler := rostersync.NewRosterSyncServiceHandler(services.RosterSync, opts...)
	mux.Handle(syncServicePath, syncServiceHandler)
}

func setupHealthCheck(mux *http.ServeMux) {
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			log.Error().Err(err).Msg("Failed to write health check response")
		}
	})
}
