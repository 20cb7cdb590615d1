package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/mcdev12/arena/go/internal/config"
	"github.com/mcdev12/arena/go/internal/scheduler"
	"github.com/mcdev12/arena/go/internal/store/postgres"
)

func main() {
	cfg := config.MustLoad()
	cfg.SetupLogging()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	database, err := setupDatabase(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer database.Close()

	if err := postgres.Migrate(ctx, database); err != nil {
		log.Fatal().Err(err).Msg("Failed to migrate database")
	}

	infra, err := setupInfra(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to set up infrastructure")
	}
	defer infra.Close()

	services, err := setupServices(ctx, cfg, database, infra)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to set up services")
	}

	if cfg.RosterSyncCron != "" {
		sched := scheduler.New(cfg.RosterSyncCron, services.syncApp)
		if err := sched.Start(ctx); err != nil {
			log.Fatal().Err(err).Msg("Failed to start scheduler")
		}
		defer sched.Stop()
	}

	server := setupServer(cfg, services, infra.tokens)

	go func() {
		log.Info().Str("addr", server.Addr).Msg("Arena roster server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server shutdown failed")
	}
}
