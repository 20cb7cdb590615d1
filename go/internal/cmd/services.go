package main

import (
	"context"
	"database/sql"

	"github.com/mcdev12/arena/go/internal/catalog"
	"github.com/mcdev12/arena/go/internal/config"
	"github.com/mcdev12/arena/go/internal/gamename"
	"github.com/mcdev12/arena/go/internal/keylock"
	"github.com/mcdev12/arena/go/internal/player"
	"github.com/mcdev12/arena/go/internal/rostersync"
	"github.com/mcdev12/arena/go/internal/settings"
	settingsdb "github.com/mcdev12/arena/go/internal/settings/db"
	"github.com/mcdev12/arena/go/internal/store/postgres"
	"github.com/mcdev12/arena/go/internal/teams"
	"github.com/mcdev12/arena/go/internal/users"
)

type Services struct {
	Teams      *teams.Service
	Players    *player.Service
	Users      *users.Service
	Settings   *settings.Service
	Catalog    *catalog.Service
	RosterSync *rostersync.Service

	syncApp *rostersync.App
}

func setupServices(ctx context.Context, cfg *config.Config, database *sql.DB, infra *infra) (*Services, error) {
	// Database layer → Repository layer → App layer → Service layer
	st := postgres.New(database)
	locks := keylock.New()

	// Catalog
	registry, err := setupGameRegistry(cfg, database)
	if err != nil {
		return nil, err
	}
	games := gamename.NewLive(registry, cfg.GameRegistryTTL, infra.clock)
	if _, err := games.Refresh(ctx); err != nil {
		return nil, err
	}
	catalogService := catalog.NewService(registry)

	// Settings
	settingsRepo := settings.NewRepository(settingsdb.New(database))
	settingsApp := settings.NewApp(settingsRepo, infra.cache)
	settingsService := settings.NewService(settingsApp)

	// Teams
	teamsApp := teams.NewApp(st, locks, games, infra.publisher, infra.clock)
	teamsService := teams.NewService(teamsApp)

	// Players
	playerApp := player.NewApp(st, games, settingsApp)
	playerService := player.NewService(playerApp)

	// Users
	userApp := users.NewApp(st.Users(), infra.tokens, infra.clock)
	userService := users.NewService(userApp)

	// Roster sync
	syncApp := rostersync.NewApp(st, locks, infra.jobs, games, settingsApp, infra.publisher, infra.clock, rostersync.Config{
		Workers: cfg.RosterSyncWorkers,
		LockTTL: cfg.RosterSyncLockTTL,
	})
	syncService := rostersync.NewService(syncApp)

	return &Services{
		Teams:      teamsService,
		Players:    playerService,
		Users:      userService,
		Settings:   settingsService,
		Catalog:    catalogService,
		RosterSync: syncService,
		syncApp:    syncApp,
	}, nil
}
