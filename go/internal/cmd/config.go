package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/arena/go/internal/authz"
	"github.com/mcdev12/arena/go/internal/catalog"
	catalogdb "github.com/mcdev12/arena/go/internal/catalog/db"
	"github.com/mcdev12/arena/go/internal/config"
	"github.com/mcdev12/arena/go/internal/events"
	"github.com/mcdev12/arena/go/internal/joblock"
	"github.com/mcdev12/arena/go/internal/settings"
)

// infra holds the optional external collaborators picked by configuration
type infra struct {
	clock     clockwork.Clock
	tokens    *authz.Tokens
	redis     *redis.Client
	publisher events.Publisher
	jetstream *events.JetStreamPublisher
	jobs      joblock.Locker
	cache     settings.Cache
}

func setupInfra(ctx context.Context, cfg *config.Config) (*infra, error) {
	tokens, err := authz.NewTokens(cfg.JWTSecret, cfg.JWTIssuer)
	if err != nil {
		return nil, err
	}

	out := &infra{
		clock:     clockwork.NewRealClock(),
		tokens:    tokens,
		publisher: events.Nop{},
	}
	out.jobs = joblock.NewMemory(out.clock)

	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		out.redis = client
		out.jobs = joblock.NewRedis(client, "arena:joblock:")
		out.cache = settings.NewRedisCache(client, "arena:settings:role_bonuses", cfg.SettingsCacheTTL)
		log.Info().Str("addr", cfg.RedisAddr).Msg("Using redis for job lock and settings cache")
	}

	if cfg.NATSURL != "" {
		js, err := events.NewJetStreamPublisher(ctx, events.DefaultJetStreamConfig(cfg.NATSURL))
		if err != nil {
			out.Close()
			return nil, err
		}
		out.jetstream = js
		out.publisher = js
		log.Info().Str("url", cfg.NATSURL).Msg("Publishing events to JetStream")
	}

	return out, nil
}

func (i *infra) Close() {
	if i.jetstream != nil {
		if err := i.jetstream.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close JetStream publisher")
		}
	}
	if i.redis != nil {
		if err := i.redis.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close redis client")
		}
	}
}

// setupGameRegistry reads games from the YAML file when configured, otherwise
// from the games table, falling back to the built-in list when it is empty.
func setupGameRegistry(cfg *config.Config, database *sql.DB) (catalog.Registry, error) {
	if cfg.GameRegistryPath != "" {
		games, err := catalog.LoadGamesFile(cfg.GameRegistryPath)
		if err != nil {
			return nil, err
		}
		log.Info().Str("path", cfg.GameRegistryPath).Int("games", len(games)).Msg("Loaded game registry file")
		return catalog.NewStaticRegistry(games), nil
	}

	return catalog.FallbackRegistry{
		Primary:  catalog.NewPostgresRegistry(catalogdb.New(database)),
		Fallback: catalog.NewStaticRegistry(nil),
	}, nil
}
