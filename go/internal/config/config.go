// Package config loads the server configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config holds all application configuration
type Config struct {
	// Application
	Port     int    `envconfig:"PORT" default:"8080"`
	AppEnv   string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// Auth
	JWTSecret string `envconfig:"JWT_SECRET" required:"true"`
	JWTIssuer string `envconfig:"JWT_ISSUER" default:"arena"`

	// Events; empty disables publishing
	NATSURL string `envconfig:"NATS_URL" default:""`

	// Redis; empty address means in-process job lock and no settings cache
	RedisAddr     string `envconfig:"REDIS_ADDR" default:""`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	// Game registry YAML; empty reads the games table
	GameRegistryPath string `envconfig:"GAME_REGISTRY_PATH" default:""`
	// How long team and player operations reuse the game lookup table;
	// roster sync always reloads it
	GameRegistryTTL time.Duration `envconfig:"GAME_REGISTRY_TTL" default:"1m"`

	// Roster sync
	RosterSyncCron    string        `envconfig:"ROSTER_SYNC_CRON" default:""`
	RosterSyncWorkers int           `envconfig:"ROSTER_SYNC_WORKERS" default:"1"`
	RosterSyncLockTTL time.Duration `envconfig:"ROSTER_SYNC_LOCK_TTL" default:"10m"`

	SettingsCacheTTL time.Duration `envconfig:"SETTINGS_CACHE_TTL" default:"5m"`
}

// Load loads configuration from environment variables, reading .env first
// when one exists.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.RosterSyncWorkers < 1 {
		return fmt.Errorf("ROSTER_SYNC_WORKERS must be at least 1")
	}
	if c.RosterSyncLockTTL <= 0 {
		return fmt.Errorf("ROSTER_SYNC_LOCK_TTL must be positive")
	}
	if _, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel)); err != nil {
		return fmt.Errorf("LOG_LEVEL: %w", err)
	}
	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// Addr is the listen address of the HTTP server
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// SetupLogging sets the global zerolog level and, in development, a console writer.
func (c *Config) SetupLogging() {
	level, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel))
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	if c.IsDevelopment() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}

// MustLoad loads configuration or exits on error
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	return cfg
}
