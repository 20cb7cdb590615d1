// Package dbconfig reads the Postgres connection settings shared by the
// server and the tools.
package dbconfig

import (
	"database/sql"
	"fmt"
	"net/url"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds Postgres connection settings, read from DB_* variables.
type Config struct {
	Host     string `envconfig:"HOST" default:"localhost"`
	Port     int    `envconfig:"PORT" default:"5432"`
	User     string `envconfig:"USER" default:"postgres"`
	Password string `envconfig:"PASSWORD" default:"postgres"`
	Database string `envconfig:"NAME" default:"arena"`
	SSLMode  string `envconfig:"SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"CONN_MAX_LIFETIME" default:"30m"`
}

// Load reads DB_* environment variables (with defaults).
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("DB", &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to process database config: %w", err)
	}
	return cfg, nil
}

// DSN returns the Postgres connection URL.
func (c Config) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.Database,
		RawQuery: url.Values{"sslmode": []string{c.SSLMode}}.Encode(),
	}
	return u.String()
}

// Apply sets the pool limits on database.
func (c Config) Apply(database *sql.DB) {
	database.SetMaxOpenConns(c.MaxOpenConns)
	database.SetMaxIdleConns(c.MaxIdleConns)
	database.SetConnMaxLifetime(c.ConnMaxLifetime)
}
