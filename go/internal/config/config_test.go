package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, 1, cfg.RosterSyncWorkers)
	assert.Equal(t, 10*time.Minute, cfg.RosterSyncLockTTL)
	assert.Equal(t, 5*time.Minute, cfg.SettingsCacheTTL)
	assert.Equal(t, time.Minute, cfg.GameRegistryTTL)
	assert.Empty(t, cfg.NATSURL)
	assert.Empty(t, cfg.RosterSyncCron)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("PORT", "9000")
	t.Setenv("ROSTER_SYNC_WORKERS", "4")
	t.Setenv("ROSTER_SYNC_LOCK_TTL", "90s")
	t.Setenv("ROSTER_SYNC_CRON", "0 3 * * *")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Addr())
	assert.Equal(t, 4, cfg.RosterSyncWorkers)
	assert.Equal(t, 90*time.Second, cfg.RosterSyncLockTTL)
	assert.Equal(t, "0 3 * * *", cfg.RosterSyncCron)
}

func TestValidate(t *testing.T) {
	valid := Config{JWTSecret: "x", RosterSyncWorkers: 1, RosterSyncLockTTL: time.Minute, LogLevel: "info"}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "missing secret", mutate: func(c *Config) { c.JWTSecret = "" }},
		{name: "no workers", mutate: func(c *Config) { c.RosterSyncWorkers = 0 }},
		{name: "zero lock ttl", mutate: func(c *Config) { c.RosterSyncLockTTL = 0 }},
		{name: "bad log level", mutate: func(c *Config) { c.LogLevel = "loud" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
