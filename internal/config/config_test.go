package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "secret")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StoreMemory, cfg.Store.Driver)
	assert.Equal(t, IdentityLocal, cfg.Identity.Provider)
	assert.Equal(t, 8080, cfg.App.Port)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.App.AllowedOrigins)
	assert.Equal(t, time.Hour, cfg.Cron.StaleSessionInterval)
	assert.Equal(t, 10.0, cfg.Location.DistanceInterval)

	loc, err := cfg.TimeLocation()
	require.NoError(t, err)
	assert.Equal(t, "Asia/Jakarta", loc.String())
}

func TestLoad_InvalidValues(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "secret")
	t.Setenv("APP_PORT", "eighty")
	t.Setenv("CRON_STALE_SESSION_INTERVAL", "hourly")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "APP_PORT")
	assert.Contains(t, err.Error(), "CRON_STALE_SESSION_INTERVAL")
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			App:      AppConfig{Timezone: "UTC", Env: "development"},
			JWT:      JWTConfig{Secret: "s", AccessExpiration: "1h"},
			Store:    StoreConfig{Driver: StoreMemory},
			Identity: IdentityConfig{Provider: IdentityLocal},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"ok", func(c *Config) {}, ""},
		{"missing secret", func(c *Config) { c.JWT.Secret = "" }, "JWT_SECRET_KEY"},
		{"bad timezone", func(c *Config) { c.App.Timezone = "Mars/Olympus" }, "APP_TIMEZONE"},
		{"unknown store", func(c *Config) { c.Store.Driver = "redis" }, "STORE_DRIVER"},
		{"postgres needs password", func(c *Config) { c.Store.Driver = StorePostgres }, "DB_PASSWORD"},
		{"firestore needs project", func(c *Config) { c.Store.Driver = StoreFirestore }, "FIREBASE_PROJECT_ID"},
		{"firebase identity needs key", func(c *Config) {
			c.Identity.Provider = IdentityFirebase
			c.Firebase.ProjectID = "cmlabs"
		}, "FIREBASE_API_KEY"},
		{"memory accounts in production", func(c *Config) { c.App.Env = "production" }, "memory store"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSlogLevel(t *testing.T) {
	cfg := Config{App: AppConfig{LogLevel: "debug"}}
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
	cfg.App.LogLevel = "loud"
	assert.Equal(t, slog.LevelInfo, cfg.SlogLevel())
}
