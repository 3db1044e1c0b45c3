package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaultsAndEnv(t *testing.T) {
	t.Setenv("JWT_SECRET", "access")
	t.Setenv("JWT_REFRESH_SECRET", "refresh")
	t.Setenv("DATABASE_DRIVER", "sqlite")
	t.Setenv("RATELIMIT_REQUESTS", "5")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, ":3000", cfg.Server.Address)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 24*time.Hour, cfg.JWT.Expiration)
	assert.Equal(t, 168*time.Hour, cfg.JWT.RefreshExpiration)
	assert.Equal(t, 5, cfg.RateLimit.Requests)
	assert.Equal(t, time.Minute, cfg.RateLimit.Window)
	assert.Equal(t, "mjnutrafit/profile-pictures", cfg.S3.Folder)
	assert.False(t, cfg.Server.IsProduction())
	assert.Len(t, cfg.Server.AllowedOrigins(), 3)
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	yaml := []byte("server:\n  mode: production\n  address: \":9000\"\njwt:\n  secret: a\n  refresh_secret: b\n  expiration: 2h\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), yaml, 0o600))

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Server.Address)
	assert.True(t, cfg.Server.IsProduction())
	assert.Equal(t, 2*time.Hour, cfg.JWT.Expiration)
}

func TestLoadConfigRequiresSecrets(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("JWT_REFRESH_SECRET", "")
	_, err := LoadConfig(t.TempDir())
	assert.ErrorIs(t, err, ErrMissingJWTSecret)

	t.Setenv("JWT_SECRET", "x")
	_, err = LoadConfig(t.TempDir())
	assert.ErrorIs(t, err, ErrMissingRefreshSecret)
}
