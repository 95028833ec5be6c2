package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "mongo", cfg.Store.Driver)
	assert.Equal(t, "garden", cfg.Mongo.DBName)
	assert.Equal(t, 24*time.Hour, cfg.JWT.Expiration)
	assert.Equal(t, 10*time.Second, cfg.Plot.WriteTimeout)
	assert.Equal(t, 256, cfg.Plot.SessionCache)
	assert.False(t, cfg.S3.Enabled())
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	yaml := `
server:
  port: "9000"
store:
  driver: sqlite
  sqlitePath: /tmp/garden.db
jwt:
  secret: from-file
s3:
  bucket: garden-photos
  region: eu-west-1
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o600))
	t.Setenv("SERVER_PORT", "9100")
	t.Setenv("PLOT_WRITE_TIMEOUT", "3s")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "9100", cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "from-file", cfg.JWT.Secret)
	assert.Equal(t, 3*time.Second, cfg.Plot.WriteTimeout)
	assert.True(t, cfg.S3.Enabled())
}

func TestLoadConfigRequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := LoadConfig(t.TempDir())
	assert.ErrorIs(t, err, ErrMissingJWTSecret)
}
