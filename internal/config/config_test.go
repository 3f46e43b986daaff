package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	t.Setenv(configPathEnv, "")
	t.Setenv(authSecretEnv, "")

	cfg := Load()

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, 280, cfg.Content.ExcerptLength)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoad_FileMergedThenEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  addr: ":9090"
  shutdownTimeout: 3s
database:
  driver: memory
auth:
  secret: from-file
  tokenTtl: 30m
logging:
  format: json
`), 0o600))

	t.Setenv(configPathEnv, path)
	t.Setenv(authSecretEnv, "from-env")
	t.Setenv(logLevelEnv, "debug")

	cfg := Load()

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, 3*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, DriverMemory, cfg.Database.Driver)
	assert.Equal(t, "from-env", cfg.Auth.Secret)
	assert.Equal(t, 30*time.Minute, cfg.Auth.TokenTTL)
	assert.Equal(t, "auth-service", cfg.Auth.Issuer)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoad_UnreadableFileFallsBack(t *testing.T) {
	t.Setenv(configPathEnv, filepath.Join(t.TempDir(), "missing.yaml"))

	cfg := Load()
	assert.Equal(t, ":8080", cfg.Server.Addr)
}

func TestValidate(t *testing.T) {
	cfg := defaultConfig()
	assert.Error(t, cfg.Validate(), "secret is required")

	cfg.Auth.Secret = "s3cret"
	assert.NoError(t, cfg.Validate())

	cfg.Database.Driver = "sqlite"
	assert.ErrorContains(t, cfg.Validate(), "unknown database.driver")

	cfg.Database.Driver = DriverPostgres
	cfg.Database.DSN = ""
	assert.ErrorContains(t, cfg.Validate(), "database.dsn")
}
