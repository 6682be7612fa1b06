package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(New())
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, DriverSQLite, cfg.DB.Driver)
	assert.Equal(t, "notes.db", cfg.DB.DSN)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("NOTES_ADDR", ":9999")
	t.Setenv("NOTES_DB_DRIVER", "POSTGRES")
	t.Setenv("NOTES_DB_DSN", "postgres://u:p@localhost/notes")
	t.Setenv("NOTES_LOG_LEVEL", "debug")
	t.Setenv("NOTES_SHUTDOWN_TIMEOUT", "3s")

	cfg, err := Load(New())
	require.NoError(t, err)

	assert.Equal(t, ":9999", cfg.Addr)
	assert.Equal(t, DriverPostgres, cfg.DB.Driver)
	assert.Equal(t, "postgres://u:p@localhost/notes", cfg.DB.DSN)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 3*time.Second, cfg.ShutdownTimeout)
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	t.Setenv("NOTES_DB_DRIVER", "mysql")

	_, err := Load(New())
	assert.ErrorContains(t, err, "unsupported db driver")
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("NOTES_DB_DSN=:memory:\n"), 0o600))
	// Setenv registers the restore; unset so godotenv does not skip the key.
	t.Setenv("NOTES_DB_DSN", "")
	require.NoError(t, os.Unsetenv("NOTES_DB_DSN"))

	require.NoError(t, LoadDotEnv(path))

	cfg, err := Load(New())
	require.NoError(t, err)
	assert.Equal(t, MemoryDSN, cfg.DB.DSN)
}

func TestLoadDotEnvMissingFile(t *testing.T) {
	err := LoadDotEnv(filepath.Join(t.TempDir(), "nope.env"))
	assert.Error(t, err)
}
