// ABOUTME: Tests for config loading order and validation
// ABOUTME: Verifies defaults, file values, .env and environment overrides
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWhenNothingExists(t *testing.T) {
	dir := t.TempDir()
	cfg, err := LoadFrom(filepath.Join(dir, "missing.json"), filepath.Join(dir, "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, BackendSQLite, cfg.Backend)
	assert.Equal(t, RemoteScript, cfg.Remote)
	assert.Equal(t, 10*time.Second, cfg.PushTimeout)
	assert.Equal(t, 30*time.Second, cfg.PullTimeout)
	assert.Equal(t, 500*time.Millisecond, cfg.BulkPushDelay)
	assert.False(t, cfg.RemoteConfigured())
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")
	cfg := Default()
	cfg.Backend = BackendBadger
	cfg.ScriptURL = "https://script.example.com/exec"
	cfg.PushTimeout = 3 * time.Second
	require.NoError(t, cfg.SaveTo(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loaded, err := LoadFrom(path, "")
	require.NoError(t, err)
	assert.Equal(t, BackendBadger, loaded.Backend)
	assert.Equal(t, 3*time.Second, loaded.PushTimeout)
	assert.True(t, loaded.RemoteConfigured())
}

func TestEnvironmentOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"backend":"badger","log_level":"warn"}`), 0600))

	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("QUOTEDESK_SPREADSHEET_ID=sheet-from-dotenv\n"), 0600))
	t.Cleanup(func() { _ = os.Unsetenv("QUOTEDESK_SPREADSHEET_ID") })

	t.Setenv("QUOTEDESK_LOG_LEVEL", "debug")
	t.Setenv("QUOTEDESK_PULL_TIMEOUT", "15s")
	t.Setenv("QUOTEDESK_REMOTE", "sheets")

	cfg, err := LoadFrom(path, envFile)
	require.NoError(t, err)
	assert.Equal(t, BackendBadger, cfg.Backend)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 15*time.Second, cfg.PullTimeout)
	assert.Equal(t, "sheet-from-dotenv", cfg.SpreadsheetID)
	assert.True(t, cfg.RemoteConfigured())
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Backend = "mongo"
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Backend = BackendRedis
	assert.Error(t, cfg.Validate())
	cfg.RedisURL = "redis://localhost:6379/0"
	assert.NoError(t, cfg.Validate())

	cfg.Remote = "ftp"
	assert.Error(t, cfg.Validate())
}

func TestLoadRejectsBadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{not json`), 0600))
	_, err := LoadFrom(path, "")
	assert.Error(t, err)
}
