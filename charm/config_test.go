// ABOUTME: Tests for charm backend configuration persistence
// ABOUTME: Swaps the XDG data dir so defaults, round trips and corrupt files stay isolated
package charm

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/adrg/xdg"
	"github.com/charmbracelet/charm/kv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withDataHome(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	old := xdg.DataHome
	xdg.DataHome = dir
	t.Cleanup(func() { xdg.DataHome = old })
	return dir
}

func TestLoadConfigDefaults(t *testing.T) {
	withDataHome(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, DefaultCharmHost, cfg.Host)
	assert.True(t, cfg.AutoSync)
	assert.False(t, cfg.Offline)
	assert.Equal(t, kv.DefaultStaleThreshold, cfg.StaleThreshold)
}

func TestConfigSaveAndLoad(t *testing.T) {
	home := withDataHome(t)

	cfg := DefaultConfig()
	cfg.Host = "charm.example.com"
	cfg.Offline = true
	require.NoError(t, cfg.SetAutoSync(false))

	path := filepath.Join(home, AppName, ConfigFileName)
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loaded, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "charm.example.com", loaded.Host)
	assert.False(t, loaded.AutoSync)
	assert.True(t, loaded.Offline)
}

func TestLoadConfigCorruptFileUsesDefaults(t *testing.T) {
	home := withDataHome(t)

	path := filepath.Join(home, AppName, ConfigFileName)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0700))
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, DefaultCharmHost, cfg.Host)
}

func TestOfflineDirUnderDataHome(t *testing.T) {
	home := withDataHome(t)

	dir, err := OfflineDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, AppName, "charm-offline"), dir)
}
