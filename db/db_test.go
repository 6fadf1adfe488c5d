// ABOUTME: Tests for database open and schema initialization
// ABOUTME: Verifies WAL mode, idempotent schema creation and invalid paths
package db

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := OpenDatabase(filepath.Join(t.TempDir(), "quotedesk.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	return database
}

func TestOpenDatabase(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "quotedesk.db")

	database, err := OpenDatabase(dbPath)
	require.NoError(t, err)
	defer func() { _ = database.Close() }()

	_, err = os.Stat(dbPath)
	assert.NoError(t, err, "database file should exist")

	var mode string
	require.NoError(t, database.QueryRow("PRAGMA journal_mode").Scan(&mode))
	assert.Equal(t, "wal", mode)
}

func TestOpenDatabaseCreatesTables(t *testing.T) {
	database := setupTestDB(t)

	for _, table := range []string{"customers", "pending_submissions", "app_state", "sync_state", "sync_log"} {
		var name string
		err := database.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		assert.NoError(t, err, "table %s missing", table)
	}
}

func TestOpenDatabaseTwice(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "quotedesk.db")

	first, err := OpenDatabase(dbPath)
	require.NoError(t, err)
	_, err = first.Exec(`INSERT INTO app_state (key, value) VALUES ('theme', 'dark')`)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := OpenDatabase(dbPath)
	require.NoError(t, err)
	defer func() { _ = second.Close() }()

	var value string
	require.NoError(t, second.QueryRow(`SELECT value FROM app_state WHERE key = 'theme'`).Scan(&value))
	assert.Equal(t, "dark", value)
}

func TestOpenDatabaseInvalidPath(t *testing.T) {
	_, err := OpenDatabase("/proc/quotedesk/cannot/exist/test.db")
	assert.Error(t, err)
}
