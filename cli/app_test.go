// ABOUTME: Tests for CLI wiring and command helpers
// ABOUTME: Opens apps on temp sqlite and badger stores and checks remote selection
package cli

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/harperreed/quotedesk/config"
	"github.com/harperreed/quotedesk/db"
	"github.com/harperreed/quotedesk/models"
	"github.com/harperreed/quotedesk/remote"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T, backend string) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Backend = backend
	cfg.DBPath = filepath.Join(dir, "quotedesk.db")
	cfg.BadgerDir = filepath.Join(dir, "badger")
	return cfg
}

func TestOpenSQLiteRecordsSyncEvents(t *testing.T) {
	ctx := context.Background()
	app, err := Open(ctx, testConfig(t, config.BackendSQLite), log.New(io.Discard))
	require.NoError(t, err)
	defer func() { _ = app.Close() }()

	require.NotNil(t, app.SQL)
	assert.Nil(t, app.Remote)
	assert.False(t, app.Service.HasRemote())

	_, err = app.Service.SubmitQuote(ctx, models.Submission{FirstName: "Pat", Phone: "5551110000"})
	require.NoError(t, err)
	res, err := app.Service.ImportPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Added)

	entries, err := db.RecentSyncLog(app.SQL, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, models.SyncActionImportPending, entries[0].Action)
	assert.Equal(t, 1, entries[0].Added)
}

func TestOpenBadger(t *testing.T) {
	ctx := context.Background()
	app, err := Open(ctx, testConfig(t, config.BackendBadger), log.New(io.Discard))
	require.NoError(t, err)
	defer func() { _ = app.Close() }()

	assert.Nil(t, app.SQL)
	_, err = app.Service.AddForm(ctx, map[string]string{"firstName": "Bo"})
	require.NoError(t, err)
	assert.Len(t, app.Service.List(ctx), 1)
}

func TestOpenUnknownBackend(t *testing.T) {
	_, err := Open(context.Background(), testConfig(t, "floppy"), log.New(io.Discard))
	assert.Error(t, err)
}

func TestOpenRemoteSelection(t *testing.T) {
	ctx := context.Background()
	logger := log.New(io.Discard)

	cfg := testConfig(t, config.BackendBadger)
	rem, err := OpenRemote(ctx, cfg, logger)
	require.NoError(t, err)
	assert.Nil(t, rem)

	cfg.ScriptURL = "https://script.example.com/macros/s/abc/exec"
	rem, err = OpenRemote(ctx, cfg, logger)
	require.NoError(t, err)
	assert.IsType(t, &remote.ScriptClient{}, rem)

	cfg.ScriptURL = "not a url"
	rem, err = OpenRemote(ctx, cfg, logger)
	assert.Error(t, err)
	assert.Nil(t, rem)
}

func TestApplyFieldsNormalizes(t *testing.T) {
	rec := models.CustomerRecord{ID: "x1", FirstName: "Old", Status: models.StatusInitial}

	next := applyFields(rec, map[string]string{
		"firstName": "New",
		"phone":     "(555) 010-2020",
		"status":    "Work Scheduled",
		"priority":  "4",
	})
	assert.Equal(t, "x1", next.ID)
	assert.Equal(t, "New", next.FirstName)
	assert.Equal(t, "5550102020", next.Phone)
	assert.Equal(t, models.StatusScheduled, next.Status)
	assert.Equal(t, models.PriorityHigh, next.Priority)
	assert.Equal(t, "Old", rec.FirstName)
}

func TestFileFormat(t *testing.T) {
	tests := []struct {
		explicit, path, want string
	}{
		{"", "leads.csv", "csv"},
		{"", "leads.XLSX", "xlsx"},
		{"", "", "csv"},
		{"xlsx", "leads.csv", "xlsx"},
		{"CSV", "leads.xlsx", "csv"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, fileFormat(tt.explicit, tt.path), "%q %q", tt.explicit, tt.path)
	}
}
