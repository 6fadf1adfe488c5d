// ABOUTME: Wires configuration into a store, an optional remote and the lead service
// ABOUTME: Shared by every CLI command, the HTTP server and the MCP server
package cli

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/harperreed/quotedesk/charm"
	"github.com/harperreed/quotedesk/config"
	"github.com/harperreed/quotedesk/crm"
	"github.com/harperreed/quotedesk/db"
	"github.com/harperreed/quotedesk/remote"
	"github.com/harperreed/quotedesk/store"
)

// App is one opened quotedesk environment.
type App struct {
	Config  *config.Config
	Logger  *log.Logger
	Store   store.Store
	Remote  remote.Remote
	Service *crm.Service

	// SQL is the sqlite handle when the sqlite backend is in use; it also
	// carries the sync log.
	SQL *sql.DB
}

// Open builds an App from cfg. A missing remote endpoint is not an error;
// sync commands report it when used.
func Open(ctx context.Context, cfg *config.Config, logger *log.Logger) (*App, error) {
	app := &App{Config: cfg, Logger: logger}

	st, err := app.openStore(ctx)
	if err != nil {
		return nil, err
	}
	app.Store = st

	rem, err := OpenRemote(ctx, cfg, logger)
	if err != nil {
		logger.Warn("remote disabled", "error", err)
		rem = nil
	}
	app.Remote = rem

	opts := crm.Options{
		Remote:        rem,
		Logger:        logger,
		BulkPushDelay: cfg.BulkPushDelay,
		AutoPush:      cfg.AutoPush,
	}
	if app.SQL != nil {
		opts.Recorder = db.NewSyncRecorder(app.SQL)
	}
	app.Service = crm.New(st, opts)
	return app, nil
}

func (a *App) openStore(ctx context.Context) (store.Store, error) {
	switch a.Config.Backend {
	case config.BackendSQLite:
		database, err := db.OpenDatabase(a.Config.DBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		a.SQL = database
		return db.NewSQLiteStore(database, a.Logger), nil

	case config.BackendBadger:
		kv, err := store.OpenBadger(a.Config.BadgerDir)
		if err != nil {
			return nil, err
		}
		return store.NewKVStore(kv, a.Logger), nil

	case config.BackendRedis:
		kv, err := store.OpenRedis(ctx, a.Config.RedisURL)
		if err != nil {
			return nil, err
		}
		return store.NewKVStore(kv, a.Logger), nil

	case config.BackendCharm:
		client, err := charm.GetClient()
		if err != nil {
			return nil, fmt.Errorf("failed to initialize charm: %w", err)
		}
		return store.NewKVStore(client, a.Logger), nil

	default:
		return nil, fmt.Errorf("unknown backend %q", a.Config.Backend)
	}
}

// OpenRemote builds the configured remote, or nil when none is configured.
func OpenRemote(ctx context.Context, cfg *config.Config, logger *log.Logger) (remote.Remote, error) {
	if !cfg.RemoteConfigured() {
		return nil, nil
	}

	switch cfg.Remote {
	case config.RemoteSheets:
		token, err := remote.LoadToken()
		if err != nil {
			return nil, fmt.Errorf("no Google token, run 'quotedesk sync login': %w", err)
		}
		client, err := remote.NewSheetsClientFromToken(ctx, token, cfg.SpreadsheetID, cfg.SheetName, logger)
		if err != nil {
			return nil, err
		}
		client.SetTimeouts(cfg.PushTimeout, cfg.PullTimeout)
		return client, nil

	default:
		client, err := remote.NewScriptClient(cfg.ScriptURL,
			remote.WithLogger(logger),
			remote.WithTimeouts(cfg.PushTimeout, cfg.PullTimeout),
		)
		if err != nil {
			return nil, err
		}
		return client, nil
	}
}

// Close releases the store.
func (a *App) Close() error {
	if a.Store == nil {
		return nil
	}
	return a.Store.Close()
}
