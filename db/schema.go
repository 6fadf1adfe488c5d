// ABOUTME: Database schema definitions
// ABOUTME: Lead collection, pending queue, UI state and sync bookkeeping tables
package db

import (
	"database/sql"
)

const schema = `
CREATE TABLE IF NOT EXISTS customers (
	position INTEGER PRIMARY KEY,
	id TEXT NOT NULL,
	phone TEXT,
	data TEXT NOT NULL,
	updated_at TEXT
);

CREATE INDEX IF NOT EXISTS idx_customers_id ON customers(id);
CREATE INDEX IF NOT EXISTS idx_customers_phone ON customers(phone);

CREATE TABLE IF NOT EXISTS pending_submissions (
	position INTEGER PRIMARY KEY AUTOINCREMENT,
	data TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS app_state (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS sync_state (
	service TEXT PRIMARY KEY,
	last_sync_time DATETIME,
	status TEXT CHECK(status IN ('idle', 'syncing', 'error')),
	error_message TEXT,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS sync_log (
	id TEXT PRIMARY KEY,
	service TEXT NOT NULL,
	action TEXT NOT NULL,
	record_id TEXT,
	outcome TEXT NOT NULL CHECK(outcome IN ('success', 'duplicate', 'error')),
	message TEXT,
	added INTEGER NOT NULL DEFAULT 0,
	updated INTEGER NOT NULL DEFAULT 0,
	skipped INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_sync_log_service ON sync_log(service, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_sync_log_record ON sync_log(record_id);
`

func InitSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
