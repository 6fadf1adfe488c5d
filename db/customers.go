// ABOUTME: SQLite implementation of the local lead store
// ABOUTME: Stores each lead as a JSON row and replaces the collection in one transaction
package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/harperreed/quotedesk/models"
	"github.com/harperreed/quotedesk/normalize"
	"github.com/harperreed/quotedesk/store"
)

// SQLiteStore keeps leads, pending submissions and UI state in SQLite.
type SQLiteStore struct {
	db     *sql.DB
	logger *log.Logger
}

var _ store.Store = (*SQLiteStore)(nil)

// NewSQLiteStore wraps an open database. The schema must already exist.
func NewSQLiteStore(database *sql.DB, logger *log.Logger) *SQLiteStore {
	if logger == nil {
		logger = log.Default()
	}
	return &SQLiteStore{db: database, logger: logger}
}

// DB exposes the handle for sync bookkeeping on the same file.
func (s *SQLiteStore) DB() *sql.DB {
	return s.db
}

func (s *SQLiteStore) Load(ctx context.Context) store.LoadResult {
	rows, err := s.db.QueryContext(ctx, `SELECT data FROM customers ORDER BY position`)
	if err != nil {
		return store.LoadResult{Err: fmt.Errorf("failed to query leads: %w", err)}
	}
	defer func() { _ = rows.Close() }()

	var records []models.CustomerRecord
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return store.LoadResult{Err: fmt.Errorf("failed to scan lead row: %w", err)}
		}
		var rec models.CustomerRecord
		if err := json.Unmarshal([]byte(data), &rec); err != nil {
			s.logger.Warn("lead collection is corrupt, starting empty", "err", err)
			return store.LoadResult{Recovered: true, Reason: fmt.Sprintf("corrupt lead row: %v", err)}
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return store.LoadResult{Err: fmt.Errorf("failed to iterate lead rows: %w", err)}
	}

	return store.LoadResult{Records: records}
}

func (s *SQLiteStore) Save(ctx context.Context, records []models.CustomerRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM customers`); err != nil {
		return fmt.Errorf("failed to clear leads: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO customers (position, id, phone, data, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, rec := range records {
		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("failed to encode lead %s: %w", rec.ID, err)
		}
		if _, err := stmt.ExecContext(ctx, i, rec.ID, normalize.Phone(rec.Phone), string(data), rec.UpdatedAt); err != nil {
			return fmt.Errorf("failed to insert lead %s: %w", rec.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit leads: %w", err)
	}
	return nil
}

func (s *SQLiteStore) LoadPending(ctx context.Context) ([]models.Submission, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT data FROM pending_submissions ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending submissions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var subs []models.Submission
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("failed to scan pending submission: %w", err)
		}
		var sub models.Submission
		if err := json.Unmarshal([]byte(data), &sub); err != nil {
			s.logger.Warn("skipping corrupt pending submission", "err", err)
			continue
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

func (s *SQLiteStore) AppendPending(ctx context.Context, sub models.Submission) error {
	data, err := json.Marshal(sub)
	if err != nil {
		return fmt.Errorf("failed to encode submission: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `INSERT INTO pending_submissions (data) VALUES (?)`, string(data)); err != nil {
		return fmt.Errorf("failed to queue submission: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ClearPending(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM pending_submissions`); err != nil {
		return fmt.Errorf("failed to clear pending submissions: %w", err)
	}
	return nil
}

// RemovePending deletes the queued rows matching subs in one transaction.
func (s *SQLiteStore) RemovePending(ctx context.Context, subs []models.Submission) error {
	if len(subs) == 0 {
		return nil
	}
	drop := make(map[string]bool, len(subs))
	for _, sub := range subs {
		drop[sub.Key()] = true
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	rows, err := tx.QueryContext(ctx, `SELECT position, data FROM pending_submissions`)
	if err != nil {
		return fmt.Errorf("failed to query pending submissions: %w", err)
	}
	var positions []int64
	for rows.Next() {
		var pos int64
		var data string
		if err := rows.Scan(&pos, &data); err != nil {
			_ = rows.Close()
			return fmt.Errorf("failed to scan pending submission: %w", err)
		}
		var sub models.Submission
		if err := json.Unmarshal([]byte(data), &sub); err != nil {
			continue
		}
		if drop[sub.Key()] {
			positions = append(positions, pos)
		}
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return fmt.Errorf("failed to iterate pending submissions: %w", err)
	}
	_ = rows.Close()

	for _, pos := range positions {
		if _, err := tx.ExecContext(ctx, `DELETE FROM pending_submissions WHERE position = ?`, pos); err != nil {
			return fmt.Errorf("failed to remove pending submission: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit pending removal: %w", err)
	}
	return nil
}

func (s *SQLiteStore) LoadAutosave(ctx context.Context, form string) (map[string]string, bool, error) {
	value, ok, err := s.getState(ctx, store.AutosaveKey(form))
	if err != nil || !ok {
		return nil, false, err
	}
	var fields map[string]string
	if err := json.Unmarshal([]byte(value), &fields); err != nil {
		s.logger.Warn("autosave snapshot is corrupt, ignoring", "form", form, "err", err)
		return nil, false, nil
	}
	return fields, true, nil
}

func (s *SQLiteStore) SaveAutosave(ctx context.Context, form string, fields map[string]string) error {
	data, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("failed to encode autosave: %w", err)
	}
	return s.setState(ctx, store.AutosaveKey(form), string(data))
}

func (s *SQLiteStore) ClearAutosave(ctx context.Context, form string) error {
	return s.deleteState(ctx, store.AutosaveKey(form))
}

func (s *SQLiteStore) Theme(ctx context.Context) (string, error) {
	value, ok, err := s.getState(ctx, store.KeyTheme)
	if err != nil {
		return "", err
	}
	if !ok || value == "" {
		return store.DefaultTheme, nil
	}
	return value, nil
}

func (s *SQLiteStore) SetTheme(ctx context.Context, theme string) error {
	return s.setState(ctx, store.KeyTheme, theme)
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) getState(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM app_state WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return value, true, nil
}

func (s *SQLiteStore) setState(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO app_state (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = CURRENT_TIMESTAMP
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to save %s: %w", key, err)
	}
	return nil
}

func (s *SQLiteStore) deleteState(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM app_state WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}
