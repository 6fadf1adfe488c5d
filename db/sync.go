// ABOUTME: Database operations for sync_state and sync_log tables
// ABOUTME: Tracks per-service sync status and an audit trail of pulls, pushes and imports
package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/quotedesk/models"
)

// SyncState represents the sync state for a service.
type SyncState struct {
	Service      string
	LastSyncTime *time.Time
	Status       string
	ErrorMessage *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// SyncLogEntry is one recorded sync event.
type SyncLogEntry struct {
	ID string
	models.SyncEvent
}

// GetSyncState retrieves the sync state for a service.
func GetSyncState(db *sql.DB, service string) (*SyncState, error) {
	var state SyncState
	var lastSyncTime sql.NullTime
	var errorMessage sql.NullString

	err := db.QueryRow(`
		SELECT service, last_sync_time, status, error_message, created_at, updated_at
		FROM sync_state
		WHERE service = ?
	`, service).Scan(
		&state.Service,
		&lastSyncTime,
		&state.Status,
		&errorMessage,
		&state.CreatedAt,
		&state.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get sync state: %w", err)
	}

	if lastSyncTime.Valid {
		state.LastSyncTime = &lastSyncTime.Time
	}
	if errorMessage.Valid {
		state.ErrorMessage = &errorMessage.String
	}

	return &state, nil
}

// UpdateSyncStatus updates the sync status for a service.
func UpdateSyncStatus(db *sql.DB, service, status string, errorMsg *string) error {
	var errorMsgVal sql.NullString
	if errorMsg != nil {
		errorMsgVal = sql.NullString{String: *errorMsg, Valid: true}
	}

	_, err := db.Exec(`
		INSERT INTO sync_state (service, status, error_message, created_at, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		ON CONFLICT(service) DO UPDATE SET
			status = excluded.status,
			error_message = excluded.error_message,
			updated_at = CURRENT_TIMESTAMP
	`, service, status, errorMsgVal)

	if err != nil {
		return fmt.Errorf("failed to update sync status: %w", err)
	}

	return nil
}

// MarkSynced records a successful sync for a service.
func MarkSynced(db *sql.DB, service string, at time.Time) error {
	_, err := db.Exec(`
		INSERT INTO sync_state (service, last_sync_time, status, created_at, updated_at)
		VALUES (?, ?, 'idle', CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		ON CONFLICT(service) DO UPDATE SET
			last_sync_time = excluded.last_sync_time,
			status = 'idle',
			error_message = NULL,
			updated_at = CURRENT_TIMESTAMP
	`, service, at.UTC())

	if err != nil {
		return fmt.Errorf("failed to mark synced: %w", err)
	}

	return nil
}

// CreateSyncLog appends an event to the sync log.
func CreateSyncLog(db *sql.DB, ev models.SyncEvent) (string, error) {
	id := uuid.New().String()
	at := ev.At
	if at.IsZero() {
		at = time.Now()
	}

	_, err := db.Exec(`
		INSERT INTO sync_log (id, service, action, record_id, outcome, message, added, updated, skipped, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, id, ev.Service, ev.Action, ev.RecordID, ev.Outcome, ev.Message, ev.Added, ev.Updated, ev.Skipped, at.UTC())

	if err != nil {
		return "", fmt.Errorf("failed to create sync log: %w", err)
	}

	return id, nil
}

// RecentSyncLog returns the newest entries first.
func RecentSyncLog(db *sql.DB, limit int) ([]SyncLogEntry, error) {
	rows, err := db.Query(`
		SELECT id, service, action, record_id, outcome, message, added, updated, skipped, created_at
		FROM sync_log
		ORDER BY created_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query sync log: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []SyncLogEntry
	for rows.Next() {
		var e SyncLogEntry
		var recordID, message sql.NullString
		if err := rows.Scan(&e.ID, &e.Service, &e.Action, &recordID, &e.Outcome, &message,
			&e.Added, &e.Updated, &e.Skipped, &e.At); err != nil {
			return nil, fmt.Errorf("failed to scan sync log: %w", err)
		}
		e.RecordID = recordID.String
		e.Message = message.String
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sync log: %w", err)
	}

	return entries, nil
}

// GetAllSyncStates retrieves the sync state for all services.
func GetAllSyncStates(db *sql.DB) ([]SyncState, error) {
	rows, err := db.Query(`
		SELECT service, last_sync_time, status, error_message, created_at, updated_at
		FROM sync_state
		ORDER BY service
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query sync states: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var states []SyncState
	for rows.Next() {
		var state SyncState
		var lastSyncTime sql.NullTime
		var errorMessage sql.NullString

		if err := rows.Scan(
			&state.Service,
			&lastSyncTime,
			&state.Status,
			&errorMessage,
			&state.CreatedAt,
			&state.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan sync state: %w", err)
		}

		if lastSyncTime.Valid {
			state.LastSyncTime = &lastSyncTime.Time
		}
		if errorMessage.Valid {
			state.ErrorMessage = &errorMessage.String
		}

		states = append(states, state)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sync states: %w", err)
	}

	return states, nil
}

// SyncRecorder writes service sync events to sync_state and sync_log.
type SyncRecorder struct {
	db *sql.DB
}

func NewSyncRecorder(database *sql.DB) *SyncRecorder {
	return &SyncRecorder{db: database}
}

// RecordSync logs ev and updates the service status: errors mark the
// service as failing, anything else marks it synced.
func (r *SyncRecorder) RecordSync(_ context.Context, ev models.SyncEvent) error {
	if _, err := CreateSyncLog(r.db, ev); err != nil {
		return err
	}
	if ev.Outcome == models.SyncOutcomeError {
		msg := ev.Message
		return UpdateSyncStatus(r.db, ev.Service, "error", &msg)
	}
	at := ev.At
	if at.IsZero() {
		at = time.Now()
	}
	return MarkSynced(r.db, ev.Service, at)
}
