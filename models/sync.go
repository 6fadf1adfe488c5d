// ABOUTME: Sync bookkeeping types shared by the service layer and the sqlite log
// ABOUTME: A SyncEvent describes one pull, push or import and how it ended
package models

import "time"

// Sync actions.
const (
	SyncActionPull          = "pull"
	SyncActionPush          = "push"
	SyncActionUpdate        = "update"
	SyncActionImportPending = "import-pending"
	SyncActionImportCSV     = "import-csv"
)

// Sync outcomes.
const (
	SyncOutcomeSuccess   = "success"
	SyncOutcomeDuplicate = "duplicate"
	SyncOutcomeError     = "error"
)

type SyncEvent struct {
	Service  string
	Action   string
	RecordID string
	Outcome  string
	Message  string
	Added    int
	Updated  int
	Skipped  int
	At       time.Time
}
