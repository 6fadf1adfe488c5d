// ABOUTME: Local persistence contract for leads, pending submissions and UI state
// ABOUTME: Defines the Store interface, persisted keys and the LoadResult
package store

import (
	"context"
	"errors"

	"github.com/harperreed/quotedesk/models"
)

// ErrNotFound is returned by KV drivers for a missing key.
var ErrNotFound = errors.New("key not found")

// Persisted state keys. Each one is loaded and cleared independently.
const (
	KeyCustomers   = "customers"
	KeyPending     = "customerSubmissions"
	KeyTheme       = "theme"
	autosavePrefix = "autosave:"
)

// DefaultTheme is returned when no theme preference was saved.
const DefaultTheme = "light"

// AutosaveKey is the key holding the in-progress snapshot of form.
func AutosaveKey(form string) string {
	return autosavePrefix + form
}

// LoadResult is the outcome of loading the lead collection. Unparsable
// content is not an error: the collection comes back empty with Recovered
// set and the cause in Reason. Err is set when the backend could not be
// read at all; Records is then meaningless and must not be saved over.
type LoadResult struct {
	Records   []models.CustomerRecord
	Recovered bool
	Reason    string
	Err       error
}

// Store is the durable local copy of the lead collection.
//
// Save fully replaces the collection and is atomic from the caller's point
// of view: a later Load never observes a partial write.
type Store interface {
	Load(ctx context.Context) LoadResult
	Save(ctx context.Context, records []models.CustomerRecord) error

	LoadPending(ctx context.Context) ([]models.Submission, error)
	AppendPending(ctx context.Context, sub models.Submission) error
	ClearPending(ctx context.Context) error
	// RemovePending drops the queued submissions whose Key matches one of
	// subs. Submissions queued after subs was loaded stay queued.
	RemovePending(ctx context.Context, subs []models.Submission) error

	LoadAutosave(ctx context.Context, form string) (map[string]string, bool, error)
	SaveAutosave(ctx context.Context, form string, fields map[string]string) error
	ClearAutosave(ctx context.Context, form string) error

	Theme(ctx context.Context) (string, error)
	SetTheme(ctx context.Context, theme string) error

	Close() error
}

// pendingKeys indexes subs by Submission.Key.
func pendingKeys(subs []models.Submission) map[string]bool {
	keys := make(map[string]bool, len(subs))
	for _, sub := range subs {
		keys[sub.Key()] = true
	}
	return keys
}

// WithoutPending returns queue minus the submissions matching subs.
func WithoutPending(queue, subs []models.Submission) []models.Submission {
	drop := pendingKeys(subs)
	kept := make([]models.Submission, 0, len(queue))
	for _, sub := range queue {
		if !drop[sub.Key()] {
			kept = append(kept, sub)
		}
	}
	return kept
}
