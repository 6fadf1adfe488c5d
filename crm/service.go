// ABOUTME: Lead management service wiring the local store, reconciliation and remote mirror
// ABOUTME: Local mutations save first; remote sync is best effort and never rolls back
package crm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/harperreed/quotedesk/convert"
	"github.com/harperreed/quotedesk/models"
	"github.com/harperreed/quotedesk/monitoring"
	"github.com/harperreed/quotedesk/normalize"
	"github.com/harperreed/quotedesk/reconcile"
	"github.com/harperreed/quotedesk/remote"
	"github.com/harperreed/quotedesk/store"
)

// ErrNotFound is returned when no lead has the requested id.
var ErrNotFound = errors.New("lead not found")

// ErrNoRemote is returned by sync operations when no remote is configured.
var ErrNoRemote = errors.New("no remote spreadsheet configured")

// ErrDuplicateID is returned by Add when the id is already taken.
var ErrDuplicateID = errors.New("lead id already exists")

// RemoteService names the remote in sync bookkeeping.
const RemoteService = "sheets"

// DefaultBulkPushDelay spaces requests issued by PushAll.
const DefaultBulkPushDelay = 500 * time.Millisecond

// SyncRecorder persists sync outcomes. db.SyncRecorder implements it.
type SyncRecorder interface {
	RecordSync(ctx context.Context, ev models.SyncEvent) error
}

// Options carries the optional collaborators of a Service.
type Options struct {
	Remote        remote.Remote
	Recorder      SyncRecorder
	Logger        *log.Logger
	Clock         func() time.Time
	BulkPushDelay time.Duration

	// AutoPush mirrors every local add or edit to the remote.
	AutoPush bool
}

// Service owns the lead collection for one process. Local mutations are
// serialized; remote calls run outside the lock.
type Service struct {
	mu        sync.Mutex
	store     store.Store
	remote    remote.Remote
	recorder  SyncRecorder
	logger    *log.Logger
	now       func() time.Time
	bulkDelay time.Duration
	autoPush  bool
}

// New creates a Service over st.
func New(st store.Store, opts Options) *Service {
	s := &Service{
		store:     st,
		remote:    opts.Remote,
		recorder:  opts.Recorder,
		logger:    opts.Logger,
		now:       opts.Clock,
		bulkDelay: opts.BulkPushDelay,
		autoPush:  opts.AutoPush,
	}
	if s.logger == nil {
		s.logger = log.Default()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.bulkDelay <= 0 {
		s.bulkDelay = DefaultBulkPushDelay
	}
	return s
}

// HasRemote reports whether a remote mirror is configured.
func (s *Service) HasRemote() bool {
	return s.remote != nil
}

// load reads the collection. The caller holds s.mu. A read failure is
// returned so no caller saves over state it could not see.
func (s *Service) load(ctx context.Context) ([]models.CustomerRecord, error) {
	res := s.store.Load(ctx)
	if res.Err != nil {
		return nil, fmt.Errorf("failed to load leads: %w", res.Err)
	}
	if res.Recovered {
		s.logger.Warn("lead collection recovered as empty", "reason", res.Reason)
	}
	return res.Records, nil
}

func (s *Service) save(ctx context.Context, records []models.CustomerRecord) error {
	if err := s.store.Save(ctx, records); err != nil {
		return fmt.Errorf("failed to save leads: %w", err)
	}
	return nil
}

func indexOf(records []models.CustomerRecord, id string) int {
	for i := range records {
		if records[i].ID == id {
			return i
		}
	}
	return -1
}

// Leads returns every lead in stored order.
func (s *Service) Leads(ctx context.Context) ([]models.CustomerRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

// List is Leads for display paths: a read failure is logged and shows as
// an empty list.
func (s *Service) List(ctx context.Context) []models.CustomerRecord {
	records, err := s.Leads(ctx)
	if err != nil {
		s.logger.Error("could not list leads", "error", err)
		return nil
	}
	return records
}

// Get returns the lead with id.
func (s *Service) Get(ctx context.Context, id string) (models.CustomerRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load(ctx)
	if err != nil {
		return models.CustomerRecord{}, err
	}
	i := indexOf(records, id)
	if i < 0 {
		return models.CustomerRecord{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return records[i], nil
}

// AddForm converts an admin form submission and adds it.
func (s *Service) AddForm(ctx context.Context, fields map[string]string) (models.CustomerRecord, error) {
	return s.Add(ctx, convert.ToCustomerRecord(fields, convert.KindLocalForm, s.now()))
}

// Add appends rec to the collection, filling id, timestamps and source
// when absent, then mirrors it when auto push is on.
func (s *Service) Add(ctx context.Context, rec models.CustomerRecord) (models.CustomerRecord, error) {
	if err := convert.Validate(rec); err != nil {
		return models.CustomerRecord{}, err
	}

	now := s.now()
	stamp := models.FormatTime(now)
	if rec.ID == "" {
		rec.ID = convert.NewID(now)
	}
	if rec.CreatedAt == "" {
		rec.CreatedAt = stamp
	}
	rec.UpdatedAt = stamp
	if rec.Source == "" {
		rec.Source = models.SourceAdminForm
	}
	rec.Status = normalize.Status(string(rec.Status))
	rec.Priority = normalize.Priority(string(rec.Priority))

	if err := s.appendRecord(ctx, rec); err != nil {
		return models.CustomerRecord{}, err
	}

	s.logger.Info("lead added", "id", rec.ID, "name", rec.FullName())
	if s.autoPush {
		s.mirror(ctx, rec, false)
	}
	return rec, nil
}

func (s *Service) appendRecord(ctx context.Context, rec models.CustomerRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load(ctx)
	if err != nil {
		return err
	}
	if indexOf(records, rec.ID) >= 0 {
		return fmt.Errorf("%w: %s", ErrDuplicateID, rec.ID)
	}
	return s.save(ctx, append(records, rec))
}

// Update replaces the fields of the lead with id. The id and createdAt are
// kept and updatedAt is set to now.
func (s *Service) Update(ctx context.Context, id string, rec models.CustomerRecord) (models.CustomerRecord, error) {
	if err := convert.Validate(rec); err != nil {
		return models.CustomerRecord{}, err
	}

	updated, err := s.mutate(ctx, id, func(current *models.CustomerRecord) {
		next := rec.Clone()
		next.ID = current.ID
		next.CreatedAt = current.CreatedAt
		next.Status = normalize.Status(string(next.Status))
		next.Priority = normalize.Priority(string(next.Priority))
		if next.Source == "" {
			next.Source = current.Source
		}
		if next.Extra == nil {
			next.Extra = current.Extra
		}
		*current = next
	})
	if err != nil {
		return models.CustomerRecord{}, err
	}

	if s.autoPush {
		s.mirror(ctx, updated, true)
	}
	return updated, nil
}

// SetStatus changes only the pipeline status.
func (s *Service) SetStatus(ctx context.Context, id, raw string) (models.CustomerRecord, error) {
	status := normalize.Status(raw)
	updated, err := s.mutate(ctx, id, func(current *models.CustomerRecord) {
		current.Status = status
	})
	if err != nil {
		return models.CustomerRecord{}, err
	}

	s.logger.Info("lead status changed", "id", id, "status", status)
	if s.autoPush {
		s.mirror(ctx, updated, true)
	}
	return updated, nil
}

// ContactedNotePrefix starts the note line added by ToggleContacted.
const ContactedNotePrefix = "✓ Contacted on "

// ToggleContacted flips the contacted flag. Marking contacted stamps
// contactedDate and appends a note line; unmarking removes both.
func (s *Service) ToggleContacted(ctx context.Context, id string) (models.CustomerRecord, error) {
	now := s.now()
	updated, err := s.mutate(ctx, id, func(current *models.CustomerRecord) {
		if current.Contacted {
			current.Contacted = false
			current.ContactedDate = ""
			current.Notes = stripContactedNote(current.Notes)
			return
		}
		current.Contacted = true
		current.ContactedDate = models.FormatTime(now)
		line := ContactedNotePrefix + now.Format("2006-01-02")
		if strings.TrimSpace(current.Notes) == "" {
			current.Notes = line
		} else {
			current.Notes = current.Notes + "\n" + line
		}
	})
	if err != nil {
		return models.CustomerRecord{}, err
	}

	if s.autoPush {
		s.mirror(ctx, updated, true)
	}
	return updated, nil
}

func stripContactedNote(notes string) string {
	lines := strings.Split(notes, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), ContactedNotePrefix) {
			continue
		}
		kept = append(kept, line)
	}
	return strings.TrimRight(strings.Join(kept, "\n"), "\n")
}

// mutate applies fn to the lead with id, stamps updatedAt and saves.
func (s *Service) mutate(ctx context.Context, id string, fn func(*models.CustomerRecord)) (models.CustomerRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load(ctx)
	if err != nil {
		return models.CustomerRecord{}, err
	}
	i := indexOf(records, id)
	if i < 0 {
		return models.CustomerRecord{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	fn(&records[i])
	records[i].UpdatedAt = models.FormatTime(s.now())

	if err := s.save(ctx, records); err != nil {
		return models.CustomerRecord{}, err
	}
	return records[i], nil
}

// Delete removes the lead locally. The remote copy is left alone.
func (s *Service) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load(ctx)
	if err != nil {
		return err
	}
	i := indexOf(records, id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	records = append(records[:i], records[i+1:]...)
	if err := s.save(ctx, records); err != nil {
		return err
	}
	s.logger.Info("lead deleted", "id", id)
	return nil
}

// ClearAll empties the local collection.
func (s *Service) ClearAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.save(ctx, nil); err != nil {
		return err
	}
	s.logger.Warn("all leads cleared")
	return nil
}

// Dedupe collapses leads sharing a phone number. It is destructive; callers
// confirm with the operator first.
func (s *Service) Dedupe(ctx context.Context) (reconcile.DedupeResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load(ctx)
	if err != nil {
		return reconcile.DedupeResult{}, err
	}
	result := reconcile.Dedupe(records)
	if result.Removed == 0 {
		return result, nil
	}
	if err := s.save(ctx, result.Kept); err != nil {
		return reconcile.DedupeResult{}, err
	}
	s.logger.Info("duplicates removed", "removed", result.Removed, "groups", result.Groups)
	return result, nil
}

// merge reconciles incoming into the stored collection and saves it when
// anything changed.
func (s *Service) merge(ctx context.Context, incoming []models.CustomerRecord, opts reconcile.MatchOptions) (reconcile.MergeResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mergeLocked(ctx, incoming, opts)
}

// mergeLocked is merge for callers already holding s.mu.
func (s *Service) mergeLocked(ctx context.Context, incoming []models.CustomerRecord, opts reconcile.MatchOptions) (reconcile.MergeResult, error) {
	records, err := s.load(ctx)
	if err != nil {
		return reconcile.MergeResult{}, err
	}

	opts.Now = s.now()
	result := reconcile.Merge(records, incoming, opts)
	countMerge(opts.Kind, result)

	if result.Added+result.Updated == 0 {
		return result, nil
	}
	if err := s.save(ctx, result.Merged); err != nil {
		return reconcile.MergeResult{}, err
	}
	return result, nil
}

func countMerge(kind convert.SourceKind, r reconcile.MergeResult) {
	source := kind.String()
	monitoring.MergeRecords.WithLabelValues(source, "added").Add(float64(r.Added))
	monitoring.MergeRecords.WithLabelValues(source, "updated").Add(float64(r.Updated))
	monitoring.MergeRecords.WithLabelValues(source, "skipped").Add(float64(r.Skipped - r.Rejected))
	monitoring.MergeRecords.WithLabelValues(source, "rejected").Add(float64(r.Rejected))
}
