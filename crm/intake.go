// ABOUTME: Public quote intake, pending-queue import and file import/export
// ABOUTME: Every batch goes through reconciliation before it reaches the store
package crm

import (
	"context"
	"fmt"
	"io"

	"github.com/harperreed/quotedesk/convert"
	"github.com/harperreed/quotedesk/models"
	"github.com/harperreed/quotedesk/reconcile"
	"github.com/harperreed/quotedesk/remote"
)

// SubmitResult reports a public quote request. Push is zero when the
// remote was not reached.
type SubmitResult struct {
	Record    models.CustomerRecord
	Push      remote.PushResult
	PushError error
}

// SubmitQuote queues a public form submission for admin import and makes a
// best-effort push of it to the remote. Only a failure to queue is an error.
func (s *Service) SubmitQuote(ctx context.Context, sub models.Submission) (SubmitResult, error) {
	now := s.now()
	if sub.Timestamp == "" {
		sub.Timestamp = models.FormatTime(now)
	}
	if sub.ID == "" {
		sub.ID = convert.NewID(now)
	}

	rec := convert.FromSubmission(sub, now)
	if err := convert.Validate(rec); err != nil {
		return SubmitResult{}, err
	}

	s.mu.Lock()
	err := s.store.AppendPending(ctx, sub)
	s.mu.Unlock()
	if err != nil {
		return SubmitResult{}, fmt.Errorf("failed to queue submission: %w", err)
	}
	s.logger.Info("quote request received", "id", sub.ID, "name", rec.FullName())

	result := SubmitResult{Record: rec}
	if s.remote != nil {
		result.Push, result.PushError = s.pushOne(ctx, rec)
	}
	return result, nil
}

// PendingCount returns the number of queued public submissions.
func (s *Service) PendingCount(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	subs, err := s.store.LoadPending(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load pending submissions: %w", err)
	}
	return len(subs), nil
}

// ImportPending merges queued public submissions into the collection. When
// at least one lead was added or updated, the submissions that took part
// are removed from the queue; anything queued meanwhile stays for the next
// import.
func (s *Service) ImportPending(ctx context.Context) (reconcile.MergeResult, error) {
	result, err := s.importPending(ctx)
	if err != nil {
		return reconcile.MergeResult{}, err
	}

	s.logger.Info("pending submissions imported", "added", result.Added, "updated", result.Updated, "skipped", result.Skipped)
	s.record(ctx, models.SyncEvent{
		Service: "local",
		Action:  models.SyncActionImportPending,
		Outcome: models.SyncOutcomeSuccess,
		Added:   result.Added,
		Updated: result.Updated,
		Skipped: result.Skipped,
	})
	return result, nil
}

func (s *Service) importPending(ctx context.Context) (reconcile.MergeResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	subs, err := s.store.LoadPending(ctx)
	if err != nil {
		return reconcile.MergeResult{}, fmt.Errorf("failed to load pending submissions: %w", err)
	}

	now := s.now()
	incoming := make([]models.CustomerRecord, 0, len(subs))
	for _, sub := range subs {
		incoming = append(incoming, convert.FromSubmission(sub, now))
	}

	result, err := s.mergeLocked(ctx, incoming, reconcile.MatchOptions{Kind: convert.KindPublicForm})
	if err != nil {
		return reconcile.MergeResult{}, err
	}

	if result.Added+result.Updated > 0 {
		if err := s.store.RemovePending(ctx, subs); err != nil {
			return result, fmt.Errorf("failed to clear pending submissions: %w", err)
		}
	}
	return result, nil
}

// ImportResult is a file import: the merge outcome plus rows that never
// made it to reconciliation.
type ImportResult struct {
	Merge     reconcile.MergeResult
	RowErrors []convert.RowError
	Blank     int
}

// ImportCSV reads a CSV export and merges its rows.
func (s *Service) ImportCSV(ctx context.Context, r io.Reader) (ImportResult, error) {
	parsed, err := convert.ReadCSV(r, s.now())
	if err != nil {
		return ImportResult{}, fmt.Errorf("failed to read CSV: %w", err)
	}
	return s.importRows(ctx, parsed)
}

// ImportXLSX reads a workbook written by ExportXLSX and merges its rows.
func (s *Service) ImportXLSX(ctx context.Context, r io.Reader) (ImportResult, error) {
	parsed, err := convert.ReadXLSX(r, s.now())
	if err != nil {
		return ImportResult{}, fmt.Errorf("failed to read workbook: %w", err)
	}
	return s.importRows(ctx, parsed)
}

func (s *Service) importRows(ctx context.Context, parsed convert.CSVResult) (ImportResult, error) {
	result, err := s.merge(ctx, parsed.Records, reconcile.MatchOptions{Kind: convert.KindCSVRow})
	if err != nil {
		return ImportResult{}, err
	}

	for _, rowErr := range parsed.Errors {
		s.logger.Warn("import row rejected", "line", rowErr.Line, "error", rowErr.Err)
	}
	s.record(ctx, models.SyncEvent{
		Service: "local",
		Action:  models.SyncActionImportCSV,
		Outcome: models.SyncOutcomeSuccess,
		Added:   result.Added,
		Updated: result.Updated,
		Skipped: result.Skipped + len(parsed.Errors),
	})
	return ImportResult{Merge: result, RowErrors: parsed.Errors, Blank: parsed.Blank}, nil
}

// ExportCSV writes every lead with human labels.
func (s *Service) ExportCSV(ctx context.Context, w io.Writer) error {
	records, err := s.Leads(ctx)
	if err != nil {
		return err
	}
	return convert.WriteCSV(w, records)
}

// ExportXLSX writes every lead as a workbook.
func (s *Service) ExportXLSX(ctx context.Context, w io.Writer) error {
	records, err := s.Leads(ctx)
	if err != nil {
		return err
	}
	return convert.WriteXLSX(w, records)
}
