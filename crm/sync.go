// ABOUTME: Remote mirror operations: pull, single and bulk push, setup and test
// ABOUTME: Failures are logged, recorded and reported but never undo local changes
package crm

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/harperreed/quotedesk/convert"
	"github.com/harperreed/quotedesk/models"
	"github.com/harperreed/quotedesk/monitoring"
	"github.com/harperreed/quotedesk/reconcile"
	"github.com/harperreed/quotedesk/remote"
	"golang.org/x/sync/errgroup"
)

// PullRemote fetches the remote rows and merges them into the collection.
// Matched leads adopt the remote id when it ranks better.
func (s *Service) PullRemote(ctx context.Context) (reconcile.MergeResult, error) {
	if s.remote == nil {
		return reconcile.MergeResult{}, ErrNoRemote
	}

	pulled, err := s.remote.Pull(ctx)
	if err != nil {
		s.remoteFailed(ctx, models.SyncActionPull, "", err)
		return reconcile.MergeResult{}, err
	}

	result, err := s.merge(ctx, sheetRecency(pulled.Records(s.now())), reconcile.MatchOptions{
		Kind:             convert.KindRemoteRow,
		PreferIncomingID: true,
	})
	if err != nil {
		return reconcile.MergeResult{}, err
	}

	s.logger.Info("remote pull merged", "rows", len(pulled.Rows), "added", result.Added, "updated", result.Updated, "skipped", result.Skipped)
	s.record(ctx, models.SyncEvent{
		Service: RemoteService,
		Action:  models.SyncActionPull,
		Outcome: models.SyncOutcomeSuccess,
		Added:   result.Added,
		Updated: result.Updated,
		Skipped: result.Skipped,
	})
	return result, nil
}

// sheetRecency dates pulled records by their Date Added column. The sheet
// keeps no modification time, so a row is only as new as that date and
// never outranks a local edit made after it.
func sheetRecency(records []models.CustomerRecord) []models.CustomerRecord {
	for i := range records {
		records[i].UpdatedAt = records[i].CreatedAt
	}
	return records
}

// PushRecord sends the lead with id as a new remote row. A duplicate is
// reported in the result and leaves the local lead untouched.
func (s *Service) PushRecord(ctx context.Context, id string) (remote.PushResult, error) {
	if s.remote == nil {
		return remote.PushResult{}, ErrNoRemote
	}
	rec, err := s.Get(ctx, id)
	if err != nil {
		return remote.PushResult{}, err
	}
	return s.pushOne(ctx, rec)
}

// BulkResult counts the outcomes of PushAll.
type BulkResult struct {
	Pushed     int
	Duplicates int
	Failed     int
	Errors     map[string]error
}

// PushAll pushes every lead, starting one request per BulkPushDelay, and
// waits for all of them. Individual failures are counted, not fatal.
func (s *Service) PushAll(ctx context.Context) (BulkResult, error) {
	if s.remote == nil {
		return BulkResult{}, ErrNoRemote
	}

	records, err := s.Leads(ctx)
	if err != nil {
		return BulkResult{}, err
	}
	result := BulkResult{Errors: make(map[string]error)}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for i, rec := range records {
		if i > 0 {
			select {
			case <-gctx.Done():
			case <-time.After(s.bulkDelay):
			}
		}
		if gctx.Err() != nil {
			break
		}

		g.Go(func() error {
			res, err := s.pushOne(gctx, rec)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				result.Failed++
				result.Errors[rec.ID] = err
			case res.Duplicate:
				result.Duplicates++
			default:
				result.Pushed++
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return result, err
	}
	if err := ctx.Err(); err != nil {
		return result, err
	}

	s.logger.Info("bulk push finished", "pushed", result.Pushed, "duplicates", result.Duplicates, "failed", result.Failed)
	return result, nil
}

// SetupRemote writes the header row on the remote sheet.
func (s *Service) SetupRemote(ctx context.Context) error {
	if s.remote == nil {
		return ErrNoRemote
	}
	return s.remote.SetupHeaders(ctx)
}

// TestRemote checks the remote is reachable.
func (s *Service) TestRemote(ctx context.Context) error {
	if s.remote == nil {
		return ErrNoRemote
	}
	return s.remote.Test(ctx)
}

// pushOne pushes rec and records the outcome.
func (s *Service) pushOne(ctx context.Context, rec models.CustomerRecord) (remote.PushResult, error) {
	res, err := s.remote.Push(ctx, rec)
	if err != nil {
		s.remoteFailed(ctx, models.SyncActionPush, rec.ID, err)
		return res, err
	}

	ev := models.SyncEvent{
		Service:  RemoteService,
		Action:   models.SyncActionPush,
		RecordID: rec.ID,
		Outcome:  models.SyncOutcomeSuccess,
		Message:  res.Message,
		Added:    1,
	}
	if res.Duplicate {
		s.logger.Info("remote already has lead", "id", rec.ID)
		ev.Outcome = models.SyncOutcomeDuplicate
		ev.Added = 0
		ev.Skipped = 1
	}
	s.record(ctx, ev)
	return res, nil
}

// mirror propagates a local change. A new lead is pushed; an edited lead is
// updated and, when the remote does not know it yet, pushed instead.
func (s *Service) mirror(ctx context.Context, rec models.CustomerRecord, edited bool) {
	if s.remote == nil {
		return
	}
	if !edited {
		_, _ = s.pushOne(ctx, rec)
		return
	}

	res, err := s.remote.Update(ctx, rec)
	if errors.Is(err, remote.ErrNotFound) {
		_, _ = s.pushOne(ctx, rec)
		return
	}
	if err != nil {
		s.remoteFailed(ctx, models.SyncActionUpdate, rec.ID, err)
		return
	}
	s.record(ctx, models.SyncEvent{
		Service:  RemoteService,
		Action:   models.SyncActionUpdate,
		RecordID: rec.ID,
		Outcome:  models.SyncOutcomeSuccess,
		Message:  res.Message,
		Updated:  1,
	})
}

// remoteFailed logs, reports and records a transient remote error.
func (s *Service) remoteFailed(ctx context.Context, action, id string, err error) {
	category := remote.Classify(err)
	s.logger.Warn("remote sync failed", "action", action, "id", id, "category", category, "error", err)
	monitoring.CaptureError(err, map[string]interface{}{
		"action":   action,
		"recordId": id,
		"category": string(category),
	})
	s.record(ctx, models.SyncEvent{
		Service:  RemoteService,
		Action:   action,
		RecordID: id,
		Outcome:  models.SyncOutcomeError,
		Message:  err.Error(),
	})
}

func (s *Service) record(ctx context.Context, ev models.SyncEvent) {
	if s.recorder == nil {
		return
	}
	if ev.At.IsZero() {
		ev.At = s.now()
	}
	if err := s.recorder.RecordSync(ctx, ev); err != nil {
		s.logger.Warn("failed to record sync event", "action", ev.Action, "error", err)
	}
}
