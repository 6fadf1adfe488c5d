// ABOUTME: Read-side helpers for the presentation boundary
// ABOUTME: Search and status filtering, priority ordering and dashboard counts
package crm

import (
	"context"
	"sort"
	"strings"

	"github.com/harperreed/quotedesk/models"
)

// Filter narrows the lead list. Empty fields match everything.
type Filter struct {
	Query  string
	Status models.Status
}

func (f Filter) matches(rec models.CustomerRecord) bool {
	if f.Status != "" && rec.Status != f.Status {
		return false
	}
	q := strings.ToLower(strings.TrimSpace(f.Query))
	if q == "" {
		return true
	}
	fields := []string{
		rec.FirstName,
		rec.LastName,
		rec.Phone,
		rec.Email,
		rec.Notes,
		models.ServiceTypeLabel(rec.ServiceType),
	}
	for _, field := range fields {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

// Filtered returns the leads matching f, highest priority first and newest
// first within a priority.
func (s *Service) Filtered(ctx context.Context, f Filter) []models.CustomerRecord {
	var out []models.CustomerRecord
	for _, rec := range s.List(ctx) {
		if f.matches(rec) {
			out = append(out, rec)
		}
	}
	SortForDisplay(out)
	return out
}

// SortForDisplay orders by priority rank descending, then createdAt descending.
func SortForDisplay(records []models.CustomerRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		pi, pj := records[i].Priority.Rank(), records[j].Priority.Rank()
		if pi != pj {
			return pi > pj
		}
		return records[i].CreatedTime().After(records[j].CreatedTime())
	})
}

// Stats are the dashboard counters.
type Stats struct {
	Total     int `json:"total"`
	Active    int `json:"active"`
	Completed int `json:"completed"`
	FollowUp  int `json:"followUp"`
	Contacted int `json:"contacted"`
	Pending   int `json:"pending"`
}

// Stats counts leads by pipeline stage. Active means scheduled or in progress.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	records, err := s.Leads(ctx)
	if err != nil {
		return Stats{}, err
	}

	var st Stats
	for _, rec := range records {
		st.Total++
		switch rec.Status {
		case models.StatusScheduled, models.StatusInProgress:
			st.Active++
		case models.StatusCompleted:
			st.Completed++
		case models.StatusFollowUp:
			st.FollowUp++
		}
		if rec.Contacted {
			st.Contacted++
		}
	}

	pending, err := s.PendingCount(ctx)
	if err != nil {
		return st, err
	}
	st.Pending = pending
	return st, nil
}
