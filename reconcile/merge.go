// ABOUTME: Merges an incoming batch of leads into the local collection
// ABOUTME: Matches by id, phone or phone plus time window and keeps the newer copy
package reconcile

import (
	"encoding/json"
	"time"

	"github.com/harperreed/quotedesk/convert"
	"github.com/harperreed/quotedesk/models"
)

// DefaultMatchWindow is how close createdAt must be for a public form
// submission to match a lead with the same phone.
const DefaultMatchWindow = 60 * time.Second

// MatchOptions selects the matching strategy for a batch.
type MatchOptions struct {
	// Kind is the producer of the incoming batch. Public form batches match
	// by phone only when createdAt also falls inside Window.
	Kind convert.SourceKind

	// Window overrides DefaultMatchWindow when positive.
	Window time.Duration

	// PreferIncomingID lets an updated record take the incoming id when
	// BetterID ranks it higher than the existing one.
	PreferIncomingID bool

	// Now stamps ids generated for incoming records that lack one.
	Now time.Time
}

func (o MatchOptions) window() time.Duration {
	if o.Window > 0 {
		return o.Window
	}
	return DefaultMatchWindow
}

// MergeResult is the merged collection plus per-outcome counts. Rejected
// records are also counted in Skipped.
type MergeResult struct {
	Merged     []models.CustomerRecord
	Added      int
	Updated    int
	Skipped    int
	Rejected   int
	AddedIDs   []string
	UpdatedIDs []string
}

// Merge reconciles incoming into existing without modifying either slice.
//
// Each incoming record is matched, in order, by identical id, then by
// digits-only phone (for public form batches: same phone with createdAt
// inside the window). An existing record absorbs at most one incoming
// record per batch; later incoming records that would match it again are
// skipped. A matched incoming record replaces the existing fields only when
// it is strictly newer; the existing id and createdAt are kept, as are
// fields the incoming source has no column for. A public form submission
// that matches is the same request seen again and is always skipped.
// Unmatched records are appended.
func Merge(existing, incoming []models.CustomerRecord, opts MatchOptions) MergeResult {
	merged := make([]models.CustomerRecord, len(existing), len(existing)+len(incoming))
	for i := range existing {
		merged[i] = existing[i].Clone()
	}

	matcher := NewPhoneMatcher(merged)
	claimed := make(map[int]bool)
	result := MergeResult{}

	for _, in := range incoming {
		if err := convert.Validate(in); err != nil {
			result.Rejected++
			result.Skipped++
			continue
		}

		idx, found, blocked := findCandidate(merged, matcher, claimed, in, opts)
		if blocked {
			result.Skipped++
			continue
		}

		if !found {
			rec := in.Clone()
			if rec.ID == "" {
				now := opts.Now
				if now.IsZero() {
					now = time.Now()
				}
				rec.ID = convert.NewID(now)
			}
			merged = append(merged, rec)
			pos := len(merged) - 1
			matcher.Add(pos, rec)
			claimed[pos] = true
			result.Added++
			result.AddedIDs = append(result.AddedIDs, rec.ID)
			continue
		}

		claimed[idx] = true
		current := merged[idx]
		if opts.Kind == convert.KindPublicForm || !in.RecencyTime().After(current.RecencyTime()) {
			result.Skipped++
			continue
		}

		merged[idx] = replace(current, in, opts)
		result.Updated++
		result.UpdatedIDs = append(result.UpdatedIDs, merged[idx].ID)
	}

	result.Merged = merged
	return result
}

// findCandidate returns the matching position. blocked means the only
// candidates were already claimed earlier in the batch.
func findCandidate(records []models.CustomerRecord, m *PhoneMatcher, claimed map[int]bool, in models.CustomerRecord, opts MatchOptions) (idx int, found, blocked bool) {
	if i, ok := m.FindByID(in.ID); ok {
		if claimed[i] {
			return 0, false, true
		}
		return i, true, false
	}

	sawClaimed := false
	for _, i := range m.FindByPhone(in.Phone) {
		if opts.Kind == convert.KindPublicForm && !withinWindow(records[i], in, opts.window()) {
			continue
		}
		if claimed[i] {
			sawClaimed = true
			continue
		}
		return i, true, false
	}

	return 0, false, sawClaimed
}

func withinWindow(a, b models.CustomerRecord, window time.Duration) bool {
	ta, tb := a.CreatedTime(), b.CreatedTime()
	if ta.IsZero() || tb.IsZero() {
		return false
	}
	d := ta.Sub(tb)
	if d < 0 {
		d = -d
	}
	return d < window
}

// uncarried copies fields a source kind may not map. Fields with no entry
// here are always carried.
var uncarried = []struct {
	field string
	keep  func(next *models.CustomerRecord, current models.CustomerRecord)
}{
	{"email", func(n *models.CustomerRecord, c models.CustomerRecord) { n.Email = c.Email }},
	{"city", func(n *models.CustomerRecord, c models.CustomerRecord) { n.City = c.City }},
	{"state", func(n *models.CustomerRecord, c models.CustomerRecord) { n.State = c.State }},
	{"zip", func(n *models.CustomerRecord, c models.CustomerRecord) { n.Zip = c.Zip }},
	{"notes", func(n *models.CustomerRecord, c models.CustomerRecord) { n.Notes = c.Notes }},
	{"productDetails", func(n *models.CustomerRecord, c models.CustomerRecord) { n.ProductDetails = c.ProductDetails }},
	{"budget", func(n *models.CustomerRecord, c models.CustomerRecord) { n.Budget = c.Budget }},
	{"preferredDate", func(n *models.CustomerRecord, c models.CustomerRecord) { n.PreferredDate = c.PreferredDate }},
	{"meetingDate", func(n *models.CustomerRecord, c models.CustomerRecord) { n.MeetingDate = c.MeetingDate }},
	{"referralSource", func(n *models.CustomerRecord, c models.CustomerRecord) { n.ReferralSource = c.ReferralSource }},
	{"contacted", func(n *models.CustomerRecord, c models.CustomerRecord) { n.Contacted = c.Contacted }},
	{"contactedDate", func(n *models.CustomerRecord, c models.CustomerRecord) { n.ContactedDate = c.ContactedDate }},
	{"source", func(n *models.CustomerRecord, c models.CustomerRecord) { n.Source = c.Source }},
}

// replace takes every field the source carries from in, except the immutable
// createdAt and, unless preferred, the id. Unknown fields only the old copy
// had survive.
func replace(current, in models.CustomerRecord, opts MatchOptions) models.CustomerRecord {
	next := in.Clone()

	next.ID = current.ID
	if opts.PreferIncomingID && in.ID != "" && BetterID(in.ID, current.ID) == in.ID {
		next.ID = in.ID
	}

	fields := convert.Fields(opts.Kind)
	for _, u := range uncarried {
		if !fields.Carries(u.field) {
			u.keep(&next, current)
		}
	}
	if current.CreatedAt != "" {
		next.CreatedAt = current.CreatedAt
	}

	for k, v := range current.Extra {
		if next.Extra == nil {
			next.Extra = make(map[string]json.RawMessage, len(current.Extra))
		}
		if _, ok := next.Extra[k]; !ok {
			next.Extra[k] = v
		}
	}

	return next
}
