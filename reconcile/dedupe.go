// ABOUTME: Destructive phone-based deduplication of the lead collection
// ABOUTME: Keeps the most recent copy per phone under the best available id
package reconcile

import (
	"github.com/harperreed/quotedesk/models"
	"github.com/harperreed/quotedesk/normalize"
)

// DedupeResult is the surviving collection and how many records were dropped.
type DedupeResult struct {
	Kept    []models.CustomerRecord
	Removed int
	Groups  int
}

// Dedupe collapses records sharing a digits-only phone. Within each group
// the most recently updated record supplies the fields, BetterID picks the
// id across the group, and the survivor takes the group's first position.
// Records without a phone are never grouped. The input is not modified.
func Dedupe(records []models.CustomerRecord) DedupeResult {
	groups := make(map[string][]int)
	var order []string
	for i, rec := range records {
		phone := normalize.Phone(rec.Phone)
		if phone == "" {
			continue
		}
		if _, seen := groups[phone]; !seen {
			order = append(order, phone)
		}
		groups[phone] = append(groups[phone], i)
	}

	replacement := make(map[int]models.CustomerRecord)
	remove := make(map[int]bool)
	result := DedupeResult{}

	for _, phone := range order {
		members := groups[phone]
		if len(members) < 2 {
			continue
		}
		result.Groups++

		newest := members[0]
		id := records[members[0]].ID
		for _, i := range members[1:] {
			if records[i].RecencyTime().After(records[newest].RecencyTime()) {
				newest = i
			}
			id = BetterID(id, records[i].ID)
		}

		survivor := records[newest].Clone()
		survivor.ID = id
		survivor.Phone = phone
		replacement[members[0]] = survivor

		for _, i := range members[1:] {
			remove[i] = true
		}
	}

	kept := make([]models.CustomerRecord, 0, len(records)-len(remove))
	for i, rec := range records {
		if remove[i] {
			continue
		}
		if r, ok := replacement[i]; ok {
			kept = append(kept, r)
			continue
		}
		kept = append(kept, rec.Clone())
	}

	result.Kept = kept
	result.Removed = len(remove)
	return result
}

// BetterID picks the canonical id of two. Ids containing letters come from
// the timestamp+random generator and beat all-digit timestamp ids; within
// the same shape the shorter wins, and a tie keeps a.
func BetterID(a, b string) string {
	if a == "" {
		return b
	}
	if b == "" {
		return a
	}
	aAlpha, bAlpha := hasLetter(a), hasLetter(b)
	if aAlpha != bAlpha {
		if aAlpha {
			return a
		}
		return b
	}
	if len(b) < len(a) {
		return b
	}
	return a
}

func hasLetter(s string) bool {
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			return true
		}
	}
	return false
}
