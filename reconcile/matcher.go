// ABOUTME: Lead lookup index used during reconciliation
// ABOUTME: Finds existing leads by id or digits-only phone to prevent duplicates
package reconcile

import (
	"github.com/harperreed/quotedesk/models"
	"github.com/harperreed/quotedesk/normalize"
)

// PhoneMatcher indexes a collection by id and normalized phone. It stores
// positions, so the caller owns the slice it was built from.
type PhoneMatcher struct {
	byID    map[string]int
	byPhone map[string][]int
}

// NewPhoneMatcher creates a matcher from existing records.
func NewPhoneMatcher(records []models.CustomerRecord) *PhoneMatcher {
	m := &PhoneMatcher{
		byID:    make(map[string]int, len(records)),
		byPhone: make(map[string][]int, len(records)),
	}
	for i := range records {
		m.Add(i, records[i])
	}
	return m
}

// Add indexes rec at position i. The first record seen for an id wins.
func (m *PhoneMatcher) Add(i int, rec models.CustomerRecord) {
	if rec.ID != "" {
		if _, exists := m.byID[rec.ID]; !exists {
			m.byID[rec.ID] = i
		}
	}
	if phone := normalize.Phone(rec.Phone); phone != "" {
		m.byPhone[phone] = append(m.byPhone[phone], i)
	}
}

// FindByID returns the position of the record with id.
func (m *PhoneMatcher) FindByID(id string) (int, bool) {
	if id == "" {
		return 0, false
	}
	i, ok := m.byID[id]
	return i, ok
}

// FindByPhone returns positions of records whose phone has the same digits,
// in collection order.
func (m *PhoneMatcher) FindByPhone(phone string) []int {
	normalized := normalize.Phone(phone)
	if normalized == "" {
		return nil
	}
	return m.byPhone[normalized]
}
