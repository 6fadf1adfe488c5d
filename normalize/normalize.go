// ABOUTME: Field normalization for heterogeneous lead sources
// ABOUTME: Maps status/priority/urgency vocabularies, phones and addresses onto canonical values
package normalize

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/harperreed/quotedesk/models"
)

var statusSynonyms = map[string]models.Status{
	"initial":          models.StatusInitial,
	"initial contact":  models.StatusInitial,
	"new":              models.StatusInitial,
	"new lead":         models.StatusInitial,
	"lead":             models.StatusInitial,
	"quoted":           models.StatusQuoted,
	"quote provided":   models.StatusQuoted,
	"quote sent":       models.StatusQuoted,
	"scheduled":        models.StatusScheduled,
	"work scheduled":   models.StatusScheduled,
	"in-progress":      models.StatusInProgress,
	"in progress":      models.StatusInProgress,
	"inprogress":       models.StatusInProgress,
	"working":          models.StatusInProgress,
	"completed":        models.StatusCompleted,
	"complete":         models.StatusCompleted,
	"done":             models.StatusCompleted,
	"closed":           models.StatusCompleted,
	"follow-up":        models.StatusFollowUp,
	"follow up":        models.StatusFollowUp,
	"followup":         models.StatusFollowUp,
	"follow-up needed": models.StatusFollowUp,
	"follow up needed": models.StatusFollowUp,
}

// Status maps any known status spelling to the canonical set.
// Empty or unrecognized input becomes StatusInitial.
func Status(raw string) models.Status {
	key := strings.ToLower(strings.TrimSpace(raw))
	if s, ok := statusSynonyms[key]; ok {
		return s
	}
	return models.StatusInitial
}

var prioritySynonyms = map[string]models.Priority{
	"low":       models.PriorityLow,
	"medium":    models.PriorityMedium,
	"normal":    models.PriorityMedium,
	"high":      models.PriorityHigh,
	"emergency": models.PriorityEmergency,
	"urgent":    models.PriorityEmergency,
}

// Priority maps numeric (1-5) or textual priorities to the canonical set.
// Levels 1 and 2 both become low; the remote sheet already relies on that.
func Priority(raw string) models.Priority {
	trimmed := strings.TrimSpace(raw)
	if n, err := strconv.Atoi(trimmed); err == nil {
		switch n {
		case 1, 2:
			return models.PriorityLow
		case 3:
			return models.PriorityMedium
		case 4:
			return models.PriorityHigh
		case 5:
			return models.PriorityEmergency
		default:
			return models.PriorityMedium
		}
	}
	if p, ok := prioritySynonyms[strings.ToLower(trimmed)]; ok {
		return p
	}
	return models.PriorityMedium
}

var urgencyPriorities = map[models.Urgency]models.Priority{
	models.UrgencyFlexible:  models.PriorityLow,
	models.UrgencyMonth:     models.PriorityLow,
	models.UrgencyWeeks:     models.PriorityMedium,
	models.UrgencyUrgent:    models.PriorityHigh,
	models.UrgencyEmergency: models.PriorityEmergency,
}

// UrgencyToPriority converts the public form's urgency answer.
func UrgencyToPriority(urgency string) models.Priority {
	key := models.Urgency(strings.ToLower(strings.TrimSpace(urgency)))
	if p, ok := urgencyPriorities[key]; ok {
		return p
	}
	return models.PriorityMedium
}

// Address is a best-effort decomposition of a free-text address.
type Address struct {
	Street string
	City   string
	State  string
	Zip    string
}

var stateZipPattern = regexp.MustCompile(`^([A-Z]{2})\s+(\d{5}(?:-\d{4})?)$`)

// ParseAddress splits "street, city, ST 12345" into parts. It is heuristic:
// when the trailing segment is not STATE ZIP the whole input is the street.
func ParseAddress(full string) Address {
	full = strings.TrimSpace(full)
	if full == "" {
		return Address{}
	}

	parts := strings.Split(full, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	if len(parts) >= 3 {
		m := stateZipPattern.FindStringSubmatch(parts[len(parts)-1])
		if m != nil {
			return Address{
				Street: strings.Join(parts[:len(parts)-2], ", "),
				City:   parts[len(parts)-2],
				State:  m[1],
				Zip:    m[2],
			}
		}
	}

	return Address{Street: full}
}

// Phone strips everything but digits.
func Phone(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// notSpecified is the export placeholder for an empty enumerated field.
const notSpecified = "not specified"

// Public form labels differ from the admin ones for a few service types.
var serviceTypeAliases = map[string]models.ServiceType{
	"new door installation":       models.ServiceNewDoors,
	"new window installation":     models.ServiceNewWindows,
	"replace existing door":       models.ServiceDoorReplacement,
	"replace existing windows":    models.ServiceWindowReplacement,
	"door hardware/parts":         models.ServiceDoorParts,
	"window hardware/parts":       models.ServiceWindowParts,
	"repair existing door/window": models.ServiceRepair,
	"free consultation":           models.ServiceConsultation,
}

// ServiceType accepts a code or any known label; unknown text is kept as-is.
func ServiceType(raw string) models.ServiceType {
	trimmed := strings.TrimSpace(raw)
	key := strings.ToLower(trimmed)
	if key == notSpecified {
		return ""
	}
	if st, ok := serviceTypeAliases[key]; ok {
		return st
	}
	if code, ok := reverse(models.ServiceTypeLabels(), key); ok {
		return code
	}
	return models.ServiceType(trimmed)
}

// Budget accepts a bracket code or its label; unknown text is kept as-is.
func Budget(raw string) models.Budget {
	trimmed := strings.TrimSpace(raw)
	key := strings.ToLower(trimmed)
	if key == notSpecified {
		return ""
	}
	if code, ok := reverse(models.BudgetLabels(), key); ok {
		return code
	}
	return models.Budget(trimmed)
}

var referralAliases = map[string]models.ReferralSource{
	"friend/family referral": models.ReferralReferral,
}

// Referral accepts a source code or its label; unknown text is kept as-is.
func Referral(raw string) models.ReferralSource {
	trimmed := strings.TrimSpace(raw)
	key := strings.ToLower(trimmed)
	if key == notSpecified {
		return ""
	}
	if rs, ok := referralAliases[key]; ok {
		return rs
	}
	if code, ok := reverse(models.ReferralLabels(), key); ok {
		return code
	}
	return models.ReferralSource(trimmed)
}

// reverse finds the code whose code or label equals key (lower-cased).
func reverse[K ~string](table map[K]string, key string) (K, bool) {
	if key == "" {
		return "", false
	}
	for code, label := range table {
		if strings.ToLower(string(code)) == key || strings.ToLower(label) == key {
			return code, true
		}
	}
	return "", false
}
