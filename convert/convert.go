// ABOUTME: Builds canonical customer records from any supported source shape
// ABOUTME: Applies the per-kind field table, then id, timestamp, notes and address post-steps
package convert

import (
	"errors"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	"github.com/harperreed/quotedesk/models"
	"github.com/harperreed/quotedesk/normalize"
)

// ErrMalformedRecord marks a record with neither a phone nor a first name.
var ErrMalformedRecord = errors.New("malformed record: phone and first name are both empty")

// Validate rejects records that can never be matched or contacted.
func Validate(rec models.CustomerRecord) error {
	if normalize.Phone(rec.Phone) == "" && strings.TrimSpace(rec.FirstName) == "" {
		return ErrMalformedRecord
	}
	return nil
}

// ToCustomerRecord converts a raw field map produced by kind into a canonical
// record. It never fails: unknown fields are ignored and unrecognized values
// fall back to the normalizer defaults.
func ToCustomerRecord(raw map[string]string, kind SourceKind, now time.Time) models.CustomerRecord {
	folded := make(map[string]string, len(raw))
	for k, v := range raw {
		folded[fieldKey(k)] = strings.TrimSpace(v)
	}

	var rec models.CustomerRecord
	for _, m := range Fields(kind) {
		if v, ok := m.lookup(folded); ok {
			m.set(&rec, v)
		}
	}

	// Always canonical, even when the source omitted them.
	rec.Status = normalize.Status(string(rec.Status))
	rec.Priority = normalize.Priority(string(rec.Priority))

	if kind == KindPublicForm {
		sub := models.Submission{
			Description:       folded["description"],
			Urgency:           folded["urgency"],
			ContactPreference: folded["contactpreference"],
			ContactTime:       folded["contacttime"],
			HeardAbout:        folded["heardabout"],
			AdditionalNotes:   folded["additionalnotes"],
		}
		rec.Priority = normalize.UrgencyToPriority(sub.Urgency)
		rec.Status = models.StatusInitial
		rec.Notes = BuildSubmissionNotes(sub)
		rec.Source = models.SourceQRCodeForm
	}

	if rec.Address != "" && rec.City == "" && rec.State == "" && rec.Zip == "" {
		if addr := normalize.ParseAddress(rec.Address); addr.City != "" {
			rec.Address = addr.Street
			rec.City = addr.City
			rec.State = addr.State
			rec.Zip = addr.Zip
		}
	}

	if rec.ID == "" {
		rec.ID = NewID(now)
	}
	if t := models.ParseTime(rec.CreatedAt); !t.IsZero() {
		rec.CreatedAt = models.FormatTime(t)
	} else {
		rec.CreatedAt = models.FormatTime(now)
	}
	rec.UpdatedAt = models.FormatTime(now)
	if rec.Source == "" {
		rec.Source = kind.DefaultSource()
	}

	return rec
}

// FromSubmission converts a pending public form submission.
func FromSubmission(sub models.Submission, now time.Time) models.CustomerRecord {
	return ToCustomerRecord(sub.Fields(), KindPublicForm, now)
}

const idAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// NewID returns a base36 millisecond timestamp followed by a random base36
// suffix, e.g. "lq3x9k2a7hb2kd0qz".
func NewID(now time.Time) string {
	var b strings.Builder
	b.WriteString(strconv.FormatInt(now.UnixMilli(), 36))
	for i := 0; i < 9; i++ {
		b.WriteByte(idAlphabet[rand.IntN(len(idAlphabet))])
	}
	return b.String()
}

// BuildSubmissionNotes folds the optional public form answers into one notes
// string. Order is fixed and absent answers are left out entirely.
func BuildSubmissionNotes(sub models.Submission) string {
	var parts []string
	add := func(label, value string) {
		if strings.TrimSpace(value) != "" {
			parts = append(parts, label+": "+strings.TrimSpace(value))
		}
	}

	add("Description", sub.Description)
	if sub.Urgency != "" {
		add("Urgency", models.UrgencyLabel(models.Urgency(sub.Urgency)))
	}
	if sub.ContactPreference != "" {
		add("Contact Preference", models.ContactPreferenceLabel(sub.ContactPreference))
	}
	if sub.ContactTime != "" {
		add("Best Contact Time", models.ContactTimeLabel(sub.ContactTime))
	}
	if sub.HeardAbout != "" {
		add("Referral", models.ReferralLabel(normalize.Referral(sub.HeardAbout)))
	}
	add("Additional Notes", sub.AdditionalNotes)

	return strings.Join(parts, NotesSeparator)
}

// NotesSeparator joins structured sub-fields inside a notes string.
const NotesSeparator = " | "
