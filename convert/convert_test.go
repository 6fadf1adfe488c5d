// ABOUTME: Tests for record conversion across source kinds
// ABOUTME: Covers id/timestamp population, public form notes and remote row round trips
package convert

import (
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/harperreed/quotedesk/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func TestToCustomerRecordPopulatesIDAndTimestamps(t *testing.T) {
	rec := ToCustomerRecord(map[string]string{"firstName": "Ann", "phone": "615-555-1234"}, KindLocalForm, fixedNow)

	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, models.FormatTime(fixedNow), rec.CreatedAt)
	assert.Equal(t, models.FormatTime(fixedNow), rec.UpdatedAt)
	assert.Equal(t, "6155551234", rec.Phone)
	assert.Equal(t, models.StatusInitial, rec.Status)
	assert.Equal(t, models.PriorityMedium, rec.Priority)
	assert.Equal(t, models.SourceAdminForm, rec.Source)
}

func TestToCustomerRecordKeepsProvidedCreatedAt(t *testing.T) {
	rec := ToCustomerRecord(map[string]string{
		"id":        "abc",
		"phone":     "6155551234",
		"createdAt": "2024-01-02T03:04:05Z",
		"updatedAt": "2024-01-03T00:00:00Z",
	}, KindLocalForm, fixedNow)

	assert.Equal(t, "abc", rec.ID)
	assert.Equal(t, "2024-01-02T03:04:05Z", rec.CreatedAt)
	assert.Equal(t, models.FormatTime(fixedNow), rec.UpdatedAt)
}

func TestToCustomerRecordLocalFormNormalizes(t *testing.T) {
	rec := ToCustomerRecord(map[string]string{
		"firstName":      "Ann",
		"phone":          "6155551234",
		"priority":       "4",
		"status":         "Work Scheduled",
		"serviceType":    "Window Replacement",
		"budget":         "$500 - $1,000",
		"referralSource": "Nextdoor",
		"contacted":      "true",
	}, KindLocalForm, fixedNow)

	assert.Equal(t, models.PriorityHigh, rec.Priority)
	assert.Equal(t, models.StatusScheduled, rec.Status)
	assert.Equal(t, models.ServiceWindowReplacement, rec.ServiceType)
	assert.Equal(t, models.Budget500To1000, rec.Budget)
	assert.Equal(t, models.ReferralNextdoor, rec.ReferralSource)
	assert.True(t, rec.Contacted)
}

func TestToCustomerRecordDecomposesAddress(t *testing.T) {
	rec := ToCustomerRecord(map[string]string{
		"phone":   "6155551234",
		"address": "123 Main St, Nashville, TN 37201",
	}, KindLocalForm, fixedNow)

	assert.Equal(t, "123 Main St", rec.Address)
	assert.Equal(t, "Nashville", rec.City)
	assert.Equal(t, "TN", rec.State)
	assert.Equal(t, "37201", rec.Zip)
}

func TestToCustomerRecordKeepsStructuredAddress(t *testing.T) {
	rec := ToCustomerRecord(map[string]string{
		"phone":   "6155551234",
		"address": "123 Main St, Nashville, TN 37201",
		"city":    "Brentwood",
	}, KindLocalForm, fixedNow)

	assert.Equal(t, "123 Main St, Nashville, TN 37201", rec.Address)
	assert.Equal(t, "Brentwood", rec.City)
}

func TestFromSubmission(t *testing.T) {
	sub := models.Submission{
		FirstName:         "Bo",
		LastName:          "Diaz",
		Phone:             "(615) 555-0000",
		ServiceType:       "new-doors",
		Urgency:           "urgent",
		Description:       "Front door sticks",
		ContactPreference: "text",
		HeardAbout:        "google",
		Timestamp:         "2024-05-30T10:00:00Z",
	}

	rec := FromSubmission(sub, fixedNow)

	assert.Equal(t, models.PriorityHigh, rec.Priority)
	assert.Equal(t, models.StatusInitial, rec.Status)
	assert.Equal(t, models.SourceQRCodeForm, rec.Source)
	assert.Equal(t, "Front door sticks", rec.ProductDetails)
	assert.Equal(t, models.ReferralGoogle, rec.ReferralSource)
	assert.Equal(t, "2024-05-30T10:00:00Z", rec.CreatedAt)
	assert.Equal(t, "6155550000", rec.Phone)
	assert.Equal(t,
		"Description: Front door sticks | Urgency: As soon as possible | Contact Preference: Text Message | Referral: Google Search",
		rec.Notes)
}

func TestBuildSubmissionNotesOrderAndOmission(t *testing.T) {
	notes := BuildSubmissionNotes(models.Submission{
		AdditionalNotes: "gate code 1234",
		ContactTime:     "evening",
		Urgency:         "flexible",
	})

	assert.Equal(t, "Urgency: Flexible with timing | Best Contact Time: Evening (5pm-8pm) | Additional Notes: gate code 1234", notes)
	assert.Empty(t, BuildSubmissionNotes(models.Submission{}))
}

func TestNewID(t *testing.T) {
	a := NewID(fixedNow)
	b := NewID(fixedNow)

	assert.NotEqual(t, a, b)
	assert.True(t, strings.HasPrefix(a, strconv.FormatInt(fixedNow.UnixMilli(), 36)))
	assert.Len(t, a, len(b))
	for _, r := range a {
		assert.True(t, strings.ContainsRune(idAlphabet, r), "unexpected rune %q", r)
	}
}

func TestValidate(t *testing.T) {
	assert.ErrorIs(t, Validate(models.CustomerRecord{}), ErrMalformedRecord)
	assert.NoError(t, Validate(models.CustomerRecord{FirstName: "Ann"}))
	assert.NoError(t, Validate(models.CustomerRecord{Phone: "615"}))
}

func TestRemoteRowRoundTrip(t *testing.T) {
	original := models.CustomerRecord{
		ID:          "X1",
		FirstName:   "Ann",
		LastName:    "Lee",
		Phone:       "6155551234",
		Email:       "ann@example.com",
		Address:     "123 Main St",
		City:        "Nashville",
		State:       "TN",
		Zip:         "37201",
		ServiceType: models.ServiceDoorParts,
		Priority:    models.PriorityEmergency,
		Status:      models.StatusFollowUp,
		Budget:      models.BudgetOver10k,
		CreatedAt:   "2024-01-02T03:04:05Z",
	}

	row := ToRemoteRow(original)
	assert.Equal(t, "Door Parts", row.Service)
	assert.Equal(t, "Follow-up Needed", row.Status)
	assert.Equal(t, "emergency", row.Priority)

	back := FromRemoteRow(RowFromValues(row.Values()), fixedNow)

	assert.Equal(t, original.ID, back.ID)
	assert.Equal(t, original.FirstName, back.FirstName)
	assert.Equal(t, original.LastName, back.LastName)
	assert.Equal(t, original.Phone, back.Phone)
	assert.Equal(t, original.Priority, back.Priority)
	assert.Equal(t, original.Status, back.Status)
	assert.Equal(t, original.ServiceType, back.ServiceType)
	assert.Equal(t, original.Budget, back.Budget)
	assert.Equal(t, original.CreatedAt, back.CreatedAt)
	assert.Equal(t, models.SourceSheetsImport, back.Source)
}

func TestRemoteRowNumericCells(t *testing.T) {
	var row RemoteRow
	require.NoError(t, row.UnmarshalJSON([]byte(`{"id":1700000000000,"firstName":"Ann","phone":6155551234,"priority":5,"zip":37201}`)))

	assert.Equal(t, "1700000000000", row.ID)
	assert.Equal(t, "6155551234", row.Phone)
	assert.Equal(t, "37201", row.Zip)

	rec := FromRemoteRow(row, fixedNow)
	assert.Equal(t, models.PriorityEmergency, rec.Priority)
}

func TestRemoteRowParams(t *testing.T) {
	params := ToRemoteRow(models.CustomerRecord{ID: "X1", FirstName: "Ann", ServiceType: models.ServiceRepair}).Params()

	assert.Equal(t, "X1", params.Get("id"))
	assert.Equal(t, "Ann", params.Get("firstName"))
	assert.Equal(t, "Repair Services", params.Get("service"))
	assert.Len(t, params, len(RemoteColumns))
}

func TestRowFromValuesShortRow(t *testing.T) {
	row := RowFromValues([]string{"id1", "Ann"})
	assert.Equal(t, "id1", row.ID)
	assert.Equal(t, "Ann", row.FirstName)
	assert.Empty(t, row.PreferredDate)
}
