// ABOUTME: Tests for CSV and XLSX interchange
// ABOUTME: Verifies header aliases, per-row errors and label export round trips
package convert

import (
	"bytes"
	"strings"
	"testing"

	"github.com/harperreed/quotedesk/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadCSVHeaderAliases(t *testing.T) {
	input := strings.Join([]string{
		"First Name,last_name,Phone Number,Priority,Status,Service Type",
		"Ann,Lee,(615) 555-1234,5,Quote Provided,New Doors",
		"Bo,Diaz,615.555.0000,low,in progress,gutters",
	}, "\n")

	result, err := ReadCSV(strings.NewReader(input), fixedNow)
	require.NoError(t, err)
	require.Len(t, result.Records, 2)
	assert.Empty(t, result.Errors)

	ann := result.Records[0]
	assert.Equal(t, "Ann", ann.FirstName)
	assert.Equal(t, "Lee", ann.LastName)
	assert.Equal(t, "6155551234", ann.Phone)
	assert.Equal(t, models.PriorityEmergency, ann.Priority)
	assert.Equal(t, models.StatusQuoted, ann.Status)
	assert.Equal(t, models.ServiceNewDoors, ann.ServiceType)
	assert.Equal(t, models.SourceCSVImport, ann.Source)

	bo := result.Records[1]
	assert.Equal(t, models.PriorityLow, bo.Priority)
	assert.Equal(t, models.StatusInProgress, bo.Status)
	assert.Equal(t, models.ServiceType("gutters"), bo.ServiceType)
}

func TestReadCSVCamelCaseHeaders(t *testing.T) {
	input := "firstName,lastName,phone\nAnn,Lee,6155551234\n"

	result, err := ReadCSV(strings.NewReader(input), fixedNow)
	require.NoError(t, err)
	require.Len(t, result.Records, 1)
	assert.Equal(t, "Lee", result.Records[0].LastName)
}

func TestReadCSVRowErrors(t *testing.T) {
	input := strings.Join([]string{
		"First Name,Phone,Email",
		",,nobody@example.com",
		"",
		"Ann,6155551234,ann@example.com,extra",
		"Bo,6155550000,bo@example.com",
	}, "\n")

	result, err := ReadCSV(strings.NewReader(input), fixedNow)
	require.NoError(t, err)

	require.Len(t, result.Records, 1)
	assert.Equal(t, "Bo", result.Records[0].FirstName)
	require.Len(t, result.Errors, 2)
	assert.Equal(t, 2, result.Errors[0].Line)
	assert.ErrorIs(t, result.Errors[0], ErrMalformedRecord)
	assert.ErrorIs(t, result.Errors[1], ErrMalformedRecord)
}

func TestReadCSVUnrecognizedHeader(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("foo,bar\n1,2\n"), fixedNow)
	assert.ErrorIs(t, err, ErrNoRecognizedColumns)
}

func TestReadCSVEmpty(t *testing.T) {
	result, err := ReadCSV(strings.NewReader(""), fixedNow)
	require.NoError(t, err)
	assert.Empty(t, result.Records)
}

func TestWriteCSVUsesLabels(t *testing.T) {
	records := []models.CustomerRecord{{
		ID:             "a1",
		FirstName:      "Ann",
		Phone:          "6155551234",
		ServiceType:    models.ServiceConsultation,
		Status:         models.StatusScheduled,
		Priority:       models.PriorityHigh,
		Budget:         models.BudgetUnder500,
		ReferralSource: models.ReferralRepeat,
		Notes:          `said "call after 5"`,
	}}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, records))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "ID,First Name,Last Name,Phone"))
	assert.Contains(t, out, "Consultation")
	assert.Contains(t, out, "Work Scheduled")
	assert.Contains(t, out, "Under $500")
	assert.Contains(t, out, "Repeat Customer")
	assert.Contains(t, out, `"said ""call after 5"""`)
}

func TestCSVExportReimports(t *testing.T) {
	original := models.CustomerRecord{
		ID:          "a1",
		FirstName:   "Ann",
		LastName:    "Lee",
		Phone:       "6155551234",
		ServiceType: models.ServiceRepair,
		Status:      models.StatusCompleted,
		Priority:    models.PriorityLow,
		CreatedAt:   "2024-01-02T03:04:05Z",
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, []models.CustomerRecord{original}))

	result, err := ReadCSV(&buf, fixedNow)
	require.NoError(t, err)
	require.Len(t, result.Records, 1)

	back := result.Records[0]
	assert.Equal(t, original.ID, back.ID)
	assert.Equal(t, original.ServiceType, back.ServiceType)
	assert.Equal(t, original.Status, back.Status)
	assert.Equal(t, original.Priority, back.Priority)
	assert.Equal(t, original.CreatedAt, back.CreatedAt)
	assert.Empty(t, back.Budget)
	assert.Empty(t, back.ReferralSource)
}

func TestXLSXExportReimports(t *testing.T) {
	records := []models.CustomerRecord{
		{ID: "a1", FirstName: "Ann", Phone: "6155551234", Status: models.StatusQuoted, Priority: models.PriorityHigh},
		{ID: "b2", FirstName: "Bo", Phone: "6155550000", Status: models.StatusInitial, Priority: models.PriorityMedium},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, records))

	result, err := ReadXLSX(&buf, fixedNow)
	require.NoError(t, err)
	require.Len(t, result.Records, 2)
	assert.Equal(t, "a1", result.Records[0].ID)
	assert.Equal(t, models.StatusQuoted, result.Records[0].Status)
	assert.Equal(t, models.PriorityHigh, result.Records[0].Priority)
	assert.Equal(t, "Bo", result.Records[1].FirstName)
}
