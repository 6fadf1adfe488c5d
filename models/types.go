// ABOUTME: Data models for quote leads and public form submissions
// ABOUTME: Defines CustomerRecord, Submission, enumerations and timestamp helpers
package models

import (
	"encoding/json"
	"strings"
	"time"
)

type Status string

const (
	StatusInitial    Status = "initial"
	StatusQuoted     Status = "quoted"
	StatusScheduled  Status = "scheduled"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
	StatusFollowUp   Status = "follow-up"
)

// Statuses lists the canonical statuses in pipeline order.
var Statuses = []Status{StatusInitial, StatusQuoted, StatusScheduled, StatusInProgress, StatusCompleted, StatusFollowUp}

type Priority string

const (
	PriorityLow       Priority = "low"
	PriorityMedium    Priority = "medium"
	PriorityHigh      Priority = "high"
	PriorityEmergency Priority = "emergency"
)

// Rank orders priorities for display sorting; unknown values rank as medium.
func (p Priority) Rank() int {
	switch p {
	case PriorityEmergency:
		return 4
	case PriorityHigh:
		return 3
	case PriorityLow:
		return 1
	default:
		return 2
	}
}

type ServiceType string

const (
	ServiceNewDoors          ServiceType = "new-doors"
	ServiceNewWindows        ServiceType = "new-windows"
	ServiceDoorReplacement   ServiceType = "door-replacement"
	ServiceWindowReplacement ServiceType = "window-replacement"
	ServiceDoorParts         ServiceType = "door-parts"
	ServiceWindowParts       ServiceType = "window-parts"
	ServiceRepair            ServiceType = "repair"
	ServiceConsultation      ServiceType = "consultation"
)

type Budget string

const (
	BudgetUnder500   Budget = "under-500"
	Budget500To1000  Budget = "500-1000"
	Budget1000To2500 Budget = "1000-2500"
	Budget2500To5000 Budget = "2500-5000"
	Budget5000To10k  Budget = "5000-10000"
	BudgetOver10k    Budget = "over-10000"
	BudgetUnsure     Budget = "unsure"
)

type ReferralSource string

const (
	ReferralGoogle      ReferralSource = "google"
	ReferralReferral    ReferralSource = "referral"
	ReferralFacebook    ReferralSource = "facebook"
	ReferralNextdoor    ReferralSource = "nextdoor"
	ReferralFlyer       ReferralSource = "flyer"
	ReferralDriveBy     ReferralSource = "drive-by"
	ReferralYellowPages ReferralSource = "yellowpages"
	ReferralRepeat      ReferralSource = "repeat"
	ReferralOther       ReferralSource = "other"
)

// Urgency is collected by the public quote form instead of a priority.
type Urgency string

const (
	UrgencyFlexible  Urgency = "flexible"
	UrgencyMonth     Urgency = "month"
	UrgencyWeeks     Urgency = "weeks"
	UrgencyUrgent    Urgency = "urgent"
	UrgencyEmergency Urgency = "emergency"
)

// Provenance tags. Advisory only; never consulted when merging.
const (
	SourceQRCodeForm   = "QR Code Form"
	SourceSheetsImport = "Google Sheets Import"
	SourceCSVImport    = "CSV Import"
	SourceAdminForm    = "Admin Form"
	SourceTestData     = "Test Data"
)

// CustomerRecord is the canonical lead shared by every store and importer.
// Fields the current version does not know about are kept in Extra so a
// load/save cycle never drops them.
type CustomerRecord struct {
	ID             string         `json:"id"`
	FirstName      string         `json:"firstName"`
	LastName       string         `json:"lastName"`
	Phone          string         `json:"phone"`
	Email          string         `json:"email"`
	Address        string         `json:"address"`
	City           string         `json:"city"`
	State          string         `json:"state"`
	Zip            string         `json:"zip"`
	ServiceType    ServiceType    `json:"serviceType"`
	Priority       Priority       `json:"priority"`
	Status         Status         `json:"status"`
	Notes          string         `json:"notes"`
	ProductDetails string         `json:"productDetails"`
	Budget         Budget         `json:"budget"`
	PreferredDate  string         `json:"preferredDate"`
	MeetingDate    string         `json:"meetingDate"`
	ReferralSource ReferralSource `json:"referralSource"`
	CreatedAt      string         `json:"createdAt"`
	UpdatedAt      string         `json:"updatedAt"`
	Contacted      bool           `json:"contacted"`
	ContactedDate  string         `json:"contactedDate"`
	Source         string         `json:"source"`

	Extra map[string]json.RawMessage `json:"-"`
}

// FullName joins first and last name.
func (r CustomerRecord) FullName() string {
	return strings.TrimSpace(r.FirstName + " " + r.LastName)
}

// CreatedTime parses CreatedAt; the zero time is returned when unparsable.
func (r CustomerRecord) CreatedTime() time.Time {
	return ParseTime(r.CreatedAt)
}

// UpdatedTime parses UpdatedAt; the zero time is returned when unparsable.
func (r CustomerRecord) UpdatedTime() time.Time {
	return ParseTime(r.UpdatedAt)
}

// RecencyTime is UpdatedAt, falling back to CreatedAt.
func (r CustomerRecord) RecencyTime() time.Time {
	if t := r.UpdatedTime(); !t.IsZero() {
		return t
	}
	return r.CreatedTime()
}

// Clone returns a copy that shares no mutable state with r.
func (r CustomerRecord) Clone() CustomerRecord {
	if r.Extra != nil {
		extra := make(map[string]json.RawMessage, len(r.Extra))
		for k, v := range r.Extra {
			extra[k] = append(json.RawMessage(nil), v...)
		}
		r.Extra = extra
	}
	return r
}

type customerAlias CustomerRecord

// MarshalJSON writes the known fields and re-emits preserved unknown ones.
func (r CustomerRecord) MarshalJSON() ([]byte, error) {
	known, err := json.Marshal(customerAlias(r))
	if err != nil {
		return nil, err
	}
	if len(r.Extra) == 0 {
		return known, nil
	}

	merged := make(map[string]json.RawMessage, len(r.Extra)+24)
	for k, v := range r.Extra {
		merged[k] = v
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(known, &fields); err != nil {
		return nil, err
	}
	for k, v := range fields {
		merged[k] = v
	}
	return json.Marshal(merged)
}

// UnmarshalJSON reads the known fields and stashes everything else in Extra.
func (r *CustomerRecord) UnmarshalJSON(data []byte) error {
	var alias customerAlias
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	for _, k := range recordFields {
		delete(fields, k)
	}

	*r = CustomerRecord(alias)
	if len(fields) > 0 {
		r.Extra = fields
	}
	return nil
}

var recordFields = []string{
	"id", "firstName", "lastName", "phone", "email", "address", "city", "state", "zip",
	"serviceType", "priority", "status", "notes", "productDetails", "budget", "preferredDate",
	"meetingDate", "referralSource", "createdAt", "updatedAt", "contacted", "contactedDate", "source",
}

// Submission is a raw public quote form entry waiting for admin import.
type Submission struct {
	ID                string `json:"id,omitempty"`
	FirstName         string `json:"firstName"`
	LastName          string `json:"lastName"`
	Phone             string `json:"phone"`
	Email             string `json:"email,omitempty"`
	Address           string `json:"address,omitempty"`
	ServiceType       string `json:"serviceType,omitempty"`
	Urgency           string `json:"urgency,omitempty"`
	Description       string `json:"description,omitempty"`
	Budget            string `json:"budget,omitempty"`
	PreferredDate     string `json:"preferredDate,omitempty"`
	ContactPreference string `json:"contactPreference,omitempty"`
	ContactTime       string `json:"contactTime,omitempty"`
	HeardAbout        string `json:"heardAbout,omitempty"`
	AdditionalNotes   string `json:"additionalNotes,omitempty"`
	Timestamp         string `json:"timestamp"`
}

// Fields flattens the submission into the raw field map consumed by the converter.
func (s Submission) Fields() map[string]string {
	return map[string]string{
		"id":                s.ID,
		"firstName":         s.FirstName,
		"lastName":          s.LastName,
		"phone":             s.Phone,
		"email":             s.Email,
		"address":           s.Address,
		"serviceType":       s.ServiceType,
		"urgency":           s.Urgency,
		"description":       s.Description,
		"budget":            s.Budget,
		"preferredDate":     s.PreferredDate,
		"contactPreference": s.ContactPreference,
		"contactTime":       s.ContactTime,
		"heardAbout":        s.HeardAbout,
		"additionalNotes":   s.AdditionalNotes,
		"timestamp":         s.Timestamp,
	}
}

// Key identifies a queued submission: its id, or timestamp and phone for
// submissions queued before ids were assigned.
func (s Submission) Key() string {
	if s.ID != "" {
		return s.ID
	}
	return s.Timestamp + "|" + s.Phone
}

// TimeLayout is the layout used for every timestamp this package writes.
const TimeLayout = time.RFC3339Nano

// FormatTime renders t in TimeLayout (UTC).
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"1/2/2006, 3:04:05 PM",
	"1/2/2006 3:04:05 PM",
	"1/2/2006 15:04:05",
	"1/2/2006",
}

// ParseTime parses the timestamp shapes produced by the forms, the remote
// spreadsheet and CSV exports. It returns the zero time when nothing matches.
func ParseTime(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
