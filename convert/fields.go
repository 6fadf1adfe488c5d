// ABOUTME: Per-source field mapping tables for lead conversion
// ABOUTME: Maps each producer's field names onto canonical record fields with normalizers
package convert

import (
	"strconv"
	"strings"

	"github.com/harperreed/quotedesk/models"
	"github.com/harperreed/quotedesk/normalize"
)

// SourceKind identifies which producer generated a raw record.
type SourceKind int

const (
	KindLocalForm SourceKind = iota
	KindPublicForm
	KindRemoteRow
	KindCSVRow
)

func (k SourceKind) String() string {
	switch k {
	case KindLocalForm:
		return "local-form"
	case KindPublicForm:
		return "public-form"
	case KindRemoteRow:
		return "remote-row"
	case KindCSVRow:
		return "csv-row"
	default:
		return "unknown"
	}
}

// DefaultSource is the provenance tag stamped on records of this kind.
func (k SourceKind) DefaultSource() string {
	switch k {
	case KindPublicForm:
		return models.SourceQRCodeForm
	case KindRemoteRow:
		return models.SourceSheetsImport
	case KindCSVRow:
		return models.SourceCSVImport
	default:
		return models.SourceAdminForm
	}
}

// setter writes one already-trimmed raw value into a record.
type setter func(rec *models.CustomerRecord, value string)

// FieldMapping binds a canonical field to the names a producer uses for it.
type FieldMapping struct {
	Field   string
	Aliases []string
	set     setter
}

// FieldMap is the mapping table for one source kind.
type FieldMap []FieldMapping

// lookup returns the first non-empty value for any alias of m.
func (m FieldMapping) lookup(raw map[string]string) (string, bool) {
	for _, alias := range m.Aliases {
		if v, ok := raw[fieldKey(alias)]; ok && v != "" {
			return v, true
		}
	}
	return "", false
}

// fieldKey folds a field or header name so "First Name", "first_name"
// and "firstName" compare equal.
func fieldKey(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch r {
		case ' ', '_', '-', '.':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

var setters = map[string]setter{
	"id":        func(r *models.CustomerRecord, v string) { r.ID = v },
	"firstName": func(r *models.CustomerRecord, v string) { r.FirstName = v },
	"lastName":  func(r *models.CustomerRecord, v string) { r.LastName = v },
	"phone":     func(r *models.CustomerRecord, v string) { r.Phone = normalize.Phone(v) },
	"email":     func(r *models.CustomerRecord, v string) { r.Email = strings.ToLower(v) },
	"address":   func(r *models.CustomerRecord, v string) { r.Address = v },
	"city":      func(r *models.CustomerRecord, v string) { r.City = v },
	"state":     func(r *models.CustomerRecord, v string) { r.State = strings.ToUpper(v) },
	"zip":       func(r *models.CustomerRecord, v string) { r.Zip = v },
	"serviceType": func(r *models.CustomerRecord, v string) {
		r.ServiceType = normalize.ServiceType(v)
	},
	"priority":       func(r *models.CustomerRecord, v string) { r.Priority = normalize.Priority(v) },
	"status":         func(r *models.CustomerRecord, v string) { r.Status = normalize.Status(v) },
	"notes":          func(r *models.CustomerRecord, v string) { r.Notes = v },
	"productDetails": func(r *models.CustomerRecord, v string) { r.ProductDetails = v },
	"budget":         func(r *models.CustomerRecord, v string) { r.Budget = normalize.Budget(v) },
	"preferredDate":  func(r *models.CustomerRecord, v string) { r.PreferredDate = v },
	"meetingDate":    func(r *models.CustomerRecord, v string) { r.MeetingDate = v },
	"referralSource": func(r *models.CustomerRecord, v string) { r.ReferralSource = normalize.Referral(v) },
	"createdAt":      func(r *models.CustomerRecord, v string) { r.CreatedAt = v },
	"contacted": func(r *models.CustomerRecord, v string) {
		b, err := strconv.ParseBool(strings.ToLower(v))
		r.Contacted = err == nil && b || strings.EqualFold(v, "yes")
	},
	"contactedDate": func(r *models.CustomerRecord, v string) { r.ContactedDate = v },
	"source":        func(r *models.CustomerRecord, v string) { r.Source = v },
}

func mapping(field string, aliases ...string) FieldMapping {
	set, ok := setters[field]
	if !ok {
		panic("convert: no setter for field " + field)
	}
	return FieldMapping{Field: field, Aliases: append([]string{field}, aliases...), set: set}
}

var localFormFields = FieldMap{
	mapping("id"),
	mapping("firstName"),
	mapping("lastName"),
	mapping("phone"),
	mapping("email"),
	mapping("address"),
	mapping("city"),
	mapping("state"),
	mapping("zip"),
	mapping("serviceType"),
	mapping("priority"),
	mapping("status"),
	mapping("notes"),
	mapping("productDetails"),
	mapping("budget"),
	mapping("preferredDate"),
	mapping("meetingDate"),
	mapping("referralSource"),
	mapping("createdAt"),
	mapping("contacted"),
	mapping("contactedDate"),
	mapping("source"),
}

// The public form has no priority, status or notes. Urgency and the contact
// fields are folded into priority and notes after mapping.
var publicFormFields = FieldMap{
	mapping("id"),
	mapping("firstName"),
	mapping("lastName"),
	mapping("phone"),
	mapping("email"),
	mapping("address"),
	mapping("serviceType"),
	mapping("productDetails", "description"),
	mapping("budget"),
	mapping("preferredDate"),
	mapping("referralSource", "heardAbout"),
	mapping("createdAt", "timestamp"),
}

var remoteRowFields = FieldMap{
	mapping("id", "ID"),
	mapping("firstName", "First"),
	mapping("lastName", "Last"),
	mapping("phone"),
	mapping("email"),
	mapping("address"),
	mapping("city"),
	mapping("state"),
	mapping("zip"),
	mapping("serviceType", "service"),
	mapping("status"),
	mapping("priority"),
	mapping("notes"),
	mapping("createdAt", "dateAdded", "Date Added"),
	mapping("budget"),
	mapping("preferredDate"),
}

var csvRowFields = FieldMap{
	mapping("id", "ID", "Customer ID"),
	mapping("firstName", "First Name", "First", "first_name"),
	mapping("lastName", "Last Name", "Last", "last_name"),
	mapping("phone", "Phone Number", "Phone", "phone_number"),
	mapping("email", "Email Address", "E-mail"),
	mapping("address", "Street", "Street Address"),
	mapping("city"),
	mapping("state"),
	mapping("zip", "Zip Code", "Postal Code"),
	mapping("serviceType", "Service Type", "Service"),
	mapping("priority"),
	mapping("status"),
	mapping("notes"),
	mapping("productDetails", "Product Details", "Description"),
	mapping("budget"),
	mapping("preferredDate", "Preferred Date"),
	mapping("meetingDate", "Meeting Date"),
	mapping("referralSource", "Referral Source", "Heard About", "Referral"),
	mapping("createdAt", "Created Date", "Created", "Date Added"),
	mapping("contacted"),
	mapping("contactedDate", "Contacted Date"),
	mapping("source"),
}

// Fields returns the mapping table for kind.
func Fields(kind SourceKind) FieldMap {
	switch kind {
	case KindPublicForm:
		return publicFormFields
	case KindRemoteRow:
		return remoteRowFields
	case KindCSVRow:
		return csvRowFields
	default:
		return localFormFields
	}
}

// Carries reports whether the table maps a value onto field.
func (fm FieldMap) Carries(field string) bool {
	for _, m := range fm {
		if m.Field == field {
			return true
		}
	}
	return false
}

// Recognizes reports whether header names a field in this table.
func (fm FieldMap) Recognizes(header string) bool {
	key := fieldKey(header)
	for _, m := range fm {
		for _, alias := range m.Aliases {
			if fieldKey(alias) == key {
				return true
			}
		}
	}
	return false
}
