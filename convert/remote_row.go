// ABOUTME: Positional row shape used by the remote spreadsheet
// ABOUTME: Translates between canonical records, named rows, column values and request params
package convert

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/harperreed/quotedesk/models"
)

// RemoteColumns is the fixed column order of the remote sheet (A through P).
var RemoteColumns = []string{
	"id", "firstName", "lastName", "phone", "email", "address", "city", "state", "zip",
	"service", "status", "priority", "notes", "dateAdded", "budget", "preferredDate",
}

// RemoteHeaders is the header row written by setupHeaders.
var RemoteHeaders = []string{
	"ID", "First", "Last", "Phone", "Email", "Address", "City", "State", "Zip",
	"Service", "Status", "Priority", "Notes", "Date Added", "Budget", "Preferred Date",
}

// RemoteRow is one spreadsheet row keyed by column name.
type RemoteRow struct {
	ID            string `json:"id"`
	FirstName     string `json:"firstName"`
	LastName      string `json:"lastName"`
	Phone         string `json:"phone"`
	Email         string `json:"email"`
	Address       string `json:"address"`
	City          string `json:"city"`
	State         string `json:"state"`
	Zip           string `json:"zip"`
	Service       string `json:"service"`
	Status        string `json:"status"`
	Priority      string `json:"priority"`
	Notes         string `json:"notes"`
	DateAdded     string `json:"dateAdded"`
	Budget        string `json:"budget"`
	PreferredDate string `json:"preferredDate"`
}

// ToRemoteRow renders rec for the sheet. Service, status and budget use
// their human labels; priority stays textual.
func ToRemoteRow(rec models.CustomerRecord) RemoteRow {
	row := RemoteRow{
		ID:            rec.ID,
		FirstName:     rec.FirstName,
		LastName:      rec.LastName,
		Phone:         rec.Phone,
		Email:         rec.Email,
		Address:       rec.Address,
		City:          rec.City,
		State:         rec.State,
		Zip:           rec.Zip,
		Status:        models.StatusLabel(rec.Status),
		Priority:      string(rec.Priority),
		Notes:         rec.Notes,
		DateAdded:     rec.CreatedAt,
		PreferredDate: rec.PreferredDate,
	}
	if rec.ServiceType != "" {
		row.Service = models.ServiceTypeLabel(rec.ServiceType)
	}
	if rec.Budget != "" {
		row.Budget = models.BudgetLabel(rec.Budget)
	}
	return row
}

// Fields returns the row keyed by column name.
func (r RemoteRow) Fields() map[string]string {
	vals := r.Values()
	out := make(map[string]string, len(RemoteColumns))
	for i, col := range RemoteColumns {
		out[col] = vals[i]
	}
	return out
}

// Values returns the row in column order.
func (r RemoteRow) Values() []string {
	return []string{
		r.ID, r.FirstName, r.LastName, r.Phone, r.Email, r.Address, r.City, r.State, r.Zip,
		r.Service, r.Status, r.Priority, r.Notes, r.DateAdded, r.Budget, r.PreferredDate,
	}
}

// Params encodes the row as addCustomer/updateCustomer query parameters.
func (r RemoteRow) Params() url.Values {
	params := url.Values{}
	for col, v := range r.Fields() {
		params.Set(col, v)
	}
	return params
}

// RowFromValues reads a positional row. Short rows leave trailing columns
// empty and extra cells are ignored.
func RowFromValues(values []string) RemoteRow {
	cell := func(i int) string {
		if i < len(values) {
			return values[i]
		}
		return ""
	}
	return RemoteRow{
		ID: cell(0), FirstName: cell(1), LastName: cell(2), Phone: cell(3), Email: cell(4),
		Address: cell(5), City: cell(6), State: cell(7), Zip: cell(8), Service: cell(9),
		Status: cell(10), Priority: cell(11), Notes: cell(12), DateAdded: cell(13),
		Budget: cell(14), PreferredDate: cell(15),
	}
}

// FromRemoteRow converts a pulled row into a canonical record.
func FromRemoteRow(row RemoteRow, now time.Time) models.CustomerRecord {
	return ToCustomerRecord(row.Fields(), KindRemoteRow, now)
}

// UnmarshalJSON accepts cells the sheet returns as numbers or booleans,
// which happens for phones, zips and numeric priorities.
func (r *RemoteRow) UnmarshalJSON(data []byte) error {
	var cells map[string]interface{}
	if err := json.Unmarshal(data, &cells); err != nil {
		return err
	}
	values := make([]string, len(RemoteColumns))
	for i, col := range RemoteColumns {
		values[i] = CellString(cells[col])
	}
	*r = RowFromValues(values)
	return nil
}

// CellString renders a loosely typed spreadsheet cell as text.
func CellString(v interface{}) string {
	switch c := v.(type) {
	case nil:
		return ""
	case string:
		return c
	case float64:
		return strconv.FormatFloat(c, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(c)
	default:
		return fmt.Sprint(c)
	}
}
