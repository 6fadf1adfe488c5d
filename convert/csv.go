// ABOUTME: CSV interchange for leads
// ABOUTME: Reads header-aliased CSV into records with per-row errors and writes labelled exports
package convert

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/harperreed/quotedesk/models"
)

// ErrNoRecognizedColumns means the header row named none of the known fields.
var ErrNoRecognizedColumns = errors.New("no recognized columns in header row")

// RowError describes one input row that could not be converted.
type RowError struct {
	Line int
	Err  error
}

func (e RowError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e RowError) Unwrap() error { return e.Err }

// CSVResult is the outcome of a tabular import. Rows that failed are
// reported in Errors and never appear in Records.
type CSVResult struct {
	Records []models.CustomerRecord
	Errors  []RowError
	Blank   int
}

// ExportHeaders is the column order of CSV and XLSX exports.
var ExportHeaders = []string{
	"ID", "First Name", "Last Name", "Phone", "Email", "Address", "City", "State", "Zip",
	"Service Type", "Priority", "Status", "Product Details", "Budget", "Preferred Date",
	"Meeting Date", "Notes", "Referral Source", "Contacted", "Created Date", "Updated Date",
}

// ReadCSV parses a CSV export (ours or a hand-made one) into records. An
// error is returned only when the header itself is unusable.
func ReadCSV(r io.Reader, now time.Time) (CSVResult, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return CSVResult{}, nil
		}
		return CSVResult{}, fmt.Errorf("failed to read header: %w", err)
	}

	t, err := newTable(header)
	if err != nil {
		return CSVResult{}, err
	}

	var result CSVResult
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				result.Errors = append(result.Errors, RowError{Line: parseErr.Line, Err: ErrMalformedRecord})
				continue
			}
			return result, fmt.Errorf("failed to read csv: %w", err)
		}
		line, _ := reader.FieldPos(0)
		t.add(&result, line, record, now)
	}

	return result, nil
}

// table applies a header row to data rows.
type table struct {
	header []string
}

func newTable(header []string) (*table, error) {
	fields := Fields(KindCSVRow)
	recognized := false
	for i, h := range header {
		h = strings.TrimPrefix(h, "\ufeff")
		header[i] = h
		if fields.Recognizes(h) {
			recognized = true
		}
	}
	if !recognized {
		return nil, ErrNoRecognizedColumns
	}
	return &table{header: header}, nil
}

func (t *table) add(result *CSVResult, line int, row []string, now time.Time) {
	raw := make(map[string]string, len(t.header))
	empty := true
	for i, h := range t.header {
		if i >= len(row) {
			break
		}
		v := strings.TrimSpace(row[i])
		if v != "" {
			empty = false
		}
		raw[h] = v
	}
	if empty {
		result.Blank++
		return
	}
	if len(row) > len(t.header) {
		result.Errors = append(result.Errors, RowError{
			Line: line,
			Err:  fmt.Errorf("%w: %d cells for %d columns", ErrMalformedRecord, len(row), len(t.header)),
		})
		return
	}

	rec := ToCustomerRecord(raw, KindCSVRow, now)
	if err := Validate(rec); err != nil {
		result.Errors = append(result.Errors, RowError{Line: line, Err: err})
		return
	}
	result.Records = append(result.Records, rec)
}

// exportRow renders rec with human labels in ExportHeaders order.
func exportRow(rec models.CustomerRecord) []string {
	contacted := ""
	if rec.Contacted {
		contacted = "yes"
	}
	return []string{
		rec.ID,
		rec.FirstName,
		rec.LastName,
		rec.Phone,
		rec.Email,
		rec.Address,
		rec.City,
		rec.State,
		rec.Zip,
		models.ServiceTypeLabel(rec.ServiceType),
		models.PriorityLabel(rec.Priority),
		models.StatusLabel(rec.Status),
		rec.ProductDetails,
		models.BudgetLabel(rec.Budget),
		rec.PreferredDate,
		rec.MeetingDate,
		rec.Notes,
		models.ReferralLabel(rec.ReferralSource),
		contacted,
		rec.CreatedAt,
		rec.UpdatedAt,
	}
}

// WriteCSV writes records with canonical human-readable labels.
func WriteCSV(w io.Writer, records []models.CustomerRecord) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(ExportHeaders); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, rec := range records {
		if err := writer.Write(exportRow(rec)); err != nil {
			return fmt.Errorf("failed to write record %s: %w", rec.ID, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}
	return nil
}
