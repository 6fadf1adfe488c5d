// ABOUTME: Excel workbook import and export for leads
// ABOUTME: Uses excelize to write the labelled export table and read first-sheet imports
package convert

import (
	"fmt"
	"io"
	"time"

	"github.com/harperreed/quotedesk/models"
	"github.com/xuri/excelize/v2"
)

const leadsSheet = "Leads"

// WriteXLSX writes the same table as WriteCSV into a single-sheet workbook.
func WriteXLSX(w io.Writer, records []models.CustomerRecord) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), leadsSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	sw, err := f.NewStreamWriter(leadsSheet)
	if err != nil {
		return fmt.Errorf("failed to open stream writer: %w", err)
	}

	if err := sw.SetRow("A1", toCells(ExportHeaders)); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for i, rec := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, toCells(exportRow(rec))); err != nil {
			return fmt.Errorf("failed to write record %s: %w", rec.ID, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return fmt.Errorf("failed to flush workbook: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// ReadXLSX imports the first worksheet of a workbook using the CSV header
// aliases. The error semantics match ReadCSV.
func ReadXLSX(r io.Reader, now time.Time) (CSVResult, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return CSVResult{}, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return CSVResult{}, fmt.Errorf("no worksheet found")
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return CSVResult{}, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) == 0 {
		return CSVResult{}, nil
	}

	t, err := newTable(rows[0])
	if err != nil {
		return CSVResult{}, err
	}

	var result CSVResult
	for i, row := range rows[1:] {
		t.add(&result, i+2, row, now)
	}
	return result, nil
}

func toCells(values []string) []interface{} {
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return cells
}
