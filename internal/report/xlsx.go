package report

import (
	"io"

	"github.com/xuri/excelize/v2"
)

// SheetName is the worksheet that holds the report.
const SheetName = "Report"

// XLSXWriter outputs the snapshot as an Excel workbook with one sheet. Rows
// follow the CSV order and missing values are empty cells.
type XLSXWriter struct {
	baseWriter
}

// NewXLSXWriter creates an XLSXWriter that outputs to the given writer.
func NewXLSXWriter(output io.Writer) *XLSXWriter {
	return &XLSXWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs the snapshot as a workbook.
func (w *XLSXWriter) Write(snapshot Snapshot) (n int, err error) {
	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return 0, err
	}

	header := make([]any, len(CSVHeader))
	for i, h := range CSVHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return 0, err
	}

	for i, e := range SortByVisitors(snapshot.Entries) {
		row := []any{e.SourceID, nil, nil}
		if e.HasData {
			row[1] = e.Views
			row[2] = e.Visitors
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return 0, err
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return 0, err
		}
	}

	if err := f.SetColWidth(SheetName, "A", "A", 28); err != nil {
		return 0, err
	}

	written, err := f.WriteTo(w.output)
	return int(written), err
}
