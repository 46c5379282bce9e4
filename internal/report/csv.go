package report

import (
	"bytes"
	"encoding/csv"
	"io"
	"strconv"

	"github.com/nao1215/listat/internal/aggregate"
)

const (
	// BOM is the UTF-8 byte order mark that makes spreadsheet applications
	// detect the encoding of Cyrillic headers.
	BOM = "\uFEFF"

	// Separator is the CSV field separator.
	Separator = ';'

	// ZeroPlaceholder replaces counters equal to 0. Missing data renders the
	// same way.
	ZeroPlaceholder = "-"
)

// CSVHeader is the header row: source, views, visitors.
var CSVHeader = []string{"Сайт", "Просмотры", "Посетители"}

// CSVWriter writes the spreadsheet export.
type CSVWriter struct {
	baseWriter
}

// NewCSVWriter creates a CSVWriter that outputs to the given writer.
func NewCSVWriter(output io.Writer) *CSVWriter {
	return &CSVWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs the snapshot entries as CSV.
func (w *CSVWriter) Write(snapshot Snapshot) (int, error) {
	data, err := EncodeCSV(snapshot.Entries)
	if err != nil {
		return 0, err
	}
	return w.output.Write(data)
}

// EncodeCSV renders entries sorted by visitors, prefixed with BOM. Rows are
// separated by LF and the last row has no terminator, so the bytes match the
// browser export of the LiveInternet report page.
func EncodeCSV(entries []aggregate.Entry) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(BOM)

	cw := csv.NewWriter(&buf)
	cw.Comma = Separator

	if err := cw.Write(CSVHeader); err != nil {
		return nil, err
	}
	for _, e := range SortByVisitors(entries) {
		if err := cw.Write([]string{e.SourceID, formatCount(e.Views), formatCount(e.Visitors)}); err != nil {
			return nil, err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// formatCount renders n, or the placeholder for zero.
func formatCount(n int64) string {
	if n == 0 {
		return ZeroPlaceholder
	}
	return strconv.FormatInt(n, 10)
}
