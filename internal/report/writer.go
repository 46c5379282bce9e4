package report

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/nao1215/listat/internal/aggregate"
	"github.com/nao1215/listat/internal/model"
)

// Format is an output format name.
type Format string

const (
	// FormatCSV is the ";" separated spreadsheet export.
	FormatCSV Format = "csv"
	// FormatMarkdown is GitHub Flavored Markdown.
	FormatMarkdown Format = "markdown"
	// FormatXLSX is an Excel workbook.
	FormatXLSX Format = "xlsx"
	// FormatJSON is indented JSON.
	FormatJSON Format = "json"
	// FormatText is a plain text table.
	FormatText Format = "text"
)

// Formats lists the supported formats.
func Formats() []Format {
	return []Format{FormatCSV, FormatMarkdown, FormatXLSX, FormatJSON, FormatText}
}

// ParseFormat converts a user supplied name into a Format.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if f == "md" {
		return FormatMarkdown, nil
	}
	if slices.Contains(Formats(), f) {
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// Ext returns the file extension for the format, without the dot.
func (f Format) Ext() string {
	switch f {
	case FormatMarkdown:
		return "md"
	case FormatText:
		return "txt"
	default:
		return string(f)
	}
}

// Snapshot is the data every writer renders: one date across all sources.
type Snapshot struct {
	// Period is the batch period.
	Period model.Period `json:"period"`

	// Date is the selected date token.
	Date string `json:"date"`

	// Dates are all date tokens of the table in ascending order.
	Dates []string `json:"dates"`

	// Entries are in source configuration order.
	Entries []aggregate.Entry `json:"entries"`

	// GeneratedAt is when the snapshot was taken.
	GeneratedAt time.Time `json:"generated_at"`
}

// NewSnapshot projects the selected date of table.
func NewSnapshot(table aggregate.Table, now time.Time) (Snapshot, error) {
	date, ok := table.Selected()
	if !ok {
		return Snapshot{}, ErrNoSelection
	}
	return Snapshot{
		Period:      table.Period(),
		Date:        date,
		Dates:       table.Dates(),
		Entries:     table.Project(date),
		GeneratedAt: now,
	}, nil
}

// Missing returns the IDs of sources without data for the date.
func (s Snapshot) Missing() []string {
	var ids []string
	for _, e := range s.Entries {
		if !e.HasData {
			ids = append(ids, e.SourceID)
		}
	}
	return ids
}

// Writer renders a Snapshot.
type Writer interface {
	// Write outputs the snapshot and returns the number of bytes written.
	Write(snapshot Snapshot) (int, error)
}

// NewWriter returns the writer for format.
func NewWriter(format Format, output io.Writer) (Writer, error) {
	switch format {
	case FormatCSV:
		return NewCSVWriter(output), nil
	case FormatMarkdown:
		return NewMarkdownWriter(output), nil
	case FormatXLSX:
		return NewXLSXWriter(output), nil
	case FormatJSON:
		return NewJSONWriter(output, WithPrettyPrint()), nil
	case FormatText:
		return NewTextWriter(output), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// SortByVisitors returns a copy of entries ordered by visitors, highest
// first. Entries with equal visitors keep their relative order.
func SortByVisitors(entries []aggregate.Entry) []aggregate.Entry {
	sorted := slices.Clone(entries)
	slices.SortStableFunc(sorted, func(a, b aggregate.Entry) int {
		switch {
		case a.Visitors > b.Visitors:
			return -1
		case a.Visitors < b.Visitors:
			return 1
		default:
			return 0
		}
	})
	return sorted
}

// FileName returns the download name for a report, e.g.
// "liveinternet_week_report_16-дек.csv".
func FileName(period model.Period, date string, format Format) string {
	return fmt.Sprintf("liveinternet_%s_report_%s.%s",
		period, strings.Join(strings.Fields(date), "-"), format.Ext())
}
