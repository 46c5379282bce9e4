package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/listat/internal/aggregate"
)

// NoData is shown by the text and markdown writers for a source without a
// record for the selected date.
const NoData = "нет данных"

// TextWriter outputs a plain text table for the terminal.
type TextWriter struct {
	baseWriter
}

// NewTextWriter creates a TextWriter that outputs to the given writer.
func NewTextWriter(output io.Writer) *TextWriter {
	return &TextWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs the snapshot in source order with totals.
func (w *TextWriter) Write(snapshot Snapshot) (int, error) {
	var sb strings.Builder

	width := len([]rune("Источник"))
	for _, e := range snapshot.Entries {
		width = max(width, len([]rune(e.SourceID)))
	}

	sb.WriteString(strings.Repeat("=", 70) + "\n")
	sb.WriteString(snapshot.Period.Title() + ": " + snapshot.Date + "\n")
	sb.WriteString(strings.Repeat("=", 70) + "\n\n")

	fmt.Fprintf(&sb, "%s  %12s  %12s\n", padRight("Источник", width), "Просмотры", "Посетители")
	sb.WriteString(strings.Repeat("-", width+28) + "\n")

	for _, e := range snapshot.Entries {
		if !e.HasData {
			fmt.Fprintf(&sb, "%s  %s\n", padRight(e.SourceID, width), NoData)
			continue
		}
		fmt.Fprintf(&sb, "%s  %12d  %12d\n", padRight(e.SourceID, width), e.Views, e.Visitors)
	}
	sb.WriteString(strings.Repeat("-", width+28) + "\n")
	views, visitors := aggregate.Totals(snapshot.Entries)
	fmt.Fprintf(&sb, "%s  %12d  %12d\n", padRight("Итого", width), views, visitors)

	if missing := snapshot.Missing(); len(missing) > 0 {
		sb.WriteString("\n" + strconv.Itoa(len(missing)) + " source(s) without data: " + strings.Join(missing, ", ") + "\n")
	}

	return w.output.Write([]byte(sb.String()))
}

// padRight pads s with spaces to width runes.
func padRight(s string, width int) string {
	n := len([]rune(s))
	if n >= width {
		return s
	}
	return s + strings.Repeat(" ", width-n)
}
