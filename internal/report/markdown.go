package report

import (
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/listat/internal/aggregate"
	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
)

// MarkdownWriter outputs the snapshot as GitHub Flavored Markdown.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs the snapshot in Markdown format.
func (w *MarkdownWriter) Write(snapshot Snapshot) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, snapshot)
	w.writeTable(md, snapshot)
	w.writeAlert(md, snapshot)
	w.writePieChart(md, snapshot)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, snapshot Snapshot) {
	md.H1(snapshot.Period.Title())
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Period", string(snapshot.Period)},
			{"Date", snapshot.Date},
			{"Dates available", strconv.Itoa(len(snapshot.Dates))},
			{"Generated", snapshot.GeneratedAt.Format("2006-01-02 15:04:05 MST")},
		},
	})
	md.PlainText("")
}

// writeTable lists sources sorted by visitors, the same order as the CSV.
func (w *MarkdownWriter) writeTable(md *markdown.Markdown, snapshot Snapshot) {
	md.H2("Sources")
	md.PlainText("")

	rows := make([][]string, 0, len(snapshot.Entries)+1)
	for _, e := range SortByVisitors(snapshot.Entries) {
		if !e.HasData {
			rows = append(rows, []string{"`" + e.SourceID + "`", NoData, NoData})
			continue
		}
		rows = append(rows, []string{
			"`" + e.SourceID + "`",
			strconv.FormatInt(e.Views, 10),
			strconv.FormatInt(e.Visitors, 10),
		})
	}
	views, visitors := aggregate.Totals(snapshot.Entries)
	rows = append(rows, []string{
		"**Итого**",
		"**" + strconv.FormatInt(views, 10) + "**",
		"**" + strconv.FormatInt(visitors, 10) + "**",
	})

	md.Table(markdown.TableSet{Header: CSVHeader, Rows: rows})
	md.PlainText("")
}

func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, snapshot Snapshot) {
	missing := snapshot.Missing()
	switch {
	case len(missing) == len(snapshot.Entries):
		md.Cautionf("No source has data for %s.", snapshot.Date)
	case len(missing) > 0:
		md.Warningf("%d source(s) without data for %s: %s",
			len(missing), snapshot.Date, strings.Join(missing, ", "))
	default:
		md.Tip("Every source has data for the selected date.")
	}
	md.PlainText("")
}

// writePieChart draws the visitor share of each source that has traffic.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, snapshot Snapshot) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Посетители "+snapshot.Date),
		piechart.WithShowData(true),
	)

	var plotted int
	for _, e := range SortByVisitors(snapshot.Entries) {
		if e.Visitors > 0 {
			chart.LabelAndIntValue(e.SourceID, uint64(e.Visitors))
			plotted++
		}
	}
	if plotted == 0 {
		return
	}

	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [listat](https://github.com/nao1215/listat) from LiveInternet statistics*")
}
