// Package report renders the selected date of an aggregated table.
//
// Writers for each output format share the Writer interface:
//   - CSVWriter: the spreadsheet export (BOM, ";" separated, sorted by
//     visitors, "-" for zero values)
//   - MarkdownWriter: GitHub Flavored Markdown with a table, an alert and a
//     mermaid pie chart
//   - XLSXWriter: a single sheet workbook
//   - JSONWriter: the snapshot as JSON
//   - TextWriter: a plain text table for the terminal
//
// All writers take a Snapshot, which is built once from an aggregate.Table
// with NewSnapshot.
package report
