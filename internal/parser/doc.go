// Package parser turns the raw HTML of a LiveInternet statistics page into
// typed records.
//
// Parsing happens in two stages:
//
//   - Tokenize finds the first <pre> element and returns its data lines:
//     trimmed, non-empty lines that start with an ASCII digit or a Cyrillic
//     letter. Headers, separators and footers are dropped here.
//   - Classify splits one line into tokens and runs an ordered list of rules.
//     The first matching rule extracts a layout-specific model.Row, which is
//     then collapsed into a model.Record.
//
// Neither stage returns errors. A page without a <pre> block yields no lines,
// a line with fewer than three tokens yields no record, and a numeric field
// that does not parse is 0.
//
// # Usage
//
//	records := parser.ParseBlock(html)
//	for _, r := range records {
//	    fmt.Println(r.DateToken, r.Views, r.Visitors)
//	}
package parser
