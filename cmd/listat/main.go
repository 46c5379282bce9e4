// Package main provides the entry point for the listat CLI.
//
// listat collects LiveInternet traffic statistics for a list of counters,
// merges them into one date indexed table and exports the chosen date as
// CSV (or Markdown, XLSX, JSON, text).
//
// Usage:
//
//	listat report --period week
//	listat report --period month --date "Мар 23" --output-dir reports
//	listat history
//
// See --help for all available options.
package main

func main() {
	Execute()
}
