package report

import "errors"

var (
	// ErrNoSelection is returned when a snapshot is requested from a table
	// that has no selected date.
	ErrNoSelection = errors.New("no date selected: the batch produced no records")

	// ErrUnknownFormat is returned by ParseFormat for unsupported formats.
	ErrUnknownFormat = errors.New("unknown report format")
)
