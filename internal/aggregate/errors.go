package aggregate

import "errors"

var (
	// ErrUnknownDate is returned when a selected date token is not part of
	// the table's date set.
	ErrUnknownDate = errors.New("date is not present in any source")

	// ErrNotReady is returned when a State without a table is asked for one.
	ErrNotReady = errors.New("batch is not ready")
)
