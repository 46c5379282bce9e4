package database

import "errors"

var (
	// ErrBatchNotFound is returned when no batch matches the query.
	ErrBatchNotFound = errors.New("batch not found")

	// ErrDatabaseNotFound is returned by Open when the file is missing and
	// CreateIfNotExists is false.
	ErrDatabaseNotFound = errors.New("database not found")
)
