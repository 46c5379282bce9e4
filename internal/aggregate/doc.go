// Package aggregate merges per-source series into one date-indexed table.
//
// A Table is an immutable value: Build computes the sorted union of all date
// tokens and selects the latest one, Select returns a copy with another
// selection, and Project returns one Entry per source for a date. Sources
// that have no record for the date still appear, with zero counters and
// HasData set to false.
//
// State wraps a Table with the loading/failed/ready status of a batch so the
// command layer can hold a single value instead of loose flags.
package aggregate
