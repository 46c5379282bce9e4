// Package database keeps a history of completed batches in SQLite.
//
// Every ready batch is stored with the parsed series of each source and a
// SHA3 fingerprint of the page it came from, so earlier reports can be
// exported again without fetching.
package database
