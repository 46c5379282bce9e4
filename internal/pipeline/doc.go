// Package pipeline loads and parses every source of a batch.
//
// Each source runs through its own Pipeline of steps (fetch, extract, parse)
// that fill a model.SourceReport. BatchProcessor runs one pipeline per source
// concurrently with errgroup. A failing source is logged and kept as an
// empty series so the rest of the batch still aggregates. Only a batch in
// which every source failed is reported as an error.
package pipeline
