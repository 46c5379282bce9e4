// Package model defines the data types shared by the parser, the aggregator
// and the report writers: periods, layout-tagged rows, records and
// per-source series.
package model
