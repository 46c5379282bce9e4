package aggregate

import (
	"fmt"
	"slices"

	"github.com/nao1215/listat/internal/datekey"
	"github.com/nao1215/listat/internal/model"
)

// Entry is one source's values for a selected date.
type Entry struct {
	// SourceID identifies the source.
	SourceID string `json:"source"`

	// Views is 0 when the source has no record for the date.
	Views int64 `json:"views"`

	// Visitors is 0 when the source has no record for the date.
	Visitors int64 `json:"visitors"`

	// HasData is false when the source has no record for the date. A record
	// whose counters are literally zero has HasData set to true.
	HasData bool `json:"has_data"`
}

// Table is the merged view of one batch.
type Table struct {
	period   model.Period
	series   []model.SourceSeries
	dates    []string
	selected string
}

// Build merges series, which are kept in the given order. The union of date
// tokens is sorted with the period's date grammar and the latest token is
// selected.
func Build(period model.Period, series []model.SourceSeries) Table {
	all := make([]string, 0)
	for _, s := range series {
		all = append(all, s.DateTokens()...)
	}
	dates := datekey.Sort(all, period.IsMonthly())

	t := Table{
		period: period,
		series: slices.Clone(series),
		dates:  dates,
	}
	if len(dates) > 0 {
		t.selected = dates[len(dates)-1]
	}
	return t
}

// Period returns the batch period.
func (t Table) Period() model.Period {
	return t.period
}

// Dates returns the sorted distinct date tokens of all sources.
func (t Table) Dates() []string {
	return slices.Clone(t.dates)
}

// Series returns the source series in configuration order.
func (t Table) Series() []model.SourceSeries {
	return slices.Clone(t.series)
}

// Selected returns the selected date token and false if the table is empty.
func (t Table) Selected() (string, bool) {
	return t.selected, t.selected != ""
}

// Empty reports whether no source contributed a record.
func (t Table) Empty() bool {
	return len(t.dates) == 0
}

// HasDate reports whether token is one of the table's dates.
func (t Table) HasDate(token string) bool {
	return slices.Contains(t.dates, token)
}

// Select returns a copy of t with token selected. token must match one of
// Dates exactly.
func (t Table) Select(token string) (Table, error) {
	if !t.HasDate(token) {
		return t, fmt.Errorf("%w: %q", ErrUnknownDate, token)
	}
	t.selected = token
	return t, nil
}

// Project returns one entry per source for token, in source order.
// Lookup is by exact token text.
func (t Table) Project(token string) []Entry {
	entries := make([]Entry, len(t.series))
	for i, s := range t.series {
		entries[i] = Entry{SourceID: s.SourceID}
		if r, ok := s.Lookup(token); ok {
			entries[i].Views = r.Views
			entries[i].Visitors = r.Visitors
			entries[i].HasData = true
		}
	}
	return entries
}

// Current projects the selected date. It returns nil for an empty table.
func (t Table) Current() []Entry {
	if t.selected == "" {
		return nil
	}
	return t.Project(t.selected)
}

// Totals sums the entries' counters. Entries without data count as zero.
func Totals(entries []Entry) (views, visitors int64) {
	for _, e := range entries {
		views += e.Views
		visitors += e.Visitors
	}
	return views, visitors
}
