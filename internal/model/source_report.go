package model

import "time"

// SourceReport accumulates everything the per-source pipeline learns about
// one source. Steps fill it in order: fetch sets Payload, extract sets Lines,
// parse sets Series.
type SourceReport struct {
	// SourceID is the configured source identifier.
	SourceID string `json:"source"`

	// URL is the address the payload was fetched from (or the file path
	// when reading offline input).
	URL string `json:"url"`

	// Period is the batch period.
	Period Period `json:"period"`

	// FetchedAt is when the payload was received.
	FetchedAt time.Time `json:"fetched_at"`

	// Payload is the decoded page body. It is released once the series has
	// been parsed.
	Payload string `json:"-"`

	// PayloadHash fingerprints the payload for the history store.
	PayloadHash string `json:"payload_hash,omitempty"`

	// Lines are the candidate data lines found in the pre block.
	Lines []string `json:"-"`

	// Series is the parsed record list. Empty when the source failed.
	Series SourceSeries `json:"series"`

	// DroppedLines counts candidate lines that did not yield a record.
	DroppedLines int `json:"dropped_lines"`

	// PerformedSteps lists the names of the steps that ran.
	PerformedSteps []string `json:"performed_steps"`

	// Error is the error that stopped the pipeline, if any.
	Error error `json:"-"`

	// ErrorMessage is Error as text for serialization.
	ErrorMessage string `json:"error,omitempty"`
}

// NewSourceReport creates an empty report for a source.
func NewSourceReport(sourceID, url string, period Period) *SourceReport {
	return &SourceReport{
		SourceID:       sourceID,
		URL:            url,
		Period:         period,
		Series:         EmptySeries(sourceID),
		PerformedSteps: make([]string, 0),
	}
}

// Failed reports whether the source could not be loaded.
func (r *SourceReport) Failed() bool {
	return r.Error != nil
}

// Fail records err and resets the series to empty.
func (r *SourceReport) Fail(err error) {
	r.Error = err
	r.ErrorMessage = err.Error()
	r.Series = EmptySeries(r.SourceID)
}
