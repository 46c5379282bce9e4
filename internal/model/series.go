package model

// SourceSeries is the parsed record list of one source.
//
// Records are unique by DateToken. NewSourceSeries enforces this: the first
// occurrence of a token fixes its position and the last occurrence supplies
// its values.
type SourceSeries struct {
	// SourceID identifies the source, e.g. "dontr.ru" or "hsdigital/rn/smi/61".
	SourceID string `json:"source"`

	// Records in source order.
	Records []Record `json:"records"`
}

// NewSourceSeries builds a series from records in source order.
func NewSourceSeries(sourceID string, records []Record) SourceSeries {
	deduped := make([]Record, 0, len(records))
	position := make(map[string]int, len(records))

	for _, r := range records {
		if i, ok := position[r.DateToken]; ok {
			deduped[i] = r
			continue
		}
		position[r.DateToken] = len(deduped)
		deduped = append(deduped, r)
	}

	return SourceSeries{SourceID: sourceID, Records: deduped}
}

// EmptySeries returns the series used for a source that failed to load.
func EmptySeries(sourceID string) SourceSeries {
	return SourceSeries{SourceID: sourceID, Records: []Record{}}
}

// Lookup returns the record whose DateToken equals token exactly.
// Later records win if the series was built without NewSourceSeries.
func (s SourceSeries) Lookup(token string) (Record, bool) {
	for i := len(s.Records) - 1; i >= 0; i-- {
		if s.Records[i].DateToken == token {
			return s.Records[i], true
		}
	}
	return Record{}, false
}

// DateTokens returns the tokens of the series in source order.
func (s SourceSeries) DateTokens() []string {
	tokens := make([]string, len(s.Records))
	for i, r := range s.Records {
		tokens[i] = r.DateToken
	}
	return tokens
}

// Len returns the number of records.
func (s SourceSeries) Len() int {
	return len(s.Records)
}
