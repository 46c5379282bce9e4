package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/nao1215/listat/internal/fetch"
	"github.com/nao1215/listat/internal/model"
	"github.com/nao1215/listat/internal/parser"
)

// FetchStep loads the source page into report.Payload.
type FetchStep struct {
	fetcher fetch.Fetcher
	request fetch.Request
	now     func() time.Time
}

// NewFetchStep creates a FetchStep for one request.
func NewFetchStep(fetcher fetch.Fetcher, request fetch.Request) *FetchStep {
	return &FetchStep{fetcher: fetcher, request: request, now: time.Now}
}

// Name implements Step.
func (s *FetchStep) Name() string {
	return "fetch"
}

// Do implements Step.
func (s *FetchStep) Do(ctx context.Context, report *model.SourceReport) error {
	payload, err := s.fetcher.Fetch(ctx, s.request)
	if err != nil {
		return err
	}
	report.Payload = payload
	report.FetchedAt = s.now().UTC()
	return nil
}

// FingerprintStep stores a hash of the payload so the history store can tell
// identical pages apart from changed ones.
type FingerprintStep struct {
	hash func(payload string) string
}

// NewFingerprintStep creates a FingerprintStep using hash.
func NewFingerprintStep(hash func(payload string) string) *FingerprintStep {
	return &FingerprintStep{hash: hash}
}

// Name implements Step.
func (s *FingerprintStep) Name() string {
	return "fingerprint"
}

// Do implements Step.
func (s *FingerprintStep) Do(_ context.Context, report *model.SourceReport) error {
	report.PayloadHash = s.hash(report.Payload)
	return nil
}

// ExtractStep finds the candidate data lines of the payload's pre block.
// A page without one yields no lines, which is not an error.
type ExtractStep struct {
	logger *slog.Logger
}

// NewExtractStep creates an ExtractStep.
func NewExtractStep(logger *slog.Logger) *ExtractStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExtractStep{logger: logger}
}

// Name implements Step.
func (s *ExtractStep) Name() string {
	return "extract"
}

// Do implements Step.
func (s *ExtractStep) Do(_ context.Context, report *model.SourceReport) error {
	report.Lines = parser.Tokenize(report.Payload)
	if len(report.Lines) == 0 {
		s.logger.Info("no data lines found", "source", report.SourceID)
	}
	return nil
}

// ParseStep turns candidate lines into the source's series and releases
// the payload.
type ParseStep struct {
	logger *slog.Logger
}

// NewParseStep creates a ParseStep.
func NewParseStep(logger *slog.Logger) *ParseStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &ParseStep{logger: logger}
}

// Name implements Step.
func (s *ParseStep) Name() string {
	return "parse"
}

// Do implements Step.
func (s *ParseStep) Do(_ context.Context, report *model.SourceReport) error {
	records, dropped := parser.ParseLines(report.Lines)
	report.Series = model.NewSourceSeries(report.SourceID, records)
	report.DroppedLines = dropped
	report.Payload = ""
	report.Lines = nil

	if dropped > 0 {
		s.logger.Debug("dropped unparsable lines",
			"source", report.SourceID,
			"dropped", dropped,
		)
	}
	return nil
}

// DefaultSteps returns fetch, fingerprint (when hash is not nil), extract and
// parse for one request.
func DefaultSteps(fetcher fetch.Fetcher, request fetch.Request, hash func(string) string, logger *slog.Logger) []Step {
	steps := []Step{NewFetchStep(fetcher, request)}
	if hash != nil {
		steps = append(steps, NewFingerprintStep(hash))
	}
	return append(steps, NewExtractStep(logger), NewParseStep(logger))
}
