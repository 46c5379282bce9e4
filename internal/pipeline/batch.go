package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nao1215/listat/internal/fetch"
	"github.com/nao1215/listat/internal/model"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is the number of sources loaded at the same time.
const DefaultConcurrency = 10

// BatchProcessor loads all sources of a batch concurrently.
type BatchProcessor struct {
	// pipelineFactory creates a fresh pipeline for each source.
	pipelineFactory func(req fetch.Request) *Pipeline

	concurrency int
	logger      *slog.Logger
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of sources loaded at once.
// Non-positive values keep the default.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a BatchProcessor.
func NewBatchProcessor(pipelineFactory func(req fetch.Request) *Pipeline, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		pipelineFactory: pipelineFactory,
		concurrency:     DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(bp)
	}
	if bp.logger == nil {
		bp.logger = slog.Default()
	}
	return bp
}

// ProcessBatch runs one pipeline per request and returns the reports in
// request order. A failed source is kept as a report with an empty series.
//
// The error is the context error when the batch was cancelled, or
// ErrAllSourcesFailed when not a single source could be loaded.
//
// Design decision: a source error is logged and swallowed inside the
// errgroup instead of returned because:
//  1. errgroup cancels the shared context on the first returned error, which
//     would abort sources that are still loading
//  2. the report already carries the failure, so the table can show the
//     source as empty
//  3. only cancellation by the caller should stop the batch
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, period model.Period, requests []fetch.Request) ([]*model.SourceReport, error) {
	bp.logger.Info("starting batch",
		"period", period,
		"sources", len(requests),
		"concurrency", bp.concurrency,
	)
	start := time.Now()

	// Each goroutine writes only its own index.
	reports := make([]*model.SourceReport, len(requests))
	for i, req := range requests {
		reports[i] = model.NewSourceReport(req.SourceID, req.URL, period)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, req := range requests {
		i, req := i, req
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				reports[i].Fail(err)
				return err
			}

			if err := bp.pipelineFactory(req).Execute(gctx, reports[i]); err != nil {
				bp.logger.Warn("source failed",
					"source", req.SourceID,
					"error", err,
				)
				// The failure is recorded in the report; other sources go on.
				return nil
			}

			bp.logger.Info("source loaded",
				"source", req.SourceID,
				"records", reports[i].Series.Len(),
			)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return reports, err
	}
	if err := ctx.Err(); err != nil {
		return reports, err
	}

	failed := 0
	for _, r := range reports {
		if r.Failed() {
			failed++
		}
	}

	bp.logger.Info("batch complete",
		"sources", len(requests),
		"failed", failed,
		"elapsed", time.Since(start),
	)

	if len(reports) > 0 && failed == len(reports) {
		return reports, fmt.Errorf("%w: %d of %d", ErrAllSourcesFailed, failed, len(reports))
	}
	return reports, nil
}

// Series returns the series of every report in order. Failed sources
// contribute an empty series.
func Series(reports []*model.SourceReport) []model.SourceSeries {
	series := make([]model.SourceSeries, len(reports))
	for i, r := range reports {
		series[i] = r.Series
	}
	return series
}
