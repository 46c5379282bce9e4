package pipeline

import (
	"context"
	"log/slog"

	"github.com/nao1215/listat/internal/model"
)

// Step is one stage of the per-source pipeline.
type Step interface {
	// Do executes the step. A returned error stops the pipeline and marks
	// the source as failed.
	Do(ctx context.Context, report *model.SourceReport) error

	// Name returns the step's name for logging.
	Name() string
}

// Pipeline runs steps in order against one SourceReport.
type Pipeline struct {
	steps  []Step
	logger *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// New creates a Pipeline with the given steps.
func New(steps []Step, opts ...Option) *Pipeline {
	p := &Pipeline{steps: steps}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// Execute runs the steps in order. On the first error the report is
// marked failed, its series reset to empty, and the error returned.
func (p *Pipeline) Execute(ctx context.Context, report *model.SourceReport) error {
	p.logger.Debug("pipeline started",
		"source", report.SourceID,
		"steps", p.StepNames(),
	)
	for _, step := range p.steps {
		if err := ctx.Err(); err != nil {
			p.logger.Warn("pipeline cancelled",
				"step", step.Name(),
				"source", report.SourceID,
				"reason", err,
			)
			report.Fail(err)
			return err
		}

		if err := step.Do(ctx, report); err != nil {
			p.logger.Warn("step failed",
				"step", step.Name(),
				"source", report.SourceID,
				"error", err,
			)
			report.Fail(err)
			return err
		}

		p.logger.Debug("step completed",
			"step", step.Name(),
			"source", report.SourceID,
		)
		report.PerformedSteps = append(report.PerformedSteps, step.Name())
	}
	return nil
}

// StepNames returns the names of all steps in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}
