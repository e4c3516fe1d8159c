package pipeline

import (
	"context"
	"log/slog"

	"github.com/silentcrawl/silentcrawl/internal/model"
)

// Step is one stage of a crawl run. Steps execute in sequence, each
// receiving the report accumulated by earlier steps.
//
// A step returns an error only for failures that invalidate the run;
// recoverable problems belong in the report instead. Steps carry their
// own configuration, and Name identifies them in logs.
type Step interface {
	// Do executes the step, modifying the report in place.
	Do(ctx context.Context, report *model.CrawlReport) error

	// Name returns the step's name for logging purposes.
	Name() string
}

// Pipeline runs an ordered list of steps against one report.
type Pipeline struct {
	steps []Step

	logger *slog.Logger

	// continueOnError keeps executing steps after one fails. The failed
	// step's error is recorded in the report either way.
	continueOnError bool
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithContinueOnError configures the pipeline to keep running after a
// step fails. The default is to stop, because an early failure (bad
// seed, unreachable database) usually invalidates everything after it.
func WithContinueOnError(continueOnError bool) Option {
	return func(p *Pipeline) {
		p.continueOnError = continueOnError
	}
}

// New creates an empty Pipeline. Add steps with AddStep.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{steps: make([]Step, 0)}

	for _, opt := range opts {
		opt(p)
	}

	if p.logger == nil {
		p.logger = slog.Default()
	}

	return p
}

// AddStep appends a step. Steps run in the order added.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends multiple steps.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs all steps in sequence against the report.
//
// Cancellation is checked between steps; steps handle their own
// timeouts internally. When the context ends the report is marked timed
// out and the context error is returned. A step error stops the
// pipeline unless continueOnError is set, and is recorded on the report
// either way.
func (p *Pipeline) Execute(ctx context.Context, report *model.CrawlReport) error {
	for _, step := range p.steps {
		select {
		case <-ctx.Done():
			p.logger.Warn("pipeline cancelled",
				"step", step.Name(),
				"reason", ctx.Err(),
			)
			report.TimedOut = true
			return ctx.Err()
		default:
		}

		p.logger.Debug("executing step",
			"step", step.Name(),
			"target", report.Target,
		)

		if err := step.Do(ctx, report); err != nil {
			p.logger.Error("step failed",
				"step", step.Name(),
				"target", report.Target,
				"error", err,
			)

			report.SetError(err)

			if !p.continueOnError {
				return err
			}
			continue
		}

		p.logger.Debug("step completed",
			"step", step.Name(),
			"target", report.Target,
		)
	}

	return nil
}

// StepCount returns the number of steps in the pipeline.
func (p *Pipeline) StepCount() int {
	return len(p.steps)
}

// StepNames returns the names of all steps in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}
