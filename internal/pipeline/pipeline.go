package pipeline

import (
	"context"
	"log/slog"

	"github.com/mbio16/ln-community-graph/internal/model"
)

// Step is one stage of a community run.
// Steps are executed in sequence, each one reading what the previous steps
// left on the report.
//
// Design decision: Steps are an interface rather than function types
// because the fetch steps carry a configured fetcher and Name() labels the
// step in logs and in CommunityReport.PerformedSteps.
type Step interface {
	// Do executes the step against the shared report.
	// A returned error ends the run; the pipeline records it on the report.
	Do(ctx context.Context, report *model.CommunityReport) error

	// Name returns the step's name for logging and the report.
	Name() string
}

// Pipeline executes steps in order.
// A Pipeline is not safe for concurrent use; BatchProcessor creates one per
// community.
type Pipeline struct {
	steps  []Step
	logger *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// New creates an empty pipeline.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{steps: make([]Step, 0, 4)}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// AddSteps appends steps. They run in the order added.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs every step against report and stops at the first error.
// The error is recorded on the report and returned.
//
// Design decision: There is no continue-on-error mode. Every step depends
// on the one before it: the member step needs the member list, analysis
// needs the graph, and the export must never store a partial graph. A
// failed member query therefore aborts the run with no partial result.
//
// Cancellation is checked before each step rather than during it; the
// fetchers pass ctx down to every request and stop on their own.
func (p *Pipeline) Execute(ctx context.Context, report *model.CommunityReport) error {
	for _, step := range p.steps {
		if err := ctx.Err(); err != nil {
			p.logger.Warn("pipeline cancelled",
				"step", step.Name(),
				"community", report.CommunityID,
				"reason", err,
			)
			report.Cancelled = true
			report.Error = err
			report.ErrorMessage = err.Error()
			return err
		}

		p.logger.Info("executing step",
			"step", step.Name(),
			"community", report.CommunityID,
			"run_id", report.RunID,
		)

		if err := step.Do(ctx, report); err != nil {
			p.logger.Error("step failed",
				"step", step.Name(),
				"community", report.CommunityID,
				"error", err,
			)
			report.Error = err
			report.ErrorMessage = err.Error()
			return err
		}

		p.logger.Debug("step completed", "step", step.Name(), "community", report.CommunityID)
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
