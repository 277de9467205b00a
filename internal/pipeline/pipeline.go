package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/websift/websift/internal/model"
)

// Step defines the interface that all pipeline steps must implement.
// Steps are executed in sequence, each receiving the accumulated job
// report from previous steps.
//
// Design decision: We use an interface rather than function types because:
//  1. It allows steps to carry configuration state
//  2. It provides a Name() method for logging and debugging
//  3. It's more extensible for future features (e.g., retries per step)
type Step interface {
	// Do executes the pipeline step. It receives the context for
	// cancellation and the report to modify. Returns an error only if
	// the step fails structurally; non-fatal problems (individual fetch
	// failures) are recorded in the report and return nil.
	Do(ctx context.Context, report *model.JobReport) error

	// Name returns the step's name for logging purposes.
	Name() string
}

// Pipeline orchestrates the execution of multiple steps.
// It maintains a list of steps and executes them in order.
type Pipeline struct {
	// steps contains the ordered list of steps to execute.
	steps []Step

	// logger is used for structured logging during execution.
	logger *slog.Logger

	// continueOnError determines whether to continue executing steps
	// after one fails. If false, the pipeline stops on first error.
	continueOnError bool
}

// Option is a function that configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithContinueOnError configures the pipeline to continue execution even
// when a step fails. The default is to stop, because an early failure
// (no valid seeds) makes the remaining steps meaningless.
func WithContinueOnError(continueOnError bool) Option {
	return func(p *Pipeline) {
		p.continueOnError = continueOnError
	}
}

// New creates a new Pipeline with the given options.
// Steps should be added using AddStep after creation.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		steps:           make([]Step, 0),
		continueOnError: false,
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.logger == nil {
		p.logger = slog.Default()
	}

	return p
}

// AddStep appends a step to the pipeline.
// Steps are executed in the order they are added.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends multiple steps to the pipeline.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs all pipeline steps in sequence against the report.
// It respects context cancellation between steps and stamps FinishedAt
// when it returns.
//
// Returns the first error encountered if continueOnError is false.
func (p *Pipeline) Execute(ctx context.Context, report *model.JobReport) error {
	defer func() {
		report.FinishedAt = time.Now()
	}()

	for _, step := range p.steps {
		select {
		case <-ctx.Done():
			p.logger.Warn("pipeline cancelled",
				"step", step.Name(),
				"job", report.Job.ID,
				"reason", ctx.Err(),
			)
			return ctx.Err()
		default:
		}

		p.logger.Info("executing step",
			"step", step.Name(),
			"job", report.Job.ID,
		)

		if err := step.Do(ctx, report); err != nil {
			p.logger.Error("step failed",
				"step", step.Name(),
				"job", report.Job.ID,
				"error", err,
			)

			if !p.continueOnError {
				return err
			}
		} else {
			p.logger.Debug("step completed",
				"step", step.Name(),
				"job", report.Job.ID,
			)
		}

		report.PerformedSteps = append(report.PerformedSteps, step.Name())
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
