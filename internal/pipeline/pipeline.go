package pipeline

import (
	"context"
	"log/slog"

	"github.com/recipecrawl/recipecrawl/internal/config"
	"github.com/recipecrawl/recipecrawl/internal/crawler"
	"github.com/recipecrawl/recipecrawl/internal/database"
	"github.com/recipecrawl/recipecrawl/internal/model"
	"github.com/recipecrawl/recipecrawl/internal/policy"
)

// Run is the mutable state threaded through the pipeline steps.
// Each step fills in the fields later steps depend on.
type Run struct {
	// Config is the validated crawl configuration.
	Config *config.Config

	// RunID uniquely identifies this run in the ledger and reports.
	RunID string

	// Oracle is the politeness oracle, set by the load-policy step.
	Oracle *policy.Oracle

	// Ledger is the open crawl database, set by the seed-frontier step.
	// The caller owns closing it after the pipeline finishes.
	Ledger *database.Ledger

	// Driver is the wired crawl driver, set by the seed-frontier step.
	Driver *crawler.Driver

	// Summary is the end-of-run report, set by the crawl step.
	Summary *model.RunSummary

	// StepsRun records the names of executed steps in order.
	StepsRun []string
}

// Step defines the interface that all pipeline steps must implement.
// Steps are executed in sequence, with each step receiving the accumulated
// run state from previous steps.
//
// Design decision: We use an interface rather than function types because:
// 1. It allows steps to carry configuration state
// 2. It provides a Name() method for logging and debugging
// 3. It's more extensible for future features (e.g., priority, dependencies)
type Step interface {
	// Do executes the pipeline step.
	// It receives the context for cancellation, and the run state to modify.
	// Returns an error only for run-level faults; a cancelled crawl is not
	// an error (the step records it in the summary instead).
	Do(ctx context.Context, run *Run) error

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
}

// Option is a function that configures a Pipeline.
// This follows the functional options pattern for clean API design.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
// If not set, a default logger is created.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// New creates a new Pipeline with the given options.
// Steps should be added using AddStep after creation.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		steps: make([]Step, 0),
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

// Execute runs all pipeline steps in sequence, stopping on the first
// step error.
//
// Design decision: Execute does not abort between steps on context
// cancellation. The crawl step handles cancellation itself and reports an
// interrupted summary, and the summarize step must still run afterwards so
// the operator sees the partial counts. Steps that perform I/O observe the
// context on their own.
func (p *Pipeline) Execute(ctx context.Context, run *Run) error {
	for _, step := range p.steps {
		p.logger.Info("executing step",
			slog.String("step", step.Name()),
			slog.String("run_id", run.RunID))

		if err := step.Do(ctx, run); err != nil {
			p.logger.Error("step failed",
				slog.String("step", step.Name()),
				slog.String("run_id", run.RunID),
				slog.Any("error", err))
			return err
		}

		p.logger.Debug("step completed", slog.String("step", step.Name()))
		run.StepsRun = append(run.StepsRun, step.Name())
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
