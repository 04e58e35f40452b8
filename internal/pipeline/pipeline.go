package pipeline

import (
	"context"
	"log/slog"

	"github.com/mirrorlink/mirrorlink/internal/engine"
	"github.com/mirrorlink/mirrorlink/internal/loader"
	"github.com/mirrorlink/mirrorlink/internal/model"
)

// State carries everything a run over one mirror pair accumulates.
// Steps read what earlier steps produced and add their own results.
type State struct {
	// Mirror is the mirror pair name, empty for ad-hoc directory pairs.
	Mirror string

	// PrimaryDir and SecondaryDir are the tree directories being processed.
	PrimaryDir   string
	SecondaryDir string

	// Engine performs extraction, resolution, scanning and repair.
	Engine *engine.Engine

	// Loader reads and writes the tree directories.
	Loader *loader.Loader

	// Primary and Secondary hold the loaded documents.
	Primary   []*model.Document
	Secondary []*model.Document

	// Resolution is the pairing between the two trees, computed lazily by
	// the first step that needs it.
	Resolution *engine.Resolution

	// Diagnostics is filled by the scan step.
	Diagnostics *model.DiagnosticsReport

	// Repair is filled by the repair steps.
	Repair *model.RepairReport

	// DryRun makes repair steps count fixes without modifying bodies.
	DryRun bool

	// Written is the number of documents written back to disk.
	Written int

	// PerformedSteps lists the names of steps that ran, in order.
	PerformedSteps []string

	// Err records a step failure when the pipeline continues past it.
	Err error
}

// NewState creates a State for one mirror pair.
func NewState(mirror, primaryDir, secondaryDir string, eng *engine.Engine, ldr *loader.Loader) *State {
	return &State{
		Mirror:       mirror,
		PrimaryDir:   primaryDir,
		SecondaryDir: secondaryDir,
		Engine:       eng,
		Loader:       ldr,
	}
}

// Documents returns all loaded documents, primary tree first.
func (s *State) Documents() []*model.Document {
	all := make([]*model.Document, 0, len(s.Primary)+len(s.Secondary))
	all = append(all, s.Primary...)
	all = append(all, s.Secondary...)
	return all
}

// resolve computes the pairing once and caches it on the state.
func (s *State) resolve() error {
	if s.Resolution != nil {
		return nil
	}
	res, err := s.Engine.Resolve(s.Primary, s.Secondary)
	if err != nil {
		return err
	}
	s.Resolution = res
	return nil
}

// ensureRepair initializes the repair report on first use.
func (s *State) ensureRepair() *model.RepairReport {
	if s.Repair == nil {
		s.Repair = model.NewRepairReport(s.DryRun)
	}
	return s.Repair
}

// Step defines the interface that all pipeline steps must implement.
// Steps are executed in sequence, with each step receiving the accumulated
// state from previous steps.
//
// Design decision: We use an interface rather than function types because:
// 1. It allows steps to carry configuration state
// 2. It provides a Name() method for logging and debugging
// 3. It's more extensible for future features (e.g., priority, dependencies)
type Step interface {
	// Do executes the pipeline step.
	// It receives the context for cancellation, and the state to modify.
	// Returns an error if the step fails critically.
	Do(ctx context.Context, state *State) error

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
// This follows the functional options pattern for clean API design.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
// If not set, slog.Default() is used.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithContinueOnError configures the pipeline to continue execution
// even when a step fails. Failed steps are logged and recorded on the
// state, but subsequent steps still execute.
//
// Design decision: This option exists for batch runs where one broken
// mirror pair should not hide results from the others. The default is
// to stop on error because early failures (an unreadable tree) make
// later steps meaningless.
func WithContinueOnError(continueOnError bool) Option {
	return func(p *Pipeline) {
		p.continueOnError = continueOnError
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

// Execute runs all pipeline steps in sequence.
// It respects context cancellation and logs each step's execution.
//
// Design decision: We check context.Done() before each step rather than
// during, because each step is fast relative to a whole run and this
// keeps the state consistent at step boundaries.
//
// Returns the first error encountered if continueOnError is false,
// or nil if all steps complete (errors are recorded on the state).
func (p *Pipeline) Execute(ctx context.Context, state *State) error {
	for _, step := range p.steps {
		select {
		case <-ctx.Done():
			p.logger.Warn("pipeline cancelled",
				"step", step.Name(),
				"mirror", state.Mirror,
				"reason", ctx.Err(),
			)
			return ctx.Err()
		default:
		}

		p.logger.Debug("executing step",
			"step", step.Name(),
			"mirror", state.Mirror,
		)

		if err := step.Do(ctx, state); err != nil {
			p.logger.Error("step failed",
				"step", step.Name(),
				"mirror", state.Mirror,
				"error", err,
			)

			state.Err = err

			if !p.continueOnError {
				return err
			}
		}

		state.PerformedSteps = append(state.PerformedSteps, step.Name())
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
