package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mirrorlink/mirrorlink/internal/model"
)

// LoadStep reads both tree directories into the state.
// It must run before any other step; every later step assumes the
// documents are in memory.
type LoadStep struct {
	// logger for structured logging.
	logger *slog.Logger
}

// NewLoadStep creates a tree loading step.
func NewLoadStep(logger *slog.Logger) *LoadStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoadStep{logger: logger}
}

// Name returns the step name.
func (s *LoadStep) Name() string {
	return "load"
}

// Do reads both trees in lexicographic order.
func (s *LoadStep) Do(_ context.Context, state *State) error {
	primary, err := state.Loader.LoadTree(model.TreePrimary, state.PrimaryDir)
	if err != nil {
		return fmt.Errorf("failed to load primary tree: %w", err)
	}
	secondary, err := state.Loader.LoadTree(model.TreeSecondary, state.SecondaryDir)
	if err != nil {
		return fmt.Errorf("failed to load secondary tree: %w", err)
	}

	state.Primary = primary
	state.Secondary = secondary

	s.logger.Debug("trees loaded",
		"mirror", state.Mirror,
		"primary", len(primary),
		"secondary", len(secondary),
	)
	return nil
}

// ScanStep runs the issue scanner and stores the diagnostics report.
// Scanning never mutates documents, so the step can run before or after
// repair steps; before reports the found state, after reports the result.
type ScanStep struct {
	logger *slog.Logger
}

// NewScanStep creates an issue scanning step.
func NewScanStep(logger *slog.Logger) *ScanStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &ScanStep{logger: logger}
}

// Name returns the step name.
func (s *ScanStep) Name() string {
	return "scan"
}

// Do scans both trees for issues.
func (s *ScanStep) Do(_ context.Context, state *State) error {
	report, err := state.Engine.ScanIssues(state.Primary, state.Secondary)
	if err != nil {
		return fmt.Errorf("failed to scan trees: %w", err)
	}

	state.Diagnostics = report
	if state.Repair != nil {
		state.Repair.Diagnostics = report
	}

	s.logger.Debug("scan complete",
		"mirror", state.Mirror,
		"issues", report.TotalIssues(),
		"strong_pairs", report.StrongPairs,
		"weak_pairs", report.WeakPairs,
	)
	return nil
}

// CanonicalRepairStep rewrites every document's canonical link to the form
// composed from its own identifier.
type CanonicalRepairStep struct {
	logger *slog.Logger
}

// NewCanonicalRepairStep creates the canonical repair step.
func NewCanonicalRepairStep(logger *slog.Logger) *CanonicalRepairStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &CanonicalRepairStep{logger: logger}
}

// Name returns the step name.
func (s *CanonicalRepairStep) Name() string {
	return "repair_canonical"
}

// Do runs the canonical pass over both trees.
func (s *CanonicalRepairStep) Do(_ context.Context, state *State) error {
	report := state.ensureRepair()
	report.CanonicalFixes = state.Engine.RepairCanonicals(state.Documents(), state.DryRun)

	s.logger.Debug("canonical pass complete",
		"mirror", state.Mirror,
		"fixes", report.CanonicalFixes,
	)
	return nil
}

// FlagRepairStep forces every document's own-tree flag link to its
// canonical value.
type FlagRepairStep struct {
	logger *slog.Logger
}

// NewFlagRepairStep creates the flag repair step.
func NewFlagRepairStep(logger *slog.Logger) *FlagRepairStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &FlagRepairStep{logger: logger}
}

// Name returns the step name.
func (s *FlagRepairStep) Name() string {
	return "repair_flags"
}

// Do runs the own-flag pass over both trees.
func (s *FlagRepairStep) Do(_ context.Context, state *State) error {
	report := state.ensureRepair()
	report.FlagFixes = state.Engine.RepairFlags(state.Documents(), state.DryRun)

	s.logger.Debug("flag pass complete",
		"mirror", state.Mirror,
		"fixes", report.FlagFixes,
	)
	return nil
}

// CrossReferenceRepairStep points paired documents' cross flags at each
// other's canonical value. The pairing is resolved on first need; the
// earlier passes never touch cross flags, so resolving here is equivalent
// to resolving up front.
type CrossReferenceRepairStep struct {
	logger *slog.Logger
}

// NewCrossReferenceRepairStep creates the cross-reference repair step.
func NewCrossReferenceRepairStep(logger *slog.Logger) *CrossReferenceRepairStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &CrossReferenceRepairStep{logger: logger}
}

// Name returns the step name.
func (s *CrossReferenceRepairStep) Name() string {
	return "repair_cross"
}

// Do runs the cross-reference pass over the resolved pairings.
func (s *CrossReferenceRepairStep) Do(_ context.Context, state *State) error {
	if err := state.resolve(); err != nil {
		return fmt.Errorf("failed to resolve pairings: %w", err)
	}

	report := state.ensureRepair()
	fixes, skipped := state.Engine.RepairCrossReferences(state.Resolution, state.DryRun)
	report.CrossReferenceFixes = fixes
	report.SkippedNoPairing = skipped

	s.logger.Debug("cross-reference pass complete",
		"mirror", state.Mirror,
		"fixes", fixes,
		"skipped", skipped,
	)
	return nil
}

// WriteBackStep persists changed documents and records them on the repair
// report. In dry-run mode nothing is written; repair passes left bodies
// untouched so there is nothing to persist.
type WriteBackStep struct {
	logger *slog.Logger
}

// NewWriteBackStep creates the write-back step.
func NewWriteBackStep(logger *slog.Logger) *WriteBackStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &WriteBackStep{logger: logger}
}

// Name returns the step name.
func (s *WriteBackStep) Name() string {
	return "write_back"
}

// Do writes changed documents back to their tree directories.
func (s *WriteBackStep) Do(_ context.Context, state *State) error {
	report := state.ensureRepair()
	for _, doc := range state.Documents() {
		if doc.Changed {
			report.AddChanged(doc.Ref())
		}
	}

	if state.DryRun {
		s.logger.Debug("dry run, skipping write-back", "mirror", state.Mirror)
		return nil
	}

	written, err := state.Loader.WriteChanged(state.PrimaryDir, state.Primary)
	state.Written += written
	if err != nil {
		return fmt.Errorf("failed to write primary tree: %w", err)
	}

	written, err = state.Loader.WriteChanged(state.SecondaryDir, state.Secondary)
	state.Written += written
	if err != nil {
		return fmt.Errorf("failed to write secondary tree: %w", err)
	}

	s.logger.Debug("write-back complete",
		"mirror", state.Mirror,
		"written", state.Written,
	)
	return nil
}

// ScanSteps returns the step list for a scan-only run.
func ScanSteps(logger *slog.Logger) []Step {
	return []Step{
		NewLoadStep(logger),
		NewScanStep(logger),
	}
}

// RepairSteps returns the step list for a repair run. Pass selection
// mirrors the repair command's flags; write-back always runs last and is
// a no-op for dry runs.
func RepairSteps(logger *slog.Logger, canonical, flags, cross, scan bool) []Step {
	steps := []Step{NewLoadStep(logger)}
	if canonical {
		steps = append(steps, NewCanonicalRepairStep(logger))
	}
	if flags {
		steps = append(steps, NewFlagRepairStep(logger))
	}
	if cross {
		steps = append(steps, NewCrossReferenceRepairStep(logger))
	}
	steps = append(steps, NewWriteBackStep(logger))
	if scan {
		steps = append(steps, NewScanStep(logger))
	}
	return steps
}
