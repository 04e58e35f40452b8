package report

import (
	"io"

	"github.com/mirrorlink/mirrorlink/internal/model"
)

// Writer defines the interface for report output.
// Implementations write scan and repair results in various formats.
//
// Design decision: We use an interface to allow different output formats
// and destinations. This enables writing to files, stdout, or network
// connections with the same API.
type Writer interface {
	// Write outputs a diagnostics report to the configured destination.
	// Returns the number of bytes written and any error encountered.
	Write(report *model.DiagnosticsReport) (int, error)

	// WriteRepair outputs a repair report, including its embedded
	// diagnostics when present.
	WriteRepair(report *model.RepairReport) (int, error)
}

// MultiWriter writes to multiple Writers simultaneously.
// This is useful for outputting to both terminal and file.
//
// Design decision: We implement this as a separate type rather than
// using io.MultiWriter because our Writer interface is different
// from io.Writer - we write reports, not raw bytes.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the diagnostics report to all configured Writers.
// Returns the total bytes written across all writers.
// Stops on first error encountered.
func (m *MultiWriter) Write(report *model.DiagnosticsReport) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(report)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// WriteRepair outputs the repair report to all configured Writers.
func (m *MultiWriter) WriteRepair(report *model.RepairReport) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.WriteRepair(report)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// issueOrder is the fixed display order for issue types across all writers.
var issueOrder = []model.IssueType{
	model.IssueInvalidLink,
	model.IssueMismatchedPair,
	model.IssueUnmatchedDocument,
}

// issuesOfType filters issues by type, preserving their original order.
func issuesOfType(issues []model.Issue, t model.IssueType) []model.Issue {
	var out []model.Issue
	for _, issue := range issues {
		if issue.Type == t {
			out = append(out, issue)
		}
	}
	return out
}
