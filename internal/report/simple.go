package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/mirrorlink/mirrorlink/internal/model"
)

// SimpleWriter outputs human-readable text reports.
// This format is designed for terminal display with clear section
// formatting.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors by default because:
// 1. It works in all terminals without compatibility issues
// 2. It's easier to pipe to files or other tools
// 3. Color can be added as an option later if needed
type SimpleWriter struct {
	baseWriter

	// showEmpty controls whether sections with no findings are shown.
	showEmpty bool

	// verbose enables additional detail in the output.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty configures the writer to show empty sections.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the diagnostics report in human-readable format.
func (w *SimpleWriter) Write(report *model.DiagnosticsReport) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, "MIRRORLINK SCAN REPORT")
	w.writeScanInfo(&sb, report)
	w.writeSummary(&sb, report)
	w.writeIssues(&sb, report)
	w.writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

// WriteRepair outputs the repair report in human-readable format.
func (w *SimpleWriter) WriteRepair(report *model.RepairReport) (int, error) {
	var sb strings.Builder

	title := "MIRRORLINK REPAIR REPORT"
	if report.DryRun {
		title = "MIRRORLINK REPAIR REPORT (DRY RUN)"
	}
	w.writeHeader(&sb, title)

	sb.WriteString(fmt.Sprintf("Date:           %s\n", report.Date.Format("2006-01-02 15:04:05 MST")))
	sb.WriteString("\n")

	w.writeSectionRule(&sb, "FIXES")
	sb.WriteString(fmt.Sprintf("  Canonical:        %d\n", report.CanonicalFixes))
	sb.WriteString(fmt.Sprintf("  Flags:            %d\n", report.FlagFixes))
	sb.WriteString(fmt.Sprintf("  Cross-references: %d\n", report.CrossReferenceFixes))
	sb.WriteString(fmt.Sprintf("  Skipped (no pairing): %d\n", report.SkippedNoPairing))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("  TOTAL:            %d fixes\n", report.TotalFixes()))
	sb.WriteString("\n")

	if len(report.ChangedDocuments) > 0 || w.showEmpty {
		w.writeSectionRule(&sb, "CHANGED DOCUMENTS")
		if len(report.ChangedDocuments) == 0 {
			sb.WriteString("  No documents changed\n")
		}
		for _, ref := range report.ChangedDocuments {
			sb.WriteString(fmt.Sprintf("  [*] %s\n", ref))
		}
		sb.WriteString("\n")
	}

	if report.Diagnostics != nil {
		w.writeSummary(&sb, report.Diagnostics)
		w.writeIssues(&sb, report.Diagnostics)
	}

	w.writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the banner with the given title.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, title string) {
	pad := (70 - len(title)) / 2
	if pad < 0 {
		pad = 0
	}
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat(" ", pad) + title + "\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")
}

// writeScanInfo writes the tree and pairing overview.
func (w *SimpleWriter) writeScanInfo(sb *strings.Builder, report *model.DiagnosticsReport) {
	sb.WriteString(fmt.Sprintf("Scan Date:           %s\n", report.DateScanned.Format("2006-01-02 15:04:05 MST")))
	sb.WriteString(fmt.Sprintf("Primary Documents:   %d\n", report.PrimaryDocuments))
	sb.WriteString(fmt.Sprintf("Secondary Documents: %d\n", report.SecondaryDocuments))
	sb.WriteString(fmt.Sprintf("Pairs:               %d strong, %d weak\n", report.StrongPairs, report.WeakPairs))
	sb.WriteString("\n")
}

// writeSummary writes the issue summary section.
func (w *SimpleWriter) writeSummary(sb *strings.Builder, report *model.DiagnosticsReport) {
	w.writeSectionRule(sb, "ISSUE SUMMARY")

	sb.WriteString(fmt.Sprintf("  INVALID LINKS:       %d\n", report.InvalidLinks))
	sb.WriteString(fmt.Sprintf("  MISMATCHED PAIRS:    %d\n", report.MismatchedPairs))
	sb.WriteString(fmt.Sprintf("  UNMATCHED DOCUMENTS: %d\n", report.UnmatchedDocuments))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("  TOTAL:               %d issues\n", report.TotalIssues()))
	sb.WriteString("\n")
}

// writeIssues writes all issues grouped by type.
func (w *SimpleWriter) writeIssues(sb *strings.Builder, report *model.DiagnosticsReport) {
	if !report.HasIssues() && !w.showEmpty {
		return
	}

	w.writeSectionRule(sb, "ISSUES")

	for _, t := range issueOrder {
		issues := issuesOfType(report.Issues, t)
		if len(issues) == 0 && !w.showEmpty {
			continue
		}
		w.writeIssuesForType(sb, t, issues)
	}
}

// writeIssuesForType writes issues of a specific type.
func (w *SimpleWriter) writeIssuesForType(sb *strings.Builder, t model.IssueType, issues []model.Issue) {
	sb.WriteString(fmt.Sprintf("[%s] %s\n", w.typeIndicator(t), t.String()))

	if len(issues) == 0 {
		sb.WriteString("  No issues\n\n")
		return
	}

	for _, issue := range issues {
		sb.WriteString(fmt.Sprintf("  * %s/%s\n", issue.Tree, issue.Document))
		if issue.Target != "" {
			sb.WriteString(fmt.Sprintf("    Target: %s\n", issue.Target))
		}
		if issue.Counterpart != "" {
			sb.WriteString(fmt.Sprintf("    Counterpart: %s\n", issue.Counterpart))
		}
		if w.verbose && issue.Detail != "" {
			sb.WriteString(fmt.Sprintf("    Detail: %s\n", issue.Detail))
		}
	}
	sb.WriteString("\n")
}

// typeIndicator returns a visual indicator for the issue type.
func (w *SimpleWriter) typeIndicator(t model.IssueType) string {
	switch t {
	case model.IssueInvalidLink:
		return "!!"
	case model.IssueMismatchedPair:
		return "!"
	case model.IssueUnmatchedDocument:
		return "-"
	default:
		return "?"
	}
}

// writeSectionRule writes a dashed section heading.
func (w *SimpleWriter) writeSectionRule(sb *strings.Builder, title string) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString(title + "\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")
}

// writeFooter writes the report footer.
func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("Report generated by mirrorlink\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}
