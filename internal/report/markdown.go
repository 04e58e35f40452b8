package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/mirrorlink/mirrorlink/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the diagnostics report in Markdown format.
func (w *MarkdownWriter) Write(report *model.DiagnosticsReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Mirrorlink Scan Report")
	md.PlainText("")
	w.writeScanInfo(md, report)
	w.writeSummary(md, report)
	w.writeIssues(md, report)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// WriteRepair outputs the repair report in Markdown format.
func (w *MarkdownWriter) WriteRepair(report *model.RepairReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	title := "Mirrorlink Repair Report"
	if report.DryRun {
		title = "Mirrorlink Repair Report (Dry Run)"
	}
	md.H1(title)
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Fix", "Count"},
		Rows: [][]string{
			{"Canonical links", strconv.Itoa(report.CanonicalFixes)},
			{"Flag links", strconv.Itoa(report.FlagFixes)},
			{"Cross-references", strconv.Itoa(report.CrossReferenceFixes)},
			{"Skipped (no pairing)", strconv.Itoa(report.SkippedNoPairing)},
			{"**Total fixes**", "**" + strconv.Itoa(report.TotalFixes()) + "**"},
		},
	})
	md.PlainText("")

	if report.DryRun && report.TotalFixes() > 0 {
		md.Importantf(
			"Dry run: %d fix(es) were counted but no file was modified.",
			report.TotalFixes(),
		)
		md.PlainText("")
	}

	md.H2("Changed Documents")
	md.PlainText("")
	if len(report.ChangedDocuments) == 0 {
		md.PlainText("No documents changed.")
		md.PlainText("")
	} else {
		md.BulletList(report.ChangedDocuments...)
		md.PlainText("")
	}

	if report.Diagnostics != nil {
		w.writeSummary(md, report.Diagnostics)
		w.writeIssues(md, report.Diagnostics)
	}

	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeScanInfo writes the tree and pairing overview table.
func (w *MarkdownWriter) writeScanInfo(md *markdown.Markdown, report *model.DiagnosticsReport) {
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Scan Date", report.DateScanned.Format("2006-01-02 15:04:05 MST")},
			{"Primary Documents", strconv.Itoa(report.PrimaryDocuments)},
			{"Secondary Documents", strconv.Itoa(report.SecondaryDocuments)},
			{"Strong Pairs", strconv.Itoa(report.StrongPairs)},
			{"Weak Pairs", strconv.Itoa(report.WeakPairs)},
		},
	})
	md.PlainText("")
}

// writeSummary writes the issue summary section.
func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, report *model.DiagnosticsReport) {
	md.H2("Issue Summary")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Issue Type", "Count"},
		Rows: [][]string{
			{"🔗 Invalid Links", strconv.Itoa(report.InvalidLinks)},
			{"🔀 Mismatched Pairs", strconv.Itoa(report.MismatchedPairs)},
			{"❓ Unmatched Documents", strconv.Itoa(report.UnmatchedDocuments)},
			{"**Total**", "**" + strconv.Itoa(report.TotalIssues()) + "**"},
		},
	})
	md.PlainText("")

	if report.HasIssues() {
		w.writePieChart(md, report)
	}

	w.writeAlert(md, report)
}

// writePieChart writes a mermaid pie chart for issue distribution.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, report *model.DiagnosticsReport) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Issue Distribution"),
		piechart.WithShowData(true),
	)

	if report.InvalidLinks > 0 {
		chart.LabelAndIntValue("Invalid Links", uint64(report.InvalidLinks))
	}
	if report.MismatchedPairs > 0 {
		chart.LabelAndIntValue("Mismatched Pairs", uint64(report.MismatchedPairs))
	}
	if report.UnmatchedDocuments > 0 {
		chart.LabelAndIntValue("Unmatched Documents", uint64(report.UnmatchedDocuments))
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeAlert writes an appropriate alert based on issue counts.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, report *model.DiagnosticsReport) {
	switch {
	case report.MismatchedPairs > 0:
		md.Warningf(
			"%d pair(s) have disagreeing links. Running repair will rewrite them.",
			report.MismatchedPairs,
		)
	case report.InvalidLinks > 0:
		md.Importantf(
			"%d link(s) point outside the mirror pair and need attention.",
			report.InvalidLinks,
		)
	case report.UnmatchedDocuments > 0:
		md.Notef(
			"%d document(s) have no counterpart in the other tree.",
			report.UnmatchedDocuments,
		)
	default:
		md.Tip("Both trees are fully consistent.")
	}
	md.PlainText("")
}

// writeIssues writes all issues grouped by type.
func (w *MarkdownWriter) writeIssues(md *markdown.Markdown, report *model.DiagnosticsReport) {
	md.H2("Issues")
	md.PlainText("")

	if !report.HasIssues() {
		md.PlainText("No issues detected.")
		md.PlainText("")
		return
	}

	sections := []struct {
		t      model.IssueType
		header string
	}{
		{model.IssueInvalidLink, "### 🔗 Invalid Links"},
		{model.IssueMismatchedPair, "### 🔀 Mismatched Pairs"},
		{model.IssueUnmatchedDocument, "### ❓ Unmatched Documents"},
	}

	for _, section := range sections {
		issues := issuesOfType(report.Issues, section.t)
		if len(issues) == 0 {
			continue
		}

		md.PlainText(section.header)
		md.PlainText("")
		w.writeIssueTable(md, issues)
	}
}

// writeIssueTable writes a table of issues with details.
func (w *MarkdownWriter) writeIssueTable(md *markdown.Markdown, issues []model.Issue) {
	rows := make([][]string, len(issues))
	for i, issue := range issues {
		category := "-"
		if issue.Type == model.IssueInvalidLink {
			category = issue.Category.String()
		}
		target := issue.Target
		if target == "" {
			target = "-"
		}
		counterpart := issue.Counterpart
		if counterpart == "" {
			counterpart = "-"
		}

		rows[i] = []string{
			issue.Tree.String() + "/" + issue.Document,
			category,
			truncateString(target, 50),
			counterpart,
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Document", "Category", "Target", "Counterpart"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainText("*Report generated by mirrorlink*")
}

// truncateString truncates a string to maxLen characters with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
