package engine

import (
	"testing"

	"github.com/mirrorlink/mirrorlink/internal/model"
)

// TestScanCleanTrees tests that fully consistent trees produce no issues.
func TestScanCleanTrees(t *testing.T) {
	t.Parallel()

	e := New(testBaseURL, "en")
	primary := []*model.Document{primaryDoc("a.html", "a.html", "b.html")}
	secondary := []*model.Document{secondaryDoc("b.html", "b.html", "a.html")}

	report, err := e.ScanIssues(primary, secondary)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.HasIssues() {
		t.Errorf("expected no issues, got %v", report.Issues)
	}
	if report.StrongPairs != 1 {
		t.Errorf("expected 1 strong pair, got %d", report.StrongPairs)
	}
	if report.PrimaryDocuments != 1 || report.SecondaryDocuments != 1 {
		t.Error("expected document counts to be recorded")
	}
}

// TestScanWeakPairNoUnmatched tests that a case-differing pair resolves
// weakly and is not reported as unmatched.
func TestScanWeakPairNoUnmatched(t *testing.T) {
	t.Parallel()

	e := New(testBaseURL, "en")
	primary := []*model.Document{primaryDoc("report.html", "report.html", "resultt.html")}
	secondary := []*model.Document{secondaryDoc("Report.html", "Report.html", "report.html")}

	report, err := e.ScanIssues(primary, secondary)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.UnmatchedDocuments != 0 {
		t.Errorf("expected zero unmatched documents, got %d", report.UnmatchedDocuments)
	}
	if report.WeakPairs != 1 {
		t.Errorf("expected 1 weak pair, got %d", report.WeakPairs)
	}
}

// TestScanInvalidLink tests that a cross-link to an absent name yields
// exactly one invalid_link finding for that document.
func TestScanInvalidLink(t *testing.T) {
	t.Parallel()

	e := New(testBaseURL, "en")
	primary := []*model.Document{primaryDoc("a.html", "a.html", "missing.html")}
	secondary := []*model.Document{secondaryDoc("b.html", "b.html", "a.html")}

	report, err := e.ScanIssues(primary, secondary)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.InvalidLinks != 1 {
		t.Fatalf("expected exactly 1 invalid link, got %d", report.InvalidLinks)
	}

	var found *model.Issue
	for i := range report.Issues {
		if report.Issues[i].Type == model.IssueInvalidLink {
			found = &report.Issues[i]
			break
		}
	}
	if found == nil {
		t.Fatal("expected an invalid_link issue")
	}
	if found.Document != "a.html" || found.Target != "missing.html" {
		t.Errorf("unexpected issue: %+v", found)
	}
	if found.Category != model.CategoryFlagSecondary {
		t.Errorf("expected the cross-flag category, got %v", found.Category)
	}
}

// TestScanMismatchedPair tests that full four-slot flag disagreement is
// classified as exactly one mismatched_pair, not two unmatched documents.
func TestScanMismatchedPair(t *testing.T) {
	t.Parallel()

	e := New(testBaseURL, "en")
	// Equivalent names force a weak pairing; every flag slot points at a
	// name that matches no expectation.
	primary := []*model.Document{primaryDoc("page.html", "elsewhere.html", "somewhere.html")}
	secondary := []*model.Document{secondaryDoc("Page.html", "nowhere.html", "anywhere.html")}

	report, err := e.ScanIssues(primary, secondary)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.MismatchedPairs != 1 {
		t.Errorf("expected exactly 1 mismatched pair, got %d", report.MismatchedPairs)
	}
	if report.UnmatchedDocuments != 0 {
		t.Errorf("expected zero unmatched documents, got %d", report.UnmatchedDocuments)
	}
}

// TestScanPartialAgreementIsNotMismatch tests that one agreeing slot is
// enough to keep a pairing out of the mismatched class.
func TestScanPartialAgreementIsNotMismatch(t *testing.T) {
	t.Parallel()

	e := New(testBaseURL, "en")
	// Own flags are correct; only the cross flags disagree.
	primary := []*model.Document{primaryDoc("page.html", "page.html", "somewhere.html")}
	secondary := []*model.Document{secondaryDoc("Page.html", "Page.html", "anywhere.html")}

	report, err := e.ScanIssues(primary, secondary)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.MismatchedPairs != 0 {
		t.Errorf("expected no mismatched pairs, got %d", report.MismatchedPairs)
	}
}

// TestScanUnmatchedDocument tests leftovers on both sides.
func TestScanUnmatchedDocument(t *testing.T) {
	t.Parallel()

	e := New(testBaseURL, "en")
	primary := []*model.Document{primaryDoc("alone.html", "alone.html", "")}
	secondary := []*model.Document{secondaryDoc("orphan.html", "orphan.html", "")}

	report, err := e.ScanIssues(primary, secondary)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.UnmatchedDocuments != 2 {
		t.Fatalf("expected 2 unmatched documents, got %d", report.UnmatchedDocuments)
	}
}

// TestScanDoesNotMutate tests that scanning never rewrites a body.
func TestScanDoesNotMutate(t *testing.T) {
	t.Parallel()

	e := New(testBaseURL, "en")
	primary := []*model.Document{primaryDoc("a.html", "broken.html", "missing.html")}
	secondary := []*model.Document{secondaryDoc("b.html", "also-broken.html", "gone.html")}

	before := []string{primary[0].Body, secondary[0].Body}

	if _, err := e.ScanIssues(primary, secondary); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if primary[0].Body != before[0] || secondary[0].Body != before[1] {
		t.Error("expected scan to leave bodies untouched")
	}
	if primary[0].Changed || secondary[0].Changed {
		t.Error("expected scan to leave change flags untouched")
	}
}
