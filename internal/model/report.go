package model

import "time"

// DiagnosticsReport is the aggregated output of the issue scanner.
// It is built fresh on every run and is the only channel through which
// irregularities reach the caller; the engine never raises on malformed
// link data.
type DiagnosticsReport struct {
	// DateScanned is when the scan was performed.
	DateScanned time.Time `json:"date_scanned"`

	// PrimaryDocuments is the number of documents supplied for the
	// primary tree.
	PrimaryDocuments int `json:"primary_documents"`

	// SecondaryDocuments is the number of documents supplied for the
	// secondary tree.
	SecondaryDocuments int `json:"secondary_documents"`

	// StrongPairs counts pairings taken by mutual flag agreement.
	StrongPairs int `json:"strong_pairs"`

	// WeakPairs counts pairings taken by case-insensitive name equality.
	WeakPairs int `json:"weak_pairs"`

	// Issues lists every finding in deterministic order: the order the
	// documents were supplied in, invalid links first, then mismatched
	// pairs, then unmatched documents.
	Issues []Issue `json:"issues,omitempty"`

	// InvalidLinks is the count of IssueInvalidLink findings.
	InvalidLinks int `json:"invalid_links"`

	// MismatchedPairs is the count of IssueMismatchedPair findings.
	MismatchedPairs int `json:"mismatched_pairs"`

	// UnmatchedDocuments is the count of IssueUnmatchedDocument findings.
	UnmatchedDocuments int `json:"unmatched_documents"`
}

// NewDiagnosticsReport creates an empty report stamped with the current time.
func NewDiagnosticsReport() *DiagnosticsReport {
	return &DiagnosticsReport{DateScanned: time.Now()}
}

// AddIssue appends a finding and updates the per-type counters.
func (r *DiagnosticsReport) AddIssue(issue Issue) {
	r.Issues = append(r.Issues, issue)
	switch issue.Type {
	case IssueInvalidLink:
		r.InvalidLinks++
	case IssueMismatchedPair:
		r.MismatchedPairs++
	case IssueUnmatchedDocument:
		r.UnmatchedDocuments++
	}
}

// TotalIssues returns the number of findings.
func (r *DiagnosticsReport) TotalIssues() int {
	return len(r.Issues)
}

// HasIssues reports whether any finding was recorded.
func (r *DiagnosticsReport) HasIssues() bool {
	return len(r.Issues) > 0
}

// TotalPairs returns the number of resolved pairings.
func (r *DiagnosticsReport) TotalPairs() int {
	return r.StrongPairs + r.WeakPairs
}

// RepairReport aggregates the outcome of the repair passes.
//
// SkippedNoPairing is kept separate from the fix counters so that callers
// can distinguish "no change needed" from "no pairing available": a zero
// cross-reference count with a non-zero skip count means documents were
// left untouched for lack of a counterpart, not because they were correct.
type RepairReport struct {
	// Date is when the repair run started.
	Date time.Time `json:"date"`

	// DryRun is true if bodies were left untouched and only counts were
	// computed.
	DryRun bool `json:"dry_run"`

	// CanonicalFixes counts canonical links actually rewritten.
	CanonicalFixes int `json:"canonical_fixes"`

	// FlagFixes counts own-tree flag links actually rewritten.
	FlagFixes int `json:"flag_fixes"`

	// CrossReferenceFixes counts cross-reference links actually rewritten.
	CrossReferenceFixes int `json:"cross_reference_fixes"`

	// SkippedNoPairing counts documents the cross-reference pass could not
	// touch because they have no resolved counterpart.
	SkippedNoPairing int `json:"skipped_no_pairing"`

	// ChangedDocuments lists "tree/name" refs of documents whose bodies
	// were (or, in a dry run, would have been) modified.
	ChangedDocuments []string `json:"changed_documents,omitempty"`

	// Diagnostics carries the issue scan when the caller requested one
	// alongside the repair.
	Diagnostics *DiagnosticsReport `json:"diagnostics,omitempty"`
}

// NewRepairReport creates an empty repair report stamped with the current time.
func NewRepairReport(dryRun bool) *RepairReport {
	return &RepairReport{Date: time.Now(), DryRun: dryRun}
}

// TotalFixes returns the sum of all fix counters.
func (r *RepairReport) TotalFixes() int {
	return r.CanonicalFixes + r.FlagFixes + r.CrossReferenceFixes
}

// AddChanged records a document as modified, once.
func (r *RepairReport) AddChanged(ref string) {
	for _, existing := range r.ChangedDocuments {
		if existing == ref {
			return
		}
	}
	r.ChangedDocuments = append(r.ChangedDocuments, ref)
}
