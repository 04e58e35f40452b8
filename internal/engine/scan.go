package engine

import (
	"strings"

	"github.com/mirrorlink/mirrorlink/internal/model"
)

// ScanIssues runs extraction and resolution without rewriting anything and
// classifies every irregularity. Documents are not mutated; the returned
// report is the only output.
//
// Classification:
//   - invalid_link: an extracted reference whose normalized target does
//     not correspond to any document identifier present in either tree.
//     Membership is checked case-insensitively, matching the weak-match
//     comparison, so a casing difference alone is not an invalid link.
//   - mismatched_pair: a resolver claim conflict, or a pairing whose four
//     flag slots (each side's own and cross flag) all disagree with the
//     expected values while at least one of them is present.
//   - unmatched_document: a resolver leftover on either side.
func (e *Engine) ScanIssues(primary, secondary []*model.Document) (*model.DiagnosticsReport, error) {
	res, err := e.Resolve(primary, secondary)
	if err != nil {
		return nil, err
	}

	report := model.NewDiagnosticsReport()
	report.PrimaryDocuments = len(primary)
	report.SecondaryDocuments = len(secondary)
	for _, pair := range res.Pairings {
		if pair.Strength == model.StrengthStrong {
			report.StrongPairs++
		} else {
			report.WeakPairs++
		}
	}

	known := make(map[string]bool, len(primary)+len(secondary))
	for _, doc := range primary {
		known[strings.ToLower(doc.Name)] = true
	}
	for _, doc := range secondary {
		known[strings.ToLower(doc.Name)] = true
	}

	e.scanInvalidLinks(report, known, primary)
	e.scanInvalidLinks(report, known, secondary)

	for _, issue := range res.Conflicts {
		report.AddIssue(issue)
	}
	for _, pair := range res.Pairings {
		e.scanMismatchedPair(report, pair)
	}

	for _, doc := range res.UnmatchedPrimary {
		report.AddIssue(model.Issue{
			Type:     model.IssueUnmatchedDocument,
			Tree:     model.TreePrimary,
			Document: doc.Name,
			Detail:   "no resolvable counterpart in the secondary tree",
		})
	}
	for _, doc := range res.UnmatchedSecondary {
		report.AddIssue(model.Issue{
			Type:     model.IssueUnmatchedDocument,
			Tree:     model.TreeSecondary,
			Document: doc.Name,
			Detail:   "no resolvable counterpart in the primary tree",
		})
	}

	return report, nil
}

// scanInvalidLinks flags every extracted reference whose target resolves
// to no known identifier. Documents are visited in supplied order and
// categories in a fixed order, keeping the report deterministic.
func (e *Engine) scanInvalidLinks(report *model.DiagnosticsReport, known map[string]bool, docs []*model.Document) {
	categories := []model.Category{
		model.CategoryCanonical,
		model.CategoryFlagPrimary,
		model.CategoryFlagSecondary,
	}
	for _, doc := range docs {
		for _, category := range categories {
			ref := doc.Links.ByCategory(category)
			if ref == nil {
				continue
			}
			name, _, ok := e.norm.TargetName(ref.Target)
			if ok && known[strings.ToLower(name)] {
				continue
			}
			target := name
			if !ok {
				target = e.norm.Clean(ref.Target)
			}
			report.AddIssue(model.Issue{
				Type:     model.IssueInvalidLink,
				Tree:     doc.Tree,
				Document: doc.Name,
				Category: category,
				Target:   target,
				Detail:   "target does not resolve to a document in either tree",
			})
		}
	}
}

// scanMismatchedPair checks the four flag slots of a pairing against
// their expected targets. Full four-slot disagreement is one
// mismatched_pair finding for the pair, not two unmatched documents.
func (e *Engine) scanMismatchedPair(report *model.DiagnosticsReport, pair model.Pairing) {
	type slot struct {
		ref      *model.LinkRef
		expected string
	}
	slots := []slot{
		{pair.Primary.Links.Own(model.TreePrimary), pair.Primary.Name},
		{pair.Primary.Links.Cross(model.TreePrimary), pair.Secondary.Name},
		{pair.Secondary.Links.Own(model.TreeSecondary), pair.Secondary.Name},
		{pair.Secondary.Links.Cross(model.TreeSecondary), pair.Primary.Name},
	}

	present, matching := 0, 0
	for _, s := range slots {
		if s.ref == nil {
			continue
		}
		present++
		if name, _, ok := e.norm.TargetName(s.ref.Target); ok && EquivalentName(name, s.expected) {
			matching++
		}
	}

	if present > 0 && matching == 0 {
		report.AddIssue(model.Issue{
			Type:        model.IssueMismatchedPair,
			Tree:        model.TreePrimary,
			Document:    pair.Primary.Name,
			Counterpart: pair.Secondary.Name,
			Detail:      "flag links share no common resolvable target",
		})
	}
}
