package engine

import (
	"github.com/mirrorlink/mirrorlink/internal/model"
)

// splice rewrites one link target in place using the reference's byte
// span. It returns true when the target actually differs; a no-op rewrite
// never counts as a fix. In dry-run mode the change is counted but the
// body is left byte-identical.
func splice(doc *model.Document, ref *model.LinkRef, newTarget string, dryRun bool) bool {
	if ref == nil || ref.Target == newTarget {
		return false
	}
	if !dryRun {
		doc.Body = doc.Body[:ref.Start] + newTarget + doc.Body[ref.End:]
		doc.Changed = true
	}
	return true
}

// RepairCanonicals rewrites every document's canonical link to the
// expected canonical form composed from its own identifier. Paired and
// unpaired documents are treated alike; the canonical link asserts a
// document's own identity and needs no counterpart. Returns the number of
// documents whose canonical actually changed.
func (e *Engine) RepairCanonicals(docs []*model.Document, dryRun bool) int {
	fixes, _ := e.repairCanonicals(docs, dryRun)
	return fixes
}

func (e *Engine) repairCanonicals(docs []*model.Document, dryRun bool) (int, []string) {
	fixes := 0
	var changed []string
	for _, doc := range docs {
		e.Extract(doc)
		expected := e.norm.CanonicalURL(doc.Tree, doc.Name)
		if splice(doc, doc.Links.Canonical, expected, dryRun) {
			fixes++
			changed = append(changed, doc.Ref())
		}
	}
	return fixes, changed
}

// RepairFlags forces every document's own-tree flag link to its freshly
// computed canonical value. This keeps the two self-identifying constructs
// in sync even for documents without a resolved pair. Returns the number
// of documents whose own flag actually changed.
func (e *Engine) RepairFlags(docs []*model.Document, dryRun bool) int {
	fixes, _ := e.repairFlags(docs, dryRun)
	return fixes
}

func (e *Engine) repairFlags(docs []*model.Document, dryRun bool) (int, []string) {
	fixes := 0
	var changed []string
	for _, doc := range docs {
		e.Extract(doc)
		expected := e.norm.CanonicalURL(doc.Tree, doc.Name)
		if splice(doc, doc.Links.Own(doc.Tree), expected, dryRun) {
			fixes++
			changed = append(changed, doc.Ref())
		}
	}
	return fixes, changed
}

// RepairCrossReferences points each paired document's cross flag at its
// counterpart's canonical value, in both directions. Unpaired documents
// have no counterpart to point to; they are counted in skipped rather
// than silently dropped, so callers can tell "no change needed" apart
// from "no pairing available".
func (e *Engine) RepairCrossReferences(res *Resolution, dryRun bool) (fixes, skipped int) {
	fixes, skipped, _ = e.repairCrossReferences(res, dryRun)
	return fixes, skipped
}

func (e *Engine) repairCrossReferences(res *Resolution, dryRun bool) (int, int, []string) {
	fixes := 0
	var changed []string
	for _, pair := range res.Pairings {
		e.Extract(pair.Primary)
		expected := e.norm.CanonicalURL(model.TreeSecondary, pair.Secondary.Name)
		if splice(pair.Primary, pair.Primary.Links.Cross(model.TreePrimary), expected, dryRun) {
			fixes++
			changed = append(changed, pair.Primary.Ref())
		}

		e.Extract(pair.Secondary)
		expected = e.norm.CanonicalURL(model.TreePrimary, pair.Primary.Name)
		if splice(pair.Secondary, pair.Secondary.Links.Cross(model.TreeSecondary), expected, dryRun) {
			fixes++
			changed = append(changed, pair.Secondary.Ref())
		}
	}

	skipped := len(res.UnmatchedPrimary) + len(res.UnmatchedSecondary)
	return fixes, skipped, changed
}

// RepairAll runs the three repair passes in order: canonical, own flag,
// cross-reference. The passes touch disjoint link slots, so each is
// idempotent on its own and the whole sequence is idempotent: a second
// run over already-repaired trees produces zero additional changes.
//
// The pairing is resolved once from the initial link state; the canonical
// and flag passes do not alter cross flags, so the resolution stays valid
// across all three passes.
func (e *Engine) RepairAll(primary, secondary []*model.Document, dryRun bool) (*model.RepairReport, error) {
	res, err := e.Resolve(primary, secondary)
	if err != nil {
		return nil, err
	}

	report := model.NewRepairReport(dryRun)
	all := make([]*model.Document, 0, len(primary)+len(secondary))
	all = append(all, primary...)
	all = append(all, secondary...)

	fixes, changed := e.repairCanonicals(all, dryRun)
	report.CanonicalFixes = fixes
	for _, ref := range changed {
		report.AddChanged(ref)
	}

	fixes, changed = e.repairFlags(all, dryRun)
	report.FlagFixes = fixes
	for _, ref := range changed {
		report.AddChanged(ref)
	}

	fixes, skipped, changed := e.repairCrossReferences(res, dryRun)
	report.CrossReferenceFixes = fixes
	report.SkippedNoPairing = skipped
	for _, ref := range changed {
		report.AddChanged(ref)
	}

	return report, nil
}
