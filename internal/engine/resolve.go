package engine

import (
	"github.com/mirrorlink/mirrorlink/internal/model"
)

// Resolution is the outcome of pairing the two trees: the resolved
// pairings, the leftovers on both sides, and the conflicts encountered
// while claiming counterparts. It is built fresh each run and never
// persisted.
type Resolution struct {
	// Pairings holds the resolved one-to-one correspondences in the
	// order their primary documents were supplied.
	Pairings []model.Pairing

	// UnmatchedPrimary lists primary documents with no counterpart,
	// in supplied order.
	UnmatchedPrimary []*model.Document

	// UnmatchedSecondary lists secondary documents with no counterpart,
	// in supplied order.
	UnmatchedSecondary []*model.Document

	// Conflicts records documents whose claimed counterpart was already
	// consumed by an earlier pairing. The earlier claim wins per the
	// supplied ordering; the loser is classified here and falls through
	// to weak matching.
	Conflicts []model.Issue
}

// Resolve determines which document in the primary tree corresponds to
// which document in the secondary tree.
//
// Priority order per candidate:
//  1. Strong match: the primary document's cross flag resolves to the
//     secondary document's identifier AND the secondary document's cross
//     flag resolves back to the primary's identifier (mutual agreement,
//     exact case). Consumes both documents.
//  2. Weak match among leftovers: exact case-insensitive identifier
//     equality. Fuzzier similarity heuristics are deliberately not
//     applied.
//  3. Everything else is unmatched.
//
// Determinism comes entirely from the caller-supplied ordering; the
// resolver iterates the input slices, never map iteration order.
// Duplicate identifiers within one tree fail fast with
// ErrDuplicateIdentifier.
func (e *Engine) Resolve(primary, secondary []*model.Document) (*Resolution, error) {
	if _, err := indexByName(primary, model.TreePrimary); err != nil {
		return nil, err
	}
	secIdx, err := indexByName(secondary, model.TreeSecondary)
	if err != nil {
		return nil, err
	}

	for _, doc := range primary {
		e.Extract(doc)
	}
	for _, doc := range secondary {
		e.Extract(doc)
	}

	res := &Resolution{}
	consumed := make(map[*model.Document]bool)
	claimedBy := make(map[*model.Document]*model.Document)

	// Rule 1: mutual flag agreement.
	for _, p := range primary {
		cross := p.Links.Cross(model.TreePrimary)
		if cross == nil {
			continue
		}
		name, _, ok := e.norm.TargetName(cross.Target)
		if !ok {
			continue
		}
		s := secIdx[name]
		if s == nil {
			continue
		}
		if consumed[s] {
			owner := claimedBy[s]
			issue := model.Issue{
				Type:        model.IssueMismatchedPair,
				Tree:        model.TreePrimary,
				Document:    p.Name,
				Target:      name,
				Counterpart: s.Name,
				Detail:      "claimed counterpart already paired with " + owner.Name,
			}
			res.Conflicts = append(res.Conflicts, issue)
			continue
		}

		back := s.Links.Cross(model.TreeSecondary)
		if back == nil {
			continue
		}
		backName, _, ok := e.norm.TargetName(back.Target)
		if !ok || !SameName(backName, p.Name) {
			continue
		}

		res.Pairings = append(res.Pairings, model.Pairing{
			Primary:   p,
			Secondary: s,
			Strength:  model.StrengthStrong,
		})
		consumed[p] = true
		consumed[s] = true
		claimedBy[s] = p
	}

	// Rule 2: case-insensitive identifier equality among leftovers.
	for _, p := range primary {
		if consumed[p] {
			continue
		}
		for _, s := range secondary {
			if consumed[s] || !EquivalentName(p.Name, s.Name) {
				continue
			}
			res.Pairings = append(res.Pairings, model.Pairing{
				Primary:   p,
				Secondary: s,
				Strength:  model.StrengthWeak,
			})
			consumed[p] = true
			consumed[s] = true
			break
		}
	}

	// Rule 3: leftovers.
	for _, p := range primary {
		if !consumed[p] {
			res.UnmatchedPrimary = append(res.UnmatchedPrimary, p)
		}
	}
	for _, s := range secondary {
		if !consumed[s] {
			res.UnmatchedSecondary = append(res.UnmatchedSecondary, s)
		}
	}

	return res, nil
}
