package engine

import (
	"strings"

	"github.com/mirrorlink/mirrorlink/internal/model"
)

// Extract refreshes the document's link set from its current body.
// Repair passes splice the body in place, which shifts byte offsets, so
// every pass re-extracts before touching a document.
func (e *Engine) Extract(doc *model.Document) {
	doc.Links = e.ExtractLinks(doc.Body)
}

// ExtractLinks locates the three link categories in a document body.
// At most the first occurrence per category is taken; absence of a
// category yields a nil reference, never an error. Callers must handle
// partial extraction: a document with no flag links is still a valid
// pairing candidate through canonical and name matching.
func (e *Engine) ExtractLinks(body string) model.LinkSet {
	var set model.LinkSet

	if m := canonicalPattern.FindStringSubmatchIndex(body); m != nil {
		set.Canonical = &model.LinkRef{
			Category: model.CategoryCanonical,
			Target:   body[m[2]:m[3]],
			Start:    m[2],
			End:      m[3],
		}
	}

	// Flag links only count inside the flags section.
	start, end, found := flagsSection(body)
	if !found {
		return set
	}
	section := body[start:end]

	if m := e.primaryFlagRe.FindStringSubmatchIndex(section); m != nil {
		set.FlagPrimary = &model.LinkRef{
			Category: model.CategoryFlagPrimary,
			Target:   section[m[2]:m[3]],
			Start:    start + m[2],
			End:      start + m[3],
		}
	}
	if m := e.secondaryFlagRe.FindStringSubmatchIndex(section); m != nil {
		set.FlagSecondary = &model.LinkRef{
			Category: model.CategoryFlagSecondary,
			Target:   section[m[2]:m[3]],
			Start:    start + m[2],
			End:      start + m[3],
		}
	}

	return set
}

// flagsSection returns the byte range between the flags markers.
// The range excludes the markers themselves; found is false when either
// marker is missing or they are out of order.
func flagsSection(body string) (start, end int, found bool) {
	open := strings.Index(body, flagsOpenMarker)
	if open < 0 {
		return 0, 0, false
	}
	start = open + len(flagsOpenMarker)
	rel := strings.Index(body[start:], flagsCloseMarker)
	if rel < 0 {
		return 0, 0, false
	}
	return start, start + rel, true
}
