package engine

import (
	"strings"

	"github.com/mirrorlink/mirrorlink/internal/model"
)

// Normalizer canonicalizes URL and path fragments for comparison and
// composes the expected canonical form of a document.
//
// Normalization never fails: an unrecognizable fragment passes through
// unchanged and is later surfaced as an invalid link by the scanner if it
// does not resolve to a known document.
type Normalizer struct {
	// baseURL is the site root without a trailing slash,
	// e.g. "https://example.com".
	baseURL string

	// segment is the URL path component of the secondary tree, e.g. "en".
	segment string

	// ext is the document file extension including the dot, e.g. ".html".
	ext string
}

// NewNormalizer creates a Normalizer for the given site root and secondary
// tree segment. Trailing slashes on the base URL and surrounding slashes on
// the segment are stripped so composition rules stay uniform.
func NewNormalizer(baseURL, secondarySegment, ext string) *Normalizer {
	return &Normalizer{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		segment: strings.Trim(strings.TrimSpace(secondarySegment), "/"),
		ext:     ext,
	}
}

// Clean strips whitespace and surrounding quotes from a fragment, unifies
// non-breaking spaces and typographic dashes, and collapses an
// accidentally duplicated extension suffix. The file name's case is
// preserved exactly.
func (n *Normalizer) Clean(fragment string) string {
	s := strings.ReplaceAll(fragment, " ", " ")
	s = strings.ReplaceAll(s, "–", "-")
	s = strings.ReplaceAll(s, "—", "-")
	s = strings.TrimSpace(s)
	s = strings.Trim(s, `"'`)
	s = strings.TrimSpace(s)
	return n.CollapseSuffix(s)
}

// CollapseSuffix reduces a repeated extension suffix to a single
// occurrence, e.g. "page.html.html" becomes "page.html". Editors that
// append the extension to an already-complete name produce this pattern.
func (n *Normalizer) CollapseSuffix(name string) string {
	if n.ext == "" {
		return name
	}
	double := n.ext + n.ext
	for strings.HasSuffix(name, double) {
		name = strings.TrimSuffix(name, n.ext)
	}
	return name
}

// CanonicalURL composes the expected canonical form of a document:
// baseURL + "/" + [segment + "/" for the secondary tree] + name.
// The name's original case is kept exactly as read from the directory
// listing; case-sensitive composition is a system invariant.
func (n *Normalizer) CanonicalURL(tree model.Tree, name string) string {
	if tree == model.TreeSecondary && n.segment != "" {
		return n.baseURL + "/" + n.segment + "/" + name
	}
	return n.baseURL + "/" + name
}

// TargetName reduces a link target to a bare document identifier and the
// tree the target claims to live in. Accepted forms are the full canonical
// URL (with tolerated doubled slashes after the host), a root-relative
// path, or a bare file name. ok is false when the fragment points outside
// the configured site or is not a single file name.
func (n *Normalizer) TargetName(fragment string) (name string, tree model.Tree, ok bool) {
	s := n.Clean(fragment)
	if s == "" {
		return "", model.TreePrimary, false
	}

	if i := strings.Index(s, "://"); i >= 0 {
		if !strings.HasPrefix(s, n.baseURL+"/") {
			return "", model.TreePrimary, false
		}
		s = strings.TrimPrefix(s, n.baseURL)
		s = strings.TrimLeft(s, "/")
	} else {
		s = strings.TrimLeft(s, "/")
	}

	tree = model.TreePrimary
	if n.segment != "" && strings.HasPrefix(s, n.segment+"/") {
		tree = model.TreeSecondary
		s = strings.TrimPrefix(s, n.segment+"/")
	}

	s = n.CollapseSuffix(s)
	if s == "" || strings.Contains(s, "/") {
		return "", tree, false
	}
	return s, tree, true
}

// SameName reports whether two identifiers are exactly equal.
// This is the case-sensitive comparison used for strong matching and for
// composing canonical URLs.
func SameName(a, b string) bool {
	return a == b
}

// EquivalentName reports whether two identifiers are equal ignoring case.
// This is the fallback comparison used only for weak matching; the
// rewritten canonical always uses the true stored casing.
func EquivalentName(a, b string) bool {
	return strings.EqualFold(a, b)
}
