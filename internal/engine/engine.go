package engine

import (
	"regexp"

	"github.com/mirrorlink/mirrorlink/internal/model"
)

// Default wire-format values. The flag tokens are the dial codes the
// original site embeds in its language switcher; both are caller-tunable
// because the engine is parameterized over arbitrary tree pairs.
const (
	// DefaultExtension is the document file extension.
	DefaultExtension = ".html"

	// DefaultPrimaryToken is the code token of the primary tree's flag link.
	DefaultPrimaryToken = "+40"

	// DefaultSecondaryToken is the code token of the secondary tree's flag link.
	DefaultSecondaryToken = "+1"
)

// Markers delimiting the flags section inside a document body. Flag links
// are only recognized between these two comments; the same anchor markup
// elsewhere in the page is navigation, not identity.
const (
	flagsOpenMarker  = "<!-- FLAGS_1 -->"
	flagsCloseMarker = "<!-- FLAGS -->"
)

// flagCodeAttr is the attribute carrying the flag code token.
const flagCodeAttr = "cunt_code"

// canonicalPattern matches the canonical identity link. The capture group
// is the href value.
var canonicalPattern = regexp.MustCompile(`<link rel="canonical" href="([^"]*)"\s*/?>`)

// Engine is the pairing-and-repair core. It is configured once per run
// with the site root, the secondary tree segment, and the two flag tokens;
// there is no process-wide default for any of them.
type Engine struct {
	norm *Normalizer

	primaryFlagRe   *regexp.Regexp
	secondaryFlagRe *regexp.Regexp
}

// Option configures an Engine.
type Option func(*settings)

// settings collects the optional Engine parameters before compilation.
type settings struct {
	ext            string
	primaryToken   string
	secondaryToken string
}

// WithExtension overrides the document file extension (default ".html").
// The extension drives duplicate-suffix collapsing during normalization.
func WithExtension(ext string) Option {
	return func(s *settings) {
		if ext != "" {
			s.ext = ext
		}
	}
}

// WithFlagTokens overrides the code tokens identifying the primary and
// secondary flag links (defaults "+40" and "+1").
func WithFlagTokens(primary, secondary string) Option {
	return func(s *settings) {
		if primary != "" {
			s.primaryToken = primary
		}
		if secondary != "" {
			s.secondaryToken = secondary
		}
	}
}

// New creates an Engine for the given site root and secondary tree
// segment. The flag patterns are compiled once here and reused for every
// document; the escaped and unescaped forms of a token are one alternation
// in the same pattern rather than two matching attempts.
func New(baseURL, secondarySegment string, opts ...Option) *Engine {
	s := settings{
		ext:            DefaultExtension,
		primaryToken:   DefaultPrimaryToken,
		secondaryToken: DefaultSecondaryToken,
	}
	for _, opt := range opts {
		opt(&s)
	}

	return &Engine{
		norm:            NewNormalizer(baseURL, secondarySegment, s.ext),
		primaryFlagRe:   compileFlagPattern(s.primaryToken),
		secondaryFlagRe: compileFlagPattern(s.secondaryToken),
	}
}

// compileFlagPattern builds the tolerant pattern for one flag token.
// A single optional backslash before the token accepts both the escaped
// and unescaped forms the original documents carry; both are treated
// identically. The capture group is the href value.
func compileFlagPattern(token string) *regexp.Regexp {
	return regexp.MustCompile(
		`<li><a ` + flagCodeAttr + `="(?:\\)?` + regexp.QuoteMeta(token) + `" href="([^"]*)"`)
}

// Normalizer exposes the engine's normalizer to collaborators that need
// canonical URL composition, such as report writers.
func (e *Engine) Normalizer() *Normalizer {
	return e.norm
}

// indexByName builds the identifier index for one tree, failing fast on a
// duplicate identifier because a duplicate breaks the resolver's
// one-to-one invariant and would pair non-deterministically.
func indexByName(docs []*model.Document, tree model.Tree) (map[string]*model.Document, error) {
	idx := make(map[string]*model.Document, len(docs))
	for _, doc := range docs {
		if _, exists := idx[doc.Name]; exists {
			return nil, duplicateIdentifierError(doc.Name, tree)
		}
		idx[doc.Name] = doc
	}
	return idx, nil
}
