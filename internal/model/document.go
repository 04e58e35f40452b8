package model

import (
	"encoding/hex"
	"encoding/json"

	"golang.org/x/crypto/sha3"
)

// Tree identifies which of the two mirrored directory trees a document
// belongs to. The primary tree sits at the root of the site URL space;
// the secondary tree lives under a configurable path segment (historically
// "en" for the English mirror of a Romanian site).
type Tree int

const (
	// TreePrimary is the root-level tree.
	TreePrimary Tree = iota

	// TreeSecondary is the tree published under the secondary URL segment.
	TreeSecondary
)

// String returns the lowercase name of the tree.
func (t Tree) String() string {
	switch t {
	case TreePrimary:
		return "primary"
	case TreeSecondary:
		return "secondary"
	default:
		return "unknown"
	}
}

// Other returns the opposite tree.
func (t Tree) Other() Tree {
	if t == TreePrimary {
		return TreeSecondary
	}
	return TreePrimary
}

// MarshalJSON serializes the tree as its string name.
func (t Tree) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON parses the tree from its string name.
// Unknown names default to TreePrimary so that reports written by newer
// versions still load.
func (t *Tree) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == TreeSecondary.String() {
		*t = TreeSecondary
	} else {
		*t = TreePrimary
	}
	return nil
}

// Document is one HTML document read from a mirror tree.
//
// The lifecycle is: read once per run by the loader, link set populated by
// the engine's extractor, body mutated in memory by the repair passes, and
// written back by the loader only if Changed is true and the run is not a
// dry run. Documents are never persisted beyond a run; only their
// fingerprints and the run report go to the database.
type Document struct {
	// Tree is the owning tree.
	Tree Tree `json:"tree"`

	// Name is the file name, case-sensitive. It is the document's
	// identifier throughout the system; canonical URLs are composed from
	// it preserving its exact case.
	Name string `json:"name"`

	// Body is the raw document text, decoded to UTF-8 by the loader.
	Body string `json:"-"`

	// Links is the extracted link set for the current Body.
	// The engine refreshes it before every pass because repairs shift
	// byte offsets.
	Links LinkSet `json:"-"`

	// Changed is true once a repair pass mutated Body.
	Changed bool `json:"changed"`
}

// NewDocument creates a document owned by the given tree.
func NewDocument(tree Tree, name, body string) *Document {
	return &Document{Tree: tree, Name: name, Body: body}
}

// Fingerprint returns the SHA3-256 hash of the current body as a hex
// string. The run database stores fingerprints so that the history command
// can tell which documents changed between two runs.
func (d *Document) Fingerprint() string {
	sum := sha3.Sum256([]byte(d.Body))
	return hex.EncodeToString(sum[:])
}

// Ref returns "tree/name", the form used in reports and logs.
func (d *Document) Ref() string {
	return d.Tree.String() + "/" + d.Name
}
