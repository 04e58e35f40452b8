package model

import "encoding/json"

// Category identifies one of the three self-referential link constructs
// embedded in every document.
type Category int

const (
	// CategoryCanonical is the <link rel="canonical"> construct asserting
	// the document's own URL.
	CategoryCanonical Category = iota

	// CategoryFlagPrimary is the flag link naming the document's
	// primary-tree counterpart (its own URL for primary documents).
	CategoryFlagPrimary

	// CategoryFlagSecondary is the flag link naming the document's
	// secondary-tree counterpart (its own URL for secondary documents).
	CategoryFlagSecondary
)

// String returns the serialized category name.
func (c Category) String() string {
	switch c {
	case CategoryCanonical:
		return "canonical"
	case CategoryFlagPrimary:
		return "flag_primary"
	case CategoryFlagSecondary:
		return "flag_secondary"
	default:
		return "unknown"
	}
}

// MarshalJSON serializes the category as its string name.
func (c Category) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// UnmarshalJSON parses the category from its string name.
func (c *Category) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch s {
	case CategoryFlagPrimary.String():
		*c = CategoryFlagPrimary
	case CategoryFlagSecondary.String():
		*c = CategoryFlagSecondary
	default:
		*c = CategoryCanonical
	}
	return nil
}

// LinkRef is a located occurrence of one link category in a document body.
// Start and End are the byte offsets of the href value, so a repair pass
// can splice a replacement in place without re-parsing the document.
type LinkRef struct {
	// Category is the link category this reference belongs to.
	Category Category

	// Target is the raw href value exactly as it appears in the body.
	Target string

	// Start is the byte offset of the first byte of Target in the body.
	Start int

	// End is the byte offset one past the last byte of Target.
	End int
}

// LinkSet holds the extracted references for one document.
// Any field may be nil: absence of a category is valid partial extraction,
// not an error. A document with no flag links is still a pairing candidate
// through canonical and name matching.
type LinkSet struct {
	// Canonical is the canonical identity link, if present.
	Canonical *LinkRef

	// FlagPrimary is the primary-tree flag link, if present.
	FlagPrimary *LinkRef

	// FlagSecondary is the secondary-tree flag link, if present.
	FlagSecondary *LinkRef
}

// ByCategory returns the reference for the given category, or nil.
func (s LinkSet) ByCategory(c Category) *LinkRef {
	switch c {
	case CategoryCanonical:
		return s.Canonical
	case CategoryFlagPrimary:
		return s.FlagPrimary
	case CategoryFlagSecondary:
		return s.FlagSecondary
	default:
		return nil
	}
}

// Own returns the flag reference that identifies the document's own tree.
func (s LinkSet) Own(tree Tree) *LinkRef {
	if tree == TreePrimary {
		return s.FlagPrimary
	}
	return s.FlagSecondary
}

// Cross returns the flag reference that points at the document's
// counterpart in the other tree.
func (s LinkSet) Cross(tree Tree) *LinkRef {
	if tree == TreePrimary {
		return s.FlagSecondary
	}
	return s.FlagPrimary
}
