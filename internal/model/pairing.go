package model

// Strength records how confident the resolver is in a pairing.
type Strength int

const (
	// StrengthStrong means both documents' flag links point at each other.
	StrengthStrong Strength = iota

	// StrengthWeak means the pairing rests on case-insensitive identifier
	// equality because the flag links did not mutually agree.
	StrengthWeak
)

// String returns the lowercase strength name.
func (s Strength) String() string {
	if s == StrengthStrong {
		return "strong"
	}
	return "weak"
}

// Pairing is the resolved one-to-one correspondence between a primary-tree
// document and a secondary-tree document. A document appears in at most one
// pairing; the resolver enforces this by consuming both sides when a
// pairing is taken.
type Pairing struct {
	// Primary is the primary-tree document.
	Primary *Document

	// Secondary is the secondary-tree document.
	Secondary *Document

	// Strength records which resolution rule produced the pairing.
	Strength Strength
}

// Counterpart returns the paired document from the other tree relative to
// doc. Returns nil if doc is not part of this pairing.
func (p Pairing) Counterpart(doc *Document) *Document {
	switch doc {
	case p.Primary:
		return p.Secondary
	case p.Secondary:
		return p.Primary
	default:
		return nil
	}
}
