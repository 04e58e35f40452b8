package engine

import (
	"errors"
	"fmt"

	"github.com/mirrorlink/mirrorlink/internal/model"
)

// Engine contract errors.
//
// Design decision: We use a package-level sentinel error wrapped with the
// offending identifier via fmt.Errorf("%w: ...") rather than a dedicated
// error type. Callers can test with errors.Is() while the message still
// names the exact document that broke the contract.
var (
	// ErrDuplicateIdentifier is returned when one tree contains two
	// documents with the same identifier. Proceeding would make the
	// resolver's one-to-one pairing invariant non-deterministic, so this
	// fails fast instead of degrading to a diagnostic finding.
	ErrDuplicateIdentifier = errors.New("duplicate document identifier")
)

// duplicateIdentifierError wraps ErrDuplicateIdentifier with the offending
// identifier and tree.
func duplicateIdentifierError(name string, tree model.Tree) error {
	return fmt.Errorf("%w: %q appears more than once in the %s tree", ErrDuplicateIdentifier, name, tree)
}
