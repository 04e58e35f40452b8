package model

import "encoding/json"

// IssueType classifies a diagnostic finding produced by the issue scanner.
type IssueType int

const (
	// IssueInvalidLink marks an extracted link whose normalized target
	// does not resolve to any document in either tree.
	IssueInvalidLink IssueType = iota

	// IssueMismatchedPair marks two documents that should pair but whose
	// flag links share no common resolvable target, or a document whose
	// claimed counterpart already belongs to another pairing.
	IssueMismatchedPair

	// IssueUnmatchedDocument marks a document with no resolvable
	// counterpart in the other tree.
	IssueUnmatchedDocument
)

// String returns the serialized issue type name.
func (t IssueType) String() string {
	switch t {
	case IssueInvalidLink:
		return "invalid_link"
	case IssueMismatchedPair:
		return "mismatched_pair"
	case IssueUnmatchedDocument:
		return "unmatched_document"
	default:
		return "unknown"
	}
}

// MarshalJSON serializes the issue type as its string name.
func (t IssueType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON parses the issue type from its string name.
func (t *IssueType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch s {
	case IssueMismatchedPair.String():
		*t = IssueMismatchedPair
	case IssueUnmatchedDocument.String():
		*t = IssueUnmatchedDocument
	default:
		*t = IssueInvalidLink
	}
	return nil
}

// Issue is one diagnostic finding. Issues are produced by the scanner and
// never mutate documents.
type Issue struct {
	// Type is the issue classification.
	Type IssueType `json:"type"`

	// Tree is the tree owning the document the issue was found in.
	Tree Tree `json:"tree"`

	// Document is the identifier of the affected document.
	Document string `json:"document"`

	// Category is the link category that triggered the issue.
	// Only set for IssueInvalidLink.
	Category Category `json:"category,omitempty"`

	// Target is the offending link target, normalized for comparison.
	// Only set for IssueInvalidLink and IssueMismatchedPair.
	Target string `json:"target,omitempty"`

	// Counterpart is the other document involved in a mismatched pair.
	Counterpart string `json:"counterpart,omitempty"`

	// Detail is a human-readable explanation.
	Detail string `json:"detail,omitempty"`
}

// Key returns a stable identity for the issue, used by the history command
// to diff two runs (new vs. resolved findings).
func (i Issue) Key() string {
	return i.Type.String() + "|" + i.Tree.String() + "|" + i.Document +
		"|" + i.Category.String() + "|" + i.Target
}
