package loader

import "errors"

var (
	// ErrNotDirectory is returned when a tree path exists but is not a directory.
	ErrNotDirectory = errors.New("tree path is not a directory")

	// ErrUndecodableBody is returned when a document body cannot be decoded
	// by any of the fallback encodings.
	ErrUndecodableBody = errors.New("document body could not be decoded")
)
