// Package loader reads and writes document trees on the local filesystem.
//
// The reconciliation engine operates on in-memory documents and never touches
// the filesystem itself. This package supplies the boundary: listing a tree
// directory in deterministic order, reading bodies with a tolerant encoding
// fallback, and writing changed documents back atomically.
//
// Design decision: Reads tolerate legacy encodings but writes always emit
// UTF-8. Mirrored trees accumulate files saved by different editors over the
// years, so the read path tries UTF-8 first and then the common single-byte
// codepages. Once a document passes through a repair, normalizing its
// encoding is a feature, not a loss.
package loader
