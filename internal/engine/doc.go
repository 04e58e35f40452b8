// Package engine implements the pairing-and-repair core of mirrorlink.
//
// The engine receives two ordered document lists (one per mirror tree) from
// its collaborators and never touches the filesystem itself. It extracts
// the three self-referential link constructs from each document, resolves
// which primary document corresponds to which secondary document, rewrites
// links to match that decision, and classifies everything that could not
// be resolved.
//
// Design decision: Malformed or missing links are treated as data, not
// faults. Every irregularity short of a caller contract violation (such as
// duplicate identifiers within one tree) degrades to a diagnostic finding
// instead of an error, so a single broken document never aborts a run.
package engine
