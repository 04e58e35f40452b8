// Package main provides the entry point for the mirrorlink CLI.
//
// mirrorlink keeps the self-referential links of two mirrored document
// trees consistent. It pairs each document with its counterpart in the
// other tree, reports broken or contradictory links, and rewrites them
// to their canonical form.
//
// Usage:
//
//	mirrorlink scan <primary-dir> <secondary-dir>
//	mirrorlink repair --dry-run <primary-dir> <secondary-dir>
//
// See --help for all available options.
package main

// main is the entry point for mirrorlink.
func main() {
	Execute()
}
