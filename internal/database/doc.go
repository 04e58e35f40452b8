// Package database provides SQLite-based persistence for reconciliation runs.
//
// Every scan or repair run can be saved with its full report and a
// fingerprint of each document it saw. Stored runs power the history
// command: listing past runs, diffing the issues of two runs, and telling
// which documents changed between them.
//
// Design decision: We use modernc.org/sqlite (a pure Go driver) so the
// binary stays CGO-free and cross-compiles cleanly.
package database
