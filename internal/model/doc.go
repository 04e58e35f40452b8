// Package model defines the core data structures for mirrorlink.
// It contains the document, link, pairing, issue, and report types shared
// by the engine, the report writers, and the run database.
package model
