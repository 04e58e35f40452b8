// Package log provides compact logging for tree reconciliation runs, built
// on top of the standard slog package.
//
// This package extends slog to provide:
//   - Truncation of oversized attribute values (document bodies can be
//     hundreds of kilobytes; logging them whole makes verbose runs useless)
//   - Relative display of paths under a configured tree root
//   - Configurable log levels with verbose mode support
//
// # Usage
//
//	// Create a compact logger
//	logger := log.NewCompactLogger(os.Stderr, true) // verbose=true
//
//	// Use as a standard slog.Logger
//	logger.Debug("document repaired",
//	    "document", "/very/long/tree/root/page.html", // shown relative to the root
//	    "body", body,                                 // truncated if oversized
//	)
//
//	// Set as default logger
//	slog.SetDefault(logger)
package log
