package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages. Using errors.New() here rather than fmt.Errorf()
// because we don't need to include dynamic values in these messages.
var (
	// ErrNoTrees is returned when neither tree directories nor a mirror
	// selection is specified.
	ErrNoTrees = errors.New("no trees specified: provide primary and secondary directories or use --mirror / --all")

	// ErrIncompleteTreePair is returned when only one of the two tree
	// directories is specified.
	ErrIncompleteTreePair = errors.New("incomplete tree pair: both primary and secondary directories are required")

	// ErrMissingBaseURL is returned when tree directories are given
	// directly but no base URL is configured. Canonical URLs cannot be
	// composed without it.
	ErrMissingBaseURL = errors.New("missing base URL: provide --base-url or configure the mirror pair")

	// ErrInvalidBaseURL is returned when the base URL lacks a scheme.
	ErrInvalidBaseURL = errors.New("invalid base URL: must include a scheme (e.g. https://)")

	// ErrInvalidExtension is returned when the document extension does not
	// start with a dot.
	ErrInvalidExtension = errors.New("invalid extension: must start with '.'")

	// ErrEmptyFlagToken is returned when either flag token is empty.
	// Empty tokens would make the flag link patterns match nothing.
	ErrEmptyFlagToken = errors.New("invalid flag tokens: primary and secondary tokens must be non-empty")

	// ErrInvalidConcurrency is returned when the mirror concurrency is not
	// positive. Zero workers would mean no mirror is ever processed.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be positive")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified. Only one output format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrMirrorNotFound is returned when a named mirror pair is not present
	// in the configuration file.
	ErrMirrorNotFound = errors.New("mirror pair not found in configuration file")
)
