package config

import (
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
)

// Default configuration values.
// These mirror the conventions of the document trees this tool was built
// for; every one of them can be overridden via CLI flags or the
// .mirrorlink file.
const (
	// DefaultSecondarySegment is the path segment that distinguishes the
	// secondary tree's URLs from the primary tree's.
	DefaultSecondarySegment = "en"

	// DefaultExtension is the filename extension for documents.
	DefaultExtension = ".html"

	// DefaultPrimaryToken is the flag-code attribute value marking the
	// link to a document's primary-tree version.
	DefaultPrimaryToken = "+40"

	// DefaultSecondaryToken is the flag-code attribute value marking the
	// link to a document's secondary-tree version.
	DefaultSecondaryToken = "+1"

	// DefaultConcurrency is the number of mirror pairs processed in
	// parallel when scanning all configured mirrors. One worker per pair;
	// each pair's repair passes stay strictly sequential.
	DefaultConcurrency = 4

	// AppName is the application name used for XDG directory paths.
	AppName = "mirrorlink"
)

// Config holds all configuration options for mirrorlink.
// This struct is designed to be populated from CLI flags and passed through
// the application via dependency injection rather than global state.
//
// Design decision: We use a single flat struct instead of nested structs
// (e.g., TreeConfig, ReportConfig) for simplicity. The number of options
// is manageable, and nesting would add complexity without significant benefit.
type Config struct {
	// PrimaryDir is the directory holding the primary document tree.
	PrimaryDir string

	// SecondaryDir is the directory holding the secondary document tree.
	SecondaryDir string

	// BaseURL is the site root that canonical URLs are composed under,
	// without a trailing slash (e.g. "https://example.com").
	BaseURL string

	// SecondarySegment is the path segment under BaseURL that secondary
	// tree URLs carry (e.g. "en" for https://example.com/en/page.html).
	SecondarySegment string

	// Extension is the filename extension documents carry.
	Extension string

	// PrimaryToken is the flag-code value marking primary-tree flag links.
	PrimaryToken string

	// SecondaryToken is the flag-code value marking secondary-tree flag links.
	SecondaryToken string

	// DryRun makes repair compute and report fixes without writing any file.
	DryRun bool

	// BackupSuffix, when non-empty, keeps a copy of each file under
	// name+suffix before the repaired version replaces it.
	BackupSuffix string

	// MirrorName selects a named mirror pair from the .mirrorlink file.
	// Mutually exclusive with positional tree directories.
	MirrorName string

	// AllMirrors processes every mirror pair configured in the
	// .mirrorlink file.
	AllMirrors bool

	// Concurrency is the number of mirror pairs processed in parallel
	// when AllMirrors is set.
	Concurrency int

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches for .mirrorlink in the current directory
	// and then in the user's home directory.
	ConfigFilePath string

	// Mirrors holds the named mirror pairs loaded from the config file.
	// This is populated by LoadConfigFile.
	Mirrors *File

	// JSONReport enables JSON report output instead of human-readable format.
	// Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport enables Markdown report output instead of
	// human-readable format. Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for the report.
	// When set, the report is written to this file instead of stdout.
	ReportFile string

	// DBDir is the directory path for storing the SQLite run database.
	// When set, run results are saved for historical comparison.
	// Defaults to the XDG data directory when persistence is requested.
	DBDir string

	// SaveToDB indicates whether to save run results to the database.
	SaveToDB bool
}

// NewConfig creates a new Config with default values.
// All fields are set to safe, sensible defaults that work for most use cases.
// Users can override specific values after creation.
//
// Design decision: We use a constructor function instead of relying on
// zero values because most defaults are non-zero (segment, extension,
// flag tokens). This also serves as documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		SecondarySegment: DefaultSecondarySegment,
		Extension:        DefaultExtension,
		PrimaryToken:     DefaultPrimaryToken,
		SecondaryToken:   DefaultSecondaryToken,
		Concurrency:      DefaultConcurrency,
	}
}

// ApplyMirror fills tree and convention fields from a named mirror pair.
// Values already set on the Config (from CLI flags) win over the mirror's.
func (c *Config) ApplyMirror(m Mirror) {
	if c.PrimaryDir == "" {
		c.PrimaryDir = m.Primary
	}
	if c.SecondaryDir == "" {
		c.SecondaryDir = m.Secondary
	}
	if c.BaseURL == "" {
		c.BaseURL = m.BaseURL
	}
	if m.Segment != "" && c.SecondarySegment == DefaultSecondarySegment {
		c.SecondarySegment = m.Segment
	}
	if m.Extension != "" && c.Extension == DefaultExtension {
		c.Extension = m.Extension
	}
	if m.PrimaryToken != "" && c.PrimaryToken == DefaultPrimaryToken {
		c.PrimaryToken = m.PrimaryToken
	}
	if m.SecondaryToken != "" && c.SecondaryToken == DefaultSecondaryToken {
		c.SecondaryToken = m.SecondaryToken
	}
}

// XDGDataDir returns the XDG data directory for mirrorlink.
// On Linux: ~/.local/share/mirrorlink
// On macOS: ~/Library/Application Support/mirrorlink
// On Windows: %LOCALAPPDATA%\mirrorlink
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for mirrorlink.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns a specific error describing what is invalid.
//
// Design decision: We validate at the config level rather than at each
// point of use to fail fast and provide clear error messages upfront.
// This is called once after CLI parsing, before any tree is touched.
// The first error found is returned rather than collecting all errors
// because fixing one error often makes others irrelevant.
func (c *Config) Validate() error {
	haveDirs := c.PrimaryDir != "" || c.SecondaryDir != ""
	if haveDirs && (c.PrimaryDir == "" || c.SecondaryDir == "") {
		return ErrIncompleteTreePair
	}
	if !haveDirs && c.MirrorName == "" && !c.AllMirrors {
		return ErrNoTrees
	}

	// BaseURL can still come from a mirror entry; require it only when
	// the trees were given directly.
	if haveDirs && c.BaseURL == "" {
		return ErrMissingBaseURL
	}
	if c.BaseURL != "" && !strings.Contains(c.BaseURL, "://") {
		return ErrInvalidBaseURL
	}

	if !strings.HasPrefix(c.Extension, ".") {
		return ErrInvalidExtension
	}
	if c.PrimaryToken == "" || c.SecondaryToken == "" {
		return ErrEmptyFlagToken
	}
	if c.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	return nil
}
