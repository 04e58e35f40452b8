package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/mirrorlink/mirrorlink/internal/config"
	"github.com/mirrorlink/mirrorlink/internal/database"
	"github.com/mirrorlink/mirrorlink/internal/engine"
	"github.com/mirrorlink/mirrorlink/internal/loader"
	"github.com/mirrorlink/mirrorlink/internal/log"
	"github.com/mirrorlink/mirrorlink/internal/pipeline"
	"github.com/mirrorlink/mirrorlink/internal/report"
	"github.com/spf13/cobra"
)

// defaultMirrorName labels runs on trees given as positional directories,
// so that database history stays queryable without a .mirrorlink file.
const defaultMirrorName = "default"

// NewScanCmd creates the scan command.
func NewScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan [primary-dir secondary-dir]",
		Short: "Scan two mirrored trees for link inconsistencies",
		Long: `Scan pairs the documents of two mirrored trees and reports every link
inconsistency without modifying any file.

It finds:
- Invalid links whose target resolves to no document in either tree
- Mismatched pairs whose flag links contradict each other
- Unmatched documents with no counterpart in the other tree

Examples:
  # Scan two tree directories
  mirrorlink scan --base-url https://example.com ./site ./site/en

  # Scan a mirror pair configured in .mirrorlink
  mirrorlink scan --mirror docs

  # Scan every configured mirror pair concurrently
  mirrorlink scan --all

  # Output JSON report to a file
  mirrorlink scan --mirror docs --json --output report.json

Configuration file (.mirrorlink) example:
  defaults:
    baseURL: "https://example.com"
  mirrors:
    docs:
      primary: "/srv/www/docs"
      secondary: "/srv/www/docs/en"
    blog:
      primary: "/srv/www/blog"
      secondary: "/srv/www/blog/en"
      segment: "english"`,
		Args: cobra.MaximumNArgs(2),
		RunE: runScanCmd,
	}

	addTreeFlags(cmd)
	addReportFlags(cmd)

	return cmd
}

// addTreeFlags registers the flags selecting trees and link conventions.
// Shared between scan and repair.
func addTreeFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("base-url", "u", "",
		"Site root canonical URLs are composed under (e.g. https://example.com)")
	cmd.Flags().StringP("segment", "s", config.DefaultSecondarySegment,
		"URL path segment of the secondary tree")
	cmd.Flags().StringP("ext", "e", config.DefaultExtension,
		"Document filename extension")
	cmd.Flags().String("primary-token", config.DefaultPrimaryToken,
		"Flag code marking the primary tree's flag link")
	cmd.Flags().String("secondary-token", config.DefaultSecondaryToken,
		"Flag code marking the secondary tree's flag link")

	cmd.Flags().StringP("mirror", "M", "",
		"Named mirror pair from the configuration file")
	cmd.Flags().BoolP("all", "a", false,
		"Process every mirror pair in the configuration file")
	cmd.Flags().IntP("concurrency", "b", config.DefaultConcurrency,
		"Number of mirror pairs processed concurrently with --all")
}

// addReportFlags registers the report output flags.
// Shared between scan and repair.
func addReportFlags(cmd *cobra.Command) {
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")
	cmd.Flags().Bool("no-save", false,
		"Do not record this run in the history database")
	cmd.Flags().String("db-dir", "",
		"Directory of the history database (default: XDG data directory)")
}

// runScanCmd executes the scan command.
func runScanCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cfg)
	slog.SetDefault(logger)

	ctx, cancel := signalContext(logger)
	defer cancel()

	return runTrees(ctx, cfg, logger, func() []pipeline.Step {
		return pipeline.ScanSteps(logger)
	})
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from cobra command flags and positional
// tree directories.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	if len(args) == 2 {
		cfg.PrimaryDir = args[0]
		cfg.SecondaryDir = args[1]
	} else if len(args) == 1 {
		return nil, errors.New("either both tree directories or none must be given")
	}

	var err error

	cfg.BaseURL, err = cmd.Flags().GetString("base-url")
	if err != nil {
		return nil, err
	}

	cfg.SecondarySegment, err = cmd.Flags().GetString("segment")
	if err != nil {
		return nil, err
	}

	cfg.Extension, err = cmd.Flags().GetString("ext")
	if err != nil {
		return nil, err
	}

	cfg.PrimaryToken, err = cmd.Flags().GetString("primary-token")
	if err != nil {
		return nil, err
	}

	cfg.SecondaryToken, err = cmd.Flags().GetString("secondary-token")
	if err != nil {
		return nil, err
	}

	cfg.MirrorName, err = cmd.Flags().GetString("mirror")
	if err != nil {
		return nil, err
	}

	cfg.AllMirrors, err = cmd.Flags().GetBool("all")
	if err != nil {
		return nil, err
	}

	cfg.Concurrency, err = cmd.Flags().GetInt("concurrency")
	if err != nil {
		return nil, err
	}

	cfg.Verbose = getVerboseFlag(cmd)

	cfg.ConfigFilePath, err = cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return nil, err
	}

	// Load named mirror pairs from the config file. An explicitly given
	// path must exist; the default lookup silently yields an empty set.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		cfg.Mirrors, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	} else if explicitConfigPath {
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	} else {
		cfg.Mirrors = &config.File{
			Mirrors: make(map[string]config.Mirror),
		}
	}

	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}

	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	cfg.ReportFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	noSave, err := cmd.Flags().GetBool("no-save")
	if err != nil {
		return nil, err
	}
	cfg.SaveToDB = !noSave

	cfg.DBDir, err = cmd.Flags().GetString("db-dir")
	if err != nil {
		return nil, err
	}
	if cfg.DBDir == "" {
		cfg.DBDir = config.XDGDataDir()
	}

	return cfg, nil
}

// setupLogger creates a structured logger based on the configuration.
// Document paths in log attributes are shortened relative to the primary
// tree so that repeated entries stay readable.
func setupLogger(cfg *config.Config) *slog.Logger {
	opts := []log.CompactOption{}
	if cfg.PrimaryDir != "" {
		opts = append(opts, log.WithRoot(cfg.PrimaryDir))
	}
	return log.NewCompactLogger(os.Stderr, cfg.Verbose, opts...)
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(logger *slog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return ctx, cancel
}

// mirrorRun is one mirror pair resolved to a runnable configuration.
type mirrorRun struct {
	name string
	cfg  *config.Config
}

// resolveMirrorRuns expands the configuration into the list of mirror
// pairs to process: the positional pair, one named pair, or every
// configured pair.
func resolveMirrorRuns(cfg *config.Config) ([]mirrorRun, error) {
	if cfg.AllMirrors {
		names := cfg.Mirrors.Names()
		if len(names) == 0 {
			return nil, errors.New("no mirror pairs configured (use 'mirrorlink init' to create a .mirrorlink file)")
		}
		runs := make([]mirrorRun, 0, len(names))
		for _, name := range names {
			run, err := resolveNamedMirror(cfg, name)
			if err != nil {
				return nil, err
			}
			runs = append(runs, run)
		}
		return runs, nil
	}

	if cfg.MirrorName != "" {
		run, err := resolveNamedMirror(cfg, cfg.MirrorName)
		if err != nil {
			return nil, err
		}
		return []mirrorRun{run}, nil
	}

	return []mirrorRun{{name: defaultMirrorName, cfg: cfg}}, nil
}

// resolveNamedMirror merges a named mirror pair into a copy of the
// configuration and validates the result.
func resolveNamedMirror(cfg *config.Config, name string) (mirrorRun, error) {
	m, ok := cfg.Mirrors.GetMirror(name)
	if !ok {
		return mirrorRun{}, fmt.Errorf("%w: %s", config.ErrMirrorNotFound, name)
	}

	clone := *cfg
	clone.MirrorName = name
	clone.ApplyMirror(m)

	if err := clone.Validate(); err != nil {
		return mirrorRun{}, fmt.Errorf("mirror %s: %w", name, err)
	}
	if clone.PrimaryDir == "" || clone.SecondaryDir == "" {
		return mirrorRun{}, fmt.Errorf("mirror %s: %w", name, config.ErrIncompleteTreePair)
	}
	if clone.BaseURL == "" {
		return mirrorRun{}, fmt.Errorf("mirror %s: %w", name, config.ErrMissingBaseURL)
	}

	return mirrorRun{name: name, cfg: &clone}, nil
}

// newEngine builds the pairing engine for one resolved mirror pair.
func newEngine(cfg *config.Config) *engine.Engine {
	return engine.New(cfg.BaseURL, cfg.SecondarySegment,
		engine.WithExtension(cfg.Extension),
		engine.WithFlagTokens(cfg.PrimaryToken, cfg.SecondaryToken),
	)
}

// newLoader builds the document loader for one resolved mirror pair.
func newLoader(cfg *config.Config) *loader.Loader {
	opts := []loader.Option{loader.WithExtension(cfg.Extension)}
	if cfg.BackupSuffix != "" {
		opts = append(opts, loader.WithBackupSuffix(cfg.BackupSuffix))
	}
	return loader.New(opts...)
}

// stepFactory builds the step list for one mirror pair's pipeline.
// The steps themselves reach the pair's engine and loader through the
// pipeline state.
type stepFactory func() []pipeline.Step

// runTrees resolves the mirror pairs, runs the pipeline over each, and
// handles report output and history persistence. Multiple pairs run
// concurrently through the batch processor; a failing pair is reported
// but does not stop the others.
func runTrees(ctx context.Context, cfg *config.Config, logger *slog.Logger, steps stepFactory) error {
	runs, err := resolveMirrorRuns(cfg)
	if err != nil {
		return err
	}

	var db *database.RunDB
	if cfg.SaveToDB {
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		logger.Debug("database opened", "dir", cfg.DBDir)
	}

	byName := make(map[string]mirrorRun, len(runs))
	names := make([]string, 0, len(runs))
	for _, run := range runs {
		byName[run.name] = run
		names = append(names, run.name)
	}

	factory := func(mirror string) (*pipeline.Pipeline, *pipeline.State, error) {
		run, ok := byName[mirror]
		if !ok {
			return nil, nil, fmt.Errorf("%w: %s", config.ErrMirrorNotFound, mirror)
		}
		eng := newEngine(run.cfg)
		ldr := newLoader(run.cfg)

		p := pipeline.New(pipeline.WithLogger(logger))
		p.AddSteps(steps()...)

		state := pipeline.NewState(mirror, run.cfg.PrimaryDir, run.cfg.SecondaryDir, eng, ldr)
		state.DryRun = run.cfg.DryRun
		return p, state, nil
	}

	startTime := time.Now()

	var states []*pipeline.State
	if len(runs) > 1 {
		fmt.Printf("Processing %d mirror pairs (concurrency: %d)...\n\n",
			len(runs), cfg.Concurrency)

		bp := pipeline.NewBatchProcessor(factory,
			pipeline.WithConcurrency(cfg.Concurrency),
			pipeline.WithBatchLogger(logger),
		)
		states, err = bp.ProcessBatch(ctx, names)
		if err != nil {
			return err
		}
	} else {
		p, state, err := factory(names[0])
		if err != nil {
			return err
		}
		if err := p.Execute(ctx, state); err != nil {
			return err
		}
		states = []*pipeline.State{state}
	}

	var firstErr error
	for _, state := range states {
		if state.Err != nil {
			fmt.Fprintf(os.Stderr, "Error for %s: %v\n", state.Mirror, state.Err)
			if firstErr == nil {
				firstErr = state.Err
			}
			continue
		}

		if err := outputReport(cfg, state); err != nil {
			logger.Error("report failed", "mirror", state.Mirror, "error", err)
		}
		if err := saveRun(ctx, db, state, logger); err != nil {
			logger.Error("failed to save run", "mirror", state.Mirror, "error", err)
		}
	}

	if len(runs) > 1 {
		fmt.Printf("\nCompleted %d mirror pairs in %s\n",
			len(runs), time.Since(startTime).Round(time.Millisecond))
	}

	return firstErr
}

// outputReport writes the run's report in the requested format. Repair
// runs report the repair outcome; scan-only runs report the diagnostics.
func outputReport(cfg *config.Config, state *pipeline.State) error {
	var output *os.File
	if cfg.ReportFile != "" {
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	} else {
		output = os.Stdout
	}

	var writer report.Writer
	switch {
	case cfg.JSONReport:
		writer = report.NewFullJSONWriter(output, getVersion(), report.WithPrettyPrint())
	case cfg.MarkdownReport:
		writer = report.NewMarkdownWriter(output)
	default:
		writer = report.NewSimpleWriter(output, report.WithVerbose(cfg.Verbose))
	}

	if state.Repair != nil {
		_, err := writer.WriteRepair(state.Repair)
		return err
	}
	if state.Diagnostics != nil {
		_, err := writer.Write(state.Diagnostics)
		return err
	}
	return nil
}

// saveRun records the run and the trees' fingerprints in the database.
// If db is nil, this function is a no-op.
func saveRun(ctx context.Context, db *database.RunDB, state *pipeline.State, logger *slog.Logger) error {
	if db == nil {
		return nil
	}

	var runID int64
	var err error
	switch {
	case state.Repair != nil:
		runID, err = db.SaveRepairRun(ctx, state.Mirror, state.PrimaryDir, state.SecondaryDir, state.Repair)
	case state.Diagnostics != nil:
		runID, err = db.SaveScanRun(ctx, state.Mirror, state.PrimaryDir, state.SecondaryDir, state.Diagnostics)
	default:
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}

	if err := db.SaveFingerprints(ctx, runID, state.Documents()); err != nil {
		return fmt.Errorf("failed to save fingerprints: %w", err)
	}

	logger.Debug("run saved to database", "mirror", state.Mirror, "runID", runID)
	return nil
}
