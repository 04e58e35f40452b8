package main

import (
	"fmt"
	"log/slog"

	"github.com/mirrorlink/mirrorlink/internal/pipeline"
	"github.com/spf13/cobra"
)

// NewRepairCmd creates the repair command.
func NewRepairCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repair [primary-dir secondary-dir]",
		Short: "Rewrite inconsistent links in two mirrored trees",
		Long: `Repair rewrites the self-referential links of two mirrored trees to
their canonical form, in three passes:

1. canonical: every document's canonical link is recomposed from its
   own identifier
2. flags: every document's own-tree flag link is forced to the same
   canonical value
3. cross: paired documents' cross flags are pointed at each other;
   documents without a resolved counterpart are skipped and counted

All passes run by default; selecting any pass flag runs only the
selected ones. Changed documents are rewritten in place via an atomic
rename; use --backup-suffix to keep the previous version.

Examples:
  # Preview what would change, without writing anything
  mirrorlink repair --dry-run --mirror docs

  # Repair two tree directories, keeping .bak copies
  mirrorlink repair --base-url https://example.com --backup-suffix .bak ./site ./site/en

  # Run only the cross-reference pass, then scan the result
  mirrorlink repair --cross --scan --mirror docs

  # Repair every configured mirror pair
  mirrorlink repair --all`,
		Args: cobra.MaximumNArgs(2),
		RunE: runRepairCmd,
	}

	addTreeFlags(cmd)
	addReportFlags(cmd)

	cmd.Flags().BoolP("dry-run", "n", false,
		"Count fixes without modifying any file")
	cmd.Flags().StringP("backup-suffix", "B", "",
		"Keep a copy of each rewritten file under name+suffix (e.g. .bak)")
	cmd.Flags().Bool("canonical", false,
		"Run the canonical link pass")
	cmd.Flags().Bool("flags", false,
		"Run the own-flag pass")
	cmd.Flags().Bool("cross", false,
		"Run the cross-reference pass")
	cmd.Flags().BoolP("scan", "S", false,
		"Scan the trees after repairing and attach the findings to the report")

	return cmd
}

// runRepairCmd executes the repair command.
func runRepairCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	cfg.DryRun, err = cmd.Flags().GetBool("dry-run")
	if err != nil {
		return err
	}

	cfg.BackupSuffix, err = cmd.Flags().GetString("backup-suffix")
	if err != nil {
		return err
	}

	canonical, err := cmd.Flags().GetBool("canonical")
	if err != nil {
		return err
	}
	flags, err := cmd.Flags().GetBool("flags")
	if err != nil {
		return err
	}
	cross, err := cmd.Flags().GetBool("cross")
	if err != nil {
		return err
	}
	scan, err := cmd.Flags().GetBool("scan")
	if err != nil {
		return err
	}

	// No pass selected means all passes.
	if !canonical && !flags && !cross {
		canonical, flags, cross = true, true, true
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cfg)
	slog.SetDefault(logger)

	ctx, cancel := signalContext(logger)
	defer cancel()

	return runTrees(ctx, cfg, logger, func() []pipeline.Step {
		return pipeline.RepairSteps(logger, canonical, flags, cross, scan)
	})
}
