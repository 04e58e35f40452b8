package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/mirrorlink/mirrorlink/internal/config"
	"github.com/mirrorlink/mirrorlink/internal/database"
	"github.com/mirrorlink/mirrorlink/internal/model"
	"github.com/mirrorlink/mirrorlink/internal/report"
	"github.com/spf13/cobra"
)

// NewHistoryCmd creates the history command.
// This command inspects past runs stored in the database.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [mirror]",
		Short: "Inspect past scan and repair runs",
		Long: `History lists the scan and repair runs recorded in the database and
compares two of them.

A comparison shows:
- New findings that appeared between the two runs
- Resolved findings that are no longer present
- Documents whose content fingerprint changed between the runs

Runs are recorded automatically by 'mirrorlink scan' and
'mirrorlink repair' unless --no-save is given.

Examples:
  # List all recorded runs
  mirrorlink history

  # List runs for one mirror pair
  mirrorlink history docs

  # Show the full report of one run
  mirrorlink history --run-id 5

  # Compare two runs by ID
  mirrorlink history --diff 5,9

  # Output the comparison in JSON format
  mirrorlink history --diff 5,9 --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().Int64P("run-id", "i", 0,
		"Show the full report of a specific run (use the list to see IDs)")
	cmd.Flags().Int64Slice("diff", nil,
		"Compare two runs by ID (e.g. --diff 5,9)")
	cmd.Flags().BoolP("json", "j", false,
		"Output in JSON format")
	cmd.Flags().String("db-dir", "",
		"Directory of the history database (default: XDG data directory)")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	var mirror string
	if len(args) == 1 {
		mirror = args[0]
	}

	dbDir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return err
	}
	if dbDir == "" {
		dbDir = config.XDGDataDir()
	}

	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}

	runID, err := cmd.Flags().GetInt64("run-id")
	if err != nil {
		return err
	}

	diffIDs, err := cmd.Flags().GetInt64Slice("diff")
	if err != nil {
		return err
	}
	if len(diffIDs) != 0 && len(diffIDs) != 2 {
		return fmt.Errorf("--diff takes exactly two run IDs, got %d", len(diffIDs))
	}

	// Existing databases only; history must not create an empty one.
	opts := database.DefaultOptions()
	opts.CreateIfNotExists = false
	db, err := database.Open(dbDir, opts)
	if err != nil {
		return fmt.Errorf("no run history found (run 'mirrorlink scan' first): %w", err)
	}
	defer db.Close()

	ctx := context.Background()

	if runID > 0 {
		return showRun(ctx, db, runID, jsonOutput)
	}
	if len(diffIDs) == 2 {
		return diffRuns(ctx, db, diffIDs[0], diffIDs[1], jsonOutput)
	}
	return listRuns(ctx, db, mirror)
}

// listRuns prints the recorded runs, newest first.
func listRuns(ctx context.Context, db *database.RunDB, mirror string) error {
	runs, err := db.ListRuns(ctx, mirror)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if len(runs) == 0 {
		if mirror != "" {
			fmt.Printf("No runs found for mirror %s\n", mirror)
		} else {
			fmt.Println("No runs recorded in the database.")
		}
		fmt.Println("\nUse 'mirrorlink scan' to record a run.")
		return nil
	}

	fmt.Printf("Recorded runs (%d):\n\n", len(runs))
	fmt.Printf("  %-6s  %-8s  %-20s  %-12s  %-8s  %s\n",
		"ID", "Mode", "Date", "Mirror", "Issues", "Fixes")
	fmt.Println("  " + strings.Repeat("-", 68))

	for _, meta := range runs {
		fixes := "-"
		if meta.Mode == database.ModeRepair {
			fixes = fmt.Sprintf("%d", meta.TotalFixes)
		}
		fmt.Printf("  %-6d  %-8s  %-20s  %-12s  %-8d  %s\n",
			meta.ID,
			meta.Mode,
			meta.Timestamp.Format("2006-01-02 15:04:05"),
			meta.Mirror,
			meta.TotalIssues(),
			fixes,
		)
	}

	fmt.Println("\nUse 'mirrorlink history --run-id <id>' to see a run's full report.")
	fmt.Println("Use 'mirrorlink history --diff <id>,<id>' to compare two runs.")

	return nil
}

// showRun prints the full stored report of one run.
func showRun(ctx context.Context, db *database.RunDB, id int64, jsonOutput bool) error {
	run, err := db.GetRunByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get run %d: %w", id, err)
	}
	if run == nil {
		return fmt.Errorf("run with ID %d not found", id)
	}

	var writer report.Writer
	if jsonOutput {
		writer = report.NewJSONWriter(os.Stdout, report.WithPrettyPrint())
	} else {
		writer = report.NewSimpleWriter(os.Stdout, report.WithVerbose(true))
	}

	if run.Repair != nil {
		_, err = writer.WriteRepair(run.Repair)
		return err
	}
	if run.Scan != nil {
		_, err = writer.Write(run.Scan)
		return err
	}
	return nil
}

// RunDiff holds the result of comparing two stored runs.
type RunDiff struct {
	// RunA and RunB are the compared run IDs; A is the older side of the
	// comparison as given on the command line.
	RunA int64 `json:"run_a"`
	RunB int64 `json:"run_b"`

	// NewIssues lists findings present in run B but not in run A.
	NewIssues []model.Issue `json:"new_issues,omitempty"`

	// ResolvedIssues lists findings present in run A but not in run B.
	ResolvedIssues []model.Issue `json:"resolved_issues,omitempty"`

	// UnchangedCount is the number of findings present in both runs.
	UnchangedCount int `json:"unchanged_count"`

	// ChangedDocuments lists "tree/name" refs whose content fingerprint
	// differs between the runs, including documents present in only one.
	ChangedDocuments []string `json:"changed_documents,omitempty"`
}

// diffRuns compares the findings and fingerprints of two stored runs.
func diffRuns(ctx context.Context, db *database.RunDB, idA, idB int64, jsonOutput bool) error {
	runA, err := db.GetRunByID(ctx, idA)
	if err != nil {
		return fmt.Errorf("failed to get run %d: %w", idA, err)
	}
	if runA == nil {
		return fmt.Errorf("run with ID %d not found", idA)
	}

	runB, err := db.GetRunByID(ctx, idB)
	if err != nil {
		return fmt.Errorf("failed to get run %d: %w", idB, err)
	}
	if runB == nil {
		return fmt.Errorf("run with ID %d not found", idB)
	}

	diff := &RunDiff{RunA: idA, RunB: idB}

	issuesA := make(map[string]model.Issue)
	for _, issue := range runA.Issues() {
		issuesA[issue.Key()] = issue
	}
	issuesB := make(map[string]model.Issue)
	for _, issue := range runB.Issues() {
		issuesB[issue.Key()] = issue
	}

	for _, issue := range runB.Issues() {
		if _, exists := issuesA[issue.Key()]; !exists {
			diff.NewIssues = append(diff.NewIssues, issue)
		}
	}
	for _, issue := range runA.Issues() {
		if _, exists := issuesB[issue.Key()]; exists {
			diff.UnchangedCount++
		} else {
			diff.ResolvedIssues = append(diff.ResolvedIssues, issue)
		}
	}

	diff.ChangedDocuments, err = db.ChangedBetween(ctx, idA, idB)
	if err != nil {
		return fmt.Errorf("failed to compare fingerprints: %w", err)
	}

	if jsonOutput {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(diff)
	}
	return outputDiffText(diff, runA.Meta, runB.Meta)
}

// outputDiffText prints the comparison in human-readable form.
func outputDiffText(diff *RunDiff, metaA, metaB database.RunMetadata) error {
	fmt.Printf("Run comparison: #%d -> #%d\n", diff.RunA, diff.RunB)
	fmt.Println(strings.Repeat("=", 60))

	fmt.Printf("\nRun #%d: %s %s (%d issues)\n",
		metaA.ID, metaA.Mode, metaA.Timestamp.Format("2006-01-02 15:04:05"), metaA.TotalIssues())
	fmt.Printf("Run #%d: %s %s (%d issues)\n",
		metaB.ID, metaB.Mode, metaB.Timestamp.Format("2006-01-02 15:04:05"), metaB.TotalIssues())

	if len(diff.NewIssues) > 0 {
		fmt.Printf("\nNew findings (%d):\n", len(diff.NewIssues))
		for _, issue := range diff.NewIssues {
			printDiffIssue("+", issue)
		}
	}

	if len(diff.ResolvedIssues) > 0 {
		fmt.Printf("\nResolved findings (%d):\n", len(diff.ResolvedIssues))
		for _, issue := range diff.ResolvedIssues {
			printDiffIssue("-", issue)
		}
	}

	if len(diff.NewIssues) == 0 && len(diff.ResolvedIssues) == 0 {
		fmt.Println("\nNo finding changes between the runs.")
	}
	if diff.UnchangedCount > 0 {
		fmt.Printf("\nUnchanged: %d findings\n", diff.UnchangedCount)
	}

	if len(diff.ChangedDocuments) > 0 {
		fmt.Printf("\nChanged documents (%d):\n", len(diff.ChangedDocuments))
		for _, ref := range diff.ChangedDocuments {
			fmt.Printf("  * %s\n", ref)
		}
	}

	return nil
}

// printDiffIssue prints one finding of a run comparison.
func printDiffIssue(sign string, issue model.Issue) {
	fmt.Printf("  [%s] [%s] %s/%s", sign, issue.Type, issue.Tree, issue.Document)
	if issue.Target != "" {
		fmt.Printf(" -> %s", issue.Target)
	}
	fmt.Println()
}
