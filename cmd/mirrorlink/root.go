package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for mirrorlink.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mirrorlink",
		Short: "Pairing and repair tool for mirrored document trees",
		Long: `mirrorlink reconciles the self-referential links of two mirrored
document trees. Each document carries a canonical link and a pair of
flag links pointing at its own URL and at its counterpart in the other
tree; mirrorlink pairs the trees, reports broken or contradictory
links, and rewrites them to their canonical form.

Mirror pairs can be given as positional directories or configured by
name in a .mirrorlink file. Use 'mirrorlink init' to create one.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().StringP("config", "c", "",
		"Configuration file path (default: .mirrorlink in current or home directory)")

	// Add subcommands
	cmd.AddCommand(NewScanCmd())
	cmd.AddCommand(NewRepairCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
