package main

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mirrorlink/mirrorlink/internal/config"
	"github.com/spf13/cobra"
)

//go:embed templates/mirrorlink.yaml
var configTemplate embed.FS

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new mirrorlink configuration file",
		Long: `Initialize creates a new .mirrorlink configuration file in the current
directory.

The generated file includes:
- A commented skeleton for named mirror pairs
- Defaults shared by every pair
- Documentation for all available options

Examples:
  # Create .mirrorlink in current directory
  mirrorlink init

  # Create config file at a specific path
  mirrorlink init -o myconfig.yaml

  # Force overwrite existing file
  mirrorlink init -f`,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", config.DefaultConfigFile,
		"Output file path for the configuration")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite existing configuration file")

	return cmd
}

// runInitCmd executes the init command.
func runInitCmd(cmd *cobra.Command, _ []string) error {
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}

	if !force {
		if _, err := os.Stat(outputPath); err == nil {
			return fmt.Errorf("configuration file already exists: %s (use -f to overwrite)", outputPath)
		}
	}

	content, err := configTemplate.ReadFile("templates/mirrorlink.yaml")
	if err != nil {
		return fmt.Errorf("failed to read config template: %w", err)
	}

	dir := filepath.Dir(outputPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(outputPath, content, 0600); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}

	fmt.Printf("Created configuration file: %s\n", outputPath)
	fmt.Println("\nEdit this file to configure your mirror pairs:")
	fmt.Println("  - The two tree directories of each pair")
	fmt.Println("  - The base URL canonical links are composed under")
	fmt.Println("  - The URL segment and flag codes, if they differ from the defaults")

	return nil
}
