package main

import (
	"testing"
)

// TestNewRepairCmd tests the repair command's flag surface.
func TestNewRepairCmd(t *testing.T) {
	t.Parallel()

	cmd := NewRepairCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Name() != "repair" {
			t.Errorf("expected name 'repair', got %q", cmd.Name())
		}
	})

	t.Run("has repair flags", func(t *testing.T) {
		t.Parallel()
		for _, name := range []string{
			"dry-run", "backup-suffix", "canonical", "flags", "cross", "scan",
		} {
			if cmd.Flags().Lookup(name) == nil {
				t.Errorf("expected flag %q", name)
			}
		}
	})

	t.Run("has shared tree flags", func(t *testing.T) {
		t.Parallel()
		for _, name := range []string{
			"base-url", "segment", "ext", "primary-token", "secondary-token",
			"mirror", "all", "concurrency",
		} {
			if cmd.Flags().Lookup(name) == nil {
				t.Errorf("expected flag %q", name)
			}
		}
	})

	t.Run("has shared report flags", func(t *testing.T) {
		t.Parallel()
		for _, name := range []string{
			"json", "markdown", "output", "no-save", "db-dir",
		} {
			if cmd.Flags().Lookup(name) == nil {
				t.Errorf("expected flag %q", name)
			}
		}
	})

	t.Run("dry run shorthand", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("dry-run")
		if flag == nil {
			t.Fatal("expected dry-run flag")
		}
		if flag.Shorthand != "n" {
			t.Errorf("expected shorthand 'n', got %q", flag.Shorthand)
		}
	})
}
