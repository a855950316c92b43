package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/qsolog/pkg/config"
	"github.com/ccollicutt/qsolog/pkg/parser"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <config-file>",
		Short: "Validate a configuration file",
		Long: `Validate a qsolog configuration file without converting anything.

Checks:
  - YAML syntax
  - Station call sign and grid locator (after environment overrides)
  - Policy and completion settings
  - Band table (no overlapping or inverted ranges)
  - Input file existence (warning only)`,
		Args: cobra.ExactArgs(1),
		RunE: runValidate,
	}
}

func runValidate(cmd *cobra.Command, args []string) error {
	configPath := args[0]
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	w := cmd.OutOrStdout()

	fmt.Fprintf(w, "Validating %s...\n", configPath)

	// Load and validate config
	cfg, err := config.Load(ctx, configPath)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	// Report what we found
	fmt.Fprintf(w, "\nConfiguration valid!\n")
	fmt.Fprintf(w, "  Station:    %s (%s)\n", cfg.Station.Callsign, cfg.Station.Grid)
	fmt.Fprintf(w, "  Output:     %s\n", cfg.Output.Path)
	fmt.Fprintf(w, "  Tracking:   %s\n", cfg.Policy.Tracking)
	fmt.Fprintf(w, "  Ambiguity:  %s\n", cfg.Policy.AmbiguousCorrespondent)
	fmt.Fprintf(w, "  Completion: %v (%s match)\n", cfg.Completion.Markers, cfg.Completion.Match)
	fmt.Fprintf(w, "  Bands:      %d\n", len(cfg.BandTable().Ranges()))
	if cfg.Logbook.Path != "" {
		fmt.Fprintf(w, "  Logbook:    %s (new only: %t)\n", cfg.Logbook.Path, cfg.Logbook.NewOnly)
	}

	reportInputs(w, cfg.Input.Paths)
	return nil
}

// reportInputs lists matched input files; problems are warnings only.
func reportInputs(w io.Writer, patterns []string) {
	files, err := parser.ExpandGlobs(patterns)
	if err != nil {
		fmt.Fprintf(w, "\nWarning: Error expanding input patterns: %v\n", err)
		return
	}

	fmt.Fprintf(w, "\nInput files: %d\n", len(files))
	for _, f := range files {
		if fileExists(f) {
			fmt.Fprintf(w, "  - %s\n", f)
		} else {
			fmt.Fprintf(w, "  - %s (warning: not found)\n", f)
		}
	}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
