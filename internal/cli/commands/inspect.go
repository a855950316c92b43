package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/qsolog/pkg/band"
	"github.com/ccollicutt/qsolog/pkg/config"
	"github.com/ccollicutt/qsolog/pkg/detector"
	"github.com/ccollicutt/qsolog/pkg/parser"
)

// Match rates at or above these are reported as PASS and WARN.
const (
	passMatchRate = 0.9
	warnMatchRate = 0.5
)

// InspectOptions holds command-line options for the inspect command.
type InspectOptions struct {
	Output      string
	Config      string
	SampleSize  int
	Examples    int
	WriteConfig string
	Verbose     bool
}

// DiagnosticResult represents the result of a single inspection check
type DiagnosticResult struct {
	Check    string   `json:"check"`
	Status   string   `json:"status"` // "ok", "warning", "error"
	Message  string   `json:"message"`
	Details  []string `json:"details,omitempty"`
	Suggests []string `json:"suggests,omitempty"`
}

// NewInspectCommand creates the inspect command.
func NewInspectCommand() *cobra.Command {
	opts := &InspectOptions{}

	cmd := &cobra.Command{
		Use:   "inspect <log-file>",
		Short: "Check how well a contact log fits the log grammar",
		Long: `Sample a contact log and report how many lines fit the ALL.TXT grammar,
which bands and modes appear, and examples of lines that will be skipped.

Unmatched lines are compared with known layouts (JTDX, older WSJT-X)
to suggest what went wrong.

Optionally generates a starter config file with --write-config.

Example:
  qsolog inspect ALL.TXT
  qsolog inspect --sample 0 ALL.TXT           # read the whole file
  qsolog inspect -w qsolog.yaml ALL.TXT`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "text", "Output format (text|json)")
	cmd.Flags().StringVarP(&opts.Config, "config", "c", "", "Configuration file (for a custom band table)")
	cmd.Flags().IntVarP(&opts.SampleSize, "sample", "n", detector.DefaultSampleSize, "Number of lines to sample (0 for all)")
	cmd.Flags().IntVarP(&opts.Examples, "examples", "e", detector.DefaultExampleCount, "Number of unmatched lines to show")
	cmd.Flags().StringVarP(&opts.WriteConfig, "write-config", "w", "", "Write starter config to file (will not overwrite)")
	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Show detailed output")

	return cmd
}

func runInspect(cmd *cobra.Command, args []string, opts *InspectOptions) error {
	logFile := args[0]
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if opts.Output != "text" && opts.Output != "json" {
		return fmt.Errorf("unknown output format %q (use text or json)", opts.Output)
	}

	// Check file exists
	if _, err := os.Stat(logFile); os.IsNotExist(err) {
		return fmt.Errorf("log file not found: %s", logFile)
	}

	detectorOpts := []detector.Option{
		detector.WithSampleSize(opts.SampleSize),
		detector.WithExamples(opts.Examples),
	}
	if opts.Config != "" {
		// Only the band table is needed; station details may be unset.
		cfg, err := config.Parse(ctx, opts.Config)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		table, err := band.NewTable(cfg.Bands)
		if err != nil {
			return fmt.Errorf("loading config: bands: %w", err)
		}
		detectorOpts = append(detectorOpts, detector.WithClassifier(parser.NewClassifier(table)))
	}

	d := detector.New(detectorOpts...)
	result, err := d.DetectFromFile(ctx, logFile)
	if err != nil {
		return fmt.Errorf("inspection failed: %w", err)
	}

	// Write config file if requested
	if opts.WriteConfig != "" {
		if err := writeStarterConfig(cmd.OutOrStdout(), result, logFile, opts.WriteConfig); err != nil {
			return err
		}
	}

	checks := inspectChecks(result)

	switch opts.Output {
	case "json":
		return outputInspectJSON(cmd.OutOrStdout(), result, checks, logFile)
	default:
		outputInspectText(cmd.OutOrStdout(), result, checks, logFile, opts)
		return nil
	}
}

// inspectChecks turns an inspection result into pass/warn/fail checks.
func inspectChecks(result *detector.DetectionResult) []DiagnosticResult {
	results := []DiagnosticResult{checkGrammar(result)}

	if unknown := result.Bands[band.Unknown]; unknown > 0 {
		results = append(results, DiagnosticResult{
			Check:   "Bands",
			Status:  "warning",
			Message: fmt.Sprintf("%d line(s) on frequencies outside the band table", unknown),
			Suggests: []string{
				"Add a bands: entry to the config file to label these frequencies",
			},
		})
	} else if result.HasMatch() {
		results = append(results, DiagnosticResult{
			Check:   "Bands",
			Status:  "ok",
			Message: fmt.Sprintf("All matched lines fall in %d known band(s)", len(result.Bands)),
		})
	}

	if len(result.Unmatched) > 0 {
		results = append(results, checkUnmatched(result))
	}

	return results
}

func checkGrammar(result *detector.DetectionResult) DiagnosticResult {
	r := DiagnosticResult{
		Check: "Log Grammar",
		Message: fmt.Sprintf("%.1f%% of lines match (%d/%d sampled)",
			result.MatchRate()*100, result.MatchedLines, result.SampledLines),
	}

	rate := result.MatchRate()
	switch {
	case result.SampledLines == 0:
		r.Status = "error"
		r.Message = "Log file is empty"
	case rate >= passMatchRate:
		r.Status = "ok"
	case rate >= warnMatchRate:
		r.Status = "warning"
		r.Suggests = []string{"Unmatched lines are counted and skipped during conversion"}
	default:
		r.Status = "error"
		r.Suggests = []string{"Check that this is a WSJT-X ALL.TXT file"}
	}

	return r
}

func checkUnmatched(result *detector.DetectionResult) DiagnosticResult {
	r := DiagnosticResult{
		Check:   "Unmatched Lines",
		Status:  "warning",
		Message: fmt.Sprintf("%d line(s) will be skipped", result.SampledLines-result.MatchedLines),
	}
	if result.MatchRate() >= passMatchRate {
		r.Status = "ok"
	}

	hints := make(map[string]bool)
	for _, u := range result.Unmatched {
		detail := fmt.Sprintf("line %d: %s (%s)", u.LineNum, truncate(u.Text, 80), u.Reason)
		if u.Shape != nil {
			detail += " [looks like " + u.Shape.Name + "]"
			if !hints[u.Shape.Hint] {
				hints[u.Shape.Hint] = true
				r.Suggests = append(r.Suggests, u.Shape.Hint)
			}
		}
		r.Details = append(r.Details, detail)
	}

	return r
}

func outputInspectText(w io.Writer, result *detector.DetectionResult, checks []DiagnosticResult, logFile string, opts *InspectOptions) {
	fmt.Fprintln(w, "=== Contact Log Inspection ===")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "File: %s\n", logFile)
	fmt.Fprintf(w, "Lines sampled: %d\n", result.SampledLines)
	fmt.Fprintf(w, "Lines matched: %d (Rx %d, Tx %d)\n", result.MatchedLines, result.Rx, result.Tx)

	if result.HasMatch() {
		fmt.Fprintf(w, "Time span: %s to %s\n",
			result.First.Format("2006-01-02 15:04:05"),
			result.Last.Format("2006-01-02 15:04:05"))
		fmt.Fprintf(w, "Bands: %s\n", formatCounts(detector.Sorted(result.Bands)))
		fmt.Fprintf(w, "Modes: %s\n", formatCounts(detector.Sorted(result.Modes)))
	}
	fmt.Fprintln(w)

	printDiagnostics(w, checks, opts.Verbose)
}

func formatCounts(counts []detector.Count) string {
	parts := make([]string, 0, len(counts))
	for _, c := range counts {
		parts = append(parts, fmt.Sprintf("%s (%d)", c.Label, c.Count))
	}
	return strings.Join(parts, ", ")
}

func printDiagnostics(w io.Writer, results []DiagnosticResult, verbose bool) {
	okCount := 0
	warnCount := 0
	errCount := 0

	for _, r := range results {
		// Status icon
		var icon string
		switch r.Status {
		case "ok":
			icon = "PASS"
			okCount++
		case "warning":
			icon = "WARN"
			warnCount++
		case "error":
			icon = "FAIL"
			errCount++
		}

		fmt.Fprintf(w, "[%s] %s\n", icon, r.Check)
		fmt.Fprintf(w, "    %s\n", r.Message)

		if verbose || r.Status != "ok" {
			for _, d := range r.Details {
				fmt.Fprintf(w, "      - %s\n", d)
			}
		}

		for _, s := range r.Suggests {
			fmt.Fprintf(w, "      Hint: %s\n", s)
		}

		fmt.Fprintln(w)
	}

	// Summary
	fmt.Fprintln(w, "---")
	fmt.Fprintf(w, "Summary: %d passed, %d warnings, %d errors\n", okCount, warnCount, errCount)

	if errCount > 0 {
		fmt.Fprintln(w, "\nThis file is unlikely to convert.")
	} else if warnCount > 0 {
		fmt.Fprintln(w, "\nThis file will convert, with some lines skipped.")
	} else {
		fmt.Fprintln(w, "\nLog looks good!")
	}
}

// JSONUnmatched represents an unmatched line in JSON output.
type JSONUnmatched struct {
	LineNum int    `json:"line_num"`
	Text    string `json:"text"`
	Reason  string `json:"reason"`
	Shape   string `json:"shape,omitempty"`
}

// JSONOutput represents the full JSON output.
type JSONOutput struct {
	File         string             `json:"file"`
	SampledLines int                `json:"sampled_lines"`
	MatchedLines int                `json:"matched_lines"`
	MatchRate    float64            `json:"match_rate"`
	Rx           int                `json:"rx"`
	Tx           int                `json:"tx"`
	Bands        []detector.Count   `json:"bands"`
	Modes        []detector.Count   `json:"modes"`
	Unmatched    []JSONUnmatched    `json:"unmatched"`
	Checks       []DiagnosticResult `json:"checks"`
}

func outputInspectJSON(w io.Writer, result *detector.DetectionResult, checks []DiagnosticResult, logFile string) error {
	out := JSONOutput{
		File:         logFile,
		SampledLines: result.SampledLines,
		MatchedLines: result.MatchedLines,
		MatchRate:    result.MatchRate(),
		Rx:           result.Rx,
		Tx:           result.Tx,
		Bands:        detector.Sorted(result.Bands),
		Modes:        detector.Sorted(result.Modes),
		Unmatched:    make([]JSONUnmatched, 0, len(result.Unmatched)),
		Checks:       checks,
	}

	for _, u := range result.Unmatched {
		ju := JSONUnmatched{LineNum: u.LineNum, Text: u.Text, Reason: u.Reason}
		if u.Shape != nil {
			ju.Shape = u.Shape.Name
		}
		out.Unmatched = append(out.Unmatched, ju)
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}

// writeStarterConfig generates a starter config file for the inspected log.
func writeStarterConfig(w io.Writer, result *detector.DetectionResult, logFile, configPath string) error {
	// Check if file already exists
	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("config file already exists: %s (will not overwrite)", configPath)
	}

	if !result.HasMatch() {
		return fmt.Errorf("cannot generate config: no lines match the log grammar")
	}

	content := generateStarterConfig(logFile, result)

	// #nosec G306 - config file doesn't need restrictive permissions
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	fmt.Fprintf(w, "Wrote starter config to: %s\n\n", configPath)
	return nil
}

// generateStarterConfig creates a YAML config template.
func generateStarterConfig(logFile string, result *detector.DetectionResult) string {
	// Get absolute path for log file if possible
	absLogFile := logFile
	if abs, err := filepath.Abs(logFile); err == nil {
		absLogFile = abs
	}

	return fmt.Sprintf(`# qsolog configuration
# Generated by: qsolog inspect
# Grammar match: %.0f%% (%d/%d lines sampled)

station:
  # Required. Leave empty to use QSOLOG_CALLSIGN / QSOLOG_GRID or flags.
  callsign: ""
  grid: ""

input:
  paths:
    - %s

output:
  path: %s
  # include_open: true   # also write exchanges without a sign-off

policy:
  tracking: %s
  ambiguous_correspondent: %s
  report_tie_break: %s
  min_tokens: %d
  validate_callsign: true
  validate_grid: true

completion:
  markers: ["73", "RR73"]
  match: %s

# Track exported contacts across runs:
# logbook:
#   path: qsolog.db
#   new_only: true
`, result.MatchRate()*100, result.MatchedLines, result.SampledLines,
		absLogFile,
		config.DefaultOutputPath,
		config.TrackingPerCorrespondent,
		config.AmbiguitySkip,
		config.TieBreakSent,
		config.DefaultMinTokens,
		config.MatchToken)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
