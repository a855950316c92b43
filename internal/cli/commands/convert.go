package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/qsolog/pkg/config"
	"github.com/ccollicutt/qsolog/pkg/exchange"
	"github.com/ccollicutt/qsolog/pkg/logbook"
	"github.com/ccollicutt/qsolog/pkg/output"
	"github.com/ccollicutt/qsolog/pkg/parser"
)

// ExitCode is set by commands to indicate the result
var ExitCode = 0

// ConvertOptions holds command-line options for the convert command.
type ConvertOptions struct {
	Config      string
	EnvFile     string
	Output      string
	Callsign    string
	Grid        string
	Format      string
	List        bool
	IncludeOpen bool
	Logbook     string
	NewOnly     bool
	Verbose     bool
	Quiet       bool
}

// NewConvertCommand creates the convert command.
func NewConvertCommand() *cobra.Command {
	opts := &ConvertOptions{}

	cmd := &cobra.Command{
		Use:   "convert [log-file...]",
		Short: "Reconstruct QSOs from a contact log and write ADIF",
		Long: `Read WSJT-X ALL.TXT contact logs, reconstruct each two-party exchange
(QSO) and write the completed ones as ADIF records.

Log files are read in the order given; glob patterns are allowed.
With no arguments the input paths from the config file are used
(default ALL.TXT).

The station call sign and grid locator are required. Set them in the
config file, with --callsign/--grid, or with QSOLOG_CALLSIGN/QSOLOG_GRID
in the environment or in a dotenv file given with --env-file.

Example:
  qsolog convert --callsign M7KCM --grid IO91 ALL.TXT
  qsolog convert -c qsolog.yaml -o contacts.adi --list
  qsolog convert -c qsolog.yaml --logbook qsolog.db --new-only 'ALL.TXT*'

Exit codes:
  0 - Conversion completed
  2 - Configuration, input or output error`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd, args, opts)
		},
	}

	// Flags
	cmd.Flags().StringVarP(&opts.Config, "config", "c", "", "Configuration file")
	cmd.Flags().StringVar(&opts.EnvFile, "env-file", "", "Dotenv file with QSOLOG_CALLSIGN/QSOLOG_GRID")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "ADIF output file (default "+config.DefaultOutputPath+")")
	cmd.Flags().StringVar(&opts.Callsign, "callsign", "", "Own call sign (overrides config)")
	cmd.Flags().StringVar(&opts.Grid, "grid", "", "Own grid locator (overrides config)")
	cmd.Flags().StringVarP(&opts.Format, "format", "f", "text", "Summary format (text|json)")
	cmd.Flags().BoolVarP(&opts.List, "list", "l", false, "List reconstructed exchanges in the summary")
	cmd.Flags().BoolVar(&opts.IncludeOpen, "include-open", false, "Also write exchanges that never completed")
	cmd.Flags().StringVar(&opts.Logbook, "logbook", "", "SQLite logbook of exported exchanges")
	cmd.Flags().BoolVar(&opts.NewOnly, "new-only", false, "Only write exchanges not already in the logbook")
	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Log per-line decisions to stderr")
	cmd.Flags().BoolVarP(&opts.Quiet, "quiet", "q", false, "Summary only, one line")

	return cmd
}

func runConvert(cmd *cobra.Command, args []string, opts *ConvertOptions) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	logger := newLogger(cmd.ErrOrStderr(), opts.Verbose)

	cfg, err := loadConvertConfig(ctx, args, opts)
	if err != nil {
		return err
	}

	// Expand input globs
	files, err := parser.ExpandGlobs(cfg.Input.Paths)
	if err != nil {
		return fmt.Errorf("expanding input paths: %w", err)
	}

	if len(files) == 0 {
		return fmt.Errorf("no log files matched patterns: %v", cfg.Input.Paths)
	}

	formatter, err := output.NewSummaryFormatter(opts.Format, output.FormatOptions{
		Verbose: opts.Verbose,
		Quiet:   opts.Quiet,
		List:    opts.List,
	})
	if err != nil {
		return err
	}

	r, err := exchange.NewReconstructor(cfg, exchange.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("creating reconstructor: %w", err)
	}

	source := parser.NewFileSource(files, parser.NewClassifier(cfg.BandTable()))
	source.OnUnmatched(func(src string, lineNum int, line string, err error) {
		logger.Debug("line unmatched", "source", src, "line", lineNum, "error", err)
	})
	defer source.Close()

	result, err := r.Run(ctx, source)
	if err != nil {
		return fmt.Errorf("conversion failed: %w", err)
	}

	report := output.NewReport(result, output.ReportOptions{
		ConfigFile:  opts.Config,
		OutputFile:  cfg.Output.Path,
		Callsign:    cfg.Station.Callsign,
		Grid:        cfg.Station.Grid,
		IncludeOpen: cfg.Output.IncludeOpen,
	})

	var store *logbook.Store
	if cfg.Logbook.Path != "" {
		store, err = logbook.Open(cfg.Logbook.Path)
		if err != nil {
			return err
		}
		defer store.Close()

		if cfg.Logbook.NewOnly {
			fresh, err := store.FilterNew(ctx, report.Records)
			if err != nil {
				return err
			}
			report.SetRecords(fresh)
		}
	}

	if err := writeADIF(ctx, cfg.Output.Path, cfg.Output.Header, report); err != nil {
		return err
	}
	logger.Debug("ADIF written", "path", cfg.Output.Path, "records", report.Summary.RecordsWritten)

	if store != nil {
		saved, err := store.Save(ctx, report.Records)
		if err != nil {
			return err
		}
		logger.Debug("logbook updated", "path", cfg.Logbook.Path, "new", saved)
	}

	if err := formatter.Format(ctx, report, cmd.OutOrStdout()); err != nil {
		return fmt.Errorf("formatting output: %w", err)
	}

	return nil
}

// loadConvertConfig layers positional inputs and flags over the config
// file and environment, then validates the result.
func loadConvertConfig(ctx context.Context, args []string, opts *ConvertOptions) (*config.Config, error) {
	cfg, err := config.Parse(ctx, opts.Config)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if opts.EnvFile != "" {
		if err := config.ApplyEnvFile(cfg, opts.EnvFile); err != nil {
			return nil, err
		}
	}

	if len(args) > 0 {
		cfg.Input.Paths = args
	}
	if opts.Output != "" {
		cfg.Output.Path = opts.Output
	}
	if opts.Callsign != "" {
		cfg.Station.Callsign = opts.Callsign
	}
	if opts.Grid != "" {
		cfg.Station.Grid = opts.Grid
	}
	if opts.IncludeOpen {
		cfg.Output.IncludeOpen = true
	}
	if opts.Logbook != "" {
		cfg.Logbook.Path = opts.Logbook
	}
	if opts.NewOnly {
		cfg.Logbook.NewOnly = true
	}

	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// writeADIF writes the selected records to path. The file is replaced
// only after every record has been written.
func writeADIF(ctx context.Context, path, header string, report *output.Report) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".qsolog-*.adi")
	if err != nil {
		return fmt.Errorf("creating output file %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	if err := output.NewADIFFormatter(header).Format(ctx, report, tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("writing output file %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing output file %s: %w", path, err)
	}

	// #nosec G302 - ADIF files are meant to be shared with logging software
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return fmt.Errorf("writing output file %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("writing output file %s: %w", path, err)
	}
	return nil
}

// newLogger returns a text logger on w; debug records are only emitted when
// verbose is set.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
