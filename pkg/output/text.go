package output

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/ccollicutt/qsolog/pkg/exchange"
)

// TextFormatter formats reports as human-readable text.
type TextFormatter struct {
	opts FormatOptions
}

// NewTextFormatter creates a new text formatter with the given options.
func NewTextFormatter(opts FormatOptions) *TextFormatter {
	return &TextFormatter{opts: opts}
}

// Name returns the format name.
func (f *TextFormatter) Name() string {
	return "text"
}

// Format renders the report as text.
func (f *TextFormatter) Format(ctx context.Context, report *Report, w io.Writer) error {
	if f.opts.Quiet {
		return f.formatQuiet(report, w)
	}
	return f.formatFull(report, w)
}

func (f *TextFormatter) formatQuiet(report *Report, w io.Writer) error {
	fmt.Fprintf(w, "qsolog: %d lines, %d exchanges, %d records written\n",
		report.Summary.TotalLines,
		report.Summary.Exchanges,
		report.Summary.RecordsWritten)
	return nil
}

func (f *TextFormatter) formatFull(report *Report, w io.Writer) error {
	s := report.Summary

	// Header
	fmt.Fprintln(w, "=== qsolog Conversion Report ===")
	fmt.Fprintln(w)

	if f.opts.List {
		if len(report.Exchanges) == 0 {
			fmt.Fprintln(w, "No exchanges reconstructed")
		}
		for _, ex := range report.Exchanges {
			f.formatExchange(ex, w)
		}
		fmt.Fprintln(w)
	}

	// Summary
	fmt.Fprintln(w, "---")
	fmt.Fprintf(w, "Lines: %d total, %d contributing, %d non-contributing, %d unmatched\n",
		s.TotalLines, s.ContributingLines, s.NonContributingLines, s.UnmatchedLines)
	fmt.Fprintf(w, "Exchanges: %d (%d closed, %d open)\n",
		s.Exchanges, s.ClosedExchanges, s.OpenExchanges)

	if report.Metadata.OutputFile != "" {
		fmt.Fprintf(w, "Records written: %d to %s\n", s.RecordsWritten, report.Metadata.OutputFile)
	} else {
		fmt.Fprintf(w, "Records written: %d\n", s.RecordsWritten)
	}
	if s.AlreadyLogged > 0 {
		fmt.Fprintf(w, "Already in logbook: %d\n", s.AlreadyLogged)
	}

	if f.opts.Verbose {
		fmt.Fprintf(w, "Station: %s (%s)\n", report.Metadata.Callsign, report.Metadata.Grid)
		fmt.Fprintf(w, "Sources: %s\n", strings.Join(report.Metadata.Sources, ", "))
		fmt.Fprintf(w, "Duration: %s\n", report.Metadata.Duration.Round(1e6))
	}

	return nil
}

func (f *TextFormatter) formatExchange(ex *exchange.Exchange, w io.Writer) {
	fmt.Fprintf(w, "%s  %-10s %-5s %-5s %-6s sent %-4s rcvd %-4s %s\n",
		ex.Start.UTC().Format("2006-01-02 15:04"),
		ex.Correspondent,
		ex.Band,
		ex.Mode,
		orDash(ex.Location),
		orDash(ex.ReportSent),
		orDash(ex.ReportReceived),
		ex.Status)

	if f.opts.Verbose {
		fmt.Fprintf(w, "    id=%s source=%s:%d messages=%d\n",
			ex.ID, ex.Source, ex.LineNum, len(ex.Messages))
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
