// Package output renders reconstructed exchanges as ADIF records and
// conversion summaries.
package output

import (
	"time"

	"github.com/ccollicutt/qsolog/pkg/exchange"
)

// Report is the complete conversion output.
type Report struct {
	// Summary provides aggregate statistics.
	Summary Summary `json:"summary"`

	// Exchanges holds every reconstructed exchange in creation order.
	Exchanges []*exchange.Exchange `json:"exchanges,omitempty"`

	// Records are the exchanges selected for the ADIF file.
	Records []*exchange.Exchange `json:"-"`

	// Metadata provides context about the run.
	Metadata Metadata `json:"metadata"`
}

// Summary provides aggregate statistics.
type Summary struct {
	TotalLines           int `json:"total_lines"`
	ContributingLines    int `json:"contributing_lines"`
	NonContributingLines int `json:"non_contributing_lines"`
	UnmatchedLines       int `json:"unmatched_lines"`

	Exchanges       int `json:"exchanges"`
	ClosedExchanges int `json:"closed_exchanges"`
	OpenExchanges   int `json:"open_exchanges"`

	// RecordsWritten is the number of ADIF records in the output file.
	RecordsWritten int `json:"records_written"`

	// AlreadyLogged counts records dropped because the logbook had them.
	AlreadyLogged int `json:"already_logged,omitempty"`
}

// Metadata provides context about the conversion run.
type Metadata struct {
	// ConfigFile is the path to the configuration file used, if any.
	ConfigFile string `json:"config_file,omitempty"`

	// Sources lists the log files that were read.
	Sources []string `json:"sources"`

	// OutputFile is the ADIF file path.
	OutputFile string `json:"output_file,omitempty"`

	// Callsign and Grid identify the operator's station.
	Callsign string `json:"callsign"`
	Grid     string `json:"grid"`

	// ConvertedAt is when the conversion finished.
	ConvertedAt time.Time `json:"converted_at"`

	// Duration is how long reconstruction took.
	Duration time.Duration `json:"duration"`
}

// ReportOptions controls which exchanges become ADIF records.
type ReportOptions struct {
	ConfigFile string
	OutputFile string
	Callsign   string
	Grid       string

	// IncludeOpen also selects exchanges that were never closed.
	IncludeOpen bool
}

// NewReport creates a Report from a reconstruction result.
func NewReport(result *exchange.Result, opts ReportOptions) *Report {
	report := &Report{
		Exchanges: result.Exchanges,
		Metadata: Metadata{
			ConfigFile:  opts.ConfigFile,
			Sources:     result.Sources,
			OutputFile:  opts.OutputFile,
			Callsign:    opts.Callsign,
			Grid:        opts.Grid,
			ConvertedAt: result.EndTime,
			Duration:    result.EndTime.Sub(result.StartTime),
		},
		Summary: Summary{
			TotalLines:           result.Stats.TotalLines,
			ContributingLines:    result.Stats.ContributingLines,
			NonContributingLines: result.Stats.NonContributingLines,
			UnmatchedLines:       result.Stats.UnmatchedLines,
			Exchanges:            len(result.Exchanges),
		},
	}

	for _, ex := range result.Exchanges {
		if ex.IsClosed() {
			report.Summary.ClosedExchanges++
		} else {
			report.Summary.OpenExchanges++
		}
	}

	if opts.IncludeOpen {
		report.Records = result.Exchanges
	} else {
		report.Records = result.Closed()
	}
	report.Summary.RecordsWritten = len(report.Records)

	return report
}

// SetRecords replaces the selected records, counting the ones dropped as
// already logged.
func (r *Report) SetRecords(records []*exchange.Exchange) {
	r.Summary.AlreadyLogged += len(r.Records) - len(records)
	r.Records = records
	r.Summary.RecordsWritten = len(records)
}

// HasExchanges returns true if any exchange was reconstructed.
func (r *Report) HasExchanges() bool {
	return r.Summary.Exchanges > 0
}
