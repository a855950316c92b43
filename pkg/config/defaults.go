package config

import (
	"os"
	"strings"

	"github.com/ccollicutt/qsolog/pkg/band"
)

// Default values for configuration.
const (
	DefaultInputPath  = "ALL.TXT"
	DefaultOutputPath = "output_log.adi"
	DefaultHeader     = "ADIF Export from WSJT-X ALL.TXT"
	DefaultMinTokens  = 2
)

// DefaultCompletionMarkers are the sign-off tokens that close an exchange.
var DefaultCompletionMarkers = []string{"73", "RR73"}

// Environment variable names.
const (
	EnvCallsign = "QSOLOG_CALLSIGN"
	EnvGrid     = "QSOLOG_GRID"
)

// DefaultConfig returns a configuration with sensible defaults.
// Station details are left empty: they must be configured.
func DefaultConfig() *Config {
	return &Config{
		Input: InputConfig{
			Paths: []string{DefaultInputPath},
		},
		Output: OutputConfig{
			Path:   DefaultOutputPath,
			Header: DefaultHeader,
		},
		Policy: PolicyConfig{
			Tracking:               TrackingPerCorrespondent,
			AmbiguousCorrespondent: AmbiguitySkip,
			ReportTieBreak:         TieBreakSent,
			MinTokens:              DefaultMinTokens,
			ValidateCallsign:       true,
			ValidateGrid:           true,
		},
		Completion: CompletionConfig{
			Markers: append([]string(nil), DefaultCompletionMarkers...),
			Match:   MatchToken,
		},
		Bands: band.DefaultRanges(),
	}
}

// applyEnvironmentOverrides applies environment variable overrides to the config.
func (c *Config) applyEnvironmentOverrides() {
	if call := os.Getenv(EnvCallsign); call != "" {
		c.Station.Callsign = call
	}
	if grid := os.Getenv(EnvGrid); grid != "" {
		c.Station.Grid = grid
	}
}

// normalize upper-cases the call sign and trims user-supplied strings.
func (c *Config) normalize() {
	c.Station.Callsign = strings.ToUpper(strings.TrimSpace(c.Station.Callsign))
	c.Station.Grid = strings.TrimSpace(c.Station.Grid)
}
