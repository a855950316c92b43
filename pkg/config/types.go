// Package config provides configuration loading and validation for qsolog.
package config

import (
	"github.com/ccollicutt/qsolog/pkg/band"
)

// Config is the root configuration structure loaded from YAML.
type Config struct {
	Station    StationConfig    `yaml:"station"`
	Input      InputConfig      `yaml:"input"`
	Output     OutputConfig     `yaml:"output"`
	Policy     PolicyConfig     `yaml:"policy"`
	Completion CompletionConfig `yaml:"completion"`
	Bands      []band.Range     `yaml:"bands,omitempty"`
	Logbook    LogbookConfig    `yaml:"logbook,omitempty"`

	// bandTable is built from Bands during validation.
	bandTable *band.Table
}

// BandTable returns the validated band table.
func (c *Config) BandTable() *band.Table {
	return c.bandTable
}

// StationConfig identifies the operator. Both values are required and are
// never discovered from the log.
type StationConfig struct {
	// Callsign is the operator's own call sign.
	Callsign string `yaml:"callsign"`

	// Grid is the operator's home Maidenhead locator (MY_GRIDSQUARE).
	Grid string `yaml:"grid"`
}

// InputConfig lists the contact logs to read.
type InputConfig struct {
	// Paths are files or glob patterns, read in the given order.
	Paths []string `yaml:"paths"`
}

// OutputConfig controls the ADIF file.
type OutputConfig struct {
	Path   string `yaml:"path"`
	Header string `yaml:"header,omitempty"`

	// IncludeOpen also writes exchanges that never saw a completion marker.
	IncludeOpen bool `yaml:"include_open,omitempty"`
}

// Tracking selects how contributing lines are matched to exchanges.
type Tracking string

const (
	// TrackingPerCorrespondent keeps one open exchange per call sign.
	TrackingPerCorrespondent Tracking = "per_correspondent"
	// TrackingSingleActive keeps one active exchange at a time.
	TrackingSingleActive Tracking = "single_active"
)

// AmbiguityPolicy decides what happens when the correspondent cannot be
// told apart from the operator: both or neither of the first two tokens
// equal the own call sign.
type AmbiguityPolicy string

const (
	// AmbiguitySkip treats the line as non-contributing.
	AmbiguitySkip AmbiguityPolicy = "skip"
	// AmbiguityHeuristic takes the second token when the first is the own
	// call and the first token otherwise.
	AmbiguityHeuristic AmbiguityPolicy = "heuristic"
)

// TieBreak picks the report field when both leading tokens are the own call.
type TieBreak string

const (
	TieBreakSent     TieBreak = "sent"
	TieBreakReceived TieBreak = "received"
)

// PolicyConfig holds the field extraction policies.
type PolicyConfig struct {
	Tracking               Tracking        `yaml:"tracking"`
	AmbiguousCorrespondent AmbiguityPolicy `yaml:"ambiguous_correspondent"`
	ReportTieBreak         TieBreak        `yaml:"report_tie_break"`

	// MinTokens is the fewest message tokens a contributing line may have.
	MinTokens int `yaml:"min_tokens"`

	// ValidateCallsign rejects correspondents that do not look like call signs (CQ, QRZ).
	ValidateCallsign bool `yaml:"validate_callsign"`

	// ValidateGrid only records a location that is a Maidenhead locator.
	ValidateGrid bool `yaml:"validate_grid"`
}

// MatchMode selects how completion markers are found in a message.
type MatchMode string

const (
	// MatchToken requires a whitespace-delimited token equal to a marker.
	MatchToken MatchMode = "token"
	// MatchSubstring matches a marker anywhere in the message text.
	MatchSubstring MatchMode = "substring"
)

// CompletionConfig defines the sign-off markers that close an exchange.
type CompletionConfig struct {
	Markers []string  `yaml:"markers"`
	Match   MatchMode `yaml:"match"`
}

// LogbookConfig enables the SQLite logbook of exported exchanges.
type LogbookConfig struct {
	// Path is the database file. Empty disables the logbook.
	Path string `yaml:"path,omitempty"`

	// NewOnly limits ADIF output to exchanges not already in the logbook.
	NewOnly bool `yaml:"new_only,omitempty"`
}
