package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/ccollicutt/qsolog/pkg/band"
	"github.com/ccollicutt/qsolog/pkg/parser"
)

// Load reads and validates a configuration file.
func Load(ctx context.Context, path string) (*Config, error) {
	cfg, err := Parse(ctx, path)
	if err != nil {
		return nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Parse reads a configuration file over the defaults and applies environment
// overrides without validating, so that callers can layer flags on top.
// An empty path yields the defaults.
func Parse(_ context.Context, path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path) // #nosec G304 -- user-provided config path is expected
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.applyEnvironmentOverrides()
	return cfg, nil
}

// ApplyEnvFile sets station values from a dotenv file. Variables already
// present in the process environment take precedence over the file.
func ApplyEnvFile(cfg *Config, path string) error {
	env, err := godotenv.Read(path)
	if err != nil {
		return fmt.Errorf("reading env file: %w", err)
	}

	if call := env[EnvCallsign]; call != "" && os.Getenv(EnvCallsign) == "" {
		cfg.Station.Callsign = call
	}
	if grid := env[EnvGrid]; grid != "" && os.Getenv(EnvGrid) == "" {
		cfg.Station.Grid = grid
	}
	return nil
}

// Validate checks a configuration for errors, fills unset policy values
// with defaults and builds the band table.
func Validate(cfg *Config) error {
	cfg.normalize()

	if err := validateStation(&cfg.Station); err != nil {
		return fmt.Errorf("station: %w", err)
	}

	if len(cfg.Input.Paths) == 0 {
		cfg.Input.Paths = []string{DefaultInputPath}
	}

	if cfg.Output.Path == "" {
		cfg.Output.Path = DefaultOutputPath
	}

	if err := validatePolicy(&cfg.Policy); err != nil {
		return fmt.Errorf("policy: %w", err)
	}

	if err := validateCompletion(&cfg.Completion); err != nil {
		return fmt.Errorf("completion: %w", err)
	}

	ranges := cfg.Bands
	if len(ranges) == 0 {
		ranges = band.DefaultRanges()
	}
	table, err := band.NewTable(ranges)
	if err != nil {
		return fmt.Errorf("bands: %w", err)
	}
	cfg.bandTable = table

	if cfg.Logbook.NewOnly && cfg.Logbook.Path == "" {
		return errors.New("logbook: new_only requires a logbook path")
	}

	return nil
}

func validateStation(st *StationConfig) error {
	if st.Callsign == "" {
		return fmt.Errorf("callsign is required (set station.callsign or %s)", EnvCallsign)
	}
	if !parser.IsCallsign(st.Callsign) {
		return fmt.Errorf("callsign %q does not look like a call sign", st.Callsign)
	}

	if st.Grid == "" {
		return fmt.Errorf("grid is required (set station.grid or %s)", EnvGrid)
	}
	if !parser.IsGridLocator(st.Grid) {
		return fmt.Errorf("grid %q is not a Maidenhead locator", st.Grid)
	}

	return nil
}

func validatePolicy(p *PolicyConfig) error {
	switch p.Tracking {
	case "":
		p.Tracking = TrackingPerCorrespondent
	case TrackingPerCorrespondent, TrackingSingleActive:
	default:
		return fmt.Errorf("invalid tracking %q (must be per_correspondent or single_active)", p.Tracking)
	}

	switch p.AmbiguousCorrespondent {
	case "":
		p.AmbiguousCorrespondent = AmbiguitySkip
	case AmbiguitySkip, AmbiguityHeuristic:
	default:
		return fmt.Errorf("invalid ambiguous_correspondent %q (must be skip or heuristic)", p.AmbiguousCorrespondent)
	}

	switch p.ReportTieBreak {
	case "":
		p.ReportTieBreak = TieBreakSent
	case TieBreakSent, TieBreakReceived:
	default:
		return fmt.Errorf("invalid report_tie_break %q (must be sent or received)", p.ReportTieBreak)
	}

	if p.MinTokens == 0 {
		p.MinTokens = DefaultMinTokens
	}
	if p.MinTokens < DefaultMinTokens {
		return fmt.Errorf("min_tokens must be >= %d, got %d", DefaultMinTokens, p.MinTokens)
	}

	return nil
}

func validateCompletion(c *CompletionConfig) error {
	if len(c.Markers) == 0 {
		c.Markers = append([]string(nil), DefaultCompletionMarkers...)
	}
	for i, m := range c.Markers {
		if strings.TrimSpace(m) == "" {
			return fmt.Errorf("markers[%d] is empty", i)
		}
		if c.Match != MatchSubstring && strings.ContainsAny(m, " \t") {
			return fmt.Errorf("marker %q contains whitespace and can never match a token", m)
		}
	}

	switch c.Match {
	case "":
		c.Match = MatchToken
	case MatchToken, MatchSubstring:
	default:
		return fmt.Errorf("invalid match %q (must be token or substring)", c.Match)
	}

	return nil
}
