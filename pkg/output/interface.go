package output

import (
	"context"
	"fmt"
	"io"
)

// Formatter renders conversion results in a specific format.
type Formatter interface {
	// Format renders the report to the given writer.
	Format(ctx context.Context, report *Report, w io.Writer) error

	// Name returns the format name (text, json, adif).
	Name() string
}

// FormatOptions controls formatter behavior.
type FormatOptions struct {
	// Verbose enables detailed output such as timing and sources.
	Verbose bool

	// Quiet enables minimal summary-only output.
	Quiet bool

	// List includes one row per reconstructed exchange.
	List bool
}

// NewSummaryFormatter returns the summary formatter registered under name.
func NewSummaryFormatter(name string, opts FormatOptions) (Formatter, error) {
	switch name {
	case "", "text":
		return NewTextFormatter(opts), nil
	case "json":
		return NewJSONFormatter(opts), nil
	default:
		return nil, fmt.Errorf("unknown format %q (must be text or json)", name)
	}
}
