package parser

import (
	"context"
)

// LineSource provides an iterator over classified log lines.
// Implementations must be safe for sequential access (not concurrent).
type LineSource interface {
	// Next returns the next well-formed log line in input order.
	// Returns io.EOF when no more lines are available.
	// Lines that fail the grammar are counted and skipped.
	Next(ctx context.Context) (*RawLine, error)

	// Counts returns the running line totals.
	Counts() LineCounts

	// Close releases any resources held by the source.
	Close() error
}
