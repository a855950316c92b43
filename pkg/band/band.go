// Package band maps operating frequencies to amateur radio band labels.
package band

import (
	"errors"
	"fmt"
	"math"
)

// Unknown is returned when no band in the table contains a frequency.
const Unknown = "unknown"

// Range is a named band with inclusive bounds in kHz.
type Range struct {
	Label    string  `yaml:"label" json:"label"`
	LowerKHz float64 `yaml:"lower_khz" json:"lower_khz"`
	UpperKHz float64 `yaml:"upper_khz" json:"upper_khz"`
}

// Contains reports whether khz lies within the inclusive bounds.
func (r Range) Contains(khz float64) bool {
	return khz >= r.LowerKHz && khz <= r.UpperKHz
}

// Table is an ordered, read-only list of band ranges.
// Lookup scans it front to back and the first containing range wins.
type Table struct {
	ranges []Range
}

// DefaultRanges returns the built-in band plan in scan order.
func DefaultRanges() []Range {
	return []Range{
		{"160m", 1810, 2000},
		{"80m", 3500, 3800},
		{"60m", 5258.5, 5406.5},
		{"40m", 7000, 7200},
		{"30m", 10100, 10150},
		{"20m", 14000, 14350},
		{"17m", 18068, 18168},
		{"15m", 21000, 21450},
		{"12m", 24890, 24990},
		{"10m", 28000, 29700},
		{"6m", 50000, 52000},
		{"4m", 70000, 70500},
		{"2m", 144000, 146000},
		{"70cm", 430000, 440000},
	}
}

// Default returns a table built from DefaultRanges.
func Default() *Table {
	t, _ := NewTable(DefaultRanges())
	return t
}

// NewTable validates ranges and returns a table that scans them in order.
// Ranges must be labelled, non-inverted and must not overlap.
func NewTable(ranges []Range) (*Table, error) {
	if len(ranges) == 0 {
		return nil, errors.New("band table is empty")
	}

	for i, r := range ranges {
		if r.Label == "" {
			return nil, fmt.Errorf("band %d: label is required", i)
		}
		if r.LowerKHz > r.UpperKHz {
			return nil, fmt.Errorf("band %s: lower bound %.1f kHz exceeds upper bound %.1f kHz",
				r.Label, r.LowerKHz, r.UpperKHz)
		}
		for _, prev := range ranges[:i] {
			if r.LowerKHz <= prev.UpperKHz && prev.LowerKHz <= r.UpperKHz {
				return nil, fmt.Errorf("band %s overlaps band %s", r.Label, prev.Label)
			}
		}
	}

	cp := make([]Range, len(ranges))
	copy(cp, ranges)
	return &Table{ranges: cp}, nil
}

// Lookup returns the label of the first band containing freqMHz, or Unknown.
func (t *Table) Lookup(freqMHz float64) string {
	// Round to whole Hz so decimal MHz values land on exact kHz bounds.
	khz := math.Round(freqMHz*1e6) / 1000
	for _, r := range t.ranges {
		if r.Contains(khz) {
			return r.Label
		}
	}
	return Unknown
}

// Ranges returns a copy of the table in scan order.
func (t *Table) Ranges() []Range {
	cp := make([]Range, len(t.ranges))
	copy(cp, t.ranges)
	return cp
}
