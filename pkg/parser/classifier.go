package parser

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/ccollicutt/qsolog/pkg/band"
)

// ErrGrammarMismatch is returned for lines that do not follow the log grammar.
var ErrGrammarMismatch = errors.New("line does not match log grammar")

// linePattern is the positional ALL.TXT grammar:
// date_time freq Rx|Tx mode snr dt offset message
// Example: 240927_220100   14.074 Rx FT8   -15 -0.0  373 K3TJB M7KCM EM77
var linePattern = regexp.MustCompile(
	`^(\d{6})_(\d{6})\s+(\d+\.\d+)\s+(Rx|Tx)\s+([A-Za-z0-9]+)\s+` +
		`([+-]?\d+)\s+([+-]?\d+\.\d+)\s+(\d+)\s+(.+)$`)

// Classifier turns raw log text into RawLines.
type Classifier struct {
	bands *band.Table
}

// NewClassifier creates a classifier that labels lines using the given band table.
// A nil table falls back to the default band plan.
func NewClassifier(bands *band.Table) *Classifier {
	if bands == nil {
		bands = band.Default()
	}
	return &Classifier{bands: bands}
}

// Classify parses one line. Lines that fail the grammar return an error
// wrapping ErrGrammarMismatch; the caller decides whether to skip them.
func (c *Classifier) Classify(line string) (*RawLine, error) {
	line = strings.TrimRight(line, " \t\r\n")

	m := linePattern.FindStringSubmatch(line)
	if m == nil {
		return nil, ErrGrammarMismatch
	}

	ts, err := ParseTimestamp(m[1], m[2])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGrammarMismatch, err)
	}

	freq, err := strconv.ParseFloat(m[3], 64)
	if err != nil {
		return nil, fmt.Errorf("%w: frequency %q: %v", ErrGrammarMismatch, m[3], err)
	}

	snr, err := strconv.Atoi(m[6])
	if err != nil {
		return nil, fmt.Errorf("%w: signal report %q: %v", ErrGrammarMismatch, m[6], err)
	}

	dt, err := strconv.ParseFloat(m[7], 64)
	if err != nil {
		return nil, fmt.Errorf("%w: time offset %q: %v", ErrGrammarMismatch, m[7], err)
	}

	offset, err := strconv.Atoi(m[8])
	if err != nil {
		return nil, fmt.Errorf("%w: frequency offset %q: %v", ErrGrammarMismatch, m[8], err)
	}

	return &RawLine{
		Date:            m[1],
		Time:            m[2],
		Timestamp:       ts,
		Frequency:       m[3],
		FrequencyMHz:    freq,
		Band:            c.bands.Lookup(freq),
		Direction:       Direction(m[4]),
		Mode:            m[5],
		SignalReport:    snr,
		TimeOffset:      dt,
		FrequencyOffset: offset,
		Message:         m[9],
	}, nil
}
