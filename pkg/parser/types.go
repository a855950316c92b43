// Package parser classifies raw contact log lines into typed records.
package parser

import "time"

// Direction is the transmit/receive marker of a log line.
type Direction string

const (
	DirectionTx Direction = "Tx"
	DirectionRx Direction = "Rx"
)

// RawLine is a single well-formed log line with its fields extracted.
type RawLine struct {
	// Date is the six-digit YYMMDD date field as written in the log.
	Date string

	// Time is the six-digit HHMMSS time field as written in the log.
	Time string

	// Timestamp combines Date and Time in UTC.
	Timestamp time.Time

	// Frequency is the dial frequency in MHz as written in the log.
	Frequency string

	// FrequencyMHz is Frequency parsed as a number.
	FrequencyMHz float64

	// Band is the band label for FrequencyMHz.
	Band string

	Direction Direction
	Mode      string

	// SignalReport is the SNR column in dB.
	SignalReport int

	// TimeOffset is the DT column in seconds.
	TimeOffset float64

	// FrequencyOffset is the audio offset in Hz.
	FrequencyOffset int

	// Message is the free-text remainder of the line.
	Message string

	// Source is the file path this line came from.
	Source string

	// LineNum is the 1-based line number in the source file.
	LineNum int
}

// LineCounts tallies what a source has read so far.
type LineCounts struct {
	// Total is every physical line read, blank lines included.
	Total int

	// Unmatched is the number of lines rejected by the grammar.
	Unmatched int
}
