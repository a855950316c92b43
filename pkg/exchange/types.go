// Package exchange reconstructs two-party contacts (QSOs) from a stream of
// classified log lines.
package exchange

import (
	"time"
)

// Status is the lifecycle state of an exchange.
type Status string

const (
	// StatusOpen is the initial state; the exchange still accepts lines.
	StatusOpen Status = "OPEN"

	// StatusClosed is terminal; the exchange is never mutated again.
	StatusClosed Status = "CLOSED"
)

// Exchange is one conversation with a single correspondent.
type Exchange struct {
	// ID is unique per exchange, even for repeat contacts with the same station.
	ID string `json:"id"`

	// Correspondent is the other station's call sign.
	Correspondent string `json:"correspondent"`

	Start time.Time  `json:"start"`
	End   *time.Time `json:"end,omitempty"`

	// Band, Frequency and Mode come from the line that opened the exchange.
	Band            string  `json:"band"`
	Frequency       string  `json:"frequency"`
	FrequencyMHz    float64 `json:"frequency_mhz"`
	Mode            string  `json:"mode"`
	FrequencyOffset int     `json:"frequency_offset"`

	// Location is the correspondent's grid locator, if one was seen.
	Location string `json:"location,omitempty"`

	ReportSent     string `json:"report_sent,omitempty"`
	ReportReceived string `json:"report_received,omitempty"`

	// Messages holds the message text of every contributing line, in arrival order.
	Messages []string `json:"messages"`

	Status Status `json:"status"`

	// Source and LineNum locate the opening line.
	Source  string `json:"source,omitempty"`
	LineNum int    `json:"line_num,omitempty"`
}

// IsClosed returns true once a completion marker has been seen.
func (e *Exchange) IsClosed() bool {
	return e.Status == StatusClosed
}

// Duration returns End-Start for closed exchanges and zero otherwise.
func (e *Exchange) Duration() time.Duration {
	if e.End == nil {
		return 0
	}
	return e.End.Sub(e.Start)
}

// Stats counts how input lines were used.
type Stats struct {
	// TotalLines is every input line read.
	TotalLines int `json:"total_lines"`

	// ContributingLines were attributed to an exchange.
	ContributingLines int `json:"contributing_lines"`

	// NonContributingLines were well-formed but not part of any exchange.
	NonContributingLines int `json:"non_contributing_lines"`

	// UnmatchedLines failed the log grammar.
	UnmatchedLines int `json:"unmatched_lines"`

	ExchangesCreated int `json:"exchanges_created"`
	ExchangesClosed  int `json:"exchanges_closed"`
}

// Result is the output of a reconstruction run.
type Result struct {
	// Exchanges are in creation order.
	Exchanges []*Exchange

	Stats Stats

	// Sources lists the files that were read.
	Sources []string

	StartTime time.Time
	EndTime   time.Time
}

// Closed returns only the exchanges that reached StatusClosed.
func (r *Result) Closed() []*Exchange {
	closed := make([]*Exchange, 0, len(r.Exchanges))
	for _, ex := range r.Exchanges {
		if ex.IsClosed() {
			closed = append(closed, ex)
		}
	}
	return closed
}
