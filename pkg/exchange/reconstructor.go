package exchange

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ccollicutt/qsolog/pkg/config"
	"github.com/ccollicutt/qsolog/pkg/parser"
)

// Reconstructor turns classified log lines into exchanges.
// It is not safe for concurrent use; lines must be fed in input order.
type Reconstructor struct {
	ownCall    string
	policy     config.PolicyConfig
	completion *CompletionMatcher
	logger     *slog.Logger
	newID      func() string

	// State
	exchanges []*Exchange
	open      map[string]*Exchange // per_correspondent: key is the correspondent
	active    *Exchange            // single_active
	stats     Stats
}

// Option configures reconstructor behavior.
type Option func(*Reconstructor)

// WithLogger sets the logger used for per-line debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Reconstructor) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithIDGenerator replaces the exchange ID source.
func WithIDGenerator(fn func() string) Option {
	return func(r *Reconstructor) {
		if fn != nil {
			r.newID = fn
		}
	}
}

// NewReconstructor creates a reconstructor from a validated configuration.
func NewReconstructor(cfg *config.Config, opts ...Option) (*Reconstructor, error) {
	if cfg.Station.Callsign == "" {
		return nil, errors.New("station callsign is required")
	}
	if cfg.Policy.MinTokens < config.DefaultMinTokens {
		return nil, fmt.Errorf("min_tokens %d is below %d (was the config validated?)",
			cfg.Policy.MinTokens, config.DefaultMinTokens)
	}

	r := &Reconstructor{
		ownCall:    cfg.Station.Callsign,
		policy:     cfg.Policy,
		completion: NewCompletionMatcher(cfg.Completion),
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		newID:      uuid.NewString,
		open:       make(map[string]*Exchange),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r, nil
}

// Process handles a single classified line.
func (r *Reconstructor) Process(ctx context.Context, line *parser.RawLine) error {
	msg := ParseMessage(line.Message, r.ownCall, r.completion)

	if !msg.ContainsOwnCall {
		r.stats.NonContributingLines++
		return nil
	}

	if len(msg.Tokens) < r.policy.MinTokens {
		r.skip(line, "too few tokens")
		return nil
	}

	ex := r.target(msg)
	if ex == nil {
		correspondent, ok := r.correspondent(msg)
		if !ok {
			r.skip(line, "ambiguous correspondent")
			return nil
		}
		ex = r.start(line, msg, correspondent)
	} else {
		ex.Messages = append(ex.Messages, msg.Text)
		if ex.Location == "" && r.policy.ValidateGrid {
			ex.Location = r.location(msg)
		}
	}

	r.stats.ContributingLines++
	r.applyReport(ex, msg)

	if msg.IsCompletion {
		r.close(ex, line.Timestamp)
	}

	return nil
}

// target returns the open exchange this message belongs to, or nil when a
// new exchange must be started.
func (r *Reconstructor) target(msg *Message) *Exchange {
	if r.policy.Tracking == config.TrackingSingleActive {
		return r.active
	}

	correspondent, ok := r.correspondent(msg)
	if !ok {
		return nil
	}
	return r.open[correspondent]
}

// correspondent picks the call sign that is not the operator's own.
func (r *Reconstructor) correspondent(msg *Message) (string, bool) {
	first, second := msg.First(), msg.Second()
	firstOwn, secondOwn := first == r.ownCall, second == r.ownCall

	var call string
	switch {
	case firstOwn && !secondOwn:
		call = second
	case secondOwn && !firstOwn:
		call = first
	case r.policy.AmbiguousCorrespondent == config.AmbiguityHeuristic:
		if firstOwn {
			call = second
		} else {
			call = first
		}
	default:
		return "", false
	}

	if call == "" || call == r.ownCall {
		return "", false
	}
	if r.policy.ValidateCallsign && !parser.IsCallsign(call) {
		return "", false
	}
	return call, true
}

// location returns the third token when it can serve as a grid locator.
func (r *Reconstructor) location(msg *Message) string {
	loc := msg.Third()
	if loc == "" || r.completion.IsMarker(loc) {
		return ""
	}
	if r.policy.ValidateGrid && !parser.IsGridLocator(loc) {
		return ""
	}
	return loc
}

func (r *Reconstructor) start(line *parser.RawLine, msg *Message, correspondent string) *Exchange {
	ex := &Exchange{
		ID:              r.newID(),
		Correspondent:   correspondent,
		Start:           line.Timestamp,
		Band:            line.Band,
		Frequency:       line.Frequency,
		FrequencyMHz:    line.FrequencyMHz,
		Mode:            line.Mode,
		FrequencyOffset: line.FrequencyOffset,
		Location:        r.location(msg),
		Messages:        []string{msg.Text},
		Status:          StatusOpen,
		Source:          line.Source,
		LineNum:         line.LineNum,
	}

	r.exchanges = append(r.exchanges, ex)
	r.stats.ExchangesCreated++

	if r.policy.Tracking == config.TrackingSingleActive {
		r.active = ex
	} else {
		r.open[correspondent] = ex
	}

	r.logger.Debug("exchange opened",
		"id", ex.ID, "call", correspondent, "band", ex.Band, "line", line.LineNum)
	return ex
}

// applyReport records a signed dB report from the third token. At most one
// field is assigned per line.
func (r *Reconstructor) applyReport(ex *Exchange, msg *Message) {
	report := msg.Third()
	if report == "" || !isSignalReport(report) {
		return
	}

	firstOwn, secondOwn := msg.First() == r.ownCall, msg.Second() == r.ownCall
	switch {
	case firstOwn && secondOwn:
		if r.policy.ReportTieBreak == config.TieBreakReceived {
			ex.ReportReceived = report
		} else {
			ex.ReportSent = report
		}
	case firstOwn:
		ex.ReportSent = report
	case secondOwn:
		ex.ReportReceived = report
	}
}

// close moves an exchange to StatusClosed and releases it as a target.
// End never precedes Start, even if the log clock stepped backwards.
func (r *Reconstructor) close(ex *Exchange, ts time.Time) {
	if ts.Before(ex.Start) {
		ts = ex.Start
	}
	ex.End = &ts
	ex.Status = StatusClosed
	r.stats.ExchangesClosed++

	if r.active == ex {
		r.active = nil
	}
	if r.open[ex.Correspondent] == ex {
		delete(r.open, ex.Correspondent)
	}

	r.logger.Debug("exchange closed", "id", ex.ID, "call", ex.Correspondent, "duration", ex.Duration())
}

func (r *Reconstructor) skip(line *parser.RawLine, reason string) {
	r.stats.NonContributingLines++
	r.logger.Debug("line skipped", "reason", reason, "source", line.Source, "line", line.LineNum, "message", line.Message)
}

// Finalize returns every exchange in creation order with the line statistics.
func (r *Reconstructor) Finalize(_ context.Context) (*Result, error) {
	exchanges := make([]*Exchange, len(r.exchanges))
	copy(exchanges, r.exchanges)

	return &Result{
		Exchanges: exchanges,
		Stats:     r.stats,
	}, nil
}

// Reset clears internal state for reuse.
func (r *Reconstructor) Reset() {
	r.exchanges = nil
	r.open = make(map[string]*Exchange)
	r.active = nil
	r.stats = Stats{}
}

// Run drains a line source through the reconstructor and returns the result
// with the source's line totals folded in.
func (r *Reconstructor) Run(ctx context.Context, source parser.LineSource) (*Result, error) {
	r.Reset()
	started := time.Now()

	sourcesMap := make(map[string]bool)
	var sources []string

	for {
		line, err := source.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading log source: %w", err)
		}

		if !sourcesMap[line.Source] {
			sourcesMap[line.Source] = true
			sources = append(sources, line.Source)
		}

		if err := r.Process(ctx, line); err != nil {
			return nil, fmt.Errorf("processing %s:%d: %w", line.Source, line.LineNum, err)
		}
	}

	result, err := r.Finalize(ctx)
	if err != nil {
		return nil, err
	}

	counts := source.Counts()
	result.Stats.TotalLines = counts.Total
	result.Stats.UnmatchedLines = counts.Unmatched
	result.Sources = sources
	result.StartTime = started
	result.EndTime = time.Now()

	return result, nil
}
