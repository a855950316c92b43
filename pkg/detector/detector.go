// Package detector samples contact logs and reports how well they fit the
// log line grammar.
package detector

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/ccollicutt/qsolog/pkg/parser"
)

// DefaultSampleSize is the number of lines read when no size is given.
const DefaultSampleSize = 1000

// DefaultExampleCount is the number of unmatched lines kept as examples.
const DefaultExampleCount = 5

// DetectionResult holds the result of inspecting a log file.
type DetectionResult struct {
	SampledLines int // Number of lines sampled
	MatchedLines int // Lines that fit the grammar

	Rx int
	Tx int

	// Bands and Modes count matched lines by band label and mode.
	Bands map[string]int
	Modes map[string]int

	// First and Last are the earliest and latest matched timestamps.
	First time.Time
	Last  time.Time

	// Unmatched holds the first few lines that failed the grammar.
	Unmatched []UnmatchedLine

	// Shapes counts unmatched lines by recognized layout name.
	Shapes map[string]int
}

// UnmatchedLine is an example line that failed the grammar.
type UnmatchedLine struct {
	LineNum int
	Text    string
	Shape   *LineShape // nil when no known layout fits
	Reason  string
}

// Detector inspects contact logs.
type Detector struct {
	classifier   *parser.Classifier
	shapes       []*LineShape
	sampleSize   int
	exampleCount int
}

// Option configures the Detector.
type Option func(*Detector)

// WithSampleSize sets the number of lines to sample. Zero reads the whole file.
func WithSampleSize(n int) Option {
	return func(d *Detector) {
		if n >= 0 {
			d.sampleSize = n
		}
	}
}

// WithExamples sets how many unmatched lines are kept.
func WithExamples(n int) Option {
	return func(d *Detector) {
		if n >= 0 {
			d.exampleCount = n
		}
	}
}

// WithClassifier replaces the default line classifier, e.g. to use a
// configured band table.
func WithClassifier(c *parser.Classifier) Option {
	return func(d *Detector) {
		if c != nil {
			d.classifier = c
		}
	}
}

// New creates a new Detector with the default grammar and shapes.
func New(opts ...Option) *Detector {
	d := &Detector{
		classifier:   parser.NewClassifier(nil),
		shapes:       DefaultShapes(),
		sampleSize:   DefaultSampleSize,
		exampleCount: DefaultExampleCount,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DetectFromFile samples a log file and inspects the lines.
func (d *Detector) DetectFromFile(ctx context.Context, path string) (*DetectionResult, error) {
	lines, err := d.sampleFile(ctx, path)
	if err != nil {
		return nil, err
	}
	return d.DetectFromLines(lines), nil
}

// DetectFromLines inspects a slice of log lines. Line numbers are 1-based
// positions in the slice.
func (d *Detector) DetectFromLines(lines []string) *DetectionResult {
	result := &DetectionResult{
		SampledLines: len(lines),
		Bands:        make(map[string]int),
		Modes:        make(map[string]int),
		Shapes:       make(map[string]int),
	}

	for i, text := range lines {
		line, err := d.classifier.Classify(text)
		if err != nil {
			d.recordUnmatched(result, i+1, text, err)
			continue
		}

		result.MatchedLines++
		result.Bands[line.Band]++
		result.Modes[line.Mode]++
		if line.Direction == parser.DirectionTx {
			result.Tx++
		} else {
			result.Rx++
		}

		if result.First.IsZero() || line.Timestamp.Before(result.First) {
			result.First = line.Timestamp
		}
		if line.Timestamp.After(result.Last) {
			result.Last = line.Timestamp
		}
	}

	return result
}

func (d *Detector) recordUnmatched(result *DetectionResult, lineNum int, text string, err error) {
	shape := d.matchShape(text)
	if shape != nil {
		result.Shapes[shape.Name]++
	}

	if len(result.Unmatched) >= d.exampleCount {
		return
	}

	reason := "does not fit the log grammar"
	if strings.TrimSpace(text) == "" {
		reason = "blank line"
	} else if err != parser.ErrGrammarMismatch {
		// Wrapped errors carry the failing field.
		reason = err.Error()
	}

	result.Unmatched = append(result.Unmatched, UnmatchedLine{
		LineNum: lineNum,
		Text:    text,
		Shape:   shape,
		Reason:  reason,
	})
}

func (d *Detector) matchShape(text string) *LineShape {
	for _, s := range d.shapes {
		if s.Pattern.MatchString(text) {
			return s
		}
	}
	return nil
}

// sampleFile reads up to sampleSize lines from a file.
// Uses simple head sampling for efficiency.
func (d *Detector) sampleFile(ctx context.Context, path string) ([]string, error) {
	// #nosec G304 - path is provided by user via CLI
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening log file %s: %w", path, err)
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		if d.sampleSize > 0 && len(lines) >= d.sampleSize {
			break
		}
		if len(lines)%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		lines = append(lines, scanner.Text())
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading log file %s: %w", path, err)
	}

	return lines, nil
}

// MatchRate returns the fraction of sampled lines that fit the grammar.
func (r *DetectionResult) MatchRate() float64 {
	if r.SampledLines == 0 {
		return 0
	}
	return float64(r.MatchedLines) / float64(r.SampledLines)
}

// HasMatch returns true if at least one line fit the grammar.
func (r *DetectionResult) HasMatch() bool {
	return r.MatchedLines > 0
}

// Count is a label with its number of occurrences.
type Count struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Sorted returns counts ordered by frequency descending, then label.
func Sorted(m map[string]int) []Count {
	counts := make([]Count, 0, len(m))
	for k, v := range m {
		counts = append(counts, Count{Label: k, Count: v})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count > counts[j].Count
		}
		return counts[i].Label < counts[j].Label
	})
	return counts
}
