package parser

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
)

// UnmatchedFunc is called for every line rejected by the grammar.
type UnmatchedFunc func(source string, lineNum int, line string, err error)

// FileSource implements LineSource for reading contact log files.
// Files are read one after another in the order given; lines are never reordered.
type FileSource struct {
	files       []string
	classifier  *Classifier
	onUnmatched UnmatchedFunc

	currentFile    *os.File
	currentScanner *bufio.Scanner
	currentSource  string
	currentLine    int
	fileIndex      int

	counts LineCounts
}

// NewFileSource creates a LineSource that reads from the given files.
func NewFileSource(files []string, classifier *Classifier) *FileSource {
	if classifier == nil {
		classifier = NewClassifier(nil)
	}
	return &FileSource{
		files:      files,
		classifier: classifier,
		fileIndex:  -1,
	}
}

// OnUnmatched registers a callback for rejected lines.
func (s *FileSource) OnUnmatched(fn UnmatchedFunc) {
	s.onUnmatched = fn
}

// Next returns the next well-formed log line.
// Lines failing the grammar are counted and skipped.
// Returns io.EOF when all files have been exhausted.
func (s *FileSource) Next(ctx context.Context) (*RawLine, error) {
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if s.currentScanner == nil {
			if err := s.openNextFile(); err != nil {
				return nil, err
			}
		}

		if s.currentScanner.Scan() {
			s.currentLine++
			s.counts.Total++
			text := s.currentScanner.Text()

			line, err := s.classifier.Classify(text)
			if err != nil {
				s.counts.Unmatched++
				if s.onUnmatched != nil {
					s.onUnmatched(s.currentSource, s.currentLine, text, err)
				}
				continue
			}

			line.Source = s.currentSource
			line.LineNum = s.currentLine
			return line, nil
		}

		if err := s.currentScanner.Err(); err != nil {
			return nil, fmt.Errorf("reading %s: %w", s.currentSource, err)
		}

		// Current file exhausted, try next
		if err := s.closeCurrentFile(); err != nil {
			return nil, err
		}
		s.currentScanner = nil
	}
}

// Counts returns the running line totals.
func (s *FileSource) Counts() LineCounts {
	return s.counts
}

// Close releases resources.
func (s *FileSource) Close() error {
	return s.closeCurrentFile()
}

func (s *FileSource) openNextFile() error {
	s.fileIndex++
	if s.fileIndex >= len(s.files) {
		return io.EOF
	}

	path := s.files[s.fileIndex]
	f, err := os.Open(path) // #nosec G304 -- user-provided paths are expected
	if err != nil {
		return fmt.Errorf("opening log file %s: %w", path, err)
	}

	s.currentFile = f
	s.currentScanner = bufio.NewScanner(f)
	s.currentScanner.Buffer(make([]byte, 0, 64*1024), 1024*1024) // 1MB max line size
	s.currentSource = path
	s.currentLine = 0
	return nil
}

func (s *FileSource) closeCurrentFile() error {
	if s.currentFile != nil {
		err := s.currentFile.Close()
		s.currentFile = nil
		s.currentScanner = nil
		return err
	}
	return nil
}
