package parser

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"
)

const sampleLog = `240927_220100   14.074 Rx FT8   -15 -0.0  373 K3TJB M7KCM EM77
240927_220115   14.074 Tx FT8   -9 0.0  373 M7KCM K3TJB 73
240927_220130   14.074 Rx FT8
`

func readAll(t *testing.T, source LineSource) []*RawLine {
	t.Helper()
	ctx := context.Background()
	var lines []*RawLine

	for {
		line, err := source.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Next() error = %v", err)
		}
		lines = append(lines, line)
	}
	return lines
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestFileSource_Next(t *testing.T) {
	logFile := writeFile(t, t.TempDir(), "ALL.TXT", sampleLog)

	source := NewFileSource([]string{logFile}, NewClassifier(nil))
	defer source.Close()

	lines := readAll(t, source)
	if len(lines) != 2 {
		t.Fatalf("Got %d lines, want 2", len(lines))
	}

	if lines[0].LineNum != 1 {
		t.Errorf("LineNum = %d, want 1", lines[0].LineNum)
	}
	if lines[1].LineNum != 2 {
		t.Errorf("LineNum = %d, want 2", lines[1].LineNum)
	}
	if lines[0].Source != logFile {
		t.Errorf("Source = %q, want %q", lines[0].Source, logFile)
	}
	expectedTime := time.Date(2024, 9, 27, 22, 1, 0, 0, time.UTC)
	if !lines[0].Timestamp.Equal(expectedTime) {
		t.Errorf("Timestamp = %v, want %v", lines[0].Timestamp, expectedTime)
	}
}

func TestFileSource_CountsUnmatched(t *testing.T) {
	content := sampleLog + "\n" + "garbage line\n"
	logFile := writeFile(t, t.TempDir(), "ALL.TXT", content)

	source := NewFileSource([]string{logFile}, NewClassifier(nil))
	defer source.Close()

	var rejected []int
	source.OnUnmatched(func(_ string, lineNum int, _ string, _ error) {
		rejected = append(rejected, lineNum)
	})

	lines := readAll(t, source)

	counts := source.Counts()
	if counts.Total != 5 {
		t.Errorf("Total = %d, want 5", counts.Total)
	}
	if counts.Unmatched != 3 {
		t.Errorf("Unmatched = %d, want 3", counts.Unmatched)
	}
	if counts.Total != len(lines)+counts.Unmatched {
		t.Errorf("Total = %d, want matched %d + unmatched %d", counts.Total, len(lines), counts.Unmatched)
	}
	if len(rejected) != 3 || rejected[0] != 3 || rejected[1] != 4 || rejected[2] != 5 {
		t.Errorf("rejected lines = %v, want [3 4 5]", rejected)
	}
}

func TestFileSource_MultipleFilesInOrder(t *testing.T) {
	dir := t.TempDir()

	// The second file is older; argument order must still win.
	a := writeFile(t, dir, "a.txt", "240928_100000   14.074 Rx FT8   -1 0.1  500 CQ W1AW FN31\n")
	b := writeFile(t, dir, "b.txt", "240927_100000   14.074 Rx FT8   -2 0.1  600 CQ K1ABC FN42\n")

	source := NewFileSource([]string{a, b}, NewClassifier(nil))
	defer source.Close()

	lines := readAll(t, source)
	if len(lines) != 2 {
		t.Fatalf("Got %d lines, want 2", len(lines))
	}
	if lines[0].Source != a || lines[1].Source != b {
		t.Errorf("Sources = [%s %s], want [%s %s]", lines[0].Source, lines[1].Source, a, b)
	}
	if lines[1].LineNum != 1 {
		t.Errorf("LineNum = %d, want 1 (reset per file)", lines[1].LineNum)
	}
}

func TestFileSource_EmptyFile(t *testing.T) {
	logFile := writeFile(t, t.TempDir(), "empty.txt", "")

	source := NewFileSource([]string{logFile}, nil)
	defer source.Close()

	_, err := source.Next(context.Background())
	if err != io.EOF {
		t.Errorf("Next() error = %v, want io.EOF", err)
	}
	if source.Counts().Total != 0 {
		t.Errorf("Total = %d, want 0", source.Counts().Total)
	}
}

func TestFileSource_FileNotFound(t *testing.T) {
	source := NewFileSource([]string{"/nonexistent/ALL.TXT"}, nil)
	defer source.Close()

	_, err := source.Next(context.Background())
	if err == nil || err == io.EOF {
		t.Errorf("Next() error = %v, want open error", err)
	}
}

func TestFileSource_ContextCancellation(t *testing.T) {
	logFile := writeFile(t, t.TempDir(), "ALL.TXT", sampleLog)

	source := NewFileSource([]string{logFile}, nil)
	defer source.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // Cancel immediately

	_, err := source.Next(ctx)
	if err != context.Canceled {
		t.Errorf("Next() error = %v, want context.Canceled", err)
	}
}

func TestFileSource_Close(t *testing.T) {
	logFile := writeFile(t, t.TempDir(), "ALL.TXT", sampleLog)

	source := NewFileSource([]string{logFile}, nil)

	// Read one line to open the file
	_, err := source.Next(context.Background())
	if err != nil && err != io.EOF {
		t.Fatalf("Next() error = %v", err)
	}

	if err := source.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}
