package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ccollicutt/qsolog/pkg/config"
	"github.com/ccollicutt/qsolog/pkg/detector"
)

func runInspectCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewInspectCommand()
	cmd.SetArgs(args)

	var buf bytes.Buffer
	cmd.SetOut(&buf)

	err := cmd.ExecuteContext(context.Background())
	return buf.String(), err
}

func TestRunInspect_Text(t *testing.T) {
	logPath := writeFile(t, t.TempDir(), "ALL.TXT", sampleLog)

	out, err := runInspectCmd(t, logPath)
	if err != nil {
		t.Fatalf("inspect failed: %v", err)
	}

	for _, want := range []string{
		"Contact Log Inspection",
		"Lines sampled: 8",
		"Lines matched: 7 (Rx 4, Tx 3)",
		"Bands: 20m (7)",
		"Modes: FT8 (7)",
		"[WARN] Log Grammar",
		"87.5% of lines match",
		"line 8: this is not a log line",
		"Summary:",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\n%s", want, out)
		}
	}
}

func TestRunInspect_JSON(t *testing.T) {
	logPath := writeFile(t, t.TempDir(), "ALL.TXT", sampleLog)

	out, err := runInspectCmd(t, "-o", "json", logPath)
	if err != nil {
		t.Fatalf("inspect failed: %v", err)
	}

	var parsed JSONOutput
	if err := json.Unmarshal([]byte(out), &parsed); err != nil {
		t.Fatalf("Output is not valid JSON: %v", err)
	}
	if parsed.SampledLines != 8 || parsed.MatchedLines != 7 {
		t.Errorf("sampled/matched = %d/%d, want 8/7", parsed.SampledLines, parsed.MatchedLines)
	}
	if len(parsed.Unmatched) != 1 || parsed.Unmatched[0].LineNum != 8 {
		t.Errorf("Unmatched = %+v", parsed.Unmatched)
	}
	if len(parsed.Checks) == 0 {
		t.Error("Checks missing")
	}
}

func TestRunInspect_UnknownBand(t *testing.T) {
	dir := t.TempDir()
	logPath := writeFile(t, dir, "ALL.TXT",
		"240927_220100  1296.174 Rx FT8    -15 -0.0  373 K3TJB M7KCM EM77\n")

	out, err := runInspectCmd(t, logPath)
	if err != nil {
		t.Fatalf("inspect failed: %v", err)
	}
	if !strings.Contains(out, "[WARN] Bands") {
		t.Errorf("expected band warning\n%s", out)
	}

	configPath := writeFile(t, dir, "bands.yaml", `bands:
  - {label: 23cm, lower_khz: 1240000, upper_khz: 1300000}
`)
	out, err = runInspectCmd(t, "-c", configPath, logPath)
	if err != nil {
		t.Fatalf("inspect failed: %v", err)
	}
	if !strings.Contains(out, "Bands: 23cm (1)") {
		t.Errorf("custom band table not used\n%s", out)
	}
}

func TestRunInspect_Errors(t *testing.T) {
	logPath := writeFile(t, t.TempDir(), "ALL.TXT", sampleLog)

	if _, err := runInspectCmd(t, "/nonexistent/ALL.TXT"); err == nil {
		t.Error("expected error for missing file")
	}
	if _, err := runInspectCmd(t, "-o", "xml", logPath); err == nil {
		t.Error("expected error for unknown output format")
	}
}

func TestRunInspect_WriteConfig(t *testing.T) {
	dir := t.TempDir()
	logPath := writeFile(t, dir, "ALL.TXT", sampleLog)
	configPath := filepath.Join(dir, "qsolog.yaml")

	out, err := runInspectCmd(t, "-w", configPath, logPath)
	if err != nil {
		t.Fatalf("inspect failed: %v", err)
	}
	if !strings.Contains(out, "Wrote starter config to: "+configPath) {
		t.Errorf("missing write confirmation\n%s", out)
	}

	// The starter config loads once the station is supplied.
	t.Setenv(config.EnvCallsign, "M7KCM")
	t.Setenv(config.EnvGrid, "IO91")
	cfg, err := config.Load(context.Background(), configPath)
	if err != nil {
		t.Fatalf("starter config does not load: %v", err)
	}
	if len(cfg.Input.Paths) != 1 || !filepath.IsAbs(cfg.Input.Paths[0]) {
		t.Errorf("Input.Paths = %v, want one absolute path", cfg.Input.Paths)
	}

	// Never overwrite.
	if _, err := runInspectCmd(t, "-w", configPath, logPath); err == nil {
		t.Error("expected error when config exists")
	}
}

func TestWriteStarterConfig_NoMatch(t *testing.T) {
	dir := t.TempDir()
	result := detector.New().DetectFromLines([]string{"garbage"})

	err := writeStarterConfig(&bytes.Buffer{}, result, "ALL.TXT", filepath.Join(dir, "qsolog.yaml"))
	if err == nil {
		t.Error("expected error when nothing matches")
	}
	if _, err := os.Stat(filepath.Join(dir, "qsolog.yaml")); !os.IsNotExist(err) {
		t.Error("config written despite error")
	}
}

func TestCheckGrammar(t *testing.T) {
	tests := []struct {
		name    string
		matched int
		sampled int
		want    string
	}{
		{"all", 10, 10, "ok"},
		{"most", 9, 10, "ok"},
		{"half", 5, 10, "warning"},
		{"few", 1, 10, "error"},
		{"empty", 0, 0, "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := checkGrammar(&detector.DetectionResult{MatchedLines: tt.matched, SampledLines: tt.sampled})
			if r.Status != tt.want {
				t.Errorf("Status = %q, want %q", r.Status, tt.want)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate() = %q", got)
	}
	if got := truncate("a longer line of text", 10); got != "a longe..." {
		t.Errorf("truncate() = %q", got)
	}
}
