package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ccollicutt/qsolog/pkg/output"
)

// runConvertCmd executes convert with args and returns stdout and stderr.
func runConvertCmd(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewConvertCommand()
	cmd.SetArgs(args)

	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)

	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read %s: %v", path, err)
	}
	return string(data)
}

func TestRunConvert_Success(t *testing.T) {
	clearStationEnv(t)
	dir := t.TempDir()
	logPath := writeFile(t, dir, "ALL.TXT", sampleLog)
	outPath := filepath.Join(dir, "out.adi")

	stdout, _, err := runConvertCmd(t, "--callsign", "m7kcm", "--grid", "IO91", "-o", outPath, logPath)
	if err != nil {
		t.Fatalf("convert failed: %v", err)
	}

	adif := readFile(t, outPath)
	if !strings.HasPrefix(adif, "ADIF Export from WSJT-X ALL.TXT\n<EOH>\n") {
		t.Errorf("ADIF header = %q", adif[:40])
	}
	if strings.Count(adif, "<EOR>") != 1 {
		t.Errorf("ADIF records = %d, want 1\n%s", strings.Count(adif, "<EOR>"), adif)
	}
	for _, want := range []string{
		"<CALL:5>K3TJB", "<BAND:3>20m", "<FREQ:6>14.074", "<MODE:3>FT8",
		"<QSO_DATE:8>20240927", "<TIME_ON:4>2201", "<RST_SENT:3>-09",
		"<MY_GRIDSQUARE:4>IO91", "<GRIDSQUARE:4>EM77", "<OPERATOR:5>M7KCM",
	} {
		if !strings.Contains(adif, want) {
			t.Errorf("ADIF missing %s", want)
		}
	}
	if strings.Contains(adif, "W1AW") {
		t.Error("open exchange written without --include-open")
	}

	for _, want := range []string{
		"Lines: 8 total, 5 contributing, 2 non-contributing, 1 unmatched",
		"Exchanges: 2 (1 closed, 1 open)",
		"Records written: 1 to " + outPath,
	} {
		if !strings.Contains(stdout, want) {
			t.Errorf("summary missing %q\n%s", want, stdout)
		}
	}
}

func TestRunConvert_IncludeOpen(t *testing.T) {
	clearStationEnv(t)
	dir := t.TempDir()
	logPath := writeFile(t, dir, "ALL.TXT", sampleLog)
	outPath := filepath.Join(dir, "out.adi")

	_, _, err := runConvertCmd(t, "--callsign", "M7KCM", "--grid", "IO91", "--include-open", "-o", outPath, logPath)
	if err != nil {
		t.Fatalf("convert failed: %v", err)
	}

	adif := readFile(t, outPath)
	if strings.Count(adif, "<EOR>") != 2 {
		t.Errorf("ADIF records = %d, want 2", strings.Count(adif, "<EOR>"))
	}
	if !strings.Contains(adif, "<CALL:4>W1AW") {
		t.Error("open exchange missing with --include-open")
	}
}

func TestRunConvert_ConfigFile(t *testing.T) {
	clearStationEnv(t)
	dir := t.TempDir()
	logPath := writeFile(t, dir, "ALL.TXT", sampleLog)
	outPath := filepath.Join(dir, "contacts.adi")
	configPath := writeFile(t, dir, "qsolog.yaml", `station:
  callsign: M7KCM
  grid: IO91wm
input:
  paths: ["`+logPath+`"]
output:
  path: `+outPath+`
  header: "my log"
`)

	_, _, err := runConvertCmd(t, "-c", configPath)
	if err != nil {
		t.Fatalf("convert failed: %v", err)
	}

	adif := readFile(t, outPath)
	if !strings.HasPrefix(adif, "my log\n<EOH>\n") {
		t.Errorf("header not taken from config: %q", adif)
	}
	if !strings.Contains(adif, "<MY_GRIDSQUARE:6>IO91wm") {
		t.Error("grid not taken from config")
	}
}

func TestRunConvert_EnvStation(t *testing.T) {
	t.Setenv("QSOLOG_CALLSIGN", "M7KCM")
	t.Setenv("QSOLOG_GRID", "IO91")
	dir := t.TempDir()
	logPath := writeFile(t, dir, "ALL.TXT", sampleLog)

	_, _, err := runConvertCmd(t, "-o", filepath.Join(dir, "out.adi"), logPath)
	if err != nil {
		t.Fatalf("convert failed: %v", err)
	}
}

func TestRunConvert_EnvFile(t *testing.T) {
	clearStationEnv(t)
	dir := t.TempDir()
	logPath := writeFile(t, dir, "ALL.TXT", sampleLog)
	envPath := writeFile(t, dir, ".env", "QSOLOG_CALLSIGN=M7KCM\nQSOLOG_GRID=IO91\n")
	outPath := filepath.Join(dir, "out.adi")

	_, _, err := runConvertCmd(t, "--env-file", envPath, "-o", outPath, logPath)
	if err != nil {
		t.Fatalf("convert failed: %v", err)
	}
	if !strings.Contains(readFile(t, outPath), "<MY_GRIDSQUARE:4>IO91") {
		t.Error("grid not taken from env file")
	}
}

func TestRunConvert_JSONSummary(t *testing.T) {
	clearStationEnv(t)
	dir := t.TempDir()
	logPath := writeFile(t, dir, "ALL.TXT", sampleLog)

	stdout, _, err := runConvertCmd(t, "--callsign", "M7KCM", "--grid", "IO91",
		"-o", filepath.Join(dir, "out.adi"), "--format", "json", "--list", logPath)
	if err != nil {
		t.Fatalf("convert failed: %v", err)
	}

	var report output.Report
	if err := json.Unmarshal([]byte(stdout), &report); err != nil {
		t.Fatalf("summary is not valid JSON: %v\n%s", err, stdout)
	}
	if report.Summary.RecordsWritten != 1 {
		t.Errorf("RecordsWritten = %d, want 1", report.Summary.RecordsWritten)
	}
	if len(report.Exchanges) != 2 {
		t.Errorf("Exchanges = %d, want 2", len(report.Exchanges))
	}
	sum := report.Summary
	if sum.TotalLines != sum.ContributingLines+sum.NonContributingLines+sum.UnmatchedLines {
		t.Errorf("line counts do not add up: %+v", sum)
	}
}

func TestRunConvert_Verbose(t *testing.T) {
	clearStationEnv(t)
	dir := t.TempDir()
	logPath := writeFile(t, dir, "ALL.TXT", sampleLog)

	_, stderr, err := runConvertCmd(t, "--callsign", "M7KCM", "--grid", "IO91",
		"-o", filepath.Join(dir, "out.adi"), "-v", logPath)
	if err != nil {
		t.Fatalf("convert failed: %v", err)
	}

	for _, want := range []string{"exchange opened", "exchange closed", "line unmatched", "call=K3TJB"} {
		if !strings.Contains(stderr, want) {
			t.Errorf("verbose log missing %q\n%s", want, stderr)
		}
	}
}

func TestRunConvert_Logbook(t *testing.T) {
	clearStationEnv(t)
	dir := t.TempDir()
	logPath := writeFile(t, dir, "ALL.TXT", sampleLog)
	outPath := filepath.Join(dir, "out.adi")
	dbPath := filepath.Join(dir, "qsolog.db")

	args := []string{"--callsign", "M7KCM", "--grid", "IO91", "-o", outPath, "--logbook", dbPath, "--new-only", logPath}

	if _, _, err := runConvertCmd(t, args...); err != nil {
		t.Fatalf("first convert failed: %v", err)
	}
	if strings.Count(readFile(t, outPath), "<EOR>") != 1 {
		t.Fatal("first run should write one record")
	}

	stdout, _, err := runConvertCmd(t, args...)
	if err != nil {
		t.Fatalf("second convert failed: %v", err)
	}
	if strings.Count(readFile(t, outPath), "<EOR>") != 0 {
		t.Error("second run should write no records")
	}
	if !strings.Contains(stdout, "Already in logbook: 1") {
		t.Errorf("summary missing logbook count\n%s", stdout)
	}
}

func TestRunConvert_LogbookIncludeOpen(t *testing.T) {
	clearStationEnv(t)
	dir := t.TempDir()
	outPath := filepath.Join(dir, "out.adi")
	dbPath := filepath.Join(dir, "qsolog.db")

	// The first run sees K3TJB before the sign-off.
	partial := strings.Join(strings.Split(sampleLog, "\n")[:4], "\n") + "\n"
	logPath := writeFile(t, dir, "ALL.TXT", partial)
	args := []string{"--callsign", "M7KCM", "--grid", "IO91", "-o", outPath,
		"--logbook", dbPath, "--new-only", "--include-open", logPath}

	if _, _, err := runConvertCmd(t, args...); err != nil {
		t.Fatalf("first convert failed: %v", err)
	}
	first := readFile(t, outPath)
	if strings.Count(first, "<EOR>") != 1 || strings.Contains(first, "TIME_OFF") {
		t.Fatalf("first run should write K3TJB in progress\n%s", first)
	}

	writeFile(t, dir, "ALL.TXT", sampleLog)
	if _, _, err := runConvertCmd(t, args...); err != nil {
		t.Fatalf("second convert failed: %v", err)
	}
	second := readFile(t, outPath)
	if strings.Count(second, "<EOR>") != 2 {
		t.Errorf("second run records = %d, want 2\n%s", strings.Count(second, "<EOR>"), second)
	}
	if !strings.Contains(second, "<CALL:5>K3TJB") || !strings.Contains(second, "<TIME_OFF:4>2201") {
		t.Errorf("finished K3TJB record missing\n%s", second)
	}
}

func TestRunConvert_Errors(t *testing.T) {
	clearStationEnv(t)
	dir := t.TempDir()
	logPath := writeFile(t, dir, "ALL.TXT", sampleLog)
	outPath := filepath.Join(dir, "out.adi")

	tests := []struct {
		name string
		args []string
	}{
		{"missing input", []string{"--callsign", "M7KCM", "--grid", "IO91", "-o", outPath, filepath.Join(dir, "nope.txt")}},
		{"missing callsign", []string{"--grid", "IO91", "-o", outPath, logPath}},
		{"missing grid", []string{"--callsign", "M7KCM", "-o", outPath, logPath}},
		{"invalid grid", []string{"--callsign", "M7KCM", "--grid", "XYZ", "-o", outPath, logPath}},
		{"unwritable output", []string{"--callsign", "M7KCM", "--grid", "IO91", "-o", filepath.Join(dir, "no", "such", "dir", "out.adi"), logPath}},
		{"unknown format", []string{"--callsign", "M7KCM", "--grid", "IO91", "-o", outPath, "--format", "xml", logPath}},
		{"new-only without logbook", []string{"--callsign", "M7KCM", "--grid", "IO91", "-o", outPath, "--new-only", logPath}},
		{"missing config", []string{"-c", filepath.Join(dir, "nope.yaml"), logPath}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := runConvertCmd(t, tt.args...); err == nil {
				t.Error("expected error")
			}
		})
	}

	if _, err := os.Stat(outPath); !os.IsNotExist(err) {
		t.Error("failed conversions should not leave an output file")
	}
}
