package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/mtokuda/honeysift/internal/analyzer"
	"github.com/mtokuda/honeysift/internal/classify"
	"github.com/mtokuda/honeysift/internal/insight"
)

// writeTestConfig points every path at dir so commands never touch the
// working directory.
func writeTestConfig(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "honeysift.yaml")
	doc := fmt.Sprintf(`log_path: %s
model_path: %s
analytics_dir: %s
min_commands: 1
log_level: error
`,
		filepath.Join(dir, "cmd_audits.log"),
		filepath.Join(dir, "model.json.gz"),
		filepath.Join(dir, "analytics"),
	)
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func captureStdout(t *testing.T) (*bytes.Buffer, func()) {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	os.Stdout = w
	buf := &bytes.Buffer{}
	done := make(chan struct{})
	go func() {
		_, _ = buf.ReadFrom(r)
		close(done)
	}()
	return buf, func() {
		_ = w.Close()
		os.Stdout = old
		<-done
		_ = r.Close()
	}
}

func TestClassifyJSON(t *testing.T) {
	cfgPath := writeTestConfig(t, t.TempDir())

	buf, restore := captureStdout(t)
	defer restore()

	err := ClassifyCommand(context.Background(), []string{"--config", cfgPath, "--json", "sudo -l", "ls -la"})
	if err != nil {
		t.Fatalf("ClassifyCommand: %v", err)
	}
	restore()

	var preds []classify.Prediction
	if err := json.Unmarshal(buf.Bytes(), &preds); err != nil {
		t.Fatalf("decode predictions: %v\noutput=%s", err, buf.String())
	}
	if len(preds) != 2 {
		t.Fatalf("expected 2 predictions, got %d", len(preds))
	}
	if preds[0].Command != "sudo -l" || preds[0].Category != "privilege_escalation" {
		t.Fatalf("unexpected prediction: %+v", preds[0])
	}
	if preds[1].Category != "reconnaissance" {
		t.Fatalf("unexpected prediction: %+v", preds[1])
	}
}

func TestClassifyNoCommands(t *testing.T) {
	cfgPath := writeTestConfig(t, t.TempDir())

	old := os.Stdin
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	w.Close()
	os.Stdin = r
	defer func() { os.Stdin = old; r.Close() }()

	if err := ClassifyCommand(context.Background(), []string{"--config", cfgPath}); err == nil {
		t.Fatal("expected error when no commands are given")
	}
}

func TestAnalyzeJSON(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeTestConfig(t, dir)

	log := "Command b'ls -la'executed by 10.0.0.7\n" +
		"Command b'sudo -l'executed by 10.0.0.7\n" +
		"Command b'crontab -e'executed by 10.0.0.8\n"
	if err := os.WriteFile(filepath.Join(dir, "cmd_audits.log"), []byte(log), 0o644); err != nil {
		t.Fatal(err)
	}

	buf, restore := captureStdout(t)
	defer restore()

	if err := AnalyzeCommand(context.Background(), []string{"--config", cfgPath, "--json"}); err != nil {
		t.Fatalf("AnalyzeCommand: %v", err)
	}
	restore()

	var res analyzer.CycleResult
	if err := json.Unmarshal(buf.Bytes(), &res); err != nil {
		t.Fatalf("decode cycle result: %v\noutput=%s", err, buf.String())
	}
	if res.Status != analyzer.StatusPersisted || res.Commands != 3 {
		t.Fatalf("unexpected cycle result: %+v", res)
	}
	if res.Report == nil || res.Report.TotalCommands != 3 {
		t.Fatalf("report missing from cycle result: %+v", res.Report)
	}

	if _, err := os.Stat(filepath.Join(dir, "analytics", "latest_insights.json")); err != nil {
		t.Fatalf("latest pointer not written: %v", err)
	}
}

func TestInsightsJSONEmpty(t *testing.T) {
	cfgPath := writeTestConfig(t, t.TempDir())

	buf, restore := captureStdout(t)
	defer restore()

	if err := InsightsCommand(context.Background(), []string{"--config", cfgPath, "--json"}); err != nil {
		t.Fatalf("InsightsCommand: %v", err)
	}
	restore()

	var rep insight.Report
	if err := json.Unmarshal(buf.Bytes(), &rep); err != nil {
		t.Fatalf("decode report: %v\noutput=%s", err, buf.String())
	}
	if rep.Status != insight.NoDataStatus {
		t.Fatalf("expected no-data report, got %+v", rep)
	}
}
