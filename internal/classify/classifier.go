package classify

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/klauspost/compress/gzip"

	"github.com/mtokuda/honeysift/internal/category"
	"github.com/mtokuda/honeysift/internal/insight"
	"github.com/mtokuda/honeysift/internal/metrics"
)

var (
	// ErrInvalidInput marks malformed training input (mismatched pair
	// lengths, unknown categories, empty sets).
	ErrInvalidInput = errors.New("invalid training input")

	// ErrModelLoad marks a missing or corrupt model artifact. It is logged
	// and recovered from, never returned to callers of LoadModel.
	ErrModelLoad = errors.New("model load")
)

const defaultCacheSize = 4096

// Prediction is the classification of a single command.
type Prediction struct {
	Command      string                     `json:"command"`
	Category     category.Label             `json:"category"`
	Confidence   float64                    `json:"confidence"`
	Distribution map[category.Label]float64 `json:"distribution"`
}

// Options tune a Classifier. The zero value is usable.
type Options struct {
	CacheSize int
	Logger    *slog.Logger
	Metrics   *metrics.Metrics
}

// Classifier maps command strings to intent categories. It owns a trainable
// model, persists it at modelPath, and caches recent predictions. Safe for
// concurrent use.
type Classifier struct {
	mu      sync.RWMutex
	model   Model
	cache   *lru.Cache[string, Prediction]
	path    string
	log     *slog.Logger
	metrics *metrics.Metrics
}

// New builds a Classifier backed by modelPath. If an artifact exists there it
// is loaded; otherwise the classifier trains from the seed corpus and saves
// the result immediately so later runs load instead of retraining.
func New(modelPath string, opts Options) (*Classifier, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	size := opts.CacheSize
	if size <= 0 {
		size = defaultCacheSize
	}
	cache, err := lru.New[string, Prediction](size)
	if err != nil {
		return nil, fmt.Errorf("prediction cache: %w", err)
	}

	c := &Classifier{
		model:   NewMultinomialNB(),
		cache:   cache,
		path:    modelPath,
		log:     logger,
		metrics: opts.Metrics,
	}

	if modelPath != "" {
		if err := os.MkdirAll(filepath.Dir(modelPath), 0o755); err != nil {
			return nil, fmt.Errorf("model dir: %w", err)
		}
	}

	if _, err := os.Stat(modelPath); err == nil {
		c.LoadModel(modelPath)
		return c, nil
	}
	if err := c.trainSeed(); err != nil {
		return nil, err
	}
	if modelPath != "" {
		if err := c.SaveModel(modelPath); err != nil {
			c.log.Warn("save bootstrap model", "path", modelPath, "error", err)
		}
	}
	return c, nil
}

func (c *Classifier) trainSeed() error {
	commands, labels := category.SeedTrainingSet()
	model := NewMultinomialNB()
	if err := model.Fit(commands, labels); err != nil {
		return fmt.Errorf("seed training: %w", err)
	}
	c.mu.Lock()
	c.model = model
	c.mu.Unlock()
	c.cache.Purge()
	return nil
}

// Predict classifies one command. The empty string is a valid input; its
// prediction is driven by the class priors alone. When the posterior is tied
// the alphabetically smallest category wins.
func (c *Classifier) Predict(command string) Prediction {
	if p, ok := c.cache.Get(command); ok {
		c.metrics.IncCacheHit()
		return p
	}

	c.mu.RLock()
	dist := c.model.Distribution(command)
	c.mu.RUnlock()

	p := Prediction{Command: command, Category: category.Miscellaneous, Distribution: dist}
	for _, l := range category.All() {
		prob, ok := dist[l]
		if !ok {
			continue
		}
		if prob > p.Confidence {
			p.Confidence = prob
			p.Category = l
		}
	}
	c.cache.Add(command, p)
	return p
}

// BatchPredict classifies commands independently, preserving input order.
func (c *Classifier) BatchPredict(commands []string) []Prediction {
	out := make([]Prediction, len(commands))
	for i, cmd := range commands {
		out[i] = c.Predict(cmd)
	}
	return out
}

// Train fully refits the model on the supplied pairs, replaces the current
// state, and re-persists the artifact.
func (c *Classifier) Train(commands []string, labels []category.Label) error {
	model := NewMultinomialNB()
	if err := model.Fit(commands, labels); err != nil {
		return err
	}
	c.mu.Lock()
	c.model = model
	c.mu.Unlock()
	c.cache.Purge()

	if c.path != "" {
		if err := c.SaveModel(c.path); err != nil {
			c.log.Warn("save retrained model", "path", c.path, "error", err)
		}
	}
	return nil
}

// SaveModel writes the serialized pipeline atomically (temp file + rename) so
// a concurrent reader never observes a partial artifact.
func (c *Classifier) SaveModel(path string) error {
	c.mu.RLock()
	data, err := c.model.MarshalBinary()
	c.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("marshal model: %w", err)
	}

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		return fmt.Errorf("compress model: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("compress model: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write model: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename model: %w", err)
	}
	return nil
}

// LoadModel replaces the in-memory model with the artifact at path. A missing
// or corrupt artifact is not fatal: the failure is logged and the classifier
// retrains from the seed corpus instead.
func (c *Classifier) LoadModel(path string) {
	if err := c.loadModel(path); err != nil {
		c.log.Warn("falling back to seed training", "path", path,
			"error", fmt.Errorf("%w: %v", ErrModelLoad, err))
		if err := c.trainSeed(); err != nil {
			c.log.Error("seed training after load failure", "error", err)
		}
	}
}

func (c *Classifier) loadModel(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	zr, err := gzip.NewReader(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("decompress: %w", err)
	}
	data, err := io.ReadAll(zr)
	if err != nil {
		return fmt.Errorf("decompress: %w", err)
	}
	if err := zr.Close(); err != nil {
		return fmt.Errorf("decompress: %w", err)
	}

	model := NewMultinomialNB()
	if err := model.UnmarshalBinary(data); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	c.mu.Lock()
	c.model = model
	c.mu.Unlock()
	c.cache.Purge()
	return nil
}

// GetInsights classifies every command and aggregates the results into a
// report. An empty input yields a status-only "no data" report.
func (c *Classifier) GetInsights(commands []string) *insight.Report {
	preds := c.BatchPredict(commands)
	classified := make([]insight.Classified, len(preds))
	for i, p := range preds {
		classified[i] = insight.Classified{Command: p.Command, Category: p.Category}
	}
	return insight.Aggregate(classified)
}
