package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/mtokuda/honeysift/internal/category"
)

type trainingRecord struct {
	Command  string `json:"command"`
	Category string `json:"category"`
}

// TrainCommand fully refits the model from a JSONL file of labeled commands,
// one {"command": ..., "category": ...} object per line, and persists the new
// artifact.
func TrainCommand(ctx context.Context, args []string) error {
	_ = ctx

	flags := flag.NewFlagSet("train", flag.ContinueOnError)
	flags.SetOutput(os.Stderr)

	var cfgPath string
	var dataPath string
	flags.StringVar(&cfgPath, "config", "", "config file (default: honeysift.yaml if present)")
	flags.StringVar(&dataPath, "data", "", "labeled training data (JSONL)")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(dataPath) == "" {
		return fmt.Errorf("--data is required")
	}

	f, err := os.Open(dataPath)
	if err != nil {
		return fmt.Errorf("open %s: %w", dataPath, err)
	}
	defer f.Close()

	var commands []string
	var labels []category.Label
	s := bufio.NewScanner(f)
	s.Buffer(make([]byte, 64*1024), 1024*1024)
	line := 0
	for s.Scan() {
		line++
		if strings.TrimSpace(s.Text()) == "" {
			continue
		}
		var rec trainingRecord
		if err := json.Unmarshal(s.Bytes(), &rec); err != nil {
			return fmt.Errorf("%s:%d: %w", dataPath, line, err)
		}
		l := category.Label(rec.Category)
		if !category.Valid(l) {
			return fmt.Errorf("%s:%d: unknown category %q", dataPath, line, rec.Category)
		}
		commands = append(commands, rec.Command)
		labels = append(labels, l)
	}
	if err := s.Err(); err != nil {
		return fmt.Errorf("scan %s: %w", dataPath, err)
	}
	if len(commands) == 0 {
		return fmt.Errorf("%s: no training records", dataPath)
	}

	cfg, logger, err := loadConfig(cfgPath)
	if err != nil {
		return err
	}
	classifier, err := newClassifier(cfg, logger)
	if err != nil {
		return err
	}
	if err := classifier.Train(commands, labels); err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "trained on %d commands, model saved to %s\n", len(commands), cfg.ModelPath)
	return nil
}
