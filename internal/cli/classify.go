package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/mtokuda/honeysift/internal/cliui"
)

// ClassifyCommand predicts the intent category of ad-hoc commands given as
// arguments, or read one per line from stdin when no arguments are given.
func ClassifyCommand(ctx context.Context, args []string) error {
	_ = ctx

	fs := flag.NewFlagSet("classify", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var cfgPath string
	var asJSON bool
	var colorFlag string
	fs.StringVar(&cfgPath, "config", "", "config file (default: honeysift.yaml if present)")
	fs.BoolVar(&asJSON, "json", false, "emit predictions as JSON")
	fs.StringVar(&colorFlag, "color", "auto", "colorize output (auto|always|never)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	mode, err := cliui.ParseColorMode(colorFlag)
	if err != nil {
		return err
	}

	commands := fs.Args()
	if len(commands) == 0 {
		s := bufio.NewScanner(os.Stdin)
		for s.Scan() {
			commands = append(commands, s.Text())
		}
		if err := s.Err(); err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
	}
	if len(commands) == 0 {
		return fmt.Errorf("no commands to classify")
	}

	cfg, logger, err := loadConfig(cfgPath)
	if err != nil {
		return err
	}
	classifier, err := newClassifier(cfg, logger)
	if err != nil {
		return err
	}

	preds := classifier.BatchPredict(commands)

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(preds)
	}

	color := cliui.NewColorizer(mode, os.Stdout)
	rows := make([][]string, 0, len(preds))
	for _, p := range preds {
		rows = append(rows, []string{
			cliui.Truncate(p.Command, 60),
			color.Category(string(p.Category)),
			fmt.Sprintf("%.3f", p.Confidence),
		})
	}
	cliui.RenderTable(os.Stdout, []cliui.Column{
		{Name: "COMMAND"},
		{Name: "CATEGORY"},
		{Name: "CONFIDENCE", AlignRight: true},
	}, rows)
	return nil
}
