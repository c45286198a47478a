package cli

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/mtokuda/honeysift/internal/analyzer"
	"github.com/mtokuda/honeysift/internal/cliui"
	"github.com/mtokuda/honeysift/internal/snapshot"
)

// AnalyzeCommand runs one analysis cycle in the foreground and prints the
// outcome.
func AnalyzeCommand(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("analyze", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var cfgPath string
	var asJSON bool
	fs.StringVar(&cfgPath, "config", "", "config file (default: honeysift.yaml if present)")
	fs.BoolVar(&asJSON, "json", false, "emit the cycle result as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, logger, err := loadConfig(cfgPath)
	if err != nil {
		return err
	}
	classifier, err := newClassifier(cfg, logger)
	if err != nil {
		return err
	}
	store, err := snapshot.Open(cfg.AnalyticsDir, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	a := analyzer.New(analyzer.Config{
		LogPath:      cfg.LogPath,
		Interval:     cfg.Interval(),
		MinCommands:  cfg.MinCommands,
		MaxSnapshots: cfg.MaxSnapshots,
	}, classifier, store, analyzer.Options{Logger: logger})

	res := a.AnalyzeLogs(ctx)

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	fmt.Fprintf(os.Stdout, "status: %s (%d commands)\n", res.Status, res.Commands)
	if res.Err != nil {
		fmt.Fprintf(os.Stdout, "detail: %v\n", res.Err)
	}
	if res.Status == analyzer.StatusPersisted {
		fmt.Fprintln(os.Stdout)
		renderReport(os.Stdout, res.Report, cliui.NewColorizer(cliui.ColorAuto, os.Stdout))
	}
	return nil
}
