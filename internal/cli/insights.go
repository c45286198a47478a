package cli

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"

	"github.com/mtokuda/honeysift/internal/cliui"
	"github.com/mtokuda/honeysift/internal/insight"
	"github.com/mtokuda/honeysift/internal/snapshot"
)

// InsightsCommand shows the most recently persisted insight report.
func InsightsCommand(ctx context.Context, args []string) error {
	_ = ctx

	flags := flag.NewFlagSet("insights", flag.ContinueOnError)
	flags.SetOutput(os.Stderr)

	var cfgPath string
	var asJSON bool
	var colorFlag string
	flags.StringVar(&cfgPath, "config", "", "config file (default: honeysift.yaml if present)")
	flags.BoolVar(&asJSON, "json", false, "emit the report as JSON")
	flags.StringVar(&colorFlag, "color", "auto", "colorize output (auto|always|never)")
	if err := flags.Parse(args); err != nil {
		return err
	}

	mode, err := cliui.ParseColorMode(colorFlag)
	if err != nil {
		return err
	}

	cfg, logger, err := loadConfig(cfgPath)
	if err != nil {
		return err
	}
	store, err := snapshot.Open(cfg.AnalyticsDir, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	report, err := store.Latest()
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("read latest insights: %w", err)
		}
		report = insight.NoData()
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	renderReport(os.Stdout, report, cliui.NewColorizer(mode, os.Stdout))
	return nil
}
