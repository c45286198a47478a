package cli

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mtokuda/honeysift/internal/cliui"
	"github.com/mtokuda/honeysift/internal/snapshot"
)

// HistoryCommand lists recent analysis cycles from the snapshot store's cycle
// index.
func HistoryCommand(ctx context.Context, args []string) error {
	_ = ctx

	flags := flag.NewFlagSet("history", flag.ContinueOnError)
	flags.SetOutput(os.Stderr)

	var cfgPath string
	var limit int
	var asJSON bool
	flags.StringVar(&cfgPath, "config", "", "config file (default: honeysift.yaml if present)")
	flags.IntVar(&limit, "limit", 20, "maximum cycles to list")
	flags.BoolVar(&asJSON, "json", false, "emit history as JSON")
	if err := flags.Parse(args); err != nil {
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

	rows, err := store.History(limit)
	if err != nil {
		return fmt.Errorf("cycle history: %w", err)
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	}

	if len(rows) == 0 {
		fmt.Fprintln(os.Stdout, "no analysis cycles recorded")
		return nil
	}

	table := make([][]string, 0, len(rows))
	for _, r := range rows {
		table = append(table, []string{
			cliui.FormatUnix(r.TS),
			fmt.Sprintf("%d", r.TotalCommands),
			r.AttackFocus,
			filepath.Base(r.Path),
		})
	}
	cliui.RenderTable(os.Stdout, []cliui.Column{
		{Name: "TIME"},
		{Name: "COMMANDS", AlignRight: true},
		{Name: "ATTACK FOCUS"},
		{Name: "SNAPSHOT"},
	}, table)
	return nil
}
