package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"

	"github.com/mtokuda/honeysift/internal/category"
	"github.com/mtokuda/honeysift/internal/classify"
	"github.com/mtokuda/honeysift/internal/cliui"
	"github.com/mtokuda/honeysift/internal/config"
	"github.com/mtokuda/honeysift/internal/insight"
)

func newLogger(level string) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: config.ParseLevel(level),
	}))
}

func loadConfig(path string) (config.Config, *slog.Logger, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, nil, err
	}
	return cfg, newLogger(cfg.LogLevel), nil
}

func newClassifier(cfg config.Config, logger *slog.Logger) (*classify.Classifier, error) {
	c, err := classify.New(cfg.ModelPath, classify.Options{
		CacheSize: cfg.CacheSize,
		Logger:    logger,
	})
	if err != nil {
		return nil, fmt.Errorf("build classifier: %w", err)
	}
	return c, nil
}

// renderReport prints a report the way the dashboard would show it: headline
// numbers, the category distribution, then the per-category command rankings.
func renderReport(w io.Writer, r *insight.Report, color cliui.Colorizer) {
	if !r.HasData() {
		fmt.Fprintln(w, "no insight data yet")
		return
	}

	fmt.Fprintln(w, cliui.JoinKV(
		cliui.KV{K: "total_commands", V: fmt.Sprintf("%d", r.TotalCommands)},
		cliui.KV{K: "attack_focus", V: color.Category(string(r.AttackFocus))},
	))
	fmt.Fprintln(w)

	type catRow struct {
		label category.Label
		count int
		pct   float64
	}
	rows := make([]catRow, 0, len(r.CategoryCounts))
	for l, n := range r.CategoryCounts {
		rows = append(rows, catRow{label: l, count: n, pct: r.CategoryPercentages[l]})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].count == rows[j].count {
			return rows[i].label < rows[j].label
		}
		return rows[i].count > rows[j].count
	})

	table := make([][]string, 0, len(rows))
	for _, row := range rows {
		table = append(table, []string{
			color.Category(string(row.label)),
			fmt.Sprintf("%d", row.count),
			cliui.Percent(row.pct),
		})
	}
	cliui.RenderTable(w, []cliui.Column{
		{Name: "CATEGORY"},
		{Name: "COUNT", AlignRight: true},
		{Name: "PERCENT", AlignRight: true},
	}, table)

	for _, row := range rows {
		top := r.TopCommands[row.label]
		if len(top) == 0 {
			continue
		}
		fmt.Fprintf(w, "\nTop commands (%s):\n", color.Category(string(row.label)))
		for _, cc := range top {
			fmt.Fprintf(w, "  %5d  %s\n", cc.Count, cliui.Truncate(cc.Command, 100))
		}
	}
}
