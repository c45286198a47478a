package analyzer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/mtokuda/honeysift/internal/classify"
	"github.com/mtokuda/honeysift/internal/honeylog"
	"github.com/mtokuda/honeysift/internal/insight"
	"github.com/mtokuda/honeysift/internal/metrics"
	"github.com/mtokuda/honeysift/internal/publish"
	"github.com/mtokuda/honeysift/internal/snapshot"
)

// CycleStatus is the outcome of one analysis cycle.
type CycleStatus string

const (
	StatusPersisted CycleStatus = "persisted"
	StatusSkipped   CycleStatus = "skipped_insufficient_data"
	StatusFailed    CycleStatus = "failed"
)

var (
	// ErrMissingInput marks a cycle skipped because the honeypot log does
	// not exist yet.
	ErrMissingInput = errors.New("honeypot log missing")

	// ErrInsufficientData marks a cycle skipped because the log held fewer
	// commands than the configured minimum. Expected, recoverable, not a
	// fault.
	ErrInsufficientData = errors.New("insufficient commands for analysis")
)

// CycleResult is what one AnalyzeLogs call produced. Err carries the skip or
// failure reason for callers in process; Detail is the same reason as a
// string so serialized results keep it. Callers branch on Status.
type CycleResult struct {
	Status   CycleStatus     `json:"status"`
	Commands int             `json:"commands"`
	Report   *insight.Report `json:"report,omitempty"`
	Detail   string          `json:"detail,omitempty"`
	Err      error           `json:"-"`
}

func cycleResult(status CycleStatus, commands int, report *insight.Report, err error) CycleResult {
	res := CycleResult{Status: status, Commands: commands, Report: report, Err: err}
	if err != nil {
		res.Detail = err.Error()
	}
	return res
}

// Config carries the analysis pipeline settings as an explicit value so tests
// can supply isolated temporary paths.
type Config struct {
	LogPath      string
	Interval     time.Duration
	MinCommands  int
	MaxSnapshots int
}

// Options are optional collaborators.
type Options struct {
	Publisher publish.Publisher
	Metrics   *metrics.Metrics
	Logger    *slog.Logger
}

// Analyzer orchestrates one classification-and-aggregation cycle over the
// honeypot log and optionally repeats it on an interval. A single background
// Run loop is the only writer of the current report; any number of foreground
// readers may call LatestInsights concurrently.
type Analyzer struct {
	cfg        Config
	classifier *classify.Classifier
	parser     *honeylog.Parser
	store      *snapshot.Store
	pub        publish.Publisher
	metrics    *metrics.Metrics
	log        *slog.Logger
	now        func() time.Time

	mu           sync.RWMutex
	current      *insight.Report
	lastAnalysis time.Time
}

func New(cfg Config, classifier *classify.Classifier, store *snapshot.Store, opts Options) *Analyzer {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{
		cfg:        cfg,
		classifier: classifier,
		parser:     honeylog.NewParser(cfg.LogPath, logger),
		store:      store,
		pub:        opts.Publisher,
		metrics:    opts.Metrics,
		log:        logger,
		now:        time.Now,
	}
}

// AnalyzeLogs runs one full cycle: parse, threshold check, classify,
// aggregate, persist, prune, publish. Every failure past the threshold check
// is contained here; the method never panics and never returns an error that
// a caller must handle to keep the loop alive.
func (a *Analyzer) AnalyzeLogs(ctx context.Context) (res CycleResult) {
	defer func() {
		if r := recover(); r != nil {
			a.log.Error("analysis cycle panic", "panic", r)
			a.metrics.IncCycle(string(StatusFailed))
			res = cycleResult(StatusFailed, 0, nil, fmt.Errorf("cycle panic: %v", r))
		}
	}()

	entries := a.parser.Parse()
	commands := honeylog.Commands(entries)
	if len(commands) < a.cfg.MinCommands {
		reason := fmt.Errorf("%w: have %d, need %d", ErrInsufficientData, len(commands), a.cfg.MinCommands)
		if _, err := os.Stat(a.cfg.LogPath); errors.Is(err, fs.ErrNotExist) {
			reason = fmt.Errorf("%w: %s", ErrMissingInput, a.cfg.LogPath)
		}
		a.log.Info("skipping analysis",
			"commands", len(commands), "min_commands", a.cfg.MinCommands, "reason", reason.Error())
		a.metrics.IncCycle(string(StatusSkipped))
		return cycleResult(StatusSkipped, len(commands), nil, reason)
	}

	report := a.classifier.GetInsights(commands)
	now := a.now()
	a.metrics.AddClassified(len(commands))

	a.mu.Lock()
	a.current = report
	a.lastAnalysis = now
	a.mu.Unlock()

	ts := now.Unix()
	if err := a.store.Write(ts, report); err != nil {
		a.log.Error("persist insights", "ts", ts, "error", err)
		a.metrics.IncCycle(string(StatusFailed))
		return cycleResult(StatusFailed, len(commands), report, err)
	}

	if pruned := a.store.Prune(a.cfg.MaxSnapshots); pruned > 0 {
		a.log.Info("pruned old snapshots", "removed", pruned, "kept", a.cfg.MaxSnapshots)
		a.metrics.AddPruned(pruned)
	}

	if a.pub != nil {
		if err := a.pub.PublishReport(ctx, ts, report); err != nil {
			a.log.Warn("publish insights", "error", err)
		}
	}

	a.metrics.SetLastAnalysis(float64(ts))
	a.metrics.IncCycle(string(StatusPersisted))
	a.log.Info("analysis cycle persisted",
		"commands", len(commands), "attack_focus", string(report.AttackFocus), "ts", ts)
	return cycleResult(StatusPersisted, len(commands), report, nil)
}

// Run executes cycles until ctx is cancelled, waiting interval between them
// (falling back to the configured interval, then an hour). One bad cycle
// never terminates the loop; cancellation is honored mid-wait.
func (a *Analyzer) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = a.cfg.Interval
	}
	if interval <= 0 {
		interval = time.Hour
	}
	a.log.Info("background analysis started", "interval", interval.String())
	for {
		a.AnalyzeLogs(ctx)
		select {
		case <-ctx.Done():
			a.log.Info("background analysis stopped")
			return
		case <-time.After(interval):
		}
	}
}

// LatestInsights returns the most recent report: the in-memory result of the
// last successful cycle, else the latest snapshot on disk, else a "no data"
// report. Never fails.
func (a *Analyzer) LatestInsights() *insight.Report {
	a.mu.RLock()
	cur := a.current
	a.mu.RUnlock()
	if cur != nil {
		return cur
	}

	rep, err := a.store.Latest()
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			a.log.Warn("read latest snapshot", "error", err)
		}
		return insight.NoData()
	}
	return rep
}

// LastAnalysisTime reports when the last successful cycle ran; zero when none
// has.
func (a *Analyzer) LastAnalysisTime() time.Time {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.lastAnalysis
}
