package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/mtokuda/honeysift/internal/analyzer"
	"github.com/mtokuda/honeysift/internal/api"
	"github.com/mtokuda/honeysift/internal/classify"
	"github.com/mtokuda/honeysift/internal/config"
	"github.com/mtokuda/honeysift/internal/metrics"
	"github.com/mtokuda/honeysift/internal/publish"
	"github.com/mtokuda/honeysift/internal/snapshot"
)

func main() {
	os.Exit(realMain())
}

func realMain() int {
	var cfgPath string
	var httpAddr string
	var intervalSec int
	flag.StringVar(&cfgPath, "config", "", "config file (default: honeysift.yaml if present)")
	flag.StringVar(&httpAddr, "http", "", "HTTP listen address (overrides config)")
	flag.IntVar(&intervalSec, "interval", 0, "analysis interval in seconds (overrides config)")
	flag.Parse()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		return 1
	}
	if httpAddr != "" {
		cfg.HTTPAddr = httpAddr
	}
	if intervalSec > 0 {
		cfg.IntervalSec = intervalSec
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: config.ParseLevel(cfg.LogLevel),
	}))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	m := metrics.New(prometheus.DefaultRegisterer)

	classifier, err := classify.New(cfg.ModelPath, classify.Options{
		CacheSize: cfg.CacheSize,
		Logger:    logger,
		Metrics:   m,
	})
	if err != nil {
		logger.Error("build classifier", "error", err)
		return 1
	}

	store, err := snapshot.Open(cfg.AnalyticsDir, logger)
	if err != nil {
		logger.Error("open snapshot store", "error", err)
		return 1
	}
	defer store.Close()

	var pub publish.Publisher
	if cfg.NATSURL != "" {
		nats, err := publish.ConnectNATS(cfg.NATSURL, cfg.NATSSubject, logger)
		if err != nil {
			logger.Warn("insight publishing disabled", "error", err)
		} else {
			pub = nats
			defer nats.Close()
		}
	}

	a := analyzer.New(analyzer.Config{
		LogPath:      cfg.LogPath,
		Interval:     cfg.Interval(),
		MinCommands:  cfg.MinCommands,
		MaxSnapshots: cfg.MaxSnapshots,
	}, classifier, store, analyzer.Options{
		Publisher: pub,
		Metrics:   m,
		Logger:    logger,
	})

	go a.Run(ctx, cfg.Interval())

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           api.NewServer(a, store, logger).Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("honeysiftd listening",
		"addr", cfg.HTTPAddr, "log_path", cfg.LogPath, "interval_sec", cfg.IntervalSec)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server", "error", err)
		return 1
	}
	return 0
}
