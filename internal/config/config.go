package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is where Load looks when no config file is given.
const DefaultPath = "honeysift.yaml"

// Config is the full configuration surface. Values resolve in order:
// compiled-in defaults, then the YAML file, then HONEYSIFT_* environment
// variables. Binaries may additionally override single fields with flags.
type Config struct {
	LogPath      string `yaml:"log_path"`
	ModelPath    string `yaml:"model_path"`
	AnalyticsDir string `yaml:"analytics_dir"`
	IntervalSec  int    `yaml:"analysis_interval_sec"`
	MinCommands  int    `yaml:"min_commands"`
	MaxSnapshots int    `yaml:"max_snapshots"`
	CacheSize    int    `yaml:"prediction_cache_size"`
	HTTPAddr     string `yaml:"http_addr"`
	NATSURL      string `yaml:"nats_url"`
	NATSSubject  string `yaml:"nats_subject"`
	LogLevel     string `yaml:"log_level"`
}

// Default mirrors the settings the honeypot deployment has always used:
// hourly analysis, at least 10 commands per cycle, 20 retained snapshots.
func Default() Config {
	return Config{
		LogPath:      "log_files/cmd_audits.log",
		ModelPath:    "models/command_classifier.json.gz",
		AnalyticsDir: "analytics",
		IntervalSec:  3600,
		MinCommands:  10,
		MaxSnapshots: 20,
		CacheSize:    4096,
		HTTPAddr:     ":8090",
		NATSSubject:  "honeypot.insights",
		LogLevel:     "info",
	}
}

// Load resolves the configuration. An explicitly named file must exist; the
// default file is optional.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("unmarshal %s: %w", path, err)
		}
	case os.IsNotExist(err) && !explicit:
		// Defaults only.
	default:
		return cfg, fmt.Errorf("read %s: %w", path, err)
	}

	applyEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.IntervalSec <= 0 {
		return fmt.Errorf("analysis_interval_sec must be positive, got %d", c.IntervalSec)
	}
	if c.MinCommands < 0 {
		return fmt.Errorf("min_commands must not be negative, got %d", c.MinCommands)
	}
	if c.MaxSnapshots <= 0 {
		return fmt.Errorf("max_snapshots must be positive, got %d", c.MaxSnapshots)
	}
	return nil
}

// Interval is the analysis interval as a duration.
func (c Config) Interval() time.Duration {
	return time.Duration(c.IntervalSec) * time.Second
}

// ParseLevel maps the configured log_level to slog's. Unknown values fall
// back to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func applyEnv(c *Config) {
	c.LogPath = getEnv("HONEYSIFT_LOG_PATH", c.LogPath)
	c.ModelPath = getEnv("HONEYSIFT_MODEL_PATH", c.ModelPath)
	c.AnalyticsDir = getEnv("HONEYSIFT_ANALYTICS_DIR", c.AnalyticsDir)
	c.IntervalSec = getIntEnv("HONEYSIFT_ANALYSIS_INTERVAL_SEC", c.IntervalSec)
	c.MinCommands = getIntEnv("HONEYSIFT_MIN_COMMANDS", c.MinCommands)
	c.MaxSnapshots = getIntEnv("HONEYSIFT_MAX_SNAPSHOTS", c.MaxSnapshots)
	c.CacheSize = getIntEnv("HONEYSIFT_PREDICTION_CACHE_SIZE", c.CacheSize)
	c.HTTPAddr = getEnv("HONEYSIFT_HTTP_ADDR", c.HTTPAddr)
	c.NATSURL = getEnv("HONEYSIFT_NATS_URL", c.NATSURL)
	c.NATSSubject = getEnv("HONEYSIFT_NATS_SUBJECT", c.NATSSubject)
	c.LogLevel = getEnv("HONEYSIFT_LOG_LEVEL", c.LogLevel)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
