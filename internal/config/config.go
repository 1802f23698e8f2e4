// Package config loads warnlog settings from defaults, a .env file, an
// optional YAML file and WARNLOG_* environment variables, in that order.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/eslreporter/warnlog/internal/safefile"
)

// MaxConfigFileSize caps the YAML config file.
const MaxConfigFileSize = 1 * 1024 * 1024

// Environment variables. They override the YAML file.
const (
	EnvLogPath        = "WARNLOG_LOG_PATH"
	EnvReplayPath     = "WARNLOG_REPLAY_PATH"
	EnvReplayJSON     = "WARNLOG_REPLAY_JSON"
	EnvReportEndpoint = "WARNLOG_REPORT_ENDPOINT"
	EnvReportTimeout  = "WARNLOG_REPORT_TIMEOUT"
	EnvReportDev      = "WARNLOG_REPORT_DEV"
	EnvHistoryPath    = "WARNLOG_HISTORY_PATH"
	EnvWatchSettle    = "WARNLOG_WATCH_SETTLE"
	EnvWatchPoll      = "WARNLOG_WATCH_POLL"
	EnvLogLevel       = "WARNLOG_LOG_LEVEL"
	EnvLogFile        = "WARNLOG_LOG_FILE"
)

// Levels accepted by log.level.
var Levels = []string{"debug", "info", "warn", "error"}

// Config is the complete warnlog configuration.
type Config struct {
	// LogPath is the warnings.txt path. Empty means auto-detect.
	LogPath string `yaml:"log_path"`

	// ReplayPath is the replay file path. Empty means auto-detect.
	ReplayPath string `yaml:"replay_path"`

	// ReplayJSON is a replay already decoded to JSON by an external tool.
	ReplayJSON string `yaml:"replay_json"`

	Report  ReportConfig  `yaml:"report"`
	History HistoryConfig `yaml:"history"`
	Watch   WatchConfig   `yaml:"watch"`
	Log     LogConfig     `yaml:"log"`
}

// ReportConfig configures uploads to the ladder.
type ReportConfig struct {
	Endpoint string        `yaml:"endpoint"`
	Timeout  time.Duration `yaml:"timeout"`
	Dev      bool          `yaml:"dev"`
}

// HistoryConfig configures the local match history.
type HistoryConfig struct {
	// Path is the SQLite database file. Empty disables history.
	Path string `yaml:"path"`
}

// WatchConfig configures the log watcher.
type WatchConfig struct {
	Settle time.Duration `yaml:"settle"`
	Poll   bool          `yaml:"poll"`
}

// LogConfig configures diagnostics output.
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Report: ReportConfig{
			Endpoint: "http://dawnofwar.info/esl/esl-report.php",
			Timeout:  30 * time.Second,
		},
		Watch: WatchConfig{
			Settle: 5 * time.Second,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// DefaultPath returns the per-user config file location.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "warnlog", "config.yaml")
}

// Load builds the configuration. path names a YAML file; if empty, the file
// at DefaultPath is used when it exists. A .env file in the working
// directory is loaded first when present.
func Load(path string) (*Config, error) {
	return load(path, ".env")
}

func load(path, dotenv string) (*Config, error) {
	if dotenv != "" {
		if err := godotenv.Load(dotenv); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("loading %s: %w", dotenv, err)
		}
	}

	cfg := Default()

	if path == "" {
		if def := DefaultPath(); def != "" {
			if _, err := os.Stat(def); err == nil {
				path = def
			}
		}
	}
	if path != "" {
		data, err := safefile.ReadAll(path, MaxConfigFileSize)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := decode(data, &cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadBytes parses YAML config data on top of the defaults.
func LoadBytes(data []byte) (*Config, error) {
	cfg := Default()
	if err := decode(data, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func decode(data []byte, cfg *Config) error {
	if len(data) > MaxConfigFileSize {
		return fmt.Errorf("config file too large: %d bytes (max %d)", len(data), MaxConfigFileSize)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	for env, dst := range map[string]*string{
		EnvLogPath:        &c.LogPath,
		EnvReplayPath:     &c.ReplayPath,
		EnvReplayJSON:     &c.ReplayJSON,
		EnvReportEndpoint: &c.Report.Endpoint,
		EnvHistoryPath:    &c.History.Path,
		EnvLogLevel:       &c.Log.Level,
		EnvLogFile:        &c.Log.File,
	} {
		if v, ok := os.LookupEnv(env); ok && v != "" {
			*dst = v
		}
	}

	for env, dst := range map[string]*time.Duration{
		EnvReportTimeout: &c.Report.Timeout,
		EnvWatchSettle:   &c.Watch.Settle,
	} {
		if v, ok := os.LookupEnv(env); ok && v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				return &ValidationError{Field: env, Message: "invalid duration", Cause: err}
			}
			*dst = d
		}
	}

	for env, dst := range map[string]*bool{
		EnvReportDev: &c.Report.Dev,
		EnvWatchPoll: &c.Watch.Poll,
	} {
		if v, ok := os.LookupEnv(env); ok && v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return &ValidationError{Field: env, Message: "invalid boolean", Cause: err}
			}
			*dst = b
		}
	}
	return nil
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if !slices.Contains(Levels, c.Log.Level) {
		return &ValidationError{
			Field:   "log.level",
			Message: fmt.Sprintf("unknown level %q (want one of %v)", c.Log.Level, Levels),
		}
	}
	if c.Report.Timeout <= 0 {
		return &ValidationError{Field: "report.timeout", Message: "must be positive"}
	}
	if c.Watch.Settle <= 0 {
		return &ValidationError{Field: "watch.settle", Message: "must be positive"}
	}
	if c.Report.Endpoint != "" {
		u, err := url.Parse(c.Report.Endpoint)
		if err != nil {
			return &ValidationError{Field: "report.endpoint", Message: "invalid URL", Cause: err}
		}
		if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return &ValidationError{Field: "report.endpoint", Message: "must be an absolute http(s) URL"}
		}
	}
	return nil
}
