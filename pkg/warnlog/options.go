package warnlog

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/eslreporter/warnlog/internal/ingest"
)

// discardLogger returns a logger that discards all output.
var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// ParseOption configures ParseFile/ParseLines behavior.
type ParseOption func(*parseConfig)

// parseConfig holds internal configuration for parsing.
type parseConfig struct {
	logger   *slog.Logger
	maxBytes int64
}

func defaultParseConfig() *parseConfig {
	return &parseConfig{
		logger:   discardLogger,
		maxBytes: ingest.DefaultMaxBytes,
	}
}

// applyParseOptions applies functional options to a parseConfig.
func applyParseOptions(opts []ParseOption) *parseConfig {
	cfg := defaultParseConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}
	if cfg.logger == nil {
		cfg.logger = discardLogger
	}
	return cfg
}

// WithLogger sets a logger for recoverable anomalies such as result lines
// outside a match or unrecognized mission end status text.
// If logger is nil, logging is disabled (default behavior).
func WithLogger(logger *slog.Logger) ParseOption {
	return func(c *parseConfig) {
		c.logger = logger
	}
}

// WithMaxBytes caps how much of the log file is read.
// Values <= 0 use the default (256 MiB).
func WithMaxBytes(n int64) ParseOption {
	return func(c *parseConfig) {
		if n > 0 {
			c.maxBytes = n
		}
	}
}

// WatchOption configures a Watcher using the functional options pattern.
type WatchOption func(*watchConfig)

// watchConfig holds internal configuration for the watcher.
type watchConfig struct {
	settle   time.Duration
	poll     bool
	logger   *slog.Logger
	maxBytes int64
}

// defaultWatchConfig returns a watchConfig with sensible defaults.
func defaultWatchConfig() *watchConfig {
	return &watchConfig{
		settle:   DefaultSettle,
		logger:   discardLogger,
		maxBytes: ingest.DefaultMaxBytes,
	}
}

// applyWatchOptions applies functional options to a watchConfig.
func applyWatchOptions(opts []WatchOption) *watchConfig {
	cfg := defaultWatchConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}
	if cfg.logger == nil {
		cfg.logger = discardLogger
	}
	return cfg
}

// validate checks for invalid option values.
func (c *watchConfig) validate() error {
	if c.settle <= 0 {
		return fmt.Errorf("settle delay must be positive, got %v", c.settle)
	}
	return nil
}

// WithWatchLogger sets a custom logger for debug output.
// If logger is nil, logging is disabled (default behavior).
func WithWatchLogger(logger *slog.Logger) WatchOption {
	return func(c *watchConfig) {
		c.logger = logger
	}
}

// WithSettle sets how long the log must stay quiet after a mission ends
// before it is re-parsed. The game keeps writing result lines for a moment
// after the mission end line.
// Default: 5 seconds.
func WithSettle(d time.Duration) WatchOption {
	return func(c *watchConfig) {
		c.settle = d
	}
}

// WithPoll makes the watcher poll the file instead of relying on
// filesystem notifications. Needed on some network and virtual filesystems.
func WithPoll(poll bool) WatchOption {
	return func(c *watchConfig) {
		c.poll = poll
	}
}

// WithWatchMaxBytes caps the snapshot size read on each re-parse.
func WithWatchMaxBytes(n int64) WatchOption {
	return func(c *watchConfig) {
		if n > 0 {
			c.maxBytes = n
		}
	}
}
