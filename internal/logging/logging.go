// Package logging builds the CLI's slog logger.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/dotse/slug"
	slogmulti "github.com/samber/slog-multi"
)

// Level is a log level name as used in config files and flags.
type Level string

const (
	Debug Level = "debug"
	Info  Level = "info"
	Warn  Level = "warn"
	Error Level = "error"
)

// ParseLevel parses a level name, case-insensitively.
func ParseLevel(s string) (Level, error) {
	switch l := Level(strings.ToLower(strings.TrimSpace(s))); l {
	case Debug, Info, Warn, Error:
		return l, nil
	default:
		return "", fmt.Errorf("unknown log level %q", s)
	}
}

// ToSlogLevel maps a Level to its slog equivalent. Unknown levels map to
// error.
func ToSlogLevel(level Level) slog.Level {
	switch level {
	case Debug:
		return slog.LevelDebug
	case Info:
		return slog.LevelInfo
	case Warn:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}

// New creates a logger writing to w at level. If debugLogPath is set, every
// record down to debug is also written to that file. The returned closer
// closes the file and is never nil.
func New(w io.Writer, level Level, debugLogPath string) (*slog.Logger, func() error, error) {
	closer := func() error { return nil }

	handlers := []slog.Handler{
		slug.NewHandler(slug.HandlerOptions{
			HandlerOptions: slog.HandlerOptions{Level: ToSlogLevel(level)},
		}, w),
	}

	if debugLogPath != "" {
		logFile, err := os.OpenFile(debugLogPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, closer, fmt.Errorf("failed to open logfile: %w", err)
		}
		closer = logFile.Close

		handlers = append(handlers, slug.NewHandler(slug.HandlerOptions{
			HandlerOptions: slog.HandlerOptions{Level: slog.LevelDebug},
		}, logFile))
	}

	return slog.New(slogmulti.Fanout(handlers...)), closer, nil
}

// ErrAttr returns the attribute used for errors.
func ErrAttr(err error) slog.Attr {
	return slog.Any("reason", err)
}

// Closer closes c and logs a failure.
func Closer(logger *slog.Logger, c io.Closer) {
	if err := c.Close(); err != nil {
		logger.Error("Failed to close", ErrAttr(err))
	}
}
