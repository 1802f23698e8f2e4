package warnlog

import (
	"errors"
	"fmt"

	"github.com/eslreporter/warnlog/internal/ingest"
	"github.com/eslreporter/warnlog/internal/parser"
)

// Sentinel errors returned by this package.
var (
	// ErrLogNotFound is returned when the log file does not exist.
	ErrLogNotFound = ingest.ErrLogNotFound

	// ErrDecode is returned when the decoder fails. Malformed bytes are
	// replaced with U+FFFD and do not cause it.
	ErrDecode = ingest.ErrDecode

	// ErrLogTooLarge is returned when the log exceeds the read cap set by
	// WithMaxBytes.
	ErrLogTooLarge = ingest.ErrTooLarge

	// ErrUnclassifiedLine is returned when a retained line matches zero or
	// several structural patterns. The concrete error is a *LineError.
	ErrUnclassifiedLine = parser.ErrUnclassifiedLine

	// ErrNoActiveRecord marks a match-level line seen before any mission
	// began. It is logged and the line skipped; parsing never fails with it.
	ErrNoActiveRecord = errors.New("no active match record")
)

// LineError carries the line that failed classification.
type LineError = parser.LineError

// Watcher errors.
var (
	// ErrWatcherClosed is returned by Watch after Close.
	ErrWatcherClosed = errors.New("watcher closed")

	// ErrAlreadyWatching is returned when Watch is called twice.
	ErrAlreadyWatching = errors.New("watch already started")
)

// WatchOp identifies the watcher step that failed.
type WatchOp string

// Watcher operations.
const (
	WatchOpTail  WatchOp = "tail"
	WatchOpParse WatchOp = "parse"
)

// WatchError is delivered on the watcher's error channel. Watching
// continues after it is sent.
type WatchError struct {
	Op   WatchOp
	Path string
	Err  error
}

func (e *WatchError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("watch %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("watch %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *WatchError) Unwrap() error { return e.Err }
