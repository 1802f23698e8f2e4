package warnlog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/eslreporter/warnlog/internal/parser"
	"github.com/eslreporter/warnlog/internal/tailer"
	"github.com/eslreporter/warnlog/pkg/warnlog/event"
)

// DefaultSettle is how long the log must stay quiet after a mission ends
// before the watcher re-parses it.
const DefaultSettle = 5 * time.Second

// watcherErrBuffer is the buffer size for the error channel.
const watcherErrBuffer = 16

// Watcher follows a warnings.txt log and emits each newly completed match.
type Watcher struct {
	cfg  watchConfig // immutable after creation
	path string
	log  *slog.Logger

	mu       sync.Mutex
	closed   bool
	cancel   context.CancelFunc
	doneCh   chan struct{}
	watching bool
}

// NewWatcher creates a watcher for the log at path. The file does not need
// to exist yet.
func NewWatcher(path string, opts ...WatchOption) (*Watcher, error) {
	if path == "" {
		return nil, errors.New("log path is required")
	}
	cfg := applyWatchOptions(opts)
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	return &Watcher{
		cfg:  *cfg,
		path: path,
		log:  cfg.logger,
	}, nil
}

// Watch starts following the log. A match is sent on the returned channel
// once its mission has ended and the log has settled, unless it is the same
// match (id, map and frame count) as the previous one sent. Both channels
// close when ctx is cancelled or Close is called.
//
// Returns ErrWatcherClosed if the watcher has been closed.
// Returns ErrAlreadyWatching if Watch has already been called.
func (w *Watcher) Watch(ctx context.Context) (<-chan MatchRecord, <-chan error, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil, nil, ErrWatcherClosed
	}
	if w.watching {
		return nil, nil, ErrAlreadyWatching
	}

	tcfg := tailer.DefaultConfig()
	tcfg.Poll = w.cfg.poll
	tcfg.Keep = parser.Retain

	ctx, cancel := context.WithCancel(ctx)
	t, err := tailer.New(ctx, w.path, tcfg)
	if err != nil {
		cancel()
		return nil, nil, &WatchError{Op: WatchOpTail, Path: w.path, Err: err}
	}
	w.watching = true
	w.cancel = cancel
	w.doneCh = make(chan struct{})

	matchCh := make(chan MatchRecord)
	errCh := make(chan error, watcherErrBuffer)

	go w.run(ctx, t, matchCh, errCh)

	return matchCh, errCh, nil
}

// Close stops the watcher and waits for its goroutine to exit.
// Safe to call multiple times.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	if w.cancel != nil {
		w.cancel()
	}
	doneCh := w.doneCh
	w.mu.Unlock()

	if doneCh != nil {
		<-doneCh
	}
	return nil
}

type matchKey struct {
	id     uint64
	mapID  string
	frames int
}

func (w *Watcher) run(ctx context.Context, t *tailer.Tailer, matchCh chan<- MatchRecord, errCh chan<- error) {
	defer close(w.doneCh)
	defer close(matchCh)
	defer close(errCh)
	defer func() { _ = t.Stop() }()

	w.log.Debug("watching log", "path", w.path, "settle", w.cfg.settle)

	settle := time.NewTimer(w.cfg.settle)
	settle.Stop()
	defer settle.Stop()

	armed := false
	var last *matchKey

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-t.Lines():
			if !ok {
				return
			}
			if isMissionEnd(line) {
				w.log.Debug("mission ended, waiting for log to settle")
				armed = true
			}
			if armed {
				settle.Reset(w.cfg.settle)
			}
		case err, ok := <-t.Errors():
			if !ok {
				return
			}
			sendError(ctx, errCh, &WatchError{Op: WatchOpTail, Path: w.path, Err: err})
		case <-settle.C:
			armed = false
			rec, ok := w.latest(ctx, errCh)
			if !ok {
				continue
			}
			key := matchKey{id: rec.ID, mapID: rec.Map, frames: rec.Frames}
			if last != nil && *last == key {
				w.log.Debug("latest match unchanged", "id", rec.ID)
				continue
			}
			last = &key
			select {
			case matchCh <- rec:
			case <-ctx.Done():
				return
			}
		}
	}
}

// latest re-parses the whole log and returns its last complete match.
func (w *Watcher) latest(ctx context.Context, errCh chan<- error) (MatchRecord, bool) {
	list, err := ParseFile(w.path, WithLogger(w.log), WithMaxBytes(w.cfg.maxBytes))
	if err != nil {
		sendError(ctx, errCh, &WatchError{Op: WatchOpParse, Path: w.path, Err: err})
		return MatchRecord{}, false
	}
	rec, ok := list.LatestComplete()
	if !ok {
		w.log.Debug("no complete match in log", "games", len(list.Games))
	}
	return rec, ok
}

func isMissionEnd(line string) bool {
	ev, err := parser.Classify(line)
	return err == nil && ev.Kind == event.MissionEnd
}

// sendError sends err without blocking. Errors are dropped when the buffer
// is full or ctx is done.
func sendError(ctx context.Context, errCh chan<- error, err error) {
	if err == nil {
		return
	}
	select {
	case errCh <- err:
	case <-ctx.Done():
	default:
	}
}
