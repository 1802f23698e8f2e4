// Package tailer follows warnings.txt as the game appends to it.
package tailer

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/nxadm/tail"
)

// errBuffer is the buffer size for the error channel.
const errBuffer = 16

// Config holds configuration for tailing.
type Config struct {
	// ReOpen follows the file across truncation and recreation. The game
	// starts a fresh warnings.txt on every launch.
	ReOpen bool

	// Poll uses polling instead of filesystem notifications.
	Poll bool

	// MustExist fails New when the file is absent instead of waiting for it.
	MustExist bool

	// FromStart reads existing content before following.
	FromStart bool

	// Keep, if set, drops lines for which it returns false before they
	// reach Lines.
	Keep func(line string) bool
}

// DefaultConfig follows the log from its current end and waits for it to be
// created if the game has not started yet.
func DefaultConfig() Config {
	return Config{
		ReOpen: true,
	}
}

// Tailer streams lines appended to a file.
type Tailer struct {
	t      *tail.Tail
	keep   func(string) bool
	ctx    context.Context
	cancel context.CancelFunc
	lines  chan string
	errs   chan error
	doneCh chan struct{}

	mu      sync.Mutex
	stopped bool
}

// New starts tailing path. The context bounds the tailer's lifetime.
func New(ctx context.Context, path string, cfg Config) (*Tailer, error) {
	whence := io.SeekEnd
	if cfg.FromStart {
		whence = io.SeekStart
	}

	t, err := tail.TailFile(path, tail.Config{
		Follow:    true,
		ReOpen:    cfg.ReOpen,
		Poll:      cfg.Poll,
		MustExist: cfg.MustExist,
		Location:  &tail.SeekInfo{Offset: 0, Whence: whence},
		Logger:    tail.DiscardingLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("opening tail: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	tr := &Tailer{
		t:      t,
		keep:   cfg.Keep,
		ctx:    ctx,
		cancel: cancel,
		lines:  make(chan string),
		errs:   make(chan error, errBuffer),
		doneCh: make(chan struct{}),
	}
	go tr.run()
	return tr, nil
}

// Lines returns the channel of appended lines, without line terminators.
// It is closed when the tailer stops.
func (t *Tailer) Lines() <-chan string {
	return t.lines
}

// Errors returns the channel of read errors. Errors are dropped while the
// buffer is full.
func (t *Tailer) Errors() <-chan error {
	return t.errs
}

// Stop stops tailing and waits for the reader goroutine to exit.
// Safe to call multiple times.
func (t *Tailer) Stop() error {
	t.mu.Lock()
	if t.stopped {
		t.mu.Unlock()
		return nil
	}
	t.stopped = true
	t.mu.Unlock()

	t.cancel()
	<-t.doneCh
	err := t.t.Stop()
	t.t.Cleanup()
	return err
}

func (t *Tailer) run() {
	defer close(t.doneCh)
	defer close(t.lines)
	defer close(t.errs)

	for {
		select {
		case <-t.ctx.Done():
			return
		case line, ok := <-t.t.Lines:
			if !ok {
				return
			}
			if line.Err != nil {
				select {
				case t.errs <- fmt.Errorf("tail: %w", line.Err):
				case <-t.ctx.Done():
					return
				default:
				}
				continue
			}
			text := strings.TrimRight(line.Text, "\r")
			if t.keep != nil && !t.keep(text) {
				continue
			}
			select {
			case t.lines <- text:
			case <-t.ctx.Done():
				return
			}
		}
	}
}
