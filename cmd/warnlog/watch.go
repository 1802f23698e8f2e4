package main

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/eslreporter/warnlog/internal/logfinder"
	"github.com/eslreporter/warnlog/internal/logging"
	"github.com/eslreporter/warnlog/internal/reporter"
	"github.com/eslreporter/warnlog/internal/store"
	"github.com/eslreporter/warnlog/pkg/warnlog"
)

var (
	// watch flags
	watchFormat     string
	watchHistory    string
	watchReport     bool
	watchReplayJSON string
	watchNoReplay   bool
	watchNoArchive  bool
	watchSettle     time.Duration
	watchPoll       bool
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow the log and output each finished match",
	Long: `Follow warnings.txt while the game runs and output every match once it
has ended.

A match is output after the mission end line has been written and the log
has been quiet for the settle delay. Matches can also be recorded in the
history database and uploaded to the ladder as they finish.

Examples:
  # Follow the log of the local installation
  warnlog watch

  # Keep a history and upload every match
  warnlog watch --history matches.db --report --replay-json temp.json`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVarP(&watchFormat, "format", "f", "jsonl",
		"Output format: jsonl, pretty")
	watchCmd.Flags().StringVar(&watchHistory, "history", "",
		"Record matches in this history database (overrides config)")
	watchCmd.Flags().BoolVar(&watchReport, "report", false,
		"Upload every finished match")
	watchCmd.Flags().StringVar(&watchReplayJSON, "replay-json", "",
		"Decoded replay JSON used for uploads (overrides config)")
	watchCmd.Flags().BoolVar(&watchNoReplay, "no-replay", false,
		"Do not attach the raw replay to uploads")
	watchCmd.Flags().BoolVar(&watchNoArchive, "no-archive", false,
		"Do not copy the raw replay of uploaded matches to <id>_<map>.rec")
	watchCmd.Flags().DurationVar(&watchSettle, "settle", 0,
		"Quiet time after a mission end before the log is read (overrides config)")
	watchCmd.Flags().BoolVar(&watchPoll, "poll", false,
		"Poll the log instead of using filesystem notifications")
}

// matchHandler outputs, reports and records finished matches.
type matchHandler struct {
	out    io.Writer
	format string
	store  *store.Store     // nil disables the history
	client *reporter.Client // nil disables uploads
	source reportSource
}

func (h *matchHandler) handle(ctx context.Context, rec warnlog.MatchRecord) error {
	logger.Info("Match finished", "id", rec.ID, "map", rec.Map, "aborted", rec.Aborted)
	if err := OutputMatch(h.format, rec, h.out); err != nil {
		return fmt.Errorf("output error: %w", err)
	}

	status := ""
	if h.client != nil {
		var err error
		status, err = h.upload(ctx, rec)
		if err != nil {
			logger.Error("Failed to report match", "id", rec.ID, logging.ErrAttr(err))
		}
	}
	saveHistory(ctx, h.store, rec, status)
	return nil
}

func (h *matchHandler) upload(ctx context.Context, rec warnlog.MatchRecord) (string, error) {
	rep, err := buildReport(ctx, rec, h.source)
	if err != nil {
		return statusFailed, err
	}
	return submit(ctx, h.client, rep)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if !validFormats[watchFormat] {
		return fmt.Errorf("unknown format: %s", watchFormat)
	}

	// Setup context with signal handling
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	path, err := logfinder.FindLog(cfg.LogPath)
	if err != nil {
		return err
	}

	h := &matchHandler{
		out:    cmd.OutOrStdout(),
		format: watchFormat,
		source: reportSource{
			replayJSON: firstNonEmpty(watchReplayJSON, cfg.ReplayJSON),
			replayFile: cfg.ReplayPath,
			attach:     !watchNoReplay,
			archive:    !watchNoArchive,
			dev:        cfg.Report.Dev,
		},
	}
	if watchReport {
		if h.source.replayJSON == "" {
			return errNoReplayJSON
		}
		if h.client, err = newClient(""); err != nil {
			return err
		}
	}
	if dbPath := firstNonEmpty(watchHistory, cfg.History.Path); dbPath != "" {
		if h.store, err = store.Open(ctx, dbPath); err != nil {
			return err
		}
		defer logging.Closer(logger, h.store)
	}

	settle := cfg.Watch.Settle
	if cmd.Flags().Changed("settle") {
		settle = watchSettle
	}
	watcher, err := warnlog.NewWatcher(path,
		warnlog.WithWatchLogger(logger),
		warnlog.WithSettle(settle),
		warnlog.WithPoll(watchPoll || cfg.Watch.Poll))
	if err != nil {
		return err
	}
	defer watcher.Close()

	matches, errs, err := watcher.Watch(ctx)
	if err != nil {
		return err
	}
	logger.Info("Watching log", "path", path, "settle", settle)

	for {
		select {
		case rec, ok := <-matches:
			if !ok {
				return nil
			}
			if err := h.handle(ctx, rec); err != nil {
				return err
			}

		case err, ok := <-errs:
			if !ok {
				return nil
			}
			logger.Warn("Watch error", logging.ErrAttr(err))

		case <-ctx.Done():
			return nil
		}
	}
}
