package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/eslreporter/warnlog/internal/logfinder"
	"github.com/eslreporter/warnlog/internal/logging"
	"github.com/eslreporter/warnlog/internal/reporter"
	"github.com/eslreporter/warnlog/internal/safefile"
	"github.com/eslreporter/warnlog/internal/store"
	"github.com/eslreporter/warnlog/pkg/warnlog"
	"github.com/eslreporter/warnlog/pkg/warnlog/report"
)

// maxReplayBytes caps the raw replay attached to a report.
const maxReplayBytes = 64 * 1024 * 1024

// Report states recorded in the match history.
const (
	statusSent     = "sent"
	statusRejected = "rejected"
	statusFailed   = "failed"
)

var errNoReplayJSON = errors.New("a decoded replay is required: set --replay-json or replay_json")

// reportSource names the inputs a report is built from besides the match.
type reportSource struct {
	replayJSON string // replay decoded to JSON by an external tool
	replayFile string // raw replay, auto-detected if empty
	attach     bool   // attach the raw replay
	archive    bool   // keep a copy of the raw replay named after the match
	dev        bool
}

// buildReport merges rec with its decoded replay into an upload document.
func buildReport(ctx context.Context, rec warnlog.MatchRecord, src reportSource) (report.Report, error) {
	if src.replayJSON == "" {
		return report.Report{}, errNoReplayJSON
	}
	replay, err := report.DecodeFile(ctx, report.JSONDecoder{}, src.replayJSON)
	if err != nil {
		return report.Report{}, err
	}
	if len(replay.Players) != len(rec.Players) {
		logger.Warn("Replay and log disagree on player count",
			"id", rec.ID, "replay_players", len(replay.Players), "log_players", len(rec.Players))
	}

	game := report.Merge(replay, rec)
	if src.archive {
		path, err := logfinder.FindReplay(src.replayFile)
		if err != nil {
			return report.Report{}, err
		}
		archived, err := report.ArchiveReplay(path, game)
		if err != nil {
			return report.Report{}, err
		}
		logger.Info("Archived replay", "id", rec.ID, "path", archived)
	}

	opts := report.Options{Dev: src.dev, Version: version}
	if src.attach {
		raw, err := readReplay(src.replayFile)
		if err != nil {
			return report.Report{}, err
		}
		opts.Replay = raw
	}
	return report.NewReport(game, opts), nil
}

func readReplay(explicit string) ([]byte, error) {
	path, err := logfinder.FindReplay(explicit)
	if err != nil {
		return nil, err
	}
	data, err := safefile.ReadAll(path, maxReplayBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to read replay: %w", err)
	}
	return data, nil
}

func newClient(endpoint string) (*reporter.Client, error) {
	if endpoint == "" {
		endpoint = cfg.Report.Endpoint
	}
	return reporter.New(endpoint,
		reporter.WithTimeout(cfg.Report.Timeout),
		reporter.WithLogger(logger))
}

// submit sends rep and returns the state to record in the history.
func submit(ctx context.Context, client *reporter.Client, rep report.Report) (string, error) {
	resp, err := client.Send(ctx, rep)
	if err != nil {
		return statusFailed, err
	}
	if !resp.Accepted() {
		return statusRejected, fmt.Errorf("report %s rejected: %s", rep.ID, resp.Body)
	}
	logger.Info("Report sent", "id", rep.ID, "endpoint", client.Endpoint())
	return statusSent, nil
}

// saveHistory records rec in st. A nil st is a no-op.
func saveHistory(ctx context.Context, st *store.Store, rec warnlog.MatchRecord, status string) {
	if st == nil {
		return
	}
	err := st.SaveMatch(ctx, rec, status)
	switch {
	case errors.Is(err, store.ErrNoMatchID):
		logger.Warn("Match has no id, not saved to history", "map", rec.Map)
	case err != nil:
		logger.Error("Failed to save match", "id", rec.ID, logging.ErrAttr(err))
	default:
		logger.Debug("Saved match", "id", rec.ID, "report_status", status)
	}
}
