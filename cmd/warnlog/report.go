package main

import (
	"fmt"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/eslreporter/warnlog/internal/logfinder"
	"github.com/eslreporter/warnlog/internal/logging"
	"github.com/eslreporter/warnlog/internal/store"
	"github.com/eslreporter/warnlog/pkg/warnlog"
)

var (
	// report flags
	reportReplayJSON string
	reportReplay     string
	reportNoReplay   bool
	reportNoArchive  bool
	reportEndpoint   string
	reportDryRun     bool
	reportDev        bool
	reportHistory    string
)

var reportCmd = &cobra.Command{
	Use:   "report [path]",
	Short: "Upload the latest finished match",
	Long: `Build a match report from the latest finished match in the log and
its replay, and upload it to the ladder.

The replay must already be decoded to JSON by an external tool. The raw
replay file is attached to the upload unless --no-replay is given, and is
copied to <id>_<map>.rec beside it unless --no-archive is given.

Examples:
  # Show the report without sending it
  warnlog report --replay-json temp.json --dry-run

  # Send a test report to another endpoint
  warnlog report --replay-json temp.json --dev --endpoint http://localhost:8080/report`,
	Args: cobra.MaximumNArgs(1),
	RunE: runReport,
}

func init() {
	reportCmd.Flags().StringVar(&reportReplayJSON, "replay-json", "",
		"Decoded replay JSON (overrides config)")
	reportCmd.Flags().StringVar(&reportReplay, "replay", "",
		"Raw replay file to attach (auto-detected if not specified)")
	reportCmd.Flags().BoolVar(&reportNoReplay, "no-replay", false,
		"Do not attach the raw replay")
	reportCmd.Flags().BoolVar(&reportNoArchive, "no-archive", false,
		"Do not copy the raw replay to <id>_<map>.rec")
	reportCmd.Flags().StringVar(&reportEndpoint, "endpoint", "",
		"Report endpoint URL (overrides config)")
	reportCmd.Flags().BoolVar(&reportDryRun, "dry-run", false,
		"Print the report instead of sending it")
	reportCmd.Flags().BoolVar(&reportDev, "dev", false,
		"Mark the report as a test upload")
	reportCmd.Flags().StringVar(&reportHistory, "history", "",
		"Record the match in this history database (overrides config)")
}

func runReport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	explicit := cfg.LogPath
	if len(args) > 0 {
		explicit = args[0]
	}
	path, err := logfinder.FindLog(explicit)
	if err != nil {
		return err
	}
	list, err := warnlog.ParseFile(path, warnlog.WithLogger(logger))
	if err != nil {
		return err
	}
	rec, ok := list.LatestComplete()
	if !ok {
		return errNoCompleteMatch
	}

	src := reportSource{
		replayJSON: firstNonEmpty(reportReplayJSON, cfg.ReplayJSON),
		replayFile: firstNonEmpty(reportReplay, cfg.ReplayPath),
		attach:     !reportNoReplay,
		archive:    !reportNoArchive && !reportDryRun,
		dev:        reportDev || cfg.Report.Dev,
	}
	rep, err := buildReport(ctx, rec, src)
	if err != nil {
		return err
	}

	if reportDryRun {
		data, err := json.MarshalIndent(rep, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return err
	}

	client, err := newClient(reportEndpoint)
	if err != nil {
		return err
	}
	status, sendErr := submit(ctx, client, rep)

	if dbPath := firstNonEmpty(reportHistory, cfg.History.Path); dbPath != "" {
		st, err := store.Open(ctx, dbPath)
		if err != nil {
			return err
		}
		defer logging.Closer(logger, st)
		saveHistory(ctx, st, rec, status)
	}

	if sendErr != nil {
		return sendErr
	}
	fmt.Fprintf(cmd.OutOrStdout(), "match %s reported\n", matchID(rec.ID))
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
