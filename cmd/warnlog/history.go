package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/eslreporter/warnlog/internal/logging"
	"github.com/eslreporter/warnlog/internal/store"
)

var errNoHistory = errors.New("no history database: set --db or history.path")

var (
	// history flags
	historyDB    string
	historyLimit int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the recorded match history",
	Long: `Show, inspect and delete matches recorded by watch and report.

Without a subcommand the most recent matches are listed.`,
	Args: cobra.NoArgs,
	RunE: runHistoryList,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the most recent matches",
	Args:  cobra.NoArgs,
	RunE:  runHistoryList,
}

var historyShowCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Show one match with its players",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete a match from the history",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryDelete,
}

func init() {
	historyCmd.PersistentFlags().StringVar(&historyDB, "db", "",
		"History database (overrides config)")
	historyCmd.PersistentFlags().IntVarP(&historyLimit, "limit", "n", 20,
		"Number of matches to list")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyDeleteCmd)
}

func openHistory(ctx context.Context) (*store.Store, error) {
	path := firstNonEmpty(historyDB, cfg.History.Path)
	if path == "" {
		return nil, errNoHistory
	}
	return store.Open(ctx, path)
}

func parseMatchID(s string) (uint64, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid match id: %q", s)
	}
	return id, nil
}

func runHistoryList(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	st, err := openHistory(ctx)
	if err != nil {
		return err
	}
	defer logging.Closer(logger, st)

	rows, err := st.ListMatches(ctx, historyLimit)
	if err != nil {
		return err
	}
	return renderSummaries(cmd.OutOrStdout(), rows, time.Now())
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	id, err := parseMatchID(args[0])
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	st, err := openHistory(ctx)
	if err != nil {
		return err
	}
	defer logging.Closer(logger, st)

	m, err := st.GetMatch(ctx, id)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if err := OutputPretty(m.Record, out); err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, "winner team %d, report %s, saved %s\n",
		m.Winner, reportLabel(m.ReportStatus), humanize.Time(m.SavedAt))
	return err
}

func runHistoryDelete(cmd *cobra.Command, args []string) error {
	id, err := parseMatchID(args[0])
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	st, err := openHistory(ctx)
	if err != nil {
		return err
	}
	defer logging.Closer(logger, st)

	if err := st.DeleteMatch(ctx, id); err != nil {
		return err
	}
	logger.Info("Deleted match", "id", id)
	return nil
}

// renderSummaries writes rows as a table. Save times are relative to now.
func renderSummaries(w io.Writer, rows []store.Summary, now time.Time) error {
	table := tablewriter.NewTable(w)
	table.Header("ID", "Map", "Frames", "Players", "Result", "Winner", "Report", "Saved")

	for _, s := range rows {
		result := "finished"
		if s.Aborted {
			result = "aborted"
		}
		if err := table.Append([]string{
			strconv.FormatUint(s.ID, 10),
			s.Map,
			humanize.Comma(int64(s.Frames)),
			strconv.Itoa(s.Players),
			result,
			strconv.Itoa(s.Winner),
			reportLabel(s.ReportStatus),
			humanize.RelTime(s.SavedAt, now, "ago", "from now"),
		}); err != nil {
			return err
		}
	}

	return table.Render()
}

func reportLabel(status string) string {
	if status == "" {
		return "not reported"
	}
	return status
}
