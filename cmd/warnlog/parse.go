package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eslreporter/warnlog/internal/logfinder"
	"github.com/eslreporter/warnlog/pkg/warnlog"
)

// errNoCompleteMatch is returned when --latest finds nothing to print.
var errNoCompleteMatch = errors.New("no complete match in log")

var (
	// parse flags
	parseFormat     string
	parseLatest     bool
	parseIncomplete bool
)

var parseCmd = &cobra.Command{
	Use:   "parse [path]",
	Short: "Print the matches recorded in a warnings.txt log",
	Long: `Parse a warnings.txt log and print every match it contains.

Only finished matches are printed unless --incomplete is given. Matches are
output as JSON Lines by default (one JSON object per line).

Examples:
  # Parse the log of the local installation
  warnlog parse

  # Parse a copied log
  warnlog parse ./warnings.txt

  # Only the most recent finished match, human-readable
  warnlog parse --latest --format pretty

  # Steam ids of the latest match winners
  warnlog parse --latest | jq '.players[] | select(.status == "Won") | .steam_id'`,
	Args: cobra.MaximumNArgs(1),
	RunE: runParse,
}

func init() {
	parseCmd.Flags().StringVarP(&parseFormat, "format", "f", "jsonl",
		"Output format: jsonl, pretty")
	parseCmd.Flags().BoolVar(&parseLatest, "latest", false,
		"Only print the most recent match")
	parseCmd.Flags().BoolVar(&parseIncomplete, "incomplete", false,
		"Include matches that have not ended yet")
}

func runParse(cmd *cobra.Command, args []string) error {
	if !validFormats[parseFormat] {
		return fmt.Errorf("unknown format: %s", parseFormat)
	}

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
	logger.Debug("Parsed log", "path", path, "games", len(list.Games))

	games, err := selectGames(list, parseLatest, parseIncomplete)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, rec := range games {
		if err := OutputMatch(parseFormat, rec, out); err != nil {
			return fmt.Errorf("output error: %w", err)
		}
	}
	return nil
}

// selectGames picks the records to print. With latest it returns exactly one
// record or errNoCompleteMatch.
func selectGames(list *warnlog.GameList, latest, incomplete bool) ([]warnlog.MatchRecord, error) {
	if latest {
		pick := list.LatestComplete
		if incomplete {
			pick = list.Latest
		}
		rec, ok := pick()
		if !ok {
			return nil, errNoCompleteMatch
		}
		return []warnlog.MatchRecord{rec}, nil
	}

	if incomplete {
		return list.Games, nil
	}
	games := make([]warnlog.MatchRecord, 0, len(list.Games))
	for _, rec := range list.Games {
		if rec.Complete {
			games = append(games, rec)
		}
	}
	return games, nil
}
