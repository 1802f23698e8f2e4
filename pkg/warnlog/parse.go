package warnlog

import (
	"errors"

	"github.com/eslreporter/warnlog/internal/ingest"
	"github.com/eslreporter/warnlog/internal/parser"
)

// ParseFile reads one snapshot of a warnings.txt log and reconstructs every
// match it contains.
//
// Errors:
//   - ErrLogNotFound if path does not exist
//   - ErrLogTooLarge if the file exceeds the size cap
//   - ErrDecode if the decoder fails
//   - a *LineError (matching ErrUnclassifiedLine) on format drift
//
// A present but empty log yields an empty GameList.
func ParseFile(path string, opts ...ParseOption) (*GameList, error) {
	cfg := applyParseOptions(opts)

	lines, err := ingest.ReadLines(path, cfg.maxBytes)
	if err != nil {
		return nil, err
	}
	cfg.logger.Debug("read log", "path", path, "retained_lines", len(lines))

	return parseLines(lines, cfg)
}

// ParseLines reconstructs matches from lines already split from a log.
// Lines that carry no match data are ignored.
func ParseLines(lines []string, opts ...ParseOption) (*GameList, error) {
	cfg := applyParseOptions(opts)

	retained := lines[:0:0]
	for _, line := range lines {
		if parser.Retain(line) {
			retained = append(retained, line)
		}
	}
	return parseLines(retained, cfg)
}

func parseLines(lines []string, cfg *parseConfig) (*GameList, error) {
	b := newBuilder(cfg.logger)
	for _, line := range lines {
		ev, err := parser.Classify(line)
		if err != nil {
			return nil, err
		}
		if err := b.apply(ev); err != nil {
			if !errors.Is(err, ErrNoActiveRecord) {
				return nil, err
			}
			cfg.logger.Warn("skipping line without an active match",
				"kind", ev.Kind, "line", ev.Line)
		}
	}

	list := b.result()
	cfg.logger.Debug("parsed log", "games", len(list.Games), "steam_id", list.SteamID)
	return list, nil
}

// ParseLine classifies a single log line.
//
// Return values:
//   - (Event, nil): the line matched exactly one known pattern
//   - (Event{}, *LineError): the line matched no pattern or several
func ParseLine(line string) (Event, error) {
	return parser.Classify(line)
}
