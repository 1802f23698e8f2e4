package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/goccy/go-json"

	"github.com/eslreporter/warnlog/pkg/warnlog"
)

// validFormats lists all valid output formats.
var validFormats = map[string]bool{
	"jsonl":  true,
	"pretty": true,
}

// OutputMatch writes a match in the specified format to the writer.
func OutputMatch(format string, rec warnlog.MatchRecord, out io.Writer) error {
	switch format {
	case "jsonl":
		return OutputJSON(rec, out)
	case "pretty":
		return OutputPretty(rec, out)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// OutputJSON writes a match as one JSON Lines record.
func OutputJSON(rec warnlog.MatchRecord, out io.Writer) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, string(data))
	return err
}

// OutputPretty writes a match header followed by one line per player.
func OutputPretty(rec warnlog.MatchRecord, out io.Writer) error {
	if _, err := fmt.Fprintf(out, "match %s  %s  %s frames  %s\n",
		matchID(rec.ID), quoteIfNeeded(rec.Map), humanize.Comma(int64(rec.Frames)), matchState(rec)); err != nil {
		return err
	}
	for _, p := range rec.Players {
		if _, err := fmt.Fprintf(out, "  slot %d  team %d  race %d  %-9s  steam %s  relic %s\n",
			p.Slot, p.TeamID, p.Race, p.Status, optionalID(p.SteamID), optionalID(p.RelicID)); err != nil {
			return err
		}
	}
	return nil
}

func matchID(id uint64) string {
	if id == 0 {
		return "?"
	}
	return fmt.Sprintf("%d", id)
}

func optionalID(id uint64) string {
	if id == 0 {
		return "-"
	}
	return fmt.Sprintf("%d", id)
}

func matchState(rec warnlog.MatchRecord) string {
	switch {
	case !rec.Complete:
		return "in progress"
	case rec.Aborted:
		return "aborted"
	default:
		return "finished"
	}
}

// quoteIfNeeded quotes a value if it contains special characters or control characters.
// Returns the value unchanged if no quoting is needed.
func quoteIfNeeded(v string) string {
	if v == "" {
		return `""`
	}

	needsQuote := false
	for _, c := range v {
		// Quote if: space, equals, quote, backslash, or any control character (< 0x20 or DEL 0x7F)
		if c == ' ' || c == '=' || c == '"' || c == '\\' || c < 0x20 || c == 0x7F {
			needsQuote = true
			break
		}
	}
	if !needsQuote {
		return v
	}

	var sb strings.Builder
	sb.WriteByte('"')
	for _, c := range v {
		switch {
		case c == '\\':
			sb.WriteString(`\\`)
		case c == '"':
			sb.WriteString(`\"`)
		case c == '\n':
			sb.WriteString(`\n`)
		case c == '\r':
			sb.WriteString(`\r`)
		case c == '\t':
			sb.WriteString(`\t`)
		case c < 0x20 || c == 0x7F:
			fmt.Fprintf(&sb, `\x%02x`, c)
		default:
			sb.WriteRune(c)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}
