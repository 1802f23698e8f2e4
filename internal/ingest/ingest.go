// Package ingest turns a warnings.txt snapshot into the ordered sequence of
// lines worth classifying.
package ingest

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/eslreporter/warnlog/internal/parser"
	"github.com/eslreporter/warnlog/internal/safefile"
)

// DefaultMaxBytes caps a single snapshot read. The game appends to one file
// for the whole session, so this is deliberately generous.
const DefaultMaxBytes = 256 * 1024 * 1024

// Sentinel errors.
var (
	// ErrLogNotFound is returned when the log path does not exist.
	ErrLogNotFound = errors.New("log file not found")

	// ErrDecode is returned when the decoder itself fails. Malformed input
	// does not cause it; see Decode.
	ErrDecode = errors.New("log file could not be decoded")

	// ErrTooLarge is returned when the log exceeds the read cap.
	ErrTooLarge = errors.New("log file too large")
)

// ReadLines reads the log at path and returns its retained lines in order.
// maxBytes <= 0 uses DefaultMaxBytes.
func ReadLines(path string, maxBytes int64) ([]string, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}

	data, err := safefile.ReadAll(path, maxBytes)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return nil, fmt.Errorf("%w: %s", ErrLogNotFound, path)
	case errors.Is(err, safefile.ErrTooLarge):
		return nil, fmt.Errorf("%w: %w", ErrTooLarge, err)
	case err != nil:
		return nil, fmt.Errorf("reading log: %w", err)
	}

	text, err := Decode(data)
	if err != nil {
		return nil, err
	}
	return Filter(text), nil
}

// Decode converts raw log bytes to text.
//
// A byte order mark selects UTF-8 or UTF-16 (LE/BE) and is stripped. Without
// one the content is read as UTF-8. Decoding is lossy: invalid sequences,
// including a truncated or unpaired UTF-16 code unit, become U+FFFD, since
// the game mixes encodings within a single file.
func Decode(data []byte) (string, error) {
	dec := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	out, _, err := transform.Bytes(dec, data)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return string(out), nil
}

// Filter splits text into lines and keeps those that may carry match data.
// Line terminators (LF or CRLF) are removed.
func Filter(text string) []string {
	var lines []string
	for line := range strings.Lines(text) {
		line = strings.TrimRight(line, "\r\n")
		if parser.Retain(line) {
			lines = append(lines, line)
		}
	}
	return lines
}
