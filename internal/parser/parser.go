// Package parser classifies warnings.txt log lines into events.
package parser

import (
	"errors"
	"fmt"
	"strings"

	"github.com/eslreporter/warnlog/pkg/warnlog/event"
)

// ErrUnclassifiedLine is returned when a retained line matches zero or more
// than one structural pattern. Either case means the log format drifted.
var ErrUnclassifiedLine = errors.New("line matched no single structural pattern")

// LineError reports the offending line of a failed classification.
type LineError struct {
	Line  string
	Kinds []event.Kind // kinds that matched; empty when nothing matched
}

func (e *LineError) Error() string {
	if len(e.Kinds) == 0 {
		return fmt.Sprintf("unrecognized line: %q", e.Line)
	}
	return fmt.Sprintf("ambiguous line (matches %v): %q", e.Kinds, e.Line)
}

// Unwrap returns ErrUnclassifiedLine so errors.Is works on LineError.
func (e *LineError) Unwrap() error {
	return ErrUnclassifiedLine
}

// Retain reports whether a raw log line is worth classifying.
func Retain(line string) bool {
	for _, s := range retainSubstrings {
		if strings.Contains(line, s) {
			return true
		}
	}
	return false
}

// Classify matches a retained line against every structural pattern.
//
// Returns:
//   - (Event, nil): exactly one pattern matched
//   - (Event{}, *LineError): zero or several patterns matched
func Classify(line string) (event.Event, error) {
	// Trim trailing CR for Windows CRLF compatibility
	line = strings.TrimRight(line, "\r")

	var (
		matched  event.Event
		kinds    []event.Kind
		captures []string
	)
	for _, r := range rules {
		m := r.rx.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		kinds = append(kinds, r.kind)
		captures = m[1:]
		matched.Kind = r.kind
	}

	if len(kinds) != 1 {
		return event.Event{}, &LineError{Line: line, Kinds: kinds}
	}

	matched.Line = line
	if len(captures) > 0 {
		matched.Captures = make([]string, len(captures))
		for i, c := range captures {
			matched.Captures[i] = strings.TrimSpace(c)
		}
	}
	return matched, nil
}
