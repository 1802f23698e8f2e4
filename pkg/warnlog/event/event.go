// Package event defines the classified line events of a warnings.txt log.
//
// This package is separated from the main warnlog package to avoid import cycles
// between pkg/warnlog and internal/parser.
package event

import (
	"sort"
	"strings"
)

// Kind is the semantic category of a retained log line.
type Kind string

const (
	// MatchHeader announces a participant: uid, network id and lobby slot.
	MatchHeader Kind = "match_header"

	// MissionBegin starts (or restates) a match block and names the map.
	MissionBegin Kind = "mission_begin"

	// FrameMarker is a simulation frame line. It carries no state.
	FrameMarker Kind = "frame_marker"

	// PlayerResult is a player's formal result: sim id, race, team, relic id, status.
	PlayerResult Kind = "player_result"

	// PlayerResultAlt is emitted for players that dropped without a formal result.
	// It carries the in-match uid instead of the relic id.
	PlayerResultAlt Kind = "player_result_alt"

	// MatchIDAssigned carries the relic match id.
	MatchIDAssigned Kind = "match_id_assigned"

	// MissionEnd terminates a match block, optionally with a status text.
	MissionEnd Kind = "mission_end"

	// FrameCountFinal carries the total number of simulated frames.
	FrameCountFinal Kind = "frame_count_final"

	// ProfileMapping links a relic id to a network id.
	ProfileMapping Kind = "profile_mapping"

	// OwnProfileID names the network id of the local observer.
	OwnProfileID Kind = "own_profile_id"
)

// allKinds is the canonical list of all event kinds.
var allKinds = []Kind{
	MatchHeader,
	MissionBegin,
	FrameMarker,
	PlayerResult,
	PlayerResultAlt,
	MatchIDAssigned,
	MissionEnd,
	FrameCountFinal,
	ProfileMapping,
	OwnProfileID,
}

// Kinds returns all event kinds in classification order.
func Kinds() []Kind {
	out := make([]Kind, len(allKinds))
	copy(out, allKinds)
	return out
}

// KindNames returns a sorted list of all valid kind names.
func KindNames() []string {
	names := make([]string, len(allKinds))
	for i, k := range allKinds {
		names[i] = string(k)
	}
	sort.Strings(names)
	return names
}

var kindByName = func() map[string]Kind {
	m := make(map[string]Kind, len(allKinds))
	for _, k := range allKinds {
		m[string(k)] = k
	}
	return m
}()

// ParseKind converts a string to Kind if valid.
// It is case-insensitive and trims leading/trailing whitespace.
func ParseKind(name string) (Kind, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	k, ok := kindByName[name]
	return k, ok
}

// Event is one classified log line.
type Event struct {
	// Kind is the semantic category of the line.
	Kind Kind `json:"kind"`

	// Captures holds the submatches of the pattern that classified the line,
	// without the full match. Optional groups that did not participate are "".
	Captures []string `json:"captures,omitempty"`

	// Line is the retained line, with any trailing CR removed.
	Line string `json:"line"`
}

// Group returns capture i (0-based), or "" if the pattern has fewer groups.
func (e Event) Group(i int) string {
	if i < 0 || i >= len(e.Captures) {
		return ""
	}
	return e.Captures[i]
}
