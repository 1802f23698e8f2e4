package warnlog

import (
	"strconv"

	"github.com/eslreporter/warnlog/pkg/warnlog/event"
)

var statusByToken = map[string]PlayerStatus{
	"PS_KILLED":    StatusKilled,
	"PS_WON":       StatusWon,
	"PS_CONCEDED":  StatusConceded,
	"PS_PLAYING":   StatusPlaying,
	"PS_OUTOFSYNC": StatusOutOfSync,
}

// ParseStatus maps a result token such as "PS_WON" to a PlayerStatus.
// Unknown tokens yield StatusUnknown.
func ParseStatus(token string) PlayerStatus {
	return statusByToken[token]
}

// ParsePlayer builds a PlayerRecord from a PlayerResult or PlayerResultAlt
// event. Malformed numeric fields become 0 instead of failing, so one corrupt
// field never discards a whole match. Identity fields resolved through other
// lines (SteamID, Slot and, for dropped players, RelicID) are left at 0.
//
// The second return value is false for any other event kind.
func ParsePlayer(ev event.Event) (PlayerRecord, bool) {
	switch ev.Kind {
	case event.PlayerResult:
		return PlayerRecord{
			SimID:   atoi(ev.Group(0)),
			Race:    atoi(ev.Group(1)),
			TeamID:  atoi(ev.Group(2)),
			RelicID: atou(ev.Group(3)),
			Status:  ParseStatus(ev.Group(4)),
		}, true
	case event.PlayerResultAlt:
		// Only emitted for players that left without a formal result
		return PlayerRecord{
			SimID:  atoi(ev.Group(0)),
			Race:   atoi(ev.Group(1)),
			TeamID: atoi(ev.Group(2)),
			Status: StatusDropped,
		}, true
	default:
		return PlayerRecord{}, false
	}
}

func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func atou(s string) uint64 {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}
