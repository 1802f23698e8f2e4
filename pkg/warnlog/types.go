package warnlog

import (
	"fmt"

	"github.com/eslreporter/warnlog/pkg/warnlog/event"
)

// Event is a classified log line.
type Event = event.Event

// EventKind is the semantic category of a classified line.
type EventKind = event.Kind

// Event kind constants.
const (
	EventMatchHeader     = event.MatchHeader
	EventMissionBegin    = event.MissionBegin
	EventFrameMarker     = event.FrameMarker
	EventPlayerResult    = event.PlayerResult
	EventPlayerResultAlt = event.PlayerResultAlt
	EventMatchIDAssigned = event.MatchIDAssigned
	EventMissionEnd      = event.MissionEnd
	EventFrameCountFinal = event.FrameCountFinal
	EventProfileMapping  = event.ProfileMapping
	EventOwnProfileID    = event.OwnProfileID
)

// PlayerStatus is a player's outcome as reported by the game.
type PlayerStatus int

const (
	StatusUnknown   PlayerStatus = iota
	StatusWon                    // won the game
	StatusConceded               // conceded before victory points reached 0
	StatusKilled                 // victory points reached 0
	StatusPlaying                // still playing when a peer dropped or quit
	StatusOutOfSync              // caused an out-of-sync error, usually a rage quit
	StatusDropped                // disconnected without an out-of-sync error
)

var statusNames = [...]string{
	StatusUnknown:   "Unknown",
	StatusWon:       "Won",
	StatusConceded:  "Conceded",
	StatusKilled:    "Killed",
	StatusPlaying:   "Playing",
	StatusOutOfSync: "OutOfSync",
	StatusDropped:   "Dropped",
}

func (s PlayerStatus) String() string {
	if s < 0 || int(s) >= len(statusNames) {
		return fmt.Sprintf("PlayerStatus(%d)", int(s))
	}
	return statusNames[s]
}

// MarshalText encodes the status by name.
func (s PlayerStatus) MarshalText() ([]byte, error) {
	if s < 0 || int(s) >= len(statusNames) {
		return nil, fmt.Errorf("invalid player status %d", int(s))
	}
	return []byte(statusNames[s]), nil
}

// UnmarshalText decodes a status name produced by MarshalText.
func (s *PlayerStatus) UnmarshalText(text []byte) error {
	for i, name := range statusNames {
		if name == string(text) {
			*s = PlayerStatus(i)
			return nil
		}
	}
	return fmt.Errorf("unknown player status %q", text)
}

// PlayerRecord is one player's outcome within a match.
//
// SteamID and Slot are resolved through the identity lines of the log and
// stay 0 when those lines were never seen.
type PlayerRecord struct {
	SimID   int          `json:"sim_id"`
	Race    int          `json:"race"`
	TeamID  int          `json:"team_id"`
	RelicID uint64       `json:"relic_id"`
	SteamID uint64       `json:"steam_id"`
	Slot    int          `json:"slot"`
	Status  PlayerStatus `json:"status"`
}

// MatchRecord is one match reconstructed from the log.
type MatchRecord struct {
	// ID is the relic match id, 0 until the log reports it.
	ID uint64 `json:"id"`

	// Map is the map identifier, e.g. "2p_calderisrefinery".
	Map string `json:"map"`

	// Frames is the total number of simulated frames, 0 until reported.
	Frames int `json:"frames"`

	// Aborted is true if the match ended abnormally or for an unknown reason.
	Aborted bool `json:"aborted"`

	// Complete is true once the match's termination line was seen.
	Complete bool `json:"complete"`

	// Players are in the order their result lines appeared in the log.
	Players []PlayerRecord `json:"players"`
}

// GameList is the result of parsing one log snapshot.
type GameList struct {
	// Games are in log order. Only the last one may be incomplete.
	Games []MatchRecord `json:"games"`

	// SteamID is the network id of the local observer, 0 if never reported.
	SteamID uint64 `json:"steam_id"`
}

// Latest returns the most recent match record, complete or not.
func (l *GameList) Latest() (MatchRecord, bool) {
	if l == nil || len(l.Games) == 0 {
		return MatchRecord{}, false
	}
	return l.Games[len(l.Games)-1], true
}

// LatestComplete returns the most recent match whose termination line was seen.
func (l *GameList) LatestComplete() (MatchRecord, bool) {
	if l == nil {
		return MatchRecord{}, false
	}
	for i := len(l.Games) - 1; i >= 0; i-- {
		if l.Games[i].Complete {
			return l.Games[i], true
		}
	}
	return MatchRecord{}, false
}
