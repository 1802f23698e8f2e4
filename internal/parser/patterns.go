package parser

import (
	"regexp"

	"github.com/eslreporter/warnlog/pkg/warnlog/event"
)

// retainSubstrings shrinks the working set: a line is kept if it contains
// at least one of these. They carry no semantic meaning on their own.
var retainSubstrings = []string{
	"Beginning mission",
	"Ending mission",
	"GAME -- Frame",
	"ReportSimStats",
	"ReportMatchStatsForPVP - SimID",
	"PlayerInfo",
	"Match Started",
	"MOD -- Game Over at frame",
	"LoadArbitrator::UpdateLoadProgress - info",
	"Found profile",
}

// rule tags a structural pattern with the event kind it produces.
type rule struct {
	kind event.Kind
	rx   *regexp.Regexp
}

// Compiled structural patterns, one per event kind.
var (
	// Matches: "Match Started - [00000000:0098c7db /steam/76561198099396483], slot =  0, ranking = 12"
	// Captures: (1) uid, (2) network id, (3) slot
	rxMatchHeader = regexp.MustCompile(`Match Started - \[\d+:(.+) /steam/(\d+)\], slot =\D+(\d)`)

	// Matches: "Beginning mission 2p_calderisrefinery (2 Humans, 0 Computers)"
	// Captures: (1) map, (2) humans, (3) computers
	rxMissionBegin = regexp.MustCompile(`Beginning mission (.+) \((\d) Humans, (\d) Computers\)`)

	rxFrameMarker = regexp.MustCompile(`GAME -- Frame`)

	// Matches: "PlayerInfo - SimID:1001, raceID:4, teamID:0, uid:0:11718717, result:3:PS_KILLED"
	// Captures: (1) sim id, (2) race, (3) team, (4) relic id, (5) status
	rxPlayerResult = regexp.MustCompile(`SimID:(\d+), raceID:(\d+), teamID:(\d+), uid:\d+:(\d+), result:\d{1}:(.+)`)

	// Matches: "ReportMatchStatsForPVP - SimID:1000, raceID:4, teamID:1, uid:[00000000:0098c7db], AI player, ignoring"
	// Captures: (1) sim id, (2) race, (3) team, (4) uid
	rxPlayerResultAlt = regexp.MustCompile(`SimID:(\d+), raceID:(\d+), teamID:(\d+), uid:\[\d+:(.+)\]`)

	// Matches: "ReportSimStats - storing simulation results for match 1:54926186"
	// Captures: (1) relic match id
	rxMatchIDAssigned = regexp.MustCompile(`ReportSimStats - storing simulation results for match \d:(\d+)`)

	// Matches: "Ending mission - 'Game over'" and a bare "Ending mission"
	// Captures: (1) status text (optional)
	rxMissionEnd = regexp.MustCompile(`Ending mission(?: - '(\D+)')?`)

	// Matches: "MOD -- Game Over at frame 11263"
	// Captures: (1) frame count
	rxFrameCountFinal = regexp.MustCompile(`Game Over at frame (\d+)`)

	// Matches: "LoadArbitrator::UpdateLoadProgress - info pid 0:11718717, /steam/76561198099396483"
	// Captures: (1) relic id, (2) network id
	rxProfileMapping = regexp.MustCompile(`pid 0:(\d+), /steam/(\d+)`)

	// Matches: "Found profile: /steam/76561198099396483"
	// Captures: (1) network id
	rxOwnProfileID = regexp.MustCompile(`Found profile: /steam/(\d+)`)

	// rules is evaluated in full for every line; order only affects the
	// order of kinds reported in a LineError.
	rules = []rule{
		{event.MatchHeader, rxMatchHeader},
		{event.MissionBegin, rxMissionBegin},
		{event.FrameMarker, rxFrameMarker},
		{event.PlayerResult, rxPlayerResult},
		{event.PlayerResultAlt, rxPlayerResultAlt},
		{event.MatchIDAssigned, rxMatchIDAssigned},
		{event.MissionEnd, rxMissionEnd},
		{event.FrameCountFinal, rxFrameCountFinal},
		{event.ProfileMapping, rxProfileMapping},
		{event.OwnProfileID, rxOwnProfileID},
	}
)
