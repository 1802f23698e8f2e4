package warnlog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eslreporter/warnlog/internal/parser"
)

func TestParsePlayer_Result(t *testing.T) {
	ev, err := parser.Classify("13:50:45.82    PlayerInfo - SimID:1001, raceID:4, teamID:0, uid:0:11718717, result:3:PS_KILLED")
	require.NoError(t, err)

	p, ok := ParsePlayer(ev)
	require.True(t, ok)
	assert.Equal(t, 1001, p.SimID)
	assert.Equal(t, 4, p.Race)
	assert.Equal(t, 0, p.TeamID)
	assert.Equal(t, uint64(11718717), p.RelicID)
	assert.Equal(t, StatusKilled, p.Status)
}

func TestParsePlayer_AltIsAlwaysDropped(t *testing.T) {
	for _, line := range []string{
		"16:22:54.78    ReportMatchStatsForPVP - SimID:1000, raceID:4, teamID:1, uid:[00000000:0098c7db], AI player, ignoring",
		"16:22:54.78    ReportMatchStatsForPVP - SimID:1000, raceID:4, teamID:1, uid:[00000000:0098c7db], result PS_WON",
	} {
		ev, err := parser.Classify(line)
		require.NoError(t, err)

		p, ok := ParsePlayer(ev)
		require.True(t, ok)
		assert.Equal(t, StatusDropped, p.Status)
		assert.Equal(t, 1000, p.SimID)
		assert.Equal(t, 4, p.Race)
		assert.Equal(t, 1, p.TeamID)
		assert.Zero(t, p.RelicID)
	}
}

func TestParsePlayer_OtherKind(t *testing.T) {
	_, ok := ParsePlayer(Event{Kind: EventMissionEnd})
	assert.False(t, ok)
}

func TestParseStatus(t *testing.T) {
	tests := map[string]PlayerStatus{
		"PS_KILLED":    StatusKilled,
		"PS_WON":       StatusWon,
		"PS_CONCEDED":  StatusConceded,
		"PS_PLAYING":   StatusPlaying,
		"PS_OUTOFSYNC": StatusOutOfSync,
		"PS_DROPPED":   StatusUnknown,
		"":             StatusUnknown,
		"ps_won":       StatusUnknown,
	}
	for token, want := range tests {
		assert.Equal(t, want, ParseStatus(token), token)
	}
}
