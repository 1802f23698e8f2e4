package warnlog

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIdentities_ResolveByRelicID(t *testing.T) {
	ids := newIdentities(discardLogger)
	ids.addProfile("11718717", "76561198099396483")
	ids.addHeader("0098c7db", "76561198099396483", "3")

	p := PlayerRecord{RelicID: 11718717}
	ids.resolve(&p, "")
	assert.Equal(t, uint64(76561198099396483), p.SteamID)
	assert.Equal(t, 3, p.Slot)
}

func TestIdentities_ResolveByUID(t *testing.T) {
	ids := newIdentities(discardLogger)
	ids.addHeader("0098c7db", "76561198099396483", "4")
	ids.addProfile("11718717", "76561198099396483")

	p := PlayerRecord{Status: StatusDropped}
	ids.resolve(&p, "0098c7db")
	assert.Equal(t, uint64(76561198099396483), p.SteamID)
	assert.Equal(t, uint64(11718717), p.RelicID)
	assert.Equal(t, 4, p.Slot)
}

func TestIdentities_PartialEntry(t *testing.T) {
	ids := newIdentities(discardLogger)
	ids.addProfile("500", "76561198000000101")

	p := PlayerRecord{RelicID: 500}
	ids.resolve(&p, "")
	assert.Equal(t, uint64(76561198000000101), p.SteamID)
	assert.Zero(t, p.Slot)
}

func TestIdentities_FirstMatchWins(t *testing.T) {
	ids := newIdentities(discardLogger)
	ids.addProfile("500", "76561198000000101")
	ids.addProfile("500", "76561198000000102")

	p := PlayerRecord{RelicID: 500}
	ids.resolve(&p, "")
	assert.Equal(t, uint64(76561198000000101), p.SteamID)
}

func TestIdentities_NoMatch(t *testing.T) {
	ids := newIdentities(discardLogger)
	ids.addHeader("aaaa", "76561198000000101", "1")

	p := PlayerRecord{RelicID: 0}
	ids.resolve(&p, "")
	assert.Zero(t, p.SteamID)

	ids.resolve(&p, "bbbb")
	assert.Zero(t, p.SteamID)
}

func TestIdentities_InvalidNetworkID(t *testing.T) {
	var buf bytes.Buffer
	ids := newIdentities(slog.New(slog.NewTextHandler(&buf, nil)))

	ids.addProfile("7", "76561190000000000")

	p := PlayerRecord{RelicID: 7}
	ids.resolve(&p, "")
	assert.Equal(t, uint64(76561190000000000), p.SteamID)
	assert.Contains(t, buf.String(), "not a valid SteamID64")
}
