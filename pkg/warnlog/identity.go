package warnlog

import (
	"log/slog"
	"strconv"

	"github.com/leighmacdonald/steamid/v4/steamid"
)

type identity struct {
	steamID uint64
	relicID uint64
	slot    int
	uid     string
	hasSlot bool
}

// identities correlates the three ids a player is known by: the relic
// profile id, the steam network id and the lobby uid. Entries are keyed by
// steam id and kept in insertion order so that lookups are deterministic.
type identities struct {
	logger  *slog.Logger
	order   []uint64
	entries map[uint64]*identity
}

func newIdentities(logger *slog.Logger) *identities {
	return &identities{
		logger:  logger,
		entries: make(map[uint64]*identity),
	}
}

func (c *identities) upsert(steamID uint64) *identity {
	if e, ok := c.entries[steamID]; ok {
		return e
	}
	e := &identity{steamID: steamID}
	c.entries[steamID] = e
	c.order = append(c.order, steamID)
	return e
}

// parseSteamID normalizes a network id token. Ids that do not form a valid
// SteamID64 are still accepted verbatim so that correlation keeps working on
// unusual accounts.
func (c *identities) parseSteamID(text string) uint64 {
	if sid := steamid.New(text); sid.Valid() {
		return uint64(sid.Int64())
	}
	c.logger.Warn("network id is not a valid SteamID64", "steam_id", text)
	return atou(text)
}

// addHeader records the lobby uid and slot announced by a MatchHeader line.
func (c *identities) addHeader(uid, steamText, slotText string) {
	e := c.upsert(c.parseSteamID(steamText))
	e.uid = uid
	if slot, err := strconv.Atoi(slotText); err == nil {
		e.slot = slot
		e.hasSlot = true
	}
}

// addProfile records the relic id announced by a ProfileMapping line.
func (c *identities) addProfile(relicText, steamText string) {
	e := c.upsert(c.parseSteamID(steamText))
	e.relicID = atou(relicText)
}

func (c *identities) find(match func(*identity) bool) *identity {
	for _, id := range c.order {
		if e := c.entries[id]; match(e) {
			return e
		}
	}
	return nil
}

// resolve fills SteamID and Slot on p. Players with a relic id are matched
// on it; dropped players, which only carry a lobby uid, are matched on uid
// and also receive their relic id. Unmatched players are left unchanged.
func (c *identities) resolve(p *PlayerRecord, uid string) {
	var e *identity
	if uid != "" {
		e = c.find(func(e *identity) bool { return e.uid == uid })
		if e != nil {
			p.RelicID = e.relicID
		}
	} else if p.RelicID != 0 {
		e = c.find(func(e *identity) bool { return e.relicID == p.RelicID })
	}
	if e == nil {
		return
	}
	p.SteamID = e.steamID
	if e.hasSlot {
		p.Slot = e.slot
	}
}
