package report

import (
	"github.com/eslreporter/warnlog/pkg/warnlog"
)

// firstSimID is the sim id of the first player in a match. Action payloads
// address players by an offset from actionPlayerBase.
const (
	firstSimID       = 1000
	actionPlayerBase = 0xE8
)

// Player joins a player's log outcome with their replay details.
type Player struct {
	Slot           int                  `json:"slot"`
	SteamID        uint64               `json:"steam_id"`
	SimID          int                  `json:"sim_id"`
	Status         warnlog.PlayerStatus `json:"status"`
	Name           string               `json:"name"`
	Kind           int                  `json:"kind"`
	Team           int                  `json:"team"`
	Race           int                  `json:"race"`
	RelicID        uint64               `json:"relic_id"`
	Rank           int                  `json:"rank"`
	CPU            int                  `json:"cpu"`
	Hero           int                  `json:"hero"`
	PrimaryColor   int                  `json:"primary_color"`
	SecondaryColor int                  `json:"secondary_color"`
	TrimColor      int                  `json:"trim_color"`
	AccessoryColor int                  `json:"accessory_color"`
	SkinPath       string               `json:"skin_path"`
	SkinName       string               `json:"skin_name"`
	ID             int                  `json:"id"`
}

// Game is a match with both the log and the replay view merged.
type Game struct {
	ID         uint64       `json:"id"`
	Name       string       `json:"name"`
	ModChksum  uint32       `json:"mod_chksum"`
	ModVersion uint32       `json:"mod_version"`
	MD5        string       `json:"md5"`
	Date       string       `json:"date"`
	Ticks      int          `json:"ticks"`
	Game       GameSettings `json:"game"`
	Map        Map          `json:"map"`
	Players    []Player     `json:"players"`
	Messages   []Message    `json:"messages"`
	Actions    []Action     `json:"actions"`
	Aborted    bool         `json:"aborted"`
	Frames     int          `json:"frames"`
	EndedAt    string       `json:"ended_at"`
}

// Merge combines a decoded replay with the match record of the same game.
//
// Players are paired by position: the n-th replay player with the n-th log
// player. A replay player without a log counterpart becomes a zero Player.
// Team, name and relic id come from the replay; slot, steam id, sim id,
// race and status from the log. Actions are kept only when they address a
// known sim id.
func Merge(replay *Replay, rec warnlog.MatchRecord) Game {
	if replay == nil {
		replay = &Replay{}
	}

	players := make([]Player, len(replay.Players))
	for i, rp := range replay.Players {
		if i >= len(rec.Players) {
			continue
		}
		lp := rec.Players[i]
		players[i] = Player{
			Slot:           lp.Slot,
			SteamID:        lp.SteamID,
			SimID:          lp.SimID,
			Status:         lp.Status,
			Name:           rp.Name,
			Kind:           rp.Kind,
			Team:           rp.Team,
			Race:           lp.Race,
			RelicID:        rp.RelicID,
			Rank:           rp.Rank,
			CPU:            rp.CPU,
			Hero:           rp.Hero,
			PrimaryColor:   rp.PrimaryColor,
			SecondaryColor: rp.SecondaryColor,
			TrimColor:      rp.TrimColor,
			AccessoryColor: rp.AccessoryColor,
			SkinPath:       rp.SkinPath,
			SkinName:       rp.SkinName,
			ID:             rp.ID,
		}
	}

	bySimID := make(map[int]*Player, len(players))
	for i := range players {
		if _, dup := bySimID[players[i].SimID]; !dup {
			bySimID[players[i].SimID] = &players[i]
		}
	}

	actions := make([]Action, 0, len(replay.Actions))
	for _, a := range replay.Actions {
		if len(a.Data) < 4 || a.Data[3] < actionPlayerBase {
			continue
		}
		p, ok := bySimID[a.Data[3]-actionPlayerBase+firstSimID]
		if !ok {
			continue
		}
		actions = append(actions, Action{
			Tick:    a.Tick,
			Data:    append([]int(nil), a.Data...),
			Player:  p.Name,
			RelicID: p.RelicID,
		})
	}

	return Game{
		ID:         rec.ID,
		Name:       replay.Name,
		ModChksum:  replay.ModChksum,
		ModVersion: replay.ModVersion,
		MD5:        replay.MD5,
		Date:       replay.Date,
		Ticks:      replay.Ticks,
		Game:       replay.Game,
		Map:        replay.Map,
		Players:    players,
		Messages:   append([]Message(nil), replay.Messages...),
		Actions:    actions,
		Aborted:    rec.Aborted,
		Frames:     rec.Frames,
		EndedAt:    replay.Date,
	}
}
