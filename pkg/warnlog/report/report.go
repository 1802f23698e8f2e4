package report

import (
	"encoding/base64"
	"strconv"
	"strings"
	"time"

	"github.com/eslreporter/warnlog/pkg/warnlog"
)

// mapPathPrefix is stripped from replay map paths in reports.
const mapPathPrefix = `DATA:maps\pvp\`

// Report is the document uploaded to the ladder for one match.
type Report struct {
	Aborted    bool            `json:"aborted"`
	Actions    []Action        `json:"actions"`
	Dev        bool            `json:"dev"`
	ID         string          `json:"id"`
	Map        string          `json:"map"`
	Reporter   Reporter        `json:"reporter"`
	Replay     string          `json:"replay"`
	ModVersion uint32          `json:"mod_version"`
	Ranked     bool            `json:"ranked"`
	League     bool            `json:"league"`
	Frames     int             `json:"frames"`
	Ticks      int             `json:"ticks"`
	Players    []ReportPlayer  `json:"players"`
	Messages   []ReportMessage `json:"messages"`
	Winner     int             `json:"winner"`
}

// Reporter identifies the client that produced a Report.
type Reporter struct {
	Date    string `json:"date"`
	Version string `json:"version"`
}

// ReportPlayer is a player entry of a Report.
type ReportPlayer struct {
	RelicID uint64 `json:"relic_id"`
	Hero    int    `json:"hero"`
	Race    int    `json:"race"`
	Name    string `json:"name"`
	SteamID uint64 `json:"steam_id"`
	Team    int    `json:"team"`
	SimID   int    `json:"sim_id"`
	Slot    int    `json:"slot"`
}

// ReportMessage is a chat message entry of a Report.
type ReportMessage struct {
	Receiver string `json:"receiver"`
	Sender   string `json:"sender"`
	Body     string `json:"body"`
	Tick     int    `json:"tick"`
	PlayerID int    `json:"player_id"`
}

// Options control the parts of a Report that do not come from the match.
type Options struct {
	// Dev marks the report as a test upload.
	Dev bool

	// Version is the reporting client's version.
	Version string

	// Replay is the raw replay file, attached base64 encoded if non-empty.
	Replay []byte

	// Now returns the report time. Defaults to time.Now.
	Now func() time.Time
}

// NewReport builds the upload document for a merged game.
//
// The winner is the team of the first player with status Won, or 0 if
// nobody won.
func NewReport(g Game, opts Options) Report {
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}

	winner := 0
	for _, p := range g.Players {
		if p.Status == warnlog.StatusWon {
			winner = p.Team
			break
		}
	}

	players := make([]ReportPlayer, len(g.Players))
	for i, p := range g.Players {
		players[i] = ReportPlayer{
			RelicID: p.RelicID,
			Hero:    p.Hero,
			Race:    p.Race,
			Name:    p.Name,
			SteamID: p.SteamID,
			Team:    p.Team,
			SimID:   p.SimID,
			Slot:    p.Slot,
		}
	}

	messages := make([]ReportMessage, len(g.Messages))
	for i, m := range g.Messages {
		messages[i] = ReportMessage{
			Receiver: m.Receiver,
			Sender:   m.Sender,
			Body:     m.Body,
			Tick:     m.Tick,
			PlayerID: m.PlayerID,
		}
	}

	actions := g.Actions
	if actions == nil {
		actions = []Action{}
	}

	var replay string
	if len(opts.Replay) > 0 {
		replay = base64.StdEncoding.EncodeToString(opts.Replay)
	}

	return Report{
		Aborted: g.Aborted,
		Actions: actions,
		Dev:     opts.Dev,
		ID:      strconv.FormatUint(g.ID, 10),
		Map:     MapName(g.Map.Path),
		Reporter: Reporter{
			Date:    now().UTC().Format(time.RFC3339),
			Version: opts.Version,
		},
		Replay:     replay,
		ModVersion: g.ModVersion,
		Frames:     g.Frames,
		Ticks:      g.Ticks,
		Players:    players,
		Messages:   messages,
		Winner:     winner,
	}
}

// MapName strips the pvp map directory from a replay map path.
func MapName(path string) string {
	return strings.ReplaceAll(path, mapPathPrefix, "")
}

// Winner returns the team of the first player with status Won in rec, or 0.
func Winner(rec warnlog.MatchRecord) int {
	for _, p := range rec.Players {
		if p.Status == warnlog.StatusWon {
			return p.TeamID
		}
	}
	return 0
}
