// Package report merges a match reconstructed from the log with the decoded
// replay of the same match and builds the document uploaded to the ladder.
package report

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"
)

// Replay is a decoded replay file (Playback/temp.rec).
type Replay struct {
	Name       string         `json:"name"`
	ModChksum  uint32         `json:"mod_chksum"`
	ModVersion uint32         `json:"mod_version"`
	MD5        string         `json:"md5"`
	Date       string         `json:"date"`
	Ticks      int            `json:"ticks"`
	Game       GameSettings   `json:"game"`
	Map        Map            `json:"map"`
	Players    []ReplayPlayer `json:"players"`
	Messages   []Message      `json:"messages"`
	Actions    []Action       `json:"actions"`
}

// GameSettings are the lobby settings recorded in the replay.
type GameSettings struct {
	Name          string `json:"name"`
	Mode          string `json:"mode"`
	Resources     string `json:"resources"`
	Locations     string `json:"locations"`
	VictoryPoints int    `json:"victory_points"`
}

// Map describes the map the replay was recorded on.
type Map struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	AbbrName    string `json:"abbrname"`
	MaxPlayers  int    `json:"maxplayers"`
	Path        string `json:"path"`
	Date        string `json:"date"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
}

// ReplayPlayer is a player as recorded in the replay, in lobby order.
type ReplayPlayer struct {
	Name           string `json:"name"`
	Kind           int    `json:"kind"`
	Team           int    `json:"team"`
	Race           int    `json:"race"`
	RelicID        uint64 `json:"relic_id"`
	Rank           int    `json:"rank"`
	CPU            int    `json:"cpu"`
	Hero           int    `json:"hero"`
	PrimaryColor   int    `json:"primary_color"`
	SecondaryColor int    `json:"secondary_color"`
	TrimColor      int    `json:"trim_color"`
	AccessoryColor int    `json:"accessory_color"`
	SkinPath       string `json:"skin_path"`
	SkinName       string `json:"skin_name"`
	ID             int    `json:"id"`
}

// Message is a chat message recorded in the replay.
type Message struct {
	Tick     int    `json:"tick"`
	Sender   string `json:"sender"`
	Receiver string `json:"receiver"`
	Body     string `json:"body"`
	PlayerID int    `json:"player_id"`
}

// Action is a player command recorded in the replay. Player and RelicID are
// filled in by Merge.
type Action struct {
	Tick    int    `json:"tick"`
	Data    []int  `json:"data"`
	Player  string `json:"player"`
	RelicID uint64 `json:"relic_id"`
}

// ReplayDecoder decodes a replay file.
type ReplayDecoder interface {
	Decode(ctx context.Context, r io.Reader) (*Replay, error)
}

// DecoderFunc adapts a function to the ReplayDecoder interface.
type DecoderFunc func(ctx context.Context, r io.Reader) (*Replay, error)

// Decode implements ReplayDecoder.
func (f DecoderFunc) Decode(ctx context.Context, r io.Reader) (*Replay, error) {
	return f(ctx, r)
}

// JSONDecoder reads a replay that an external tool already decoded to JSON.
type JSONDecoder struct{}

// Decode implements ReplayDecoder.
func (JSONDecoder) Decode(ctx context.Context, r io.Reader) (*Replay, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var replay Replay
	if err := json.NewDecoder(r).DecodeContext(ctx, &replay); err != nil {
		return nil, fmt.Errorf("decoding replay: %w", err)
	}
	return &replay, nil
}

// DecodeFile opens path and decodes it with dec.
func DecodeFile(ctx context.Context, dec ReplayDecoder, path string) (*Replay, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening replay: %w", err)
	}
	defer f.Close()
	return dec.Decode(ctx, f)
}
