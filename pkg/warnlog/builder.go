package warnlog

import (
	"fmt"
	"log/slog"

	"github.com/eslreporter/warnlog/pkg/warnlog/event"
)

// Mission end status texts.
const (
	endGameOver = "Game over"
	endAbort    = "Abort"
)

// builder folds classified events into match records.
//
// cur is the record of the block being read. It is nil before the first
// MissionBegin, and once complete it stays attached (late result lines still
// land on it) until the next MissionBegin flushes it into games.
type builder struct {
	logger  *slog.Logger
	ids     *identities
	games   []MatchRecord
	cur     *MatchRecord
	steamID uint64
}

func newBuilder(logger *slog.Logger) *builder {
	return &builder{
		logger: logger,
		ids:    newIdentities(logger),
	}
}

// apply feeds one event into the state machine. The only error it returns
// is ErrNoActiveRecord, which callers log and skip.
func (b *builder) apply(ev event.Event) error {
	switch ev.Kind {
	case event.MatchHeader:
		b.ids.addHeader(ev.Group(0), ev.Group(1), ev.Group(2))

	case event.ProfileMapping:
		b.ids.addProfile(ev.Group(0), ev.Group(1))

	case event.OwnProfileID:
		b.steamID = b.ids.parseSteamID(ev.Group(0))

	case event.MissionBegin:
		if b.cur == nil || b.cur.Complete {
			b.flush()
			b.cur = &MatchRecord{}
		}
		b.cur.Map = ev.Group(0)

	case event.FrameMarker:

	case event.PlayerResult, event.PlayerResultAlt:
		if b.cur == nil {
			b.logger.Debug("dropping player result outside a match", "line", ev.Line)
			return nil
		}
		p, _ := ParsePlayer(ev)
		uid := ""
		if ev.Kind == event.PlayerResultAlt {
			uid = ev.Group(3)
		}
		b.ids.resolve(&p, uid)
		b.cur.Players = append(b.cur.Players, p)

	case event.MatchIDAssigned:
		if b.cur == nil {
			return fmt.Errorf("%w: %s", ErrNoActiveRecord, ev.Kind)
		}
		b.cur.ID = atou(ev.Group(0))

	case event.FrameCountFinal:
		if b.cur == nil {
			return fmt.Errorf("%w: %s", ErrNoActiveRecord, ev.Kind)
		}
		b.cur.Frames = atoi(ev.Group(0))

	case event.MissionEnd:
		if b.cur == nil {
			return fmt.Errorf("%w: %s", ErrNoActiveRecord, ev.Kind)
		}
		b.cur.Complete = true
		switch status := ev.Group(0); status {
		case endGameOver:
			b.cur.Aborted = false
		case endAbort:
			b.cur.Aborted = true
		default:
			b.logger.Warn("unrecognized mission end status, treating match as aborted",
				"status", status, "map", b.cur.Map)
			b.cur.Aborted = true
		}

	default:
		b.logger.Warn("unhandled event kind", "kind", ev.Kind)
	}
	return nil
}

func (b *builder) flush() {
	if b.cur != nil {
		b.games = append(b.games, *b.cur)
		b.cur = nil
	}
}

// result flushes the current record and returns the accumulated list.
func (b *builder) result() *GameList {
	b.flush()
	games := b.games
	if games == nil {
		games = []MatchRecord{}
	}
	return &GameList{Games: games, SteamID: b.steamID}
}
