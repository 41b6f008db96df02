package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/PascualDaniel/onirix-live-server/internal/core"
	"github.com/PascualDaniel/onirix-live-server/internal/domain"
)

// Turn events share soft-fail semantics: a request from the wrong
// session simply emits nothing. The client distinguishes "ignored"
// from "applied" by whether the room event arrives.

func (ctl *SignalWSController) gameStart(sid core.SessionID, data []byte) {
	var p roomPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad game-start payload")
		return
	}
	name := domain.RoomName(p.Room)
	if !ctl.Coord.StartGame(name, sid) {
		log.Info().Str("module", "signal").Str("sid", string(sid)).Str("room", p.Room).Msg("game-start refused")
		return
	}
	ctl.emitRoom(name, roomPayload{Type: EventStart, Room: p.Room})
}

func (ctl *SignalWSController) isMyTurn(sid core.SessionID, data []byte) {
	var p roomPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad is-my-turn payload")
		return
	}
	if ctl.Coord.IsMyTurn(domain.RoomName(p.Room), sid) {
		ctl.reply(sid, turnPayload{Type: EventYourTurn, Player: string(sid)})
	}
}

func (ctl *SignalWSController) passTurn(sid core.SessionID, data []byte) {
	var p roomPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad pass-turn payload")
		return
	}
	name := domain.RoomName(p.Room)
	next, outcome := ctl.Coord.PassTurn(name, sid)
	if outcome == core.Ignored {
		return
	}
	ctl.emitRoom(name, turnPayload{Type: EventNextTurn, Room: p.Room, Player: string(next)})
}

func (ctl *SignalWSController) win(sid core.SessionID, data []byte) {
	var p roomPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad win payload")
		return
	}
	name := domain.RoomName(p.Room)
	if ctl.Coord.DeclareWin(name, sid) == core.Ignored {
		return
	}
	ctl.emitRoom(name, turnPayload{Type: EventWinner, Room: p.Room, Player: string(sid)})
}
