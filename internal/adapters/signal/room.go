package signal

import (
	"encoding/json"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/PascualDaniel/onirix-live-server/internal/core"
	"github.com/PascualDaniel/onirix-live-server/internal/domain"
)

func (ctl *SignalWSController) createRoom(sid core.SessionID, data []byte) {
	var p roomPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad create-room payload")
		ctl.replyError(sid, "bad_payload")
		return
	}
	name, err := domain.NewRoomName(p.Room)
	if err != nil {
		ctl.replyError(sid, err.Error())
		return
	}

	err = ctl.Coord.CreateRoom(name, sid)
	if err != nil {
		log.Info().Str("module", "signal").Str("sid", string(sid)).Str("room", p.Room).Msg("room already exists")
	}
	ctl.reply(sid, ackPayload{Type: EventRoomCreated, Room: p.Room, OK: err == nil})
}

func (ctl *SignalWSController) joinRoom(sid core.SessionID, data []byte) {
	var p roomPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad join-room payload")
		ctl.replyError(sid, "bad_payload")
		return
	}

	name, err := domain.NewRoomName(p.Room)
	if err != nil {
		ctl.replyError(sid, err.Error())
		return
	}

	count, err := ctl.Coord.JoinRoom(name, sid)
	if err != nil {
		log.Info().Str("module", "signal").Str("sid", string(sid)).Str("room", p.Room).Msg("join on absent room")
		ctl.replyError(sid, "room not found")
		return
	}
	// Member count goes to the joiner only, never broadcast.
	ctl.reply(sid, roomInfoPayload{Type: EventRoomInfo, Room: p.Room, Count: count})
}

func (ctl *SignalWSController) leaveRoom(sid core.SessionID, data []byte) {
	var p roomPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad leave-room payload")
		return
	}
	name, err := domain.NewRoomName(p.Room)
	if err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("leave-room with bad name")
		return
	}
	// Fails silently on an absent room; the client gets no reply
	// either way.
	ctl.Coord.LeaveRoom(name, sid)
}

func (ctl *SignalWSController) closeRoom(sid core.SessionID, data []byte) {
	var p roomPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad close-room payload")
		ctl.replyError(sid, "bad_payload")
		return
	}

	name, err := domain.NewRoomName(p.Room)
	if err != nil {
		ctl.replyError(sid, err.Error())
		return
	}

	err = ctl.Coord.CloseRoom(name, sid)
	if err != nil && !errors.Is(err, domain.ErrRoomNotFound) && !errors.Is(err, domain.ErrNotHost) {
		log.Error().Err(err).Str("module", "signal").Str("room", p.Room).Msg("close-room")
	}
	ctl.reply(sid, ackPayload{Type: EventRoomClosed, Room: p.Room, OK: err == nil})
}
