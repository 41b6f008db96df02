package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/PascualDaniel/onirix-live-server/internal/core"
	"github.com/PascualDaniel/onirix-live-server/internal/domain"
)

func (ctl *SignalWSController) broadcast(sid core.SessionID, data []byte) {
	var p publishPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad broadcast payload")
		ctl.replyError(sid, "bad_payload")
		return
	}
	p.Type = EventPublished
	// Everyone gets it, the sender included.
	ctl.emitAll(p)
}

func (ctl *SignalWSController) sendToRoom(sid core.SessionID, data []byte) {
	var p publishPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad send-to-room payload")
		ctl.replyError(sid, "bad_payload")
		return
	}
	p.Type = EventPublished
	ctl.emitRoom(domain.RoomName(p.Room), p)
}

// receiveAction forwards an arbitrary action payload to the room named
// in its "room" field. The body is opaque to the server: only the
// type tag is rewritten, every other field passes through untouched.
func (ctl *SignalWSController) receiveAction(sid core.SessionID, data []byte) {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad action payload")
		ctl.replyError(sid, "bad_payload")
		return
	}
	room, _ := m["room"].(string)
	if room == "" {
		log.Warn().Str("module", "signal").Str("sid", string(sid)).Msg("action without room")
		ctl.replyError(sid, "missing room")
		return
	}
	m["type"] = EventPublished
	ctl.emitRoom(domain.RoomName(room), m)
}
