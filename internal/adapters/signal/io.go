package signal

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/PascualDaniel/onirix-live-server/internal/core"
	"github.com/PascualDaniel/onirix-live-server/internal/domain"
)

func (ctl *SignalWSController) writePump(ctx context.Context, c *WsSignalConn) {
	ticker := time.NewTicker(ctl.Cfg.PingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "signal").Msg("writePump ctx done")
			return
		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump ping error")
				return
			}
		case data, ok := <-c.send:
			if !ok {
				log.Warn().Str("module", "signal").Msg("writePump channel closed")
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump write error")
				return
			}
		}
	}
}

func (ctl *SignalWSController) readPump(ctx context.Context, sid core.SessionID, c *WsSignalConn) {
	defer func() {
		log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("readPump closing")
		ctl.Coord.OnDisconnect(sid)
		c.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("readPump ctx done")
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				log.Error().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("readPump read error")
				return
			}
			ctl.handleSignal(sid, data)
		}
	}
}

func (ctl *SignalWSController) handleSignal(sid core.SessionID, data []byte) {
	var env struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		log.Error().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("bad json")
		return
	}
	log.Info().Str("module", "signal").Str("sid", string(sid)).Str("type", env.Type).Msg("inbound event")

	switch env.Type {
	case EventCreateRoom:
		ctl.createRoom(sid, data)
	case EventJoinRoom:
		ctl.joinRoom(sid, data)
	case EventLeaveRoom:
		ctl.leaveRoom(sid, data)
	case EventCloseRoom:
		ctl.closeRoom(sid, data)
	case EventBroadcast:
		ctl.broadcast(sid, data)
	case EventSendToRoom:
		ctl.sendToRoom(sid, data)
	case EventReceiveAction:
		ctl.receiveAction(sid, data)
	case EventGameStart:
		ctl.gameStart(sid, data)
	case EventIsMyTurn:
		ctl.isMyTurn(sid, data)
	case EventPassTurn:
		ctl.passTurn(sid, data)
	case EventWin:
		ctl.win(sid, data)
	default:
		log.Warn().Str("module", "signal").Str("type", env.Type).Msg("unknown signal")
	}
}

// reply sends an event to the acting connection only.
func (ctl *SignalWSController) reply(sid core.SessionID, v any) {
	if f, ok := encode(v); ok {
		ctl.Coord.Hub.SendToOne(sid, f)
	}
}

// emitRoom sends an event to every connection in the room's group,
// sender included.
func (ctl *SignalWSController) emitRoom(name domain.RoomName, v any) {
	if f, ok := encode(v); ok {
		ctl.Coord.Hub.SendToRoom(name, f)
	}
}

// emitAll sends an event to every connected client.
func (ctl *SignalWSController) emitAll(v any) {
	if f, ok := encode(v); ok {
		ctl.Coord.Hub.SendToAll(f)
	}
}

func encode(v any) (core.Frame, bool) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("encode marshal")
		return nil, false
	}
	return b, true
}

func (ctl *SignalWSController) replyError(sid core.SessionID, msg string) {
	ctl.reply(sid, errorPayload{Type: EventError, Error: msg})
}
