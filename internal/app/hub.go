// Package app wires the room registry to live connections: fan-out,
// transport-group bookkeeping and the per-event coordinator.
package app

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/PascualDaniel/onirix-live-server/internal/core"
	"github.com/PascualDaniel/onirix-live-server/internal/domain"
)

type sessionEntry struct {
	Conn   core.SignalConnection
	Cancel context.CancelFunc
}

// Hub is the fan-out layer. It knows every live connection and which
// transport room-groups each one sits in. Group membership mirrors
// the registry's member lists; the Coordinator updates both on every
// mutating operation so the two views stay in lockstep.
//
// Delivery is fire-and-forget: a frame that cannot be queued for a
// connection is dropped and logged, never retried.
type Hub struct {
	mu       sync.RWMutex
	sessions map[core.SessionID]*sessionEntry
	groups   map[domain.RoomName]map[core.SessionID]struct{}
}

func NewHub() *Hub {
	return &Hub{
		sessions: make(map[core.SessionID]*sessionEntry),
		groups:   make(map[domain.RoomName]map[core.SessionID]struct{}),
	}
}

// Bind registers a connection under sid. Rebinding the same sid
// replaces the previous connection.
func (h *Hub) Bind(sid core.SessionID, conn core.SignalConnection, cancel context.CancelFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sessions[sid] = &sessionEntry{Conn: conn, Cancel: cancel}
	log.Info().Str("module", "app.hub").Str("sid", string(sid)).Msg("bound session")
}

// Unbind forgets the connection, drops it from every group and
// cancels the context bound with it, so the session's goroutines do
// not outlive the socket.
func (h *Hub) Unbind(sid core.SessionID) {
	h.mu.Lock()
	e, ok := h.sessions[sid]
	delete(h.sessions, sid)
	for name, group := range h.groups {
		delete(group, sid)
		if len(group) == 0 {
			delete(h.groups, name)
		}
	}
	h.mu.Unlock()
	if ok && e.Cancel != nil {
		e.Cancel()
	}
	log.Info().Str("module", "app.hub").Str("sid", string(sid)).Msg("unbound session")
}

// Cancel fires the context cancel bound with the session, if any.
func (h *Hub) Cancel(sid core.SessionID) bool {
	h.mu.RLock()
	e, ok := h.sessions[sid]
	h.mu.RUnlock()
	if !ok {
		return false
	}
	if e.Cancel != nil {
		e.Cancel()
	}
	return true
}

// JoinGroup adds sid to the transport group of a room.
func (h *Hub) JoinGroup(name domain.RoomName, sid core.SessionID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	group, ok := h.groups[name]
	if !ok {
		group = make(map[core.SessionID]struct{})
		h.groups[name] = group
	}
	group[sid] = struct{}{}
}

// LeaveGroup removes sid from the transport group. Removing from an
// unknown group is a no-op, mirroring a socket leaving a room it
// never joined.
func (h *Hub) LeaveGroup(name domain.RoomName, sid core.SessionID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	group, ok := h.groups[name]
	if !ok {
		return
	}
	delete(group, sid)
	if len(group) == 0 {
		delete(h.groups, name)
	}
}

// DropGroup evicts every connection from the room's transport group.
func (h *Hub) DropGroup(name domain.RoomName) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.groups, name)
}

// InGroup reports transport-group membership.
func (h *Hub) InGroup(name domain.RoomName, sid core.SessionID) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.groups[name][sid]
	return ok
}

// SendToOne delivers a frame to exactly one connection and reports
// whether it was queued.
func (h *Hub) SendToOne(sid core.SessionID, f core.Frame) bool {
	h.mu.RLock()
	e, ok := h.sessions[sid]
	h.mu.RUnlock()
	if !ok {
		return false
	}
	if err := e.Conn.TrySend(f); err != nil {
		log.Warn().Err(err).Str("module", "app.hub").Str("sid", string(sid)).Msg("frame dropped")
		return false
	}
	return true
}

// SendToRoom delivers a frame to every connection in the room's
// transport group, sender included, and returns how many were queued.
func (h *Hub) SendToRoom(name domain.RoomName, f core.Frame) int {
	h.mu.RLock()
	targets := make([]core.SessionID, 0, len(h.groups[name]))
	for sid := range h.groups[name] {
		targets = append(targets, sid)
	}
	h.mu.RUnlock()
	return h.deliver(targets, f)
}

// SendToAll delivers a frame to every bound connection, regardless of
// room membership.
func (h *Hub) SendToAll(f core.Frame) int {
	h.mu.RLock()
	targets := make([]core.SessionID, 0, len(h.sessions))
	for sid := range h.sessions {
		targets = append(targets, sid)
	}
	h.mu.RUnlock()
	return h.deliver(targets, f)
}

func (h *Hub) deliver(targets []core.SessionID, f core.Frame) int {
	sent := 0
	for _, sid := range targets {
		if h.SendToOne(sid, f) {
			sent++
		}
	}
	log.Debug().Str("module", "app.hub").Int("sent_to", sent).Int("targets", len(targets)).Msg("fanout result")
	return sent
}
