package app

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/PascualDaniel/onirix-live-server/internal/core"
	"github.com/PascualDaniel/onirix-live-server/internal/domain"
)

// Coordinator glues the room registry to the connection hub. There
// are two membership views of a room, the registry's ordered member
// list and the hub's transport group, and every operation here
// updates both under one per-room lock so a concurrent operation on
// the same room never observes half of a pair.
type Coordinator struct {
	Rooms *core.Registry
	Hub   *Hub

	mu    sync.Mutex
	locks map[domain.RoomName]*sync.Mutex
}

func NewCoordinator() *Coordinator {
	return &Coordinator{
		Rooms: core.NewRegistry(),
		Hub:   NewHub(),
		locks: make(map[domain.RoomName]*sync.Mutex),
	}
}

// lockRoom serializes the member-list and transport-group update pair
// for one room name; both views change under it or not at all.
// Entries are never removed, so every caller for a name always meets
// the same mutex; the table is bounded by distinct names seen.
func (c *Coordinator) lockRoom(name domain.RoomName) func() {
	c.mu.Lock()
	l, ok := c.locks[name]
	if !ok {
		l = &sync.Mutex{}
		c.locks[name] = l
	}
	c.mu.Unlock()
	l.Lock()
	return l.Unlock
}

// CreateRoom registers a new room owned by sid and puts sid in its
// transport group. Fails with domain.ErrRoomExists on a taken name.
func (c *Coordinator) CreateRoom(name domain.RoomName, sid core.SessionID) error {
	defer c.lockRoom(name)()
	if _, err := c.Rooms.Create(name, sid); err != nil {
		return err
	}
	c.Hub.JoinGroup(name, sid)
	return nil
}

// JoinRoom appends sid to the room and its transport group, returning
// the updated member count for the caller's private room-info reply.
func (c *Coordinator) JoinRoom(name domain.RoomName, sid core.SessionID) (int, error) {
	defer c.lockRoom(name)()
	count, err := c.Rooms.Join(name, sid)
	if err != nil {
		return 0, err
	}
	c.Hub.JoinGroup(name, sid)
	return count, nil
}

// LeaveRoom always detaches the transport group, even when the room
// is unknown; a stale leave is not an error the client can act on.
func (c *Coordinator) LeaveRoom(name domain.RoomName, sid core.SessionID) {
	defer c.lockRoom(name)()
	c.Hub.LeaveGroup(name, sid)
	if err := c.Rooms.Leave(name, sid); err != nil {
		log.Debug().Err(err).Str("module", "app.coordinator").Str("room", string(name)).Str("sid", string(sid)).Msg("leave on absent room")
	}
}

// CloseRoom deletes the room and evicts every member's transport,
// host-only. Returns domain.ErrNotHost or domain.ErrRoomNotFound.
func (c *Coordinator) CloseRoom(name domain.RoomName, sid core.SessionID) error {
	defer c.lockRoom(name)()
	if _, err := c.Rooms.Close(name, sid); err != nil {
		return err
	}
	c.Hub.DropGroup(name)
	return nil
}

// StartGame begins a game in the room; only the host may, and a
// missing room simply reports false.
func (c *Coordinator) StartGame(name domain.RoomName, sid core.SessionID) bool {
	room, ok := c.Rooms.Lookup(name)
	if !ok {
		return false
	}
	return room.Start(sid)
}

// IsMyTurn reports whether sid holds the turn in the room.
func (c *Coordinator) IsMyTurn(name domain.RoomName, sid core.SessionID) bool {
	room, ok := c.Rooms.Lookup(name)
	if !ok {
		return false
	}
	return room.IsTurn(sid)
}

// PassTurn advances the room's turn if sid holds it and returns the
// new holder.
func (c *Coordinator) PassTurn(name domain.RoomName, sid core.SessionID) (core.SessionID, core.Outcome) {
	room, ok := c.Rooms.Lookup(name)
	if !ok {
		return "", core.Ignored
	}
	return room.PassTurn(sid)
}

// DeclareWin reports whether a winner announcement for sid should go
// out to the room.
func (c *Coordinator) DeclareWin(name domain.RoomName, sid core.SessionID) core.Outcome {
	room, ok := c.Rooms.Lookup(name)
	if !ok {
		return core.Ignored
	}
	return room.DeclareWin(sid)
}

// OnDisconnect is the connection-lifecycle hook. The transport calls
// it exactly once when a socket dies, after the last event from that
// socket; it strips sid from every room and group, then forgets the
// connection and cancels its context. Rooms emptied this way are
// reaped by the registry.
func (c *Coordinator) OnDisconnect(sid core.SessionID) {
	for _, name := range c.Rooms.RoomsOf(sid) {
		unlock := c.lockRoom(name)
		c.Rooms.Evict(name, sid)
		c.Hub.LeaveGroup(name, sid)
		unlock()
	}
	c.Hub.Unbind(sid)
}
