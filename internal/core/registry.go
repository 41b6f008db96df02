package core

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/PascualDaniel/onirix-live-server/internal/domain"
)

// RoomInfo is a read-only view for APIs (no transport fields).
type RoomInfo struct {
	Name        domain.RoomName `json:"name"`
	MemberCount int             `json:"client_count"`
	Started     bool            `json:"started"`
}

// Registry owns the name -> room mapping and is the single source of
// truth for which rooms exist. Its lock guards only the map; each
// room serializes its own mutations, so traffic in one room never
// blocks another.
type Registry struct {
	mu    sync.RWMutex
	rooms map[domain.RoomName]*Room
}

func NewRegistry() *Registry {
	return &Registry{
		rooms: make(map[domain.RoomName]*Room),
	}
}

// Create inserts a new room with requester as host and sole member.
func (g *Registry) Create(name domain.RoomName, requester SessionID) (*Room, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.rooms[name]; ok {
		return nil, domain.ErrRoomExists
	}
	room := NewRoom(name, requester)
	g.rooms[name] = room
	log.Info().Str("module", "core.registry").Str("room", string(name)).Str("host", string(requester)).Msg("room created")
	return room, nil
}

// Lookup is non-mutating.
func (g *Registry) Lookup(name domain.RoomName) (*Room, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	room, ok := g.rooms[name]
	return room, ok
}

// Join appends requester to the room and returns the updated member
// count.
func (g *Registry) Join(name domain.RoomName, requester SessionID) (int, error) {
	room, ok := g.Lookup(name)
	if !ok {
		return 0, domain.ErrRoomNotFound
	}
	count := room.addMember(requester)
	log.Info().Str("module", "core.registry").Str("room", string(name)).Str("sid", string(requester)).Int("count", count).Msg("member joined")
	return count, nil
}

// Leave removes requester from the member list. The room survives
// even when this empties it; only a disconnect reaps empty rooms.
func (g *Registry) Leave(name domain.RoomName, requester SessionID) error {
	room, ok := g.Lookup(name)
	if !ok {
		return domain.ErrRoomNotFound
	}
	room.removeMember(requester)
	log.Info().Str("module", "core.registry").Str("room", string(name)).Str("sid", string(requester)).Msg("member left")
	return nil
}

// Close deletes the room if requester is its host and returns the
// member snapshot so the caller can evict their transport groups.
func (g *Registry) Close(name domain.RoomName, requester SessionID) ([]SessionID, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	room, ok := g.rooms[name]
	if !ok {
		return nil, domain.ErrRoomNotFound
	}
	if room.Host() != requester {
		return nil, domain.ErrNotHost
	}
	delete(g.rooms, name)
	members := room.Members()
	log.Info().Str("module", "core.registry").Str("room", string(name)).Int("evicted", len(members)).Msg("room closed")
	return members, nil
}

// List returns a snapshot of all rooms.
func (g *Registry) List() []RoomInfo {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]RoomInfo, 0, len(g.rooms))
	for _, r := range g.rooms {
		out = append(out, RoomInfo{
			Name:        r.Name(),
			MemberCount: r.MemberCount(),
			Started:     r.Started(),
		})
	}
	return out
}

// RoomsOf returns the names of every room sid is currently a member of.
func (g *Registry) RoomsOf(sid SessionID) []domain.RoomName {
	g.mu.RLock()
	defer g.mu.RUnlock()
	var names []domain.RoomName
	for name, room := range g.rooms {
		for _, m := range room.Members() {
			if m == sid {
				names = append(names, name)
				break
			}
		}
	}
	return names
}

// Evict removes sid from one room as disconnect cleanup, deleting the
// room when this empties it. Reports whether sid was a member. An
// explicit leave goes through Leave, which never deletes.
func (g *Registry) Evict(name domain.RoomName, sid SessionID) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	room, ok := g.rooms[name]
	if !ok {
		return false
	}
	if !room.removeMember(sid) {
		return false
	}
	if room.MemberCount() == 0 {
		delete(g.rooms, name)
		log.Info().Str("module", "core.registry").Str("room", string(name)).Msg("empty room reaped")
	}
	log.Info().Str("module", "core.registry").Str("room", string(name)).Str("sid", string(sid)).Msg("session evicted")
	return true
}
