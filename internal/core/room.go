// Package core holds the room registry and the per-room turn machine.
// It owns membership state but never touches transport resources.
package core

import (
	"sync"

	"github.com/PascualDaniel/onirix-live-server/internal/domain"
)

// Outcome reports whether a turn-gated operation took effect.
// Out-of-turn requests are ignored, not failed: the caller sees
// nothing happen and no error.
type Outcome int

const (
	Applied Outcome = iota
	Ignored
)

// Room is one named group of sessions sharing a turn order.
// mu serializes every mutation so concurrent events for the same
// room never interleave mid-update.
type Room struct {
	name domain.RoomName
	host SessionID

	mu      sync.Mutex
	members []SessionID
	turn    int       // 1-based position in members, 0 until a game starts
	current SessionID // cache of members[turn-1], refreshed by recomputeCurrent
}

func NewRoom(name domain.RoomName, host SessionID) *Room {
	return &Room{
		name:    name,
		host:    host,
		members: []SessionID{host},
	}
}

func (r *Room) Name() domain.RoomName { return r.name }

// Host never changes, even after the creator leaves the room.
func (r *Room) Host() SessionID { return r.host }

func (r *Room) MemberCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.members)
}

// Members returns a snapshot in join order.
func (r *Room) Members() []SessionID {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]SessionID, len(r.members))
	copy(out, r.members)
	return out
}

// Started reports whether a game is running in this room.
func (r *Room) Started() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.turn != 0
}

// CurrentTurn returns the session holding the turn, or "" when no
// game is running or the holder position no longer exists.
func (r *Room) CurrentTurn() SessionID {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// addMember appends sid and returns the new member count. A repeat
// join is appended again; the wire protocol never deduped and clients
// rely on the count they get back.
func (r *Room) addMember(sid SessionID) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.members = append(r.members, sid)
	return len(r.members)
}

// removeMember filters sid out of the member list and reports whether
// anything was removed. The turn index is deliberately left alone:
// positions after the leaver shift down, which can skip or repeat
// turns in a running game. See recomputeCurrent.
func (r *Room) removeMember(sid SessionID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.members[:0]
	removed := false
	for _, m := range r.members {
		if m == sid {
			removed = true
			continue
		}
		kept = append(kept, m)
	}
	r.members = kept
	return removed
}

// Start begins a game. Only the host may start; anyone else gets
// false and no state change. The first turn always belongs to the
// host, whether or not the host still sits at position one.
func (r *Room) Start(requester SessionID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if requester != r.host {
		return false
	}
	r.turn = 1
	r.current = r.host
	return true
}

// IsTurn reports whether sid holds the current turn.
func (r *Room) IsTurn(sid SessionID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current != "" && r.current == sid
}

// PassTurn advances the turn circularly if requester holds it, and
// returns the new holder. Anyone else is Ignored with no state change.
func (r *Room) PassTurn(requester SessionID) (SessionID, Outcome) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.turn == 0 || r.current == "" || requester != r.current {
		return "", Ignored
	}
	if r.turn == len(r.members) {
		r.turn = 1
	} else {
		r.turn++
	}
	r.recomputeCurrent()
	return r.current, Applied
}

// DeclareWin reports whether a winner announcement should go out for
// requester. Only the turn holder may claim. Nothing is mutated; the
// room stays open for further rounds.
func (r *Room) DeclareWin(requester SessionID) Outcome {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.turn == 0 || r.current == "" || requester != r.current {
		return Ignored
	}
	return Applied
}

// recomputeCurrent refreshes the cached holder from the turn index.
// When departures have shrunk the list below the index there is no
// position to point at; current goes empty and every turn-gated
// request is ignored until the next game-start. All index-to-session
// resolution lives here so a rule change lands in one place.
func (r *Room) recomputeCurrent() {
	if r.turn < 1 || r.turn > len(r.members) {
		r.current = ""
		return
	}
	r.current = r.members[r.turn-1]
}
