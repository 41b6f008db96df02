package signal

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/PascualDaniel/onirix-live-server/internal/app"
	"github.com/PascualDaniel/onirix-live-server/internal/config"
	"github.com/PascualDaniel/onirix-live-server/internal/core"
)

// fakeConn captures emitted frames in place of a websocket.
type fakeConn struct {
	mu     sync.Mutex
	frames []core.Frame
	fail   bool
}

func (f *fakeConn) TrySend(fr core.Frame) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("backpressure")
	}
	f.frames = append(f.frames, fr)
	return nil
}

func (f *fakeConn) Close() {}

func (f *fakeConn) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.frames)
}

func (f *fakeConn) last(t *testing.T) map[string]any {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.frames) == 0 {
		t.Fatal("no frame delivered")
	}
	var m map[string]any
	if err := json.Unmarshal(f.frames[len(f.frames)-1], &m); err != nil {
		t.Fatalf("bad outbound frame: %v", err)
	}
	return m
}

func newTestController() *SignalWSController {
	return NewSignalWSController(app.NewCoordinator(), &config.Config{})
}

func connect(ctl *SignalWSController, sid core.SessionID) *fakeConn {
	c := &fakeConn{}
	ctl.Coord.Hub.Bind(sid, c, nil)
	return c
}

func send(ctl *SignalWSController, sid core.SessionID, frame string) {
	ctl.handleSignal(sid, []byte(frame))
}

func TestSignal_CreateRoom(t *testing.T) {
	ctl := newTestController()
	a := connect(ctl, "A")
	b := connect(ctl, "B")

	send(ctl, "A", `{"type":"create-room","room":"r"}`)
	got := a.last(t)
	if got["type"] != EventRoomCreated || got["ok"] != true {
		t.Errorf("ack = %v, want room-created ok", got)
	}
	if b.count() != 0 {
		t.Error("create-room ack broadcast to others")
	}

	t.Run("taken name acks false", func(t *testing.T) {
		send(ctl, "B", `{"type":"create-room","room":"r"}`)
		got := b.last(t)
		if got["type"] != EventRoomCreated || got["ok"] != false {
			t.Errorf("ack = %v, want room-created !ok", got)
		}
	})

	t.Run("empty name rejected", func(t *testing.T) {
		send(ctl, "B", `{"type":"create-room","room":""}`)
		if got := b.last(t); got["type"] != EventError {
			t.Errorf("reply = %v, want error", got)
		}
	})
}

func TestSignal_JoinRoom(t *testing.T) {
	ctl := newTestController()
	a := connect(ctl, "A")
	b := connect(ctl, "B")
	send(ctl, "A", `{"type":"create-room","room":"r"}`)

	send(ctl, "B", `{"type":"join-room","room":"r"}`)
	got := b.last(t)
	if got["type"] != EventRoomInfo {
		t.Fatalf("reply = %v, want room-info", got)
	}
	if got["count"] != float64(2) {
		t.Errorf("count = %v, want 2", got["count"])
	}
	if a.count() != 1 { // only its own create ack
		t.Error("room-info leaked to other members")
	}

	t.Run("absent room errors to caller", func(t *testing.T) {
		send(ctl, "B", `{"type":"join-room","room":"nowhere"}`)
		if got := b.last(t); got["type"] != EventError {
			t.Errorf("reply = %v, want error", got)
		}
	})

	t.Run("empty name rejected", func(t *testing.T) {
		send(ctl, "B", `{"type":"join-room","room":""}`)
		got := b.last(t)
		if got["type"] != EventError || got["error"] != "room name empty" {
			t.Errorf("reply = %v, want room name validation error", got)
		}
	})
}

func TestSignal_LeaveRoom(t *testing.T) {
	ctl := newTestController()
	connect(ctl, "A")
	b := connect(ctl, "B")
	send(ctl, "A", `{"type":"create-room","room":"r"}`)
	send(ctl, "B", `{"type":"join-room","room":"r"}`)

	before := b.count()
	send(ctl, "B", `{"type":"leave-room","room":"r"}`)
	if b.count() != before {
		t.Error("leave-room produced a reply")
	}
	send(ctl, "A", `{"type":"send-to-room","sender":"ana","message":"hi","room":"r"}`)
	if b.count() != before {
		t.Error("leaver still receives room traffic")
	}

	t.Run("bad name is dropped silently", func(t *testing.T) {
		send(ctl, "B", `{"type":"leave-room","room":""}`)
		if b.count() != before {
			t.Error("invalid leave produced a reply")
		}
	})

	t.Run("absent room is dropped silently", func(t *testing.T) {
		send(ctl, "B", `{"type":"leave-room","room":"nowhere"}`)
		if b.count() != before {
			t.Error("stale leave produced a reply")
		}
	})
}

func TestSignal_CloseRoom(t *testing.T) {
	ctl := newTestController()
	a := connect(ctl, "A")
	b := connect(ctl, "B")
	send(ctl, "A", `{"type":"create-room","room":"r"}`)
	send(ctl, "B", `{"type":"join-room","room":"r"}`)

	t.Run("non-host acks false", func(t *testing.T) {
		send(ctl, "B", `{"type":"close-room","room":"r"}`)
		got := b.last(t)
		if got["type"] != EventRoomClosed || got["ok"] != false {
			t.Errorf("ack = %v, want room-closed !ok", got)
		}
	})

	t.Run("empty name rejected", func(t *testing.T) {
		send(ctl, "B", `{"type":"close-room","room":""}`)
		if got := b.last(t); got["type"] != EventError {
			t.Errorf("reply = %v, want error", got)
		}
	})

	t.Run("host close evicts the room group", func(t *testing.T) {
		send(ctl, "A", `{"type":"close-room","room":"r"}`)
		got := a.last(t)
		if got["type"] != EventRoomClosed || got["ok"] != true {
			t.Fatalf("ack = %v, want room-closed ok", got)
		}
		before := b.count()
		send(ctl, "A", `{"type":"send-to-room","sender":"A","message":"hi","room":"r"}`)
		if b.count() != before {
			t.Error("evicted member still receives room traffic")
		}
	})
}

func TestSignal_Publish(t *testing.T) {
	ctl := newTestController()
	a := connect(ctl, "A")
	b := connect(ctl, "B")
	c := connect(ctl, "C")
	send(ctl, "A", `{"type":"create-room","room":"r"}`)
	send(ctl, "B", `{"type":"join-room","room":"r"}`)

	t.Run("broadcast reaches every client including sender", func(t *testing.T) {
		send(ctl, "A", `{"type":"broadcast","sender":"ana","message":"hello"}`)
		for name, conn := range map[string]*fakeConn{"A": a, "B": b, "C": c} {
			got := conn.last(t)
			if got["type"] != EventPublished || got["message"] != "hello" || got["sender"] != "ana" {
				t.Errorf("%s got %v, want published hello from ana", name, got)
			}
		}
	})

	t.Run("send-to-room stays inside the room", func(t *testing.T) {
		before := c.count()
		send(ctl, "A", `{"type":"send-to-room","sender":"ana","message":"secret","room":"r"}`)
		if got := b.last(t); got["message"] != "secret" {
			t.Errorf("room member got %v, want the message", got)
		}
		if got := a.last(t); got["type"] != EventPublished {
			t.Error("sender excluded from room publish")
		}
		if c.count() != before {
			t.Error("outsider received room traffic")
		}
	})
}

func TestSignal_ReceiveAction(t *testing.T) {
	ctl := newTestController()
	connect(ctl, "A")
	b := connect(ctl, "B")
	send(ctl, "A", `{"type":"create-room","room":"r"}`)
	send(ctl, "B", `{"type":"join-room","room":"r"}`)

	send(ctl, "A", `{"type":"recive-action","room":"r","action":"rotate","deg":90}`)
	got := b.last(t)
	if got["type"] != EventPublished {
		t.Errorf("type = %v, want published", got["type"])
	}
	if got["action"] != "rotate" || got["deg"] != float64(90) {
		t.Errorf("payload fields not passed through: %v", got)
	}
	if got["room"] != "r" {
		t.Errorf("room field lost: %v", got)
	}

	t.Run("missing room field errors to caller", func(t *testing.T) {
		a := connect(ctl, "D")
		send(ctl, "D", `{"type":"recive-action","action":"rotate"}`)
		if got := a.last(t); got["type"] != EventError {
			t.Errorf("reply = %v, want error", got)
		}
	})
}

func TestSignal_GameFlow(t *testing.T) {
	ctl := newTestController()
	h := connect(ctl, "H")
	b := connect(ctl, "B")
	c := connect(ctl, "C")
	send(ctl, "H", `{"type":"create-room","room":"g"}`)
	send(ctl, "B", `{"type":"join-room","room":"g"}`)
	send(ctl, "C", `{"type":"join-room","room":"g"}`)

	t.Run("game-start by non-host emits nothing", func(t *testing.T) {
		before := h.count()
		send(ctl, "B", `{"type":"game-start","room":"g"}`)
		if h.count() != before {
			t.Error("refused start reached the room")
		}
	})

	t.Run("game-start by host reaches the room", func(t *testing.T) {
		send(ctl, "H", `{"type":"game-start","room":"g"}`)
		for name, conn := range map[string]*fakeConn{"H": h, "B": b, "C": c} {
			if got := conn.last(t); got["type"] != EventStart {
				t.Errorf("%s got %v, want start", name, got)
			}
		}
	})

	t.Run("is-my-turn answers the holder only", func(t *testing.T) {
		before := b.count()
		send(ctl, "B", `{"type":"is-my-turn","room":"g"}`)
		if b.count() != before {
			t.Error("non-holder got a your-turn reply")
		}
		send(ctl, "H", `{"type":"is-my-turn","room":"g"}`)
		got := h.last(t)
		if got["type"] != EventYourTurn || got["player"] != "H" {
			t.Errorf("reply = %v, want your-turn for H", got)
		}
	})

	t.Run("pass-turn advances and notifies the room", func(t *testing.T) {
		send(ctl, "H", `{"type":"pass-turn","room":"g"}`)
		for name, conn := range map[string]*fakeConn{"H": h, "B": b, "C": c} {
			got := conn.last(t)
			if got["type"] != EventNextTurn || got["player"] != "B" {
				t.Errorf("%s got %v, want next-turn B", name, got)
			}
		}
	})

	t.Run("out-of-turn pass emits nothing", func(t *testing.T) {
		before := h.count()
		send(ctl, "C", `{"type":"pass-turn","room":"g"}`)
		if h.count() != before {
			t.Error("ignored pass reached the room")
		}
	})

	t.Run("win by the holder announces exactly once", func(t *testing.T) {
		before := c.count()
		send(ctl, "B", `{"type":"win","room":"g"}`)
		got := c.last(t)
		if got["type"] != EventWinner || got["player"] != "B" {
			t.Errorf("got %v, want winner B", got)
		}
		if c.count() != before+1 {
			t.Errorf("winner frames = %d, want 1", c.count()-before)
		}
	})

	t.Run("win out of turn emits nothing", func(t *testing.T) {
		before := c.count()
		send(ctl, "C", `{"type":"win","room":"g"}`)
		if c.count() != before {
			t.Error("ignored win reached the room")
		}
	})
}

func TestSignal_Dispatch(t *testing.T) {
	ctl := newTestController()
	a := connect(ctl, "A")

	t.Run("unknown event type drops silently", func(t *testing.T) {
		send(ctl, "A", `{"type":"no-such-event"}`)
		if a.count() != 0 {
			t.Error("unknown event produced a reply")
		}
	})

	t.Run("malformed json drops silently", func(t *testing.T) {
		send(ctl, "A", `{"type":`)
		if a.count() != 0 {
			t.Error("bad frame produced a reply")
		}
	})
}
