package signal

// Inbound event names. EventReceiveAction keeps the historical
// misspelling; deployed clients send it as-is.
const (
	EventCreateRoom    = "create-room"
	EventJoinRoom      = "join-room"
	EventLeaveRoom     = "leave-room"
	EventCloseRoom     = "close-room"
	EventBroadcast     = "broadcast"
	EventSendToRoom    = "send-to-room"
	EventReceiveAction = "recive-action"
	EventGameStart     = "game-start"
	EventIsMyTurn      = "is-my-turn"
	EventPassTurn      = "pass-turn"
	EventWin           = "win"
)

// Outbound event names.
const (
	EventPublished   = "published"
	EventRoomInfo    = "room-info"
	EventRoomCreated = "room-created"
	EventRoomClosed  = "room-closed"
	EventStart       = "start"
	EventYourTurn    = "your-turn"
	EventNextTurn    = "next-turn"
	EventWinner      = "winner"
	EventError       = "error"
)

// roomPayload covers every inbound event whose data is just a room name.
type roomPayload struct {
	Type string `json:"type"`
	Room string `json:"room"`
}

// publishPayload is the broadcast / send-to-room message body.
type publishPayload struct {
	Type    string `json:"type"`
	Sender  string `json:"sender"`
	Message string `json:"message"`
	Room    string `json:"room,omitempty"`
}

type ackPayload struct {
	Type string `json:"type"`
	Room string `json:"room"`
	OK   bool   `json:"ok"`
}

type roomInfoPayload struct {
	Type  string `json:"type"`
	Room  string `json:"room"`
	Count int    `json:"count"`
}

type turnPayload struct {
	Type   string `json:"type"`
	Room   string `json:"room,omitempty"`
	Player string `json:"player"`
}

type errorPayload struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}
