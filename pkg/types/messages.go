package types

// Server -> Client (pushed over SSE or WebSocket)
// join / leave / ready / unready:
//   playerid: string
//
// roomData:
//   playersIn: { [playerid]: { ready: boolean } }
//
// initCountdown:
//   type: TimerType
//   time: number   // starting seconds, no tick consumed yet
//   ms: number     // tick period
//
// countdown:
//   type: TimerType
//   time: number
//
// endCountdown:
//   type: TimerType
//   time: 0
//   data: TimerData
//
// terminateCountdown:
//   type: TimerType
//   time: number
//   reason?: { type: "disconnect", playerid } | { type: "noop" }
//
// TimerType: "gameLaunch" | "pickBoss" | { type: "deckSelection", deck: { deckStr } }
// TimerData: { type: "gameLaunch" } | { type: "pickBoss", boss: { cardStr } } | { type: "deckSelection" }

// Client -> Server
// POST /lobby/ready/{playerid}, POST /lobby/unready/{playerid}
// or over WebSocket: { type: "ready" | "unready" }

type Event string

const (
	EventJoin               Event = "join"
	EventLeave              Event = "leave"
	EventReady              Event = "ready"
	EventUnready            Event = "unready"
	EventRoomData           Event = "roomData"
	EventInitCountdown      Event = "initCountdown"
	EventCountdown          Event = "countdown"
	EventEndCountdown       Event = "endCountdown"
	EventTerminateCountdown Event = "terminateCountdown"
)

// AllEvents lists every event a client can receive.
func AllEvents() []Event {
	return []Event{
		EventJoin, EventLeave, EventReady, EventUnready, EventRoomData,
		EventInitCountdown, EventCountdown, EventEndCountdown, EventTerminateCountdown,
	}
}

type PlayerID struct {
	PlayerID string `json:"playerid"`
}

type PlayerLobbyData struct {
	Ready bool `json:"ready"`
}

type RoomData struct {
	PlayersIn map[string]PlayerLobbyData `json:"playersIn"`
}

type InitCountdown struct {
	Type TimerType `json:"type"`
	Time int       `json:"time"`
	Ms   int64     `json:"ms"`
}

type CountdownTick struct {
	Type TimerType `json:"type"`
	Time int       `json:"time"`
}

type EndCountdown struct {
	Type TimerType `json:"type"`
	Time int       `json:"time"`
	Data TimerData `json:"data"`
}

type TerminateCountdown struct {
	Type   TimerType          `json:"type"`
	Time   int                `json:"time"`
	Reason *TerminationReason `json:"reason,omitempty"`
}
