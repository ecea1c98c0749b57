package types

import "encoding/json"

const (
	CmdReady   = "ready"
	CmdUnready = "unready"
)

// ClientMessage is a command a websocket client sends in-band.
type ClientMessage struct {
	Type string `json:"type"` // "ready" | "unready"
}

// ServerMessage wraps one room event, or an error, for websocket clients.
type ServerMessage struct {
	Event string          `json:"event,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
	Error string          `json:"error,omitempty"`
}
