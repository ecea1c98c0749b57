package room

import (
	"github.com/SkillGG/bossDungeon/internal/conn"
	"github.com/SkillGG/bossDungeon/pkg/types"
)

// Msg is anything the room loop accepts on its inbox. Reply channels must be
// buffered; a nil Reply means the sender does not wait.
type Msg interface{ isRoomMsg() }

type Join struct {
	PlayerID string
	Conn     *conn.Connection
	Reply    chan error
}

func (Join) isRoomMsg() {}

type Leave struct {
	PlayerID string
	Reply    chan error
}

func (Leave) isRoomMsg() {}

// Disconnect is a Leave that only applies while Conn is still the player's
// registered connection. Transports send it when their stream ends.
type Disconnect struct {
	PlayerID string
	Conn     *conn.Connection
	Reply    chan error
}

func (Disconnect) isRoomMsg() {}

type Ready struct {
	PlayerID string
	Reply    chan error
}

func (Ready) isRoomMsg() {}

type Unready struct {
	PlayerID string
	Reply    chan error
}

func (Unready) isRoomMsg() {}

type GetLobby struct {
	Reply chan types.RoomData
}

func (GetLobby) isRoomMsg() {}

type GetView struct {
	Reply chan View
}

func (GetView) isRoomMsg() {}

type Shutdown struct{}

func (Shutdown) isRoomMsg() {}

// tick carries a countdown tick onto the loop goroutine.
type tick struct{ fn func() }

func (tick) isRoomMsg() {}

func reply(ch chan error, err error) {
	if ch != nil {
		ch <- err
	}
}
