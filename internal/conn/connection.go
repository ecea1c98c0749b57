package conn

import (
	"sync/atomic"

	"github.com/SkillGG/bossDungeon/pkg/types"
	"github.com/google/uuid"
)

// Connection is one client's push connection as seen by the room. Closing is
// one-way; a reconnecting client gets a new Connection.
type Connection struct {
	id       string
	playerID string
	events   *Emitter
	closed   atomic.Bool
}

func New(playerID string) *Connection {
	return &Connection{
		id:       uuid.NewString(),
		playerID: playerID,
		events:   NewEmitter(),
	}
}

func (c *Connection) ID() string       { return c.id }
func (c *Connection) PlayerID() string { return c.playerID }

func (c *Connection) On(ev types.Event, fn Listener) func()   { return c.events.On(ev, fn) }
func (c *Connection) Once(ev types.Event, fn Listener) func() { return c.events.Once(ev, fn) }

// Emit delivers to listeners even after Close; callers filter with Open.
func (c *Connection) Emit(ev types.Event, payload any) { c.events.Emit(ev, payload) }

func (c *Connection) Close()       { c.closed.Store(true) }
func (c *Connection) Closed() bool { return c.closed.Load() }

// Open is a keep predicate for EmitToAll.
func Open(c *Connection) bool { return !c.Closed() }

// EmitToAll returns a broadcaster over conns. keep is evaluated on every
// broadcast; nil keeps everything.
func EmitToAll(conns []*Connection, keep func(*Connection) bool) func(ev types.Event, payload any) {
	return func(ev types.Event, payload any) {
		for _, c := range conns {
			if keep == nil || keep(c) {
				c.Emit(ev, payload)
			}
		}
	}
}
