package conn

import (
	"encoding/json"
	"sync"

	"github.com/SkillGG/bossDungeon/pkg/types"
	"go.uber.org/zap"
)

// Frame is one encoded event ready to be written by a transport.
type Frame struct {
	Event types.Event
	Data  json.RawMessage
}

// Outbox bridges a Connection to a transport writer goroutine. Every wire
// event is encoded into a bounded channel; a client that falls behind is
// dropped by closing its connection.
type Outbox struct {
	mu     sync.Mutex
	conn   *Connection
	frames chan Frame
	offs   []func()
	closed bool
	log    *zap.Logger
}

func Attach(c *Connection, size int, log *zap.Logger) *Outbox {
	if log == nil {
		log = zap.NewNop()
	}
	o := &Outbox{
		conn:   c,
		frames: make(chan Frame, size),
		log:    log.With(zap.String("player", c.PlayerID()), zap.String("conn", c.ID())),
	}
	for _, ev := range types.AllEvents() {
		o.offs = append(o.offs, c.On(ev, func(payload any) { o.push(ev, payload) }))
	}
	return o
}

// Frames is closed once the outbox is closed.
func (o *Outbox) Frames() <-chan Frame { return o.frames }

func (o *Outbox) push(ev types.Event, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		o.log.Error("encode event", zap.String("event", string(ev)), zap.Error(err))
		return
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return
	}
	select {
	case o.frames <- Frame{Event: ev, Data: data}:
	default:
		// Client is slow/full - drop them.
		o.log.Warn("outbox full, dropping client", zap.String("event", string(ev)))
		o.conn.Close()
		o.closeLocked()
	}
}

func (o *Outbox) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.closeLocked()
}

func (o *Outbox) closeLocked() {
	if o.closed {
		return
	}
	o.closed = true
	close(o.frames)
	for _, off := range o.offs {
		// off takes the emitter lock, never ours.
		off()
	}
}
