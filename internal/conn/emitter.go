package conn

import (
	"sync"

	"github.com/SkillGG/bossDungeon/pkg/types"
)

type Listener func(payload any)

type entry struct {
	fn   Listener
	once bool
}

// Emitter dispatches named events to listeners synchronously, in
// registration order.
type Emitter struct {
	mu        sync.Mutex
	listeners map[types.Event][]*entry
}

func NewEmitter() *Emitter {
	return &Emitter{listeners: make(map[types.Event][]*entry)}
}

// On registers a persistent listener and returns a func that removes it.
func (e *Emitter) On(ev types.Event, fn Listener) (off func()) {
	return e.add(ev, &entry{fn: fn})
}

// Once registers a listener that is removed before its first invocation.
func (e *Emitter) Once(ev types.Event, fn Listener) (off func()) {
	return e.add(ev, &entry{fn: fn, once: true})
}

func (e *Emitter) add(ev types.Event, en *entry) func() {
	e.mu.Lock()
	e.listeners[ev] = append(e.listeners[ev], en)
	e.mu.Unlock()
	return func() { e.remove(ev, en) }
}

func (e *Emitter) remove(ev types.Event, en *entry) {
	e.mu.Lock()
	defer e.mu.Unlock()
	list := e.listeners[ev]
	for i, l := range list {
		if l == en {
			e.listeners[ev] = append(list[:i:i], list[i+1:]...)
			return
		}
	}
}

func (e *Emitter) Emit(ev types.Event, payload any) {
	e.mu.Lock()
	list := e.listeners[ev]
	fire := make([]*entry, len(list))
	copy(fire, list)
	kept := list[:0:0]
	for _, l := range list {
		if !l.once {
			kept = append(kept, l)
		}
	}
	e.listeners[ev] = kept
	e.mu.Unlock()

	for _, l := range fire {
		l.fn(payload)
	}
}

func (e *Emitter) RemoveAll() {
	e.mu.Lock()
	clear(e.listeners)
	e.mu.Unlock()
}
