package room

import (
	"sync"
	"time"
)

// inboxScheduler turns ticker fires into tick messages so countdown ticks run
// on the room goroutine, serialized with joins, leaves and readiness changes.
type inboxScheduler struct{ r *Room }

func (s inboxScheduler) Every(d time.Duration, fn func()) func() {
	t := time.NewTicker(d)
	stop := make(chan struct{})
	go func() {
		defer t.Stop()
		for {
			select {
			case <-t.C:
				select {
				case s.r.inbox <- tick{fn: fn}:
				case <-stop:
					return
				case <-s.r.ctx.Done():
					return
				}
			case <-stop:
				return
			case <-s.r.ctx.Done():
				return
			}
		}
	}()

	var once sync.Once
	return func() { once.Do(func() { close(stop) }) }
}
