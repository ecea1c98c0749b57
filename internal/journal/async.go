package journal

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

var (
	ErrJournalFull   = errors.New("journal queue full")
	ErrJournalClosed = errors.New("journal closed")
)

// Async hands entries to a background writer so Record never blocks the
// caller. Entries that do not fit in the queue are dropped.
type Async struct {
	next    Recorder
	entries chan Entry
	quit    chan struct{}
	done    chan struct{}
	timeout time.Duration
	log     *zap.Logger
	once    sync.Once
}

func NewAsync(next Recorder, size int, log *zap.Logger) *Async {
	if log == nil {
		log = zap.NewNop()
	}
	a := &Async{
		next:    next,
		entries: make(chan Entry, size),
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
		timeout: 5 * time.Second,
		log:     log,
	}
	go a.run()
	return a
}

func (a *Async) Record(_ context.Context, e Entry) error {
	select {
	case <-a.quit:
		return ErrJournalClosed
	default:
	}
	select {
	case a.entries <- e:
		return nil
	default:
		a.log.Warn("journal queue full, dropping entry", zap.String("phase", e.Phase))
		return ErrJournalFull
	}
}

func (a *Async) run() {
	defer close(a.done)
	for {
		select {
		case e := <-a.entries:
			a.write(e)
		case <-a.quit:
			// drain whatever was queued before Close
			for {
				select {
				case e := <-a.entries:
					a.write(e)
				default:
					return
				}
			}
		}
	}
}

func (a *Async) write(e Entry) {
	ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
	defer cancel()
	if err := a.next.Record(ctx, e); err != nil {
		a.log.Error("journal write failed", zap.String("phase", e.Phase), zap.Error(err))
	}
}

// Close stops accepting entries and waits for the queue to drain.
func (a *Async) Close(ctx context.Context) error {
	a.once.Do(func() { close(a.quit) })
	select {
	case <-a.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
