// Package countdown implements the one-shot, cancelable phase timer that
// broadcasts initCountdown, countdown, endCountdown and terminateCountdown to
// its target connections.
//
// A Countdown is not safe for concurrent use. Its ticks are delivered through
// a Scheduler; owners that mutate shared state from the hooks supply a
// Scheduler that runs ticks on the owner's goroutine.
package countdown

import (
	"errors"
	"time"

	"github.com/SkillGG/bossDungeon/internal/conn"
	"github.com/SkillGG/bossDungeon/pkg/types"
	"go.uber.org/zap"
)

var ErrAlreadyStarted = errors.New("countdown already started")

type Hooks struct {
	// BeforeFinish runs after the last tick and before the completion data is
	// built. An error turns the completion into a termination.
	BeforeFinish func() error
	// AfterFinish runs only after a successful endCountdown broadcast.
	AfterFinish func()
	// OnAbort runs after the terminateCountdown broadcast.
	OnAbort func(reason *types.TerminationReason)
}

type Options struct {
	Type      types.TimerType
	Targets   []*conn.Connection
	Seconds   int
	Interval  time.Duration
	Scheduler Scheduler
	Hooks     Hooks
	Data      func() (types.TimerData, error)
	Logger    *zap.Logger
}

type Countdown struct {
	typ       types.TimerType
	targets   []*conn.Connection
	remaining int
	interval  time.Duration
	sched     Scheduler
	hooks     Hooks
	data      func() (types.TimerData, error)
	log       *zap.Logger

	started  bool
	finished bool
	stop     func()
}

func New(o Options) *Countdown {
	c := &Countdown{
		typ:       o.Type,
		targets:   o.Targets,
		remaining: max(o.Seconds, 0),
		interval:  o.Interval,
		sched:     o.Scheduler,
		hooks:     o.Hooks,
		data:      o.Data,
		log:       o.Logger,
		finished:  true,
	}
	if c.interval <= 0 {
		c.interval = time.Second
	}
	if c.sched == nil {
		c.sched = TickerScheduler{}
	}
	if c.hooks.BeforeFinish == nil {
		c.hooks.BeforeFinish = func() error { return nil }
	}
	if c.hooks.AfterFinish == nil {
		c.hooks.AfterFinish = func() {}
	}
	if c.hooks.OnAbort == nil {
		c.hooks.OnAbort = func(*types.TerminationReason) {}
	}
	if c.data == nil {
		kind := o.Type.Kind
		c.data = func() (types.TimerData, error) { return types.TimerData{Type: kind}, nil }
	}
	if c.log == nil {
		c.log = zap.NewNop()
	}
	c.log = c.log.With(zap.String("timer", o.Type.String()))
	return c
}

func (c *Countdown) Type() types.TimerType { return c.typ }
func (c *Countdown) Remaining() int        { return c.remaining }
func (c *Countdown) Finished() bool        { return c.finished }
func (c *Countdown) Running() bool         { return c.started && !c.finished }

// Start broadcasts initCountdown with the full time and begins ticking. A
// zero-second countdown completes immediately after the init broadcast.
func (c *Countdown) Start() error {
	if c.started {
		return ErrAlreadyStarted
	}
	c.started = true
	c.finished = false

	c.broadcast(types.EventInitCountdown, types.InitCountdown{
		Type: c.typ,
		Time: c.remaining,
		Ms:   c.interval.Milliseconds(),
	})
	if c.remaining <= 0 {
		c.succeed()
		return nil
	}
	c.stop = c.sched.Every(c.interval, c.tick)
	return nil
}

func (c *Countdown) tick() {
	if c.finished {
		// stale fire queued before abort/finish
		return
	}
	c.remaining--
	c.broadcast(types.EventCountdown, types.CountdownTick{Type: c.typ, Time: c.remaining})
	if c.remaining <= 0 {
		c.succeed()
	}
}

// Abort terminates a running countdown. It is a no-op once finished.
func (c *Countdown) Abort(reason *types.TerminationReason) {
	if c.finished {
		return
	}
	c.halt()
	c.log.Debug("countdown aborted", zap.Int("remaining", c.remaining), zap.Any("reason", reason))
	c.broadcast(types.EventTerminateCountdown, types.TerminateCountdown{
		Type:   c.typ,
		Time:   c.remaining,
		Reason: reason,
	})
	c.hooks.OnAbort(reason)
}

func (c *Countdown) halt() {
	c.finished = true
	if c.stop != nil {
		c.stop()
		c.stop = nil
	}
}

func (c *Countdown) succeed() {
	c.halt()
	if err := c.hooks.BeforeFinish(); err != nil {
		c.fail(err)
		return
	}
	data, err := c.data()
	if err != nil {
		c.fail(err)
		return
	}
	c.broadcast(types.EventEndCountdown, types.EndCountdown{Type: c.typ, Time: 0, Data: data})
	c.hooks.AfterFinish()
}

func (c *Countdown) fail(err error) {
	c.log.Error("countdown could not finish", zap.Error(err))
	reason := types.Noop()
	c.broadcast(types.EventTerminateCountdown, types.TerminateCountdown{
		Type:   c.typ,
		Time:   c.remaining,
		Reason: reason,
	})
	c.hooks.OnAbort(reason)
}

func (c *Countdown) broadcast(ev types.Event, payload any) {
	conn.EmitToAll(c.targets, conn.Open)(ev, payload)
}
