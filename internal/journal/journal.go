// Package journal records how each room phase ended. It is an audit trail
// only; room state is never restored from it.
package journal

import (
	"context"
	"time"
)

type Outcome string

const (
	OutcomeCompleted Outcome = "completed"
	OutcomeAborted   Outcome = "aborted"
)

type Entry struct {
	Phase   string
	Outcome Outcome
	Players []string
	Detail  string
	At      time.Time
}

type Recorder interface {
	Record(ctx context.Context, e Entry) error
}

// Nop discards every entry.
type Nop struct{}

func (Nop) Record(context.Context, Entry) error { return nil }
