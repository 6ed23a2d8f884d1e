// Package queue implements the FIFO request queue described in spec §3/§4.E: an ordered list of
// in-flight requests together with a small per-entry state machine (staged → written → done).
package queue

import "github.com/rdb3/resp3"

// State is the per-entry lifecycle position, per spec §3's Queued entry.
type State int32

const (
	// StateStaged entries have not yet been written to the wire.
	StateStaged State = iota
	// StateWritten entries are on the wire, awaiting their response(s).
	StateWritten
	// StateDone entries have completed (success or terminal error) and are no longer in the queue.
	StateDone
)

func (s State) String() string {
	switch s {
	case StateStaged:
		return "staged"
	case StateWritten:
		return "written"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}

// Entry is one queued request: its serialized payload, its adapter, and the bookkeeping needed to
// route incoming responses and complete the caller.
type Entry struct {
	Payload   []byte
	Remaining int // top-level responses still expected before this entry is done
	Adapter   resp3.Adapter

	Coalesce               bool
	CancelOnConnectionLost bool
	Retry                  bool

	State State

	done chan error
}

// NewEntry builds a staged Entry for one Request's payload and command count.
func NewEntry(payload []byte, commands int, adapter resp3.Adapter, cfg resp3.Config) *Entry {
	return &Entry{
		Payload:                payload,
		Remaining:              commands,
		Adapter:                adapter,
		Coalesce:               cfg.Coalesce,
		CancelOnConnectionLost: cfg.CancelOnConnectionLost,
		Retry:                  cfg.Retry,
		State:                  StateStaged,
		done:                   make(chan error, 1),
	}
}

// Wait blocks until the entry completes and returns its terminal error (nil on success).
func (e *Entry) Wait() error { return <-e.done }

// Complete marks the entry done and unblocks any Wait call. Complete is a no-op if the entry is
// already done, since a written entry's completion must be idempotent against a racing cancel
// (spec §8 invariant 6).
func (e *Entry) Complete(err error) {
	if e.State == StateDone {
		return
	}
	e.State = StateDone
	e.done <- err
}
