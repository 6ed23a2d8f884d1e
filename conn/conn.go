// Package conn implements the connection multiplexer: the writer/reader task pair, the health
// checker, and the run supervisor that joins them (spec §4.F-I, §5). Conn is this library's
// caller-facing surface (spec §6's run/exec/receive/cancel/reset_stream) — it lives in its own
// package, rather than alongside Request/Adapter/Node at the module root, because it is built on
// concrete root-package types (*resp3.Parser, *resp3.ReadWriter, resp3.Request) and the root
// package must not import back into whatever imports it.
package conn

import (
	"context"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/rdb3/resp3"
	"github.com/rdb3/resp3/internal/queue"
)

// queueEntry is a local alias for queue.Entry, used throughout this package to keep signatures
// terse.
type queueEntry = queue.Entry

// Status is the connection's coarse lifecycle state, per spec §3's Connection state.
type Status int32

const (
	StatusDisconnected Status = iota
	StatusConnected
	StatusDraining
	StatusDead
)

func (s Status) String() string {
	switch s {
	case StatusDisconnected:
		return "disconnected"
	case StatusConnected:
		return "connected"
	case StatusDraining:
		return "draining"
	case StatusDead:
		return "dead"
	default:
		return "unknown"
	}
}

// PushAdapter is the sink a caller supplies to Receive for draining the push channel.
type PushAdapter func(nodes []resp3.Node) error

// Conn is the single-connection multiplexer: one request queue shared by the writer and reader
// tasks, a bounded push channel, and the health-check bookkeeping. A Conn is reusable across runs
// via ResetStream (spec §6), but Run itself must not be called concurrently with another Run on
// the same Conn.
type Conn struct {
	log *zap.Logger
	now func() time.Time

	mu     sync.Mutex
	stream io.ReadWriteCloser
	rw     *resp3.ReadWriter
	parser *resp3.Parser

	q          *queue.Queue
	writerWake chan struct{}
	pushCh     chan []resp3.Node

	status     int32 // atomic Status
	lastReadAt int64 // atomic UnixNano

	runCancel context.CancelFunc
}

// New returns a Conn with no stream attached; call ResetStream before Run.
func New(log *zap.Logger, pushBuffer int) *Conn {
	if log == nil {
		log = zap.NewNop()
	}
	if pushBuffer < 1 {
		pushBuffer = 1
	}
	return &Conn{
		log:        log,
		now:        time.Now,
		q:          queue.New(),
		writerWake: make(chan struct{}, 1),
		pushCh:     make(chan []resp3.Node, pushBuffer),
		status:     int32(StatusDisconnected),
	}
}

// ResetStream replaces the underlying byte stream with a fresh one, for use by an external
// reconnect loop after a prior Run has completed (spec §6's connection::reset_stream).
func (c *Conn) ResetStream(stream io.ReadWriteCloser) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stream = stream
	if c.rw == nil {
		c.rw = resp3.NewReadWriter(stream)
	} else {
		c.rw.Reset(stream)
	}
	if c.parser == nil {
		c.parser = resp3.NewParser(&c.rw.Reader)
	} else {
		c.parser.Reset(&c.rw.Reader)
	}
	atomic.StoreInt32(&c.status, int32(StatusDisconnected))
}

// Status reports the connection's current lifecycle state.
func (c *Conn) Status() Status { return Status(atomic.LoadInt32(&c.status)) }

func (c *Conn) setStatus(s Status) { atomic.StoreInt32(&c.status, int32(s)) }

func (c *Conn) markRead() { atomic.StoreInt64(&c.lastReadAt, c.now().UnixNano()) }

func (c *Conn) sinceLastRead() time.Duration {
	last := atomic.LoadInt64(&c.lastReadAt)
	if last == 0 {
		return 0
	}
	return c.now().Sub(time.Unix(0, last))
}

func (c *Conn) wake() {
	select {
	case c.writerWake <- struct{}{}:
	default:
	}
}

// Exec submits req, waits for its adapter to finish consuming every expected top-level response
// (or a request-scoped failure), and returns that error, per spec §6's connection::exec.
func (c *Conn) Exec(req *resp3.Request, adapter resp3.Adapter) error {
	return c.ExecContext(context.Background(), req, adapter)
}

// ExecContext behaves like Exec but additionally cancels req if ctx is done before a reply
// arrives and req is still staged (not yet written). A request already written when ctx expires
// is left to run its course, matching spec §5's "cancelling an already-written entry is a
// no-op" — ExecContext still waits for that case rather than abandoning the caller early.
func (c *Conn) ExecContext(ctx context.Context, req *resp3.Request, adapter resp3.Adapter) error {
	if req.Size() == 0 {
		return resp3.ErrIncompatibleSize
	}
	if t, ok := adapter.(*resp3.Tuple); ok && t.SupportedResponses() != req.Size() {
		return resp3.ErrIncompatibleSize
	}
	if req.Config.CancelIfNotConnected && c.Status() != StatusConnected {
		return resp3.ErrNotConnected
	}

	e := queue.NewEntry(req.Payload(), req.Size(), adapter, req.Config)
	if !req.ExpectsReply() {
		// Subscribe-shaped requests (spec §4.E) expect no direct reply: the writer still writes
		// them, but the reader never decrements their Remaining, so Exec would hang waiting for a
		// response that never comes. Mark them already at zero so the writer's completion (or a
		// write-time failure) is what Exec waits on instead.
		e.Remaining = 0
	}
	c.q.Submit(e)
	c.wake()

	done := make(chan error, 1)
	go func() { done <- e.Wait() }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		if c.q.CancelStaged(e) {
			return resp3.ErrCancelled
		}
		return <-done
	}
}

// cancelEntry attempts to cancel a staged (not yet written) entry. It reports whether the entry was
// actually staged; per spec §5, cancelling an already-written entry is ignored.
func (c *Conn) cancelEntry(e *queue.Entry) bool { return c.q.CancelStaged(e) }
