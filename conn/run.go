package conn

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/multierr"

	"github.com/rdb3/resp3"
	"github.com/rdb3/resp3/internal/queue"
)

// Run is the entry operation of spec §4.I: perform the RESP3 handshake, spawn the writer/reader/
// health tasks as siblings, wait for the first to finish, cancel the others (closing the stream),
// and return the first task's error joined via multierr with any error the other two report while
// stopping, plus the number of queued entries cancelled as a result.
func (c *Conn) Run(ctx context.Context, endpoint Endpoint, timeouts Timeouts) (err error, cancelled int) {
	c.mu.Lock()
	if c.stream == nil {
		c.mu.Unlock()
		return resp3.ErrNotConnected, 0
	}
	c.mu.Unlock()

	hctx, hcancel := context.WithTimeout(ctx, timeouts.RESP3HandshakeTimeout)
	defer hcancel()
	if err := c.handshake(hctx, endpoint); err != nil {
		return err, 0
	}

	runCtx, cancel := context.WithCancel(ctx)
	c.mu.Lock()
	c.runCancel = cancel
	c.mu.Unlock()
	defer cancel()

	c.setStatus(StatusConnected)
	c.markRead()

	type result struct {
		err error
	}
	done := make(chan result, 3)

	var wg sync.WaitGroup
	wg.Add(3)
	go func() { defer wg.Done(); done <- result{c.writerTask(runCtx)} }()
	go func() { defer wg.Done(); done <- result{c.readerTask(runCtx)} }()
	go func() { defer wg.Done(); done <- result{c.healthTask(runCtx, timeouts.PingInterval)} }()

	first := <-done
	cancel()
	// Cancelling ctx cannot interrupt a read already blocked on the stream; closing it does.
	c.mu.Lock()
	_ = c.stream.Close()
	c.mu.Unlock()

	var joined error
	if first.err != nil {
		joined = first.err
	}
	for i := 0; i < 2; i++ {
		r := <-done
		if r.err != nil {
			joined = multierr.Append(joined, r.err)
		}
	}
	wg.Wait()

	c.setStatus(StatusDead)
	// Per spec §3, an entry whose CancelOnConnectionLost is false waits for reconnection instead
	// of failing immediately; per spec §5, a written entry with Retry set likewise stays queued so
	// a reconnecting run can resend it. Only entries for which neither escape hatch applies are
	// force-failed here; RetainForReconnect also resets every surviving entry back to staged so the
	// next Run over this Conn rewrites it instead of leaving it stuck waiting on a dead socket.
	cancelled = c.q.RetainForReconnect(resp3.ErrCancelled, func(e *queueEntry) bool {
		return !e.CancelOnConnectionLost || e.Retry
	})

	return joined, cancelled
}

func firstNonNil(errs ...error) error {
	for _, e := range errs {
		if e != nil {
			return e
		}
	}
	return nil
}

// handshake sends HELLO 3 (plus AUTH if credentials are present) and verifies the negotiated
// protocol version and, if Endpoint.Role is set, the server's asserted role, per spec §6.
func (c *Conn) handshake(ctx context.Context, endpoint Endpoint) error {
	c.mu.Lock()
	rw := c.rw
	c.mu.Unlock()

	deadline, ok := ctx.Deadline()
	if ok {
		if dl, ok := c.stream.(interface{ SetDeadline(time.Time) error }); ok {
			_ = dl.SetDeadline(deadline)
			defer dl.SetDeadline(time.Time{})
		}
	}

	req := resp3.NewRequest()
	if endpoint.Username != "" || endpoint.Password != "" {
		if err := req.Push("HELLO", "3", "AUTH", endpoint.Username, endpoint.Password); err != nil {
			return err
		}
	} else {
		if err := req.Push("HELLO", "3"); err != nil {
			return err
		}
	}

	if _, err := c.stream.Write(req.Payload()); err != nil {
		return fmt.Errorf("%w: %s", resp3.ErrHandshakeTimeout, err)
	}

	var hello map[string]string
	adapter := resp3.NewMap(&hello)
	if err := resp3.NewParser(&rw.Reader).Parse(adapter); err != nil {
		return fmt.Errorf("%w: %s", resp3.ErrHandshakeFailed, err)
	}
	if hello["proto"] != "" && hello["proto"] != "3" {
		return resp3.ErrHandshakeFailed
	}

	if endpoint.Role != "" {
		roleReq := resp3.NewRequest()
		if err := roleReq.Push("ROLE"); err != nil {
			return err
		}
		if _, err := c.stream.Write(roleReq.Payload()); err != nil {
			return fmt.Errorf("%w: %s", resp3.ErrHandshakeTimeout, err)
		}
		var nodes []resp3.Node
		dump := resp3.NodeDump{Records: &nodes}
		if err := resp3.NewParser(&rw.Reader).Parse(dump); err != nil {
			return fmt.Errorf("%w: %s", resp3.ErrHandshakeFailed, err)
		}
		if len(nodes) < 2 || string(nodes[1].Payload) != endpoint.Role {
			return resp3.ErrUnexpectedServerRole
		}
	}

	return nil
}

// Cancel implements spec §5's per-category cancellation: "run" stops the whole supervisor,
// "exec" cancels every still-staged entry, "receive" has nothing to cancel (Receive already
// respects ctx.Done), "all" does both of the first two. It returns the number of entries
// cancelled as a result (0 for "run"/"receive", since the run's own RetainForReconnect drain
// reports its count through Run's own return value).
func (c *Conn) Cancel(category string) int {
	switch category {
	case "run":
		c.mu.Lock()
		cancel := c.runCancel
		c.mu.Unlock()
		if cancel != nil {
			cancel()
		}
		return 0
	case "exec":
		return c.q.DrainCancelFiltered(resp3.ErrCancelled, func(e *queueEntry) bool {
			return e.State != queue.StateStaged
		})
	case "receive":
		return 0
	case "all":
		n := c.Cancel("exec")
		c.Cancel("run")
		return n
	default:
		return 0
	}
}
