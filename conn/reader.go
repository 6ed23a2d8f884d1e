package conn

import (
	"context"
	"errors"

	"github.com/rdb3/resp3"
)

// readerTask implements spec §4.G: read frames, dispatch to the head request's adapter or the
// push channel, and keep the FIFO queue moving.
func (c *Conn) readerTask(ctx context.Context) error {
	log := c.log.Named("reader")
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		kind, err := c.peekKind()
		if err != nil {
			c.setStatus(StatusDead)
			return err
		}

		if kind == resp3.KindPush {
			nodes, err := c.readPushSubtree()
			if err != nil {
				c.setStatus(StatusDead)
				return err
			}
			c.markRead()
			select {
			case c.pushCh <- nodes:
			case <-ctx.Done():
				return nil
			}
			continue
		}

		head := c.q.Head()
		if head == nil {
			c.setStatus(StatusDead)
			log.Error("frame arrived with empty queue")
			return resp3.ErrUnsolicitedResponse
		}

		softErr := c.parser.Parse(head.Adapter)
		c.markRead()
		// A Tuple adapter (or any other multi-slot adapter) routes successive top-level responses
		// of the same entry to successive adapters; advance it now so the next Parse call, if any,
		// lands on the next slot instead of repeating this one.
		if adv, ok := head.Adapter.(interface{ Advance() }); ok {
			adv.Advance()
		}
		c.q.CompleteHead(softErr)
		c.wake() // let a writer paused behind a full coalesce window resume

		if softErr != nil {
			var adapterErr *resp3.AdapterError
			if !errors.As(softErr, &adapterErr) {
				// Not an AdapterError at all: a tokenizer/framing error slipped through Parse's
				// soft-error path. Per spec §7, parser-sourced errors are fatal to the connection.
				c.setStatus(StatusDead)
				return softErr
			}
		}
	}
}

func (c *Conn) peekKind() (resp3.Kind, error) {
	c.mu.Lock()
	rw := c.rw
	c.mu.Unlock()
	return rw.Reader.PeekKind()
}

// readPushSubtree parses one top-level push element into a NodeDump, so Receive callers get the
// raw node sequence regardless of what shape the push payload takes.
func (c *Conn) readPushSubtree() ([]resp3.Node, error) {
	var nodes []resp3.Node
	dump := resp3.NodeDump{Records: &nodes}
	if err := c.parser.Parse(dump); err != nil {
		var adapterErr *resp3.AdapterError
		if errors.As(err, &adapterErr) {
			return nodes, nil
		}
		return nil, err
	}
	return nodes, nil
}

// Receive drains one push from the channel and hands its nodes to adapter, per spec §6's
// connection::receive.
func (c *Conn) Receive(ctx context.Context, adapter PushAdapter) error {
	select {
	case nodes := <-c.pushCh:
		return adapter(nodes)
	case <-ctx.Done():
		return ctx.Err()
	}
}
