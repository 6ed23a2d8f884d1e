package conn

import (
	"context"

	"go.uber.org/zap"
)

// writerTask implements spec §4.F: drain the coalesce-fusable prefix of staged entries to the
// socket whenever writerWake fires, or exit on cancellation/write failure. The wake is set by
// Exec (a new entry staged), by the reader on every completed response (to let a paused writer
// resume once the head that was blocking the FIFO clears), and by the health checker.
func (c *Conn) writerTask(ctx context.Context) error {
	log := c.log.Named("writer")
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-c.writerWake:
		}

		for {
			if c.Status() != StatusConnected {
				return nil
			}

			prefix := c.q.CoalescePrefix()
			if len(prefix) == 0 {
				break
			}

			if err := c.writeEntries(prefix); err != nil {
				log.Error("write failed", zap.Error(err))
				c.setStatus(StatusDead)
				c.q.FailStaged(prefix, err)
				return err
			}

			c.q.MarkWritten(prefix)
			c.q.CompleteNoReplyPrefix()

			select {
			case <-ctx.Done():
				return nil
			default:
			}
		}
	}
}

// writeEntries concatenates the already-serialized payloads of entries into one Write call,
// matching spec §4.E's coalescing contract ("writes the concatenation of the payloads").
func (c *Conn) writeEntries(entries []*queueEntry) error {
	total := 0
	for _, e := range entries {
		total += len(e.Payload)
	}

	buf := make([]byte, 0, total)
	for _, e := range entries {
		buf = append(buf, e.Payload...)
	}

	c.mu.Lock()
	stream := c.stream
	c.mu.Unlock()

	_, err := stream.Write(buf)
	return err
}
