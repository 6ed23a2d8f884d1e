package conn

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/rdb3/resp3"
)

// healthTask implements spec §4.H: tick at pingInterval, fail the connection with ErrIdleTimeout
// if nothing has been read for 2x that interval, otherwise keep the connection warm with an
// internally-submitted PING.
func (c *Conn) healthTask(ctx context.Context, pingInterval time.Duration) error {
	if pingInterval <= 0 {
		pingInterval = time.Second
	}
	log := c.log.Named("health")

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		if d := c.sinceLastRead(); d > 2*pingInterval {
			log.Warn("idle timeout", zap.Duration("since_last_read", d))
			c.setStatus(StatusDead)
			return resp3.ErrIdleTimeout
		}

		req := resp3.NewRequest()
		req.Config.Coalesce = true
		req.Config.CancelOnConnectionLost = true
		if err := req.Push("PING"); err != nil {
			return err
		}

		go func() {
			if err := c.Exec(req, resp3.Ignore{}); err != nil {
				log.Debug("health ping did not complete", zap.Error(err))
			}
		}()
	}
}
