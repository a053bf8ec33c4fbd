package app

import (
	"context"
	"log"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Watch polls the refresh cycle until the context is cancelled. A failed
// cycle is never retried; instead the next poll is pushed out on an
// exponential schedule, resetting to the normal interval after a success.
func (c *Controller) Watch(ctx context.Context, interval time.Duration) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = interval
	bo.MaxInterval = 8 * interval
	bo.MaxElapsedTime = 0

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("watch: shutting down")
			return
		case <-timer.C:
		}

		if err := c.Refresh(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			next := bo.NextBackOff()
			log.Printf("watch: refresh failed, next poll in %s: %v", next.Round(time.Second), err)
			timer.Reset(next)
			continue
		}

		bo.Reset()
		timer.Reset(interval)
	}
}
