package crawl

import (
	"context"
	"time"
)

// sleeper abstracts the inter-request pacing delays so tests can run
// without real waits.
type sleeper interface {
	Pause(ctx context.Context, delay time.Duration)
}

type timerSleeper struct{}

func (timerSleeper) Pause(ctx context.Context, delay time.Duration) {
	if delay <= 0 {
		return
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
