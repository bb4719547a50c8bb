package backend

import (
	"context"
	"sync"
	"time"
)

// throttle spaces successive change reports at least interval apart.
type throttle struct {
	interval time.Duration

	mu   sync.Mutex
	last time.Time
}

func newThrottle(interval time.Duration) *throttle {
	return &throttle{interval: max(interval, 0)}
}

// wait blocks until the next report may go out. It returns false when ctx
// ends first.
func (t *throttle) wait(ctx context.Context) bool {
	if t == nil || t.interval == 0 {
		return ctx.Err() == nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if delay := t.interval - time.Since(t.last); delay > 0 {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return false
		case <-timer.C:
		}
	}
	t.last = time.Now()
	return true
}
