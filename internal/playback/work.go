package playback

import (
	"context"
	"time"
)

// SleepWork returns a runnable that stands in for a task by sleeping for d.
// Cancelling ctx ends the sleep early with ctx.Err().
func SleepWork(d time.Duration) func(context.Context) error {
	return func(ctx context.Context) error {
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
			return nil
		}
	}
}
