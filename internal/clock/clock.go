// Package clock holds the waiting helpers used by the periodic loops.
package clock

import (
	"context"
	"time"
)

// SleepWithContext blocks for d or until ctx is done. A non-positive d only checks ctx.
func SleepWithContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Remaining is what is left of interval after the work that began at started, measured at now.
// Loops sleep for it so that iterations start on a fixed cadence however long the work takes.
func Remaining(started time.Time, interval time.Duration, now time.Time) time.Duration {
	left := started.Add(interval).Sub(now)
	if left < 0 {
		return 0
	}
	return left
}
