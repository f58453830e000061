// Package wallclock puts time behind an interface so the loop's fixed delays
// can be driven by tests.
package wallclock

import (
	"context"
	"time"
)

type (
	// Clock abstracts the subset of package time the loop needs.
	Clock interface {
		Now() time.Time
		// Sleep blocks for d or until ctx is done, returning ctx.Err() in
		// the latter case.
		Sleep(ctx context.Context, d time.Duration) error
	}

	wallClock struct{}
)

// Now indirects time.Now.
func (wallClock) Now() time.Time {
	return time.Now()
}

// Sleep waits on a timer or the context.
func (wallClock) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Instance is the real clock. Tests pass their own Clock instead of
// replacing it.
var Instance Clock = wallClock{}
