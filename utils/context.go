package utils

import (
	"context"
	"time"
)

// ContextSleep blocks for the given duration or until ctx is cancelled,
// whichever comes first. It returns nil if the context was cancelled.
func ContextSleep(ctx context.Context, d time.Duration) *time.Time {
	timer := time.NewTimer(d)
	select {
	case <-ctx.Done():
		timer.Stop()
		return nil
	case t := <-timer.C:
		return &t
	}
}
