// Package retry polls a readiness check a bounded number of times.
package retry

import (
	"context"
	"errors"
	"time"
)

var ErrTimeout = errors.New("retry: attempts exhausted")

// Poll calls ready immediately and then once per interval until it returns
// true, attempts extra checks have failed, or ctx ends.
func Poll(ctx context.Context, attempts int, interval time.Duration, ready func(context.Context) bool) error {
	if ready(ctx) {
		return nil
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for i := 0; i < attempts; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
		if ready(ctx) {
			return nil
		}
	}
	return ErrTimeout
}
