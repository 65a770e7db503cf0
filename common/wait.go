package common

import (
	"context"
	"errors"
	"time"
)

var ErrWaitTimeout = errors.New("wait timeout reached")

// WaitForValue calls fetch every tick until it returns a non-nil value or an error.
// A zero timeout means the wait is bounded only by ctx.
func WaitForValue[T any](
	ctx context.Context,
	timeout time.Duration,
	tick time.Duration,
	fetch func(ctx context.Context) (*T, error),
) (*T, error) {
	parent := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		value, err := fetch(ctx)
		if err != nil || value != nil {
			return value, err
		}

		select {
		case <-ctx.Done():
			// The caller's own deadline is reported as is.
			if timeout > 0 && parent.Err() == nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return nil, ErrWaitTimeout
			}
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}
