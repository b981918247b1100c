// Package poll provides a retry loop with a fixed interval and an
// overall deadline, for driving long-running upstream operations to
// completion.
package poll

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrTimeout is returned when the deadline elapses before the checked
// operation reaches a terminal state. Callers can distinguish it from an
// explicit upstream failure with errors.Is.
var ErrTimeout = errors.New("polling deadline exceeded")

// CheckFunc inspects the operation once. It returns done=true when the
// operation reached terminal success, or an error when it terminally
// failed. A (false, nil) result means keep polling.
type CheckFunc func(ctx context.Context) (done bool, err error)

// Until calls check every interval until it reports done, returns an
// error, the timeout elapses, or ctx is canceled. The first check runs
// immediately.
func Until(ctx context.Context, interval, timeout time.Duration, check CheckFunc) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		done, err := check(ctx)
		if err != nil {
			return err
		}
		if done {
			return nil
		}

		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return fmt.Errorf("%w after %s", ErrTimeout, timeout)
			}
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
