// SPDX-License-Identifier: MIT
package execx

import (
	"context"
	"time"
)

// RetryPolicy bounds repeated attempts of a failing invocation. The zero
// value runs exactly one attempt with no delay.
type RetryPolicy struct {
	// MaxAttempts is the total number of attempts. Values below 1 mean one.
	MaxAttempts int
	// Backoff is the delay before the second attempt, doubling after each
	// subsequent failure. Zero retries immediately.
	Backoff time.Duration
}

// Do runs fn until it succeeds, attempts are exhausted, or ctx ends.
// It returns the number of attempts made and the last error.
func (p RetryPolicy) Do(ctx context.Context, fn func(context.Context) error) (int, error) {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	delay := p.Backoff
	var err error
	for i := 1; i <= attempts; i++ {
		if i > 1 && delay > 0 {
			t := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				t.Stop()
				return i - 1, err
			case <-t.C:
			}
			delay *= 2
		}
		if err = fn(ctx); err == nil {
			return i, nil
		}
		if ctx.Err() != nil {
			return i, err
		}
	}
	return attempts, err
}
