// Package retry calls a function again and again, waiting between calls,
// until it succeeds or gives up.
package retry

import (
	"context"
	"errors"
	"time"
)

// ErrRetry is returned by a retried function to ask for one more call.
var ErrRetry = errors.New("retry")

// Backoff blocks until the next call should be made.
//
// When ctx is done, it returns ctx.Err() and no more calls are made.
type Backoff func(context.Context) error

// StaticBackoff waits for a fixed interval for each time.
func StaticBackoff(interval time.Duration) Backoff {
	return ExponentialBackoff(interval, 1)
}

// ExponentialBackoff waits for `initial * r^N` on the N-th call (0-origin).
func ExponentialBackoff(initial time.Duration, r float64) Backoff {
	interval := initial
	return func(ctx context.Context) error {
		timer := time.NewTimer(interval)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
			interval = time.Duration(float64(interval) * r)
			return nil
		}
	}
}

// Blocking calls f until it returns nil or an error other than ErrRetry.
//
// f is called once before the first backoff.
// When the backoff gives up, Blocking returns the error of the backoff.
func Blocking[T any](ctx context.Context, b Backoff, f func() (T, error)) (T, error) {
	for {
		last, err := f()
		if !errors.Is(err, ErrRetry) {
			return last, err
		}
		if err := b(ctx); err != nil {
			return last, err
		}
	}
}

// Limited stops the backoff b after `times` waits with ErrGaveUp.
func Limited(times int, b Backoff) Backoff {
	waited := 0
	return func(ctx context.Context) error {
		if times <= waited {
			return ErrGaveUp
		}
		waited += 1
		return b(ctx)
	}
}

var ErrGaveUp = errors.New("gave up retrying")
