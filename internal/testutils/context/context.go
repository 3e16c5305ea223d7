// Package context derives contexts bound to the deadline of tests.
package context

import (
	"context"
	"testing"
	"time"
)

// Margin is the time left between the context deadline and the test deadline,
// for cleaning up.
const Margin = time.Second

// WithTest returns a context which is done Margin before the deadline of t.
//
// The context is cancelled when t finishes.
func WithTest(ctx context.Context, t *testing.T) context.Context {
	t.Helper()
	if deadline, ok := t.Deadline(); ok {
		dctx, cancel := context.WithDeadline(ctx, deadline.Add(-Margin))
		t.Cleanup(cancel)
		return dctx
	}
	dctx, cancel := context.WithCancel(ctx)
	t.Cleanup(cancel)
	return dctx
}
