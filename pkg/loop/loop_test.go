package loop_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/opst/taskboard/pkg/loop"
	"github.com/opst/taskboard/pkg/utils/try"
)

func TestStart(t *testing.T) {
	t.Run("it repeats task until it breaks", func(t *testing.T) {
		expected := 10
		actual, err := loop.Start(context.Background(), 1, func(_ context.Context, v int) (int, loop.Next) {
			if expected <= v+1 {
				return v + 1, loop.Break(nil)
			}
			return v + 1, loop.Continue(0)
		})
		if err != nil {
			t.Fatal(err)
		}
		if actual != expected {
			t.Errorf("repeats too much/less. (actual, expected) = (%d, %d)", actual, expected)
		}
	})

	t.Run("it returns the error passed to Break", func(t *testing.T) {
		expectedErr := errors.New("break!")
		actual, err := loop.Start(context.Background(), 1, func(_ context.Context, v int) (int, loop.Next) {
			return v + 1, loop.Break(expectedErr)
		})
		if !errors.Is(err, expectedErr) {
			t.Errorf("error is unexpected one. (actual, expected) = (%v, %v) ", err, expectedErr)
		}
		if actual != 2 {
			t.Errorf("value: %d", actual)
		}
	})

	t.Run("it stops waiting when the context is done", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		before := time.Now()
		actual, err := loop.Start(ctx, 0, func(_ context.Context, v int) (int, loop.Next) {
			return v + 1, loop.Continue(time.Hour)
		})
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("expected DeadlineExceeded, but got %v", err)
		}
		if actual != 1 {
			t.Errorf("task should run once: %d", actual)
		}
		if elapsed := time.Since(before); time.Second < elapsed {
			t.Errorf("loop did not honour context: %s", elapsed)
		}
	})

	t.Run("when context has been done before starting, it does nothing", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		actual, err := loop.Start(ctx, 1, func(_ context.Context, v int) (int, loop.Next) {
			return v + 1, loop.Continue(0)
		})
		if !errors.Is(err, context.Canceled) {
			t.Fatal(err)
		}
		if actual != 1 {
			t.Errorf("loop does not honour context")
		}
	})

	t.Run("it passes deadlined context when WithTimeout is passed", func(t *testing.T) {
		timeout := 100 * time.Millisecond
		try.To(loop.Start(
			context.Background(), 1, func(ctx context.Context, v int) (int, loop.Next) {
				deadline, ok := ctx.Deadline()
				if !ok {
					t.Errorf("deadline is not set")
				} else if timeout < time.Until(deadline) {
					t.Errorf("unexpected deadline: %s", deadline)
				}
				if 3 <= v {
					return v, loop.Break(nil)
				}
				return v + 1, loop.Continue(time.Millisecond)
			},
			loop.WithTimeout(timeout),
		)).OrFatal(t)
	})

	t.Run("it passes deadline-free context without WithTimeout", func(t *testing.T) {
		try.To(loop.Start(
			context.Background(), 1, func(ctx context.Context, v int) (int, loop.Next) {
				if deadline, ok := ctx.Deadline(); ok {
					t.Errorf("deadline is set: %s", deadline)
				}
				return v, loop.Break(nil)
			},
		)).OrFatal(t)
	})
}

func TestNext_Interval(t *testing.T) {
	if d := loop.Continue(3 * time.Second).Interval(); d != 3*time.Second {
		t.Errorf("Continue: %s", d)
	}
	if d := loop.Break(nil).Interval(); d != 0 {
		t.Errorf("Break: %s", d)
	}
}
