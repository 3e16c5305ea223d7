// Package loop runs a task repeatedly, until it breaks or the context is done.
package loop

import (
	"context"
	"fmt"
	"time"
)

// Next tells Start what to do after a task run.
//
// The zero value equals Continue(0).
type Next struct {
	err      error
	quit     bool
	interval time.Duration
}

func (n Next) String() string {
	if n.err != nil {
		return fmt.Sprintf("[break] with error: %v", n.err)
	}
	if n.quit {
		return "[break] without error"
	}

	return fmt.Sprintf("[continue] interval: %s", n.interval)
}

// Interval returns the sleep before the next run. It is 0 for Break.
func (n Next) Interval() time.Duration {
	if n.quit {
		return 0
	}
	return n.interval
}

// continue loop after interval.
func Continue(interval time.Duration) Next {
	return Next{interval: interval}
}

// break loop. err is returned from Start.
func Break(err error) Next {
	return Next{quit: true, err: err}
}

// Task receives the value returned by its previous run (or the seed),
// and returns the next value and what to do next.
type Task[T any] func(context.Context, T) (T, Next)

// Start runs task in loop.
//
// The first run receives init. Later runs receive the value returned by the
// previous run, after sleeping the interval of Continue.
//
// Example: send overdue notifications every morning.
//
//	Start(ctx, 0, func(ctx context.Context, sent int) (int, Next) {
//		r := notifier.CheckOverdue(ctx, time.Now())
//		return sent + r.Count, Continue(untilTomorrow())
//	})
//
// Start returns the last value and the error passed to Break.
// When ctx is done, it returns ctx.Err() without waiting the interval.
func Start[T any](ctx context.Context, init T, task Task[T], options ...LoopOption) (T, error) {
	select {
	case <-ctx.Done():
		return init, ctx.Err()
	default:
	}

	value := init
	for {
		lc := &loopConfig{ctx: ctx}
		for _, opt := range options {
			lc = opt(lc)
		}

		v, n := func() (T, Next) {
			if lc.deferred != nil {
				defer lc.deferred()
			}
			return task(lc.ctx, value)
		}()

		if n.quit {
			return v, n.err
		}
		value = v

		timer := time.NewTimer(n.interval)
		select {
		case <-ctx.Done():
			// shutting down comes first.
			if !timer.Stop() {
				<-timer.C
			}
			return value, ctx.Err()
		case <-timer.C:
		}
	}
}

type loopConfig struct {
	ctx      context.Context
	deferred func()
}

type LoopOption func(*loopConfig) *loopConfig

// set timeout per run.
//
// this timeout is set on context.Context passed to task.
func WithTimeout(d time.Duration) LoopOption {
	return func(lc *loopConfig) *loopConfig {
		ctx, cancel := context.WithTimeout(lc.ctx, d)
		return &loopConfig{
			ctx: ctx,
			deferred: func() {
				if lc.deferred != nil {
					defer lc.deferred()
				}
				cancel()
			},
		}
	}
}
