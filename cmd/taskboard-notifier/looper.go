package main

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/opst/taskboard/pkg/loop"
	"github.com/opst/taskboard/pkg/loop/recurring"
	"github.com/opst/taskboard/pkg/notify"
)

type LoggerOptions func(*log.Logger) *log.Logger

func byLogger(l *log.Logger, opt ...LoggerOptions) *log.Logger {
	for _, o := range opt {
		l = o(l)
	}
	return l
}

func Copied() LoggerOptions {
	return func(l *log.Logger) *log.Logger {
		return log.New(l.Writer(), l.Prefix(), l.Flags())
	}
}

func WithPrefix(pre string) LoggerOptions {
	return func(l *log.Logger) *log.Logger {
		l.SetPrefix(pre)
		return l
	}
}

// Wrapper for monitoring loop tasks
//
//	Log the start and end of each time a task is executed.
func monitor[T any](logger *log.Logger, task loop.Task[T]) loop.Task[T] {
	var counter uint64
	return func(ctx context.Context, t T) (ret T, next loop.Next) {
		counter += 1
		timestamp := time.Now()

		logger.Printf("task start: #0x%X", counter)
		defer func() {
			logger.Printf(
				"task end: #0x%X (takes %s): %s with value = %+v",
				counter, time.Since(timestamp), next, ret,
			)
			if d := next.Interval(); 0 < d {
				logger.Printf("next run at %s", time.Now().Add(d).Format(time.RFC3339))
			}
		}()

		ret, next = task(ctx, t)
		return
	}
}

// Tally of checks done by the loop.
type Tally struct {
	Checks  uint64
	Reports uint64
	Failed  uint64
}

// Checker runs an overdue check.
type Checker interface {
	CheckOverdue(ctx context.Context, now time.Time) notify.Result
}

// OverdueCheck is a loop task sending a report of overdue tasks.
//
// A sent report leaves nothing to do until the next run, so the task never
// tells the policy it is "updated". Missing settings are not errors either.
func OverdueCheck(checker Checker, now func() time.Time) recurring.Task[Tally] {
	return func(ctx context.Context, t Tally) (Tally, bool, error) {
		r := checker.CheckOverdue(ctx, now())
		t.Checks += 1

		switch {
		case r.Err == nil:
			if 0 < r.Count {
				t.Reports += 1
			}
			return t, false, nil
		case errors.Is(r.Err, notify.ErrSettingsMissing):
			return t, false, nil
		default:
			t.Failed += 1
			return t, false, r.Err
		}
	}
}

// StartOverdueLoop runs overdue checks following the policy until ctx is done,
// or the policy breaks.
func StartOverdueLoop(
	ctx context.Context,
	logger *log.Logger,
	checker Checker,
	policy recurring.Policy,
	now func() time.Time,
) (Tally, error) {
	l := byLogger(logger, Copied(), WithPrefix("[overdue loop] "))

	if d := recurring.FirstWait(policy, now()); 0 < d {
		l.Printf("first run at %s", now().Add(d).Format(time.RFC3339))
		timer := time.NewTimer(d)
		select {
		case <-ctx.Done():
			timer.Stop()
			return Tally{}, ctx.Err()
		case <-timer.C:
		}
	}

	return loop.Start(
		ctx, Tally{},
		monitor(l, OverdueCheck(checker, now).Applied(policy)),
		loop.WithTimeout(2*time.Minute),
	)
}
