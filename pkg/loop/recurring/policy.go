package recurring

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/opst/taskboard/pkg/loop"
)

// ParsePolicy parses one of
//
//	forever[:COOLDOWN]
//	daily:HH:MM
//	once
//
// The time of day of "daily" is read in loc.
func ParsePolicy(s string, loc *time.Location) (Policy, error) {
	typ, param, ok := strings.Cut(s, ":")
	switch typ {
	case "forever":
		if !ok || param == "" {
			return Forever(0), nil
		}

		period, err := time.ParseDuration(param)
		if err != nil {
			return nil, fmt.Errorf(`failed to parse: %s as "forever:COOLDOWN": %w`, s, err)
		}
		return Forever(period), nil
	case "daily":
		hh, mm, ok := strings.Cut(param, ":")
		if !ok {
			return nil, fmt.Errorf(`failed to parse: %s as "daily:HH:MM"`, s)
		}
		hour, err := strconv.Atoi(hh)
		if err != nil || hour < 0 || 23 < hour {
			return nil, fmt.Errorf(`failed to parse: %s as "daily:HH:MM": bad hour`, s)
		}
		minute, err := strconv.Atoi(mm)
		if err != nil || minute < 0 || 59 < minute {
			return nil, fmt.Errorf(`failed to parse: %s as "daily:HH:MM": bad minute`, s)
		}
		return Daily(hour, minute, loc), nil
	case "once":
		if ok {
			return nil, fmt.Errorf("once policy does not take paramters: %s", s)
		}
		return Once(), nil
	}
	return nil, fmt.Errorf("unknown policy name: %s (should be one of -- forever|daily|once)", typ)
}

// Policy for loop task behavior.
// How the policy behaves depends on the implementation of Next() method.
type Policy interface {
	Next(updated bool, err error) loop.Next
	String() string
}

// Restart immediately while there are things to do.
// Otherwise, restart after interval.
func Forever(cooldown time.Duration) Policy {
	return forever(cooldown)
}

type forever time.Duration

func (f forever) String() string {
	return fmt.Sprintf("forever:%s", time.Duration(f).String())
}

func (f forever) Next(updated bool, err error) loop.Next {
	if updated {
		return loop.Continue(0)
	}
	return loop.Continue(time.Duration(f))
}

// Run once a day at hour:minute in loc, whatever the result is.
func Daily(hour, minute int, loc *time.Location) Policy {
	return daily{hour: hour, minute: minute, loc: loc, now: time.Now}
}

type daily struct {
	hour   int
	minute int
	loc    *time.Location
	now    func() time.Time
}

func (d daily) String() string {
	return fmt.Sprintf("daily:%02d:%02d", d.hour, d.minute)
}

func (d daily) Next(bool, error) loop.Next {
	return loop.Continue(d.Until(d.now()))
}

// Until returns the duration from now to the next run.
func (d daily) Until(now time.Time) time.Duration {
	local := now.In(d.loc)
	y, m, day := local.Date()
	next := time.Date(y, m, day, d.hour, d.minute, 0, 0, d.loc)
	if !next.After(local) {
		next = time.Date(y, m, day+1, d.hour, d.minute, 0, 0, d.loc)
	}
	return next.Sub(now)
}

// FirstWait returns how long to wait before the first run under p.
//
// Scheduled policies (daily) wait for their time; others start at once.
func FirstWait(p Policy, now time.Time) time.Duration {
	if s, ok := p.(interface{ Until(time.Time) time.Duration }); ok {
		return s.Until(now)
	}
	return 0
}

// Stop after the first run, with the error of that run.
func Once() Policy {
	return once{}
}

type once struct{}

func (once) String() string {
	return "once"
}

func (once) Next(_ bool, err error) loop.Next {
	return loop.Break(err)
}
