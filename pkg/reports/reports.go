// Package reports summarizes tasks visible to a principal.
package reports

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/opst/taskboard/pkg/access"
	kdb "github.com/opst/taskboard/pkg/db"
	xe "github.com/opst/taskboard/pkg/errors"
	"github.com/opst/taskboard/pkg/utils/rfctime"
)

const (
	DefaultRange = 30
	MaxRange     = 365
)

var ErrInvalidRange = errors.New("invalid range")

// Status slices of the distribution, in display order.
var (
	SliceTodo       = Slice{Status: kdb.TaskTodo, Name: "A Fazer", Fill: "#a855f7"}
	SliceInProgress = Slice{Status: kdb.TaskInProgress, Name: "Em Progresso", Fill: "#3b82f6"}
	SliceDone       = Slice{Status: kdb.TaskDone, Name: "Concluído", Fill: "#22c55e"}
)

type Slice struct {
	Status kdb.TaskStatus
	Name   string
	Fill   string
	Value  int
}

type Bucket struct {
	Day       time.Time
	Created   int
	Completed int
}

// Name of the bucket, as dd/MM.
func (b Bucket) Name() string {
	return b.Day.Format(rfctime.DayMonth)
}

type Report struct {
	Total      int
	Completed  int
	InProgress int

	Distribution []Slice

	// one bucket per day, oldest first.
	Activity []Bucket
}

// Since returns the earliest creation time of tasks in the report for days.
func Since(now time.Time, days int, loc *time.Location) time.Time {
	return rfctime.StartOfDay(now.In(loc).AddDate(0, 0, -days), loc)
}

// Compute a report of tasks for days until now.
//
// Tasks are expected to be created since Since(now, days, loc).
// Completion of a task is counted on the day of its last update.
func Compute(tasks []kdb.Task, now time.Time, days int, loc *time.Location) Report {
	r := Report{
		Distribution: []Slice{SliceTodo, SliceInProgress, SliceDone},
		Activity:     make([]Bucket, 0, days+1),
	}

	index := map[string]int{}
	first := Since(now, days, loc)
	for i := 0; i <= days; i++ {
		day := first.AddDate(0, 0, i)
		index[day.Format(rfctime.DateFormat)] = i
		r.Activity = append(r.Activity, Bucket{Day: day})
	}

	for _, t := range tasks {
		r.Total += 1
		for i := range r.Distribution {
			if r.Distribution[i].Status == t.Status {
				r.Distribution[i].Value += 1
			}
		}

		if i, ok := index[t.CreatedAt.In(loc).Format(rfctime.DateFormat)]; ok {
			r.Activity[i].Created += 1
		}

		switch t.Status {
		case kdb.TaskDone:
			r.Completed += 1
			if i, ok := index[t.UpdatedAt.In(loc).Format(rfctime.DateFormat)]; ok {
				r.Activity[i].Completed += 1
			}
		case kdb.TaskInProgress:
			r.InProgress += 1
		}
	}
	return r
}

type Service struct {
	tasks kdb.TaskInterface
	loc   *time.Location
	now   func() time.Time
}

func New(tasks kdb.TaskInterface, loc *time.Location, now func() time.Time) *Service {
	if loc == nil {
		loc = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	return &Service{tasks: tasks, loc: loc, now: now}
}

// Report of tasks visible to the principal, created in the last days.
//
// # Returns
//
// - error: ErrInvalidRange when days is out of [0, MaxRange].
func (s *Service) Report(ctx context.Context, p access.Principal, days int) (*Report, error) {
	if days < 0 || MaxRange < days {
		return nil, fmt.Errorf("%w: %d (should be 0 to %d)", ErrInvalidRange, days, MaxRange)
	}

	filter, err := access.Visibility(p, access.ScopeDefault, nil)
	if err != nil {
		return nil, err
	}

	now := s.now()
	since := Since(now, days, s.loc)
	filter.CreatedSince = &since

	tasks, err := s.tasks.Find(ctx, filter)
	if err != nil {
		return nil, xe.Wrap(err)
	}
	r := Compute(tasks, now, days, s.loc)
	return &r, nil
}
