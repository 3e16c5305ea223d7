package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

type TaskStatus string

const (
	TaskTodo       TaskStatus = "TODO"
	TaskInProgress TaskStatus = "IN_PROGRESS"
	TaskDone       TaskStatus = "DONE"
)

var ErrInvalidTask = errors.New("invalid task")

var ErrUnknownTaskStatus = fmt.Errorf("%w: unknown status", ErrInvalidTask)

func AsTaskStatus(s string) (TaskStatus, error) {
	switch TaskStatus(strings.ToUpper(s)) {
	case TaskTodo:
		return TaskTodo, nil
	case TaskInProgress:
		return TaskInProgress, nil
	case TaskDone:
		return TaskDone, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownTaskStatus, s)
}

// well-known values of Task.EstimatedTime.
//
// Other values are also accepted.
const (
	EstimateQuick  = "Rápido"
	EstimateMedium = "Mediano"
	EstimateLong   = "Demorado"
)

// summary of the user a task is assigned to.
type Assignee struct {
	UserId string
	Name   string
	Email  string
	TeamId *string
}

type Task struct {
	Id            int
	Title         string
	Description   *string
	DueDate       time.Time
	Status        TaskStatus
	EstimatedTime *string

	// assignee. nil for legacy, unassigned tasks.
	UserId *string

	// user who has created this task. nil when unknown.
	CreatedBy *string

	// populated when UserId is not nil.
	User *Assignee

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (t *Task) IsOverdue(startOfToday time.Time) bool {
	return t.Status != TaskDone && t.DueDate.Before(startOfToday)
}

// parameters to create a new task.
type TaskParam struct {
	Title         string
	Description   *string
	DueDate       time.Time
	Status        TaskStatus
	EstimatedTime *string
	UserId        string
	CreatedBy     string
}

// Validate checks the param and returns normalized one.
//
// Status defaults to TODO.
func (p TaskParam) Validate() (TaskParam, error) {
	p.Title = strings.TrimSpace(p.Title)
	if p.Title == "" {
		return TaskParam{}, fmt.Errorf("%w: title is required", ErrInvalidTask)
	}
	if p.DueDate.IsZero() {
		return TaskParam{}, fmt.Errorf("%w: dueDate is required", ErrInvalidTask)
	}
	if p.Status == "" {
		p.Status = TaskTodo
	} else if s, err := AsTaskStatus(string(p.Status)); err != nil {
		return TaskParam{}, err
	} else {
		p.Status = s
	}
	if p.UserId == "" {
		return TaskParam{}, fmt.Errorf("%w: assignee is required", ErrInvalidTask)
	}
	return p, nil
}

// partial update of a task. nil fields are left as they are.
type TaskUpdate struct {
	Title         *string
	Description   *string
	DueDate       *time.Time
	Status        *TaskStatus
	EstimatedTime *string
	UserId        *string
}

func (u TaskUpdate) Validate() (TaskUpdate, error) {
	if u.Title != nil {
		t := strings.TrimSpace(*u.Title)
		if t == "" {
			return TaskUpdate{}, fmt.Errorf("%w: title should not be empty", ErrInvalidTask)
		}
		u.Title = &t
	}
	if u.Status != nil {
		s, err := AsTaskStatus(string(*u.Status))
		if err != nil {
			return TaskUpdate{}, err
		}
		u.Status = &s
	}
	if u.DueDate != nil && u.DueDate.IsZero() {
		return TaskUpdate{}, fmt.Errorf("%w: dueDate should not be empty", ErrInvalidTask)
	}
	if u.UserId != nil && *u.UserId == "" {
		return TaskUpdate{}, fmt.Errorf("%w: assignee should not be empty", ErrInvalidTask)
	}
	return u, nil
}

func (u TaskUpdate) IsEmpty() bool {
	return u.Title == nil && u.Description == nil && u.DueDate == nil &&
		u.Status == nil && u.EstimatedTime == nil && u.UserId == nil
}

// TaskFilter is a set of predicates for TaskInterface.Find.
//
// Unless Unrestricted is true, a task matches when its assignee is one of UserIds
// OR the assignee belongs to TeamId. A filter with no predicates matches nothing.
//
// Assignee and CreatedSince narrow the result further (AND).
type TaskFilter struct {
	Unrestricted bool
	UserIds      []string
	TeamId       string

	Assignee     string
	CreatedSince *time.Time
}

type TaskInterface interface {
	// Get a task by id.
	//
	// # Returns
	//
	// - *Task
	//
	// - error: ErrMissing when not found.
	Get(ctx context.Context, taskId int) (*Task, error)

	// Find tasks matching the filter, newer first (by CreatedAt).
	Find(ctx context.Context, filter TaskFilter) ([]Task, error)

	// Create a task. The param should be validated.
	Create(ctx context.Context, param TaskParam) (*Task, error)

	// Update a task and refresh its UpdatedAt.
	//
	// # Returns
	//
	// - *Task: updated task
	//
	// - error: ErrMissing when not found.
	Update(ctx context.Context, taskId int, update TaskUpdate) (*Task, error)

	// Delete a task.
	//
	// # Returns
	//
	// - error: ErrMissing when not found.
	Delete(ctx context.Context, taskId int) error

	// FindOverdue returns tasks which are not DONE and due before the time,
	// across all users, ordered by due date and id.
	FindOverdue(ctx context.Context, before time.Time) ([]Task, error)
}
