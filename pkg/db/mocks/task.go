package mocks

import (
	"context"
	"time"

	kdb "github.com/opst/taskboard/pkg/db"
)

type TaskInterface struct {
	Impl struct {
		Get         func(ctx context.Context, taskId int) (*kdb.Task, error)
		Find        func(ctx context.Context, filter kdb.TaskFilter) ([]kdb.Task, error)
		Create      func(ctx context.Context, param kdb.TaskParam) (*kdb.Task, error)
		Update      func(ctx context.Context, taskId int, update kdb.TaskUpdate) (*kdb.Task, error)
		Delete      func(ctx context.Context, taskId int) error
		FindOverdue func(ctx context.Context, before time.Time) ([]kdb.Task, error)
	}

	Calls struct {
		Get    CallLog[int]
		Find   CallLog[kdb.TaskFilter]
		Create CallLog[kdb.TaskParam]
		Update CallLog[struct {
			TaskId int
			Update kdb.TaskUpdate
		}]
		Delete      CallLog[int]
		FindOverdue CallLog[time.Time]
	}
}

var _ kdb.TaskInterface = &TaskInterface{}

func NewTaskInterface() *TaskInterface {
	return &TaskInterface{}
}

func (m *TaskInterface) Get(ctx context.Context, taskId int) (*kdb.Task, error) {
	m.Calls.Get = append(m.Calls.Get, taskId)
	if m.Impl.Get != nil {
		return m.Impl.Get(ctx, taskId)
	}
	panic(errNotImplemented)
}

func (m *TaskInterface) Find(ctx context.Context, filter kdb.TaskFilter) ([]kdb.Task, error) {
	m.Calls.Find = append(m.Calls.Find, filter)
	if m.Impl.Find != nil {
		return m.Impl.Find(ctx, filter)
	}
	panic(errNotImplemented)
}

func (m *TaskInterface) Create(ctx context.Context, param kdb.TaskParam) (*kdb.Task, error) {
	m.Calls.Create = append(m.Calls.Create, param)
	if m.Impl.Create != nil {
		return m.Impl.Create(ctx, param)
	}
	panic(errNotImplemented)
}

func (m *TaskInterface) Update(ctx context.Context, taskId int, update kdb.TaskUpdate) (*kdb.Task, error) {
	m.Calls.Update = append(m.Calls.Update, struct {
		TaskId int
		Update kdb.TaskUpdate
	}{TaskId: taskId, Update: update})
	if m.Impl.Update != nil {
		return m.Impl.Update(ctx, taskId, update)
	}
	panic(errNotImplemented)
}

func (m *TaskInterface) Delete(ctx context.Context, taskId int) error {
	m.Calls.Delete = append(m.Calls.Delete, taskId)
	if m.Impl.Delete != nil {
		return m.Impl.Delete(ctx, taskId)
	}
	panic(errNotImplemented)
}

func (m *TaskInterface) FindOverdue(ctx context.Context, before time.Time) ([]kdb.Task, error) {
	m.Calls.FindOverdue = append(m.Calls.FindOverdue, before)
	if m.Impl.FindOverdue != nil {
		return m.Impl.FindOverdue(ctx, before)
	}
	panic(errNotImplemented)
}
