package mocks

import (
	"context"

	kdb "github.com/opst/taskboard/pkg/db"
)

type ReminderInterface struct {
	Impl struct {
		Get    func(ctx context.Context, reminderId string) (*kdb.Reminder, error)
		Find   func(ctx context.Context, userId string) ([]kdb.Reminder, error)
		Create func(ctx context.Context, userId string, content string) (*kdb.Reminder, error)
		Update func(ctx context.Context, reminderId string, content *string, isCompleted *bool) (*kdb.Reminder, error)
		Delete func(ctx context.Context, reminderId string) error
	}

	Calls struct {
		Get    CallLog[string]
		Find   CallLog[string]
		Create CallLog[struct {
			UserId  string
			Content string
		}]
		Update CallLog[struct {
			ReminderId  string
			Content     *string
			IsCompleted *bool
		}]
		Delete CallLog[string]
	}
}

var _ kdb.ReminderInterface = &ReminderInterface{}

func NewReminderInterface() *ReminderInterface {
	return &ReminderInterface{}
}

func (m *ReminderInterface) Get(ctx context.Context, reminderId string) (*kdb.Reminder, error) {
	m.Calls.Get = append(m.Calls.Get, reminderId)
	if m.Impl.Get != nil {
		return m.Impl.Get(ctx, reminderId)
	}
	panic(errNotImplemented)
}

func (m *ReminderInterface) Find(ctx context.Context, userId string) ([]kdb.Reminder, error) {
	m.Calls.Find = append(m.Calls.Find, userId)
	if m.Impl.Find != nil {
		return m.Impl.Find(ctx, userId)
	}
	panic(errNotImplemented)
}

func (m *ReminderInterface) Create(ctx context.Context, userId string, content string) (*kdb.Reminder, error) {
	m.Calls.Create = append(m.Calls.Create, struct {
		UserId  string
		Content string
	}{UserId: userId, Content: content})
	if m.Impl.Create != nil {
		return m.Impl.Create(ctx, userId, content)
	}
	panic(errNotImplemented)
}

func (m *ReminderInterface) Update(ctx context.Context, reminderId string, content *string, isCompleted *bool) (*kdb.Reminder, error) {
	m.Calls.Update = append(m.Calls.Update, struct {
		ReminderId  string
		Content     *string
		IsCompleted *bool
	}{ReminderId: reminderId, Content: content, IsCompleted: isCompleted})
	if m.Impl.Update != nil {
		return m.Impl.Update(ctx, reminderId, content, isCompleted)
	}
	panic(errNotImplemented)
}

func (m *ReminderInterface) Delete(ctx context.Context, reminderId string) error {
	m.Calls.Delete = append(m.Calls.Delete, reminderId)
	if m.Impl.Delete != nil {
		return m.Impl.Delete(ctx, reminderId)
	}
	panic(errNotImplemented)
}
