package db

import (
	"context"
	"time"
)

type Reminder struct {
	Id          string
	Content     string
	IsCompleted bool
	UserId      string
	CreatedAt   time.Time
}

type ReminderInterface interface {
	// Get a reminder.
	//
	// # Returns
	//
	// - error: ErrMissing when not found.
	Get(ctx context.Context, reminderId string) (*Reminder, error)

	// Find reminders of the user, newer first.
	Find(ctx context.Context, userId string) ([]Reminder, error)

	Create(ctx context.Context, userId string, content string) (*Reminder, error)

	// Update content and/or completion. nil means "not changed".
	//
	// # Returns
	//
	// - error: ErrMissing when not found.
	Update(ctx context.Context, reminderId string, content *string, isCompleted *bool) (*Reminder, error)

	// Delete a reminder.
	//
	// # Returns
	//
	// - error: ErrMissing when not found.
	Delete(ctx context.Context, reminderId string) error
}
