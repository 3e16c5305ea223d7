package db

import (
	"context"
	"errors"
)

type Database interface {
	Users() UserInterface
	Teams() TeamInterface
	Tasks() TaskInterface
	Reminders() ReminderInterface
	Settings() SettingsInterface
	Integrations() IntegrationInterface
	Keychain() KeychainInterface
	Schema() SchemaInterface
	Close() error
}

var (
	// requested record is not found.
	ErrMissing = errors.New("missing")

	// requested record is found more than expected.
	ErrTooMuch = errors.New("too much")

	// the change conflicts with other records (unique constraints, for example).
	ErrConflict = errors.New("conflict")

	// the principal is not allowed to do the operation.
	ErrForbidden = errors.New("forbidden")
)

type SchemaInterface interface {
	// Upgrade applies schema versions newer than the current one.
	Upgrade(ctx context.Context) error

	// Version returns the schema version in the database.
	//
	// When the database has never been initialized, it returns 0.
	Version(ctx context.Context) (int, error)

	// Context returns a context which is cancelled when the schema repository
	// gets newer than the database.
	Context(ctx context.Context) (context.Context, context.CancelFunc)
}
