package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v4/pgxpool"
	kdb "github.com/opst/taskboard/pkg/db"
	kpgintegration "github.com/opst/taskboard/pkg/db/postgres/integration"
	kpgkeychain "github.com/opst/taskboard/pkg/db/postgres/keychain"
	kpool "github.com/opst/taskboard/pkg/db/postgres/pool"
	kpgreminder "github.com/opst/taskboard/pkg/db/postgres/reminder"
	kpgschema "github.com/opst/taskboard/pkg/db/postgres/schema"
	kpgsettings "github.com/opst/taskboard/pkg/db/postgres/settings"
	kpgtask "github.com/opst/taskboard/pkg/db/postgres/task"
	kpgteam "github.com/opst/taskboard/pkg/db/postgres/team"
	kpguser "github.com/opst/taskboard/pkg/db/postgres/user"
	xe "github.com/opst/taskboard/pkg/errors"
	"github.com/opst/taskboard/pkg/utils/retry"
)

type taskboardDBPostgres struct {
	pool         kpool.Pool
	users        kdb.UserInterface
	teams        kdb.TeamInterface
	tasks        kdb.TaskInterface
	reminders    kdb.ReminderInterface
	settings     kdb.SettingsInterface
	integrations kdb.IntegrationInterface
	keychain     kdb.KeychainInterface
	schema       kdb.SchemaInterface
}

type Config struct {
	SchemaRepository string
	MaxConns         int32

	// backoff between failed connection attempts. nil means "no retry".
	ConnectBackoff retry.Backoff
}

type Option func(*Config) *Config

func WithSchemaRepository(repository string) Option {
	return func(c *Config) *Config {
		c.SchemaRepository = repository
		return c
	}
}

// WithMaxConns sets the max size of the connection pool.
// Non-positive values mean the default of pgxpool.
func WithMaxConns(n int32) Option {
	return func(c *Config) *Config {
		c.MaxConns = n
		return c
	}
}

// WithConnectRetry makes New retry connecting up to `times` more times.
func WithConnectRetry(times int, b retry.Backoff) Option {
	return func(c *Config) *Config {
		c.ConnectBackoff = retry.Limited(times, b)
		return c
	}
}

func New(
	ctx context.Context,
	url string,
	options ...Option,
) (kdb.Database, error) {
	c := Config{}
	for _, option := range options {
		c = *option(&c)
	}

	pgconf, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, xe.Wrap(err)
	}
	if 0 < c.MaxConns {
		pgconf.MaxConns = c.MaxConns
	}

	var lastErr error
	connect := func() (*pgxpool.Pool, error) {
		p, err := pgxpool.ConnectConfig(ctx, pgconf)
		if err != nil && c.ConnectBackoff != nil {
			lastErr = err
			return nil, retry.ErrRetry
		}
		return p, err
	}
	pool, err := retry.Blocking(ctx, c.ConnectBackoff, connect)
	if errors.Is(err, retry.ErrGaveUp) && lastErr != nil {
		err = lastErr
	}
	if err != nil {
		return nil, xe.Wrap(err)
	}

	return Wrap(kpool.Wrap(pool), c), nil
}

// Wrap builds a Database on the pool.
func Wrap(p kpool.Pool, c Config) kdb.Database {
	schema := kpgschema.Null()
	if c.SchemaRepository != "" {
		schema = kpgschema.New(p, c.SchemaRepository)
	}

	return &taskboardDBPostgres{
		pool:         p,
		users:        kpguser.New(p),
		teams:        kpgteam.New(p),
		tasks:        kpgtask.New(p),
		reminders:    kpgreminder.New(p),
		settings:     kpgsettings.New(p),
		integrations: kpgintegration.New(p),
		keychain:     kpgkeychain.New(p),
		schema:       schema,
	}
}

func (k *taskboardDBPostgres) Users() kdb.UserInterface {
	return k.users
}

func (k *taskboardDBPostgres) Teams() kdb.TeamInterface {
	return k.teams
}

func (k *taskboardDBPostgres) Tasks() kdb.TaskInterface {
	return k.tasks
}

func (k *taskboardDBPostgres) Reminders() kdb.ReminderInterface {
	return k.reminders
}

func (k *taskboardDBPostgres) Settings() kdb.SettingsInterface {
	return k.settings
}

func (k *taskboardDBPostgres) Integrations() kdb.IntegrationInterface {
	return k.integrations
}

func (k *taskboardDBPostgres) Keychain() kdb.KeychainInterface {
	return k.keychain
}

func (k *taskboardDBPostgres) Schema() kdb.SchemaInterface {
	return k.schema
}

func (k *taskboardDBPostgres) Close() error {
	k.pool.Close()
	return nil
}
