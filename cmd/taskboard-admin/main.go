// taskboard-admin is the maintenance tool of taskboard: database schema and administrators.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/opst/taskboard/pkg/configs/server"
	kdb "github.com/opst/taskboard/pkg/db"
	kpg "github.com/opst/taskboard/pkg/db/postgres"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	root := RootCommand(connect)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		cancel()
		os.Exit(1)
	}
}

// connect opens the database described by the connection flags.
//
// dburi and schema in the config file are used unless the flags are given.
func connect(ctx context.Context, c Connection) (kdb.Database, error) {
	dburi, schema := c.DBURI, c.Schema
	if c.ConfigPath != "" {
		conf, err := server.Load(c.ConfigPath)
		if err != nil {
			return nil, fmt.Errorf("can not read configration: %w", err)
		}
		if dburi == "" {
			dburi = conf.DBURI()
		}
		if schema == "" {
			schema = conf.Schema()
		}
	}
	if dburi == "" {
		return nil, fmt.Errorf("database is not specified. pass --config or --dburi")
	}
	return kpg.New(ctx, dburi, kpg.WithSchemaRepository(schema), kpg.WithMaxConns(2))
}
