package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/opst/taskboard/pkg/auth"
	"github.com/opst/taskboard/pkg/auth/password"
	kdb "github.com/opst/taskboard/pkg/db"
	"github.com/spf13/cobra"
)

// Connection is a set of flags locating the database.
type Connection struct {
	ConfigPath string
	DBURI      string
	Schema     string
}

// Connector opens the database.
type Connector func(context.Context, Connection) (kdb.Database, error)

// RootCommand builds the command tree. Subcommands open the database with connect.
func RootCommand(connect Connector) *cobra.Command {
	conn := &Connection{}
	root := &cobra.Command{
		Use:           "taskboard-admin",
		Short:         "maintenance tool of taskboard",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(
		&conn.ConfigPath, "config", os.Getenv("TASKBOARD_CONFIG"), "path to config file of taskboardd",
	)
	root.PersistentFlags().StringVar(
		&conn.DBURI, "dburi", "", "postgres connection uri. overrides dburi in config",
	)
	root.PersistentFlags().StringVar(
		&conn.Schema, "schema", "", "path to schema repository. overrides schema in config",
	)

	// withDB runs f with the database, closing it after that.
	withDB := func(cmd *cobra.Command, f func(context.Context, kdb.Database) error) error {
		ctx := cmd.Context()
		db, err := connect(ctx, *conn)
		if err != nil {
			return err
		}
		defer db.Close()
		return f(ctx, db)
	}

	root.AddCommand(schemaCommand(withDB), userCommand(withDB))
	return root
}

type dbRunner func(*cobra.Command, func(context.Context, kdb.Database) error) error

func schemaCommand(withDB dbRunner) *cobra.Command {
	schema := &cobra.Command{
		Use:   "schema",
		Short: "manage database schema",
	}

	schema.AddCommand(
		&cobra.Command{
			Use:   "upgrade",
			Short: "apply schema versions newer than the database",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withDB(cmd, func(ctx context.Context, db kdb.Database) error {
					before, err := db.Schema().Version(ctx)
					if err != nil {
						return err
					}
					if err := db.Schema().Upgrade(ctx); err != nil {
						return err
					}
					after, err := db.Schema().Version(ctx)
					if err != nil {
						return err
					}
					if before == after {
						fmt.Fprintf(cmd.OutOrStdout(), "schema is up to date: version %d\n", after)
					} else {
						fmt.Fprintf(cmd.OutOrStdout(), "schema upgraded: version %d -> %d\n", before, after)
					}
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "show schema version of the database",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withDB(cmd, func(ctx context.Context, db kdb.Database) error {
					v, err := db.Schema().Version(ctx)
					if err != nil {
						return err
					}
					fmt.Fprintln(cmd.OutOrStdout(), v)
					return nil
				})
			},
		},
	)
	return schema
}

func userCommand(withDB dbRunner) *cobra.Command {
	user := &cobra.Command{
		Use:   "user",
		Short: "manage administrators",
	}

	var name string
	promote := &cobra.Command{
		Use:   "promote EMAIL",
		Short: "make the user an ADMIN. the user is created when missing",
		Long: `make the user an ADMIN. the user is created when missing.

A created user has no password. Set it with "user set-password".`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			email, err := auth.NormalizeEmail(args[0])
			if err != nil {
				return err
			}
			n := strings.TrimSpace(name)
			if n == "" {
				n, _, _ = strings.Cut(email, "@")
			}
			return withDB(cmd, func(ctx context.Context, db kdb.Database) error {
				u, err := db.Users().Promote(ctx, email, n)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s (%s) is %s\n", u.Email, u.Id, u.Role)
				return nil
			})
		},
	}
	promote.Flags().StringVar(&name, "name", "", "name of the user, when created. the local part of EMAIL by default")

	var pass string
	setPassword := &cobra.Command{
		Use:   "set-password EMAIL",
		Short: "replace the password of the user",
		Long: `replace the password of the user.

The password is read from the first line of stdin unless --password is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			email, err := auth.NormalizeEmail(args[0])
			if err != nil {
				return err
			}
			p := pass
			if !cmd.Flags().Changed("password") {
				if p, err = readLine(cmd.InOrStdin()); err != nil {
					return fmt.Errorf("can not read password: %w", err)
				}
			}
			hash, err := password.Hash(p)
			if errors.Is(err, password.ErrWeakPassword) {
				return fmt.Errorf("%w. %s", err, password.Advice)
			} else if err != nil {
				return err
			}
			return withDB(cmd, func(ctx context.Context, db kdb.Database) error {
				err := db.Users().SetPassword(ctx, email, hash)
				if errors.Is(err, kdb.ErrMissing) {
					return fmt.Errorf("user is not found: %s", email)
				} else if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "password of %s is changed\n", email)
				return nil
			})
		},
	}
	setPassword.Flags().StringVar(&pass, "password", "", "new password. prefer stdin, to keep it from shell history")

	user.AddCommand(promote, setPassword)
	return user
}

func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
