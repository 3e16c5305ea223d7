package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/opst/taskboard/pkg/auth/password"
	kdb "github.com/opst/taskboard/pkg/db"
	"github.com/opst/taskboard/pkg/db/mocks"
)

// execute runs the command line against db, and returns what is written to stdout.
func execute(t *testing.T, db kdb.Database, stdin string, args ...string) (string, []Connection, error) {
	t.Helper()
	connected := []Connection{}
	root := RootCommand(func(_ context.Context, c Connection) (kdb.Database, error) {
		connected = append(connected, c)
		return db, nil
	})
	out := new(bytes.Buffer)
	root.SetOut(out)
	root.SetErr(new(bytes.Buffer))
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), connected, err
}

func TestSchemaUpgrade(t *testing.T) {
	for name, testcase := range map[string]struct {
		versions []int
		then     string
	}{
		"it upgrades": {
			versions: []int{3, 5},
			then:     "schema upgraded: version 3 -> 5\n",
		},
		"it tells up to date": {
			versions: []int{5, 5},
			then:     "schema is up to date: version 5\n",
		},
	} {
		t.Run(name, func(t *testing.T) {
			db := mocks.NewDatabase()
			versions := testcase.versions
			db.MockSchema.Impl.Version = func(context.Context) (int, error) {
				v := versions[0]
				versions = versions[1:]
				return v, nil
			}
			db.MockSchema.Impl.Upgrade = func(context.Context) error { return nil }

			out, connected, err := execute(
				t, db, "", "schema", "upgrade", "--dburi", "postgres://db/taskboard", "--schema", "/schema",
			)
			if err != nil {
				t.Fatal(err)
			}
			if out != testcase.then {
				t.Errorf("output: %q", out)
			}
			if db.MockSchema.Calls.Upgrade.Times() != 1 {
				t.Errorf("Upgrade is called %d times", db.MockSchema.Calls.Upgrade.Times())
			}
			expected := []Connection{{DBURI: "postgres://db/taskboard", Schema: "/schema", ConfigPath: connected[0].ConfigPath}}
			if diff := cmp.Diff(expected, connected); diff != "" {
				t.Errorf("connection (-expected +actual):\n%s", diff)
			}
		})
	}

	t.Run("failed upgrade is an error", func(t *testing.T) {
		db := mocks.NewDatabase()
		db.MockSchema.Impl.Version = func(context.Context) (int, error) { return 1, nil }
		expected := errors.New("migration failed")
		db.MockSchema.Impl.Upgrade = func(context.Context) error { return expected }

		if _, _, err := execute(t, db, "", "schema", "upgrade"); !errors.Is(err, expected) {
			t.Errorf("expected %v, but got %v", expected, err)
		}
	})
}

func TestSchemaVersion(t *testing.T) {
	db := mocks.NewDatabase()
	db.MockSchema.Impl.Version = func(context.Context) (int, error) { return 7, nil }

	out, _, err := execute(t, db, "", "schema", "version")
	if err != nil {
		t.Fatal(err)
	}
	if out != "7\n" {
		t.Errorf("output: %q", out)
	}
}

func TestUserPromote(t *testing.T) {
	type promoted struct {
		Email string
		Name  string
	}

	for name, testcase := range map[string]struct {
		args []string
		then promoted
	}{
		"name defaults to the local part": {
			args: []string{"user", "promote", "Boss@Example.com"},
			then: promoted{Email: "boss@example.com", Name: "boss"},
		},
		"name is given": {
			args: []string{"user", "promote", "boss@example.com", "--name", "The Boss"},
			then: promoted{Email: "boss@example.com", Name: "The Boss"},
		},
	} {
		t.Run(name, func(t *testing.T) {
			db := mocks.NewDatabase()
			calls := []promoted{}
			db.MockUsers.Impl.Promote = func(_ context.Context, email string, name string) (*kdb.User, error) {
				calls = append(calls, promoted{Email: email, Name: name})
				return &kdb.User{Id: "u-boss", Email: email, Name: name, Role: kdb.RoleAdmin}, nil
			}

			out, _, err := execute(t, db, "", testcase.args...)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff([]promoted{testcase.then}, calls); diff != "" {
				t.Errorf("promoted (-expected +actual):\n%s", diff)
			}
			if out != "boss@example.com (u-boss) is ADMIN\n" {
				t.Errorf("output: %q", out)
			}
		})
	}

	t.Run("broken email is rejected before connecting", func(t *testing.T) {
		db := mocks.NewDatabase()
		_, connected, err := execute(t, db, "", "user", "promote", "not-an-email")
		if err == nil {
			t.Error("expected error does not happen")
		}
		if len(connected) != 0 {
			t.Error("database should not be opened")
		}
	})
}

func TestUserSetPassword(t *testing.T) {
	const strong = "N3w!Password"

	for name, testcase := range map[string]struct {
		stdin string
		args  []string
	}{
		"password from stdin": {
			stdin: strong + "\n",
			args:  []string{"user", "set-password", "ana@example.com"},
		},
		"password from stdin without newline": {
			stdin: strong,
			args:  []string{"user", "set-password", "ana@example.com"},
		},
		"password from flag": {
			args: []string{"user", "set-password", "ana@example.com", "--password", strong},
		},
	} {
		t.Run(name, func(t *testing.T) {
			db := mocks.NewDatabase()
			hashes := map[string]string{}
			db.MockUsers.Impl.SetPassword = func(_ context.Context, email string, hash string) error {
				hashes[email] = hash
				return nil
			}

			if _, _, err := execute(t, db, testcase.stdin, testcase.args...); err != nil {
				t.Fatal(err)
			}
			if !password.Match(hashes["ana@example.com"], strong) {
				t.Errorf("password is not set: %v", hashes)
			}
		})
	}

	t.Run("weak password is rejected before connecting", func(t *testing.T) {
		db := mocks.NewDatabase()
		_, connected, err := execute(t, db, "password\n", "user", "set-password", "ana@example.com")
		if !errors.Is(err, password.ErrWeakPassword) {
			t.Errorf("expected ErrWeakPassword, but got %v", err)
		}
		if len(connected) != 0 {
			t.Error("database should not be opened")
		}
	})

	t.Run("unknown user is an error", func(t *testing.T) {
		db := mocks.NewDatabase()
		db.MockUsers.Impl.SetPassword = func(context.Context, string, string) error { return kdb.ErrMissing }
		_, _, err := execute(t, db, strong+"\n", "user", "set-password", "who@example.com")
		if err == nil || !strings.Contains(err.Error(), "user is not found") {
			t.Errorf("unexpected error: %v", err)
		}
	})
}
