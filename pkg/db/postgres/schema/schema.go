package schema

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/fsnotify/fsnotify"
	kdb "github.com/opst/taskboard/pkg/db"
	kpool "github.com/opst/taskboard/pkg/db/postgres/pool"
	xe "github.com/opst/taskboard/pkg/errors"
)

// ErrOutdated is the cause of contexts from Context,
// when the database is older than the schema repository.
var ErrOutdated = errors.New("schema is outdated")

type pgSchema struct {
	pool             kpool.Pool
	schemaRepository string
}

var _ kdb.SchemaInterface = &pgSchema{}

// New creates a new Schema.
//
// # Args
//
// - schemaRepository: The path to the schema repository directory.
// It contains directories named by version numbers ("1", "2", ...),
// and each of them contains sql files applied in lexical order.
func New(pool kpool.Pool, schemaRepository string) kdb.SchemaInterface {
	return &pgSchema{
		pool:             pool,
		schemaRepository: schemaRepository,
	}
}

type version struct {
	Version int
	Root    string
}

func (v version) Apply(ctx context.Context, conn kpool.Queryer) error {
	return filepath.WalkDir(v.Root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".sql") {
			return nil
		}

		query, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		if _, err := conn.Exec(ctx, string(query)); err != nil {
			return xe.WrapWithNote(path, err)
		}
		return nil
	})
}

func (s *pgSchema) Version(ctx context.Context) (int, error) {
	return currentVersion(ctx, s.pool)
}

func currentVersion(ctx context.Context, conn kpool.Queryer) (int, error) {
	// checking existence first, since an error aborts the transaction.
	var exists bool
	if err := conn.QueryRow(
		ctx, `select to_regclass('"schema_version"') is not null`,
	).Scan(&exists); err != nil {
		return -1, xe.Wrap(err)
	}
	if !exists {
		return 0, nil
	}

	var version *int
	if err := conn.QueryRow(
		ctx, `select max("version") from "schema_version"`,
	).Scan(&version); err != nil {
		return -1, xe.Wrap(err)
	}
	if version == nil {
		return 0, nil
	}
	return *version, nil
}

func (s *pgSchema) Upgrade(ctx context.Context) error {
	schemaVersions, err := s.versions()
	if err != nil {
		return xe.Wrap(err)
	}

	return kpool.InTx(ctx, s.pool, func(tx kpool.Tx) error {
		// serialize concurrent upgrades
		if _, err := tx.Exec(ctx, `select pg_advisory_xact_lock(hashtext('schema_version'))`); err != nil {
			return xe.Wrap(err)
		}

		current, err := currentVersion(ctx, tx)
		if err != nil {
			return err
		}

		for _, v := range schemaVersions {
			if v.Version <= current {
				continue
			}
			if err := v.Apply(ctx, tx); err != nil {
				return err
			}
			if _, err := tx.Exec(ctx, `delete from "schema_version"`); err != nil {
				return xe.Wrap(err)
			}
			if _, err := tx.Exec(
				ctx, `insert into "schema_version" ("version") values ($1)`, v.Version,
			); err != nil {
				return xe.Wrap(err)
			}
		}
		return nil
	})
}

func (s *pgSchema) Context(ctx context.Context) (context.Context, context.CancelFunc) {
	cctx, can := context.WithCancelCause(ctx)

	w, err := fsnotify.NewWatcher()
	if err != nil {
		can(err)
		return cctx, func() {}
	}
	if err := w.Add(s.schemaRepository); err != nil {
		w.Close()
		can(err)
		return cctx, func() {}
	}

	checkVersion := func() {
		vs, err := s.versions()
		if err != nil {
			can(fmt.Errorf("failed to read schema repository: %w", err))
			return
		}

		current, err := s.Version(cctx)
		if err != nil {
			can(fmt.Errorf("failed to get current schema version: %w", err))
			return
		}

		if len(vs) == 0 {
			return
		}
		if latest := vs[len(vs)-1].Version; current < latest {
			can(fmt.Errorf(
				"%w: %d (in db) < %d (in repository)", ErrOutdated, current, latest,
			))
		}
	}

	go func() {
		defer w.Close()

		for {
			select {
			case <-cctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Remove) {
					continue
				}
				if filepath.Clean(s.schemaRepository) != filepath.Dir(ev.Name) {
					continue
				}
				checkVersion()
			}
		}
	}()

	checkVersion()
	return cctx, func() { can(nil) }
}

// versions lookup the schema from the schema repository.
//
// # Returns
//
// - []version: The list of schema versions, sorted by version number.
//
// - error: The error if any.
func (s *pgSchema) versions() ([]version, error) {
	dir, err := os.ReadDir(s.schemaRepository)
	if err != nil {
		return nil, err
	}

	schemaVersions := make([]version, 0, len(dir))
	for _, entry := range dir {
		if !entry.IsDir() {
			continue
		}

		v, err := strconv.Atoi(entry.Name())
		if err != nil {
			continue
		}

		schemaVersions = append(schemaVersions, version{
			Version: v,
			Root:    filepath.Join(s.schemaRepository, entry.Name()),
		})
	}
	slices.SortFunc(
		schemaVersions,
		func(i, j version) int { return cmp.Compare(i.Version, j.Version) },
	)

	return schemaVersions, nil
}

// Null returns a schema which does not know any schema repository.
func Null() kdb.SchemaInterface {
	return nullSchema{}
}

type nullSchema struct{}

func (nullSchema) Upgrade(ctx context.Context) error {
	return errors.New("no schema repository available")
}

func (nullSchema) Version(ctx context.Context) (int, error) {
	return -1, nil
}

func (nullSchema) Context(ctx context.Context) (context.Context, context.CancelFunc) {
	return ctx, func() {}
}
