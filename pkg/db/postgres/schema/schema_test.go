package schema_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	testctx "github.com/opst/taskboard/internal/testutils/context"
	"github.com/opst/taskboard/pkg/db/postgres/pool/testenv"
	"github.com/opst/taskboard/pkg/db/postgres/schema"
	"github.com/opst/taskboard/pkg/utils/try"
)

func TestSchema_Upgrade(t *testing.T) {
	ctx := testctx.WithTest(context.Background(), t)
	pool := testenv.NewPoolBroaker(ctx, t).GetPool(ctx, t)

	testee := schema.New(pool, testenv.SchemaRepository())

	before := try.To(testee.Version(ctx)).OrFatal(t)
	if before < 1 {
		t.Fatalf("schema is not applied: version %d", before)
	}

	t.Run("it does nothing when the schema is up to date", func(t *testing.T) {
		if err := testee.Upgrade(ctx); err != nil {
			t.Fatal(err)
		}
		after := try.To(testee.Version(ctx)).OrFatal(t)
		if after != before {
			t.Errorf("version: (before, after) = (%d, %d)", before, after)
		}
	})
}

func TestSchema_Context(t *testing.T) {
	ctx := testctx.WithTest(context.Background(), t)
	pool := testenv.NewPoolBroaker(ctx, t).GetPool(ctx, t)
	current := try.To(schema.New(pool, testenv.SchemaRepository()).Version(ctx)).OrFatal(t)

	dir := t.TempDir()
	for v := 1; v <= current; v++ {
		if err := os.Mkdir(filepath.Join(dir, strconv.Itoa(v)), 0755); err != nil {
			t.Fatal(err)
		}
	}

	testee := schema.New(pool, dir)
	sctx, cancel := testee.Context(ctx)
	defer cancel()

	select {
	case <-sctx.Done():
		t.Fatalf("unexpected cancelation: %v", context.Cause(sctx))
	default:
	}

	// a newer version appears in the repository
	if err := os.Mkdir(filepath.Join(dir, strconv.Itoa(current+1)), 0755); err != nil {
		t.Fatal(err)
	}

	<-sctx.Done()
	if cause := context.Cause(sctx); !errors.Is(cause, schema.ErrOutdated) {
		t.Errorf("unexpected cause: %v", cause)
	}
}

func TestNull(t *testing.T) {
	testee := schema.Null()
	if err := testee.Upgrade(context.Background()); err == nil {
		t.Error("expected error, but got nil")
	}

	ctx, cancel := testee.Context(context.Background())
	defer cancel()
	if ctx.Err() != nil {
		t.Error("null schema should not cancel context")
	}
}
