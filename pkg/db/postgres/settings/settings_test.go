package settings_test

import (
	"context"
	"errors"
	"testing"

	testctx "github.com/opst/taskboard/internal/testutils/context"
	kdb "github.com/opst/taskboard/pkg/db"
	"github.com/opst/taskboard/pkg/db/postgres/pool/testenv"
	kpgsettings "github.com/opst/taskboard/pkg/db/postgres/settings"
	"github.com/opst/taskboard/pkg/utils/try"
)

func TestSettings(t *testing.T) {
	ctx := testctx.WithTest(context.Background(), t)
	pool := testenv.NewPoolBroaker(ctx, t).GetPool(ctx, t)
	testee := kpgsettings.New(pool)

	if _, err := testee.Get(ctx); !errors.Is(err, kdb.ErrMissing) {
		t.Errorf("expected ErrMissing, but got %v", err)
	}

	first := kdb.Settings{
		ApiUrl: "https://evolution.example.com/", ApiKey: "key-1",
		InstanceName: "taskboard", NotificationPhone: "5511999999999",
	}
	if saved := try.To(testee.Save(ctx, first)).OrFatal(t); *saved != first {
		t.Errorf("saved: (actual, expected) = (%+v, %+v)", *saved, first)
	}

	second := first
	second.ApiKey = "key-2"
	try.To(testee.Save(ctx, second)).OrFatal(t)

	if got := try.To(testee.Get(ctx)).OrFatal(t); *got != second {
		t.Errorf("got: (actual, expected) = (%+v, %+v)", *got, second)
	}
}
