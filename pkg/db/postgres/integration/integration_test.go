package integration_test

import (
	"context"
	"testing"
	"time"

	testctx "github.com/opst/taskboard/internal/testutils/context"
	kdb "github.com/opst/taskboard/pkg/db"
	kpgintegration "github.com/opst/taskboard/pkg/db/postgres/integration"
	"github.com/opst/taskboard/pkg/db/postgres/pool/testenv"
	"github.com/opst/taskboard/pkg/db/postgres/tables"
	"github.com/opst/taskboard/pkg/utils/try"
)

const (
	ana   = "00000000-0000-0000-0000-000000000001"
	bruno = "00000000-0000-0000-0000-000000000002"

	i1 = "00000000-0000-0000-0000-0000000000d1"
	i2 = "00000000-0000-0000-0000-0000000000d2"
	i3 = "00000000-0000-0000-0000-0000000000d3"
)

func ref[T any](v T) *T { return &v }

func given() tables.Operation {
	return tables.Operation{
		Users: []tables.User{
			{UserId: ana, Name: "Ana", Email: "ana@example.com"},
			{UserId: bruno, Name: "Bruno", Email: "bruno@example.com"},
		},
		Integrations: []tables.Integration{
			{
				IntegrationId: i1, Provider: kdb.ProviderGoogle, AccessToken: "a1", RefreshToken: ref("r1"),
				AccountEmail: "ana@gmail.com", UserId: ana, CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			},
			{
				IntegrationId: i2, Provider: kdb.ProviderGoogle, AccessToken: "a2",
				AccountEmail: "ana@work.com", UserId: ana, CreatedAt: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
			},
			{
				IntegrationId: i3, Provider: kdb.ProviderGoogle, AccessToken: "a3",
				AccountEmail: "bruno@gmail.com", UserId: bruno,
			},
		},
	}
}

func TestIntegration(t *testing.T) {
	ctx := testctx.WithTest(context.Background(), t)
	broaker := testenv.NewPoolBroaker(ctx, t)

	t.Run("Find returns own integrations, newer first", func(t *testing.T) {
		pool := broaker.GetPool(ctx, t)
		given().Apply(ctx, t, pool)

		is := try.To(kpgintegration.New(pool).Find(ctx, ana, kdb.ProviderGoogle)).OrFatal(t)
		if len(is) != 2 || is[0].Id != i2 || is[1].Id != i1 {
			t.Errorf("unexpected integrations: %+v", is)
		}
	})

	t.Run("Get ignores integrations of others", func(t *testing.T) {
		pool := broaker.GetPool(ctx, t)
		given().Apply(ctx, t, pool)

		got := try.To(kpgintegration.New(pool).Get(ctx, ana, []string{i1, i3})).OrFatal(t)
		if len(got) != 1 {
			t.Fatalf("unexpected integrations: %+v", got)
		}
		if _, ok := got[i1]; !ok {
			t.Errorf("own integration is missing: %+v", got)
		}
	})

	t.Run("Upsert keeps refresh token when it is not given", func(t *testing.T) {
		pool := broaker.GetPool(ctx, t)
		given().Apply(ctx, t, pool)
		testee := kpgintegration.New(pool)

		updated := try.To(testee.Upsert(ctx, kdb.IntegrationParam{
			Provider: kdb.ProviderGoogle, AccessToken: "a1-new",
			AccountEmail: "ana@gmail.com", UserId: ana,
		})).OrFatal(t)
		if updated.Id != i1 || updated.AccessToken != "a1-new" || updated.RefreshToken == nil || *updated.RefreshToken != "r1" {
			t.Errorf("unexpected integration: %+v", updated)
		}

		created := try.To(testee.Upsert(ctx, kdb.IntegrationParam{
			Provider: kdb.ProviderGoogle, AccessToken: "b2", RefreshToken: ref("rb2"),
			AccountEmail: "bruno@work.com", UserId: bruno,
		})).OrFatal(t)
		if created.Id == i3 || created.AccountEmail != "bruno@work.com" {
			t.Errorf("unexpected integration: %+v", created)
		}
	})
}
