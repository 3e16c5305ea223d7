package integration

import (
	"context"
	"time"

	"github.com/google/uuid"
	kdb "github.com/opst/taskboard/pkg/db"
	kpgerr "github.com/opst/taskboard/pkg/db/postgres/errors"
	kpool "github.com/opst/taskboard/pkg/db/postgres/pool"
	"github.com/opst/taskboard/pkg/db/postgres/scanner"
	xe "github.com/opst/taskboard/pkg/errors"
)

type pgIntegration struct {
	pool kpool.Pool
}

var _ kdb.IntegrationInterface = &pgIntegration{}

func New(pool kpool.Pool) kdb.IntegrationInterface {
	return &pgIntegration{pool: pool}
}

type integrationRow struct {
	IntegrationId string
	Provider      string
	AccessToken   string
	RefreshToken  *string
	ExpiresAt     *time.Time
	AccountEmail  string
	UserId        string
	CreatedAt     time.Time
}

func (r integrationRow) Integration() kdb.Integration {
	return kdb.Integration{
		Id:           r.IntegrationId,
		Provider:     r.Provider,
		AccessToken:  r.AccessToken,
		RefreshToken: r.RefreshToken,
		ExpiresAt:    r.ExpiresAt,
		AccountEmail: r.AccountEmail,
		UserId:       r.UserId,
		CreatedAt:    r.CreatedAt,
	}
}

const columns = `
"integration_id"::text as "integration_id", "provider", "access_token", "refresh_token",
"expires_at", "account_email", "user_id"::text as "user_id", "created_at"
`

func (m *pgIntegration) Find(ctx context.Context, userId string, provider string) ([]kdb.Integration, error) {
	rows, err := scanner.New[integrationRow]().QueryAll(
		ctx, m.pool,
		`
		select `+columns+` from "integration"
		where "user_id"::text = $1 and "provider" = $2
		order by "created_at" desc, "integration_id"
		`,
		userId, provider,
	)
	if err != nil {
		return nil, xe.Wrap(err)
	}
	ret := make([]kdb.Integration, 0, len(rows))
	for _, r := range rows {
		ret = append(ret, r.Integration())
	}
	return ret, nil
}

func (m *pgIntegration) Get(ctx context.Context, userId string, integrationIds []string) (map[string]kdb.Integration, error) {
	rows, err := scanner.New[integrationRow]().QueryAll(
		ctx, m.pool,
		`
		select `+columns+` from "integration"
		where "user_id"::text = $1 and "integration_id"::text = any($2::text[])
		`,
		userId, integrationIds,
	)
	if err != nil {
		return nil, xe.Wrap(err)
	}
	ret := map[string]kdb.Integration{}
	for _, r := range rows {
		ret[r.IntegrationId] = r.Integration()
	}
	return ret, nil
}

func (m *pgIntegration) Upsert(ctx context.Context, param kdb.IntegrationParam) (*kdb.Integration, error) {
	rows, err := scanner.New[integrationRow]().QueryAll(
		ctx, m.pool,
		`
		insert into "integration" (
			"integration_id", "provider", "access_token", "refresh_token",
			"expires_at", "account_email", "user_id"
		)
		values ($1, $2, $3, $4, $5, $6, $7)
		on conflict ("user_id", "provider", "account_email") do update set
			"access_token" = excluded."access_token",
			"refresh_token" = coalesce(excluded."refresh_token", "integration"."refresh_token"),
			"expires_at" = excluded."expires_at"
		returning `+columns,
		uuid.NewString(), param.Provider, param.AccessToken, param.RefreshToken,
		param.ExpiresAt, param.AccountEmail, param.UserId,
	)
	if err != nil {
		if kpgerr.IsForeignKeyViolation(err) || kpgerr.IsInvalidText(err) {
			return nil, xe.Wrap(kpgerr.Missing{Table: "app_user", Identity: "user_id=" + param.UserId})
		}
		return nil, xe.Wrap(err)
	}
	if len(rows) != 1 {
		return nil, xe.Wrap(kpgerr.TooMuch{Table: "integration", Identity: "account_email=" + param.AccountEmail, Expected: 1})
	}
	i := rows[0].Integration()
	return &i, nil
}
