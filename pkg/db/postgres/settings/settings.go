package settings

import (
	"context"
	"strings"

	kdb "github.com/opst/taskboard/pkg/db"
	kpgerr "github.com/opst/taskboard/pkg/db/postgres/errors"
	kpool "github.com/opst/taskboard/pkg/db/postgres/pool"
	"github.com/opst/taskboard/pkg/db/postgres/scanner"
	xe "github.com/opst/taskboard/pkg/errors"
)

type pgSettings struct {
	pool kpool.Pool
}

var _ kdb.SettingsInterface = &pgSettings{}

func New(pool kpool.Pool) kdb.SettingsInterface {
	return &pgSettings{pool: pool}
}

type settingsRow struct {
	ApiUrl            string
	ApiKey            string
	InstanceName      string
	NotificationPhone string
}

func (r settingsRow) Settings() kdb.Settings {
	return kdb.Settings(r)
}

const columns = `"api_url", "api_key", "instance_name", "notification_phone"`

func (m *pgSettings) Get(ctx context.Context) (*kdb.Settings, error) {
	rows, err := scanner.New[settingsRow]().QueryAll(
		ctx, m.pool, `select `+columns+` from "settings" where "settings_id" = 1`,
	)
	if err != nil {
		return nil, xe.Wrap(err)
	}
	if len(rows) == 0 {
		return nil, xe.Wrap(kpgerr.Missing{Table: "settings", Identity: "settings_id=1"})
	}
	s := rows[0].Settings()
	return &s, nil
}

func (m *pgSettings) Save(ctx context.Context, settings kdb.Settings) (*kdb.Settings, error) {
	rows, err := scanner.New[settingsRow]().QueryAll(
		ctx, m.pool,
		`
		insert into "settings" ("settings_id", `+columns+`)
		values (1, $1, $2, $3, $4)
		on conflict ("settings_id") do update set
			"api_url" = excluded."api_url",
			"api_key" = excluded."api_key",
			"instance_name" = excluded."instance_name",
			"notification_phone" = excluded."notification_phone",
			"updated_at" = now()
		returning `+columns,
		strings.TrimSpace(settings.ApiUrl), strings.TrimSpace(settings.ApiKey),
		strings.TrimSpace(settings.InstanceName), strings.TrimSpace(settings.NotificationPhone),
	)
	if err != nil {
		return nil, xe.Wrap(err)
	}
	if len(rows) != 1 {
		return nil, xe.Wrap(kpgerr.TooMuch{Table: "settings", Identity: "settings_id=1", Expected: 1})
	}
	s := rows[0].Settings()
	return &s, nil
}
