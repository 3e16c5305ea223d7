package team

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	kdb "github.com/opst/taskboard/pkg/db"
	kpgerr "github.com/opst/taskboard/pkg/db/postgres/errors"
	kpool "github.com/opst/taskboard/pkg/db/postgres/pool"
	"github.com/opst/taskboard/pkg/db/postgres/scanner"
	xe "github.com/opst/taskboard/pkg/errors"
)

type pgTeam struct {
	pool kpool.Pool
}

var _ kdb.TeamInterface = &pgTeam{}

func New(pool kpool.Pool) kdb.TeamInterface {
	return &pgTeam{pool: pool}
}

type teamRow struct {
	TeamId      string
	Name        string
	MemberCount int
	CreatedAt   time.Time
}

func (r teamRow) Team() kdb.Team {
	return kdb.Team{Id: r.TeamId, Name: r.Name, MemberCount: r.MemberCount, CreatedAt: r.CreatedAt}
}

func (m *pgTeam) List(ctx context.Context) ([]kdb.Team, error) {
	rows, err := scanner.New[teamRow]().QueryAll(
		ctx, m.pool,
		`
		select
			"t"."team_id"::text as "team_id", "t"."name", "t"."created_at",
			count("u"."user_id")::int as "member_count"
		from "team" as "t"
		left join "app_user" as "u" on "u"."team_id" = "t"."team_id"
		group by "t"."team_id"
		order by "t"."name", "t"."team_id"
		`,
	)
	if err != nil {
		return nil, xe.Wrap(err)
	}
	ret := make([]kdb.Team, 0, len(rows))
	for _, r := range rows {
		ret = append(ret, r.Team())
	}
	return ret, nil
}

func (m *pgTeam) Create(ctx context.Context, name string) (*kdb.Team, error) {
	rows, err := scanner.New[teamRow]().QueryAll(
		ctx, m.pool,
		`
		insert into "team" ("team_id", "name") values ($1, $2)
		returning "team_id"::text as "team_id", "name", "created_at", 0 as "member_count"
		`,
		uuid.NewString(), strings.TrimSpace(name),
	)
	if err != nil {
		return nil, xe.Wrap(err)
	}
	if len(rows) != 1 {
		return nil, xe.Wrap(kpgerr.TooMuch{Table: "team", Identity: "name=" + name, Expected: 1})
	}
	t := rows[0].Team()
	return &t, nil
}

func (m *pgTeam) Delete(ctx context.Context, teamId string) error {
	// members are left team-less by "on delete set null"
	ctag, err := m.pool.Exec(ctx, `delete from "team" where "team_id"::text = $1`, teamId)
	if err != nil {
		return xe.Wrap(err)
	}
	if ctag.RowsAffected() == 0 {
		return xe.Wrap(kpgerr.Missing{Table: "team", Identity: "team_id=" + teamId})
	}
	return nil
}
