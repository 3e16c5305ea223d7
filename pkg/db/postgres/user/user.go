package user

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

type pgUser struct {
	pool kpool.Pool
}

var _ kdb.UserInterface = &pgUser{}

func New(pool kpool.Pool) kdb.UserInterface {
	return &pgUser{pool: pool}
}

type userRow struct {
	UserId    string
	Name      string
	Email     string
	Image     *string
	Role      string
	TeamId    *string
	TeamName  *string
	CreatedAt time.Time
	Password  *string
}

func (r userRow) User() kdb.User {
	return kdb.User{
		Id:        r.UserId,
		Name:      r.Name,
		Email:     r.Email,
		Image:     r.Image,
		Role:      kdb.Role(r.Role),
		TeamId:    r.TeamId,
		TeamName:  r.TeamName,
		CreatedAt: r.CreatedAt,
	}
}

const selectUser = `
select
	"u"."user_id"::text as "user_id", "u"."name", "u"."email", "u"."image",
	"u"."role"::text as "role", "u"."team_id"::text as "team_id",
	"t"."name" as "team_name", "u"."created_at", "u"."password"
from "app_user" as "u"
left join "team" as "t" on "t"."team_id" = "u"."team_id"
`

// emails are compared case-insensitively.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func getBy(ctx context.Context, conn kpool.Queryer, column string, value string) (*userRow, error) {
	rows, err := scanner.New[userRow]().QueryAll(
		ctx, conn, selectUser+` where "u"."`+column+`"::text = $1`, value,
	)
	if err != nil {
		return nil, xe.Wrap(err)
	}
	switch len(rows) {
	case 0:
		return nil, xe.Wrap(kpgerr.Missing{Table: "app_user", Identity: column + "=" + value})
	case 1:
		return &rows[0], nil
	default:
		return nil, xe.Wrap(kpgerr.TooMuch{Table: "app_user", Identity: column + "=" + value, Expected: 1})
	}
}

func (m *pgUser) Get(ctx context.Context, userId string) (*kdb.User, error) {
	r, err := getBy(ctx, m.pool, "user_id", userId)
	if err != nil {
		return nil, err
	}
	u := r.User()
	return &u, nil
}

func (m *pgUser) Credential(ctx context.Context, email string) (*kdb.User, string, error) {
	r, err := getBy(ctx, m.pool, "email", normalizeEmail(email))
	if err != nil {
		return nil, "", err
	}
	u := r.User()
	hash := ""
	if r.Password != nil {
		hash = *r.Password
	}
	return &u, hash, nil
}

func (m *pgUser) List(ctx context.Context) ([]kdb.User, error) {
	rows, err := scanner.New[userRow]().QueryAll(
		ctx, m.pool, selectUser+` order by "u"."name", "u"."email"`,
	)
	if err != nil {
		return nil, xe.Wrap(err)
	}
	ret := make([]kdb.User, 0, len(rows))
	for _, r := range rows {
		ret = append(ret, r.User())
	}
	return ret, nil
}

func (m *pgUser) Create(ctx context.Context, param kdb.UserParam) (*kdb.User, error) {
	role := param.Role
	if role == "" {
		role = kdb.RoleCollaborator
	}

	var created *kdb.User
	err := kpool.InTx(ctx, m.pool, func(tx kpool.Tx) error {
		userId := uuid.NewString()
		if _, err := tx.Exec(
			ctx,
			`
			insert into "app_user" ("user_id", "name", "email", "password", "role")
			values ($1, $2, $3, $4, $5)
			`,
			userId, strings.TrimSpace(param.Name), normalizeEmail(param.Email),
			param.PasswordHash, string(role),
		); err != nil {
			return xe.Wrap(kpgerr.AsConflict(err))
		}
		r, err := getBy(ctx, tx, "user_id", userId)
		if err != nil {
			return err
		}
		u := r.User()
		created = &u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (m *pgUser) UpdateProfile(ctx context.Context, userId string, profile kdb.UserProfile) (*kdb.User, error) {
	var updated *kdb.User
	err := kpool.InTx(ctx, m.pool, func(tx kpool.Tx) error {
		ctag, err := tx.Exec(
			ctx,
			`
			update "app_user"
			set "name" = $2, "email" = $3,
				"password" = coalesce($4, "password"), "updated_at" = now()
			where "user_id"::text = $1
			`,
			userId, strings.TrimSpace(profile.Name), normalizeEmail(profile.Email), profile.PasswordHash,
		)
		if err != nil {
			return xe.Wrap(kpgerr.AsConflict(err))
		}
		if ctag.RowsAffected() == 0 {
			return xe.Wrap(kpgerr.Missing{Table: "app_user", Identity: "user_id=" + userId})
		}
		r, err := getBy(ctx, tx, "user_id", userId)
		if err != nil {
			return err
		}
		u := r.User()
		updated = &u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (m *pgUser) Assign(ctx context.Context, userId string, assignment kdb.UserAssignment) (*kdb.User, error) {
	var updated *kdb.User
	err := kpool.InTx(ctx, m.pool, func(tx kpool.Tx) error {
		if _, err := getBy(ctx, tx, "user_id", userId); err != nil {
			return err
		}

		if assignment.Role != nil {
			if _, err := tx.Exec(
				ctx,
				`update "app_user" set "role" = $2, "updated_at" = now() where "user_id"::text = $1`,
				userId, string(*assignment.Role),
			); err != nil {
				return xe.Wrap(err)
			}
		}

		switch {
		case assignment.ClearTeam:
			if _, err := tx.Exec(
				ctx,
				`update "app_user" set "team_id" = null, "updated_at" = now() where "user_id"::text = $1`,
				userId,
			); err != nil {
				return xe.Wrap(err)
			}
		case assignment.TeamId != nil:
			ctag, err := tx.Exec(
				ctx,
				`
				update "app_user" set "team_id" = "t"."team_id", "updated_at" = now()
				from "team" as "t"
				where "app_user"."user_id"::text = $1 and "t"."team_id"::text = $2
				`,
				userId, *assignment.TeamId,
			)
			if err != nil {
				return xe.Wrap(err)
			}
			if ctag.RowsAffected() == 0 {
				return xe.Wrap(kpgerr.Missing{Table: "team", Identity: "team_id=" + *assignment.TeamId})
			}
		}

		r, err := getBy(ctx, tx, "user_id", userId)
		if err != nil {
			return err
		}
		u := r.User()
		updated = &u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (m *pgUser) Promote(ctx context.Context, email string, name string) (*kdb.User, error) {
	var promoted *kdb.User
	err := kpool.InTx(ctx, m.pool, func(tx kpool.Tx) error {
		if _, err := tx.Exec(
			ctx,
			`
			insert into "app_user" ("user_id", "name", "email", "role")
			values ($1, $2, $3, 'ADMIN')
			on conflict ("email") do update set "role" = 'ADMIN', "updated_at" = now()
			`,
			uuid.NewString(), strings.TrimSpace(name), normalizeEmail(email),
		); err != nil {
			return xe.Wrap(err)
		}
		r, err := getBy(ctx, tx, "email", normalizeEmail(email))
		if err != nil {
			return err
		}
		u := r.User()
		promoted = &u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return promoted, nil
}

func (m *pgUser) SetPassword(ctx context.Context, email string, passwordHash string) error {
	ctag, err := m.pool.Exec(
		ctx,
		`update "app_user" set "password" = $2, "updated_at" = now() where "email" = $1`,
		normalizeEmail(email), passwordHash,
	)
	if err != nil {
		return xe.Wrap(err)
	}
	if ctag.RowsAffected() == 0 {
		return xe.Wrap(kpgerr.Missing{Table: "app_user", Identity: "email=" + email})
	}
	return nil
}
