package task

import (
	"context"
	"fmt"
	"strings"
	"time"

	kdb "github.com/opst/taskboard/pkg/db"
	kpgerr "github.com/opst/taskboard/pkg/db/postgres/errors"
	kpool "github.com/opst/taskboard/pkg/db/postgres/pool"
	"github.com/opst/taskboard/pkg/db/postgres/scanner"
	xe "github.com/opst/taskboard/pkg/errors"
)

type pgTask struct {
	pool kpool.Pool
}

var _ kdb.TaskInterface = &pgTask{}

func New(pool kpool.Pool) kdb.TaskInterface {
	return &pgTask{pool: pool}
}

// row of the query `selectTask`
type taskRow struct {
	TaskId        int
	Title         string
	Description   *string
	DueDate       time.Time
	Status        string
	EstimatedTime *string
	UserId        *string
	CreatedBy     *string
	CreatedAt     time.Time
	UpdatedAt     time.Time

	UserName   *string
	UserEmail  *string
	UserTeamId *string
}

func (r taskRow) Task() kdb.Task {
	t := kdb.Task{
		Id:            r.TaskId,
		Title:         r.Title,
		Description:   r.Description,
		DueDate:       r.DueDate,
		Status:        kdb.TaskStatus(r.Status),
		EstimatedTime: r.EstimatedTime,
		UserId:        r.UserId,
		CreatedBy:     r.CreatedBy,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
	if r.UserId != nil && r.UserName != nil && r.UserEmail != nil {
		t.User = &kdb.Assignee{
			UserId: *r.UserId,
			Name:   *r.UserName,
			Email:  *r.UserEmail,
			TeamId: r.UserTeamId,
		}
	}
	return t
}

const selectTask = `
select
	"t"."task_id", "t"."title", "t"."description", "t"."due_date",
	"t"."status"::text as "status", "t"."estimated_time",
	"t"."user_id"::text as "user_id", "t"."created_by"::text as "created_by",
	"t"."created_at", "t"."updated_at",
	"u"."name" as "user_name", "u"."email" as "user_email",
	"u"."team_id"::text as "user_team_id"
from "task" as "t"
left join "app_user" as "u" on "u"."user_id" = "t"."user_id"
`

func (m *pgTask) Get(ctx context.Context, taskId int) (*kdb.Task, error) {
	return get(ctx, m.pool, taskId)
}

func get(ctx context.Context, conn kpool.Queryer, taskId int) (*kdb.Task, error) {
	rows, err := scanner.New[taskRow]().QueryAll(
		ctx, conn, selectTask+` where "t"."task_id" = $1`, taskId,
	)
	if err != nil {
		return nil, xe.Wrap(err)
	}
	switch len(rows) {
	case 0:
		return nil, xe.Wrap(kpgerr.Missing{Table: "task", Identity: fmt.Sprintf("task_id=%d", taskId)})
	case 1:
		t := rows[0].Task()
		return &t, nil
	default:
		return nil, xe.Wrap(kpgerr.TooMuch{Table: "task", Identity: fmt.Sprintf("task_id=%d", taskId), Expected: 1})
	}
}

// whereClause builds the "where" clause for the filter.
//
// The first placeholder is "$1".
func whereClause(filter kdb.TaskFilter) (string, []any) {
	args := []any{}
	param := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	conds := []string{}
	if !filter.Unrestricted {
		visible := []string{}
		if len(filter.UserIds) != 0 {
			visible = append(visible, `"t"."user_id"::text = any(`+param(filter.UserIds)+`::text[])`)
		}
		if filter.TeamId != "" {
			visible = append(visible, `"u"."team_id"::text = `+param(filter.TeamId))
		}
		if len(visible) == 0 {
			// nothing is visible
			visible = append(visible, "false")
		}
		conds = append(conds, "("+strings.Join(visible, " or ")+")")
	}
	if filter.Assignee != "" {
		conds = append(conds, `"t"."user_id"::text = `+param(filter.Assignee))
	}
	if filter.CreatedSince != nil {
		conds = append(conds, `"t"."created_at" >= `+param(*filter.CreatedSince))
	}

	if len(conds) == 0 {
		return "", args
	}
	return " where " + strings.Join(conds, " and "), args
}

func (m *pgTask) Find(ctx context.Context, filter kdb.TaskFilter) ([]kdb.Task, error) {
	where, args := whereClause(filter)
	rows, err := scanner.New[taskRow]().QueryAll(
		ctx, m.pool,
		selectTask+where+` order by "t"."created_at" desc, "t"."task_id" desc`,
		args...,
	)
	if err != nil {
		return nil, xe.Wrap(err)
	}
	return tasks(rows), nil
}

func tasks(rows []taskRow) []kdb.Task {
	ret := make([]kdb.Task, 0, len(rows))
	for _, r := range rows {
		ret = append(ret, r.Task())
	}
	return ret
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (m *pgTask) Create(ctx context.Context, param kdb.TaskParam) (*kdb.Task, error) {
	var created *kdb.Task
	err := kpool.InTx(ctx, m.pool, func(tx kpool.Tx) error {
		var taskId int
		if err := tx.QueryRow(
			ctx,
			`
			insert into "task"
				("title", "description", "due_date", "status", "estimated_time", "user_id", "created_by")
			values ($1, $2, $3, $4, $5, $6, $7)
			returning "task_id"
			`,
			param.Title, param.Description, param.DueDate, string(param.Status),
			param.EstimatedTime, param.UserId, nullable(param.CreatedBy),
		).Scan(&taskId); err != nil {
			if kpgerr.IsForeignKeyViolation(err) || kpgerr.IsInvalidText(err) {
				return xe.Wrap(kpgerr.Missing{Table: "app_user", Identity: "user_id=" + param.UserId})
			}
			return xe.Wrap(err)
		}

		t, err := get(ctx, tx, taskId)
		if err != nil {
			return err
		}
		created = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (m *pgTask) Update(ctx context.Context, taskId int, update kdb.TaskUpdate) (*kdb.Task, error) {
	args := []any{taskId}
	set := []string{`"updated_at" = now()`}
	assign := func(col string, v any) {
		args = append(args, v)
		set = append(set, fmt.Sprintf(`"%s" = $%d`, col, len(args)))
	}
	if update.Title != nil {
		assign("title", *update.Title)
	}
	if update.Description != nil {
		assign("description", *update.Description)
	}
	if update.DueDate != nil {
		assign("due_date", *update.DueDate)
	}
	if update.Status != nil {
		args = append(args, string(*update.Status))
		set = append(set, fmt.Sprintf(`"status" = $%d::"task_status"`, len(args)))
	}
	if update.EstimatedTime != nil {
		assign("estimated_time", *update.EstimatedTime)
	}
	if update.UserId != nil {
		assign("user_id", *update.UserId)
	}

	var updated *kdb.Task
	err := kpool.InTx(ctx, m.pool, func(tx kpool.Tx) error {
		ctag, err := tx.Exec(
			ctx,
			`update "task" set `+strings.Join(set, ", ")+` where "task_id" = $1`,
			args...,
		)
		if err != nil {
			if update.UserId != nil && (kpgerr.IsForeignKeyViolation(err) || kpgerr.IsInvalidText(err)) {
				return xe.Wrap(kpgerr.Missing{Table: "app_user", Identity: "user_id=" + *update.UserId})
			}
			return xe.Wrap(err)
		}
		if ctag.RowsAffected() == 0 {
			return xe.Wrap(kpgerr.Missing{Table: "task", Identity: fmt.Sprintf("task_id=%d", taskId)})
		}

		t, err := get(ctx, tx, taskId)
		if err != nil {
			return err
		}
		updated = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (m *pgTask) Delete(ctx context.Context, taskId int) error {
	ctag, err := m.pool.Exec(ctx, `delete from "task" where "task_id" = $1`, taskId)
	if err != nil {
		return xe.Wrap(err)
	}
	if ctag.RowsAffected() == 0 {
		return xe.Wrap(kpgerr.Missing{Table: "task", Identity: fmt.Sprintf("task_id=%d", taskId)})
	}
	return nil
}

func (m *pgTask) FindOverdue(ctx context.Context, before time.Time) ([]kdb.Task, error) {
	rows, err := scanner.New[taskRow]().QueryAll(
		ctx, m.pool,
		selectTask+`
		where "t"."due_date" < $1 and "t"."status" <> 'DONE'
		order by "t"."due_date", "t"."task_id"
		`,
		before,
	)
	if err != nil {
		return nil, xe.Wrap(err)
	}
	return tasks(rows), nil
}
