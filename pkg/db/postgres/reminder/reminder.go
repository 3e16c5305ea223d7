package reminder

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

type pgReminder struct {
	pool kpool.Pool
}

var _ kdb.ReminderInterface = &pgReminder{}

func New(pool kpool.Pool) kdb.ReminderInterface {
	return &pgReminder{pool: pool}
}

type reminderRow struct {
	ReminderId  string
	Content     string
	IsCompleted bool
	UserId      string
	CreatedAt   time.Time
}

func (r reminderRow) Reminder() kdb.Reminder {
	return kdb.Reminder{
		Id:          r.ReminderId,
		Content:     r.Content,
		IsCompleted: r.IsCompleted,
		UserId:      r.UserId,
		CreatedAt:   r.CreatedAt,
	}
}

const columns = `
"reminder_id"::text as "reminder_id", "content", "is_completed",
"user_id"::text as "user_id", "created_at"
`

func one(rows []reminderRow, reminderId string) (*kdb.Reminder, error) {
	switch len(rows) {
	case 0:
		return nil, xe.Wrap(kpgerr.Missing{Table: "reminder", Identity: "reminder_id=" + reminderId})
	case 1:
		r := rows[0].Reminder()
		return &r, nil
	default:
		return nil, xe.Wrap(kpgerr.TooMuch{Table: "reminder", Identity: "reminder_id=" + reminderId, Expected: 1})
	}
}

func (m *pgReminder) Get(ctx context.Context, reminderId string) (*kdb.Reminder, error) {
	rows, err := scanner.New[reminderRow]().QueryAll(
		ctx, m.pool,
		`select `+columns+` from "reminder" where "reminder_id"::text = $1`,
		reminderId,
	)
	if err != nil {
		return nil, xe.Wrap(err)
	}
	return one(rows, reminderId)
}

func (m *pgReminder) Find(ctx context.Context, userId string) ([]kdb.Reminder, error) {
	rows, err := scanner.New[reminderRow]().QueryAll(
		ctx, m.pool,
		`select `+columns+` from "reminder" where "user_id"::text = $1 order by "created_at" desc`,
		userId,
	)
	if err != nil {
		return nil, xe.Wrap(err)
	}
	ret := make([]kdb.Reminder, 0, len(rows))
	for _, r := range rows {
		ret = append(ret, r.Reminder())
	}
	return ret, nil
}

func (m *pgReminder) Create(ctx context.Context, userId string, content string) (*kdb.Reminder, error) {
	reminderId := uuid.NewString()
	rows, err := scanner.New[reminderRow]().QueryAll(
		ctx, m.pool,
		`
		insert into "reminder" ("reminder_id", "content", "user_id") values ($1, $2, $3)
		returning `+columns,
		reminderId, strings.TrimSpace(content), userId,
	)
	if err != nil {
		if kpgerr.IsForeignKeyViolation(err) || kpgerr.IsInvalidText(err) {
			return nil, xe.Wrap(kpgerr.Missing{Table: "app_user", Identity: "user_id=" + userId})
		}
		return nil, xe.Wrap(err)
	}
	return one(rows, reminderId)
}

func (m *pgReminder) Update(ctx context.Context, reminderId string, content *string, isCompleted *bool) (*kdb.Reminder, error) {
	rows, err := scanner.New[reminderRow]().QueryAll(
		ctx, m.pool,
		`
		update "reminder"
		set "content" = coalesce($2, "content"), "is_completed" = coalesce($3, "is_completed")
		where "reminder_id"::text = $1
		returning `+columns,
		reminderId, content, isCompleted,
	)
	if err != nil {
		return nil, xe.Wrap(err)
	}
	return one(rows, reminderId)
}

func (m *pgReminder) Delete(ctx context.Context, reminderId string) error {
	ctag, err := m.pool.Exec(ctx, `delete from "reminder" where "reminder_id"::text = $1`, reminderId)
	if err != nil {
		return xe.Wrap(err)
	}
	if ctag.RowsAffected() == 0 {
		return xe.Wrap(kpgerr.Missing{Table: "reminder", Identity: "reminder_id=" + reminderId})
	}
	return nil
}
