// Package tables puts records into tables directly, for tests.
//
// Note: this package DOES NOT verify/guarantee consistencies of records.
package tables

import (
	"context"
	"fmt"
	"testing"

	kpool "github.com/opst/taskboard/pkg/db/postgres/pool"
)

// Operation is a set of records to be inserted.
//
// Records are inserted in the order of fields.
type Operation struct {
	Teams        []Team
	Users        []User
	Tasks        []Task
	Reminders    []Reminder
	Integrations []Integration
	Settings     *Settings
}

// Apply inserts records in a transaction. Failures are fatal.
func (o Operation) Apply(ctx context.Context, t *testing.T, pool kpool.Pool) {
	t.Helper()
	if err := kpool.InTx(ctx, pool, func(tx kpool.Tx) error {
		return o.insert(ctx, tx)
	}); err != nil {
		t.Fatalf("failed to insert records: %v", err)
	}
}

func withCause(v any, reason error) error {
	return fmt.Errorf("error caused inserting record %+v: %w", v, reason)
}

func (o Operation) insert(ctx context.Context, conn kpool.Queryer) error {
	for _, r := range o.Teams {
		if _, err := conn.Exec(
			ctx, `insert into "team" ("team_id", "name") values ($1, $2)`,
			r.TeamId, r.Name,
		); err != nil {
			return withCause(r, err)
		}
	}

	for _, r := range o.Users {
		role := r.Role
		if role == "" {
			role = "COLLABORATOR"
		}
		if _, err := conn.Exec(
			ctx,
			`
			insert into "app_user" ("user_id", "name", "email", "password", "role", "team_id")
			values ($1, $2, $3, $4, $5, $6)
			`,
			r.UserId, r.Name, r.Email, r.Password, role, r.TeamId,
		); err != nil {
			return withCause(r, err)
		}
	}

	for _, r := range o.Tasks {
		status := r.Status
		if status == "" {
			status = "TODO"
		}
		if _, err := conn.Exec(
			ctx,
			`
			insert into "task" (
				"task_id", "title", "description", "due_date", "status", "estimated_time",
				"user_id", "created_by", "created_at", "updated_at"
			)
			values (
				$1, $2, $3, $4, $5, $6, $7, $8,
				coalesce($9, now()), coalesce($10, now())
			)
			`,
			r.TaskId, r.Title, r.Description, r.DueDate, status, r.EstimatedTime,
			r.UserId, r.CreatedBy, zeroAsNull(r.CreatedAt), zeroAsNull(r.UpdatedAt),
		); err != nil {
			return withCause(r, err)
		}
	}
	if len(o.Tasks) != 0 {
		if _, err := conn.Exec(
			ctx,
			`select setval(pg_get_serial_sequence('"task"', 'task_id'), (select max("task_id") from "task"))`,
		); err != nil {
			return err
		}
	}

	for _, r := range o.Reminders {
		if _, err := conn.Exec(
			ctx,
			`
			insert into "reminder" ("reminder_id", "content", "is_completed", "user_id", "created_at")
			values ($1, $2, $3, $4, coalesce($5, now()))
			`,
			r.ReminderId, r.Content, r.IsCompleted, r.UserId, zeroAsNull(r.CreatedAt),
		); err != nil {
			return withCause(r, err)
		}
	}

	for _, r := range o.Integrations {
		if _, err := conn.Exec(
			ctx,
			`
			insert into "integration" (
				"integration_id", "provider", "access_token", "refresh_token", "expires_at",
				"account_email", "user_id", "created_at"
			)
			values ($1, $2, $3, $4, $5, $6, $7, coalesce($8, now()))
			`,
			r.IntegrationId, r.Provider, r.AccessToken, r.RefreshToken, r.ExpiresAt,
			r.AccountEmail, r.UserId, zeroAsNull(r.CreatedAt),
		); err != nil {
			return withCause(r, err)
		}
	}

	if s := o.Settings; s != nil {
		if _, err := conn.Exec(
			ctx,
			`
			insert into "settings" ("settings_id", "api_url", "api_key", "instance_name", "notification_phone")
			values (1, $1, $2, $3, $4)
			`,
			s.ApiUrl, s.ApiKey, s.InstanceName, s.NotificationPhone,
		); err != nil {
			return withCause(s, err)
		}
	}

	return nil
}

func zeroAsNull[T interface{ IsZero() bool }](v T) *T {
	if v.IsZero() {
		return nil
	}
	return &v
}
