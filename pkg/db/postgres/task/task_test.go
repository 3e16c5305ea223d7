package task_test

import (
	"context"
	"errors"
	"testing"
	"time"

	testctx "github.com/opst/taskboard/internal/testutils/context"
	kdb "github.com/opst/taskboard/pkg/db"
	"github.com/opst/taskboard/pkg/db/postgres/pool/testenv"
	"github.com/opst/taskboard/pkg/db/postgres/tables"
	kpgtask "github.com/opst/taskboard/pkg/db/postgres/task"
	"github.com/opst/taskboard/pkg/utils/try"
)

const (
	team1 = "00000000-0000-0000-0000-0000000000a1"
	team2 = "00000000-0000-0000-0000-0000000000a2"

	ana   = "00000000-0000-0000-0000-000000000001" // team1
	bruno = "00000000-0000-0000-0000-000000000002" // team1
	carla = "00000000-0000-0000-0000-000000000003" // team2
	davi  = "00000000-0000-0000-0000-000000000004" // no team
)

func ref[T any](v T) *T { return &v }

var jan = func(day int) time.Time {
	return time.Date(2024, 1, day, 12, 0, 0, 0, time.UTC)
}

func given() tables.Operation {
	return tables.Operation{
		Teams: []tables.Team{
			{TeamId: team1, Name: "Vendas"},
			{TeamId: team2, Name: "Suporte"},
		},
		Users: []tables.User{
			{UserId: ana, Name: "Ana", Email: "ana@example.com", TeamId: ref(team1)},
			{UserId: bruno, Name: "Bruno", Email: "bruno@example.com", TeamId: ref(team1)},
			{UserId: carla, Name: "Carla", Email: "carla@example.com", TeamId: ref(team2)},
			{UserId: davi, Name: "Davi", Email: "davi@example.com"},
		},
		Tasks: []tables.Task{
			{TaskId: 1, Title: "ana-1", DueDate: jan(10), UserId: ref(ana), CreatedBy: ref(ana), CreatedAt: jan(1)},
			{TaskId: 2, Title: "bruno-1", DueDate: jan(5), Status: "IN_PROGRESS", UserId: ref(bruno), CreatedAt: jan(2)},
			{TaskId: 3, Title: "carla-1", DueDate: jan(3), Status: "DONE", UserId: ref(carla), CreatedAt: jan(3)},
			{TaskId: 4, Title: "davi-1", DueDate: jan(4), UserId: ref(davi), CreatedAt: jan(4)},
			{TaskId: 5, Title: "legacy", DueDate: jan(1), CreatedAt: jan(5)},
		},
	}
}

func ids(ts []kdb.Task) []int {
	ret := []int{}
	for _, t := range ts {
		ret = append(ret, t.Id)
	}
	return ret
}

func eqInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestTask_Find(t *testing.T) {
	ctx := testctx.WithTest(context.Background(), t)
	broaker := testenv.NewPoolBroaker(ctx, t)

	for name, testcase := range map[string]struct {
		when kdb.TaskFilter
		then []int
	}{
		"unrestricted, newer first": {
			when: kdb.TaskFilter{Unrestricted: true},
			then: []int{5, 4, 3, 2, 1},
		},
		"own tasks": {
			when: kdb.TaskFilter{UserIds: []string{ana}},
			then: []int{1},
		},
		"own or team": {
			when: kdb.TaskFilter{UserIds: []string{ana}, TeamId: team1},
			then: []int{2, 1},
		},
		"team, narrowed to an assignee": {
			when: kdb.TaskFilter{UserIds: []string{ana}, TeamId: team1, Assignee: bruno},
			then: []int{2},
		},
		"created since": {
			when: kdb.TaskFilter{Unrestricted: true, CreatedSince: ref(jan(3))},
			then: []int{5, 4, 3},
		},
		"nothing": {
			when: kdb.TaskFilter{},
			then: []int{},
		},
	} {
		t.Run(name, func(t *testing.T) {
			pool := broaker.GetPool(ctx, t)
			given().Apply(ctx, t, pool)

			actual := try.To(kpgtask.New(pool).Find(ctx, testcase.when)).OrFatal(t)
			if !eqInts(ids(actual), testcase.then) {
				t.Errorf("ids: (actual, expected) = (%v, %v)", ids(actual), testcase.then)
			}
		})
	}

	t.Run("it includes assignee summary", func(t *testing.T) {
		pool := broaker.GetPool(ctx, t)
		given().Apply(ctx, t, pool)

		actual := try.To(kpgtask.New(pool).Find(ctx, kdb.TaskFilter{UserIds: []string{ana}})).OrFatal(t)
		if len(actual) != 1 {
			t.Fatalf("unexpected tasks: %+v", actual)
		}
		u := actual[0].User
		if u == nil || u.UserId != ana || u.Name != "Ana" || u.Email != "ana@example.com" || *u.TeamId != team1 {
			t.Errorf("unexpected assignee: %+v", u)
		}
	})
}

func TestTask_CreateUpdateDelete(t *testing.T) {
	ctx := testctx.WithTest(context.Background(), t)
	broaker := testenv.NewPoolBroaker(ctx, t)

	t.Run("it creates a task", func(t *testing.T) {
		pool := broaker.GetPool(ctx, t)
		given().Apply(ctx, t, pool)
		testee := kpgtask.New(pool)

		param := try.To(kdb.TaskParam{
			Title: "relatório", DueDate: jan(20), EstimatedTime: ref(kdb.EstimateMedium),
			UserId: bruno, CreatedBy: ana,
		}.Validate()).OrFatal(t)

		created := try.To(testee.Create(ctx, param)).OrFatal(t)
		if created.Id <= 5 {
			t.Errorf("id should be after existing tasks: %d", created.Id)
		}
		if created.Status != kdb.TaskTodo || *created.UserId != bruno || *created.CreatedBy != ana {
			t.Errorf("unexpected task: %+v", created)
		}
		if !created.DueDate.Equal(jan(20)) {
			t.Errorf("dueDate: %s", created.DueDate)
		}
	})

	t.Run("it fails to create a task for an unknown user", func(t *testing.T) {
		pool := broaker.GetPool(ctx, t)
		given().Apply(ctx, t, pool)

		_, err := kpgtask.New(pool).Create(ctx, kdb.TaskParam{
			Title: "x", DueDate: jan(20), Status: kdb.TaskTodo,
			UserId: "00000000-0000-0000-0000-00000000ffff",
		})
		if !errors.Is(err, kdb.ErrMissing) {
			t.Errorf("expected ErrMissing, but got %v", err)
		}
	})

	t.Run("it updates given fields only, and refreshes updatedAt", func(t *testing.T) {
		pool := broaker.GetPool(ctx, t)
		given().Apply(ctx, t, pool)
		testee := kpgtask.New(pool)

		before := try.To(testee.Get(ctx, 2)).OrFatal(t)
		after := try.To(testee.Update(ctx, 2, kdb.TaskUpdate{
			Status: ref(kdb.TaskDone), UserId: ref(ana),
		})).OrFatal(t)

		if after.Status != kdb.TaskDone || *after.UserId != ana || after.User.Name != "Ana" {
			t.Errorf("unexpected task: %+v", after)
		}
		if after.Title != before.Title || !after.DueDate.Equal(before.DueDate) {
			t.Errorf("untouched fields are changed: %+v", after)
		}
		if !after.UpdatedAt.After(before.UpdatedAt) {
			t.Errorf("updatedAt is not refreshed: %s -> %s", before.UpdatedAt, after.UpdatedAt)
		}
	})

	t.Run("it reports missing task on update and delete", func(t *testing.T) {
		pool := broaker.GetPool(ctx, t)
		given().Apply(ctx, t, pool)
		testee := kpgtask.New(pool)

		if _, err := testee.Update(ctx, 99, kdb.TaskUpdate{Title: ref("x")}); !errors.Is(err, kdb.ErrMissing) {
			t.Errorf("update: expected ErrMissing, but got %v", err)
		}
		if err := testee.Delete(ctx, 99); !errors.Is(err, kdb.ErrMissing) {
			t.Errorf("delete: expected ErrMissing, but got %v", err)
		}
		if _, err := testee.Get(ctx, 99); !errors.Is(err, kdb.ErrMissing) {
			t.Errorf("get: expected ErrMissing, but got %v", err)
		}
	})

	t.Run("it deletes a task", func(t *testing.T) {
		pool := broaker.GetPool(ctx, t)
		given().Apply(ctx, t, pool)
		testee := kpgtask.New(pool)

		if err := testee.Delete(ctx, 1); err != nil {
			t.Fatal(err)
		}
		if _, err := testee.Get(ctx, 1); !errors.Is(err, kdb.ErrMissing) {
			t.Errorf("task is not deleted: %v", err)
		}
	})
}

func TestTask_FindOverdue(t *testing.T) {
	ctx := testctx.WithTest(context.Background(), t)
	pool := testenv.NewPoolBroaker(ctx, t).GetPool(ctx, t)
	given().Apply(ctx, t, pool)

	// due before Jan 5th 00:00 and not done: legacy(1st), davi-1(4th). carla-1 is done.
	actual := try.To(kpgtask.New(pool).FindOverdue(
		ctx, time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC),
	)).OrFatal(t)

	if expected := []int{5, 4}; !eqInts(ids(actual), expected) {
		t.Errorf("ids: (actual, expected) = (%v, %v)", ids(actual), expected)
	}
}
