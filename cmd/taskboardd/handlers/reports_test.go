package handlers_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/opst/taskboard/cmd/taskboardd/handlers"
	httptestutil "github.com/opst/taskboard/internal/testutils/http"
	kdb "github.com/opst/taskboard/pkg/db"
	"github.com/opst/taskboard/pkg/db/mocks"
	"github.com/opst/taskboard/pkg/reports"
)

func TestGetReportsHandler(t *testing.T) {
	now := time.Date(2026, 10, 19, 15, 0, 0, 0, time.UTC)

	reported := func() []kdb.Task {
		done := taskOf(1, ana, ana.Id)
		done.Status = kdb.TaskDone
		done.CreatedAt = now.AddDate(0, 0, -2)
		done.UpdatedAt = now.AddDate(0, 0, -1)

		doing := taskOf(2, bruno, ana.Id)
		doing.Status = kdb.TaskInProgress
		doing.CreatedAt = now.AddDate(0, 0, -1)

		todo := taskOf(3, ana, ana.Id)
		todo.CreatedAt = now

		return []kdb.Task{done, doing, todo}
	}

	type then struct {
		status int
		since  time.Time
	}

	for name, testcase := range map[string]struct {
		when string
		then
	}{
		"default range is 30 days": {
			when: "",
			then: then{status: http.StatusOK, since: reports.Since(now, 30, time.UTC)},
		},
		"range is given": {
			when: "?range=7",
			then: then{status: http.StatusOK, since: reports.Since(now, 7, time.UTC)},
		},
		"non-integer range is bad request": {
			when: "?range=week",
			then: then{status: http.StatusBadRequest},
		},
		"negative range is bad request": {
			when: "?range=-1",
			then: then{status: http.StatusBadRequest},
		},
		"too long range is bad request": {
			when: "?range=366",
			then: then{status: http.StatusBadRequest},
		},
	} {
		t.Run(name, func(t *testing.T) {
			tasks := mocks.NewTaskInterface()
			tasks.Impl.Find = func(context.Context, kdb.TaskFilter) ([]kdb.Task, error) {
				return reported(), nil
			}
			svc := reports.New(tasks, time.UTC, func() time.Time { return now })

			e := echo.New()
			c, resp := httptestutil.Get(e, "/api/reports"+testcase.when)
			err := handlers.GetReportsHandler(svc)(signedIn(c, ana))

			if status := httptestutil.StatusOf(err, resp); status != testcase.then.status {
				t.Fatalf("status: (actual, expected) = (%d, %d): %v", status, testcase.then.status, err)
			}
			if testcase.then.status != http.StatusOK {
				if tasks.Calls.Find.Times() != 0 {
					t.Error("tasks should not be queried")
				}
				return
			}

			filter := tasks.Calls.Find[0]
			if filter.CreatedSince == nil || !filter.CreatedSince.Equal(testcase.then.since) {
				t.Errorf("CreatedSince: %v", filter.CreatedSince)
			}
			if filter.TeamId != vendas || filter.Unrestricted {
				t.Errorf("report is not limited to the visibility: %+v", filter)
			}

			body := decode[map[string]any](t, resp)
			metrics, ok := body["metrics"].(map[string]any)
			if !ok {
				t.Fatalf("no metrics: %s", resp.Body.String())
			}
			if metrics["total"] != float64(3) || metrics["completed"] != float64(1) ||
				metrics["inProgress"] != float64(1) || metrics["rate"] != "33.3" {
				t.Errorf("unexpected metrics: %v", metrics)
			}
		})
	}
}
