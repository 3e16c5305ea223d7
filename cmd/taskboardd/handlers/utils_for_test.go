package handlers_test

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/opst/taskboard/pkg/auth/session"
	kdb "github.com/opst/taskboard/pkg/db"
)

func ref[T any](v T) *T {
	return &v
}

var (
	vendas  = "team-vendas"
	suporte = "team-suporte"

	admin = kdb.User{Id: "u-admin", Name: "Admin", Email: "admin@example.com", Role: kdb.RoleAdmin}
	ana   = kdb.User{
		Id: "u-ana", Name: "Ana", Email: "ana@example.com", Role: kdb.RoleCollaborator,
		TeamId: &vendas, TeamName: ref("Vendas"),
	}
	bruno = kdb.User{
		Id: "u-bruno", Name: "Bruno", Email: "bruno@example.com", Role: kdb.RoleCollaborator,
		TeamId: &vendas, TeamName: ref("Vendas"),
	}
	carla = kdb.User{
		Id: "u-carla", Name: "Carla", Email: "carla@example.com", Role: kdb.RoleCollaborator,
		TeamId: &suporte, TeamName: ref("Suporte"),
	}
	davi = kdb.User{Id: "u-davi", Name: "Davi", Email: "davi@example.com", Role: kdb.RoleCollaborator}
)

var everyone = map[string]kdb.User{
	admin.Id: admin, ana.Id: ana, bruno.Id: bruno, carla.Id: carla, davi.Id: davi,
}

// signedIn marks the request as authenticated by u.
func signedIn(c echo.Context, u kdb.User) echo.Context {
	session.Set(c, u)
	return c
}

func withParam(c echo.Context, name string, value string) echo.Context {
	c.SetParamNames(name)
	c.SetParamValues(value)
	return c
}

// taskOf builds a task assigned to u.
func taskOf(id int, u kdb.User, createdBy string) kdb.Task {
	uid := u.Id
	return kdb.Task{
		Id:        id,
		Title:     "task",
		DueDate:   time.Date(2026, 10, 25, 0, 0, 0, 0, time.UTC),
		Status:    kdb.TaskTodo,
		UserId:    &uid,
		CreatedBy: &createdBy,
		User:      &kdb.Assignee{UserId: u.Id, Name: u.Name, Email: u.Email, TeamId: u.TeamId},
		CreatedAt: time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC),
		UpdatedAt: time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC),
	}
}

func decode[T any](t *testing.T, resp *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(resp.Body.Bytes(), &v); err != nil {
		t.Fatalf("response is not json: %s (%s)", err, resp.Body.String())
	}
	return v
}
