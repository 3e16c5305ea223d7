package handlers_test

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/opst/taskboard/cmd/taskboardd/handlers"
	httptestutil "github.com/opst/taskboard/internal/testutils/http"
	apiusers "github.com/opst/taskboard/pkg/api/types/users"
	"github.com/opst/taskboard/pkg/auth"
	"github.com/opst/taskboard/pkg/auth/keychain"
	"github.com/opst/taskboard/pkg/auth/keychain/key"
	"github.com/opst/taskboard/pkg/auth/password"
	"github.com/opst/taskboard/pkg/auth/session"
	kdb "github.com/opst/taskboard/pkg/db"
	"github.com/opst/taskboard/pkg/db/mocks"
	"github.com/opst/taskboard/pkg/utils/try"
)

const strongPassword = "Passw0rd!"

// longer than bcrypt can hash.
var longPassword = strongPassword + strings.Repeat("x", 80)

func sessionManager(t *testing.T) *session.Manager {
	t.Helper()
	kc := try.To(keychain.New(
		context.Background(), "session", mocks.NewInMemoryKeychain(),
		key.HS256(2*time.Hour, 32), time.Hour,
	)).OrFatal(t)
	return session.New(kc, session.Config{Cookie: "sid", TTL: time.Hour})
}

func sessionCookieOf(resp *http.Response) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == "sid" {
			return c
		}
	}
	return nil
}

func TestRegisterHandler(t *testing.T) {
	type then struct {
		status  int
		created *kdb.UserParam
	}

	for name, testcase := range map[string]struct {
		when     map[string]any
		conflict bool
		then
	}{
		"it creates a collaborator with normalized email": {
			when: map[string]any{"name": " Ana ", "email": "Ana@Example.com", "password": strongPassword},
			then: then{status: http.StatusOK, created: &kdb.UserParam{
				Name: "Ana", Email: "ana@example.com", Role: kdb.RoleCollaborator,
			}},
		},
		"weak password is bad request": {
			when: map[string]any{"name": "Ana", "email": "ana@example.com", "password": "password"},
			then: then{status: http.StatusBadRequest},
		},
		"too long password is bad request": {
			when: map[string]any{"name": "Ana", "email": "ana@example.com", "password": longPassword},
			then: then{status: http.StatusBadRequest},
		},
		"broken email is bad request": {
			when: map[string]any{"name": "Ana", "email": "ana@", "password": strongPassword},
			then: then{status: http.StatusBadRequest},
		},
		"name is required": {
			when: map[string]any{"name": " ", "email": "ana@example.com", "password": strongPassword},
			then: then{status: http.StatusBadRequest},
		},
		"email in use is conflict": {
			when:     map[string]any{"name": "Ana", "email": "ana@example.com", "password": strongPassword},
			conflict: true,
			then:     then{status: http.StatusConflict},
		},
	} {
		t.Run(name, func(t *testing.T) {
			users := mocks.NewUserInterface()
			users.Impl.Create = func(_ context.Context, p kdb.UserParam) (*kdb.User, error) {
				if testcase.conflict {
					return nil, kdb.ErrConflict
				}
				return &kdb.User{Id: "u-new", Name: p.Name, Email: p.Email, Role: p.Role}, nil
			}

			e := echo.New()
			c, resp := httptestutil.Post(
				e, "/api/auth/register", httptestutil.JSON(testcase.when),
				httptestutil.ContentType(echo.MIMEApplicationJSON),
			)
			err := handlers.RegisterHandler(auth.New(users), sessionManager(t))(c)

			if status := httptestutil.StatusOf(err, resp); status != testcase.then.status {
				t.Fatalf("status: (actual, expected) = (%d, %d): %v", status, testcase.then.status, err)
			}
			if testcase.then.created == nil {
				if sessionCookieOf(resp.Result()) != nil {
					t.Error("session should not be issued")
				}
				return
			}

			if users.Calls.Create.Times() != 1 {
				t.Fatalf("Create is called %d times", users.Calls.Create.Times())
			}
			actual := users.Calls.Create[0]
			if !password.Match(actual.PasswordHash, strongPassword) {
				t.Error("password is not hashed")
			}
			actual.PasswordHash = ""
			if actual != *testcase.then.created {
				t.Errorf("created: (actual, expected) = (%+v, %+v)", actual, *testcase.then.created)
			}

			if sessionCookieOf(resp.Result()) == nil {
				t.Error("session is not issued")
			}
			body := decode[apiusers.Session](t, resp)
			if !body.Success || body.User == nil || body.User.Id != "u-new" || body.User.Role != "COLLABORATOR" {
				t.Errorf("unexpected body: %s", resp.Body.String())
			}
		})
	}
}

func TestLoginHandler(t *testing.T) {
	hash := try.To(password.Hash(strongPassword)).OrFatal(t)

	users := mocks.NewUserInterface()
	users.Impl.Credential = func(_ context.Context, email string) (*kdb.User, string, error) {
		if email != ana.Email {
			return nil, "", kdb.ErrMissing
		}
		u := ana
		return &u, hash, nil
	}
	svc := auth.New(users)
	sess := sessionManager(t)

	for name, testcase := range map[string]struct {
		when apiusers.Login
		then int
	}{
		"right password signs in": {
			when: apiusers.Login{Email: " ANA@example.com", Password: strongPassword},
			then: http.StatusOK,
		},
		"wrong password is rejected": {
			when: apiusers.Login{Email: ana.Email, Password: "Wr0ng!pass"},
			then: http.StatusUnauthorized,
		},
		"unknown email is rejected": {
			when: apiusers.Login{Email: "who@example.com", Password: strongPassword},
			then: http.StatusUnauthorized,
		},
		"empty credential is rejected": {
			when: apiusers.Login{},
			then: http.StatusUnauthorized,
		},
	} {
		t.Run(name, func(t *testing.T) {
			e := echo.New()
			c, resp := httptestutil.Post(
				e, "/api/auth/login", httptestutil.JSON(testcase.when),
				httptestutil.ContentType(echo.MIMEApplicationJSON),
			)
			err := handlers.LoginHandler(svc, sess)(c)

			if status := httptestutil.StatusOf(err, resp); status != testcase.then {
				t.Fatalf("status: (actual, expected) = (%d, %d): %v", status, testcase.then, err)
			}
			cookie := sessionCookieOf(resp.Result())
			if testcase.then != http.StatusOK {
				if cookie != nil {
					t.Error("session should not be issued")
				}
				return
			}

			if cookie == nil {
				t.Fatal("session is not issued")
			}
			userId := try.To(sess.Verify(context.Background(), cookie.Value)).OrFatal(t)
			if userId != ana.Id {
				t.Errorf("session is issued for %s", userId)
			}
		})
	}
}

func TestLogoutHandler(t *testing.T) {
	e := echo.New()
	c, resp := httptestutil.Post(e, "/api/auth/logout", nil)
	if err := handlers.LogoutHandler(sessionManager(t))(c); err != nil {
		t.Fatal(err)
	}

	cookie := sessionCookieOf(resp.Result())
	if cookie == nil || cookie.Value != "" || cookie.MaxAge >= 0 {
		t.Errorf("session cookie is not cleared: %+v", cookie)
	}
	if body := decode[apiusers.Session](t, resp); !body.Success || body.User != nil {
		t.Errorf("unexpected body: %s", resp.Body.String())
	}
}

func TestMeHandler(t *testing.T) {
	t.Run("it responds the signed in user", func(t *testing.T) {
		e := echo.New()
		c, resp := httptestutil.Get(e, "/api/auth/me")
		if err := handlers.MeHandler()(signedIn(c, ana)); err != nil {
			t.Fatal(err)
		}
		body := decode[apiusers.User](t, resp)
		if body.Id != ana.Id || body.TeamName != "Vendas" {
			t.Errorf("unexpected body: %s", resp.Body.String())
		}
	})

	t.Run("it rejects anonymous requests", func(t *testing.T) {
		e := echo.New()
		c, resp := httptestutil.Get(e, "/api/auth/me")
		err := handlers.MeHandler()(c)
		if status := httptestutil.StatusOf(err, resp); status != http.StatusUnauthorized {
			t.Errorf("status: %d", status)
		}
	})
}

func TestPutProfileHandler(t *testing.T) {
	type then struct {
		status      int
		newPassword bool
	}

	for name, testcase := range map[string]struct {
		when map[string]any
		then
	}{
		"it changes name and email": {
			when: map[string]any{"name": "Ana Maria", "email": "ana.maria@example.com"},
			then: then{status: http.StatusOK},
		},
		"it changes password too": {
			when: map[string]any{"name": "Ana", "email": "ana@example.com", "password": strongPassword},
			then: then{status: http.StatusOK, newPassword: true},
		},
		"weak password is bad request": {
			when: map[string]any{"name": "Ana", "email": "ana@example.com", "password": "short"},
			then: then{status: http.StatusBadRequest},
		},
		"too long password is bad request": {
			when: map[string]any{"name": "Ana", "email": "ana@example.com", "password": longPassword},
			then: then{status: http.StatusBadRequest},
		},
	} {
		t.Run(name, func(t *testing.T) {
			users := mocks.NewUserInterface()
			users.Impl.UpdateProfile = func(_ context.Context, userId string, p kdb.UserProfile) (*kdb.User, error) {
				u := everyone[userId]
				u.Name, u.Email = p.Name, p.Email
				return &u, nil
			}

			e := echo.New()
			c, resp := httptestutil.Put(
				e, "/api/auth/profile", httptestutil.JSON(testcase.when),
				httptestutil.ContentType(echo.MIMEApplicationJSON),
			)
			err := handlers.PutProfileHandler(auth.New(users))(signedIn(c, ana))

			if status := httptestutil.StatusOf(err, resp); status != testcase.then.status {
				t.Fatalf("status: (actual, expected) = (%d, %d): %v", status, testcase.then.status, err)
			}
			if testcase.then.status != http.StatusOK {
				if users.Calls.UpdateProfile.Times() != 0 {
					t.Error("profile should not be updated")
				}
				return
			}

			call := users.Calls.UpdateProfile[0]
			if call.UserId != ana.Id {
				t.Errorf("updated user: %s", call.UserId)
			}
			if (call.Profile.PasswordHash != nil) != testcase.then.newPassword {
				t.Errorf("password hash: %v", call.Profile.PasswordHash)
			}
			if body := decode[apiusers.User](t, resp); body.Name != testcase.when["name"] {
				t.Errorf("unexpected body: %s", resp.Body.String())
			}
		})
	}
}
