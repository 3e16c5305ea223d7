package session_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/opst/taskboard/internal/testutils/http"
	"github.com/opst/taskboard/pkg/auth/keychain"
	"github.com/opst/taskboard/pkg/auth/keychain/key"
	"github.com/opst/taskboard/pkg/auth/session"
	kdb "github.com/opst/taskboard/pkg/db"
	"github.com/opst/taskboard/pkg/db/mocks"
	"github.com/opst/taskboard/pkg/utils/try"
)

func newManager(t *testing.T, ttl time.Duration) *session.Manager {
	t.Helper()
	kc := try.To(keychain.New(
		context.Background(), "session", mocks.NewInMemoryKeychain(),
		key.HS256(2*time.Hour, 32), time.Hour,
	)).OrFatal(t)
	return session.New(kc, session.Config{Cookie: "sid", TTL: ttl})
}

func TestIssueAndVerify(t *testing.T) {
	ctx := context.Background()
	testee := newManager(t, time.Hour)

	token, cookie, err := testee.Issue(ctx, "user-1")
	if err != nil {
		t.Fatal(err)
	}
	if cookie.Name != "sid" || cookie.Value != token || !cookie.HttpOnly || cookie.Path != "/" {
		t.Errorf("unexpected cookie: %+v", cookie)
	}

	if userId := try.To(testee.Verify(ctx, token)).OrFatal(t); userId != "user-1" {
		t.Errorf("userId: %s", userId)
	}

	t.Run("tokens of other keychains are rejected", func(t *testing.T) {
		other := newManager(t, time.Hour)
		if _, err := other.Verify(ctx, token); !errors.Is(err, session.ErrUnauthenticated) {
			t.Errorf("expected ErrUnauthenticated, but got %v", err)
		}
	})

	t.Run("expired sessions are rejected", func(t *testing.T) {
		testee := newManager(t, time.Nanosecond)
		token, _, err := testee.Issue(ctx, "user-1")
		if err != nil {
			t.Fatal(err)
		}
		time.Sleep(1100 * time.Millisecond)
		if _, err := testee.Verify(ctx, token); !errors.Is(err, session.ErrUnauthenticated) {
			t.Errorf("expected ErrUnauthenticated, but got %v", err)
		}
	})

	t.Run("Clear expires the cookie", func(t *testing.T) {
		c := testee.Clear()
		if c.Name != "sid" || c.Value != "" || c.MaxAge >= 0 {
			t.Errorf("unexpected cookie: %+v", c)
		}
	})
}

func TestMiddleware(t *testing.T) {
	ctx := context.Background()
	testee := newManager(t, time.Hour)
	token, cookie, err := testee.Issue(ctx, "user-1")
	if err != nil {
		t.Fatal(err)
	}
	team := "team-1"
	user := kdb.User{Id: "user-1", Name: "Ana", Role: kdb.RoleCollaborator, TeamId: &team}

	type when struct {
		opts    []http.RequestOption
		userErr error
	}
	type then struct {
		status  int
		reached bool
	}
	for name, testcase := range map[string]struct {
		when when
		then then
	}{
		"cookie": {
			when: when{opts: []http.RequestOption{http.WithCookie(cookie)}},
			then: then{status: 200, reached: true},
		},
		"bearer": {
			when: when{opts: []http.RequestOption{http.Bearer(token)}},
			then: then{status: 200, reached: true},
		},
		"no token": {
			then: then{status: 401},
		},
		"broken token": {
			when: when{opts: []http.RequestOption{http.Bearer("broken")}},
			then: then{status: 401},
		},
		"deleted user": {
			when: when{opts: []http.RequestOption{http.Bearer(token)}, userErr: kdb.ErrMissing},
			then: then{status: 401},
		},
		"database error": {
			when: when{opts: []http.RequestOption{http.Bearer(token)}, userErr: errors.New("fake")},
			then: then{status: 500},
		},
	} {
		t.Run(name, func(t *testing.T) {
			users := mocks.NewUserInterface()
			users.Impl.Get = func(ctx context.Context, userId string) (*kdb.User, error) {
				if testcase.when.userErr != nil {
					return nil, testcase.when.userErr
				}
				if userId != "user-1" {
					t.Errorf("unexpected userId: %s", userId)
				}
				return &user, nil
			}

			reached := false
			handler := testee.Middleware(users)(func(c echo.Context) error {
				reached = true
				p, err := session.PrincipalOf(c)
				if err != nil {
					t.Fatal(err)
				}
				if p.UserId != "user-1" || p.TeamId == nil || *p.TeamId != team {
					t.Errorf("unexpected principal: %+v", p)
				}
				return c.NoContent(200)
			})

			e := echo.New()
			c, resp := http.Get(e, "/api/tasks", testcase.when.opts...)
			err := handler(c)
			if status := http.StatusOf(err, resp); status != testcase.then.status {
				t.Errorf("status: (actual, expected) = (%d, %d)", status, testcase.then.status)
			}
			if reached != testcase.then.reached {
				t.Errorf("reached: (actual, expected) = (%v, %v)", reached, testcase.then.reached)
			}
		})
	}
}

func TestPrincipalOf_NotAuthenticated(t *testing.T) {
	e := echo.New()
	c, _ := http.Get(e, "/")
	if _, err := session.PrincipalOf(c); !errors.Is(err, session.ErrUnauthenticated) {
		t.Errorf("expected ErrUnauthenticated, but got %v", err)
	}
}
