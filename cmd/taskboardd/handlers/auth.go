package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	binderr "github.com/opst/taskboard/pkg/api-types-binding/errors"
	bindusers "github.com/opst/taskboard/pkg/api-types-binding/users"
	apiusers "github.com/opst/taskboard/pkg/api/types/users"
	"github.com/opst/taskboard/pkg/auth"
	"github.com/opst/taskboard/pkg/auth/password"
	"github.com/opst/taskboard/pkg/auth/session"
	kdb "github.com/opst/taskboard/pkg/db"
)

func profileError(err error) error {
	switch {
	case errors.Is(err, password.ErrWeakPassword):
		return binderr.BadRequest(password.Advice, err)
	case errors.Is(err, auth.ErrInvalidProfile):
		return binderr.BadRequest(err.Error(), err)
	case errors.Is(err, auth.ErrEmailInUse):
		return binderr.Conflict("email is already in use", binderr.WithError(err))
	}
	return asHTTPError(err)
}

// signIn issues a session cookie for the user and responds with the user.
func signIn(c echo.Context, sess *session.Manager, u kdb.User) error {
	_, cookie, err := sess.Issue(c.Request().Context(), u.Id)
	if err != nil {
		return asHTTPError(err)
	}
	c.SetCookie(cookie)
	user := bindusers.Compose(u)
	return c.JSON(http.StatusOK, apiusers.Session{Success: true, User: &user})
}

// RegisterHandler creates a COLLABORATOR and signs in as it.
func RegisterHandler(svc *auth.Service, sess *session.Manager) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := apiusers.Register{}
		if err := bindJSON(c, &req); err != nil {
			return err
		}

		u, err := svc.Register(c.Request().Context(), req.Name, req.Email, req.Password)
		if err != nil {
			return profileError(err)
		}
		return signIn(c, sess, *u)
	}
}

func LoginHandler(svc *auth.Service, sess *session.Manager) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := apiusers.Login{}
		if err := bindJSON(c, &req); err != nil {
			return err
		}

		u, err := svc.Login(c.Request().Context(), req.Email, req.Password)
		if errors.Is(err, auth.ErrInvalidCredential) {
			return binderr.Unauthorized("invalid email or password", err)
		} else if err != nil {
			return asHTTPError(err)
		}
		return signIn(c, sess, *u)
	}
}

func LogoutHandler(sess *session.Manager) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.SetCookie(sess.Clear())
		return c.JSON(http.StatusOK, apiusers.Session{Success: true})
	}
}

// MeHandler responds the signed in user.
func MeHandler() echo.HandlerFunc {
	return func(c echo.Context) error {
		u, ok := session.UserOf(c)
		if !ok {
			return asHTTPError(session.ErrUnauthenticated)
		}
		return c.JSON(http.StatusOK, bindusers.Compose(u))
	}
}

// PutProfileHandler changes name, email and password of the signed in user.
func PutProfileHandler(svc *auth.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		p, err := principalOf(c)
		if err != nil {
			return err
		}

		req := apiusers.Profile{}
		if err := bindJSON(c, &req); err != nil {
			return err
		}

		u, err := svc.UpdateProfile(c.Request().Context(), p.UserId, req.Name, req.Email, req.Password)
		if err != nil {
			return profileError(err)
		}
		return c.JSON(http.StatusOK, bindusers.Compose(*u))
	}
}
