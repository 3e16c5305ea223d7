// Package handlers implements HTTP endpoints of taskboard.
//
// Handlers expect session.Middleware to be applied, except ones for signing in.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/opst/taskboard/pkg/access"
	binderr "github.com/opst/taskboard/pkg/api-types-binding/errors"
	"github.com/opst/taskboard/pkg/auth/session"
	kdb "github.com/opst/taskboard/pkg/db"
)

// asHTTPError converts errors from services to responses.
//
// HTTPErrors are passed through. Unknown errors are internal server errors.
func asHTTPError(err error) error {
	if err == nil {
		return nil
	}
	if he := new(echo.HTTPError); errors.As(err, &he) {
		return he
	}
	switch {
	case errors.Is(err, session.ErrUnauthenticated):
		return binderr.Unauthorized("not signed in", err)
	case errors.Is(err, kdb.ErrMissing):
		return binderr.NewErrorMessage(http.StatusNotFound, "not found", binderr.WithError(err))
	case errors.Is(err, kdb.ErrForbidden):
		return binderr.Forbidden(err)
	case errors.Is(err, kdb.ErrConflict):
		return binderr.Conflict("conflict", binderr.WithError(err))
	case errors.Is(err, kdb.ErrInvalidTask):
		return binderr.BadRequest(err.Error(), err)
	}
	return binderr.InternalServerError(err)
}

func principalOf(c echo.Context) (access.Principal, error) {
	p, err := session.PrincipalOf(c)
	if err != nil {
		return access.Principal{}, asHTTPError(err)
	}
	return p, nil
}

// adminOf returns the principal when it is an ADMIN. Otherwise 403.
func adminOf(c echo.Context) (access.Principal, error) {
	p, err := principalOf(c)
	if err != nil {
		return p, err
	}
	if !p.IsAdmin() {
		return p, asHTTPError(access.Authorize(false, "ADMIN only"))
	}
	return p, nil
}

// bindJSON decodes the request body as JSON.
func bindJSON(c echo.Context, v any) error {
	req := c.Request()
	ctype, _, _ := strings.Cut(req.Header.Get(echo.HeaderContentType), ";")
	if !strings.EqualFold(strings.TrimSpace(ctype), echo.MIMEApplicationJSON) {
		return binderr.BadRequest(
			"unexpected content type. it should be application/json", nil,
		)
	}
	if err := json.NewDecoder(req.Body).Decode(v); err != nil {
		return binderr.BadRequest("can not understand the requested json", err)
	}
	return nil
}

// positiveIntParam reads a path parameter as a positive integer.
func positiveIntParam(c echo.Context, name string) (int, error) {
	v, err := strconv.Atoi(c.Param(name))
	if err != nil || v <= 0 {
		return 0, binderr.BadRequest(name+" should be a positive integer", err)
	}
	return v, nil
}

// response of deletions.
type success struct {
	Success bool `json:"success"`
}
