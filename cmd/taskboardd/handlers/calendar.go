package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	binderr "github.com/opst/taskboard/pkg/api-types-binding/errors"
	bindcalendar "github.com/opst/taskboard/pkg/api-types-binding/calendar"
	apicalendar "github.com/opst/taskboard/pkg/api/types/calendar"
	"github.com/opst/taskboard/pkg/calendar"
)

// cookie keeping OAuth state between the redirection and the callback.
const oauthStateCookie = "taskboard_oauth_state"

func calendarError(err error) error {
	if errors.Is(err, calendar.ErrNotConnected) {
		return binderr.NewErrorMessage(
			http.StatusNotFound, "No calendar connected",
			binderr.WithAdvice("connect your Google account first"),
			binderr.WithError(err),
		)
	}
	return asHTTPError(err)
}

// GoogleAuthHandler redirects to the consent page of Google.
func GoogleAuthHandler(svc *calendar.Service, secure bool) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, err := principalOf(c); err != nil {
			return err
		}

		state := uuid.NewString()
		c.SetCookie(&http.Cookie{
			Name:     oauthStateCookie,
			Value:    state,
			Path:     "/api/auth/google",
			MaxAge:   600,
			HttpOnly: true,
			Secure:   secure,
			SameSite: http.SameSiteLaxMode,
		})
		return c.Redirect(http.StatusFound, svc.AuthCodeURL(state))
	}
}

// GoogleCallbackHandler saves the connected account and redirects to home.
func GoogleCallbackHandler(svc *calendar.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		p, err := principalOf(c)
		if err != nil {
			return err
		}

		code := c.QueryParam("code")
		if code == "" {
			return binderr.BadRequest("no code provided", nil)
		}
		stored, err := c.Cookie(oauthStateCookie)
		if err != nil || stored.Value == "" || stored.Value != c.QueryParam("state") {
			return binderr.BadRequest("oauth state does not match. try connecting again.", err)
		}
		c.SetCookie(&http.Cookie{
			Name: oauthStateCookie, Path: "/api/auth/google", MaxAge: -1, HttpOnly: true,
		})

		if _, err := svc.Connect(c.Request().Context(), p.UserId, code); err != nil {
			c.Logger().Errorf("google callback: %s", err)
			return binderr.NewErrorMessage(
				http.StatusInternalServerError, "Authentication failed", binderr.WithError(err),
			)
		}
		return c.Redirect(http.StatusFound, "/")
	}
}

func GetCalendarsHandler(svc *calendar.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		p, err := principalOf(c)
		if err != nil {
			return err
		}

		cals, err := svc.Calendars(c.Request().Context(), p.UserId)
		if err != nil {
			return calendarError(err)
		}
		resp := apicalendar.Calendars{Calendars: make([]apicalendar.Calendar, 0, len(cals))}
		for _, cal := range cals {
			resp.Calendars = append(resp.Calendars, bindcalendar.ComposeCalendar(cal))
		}
		return c.JSON(http.StatusOK, resp)
	}
}

// GetEventsHandler lists upcoming events.
//
// query:
//
// - calendarIds: comma separated "integrationId:calendarId"
func GetEventsHandler(svc *calendar.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		p, err := principalOf(c)
		if err != nil {
			return err
		}

		events, err := svc.Events(c.Request().Context(), p.UserId, c.QueryParam("calendarIds"))
		if err != nil {
			return calendarError(err)
		}
		resp := apicalendar.Events{Connected: true, Events: make([]apicalendar.Event, 0, len(events))}
		for _, ev := range events {
			resp.Events = append(resp.Events, bindcalendar.ComposeEvent(ev))
		}
		return c.JSON(http.StatusOK, resp)
	}
}

func PostEventHandler(svc *calendar.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		p, err := principalOf(c)
		if err != nil {
			return err
		}

		req := apicalendar.Create{}
		if err := bindJSON(c, &req); err != nil {
			return err
		}
		if strings.TrimSpace(req.Title) == "" {
			return binderr.BadRequest("title is required", nil)
		}
		ev := bindcalendar.BindNewEvent(req)
		if ev.Start.IsZero() || ev.End.IsZero() {
			return binderr.BadRequest("start and end are required", nil)
		}
		if ev.End.Before(ev.Start) {
			return binderr.BadRequest("end should not be before start", nil)
		}

		created, err := svc.Create(c.Request().Context(), p.UserId, ev)
		if err != nil {
			return calendarError(err)
		}
		return c.JSON(http.StatusOK, bindcalendar.ComposeEvent(*created))
	}
}

// UnavailableHandler responds 503 for features not configured.
func UnavailableHandler(advice string) echo.HandlerFunc {
	return func(c echo.Context) error {
		return binderr.ServiceUnavailable(advice, nil)
	}
}
