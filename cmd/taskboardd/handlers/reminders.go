package handlers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/opst/taskboard/pkg/access"
	binderr "github.com/opst/taskboard/pkg/api-types-binding/errors"
	bindreminders "github.com/opst/taskboard/pkg/api-types-binding/reminders"
	apireminders "github.com/opst/taskboard/pkg/api/types/reminders"
	kdb "github.com/opst/taskboard/pkg/db"
)

func GetRemindersHandler(reminders kdb.ReminderInterface) echo.HandlerFunc {
	return func(c echo.Context) error {
		p, err := principalOf(c)
		if err != nil {
			return err
		}

		found, err := reminders.Find(c.Request().Context(), p.UserId)
		if err != nil {
			return asHTTPError(err)
		}
		resp := make([]apireminders.Reminder, 0, len(found))
		for _, r := range found {
			resp = append(resp, bindreminders.Compose(r))
		}
		return c.JSON(http.StatusOK, resp)
	}
}

func PostReminderHandler(reminders kdb.ReminderInterface) echo.HandlerFunc {
	return func(c echo.Context) error {
		p, err := principalOf(c)
		if err != nil {
			return err
		}

		req := apireminders.Create{}
		if err := bindJSON(c, &req); err != nil {
			return err
		}
		content := strings.TrimSpace(req.Content)
		if content == "" {
			return binderr.BadRequest("content is required", nil)
		}

		r, err := reminders.Create(c.Request().Context(), p.UserId, content)
		if err != nil {
			return asHTTPError(err)
		}
		return c.JSON(http.StatusOK, bindreminders.Compose(*r))
	}
}

// ownReminder loads the reminder, and checks it is owned by the principal.
func ownReminder(c echo.Context, reminders kdb.ReminderInterface, reminderId string) error {
	p, err := principalOf(c)
	if err != nil {
		return err
	}
	r, err := reminders.Get(c.Request().Context(), reminderId)
	if err != nil {
		return asHTTPError(err)
	}
	return asHTTPError(access.Authorize(r.UserId == p.UserId, "reminders of others"))
}

func PatchReminderHandler(reminders kdb.ReminderInterface, reminderIdParam string) echo.HandlerFunc {
	return func(c echo.Context) error {
		reminderId := c.Param(reminderIdParam)
		if err := ownReminder(c, reminders, reminderId); err != nil {
			return err
		}

		req := apireminders.Update{}
		if err := bindJSON(c, &req); err != nil {
			return err
		}
		if req.Content != nil && strings.TrimSpace(*req.Content) == "" {
			return binderr.BadRequest("content should not be empty", nil)
		}

		r, err := reminders.Update(c.Request().Context(), reminderId, req.Content, req.IsCompleted)
		if err != nil {
			return asHTTPError(err)
		}
		return c.JSON(http.StatusOK, bindreminders.Compose(*r))
	}
}

func DeleteReminderHandler(reminders kdb.ReminderInterface, reminderIdParam string) echo.HandlerFunc {
	return func(c echo.Context) error {
		reminderId := c.Param(reminderIdParam)
		if err := ownReminder(c, reminders, reminderId); err != nil {
			return err
		}

		if err := reminders.Delete(c.Request().Context(), reminderId); err != nil {
			return asHTTPError(err)
		}
		return c.JSON(http.StatusOK, success{Success: true})
	}
}
