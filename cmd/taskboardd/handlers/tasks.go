package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/opst/taskboard/pkg/access"
	binderr "github.com/opst/taskboard/pkg/api-types-binding/errors"
	bindtasks "github.com/opst/taskboard/pkg/api-types-binding/tasks"
	apitasks "github.com/opst/taskboard/pkg/api/types/tasks"
	kdb "github.com/opst/taskboard/pkg/db"
	"github.com/opst/taskboard/pkg/utils/rfctime"
)

// GetTasksHandler lists tasks visible to the principal.
//
// query:
//
// - filter: mine | team | all. The widest scope of the principal by default.
//
// - userId: narrows to tasks assigned to the user.
func GetTasksHandler(tasks kdb.TaskInterface, users kdb.UserInterface) echo.HandlerFunc {
	return func(c echo.Context) error {
		p, err := principalOf(c)
		if err != nil {
			return err
		}
		ctx := c.Request().Context()

		scope, err := access.AsScope(c.QueryParam("filter"))
		if err != nil {
			return binderr.BadRequest(`filter should be one of "mine", "team" or "all"`, err)
		}

		var assignee *kdb.User
		if userId := c.QueryParam("userId"); userId != "" {
			u, err := users.Get(ctx, userId)
			if err != nil {
				return asHTTPError(err)
			}
			assignee = u
		}

		filter, err := access.Visibility(p, scope, assignee)
		if err != nil {
			return asHTTPError(err)
		}

		found, err := tasks.Find(ctx, filter)
		if err != nil {
			return asHTTPError(err)
		}

		resp := make([]apitasks.Task, 0, len(found))
		for _, t := range found {
			resp = append(resp, bindtasks.Compose(t))
		}
		return c.JSON(http.StatusOK, resp)
	}
}

// assignable returns the user tasks can be assigned to by the principal.
//
// Unknown users are bad requests, and users out of reach are forbidden.
func assignable(c echo.Context, users kdb.UserInterface, p access.Principal, userId string) (*kdb.User, error) {
	u, err := users.Get(c.Request().Context(), userId)
	if errors.Is(err, kdb.ErrMissing) {
		return nil, binderr.BadRequest("assignee is not found", err)
	} else if err != nil {
		return nil, asHTTPError(err)
	}
	if err := access.Authorize(access.CanAssign(p, *u), "assigning tasks to the user"); err != nil {
		return nil, asHTTPError(err)
	}
	return u, nil
}

func parseDueDate(s string, loc *time.Location) (time.Time, error) {
	due, err := rfctime.ParseDate(s, loc)
	if err != nil {
		return time.Time{}, binderr.BadRequest(
			"dueDate should be RFC3339 date-time or YYYY-MM-DD", err,
		)
	}
	return due, nil
}

// PostTaskHandler creates a task.
//
// The task is assigned to the principal unless userId is given.
func PostTaskHandler(tasks kdb.TaskInterface, users kdb.UserInterface, loc *time.Location) echo.HandlerFunc {
	return func(c echo.Context) error {
		p, err := principalOf(c)
		if err != nil {
			return err
		}

		req := apitasks.Create{}
		if err := bindJSON(c, &req); err != nil {
			return err
		}

		param := kdb.TaskParam{
			Title:         req.Title,
			Description:   req.Description,
			Status:        kdb.TaskStatus(req.Status),
			EstimatedTime: req.EstimatedTime,
			UserId:        p.UserId,
			CreatedBy:     p.UserId,
		}
		if req.DueDate == "" {
			return binderr.BadRequest("dueDate is required", nil)
		}
		if param.DueDate, err = parseDueDate(req.DueDate, loc); err != nil {
			return err
		}
		if req.UserId != "" && req.UserId != p.UserId {
			u, err := assignable(c, users, p, req.UserId)
			if err != nil {
				return err
			}
			param.UserId = u.Id
		}

		param, err = param.Validate()
		if err != nil {
			return asHTTPError(err)
		}

		t, err := tasks.Create(c.Request().Context(), param)
		if err != nil {
			return asHTTPError(err)
		}
		return c.JSON(http.StatusOK, bindtasks.Compose(*t))
	}
}

// PutTaskHandler updates a task partially.
func PutTaskHandler(tasks kdb.TaskInterface, users kdb.UserInterface, loc *time.Location, taskIdParam string) echo.HandlerFunc {
	return func(c echo.Context) error {
		p, err := principalOf(c)
		if err != nil {
			return err
		}
		taskId, err := positiveIntParam(c, taskIdParam)
		if err != nil {
			return err
		}
		ctx := c.Request().Context()

		req := apitasks.Update{}
		if err := bindJSON(c, &req); err != nil {
			return err
		}

		current, err := tasks.Get(ctx, taskId)
		if err != nil {
			return asHTTPError(err)
		}
		if err := access.Authorize(access.CanEdit(p, *current), "editing the task"); err != nil {
			return asHTTPError(err)
		}

		update := kdb.TaskUpdate{
			Title:         req.Title,
			Description:   req.Description,
			EstimatedTime: req.EstimatedTime,
		}
		if req.Status != nil {
			s := kdb.TaskStatus(*req.Status)
			update.Status = &s
		}
		if req.DueDate != nil {
			due, err := parseDueDate(*req.DueDate, loc)
			if err != nil {
				return err
			}
			update.DueDate = &due
		}
		if req.UserId != nil {
			changed := current.UserId == nil || *current.UserId != *req.UserId
			if changed && *req.UserId != "" {
				if _, err := assignable(c, users, p, *req.UserId); err != nil {
					return err
				}
			}
			update.UserId = req.UserId
		}

		update, err = update.Validate()
		if err != nil {
			return asHTTPError(err)
		}

		t, err := tasks.Update(ctx, taskId, update)
		if err != nil {
			return asHTTPError(err)
		}
		return c.JSON(http.StatusOK, bindtasks.Compose(*t))
	}
}

// DeleteTaskHandler deletes a task.
func DeleteTaskHandler(tasks kdb.TaskInterface, taskIdParam string) echo.HandlerFunc {
	return func(c echo.Context) error {
		p, err := principalOf(c)
		if err != nil {
			return err
		}
		taskId, err := positiveIntParam(c, taskIdParam)
		if err != nil {
			return err
		}
		ctx := c.Request().Context()

		current, err := tasks.Get(ctx, taskId)
		if err != nil {
			return asHTTPError(err)
		}
		if err := access.Authorize(access.CanDelete(p, *current), "deleting the task"); err != nil {
			return asHTTPError(err)
		}

		if err := tasks.Delete(ctx, taskId); err != nil {
			return asHTTPError(err)
		}
		return c.JSON(http.StatusOK, success{Success: true})
	}
}
