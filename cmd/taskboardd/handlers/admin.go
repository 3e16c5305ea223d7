package handlers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	binderr "github.com/opst/taskboard/pkg/api-types-binding/errors"
	bindteams "github.com/opst/taskboard/pkg/api-types-binding/teams"
	bindusers "github.com/opst/taskboard/pkg/api-types-binding/users"
	apiteams "github.com/opst/taskboard/pkg/api/types/teams"
	apiusers "github.com/opst/taskboard/pkg/api/types/users"
	kdb "github.com/opst/taskboard/pkg/db"
)

// GetUsersHandler lists all users, ordered by name. ADMIN only.
func GetUsersHandler(users kdb.UserInterface) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, err := adminOf(c); err != nil {
			return err
		}

		found, err := users.List(c.Request().Context())
		if err != nil {
			return asHTTPError(err)
		}
		resp := make([]apiusers.User, 0, len(found))
		for _, u := range found {
			resp = append(resp, bindusers.Compose(u))
		}
		return c.JSON(http.StatusOK, resp)
	}
}

// PutUserHandler changes role and team of a user. ADMIN only.
//
// teamId "NONE" removes the user from the team.
func PutUserHandler(users kdb.UserInterface, userIdParam string) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, err := adminOf(c); err != nil {
			return err
		}
		userId := c.Param(userIdParam)
		if userId == "" {
			return binderr.BadRequest("user id is required", nil)
		}

		req := apiusers.Assignment{}
		if err := bindJSON(c, &req); err != nil {
			return err
		}

		assignment := kdb.UserAssignment{}
		if req.Role != nil {
			role, err := kdb.AsRole(*req.Role)
			if err != nil {
				return binderr.BadRequest(`role should be "ADMIN" or "COLLABORATOR"`, err)
			}
			assignment.Role = &role
		}
		if req.TeamId != nil {
			if *req.TeamId == apiusers.TeamIdNone || *req.TeamId == "" {
				assignment.ClearTeam = true
			} else {
				assignment.TeamId = req.TeamId
			}
		}

		u, err := users.Assign(c.Request().Context(), userId, assignment)
		if err != nil {
			return asHTTPError(err)
		}
		return c.JSON(http.StatusOK, bindusers.Compose(*u))
	}
}

func GetTeamsHandler(teams kdb.TeamInterface) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, err := adminOf(c); err != nil {
			return err
		}

		found, err := teams.List(c.Request().Context())
		if err != nil {
			return asHTTPError(err)
		}
		resp := make([]apiteams.Team, 0, len(found))
		for _, t := range found {
			resp = append(resp, bindteams.Compose(t))
		}
		return c.JSON(http.StatusOK, resp)
	}
}

func PostTeamHandler(teams kdb.TeamInterface) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, err := adminOf(c); err != nil {
			return err
		}

		req := apiteams.Create{}
		if err := bindJSON(c, &req); err != nil {
			return err
		}
		name := strings.TrimSpace(req.Name)
		if name == "" {
			return binderr.BadRequest("team name is required", nil)
		}

		t, err := teams.Create(c.Request().Context(), name)
		if err != nil {
			return asHTTPError(err)
		}
		return c.JSON(http.StatusOK, bindteams.Compose(*t))
	}
}

// DeleteTeamHandler deletes a team. Its members become team-less.
func DeleteTeamHandler(teams kdb.TeamInterface, teamIdParam string) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, err := adminOf(c); err != nil {
			return err
		}

		if err := teams.Delete(c.Request().Context(), c.Param(teamIdParam)); err != nil {
			return asHTTPError(err)
		}
		return c.JSON(http.StatusOK, success{Success: true})
	}
}
