package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	binderr "github.com/opst/taskboard/pkg/api-types-binding/errors"
	bindreports "github.com/opst/taskboard/pkg/api-types-binding/reports"
	"github.com/opst/taskboard/pkg/reports"
)

// GetReportsHandler summarizes tasks visible to the principal.
//
// query:
//
// - range: days to look back. 30 by default.
func GetReportsHandler(svc *reports.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		p, err := principalOf(c)
		if err != nil {
			return err
		}

		days := reports.DefaultRange
		if q := c.QueryParam("range"); q != "" {
			d, err := strconv.Atoi(q)
			if err != nil {
				return binderr.BadRequest("range should be an integer", err)
			}
			days = d
		}

		r, err := svc.Report(c.Request().Context(), p, days)
		if errors.Is(err, reports.ErrInvalidRange) {
			return binderr.BadRequest(err.Error(), err)
		} else if err != nil {
			return asHTTPError(err)
		}
		return c.JSON(http.StatusOK, bindreports.Compose(*r))
	}
}
