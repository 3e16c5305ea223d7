package echoutil

import (
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
)

// LogHandlerFunc logs each request and its response with the elapsed time.
func LogHandlerFunc(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		meth := c.Request().Method
		path := c.Request().URL.Path
		BEGIN := time.Now()
		c.Logger().Infof("< request @[%s] %s %s", BEGIN.Format(time.RFC3339), meth, path)

		err := next(c)
		if err != nil {
			// let the error handler decide the status before it is logged
			c.Error(err)
		}

		END := time.Now()
		status := c.Response().Status
		switch {
		case err != nil && status >= 500:
			c.Logger().Errorf(
				"> response status = %d (for %s %s) in %v / error = %+v",
				status, meth, path, END.Sub(BEGIN), err,
			)
		case err != nil:
			c.Logger().Warnf(
				"> response status = %d (for %s %s) in %v / error = %v",
				status, meth, path, END.Sub(BEGIN), err,
			)
		default:
			c.Logger().Infof(
				"> response status = %d (for %s %s) in %v",
				status, meth, path, END.Sub(BEGIN),
			)
		}
		return nil
	}
}

// SetLevel sets the level of the echo logger.
//
// loglevel is one of debug, info, warn, error and off. Empty means warn.
// It returns false for unknown levels, falling back to warn.
func SetLevel(e *echo.Echo, loglevel string) bool {
	switch strings.ToLower(loglevel) {
	case "debug":
		e.Logger.SetLevel(log.DEBUG)
	case "info":
		e.Logger.SetLevel(log.INFO)
	case "warn", "":
		e.Logger.SetLevel(log.WARN)
	case "error":
		e.Logger.SetLevel(log.ERROR)
	case "off":
		e.Logger.SetLevel(log.OFF)
	default:
		e.Logger.SetLevel(log.WARN)
		e.Logger.Warnf("unknown loglevel: %s . fall-backed to warn", loglevel)
		return false
	}
	return true
}
