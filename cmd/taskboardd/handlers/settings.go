package handlers

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	binderr "github.com/opst/taskboard/pkg/api-types-binding/errors"
	bindsettings "github.com/opst/taskboard/pkg/api-types-binding/settings"
	apisettings "github.com/opst/taskboard/pkg/api/types/settings"
	kdb "github.com/opst/taskboard/pkg/db"
	"github.com/opst/taskboard/pkg/notify"
)

// GetSettingsHandler responds the WhatsApp gateway settings. ADMIN only.
//
// Before saved, it responds empty settings.
func GetSettingsHandler(settings kdb.SettingsInterface) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, err := adminOf(c); err != nil {
			return err
		}

		s, err := settings.Get(c.Request().Context())
		if errors.Is(err, kdb.ErrMissing) {
			return c.JSON(http.StatusOK, apisettings.Settings{})
		} else if err != nil {
			return asHTTPError(err)
		}
		return c.JSON(http.StatusOK, bindsettings.Compose(*s))
	}
}

func PutSettingsHandler(settings kdb.SettingsInterface) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, err := adminOf(c); err != nil {
			return err
		}

		req := apisettings.Settings{}
		if err := bindJSON(c, &req); err != nil {
			return err
		}

		s, err := settings.Save(c.Request().Context(), bindsettings.Bind(req))
		if err != nil {
			return asHTTPError(err)
		}
		return c.JSON(http.StatusOK, bindsettings.Compose(*s))
	}
}

// PostSettingsTestHandler sends a test message to the notification phone.
func PostSettingsTestHandler(notifier *notify.Notifier) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, err := adminOf(c); err != nil {
			return err
		}

		err := notifier.SendTest(c.Request().Context())
		if err != nil {
			c.Logger().Errorf("failed to send test message: %s", err)
		}
		return c.JSON(http.StatusOK, bindsettings.ComposeTest(err))
	}
}

// PostSettingsNotifyHandler runs the overdue check now.
func PostSettingsNotifyHandler(notifier *notify.Notifier, now func() time.Time) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, err := adminOf(c); err != nil {
			return err
		}
		return c.JSON(http.StatusOK, bindsettings.ComposeResult(
			notifier.CheckOverdue(c.Request().Context(), now()),
		))
	}
}

// CronOverdueHandler runs the overdue check, triggered by external schedulers.
//
// When secret is not empty, requests should carry it as a bearer token.
// This endpoint is not under the session middleware.
func CronOverdueHandler(notifier *notify.Notifier, secret string, now func() time.Time) echo.HandlerFunc {
	return func(c echo.Context) error {
		if secret != "" {
			given := c.Request().Header.Get(echo.HeaderAuthorization)
			if subtle.ConstantTimeCompare([]byte(given), []byte("Bearer "+secret)) != 1 {
				return binderr.Unauthorized("cron secret is not valid", nil)
			}
		}

		r := notifier.CheckOverdue(c.Request().Context(), now())
		if r.Err != nil {
			c.Logger().Errorf("overdue notification: %s", r.Err)
		}
		return c.JSON(http.StatusOK, bindsettings.ComposeResult(r))
	}
}
