package echoutil_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
	"github.com/opst/taskboard/pkg/utils/echoutil"
)

func TestSetLevel(t *testing.T) {
	for name, testcase := range map[string]struct {
		when  string
		then  log.Lvl
		known bool
	}{
		"debug":        {when: "debug", then: log.DEBUG, known: true},
		"info":         {when: "INFO", then: log.INFO, known: true},
		"warn":         {when: "warn", then: log.WARN, known: true},
		"empty":        {when: "", then: log.WARN, known: true},
		"error":        {when: "error", then: log.ERROR, known: true},
		"off":          {when: "off", then: log.OFF, known: true},
		"unknown word": {when: "verbose", then: log.WARN, known: false},
	} {
		t.Run(name, func(t *testing.T) {
			e := echo.New()
			e.Logger.SetOutput(new(bytes.Buffer))

			known := echoutil.SetLevel(e, testcase.when)
			if known != testcase.known {
				t.Errorf("known: (actual, expected) = (%v, %v)", known, testcase.known)
			}
			if actual := e.Logger.Level(); actual != testcase.then {
				t.Errorf("level: (actual, expected) = (%v, %v)", actual, testcase.then)
			}
		})
	}
}

func TestLogHandlerFunc(t *testing.T) {
	t.Run("it logs the status decided by the error handler", func(t *testing.T) {
		e := echo.New()
		buf := new(bytes.Buffer)
		e.Logger.SetOutput(buf)
		e.Logger.SetLevel(log.INFO)

		e.GET("/fail", func(c echo.Context) error {
			return echo.NewHTTPError(http.StatusTeapot, "short and stout")
		}, echoutil.LogHandlerFunc)

		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/fail", nil))

		if rec.Code != http.StatusTeapot {
			t.Errorf("status: %d", rec.Code)
		}
		if !strings.Contains(buf.String(), "status = 418") {
			t.Errorf("log does not contain status: %s", buf.String())
		}
	})
}
