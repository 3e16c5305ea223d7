package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/opst/taskboard/cmd/taskboardd/handlers"
	"github.com/opst/taskboard/pkg/ai"
	"github.com/opst/taskboard/pkg/auth"
	"github.com/opst/taskboard/pkg/auth/session"
	"github.com/opst/taskboard/pkg/calendar"
	kdb "github.com/opst/taskboard/pkg/db"
	"github.com/opst/taskboard/pkg/metrics"
	"github.com/opst/taskboard/pkg/notify"
	"github.com/opst/taskboard/pkg/reports"
	"github.com/opst/taskboard/pkg/utils/echoutil"
)

const API_ROOT = "/api"

func api(subpath string) string {
	return fmt.Sprintf("%s/%s", API_ROOT, strings.TrimPrefix(subpath, "/"))
}

// Services behind the HTTP server.
type Services struct {
	DB       kdb.Database
	Location *time.Location
	Now      func() time.Time

	Sessions *session.Manager
	Auth     *auth.Service
	Notifier *notify.Notifier
	Reports  *reports.Service
	AI       *ai.Extractor

	// nil when Google integration is not configured.
	Calendar *calendar.Service

	Metrics *metrics.Recorder

	CronSecret   string
	SecureCookie bool
}

func BuildServer(s Services, loglevel string) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	echoutil.SetLevel(e, loglevel)
	e.HTTPErrorHandler = func(err error, ctx echo.Context) {
		e.DefaultHTTPErrorHandler(err, ctx)
		e.Logger.Error(err)
	}
	e.Use(middleware.Recover())
	e.Use(s.Metrics.Middleware())
	e.Use(echoutil.LogHandlerFunc)

	e.GET("/metrics", echo.WrapHandler(s.Metrics.Handler()))

	// without session
	e.POST(api("auth/register"), handlers.RegisterHandler(s.Auth, s.Sessions))
	e.POST(api("auth/login"), handlers.LoginHandler(s.Auth, s.Sessions))
	e.POST(api("auth/logout"), handlers.LogoutHandler(s.Sessions))
	e.GET(
		api("cron/overdue-notifications"),
		handlers.CronOverdueHandler(s.Notifier, s.CronSecret, s.Now),
	)

	authed := s.Sessions.Middleware(s.DB.Users())
	{
		e.GET(api("auth/me"), handlers.MeHandler(), authed)
		e.PUT(api("auth/profile"), handlers.PutProfileHandler(s.Auth), authed)
	}

	{
		tasks, users := s.DB.Tasks(), s.DB.Users()
		e.GET(api("tasks"), handlers.GetTasksHandler(tasks, users), authed)
		e.POST(api("tasks"), handlers.PostTaskHandler(tasks, users, s.Location), authed)
		e.PUT(api("tasks/:taskId"), handlers.PutTaskHandler(tasks, users, s.Location, "taskId"), authed)
		e.DELETE(api("tasks/:taskId"), handlers.DeleteTaskHandler(tasks, "taskId"), authed)
	}

	{
		reminders := s.DB.Reminders()
		e.GET(api("reminders"), handlers.GetRemindersHandler(reminders), authed)
		e.POST(api("reminders"), handlers.PostReminderHandler(reminders), authed)
		e.PATCH(api("reminders/:reminderId"), handlers.PatchReminderHandler(reminders, "reminderId"), authed)
		e.DELETE(api("reminders/:reminderId"), handlers.DeleteReminderHandler(reminders, "reminderId"), authed)
	}

	{
		users, teams := s.DB.Users(), s.DB.Teams()
		e.GET(api("admin/users"), handlers.GetUsersHandler(users), authed)
		e.PUT(api("admin/users/:userId"), handlers.PutUserHandler(users, "userId"), authed)
		e.GET(api("admin/teams"), handlers.GetTeamsHandler(teams), authed)
		e.POST(api("admin/teams"), handlers.PostTeamHandler(teams), authed)
		e.DELETE(api("admin/teams/:teamId"), handlers.DeleteTeamHandler(teams, "teamId"), authed)
	}

	{
		settings := s.DB.Settings()
		e.GET(api("settings"), handlers.GetSettingsHandler(settings), authed)
		e.PUT(api("settings"), handlers.PutSettingsHandler(settings), authed)
		e.POST(api("settings/test"), handlers.PostSettingsTestHandler(s.Notifier), authed)
		e.POST(api("settings/notify"), handlers.PostSettingsNotifyHandler(s.Notifier, s.Now), authed)
	}

	e.GET(api("reports"), handlers.GetReportsHandler(s.Reports), authed)

	e.POST(api("ai/generate-task"), handlers.GenerateTaskHandler(s.AI), authed)
	e.POST(api("ai/generate-reminders"), handlers.GenerateRemindersHandler(s.AI), authed)

	if cal := s.Calendar; cal != nil {
		e.GET(api("auth/google"), handlers.GoogleAuthHandler(cal, s.SecureCookie), authed)
		e.GET(api("auth/google/callback"), handlers.GoogleCallbackHandler(cal), authed)
		e.GET(api("calendar/list"), handlers.GetCalendarsHandler(cal), authed)
		e.GET(api("calendar/events"), handlers.GetEventsHandler(cal), authed)
		e.POST(api("calendar/create"), handlers.PostEventHandler(cal), authed)
	} else {
		unavailable := handlers.UnavailableHandler("google calendar is not configured. ask your admin.")
		for _, path := range []string{"auth/google", "auth/google/callback", "calendar/list", "calendar/events"} {
			e.GET(api(path), unavailable)
		}
		e.POST(api("calendar/create"), unavailable)
	}

	return e
}
