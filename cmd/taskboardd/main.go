package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/opst/taskboard/pkg/ai"
	"github.com/opst/taskboard/pkg/auth"
	"github.com/opst/taskboard/pkg/auth/keychain"
	"github.com/opst/taskboard/pkg/auth/keychain/key"
	"github.com/opst/taskboard/pkg/auth/session"
	"github.com/opst/taskboard/pkg/calendar"
	"github.com/opst/taskboard/pkg/configs/server"
	kpg "github.com/opst/taskboard/pkg/db/postgres"
	"github.com/opst/taskboard/pkg/metrics"
	"github.com/opst/taskboard/pkg/notify"
	"github.com/opst/taskboard/pkg/reports"
	"github.com/opst/taskboard/pkg/utils/filewatch"
	"github.com/opst/taskboard/pkg/utils/retry"
	"github.com/opst/taskboard/pkg/whatsapp"
)

// name of the keychain signing sessions.
const sessionKeychain = "session"

// length of session signing keys, in bytes.
const sessionKeyLength = 32

// times to retry connecting to the database on start up.
const connectRetries = 5

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String(
		"config-path", os.Getenv("TASKBOARD_CONFIG"), "path to config file",
	)
	loglevel := flag.String("loglevel", "info", "log level. debug|info|warn|error|off")
	flag.Parse()

	logger := log.New(os.Stderr, "[taskboardd] ", log.LstdFlags|log.Lmsgprefix)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	conf, err := server.Load(*configPath)
	if err != nil {
		logger.Fatalf("can not read configuration: %s", err)
	}
	loc := conf.Location()

	db, err := kpg.New(
		ctx, conf.DBURI(),
		kpg.WithSchemaRepository(conf.Schema()),
		kpg.WithConnectRetry(connectRetries, retry.ExponentialBackoff(time.Second, 2)),
	)
	if err != nil {
		logger.Fatalf("can not connect to database: %s", err)
	}
	defer db.Close()
	{
		ctx_, ccan := db.Schema().Context(ctx)
		defer ccan()
		ctx = ctx_
	}
	{
		ctx_, ccan, err := filewatch.UntilModifyContext(ctx, *configPath)
		if err != nil {
			logger.Fatalf("can not watch configuration: %s", err)
		}
		defer ccan()
		ctx = ctx_
	}

	sessConf := conf.Session()
	kc, err := keychain.New(
		ctx, sessionKeychain, db.Keychain(),
		key.HS256(2*sessConf.TTL, sessionKeyLength), sessConf.TTL,
	)
	if err != nil {
		logger.Fatalf("can not load keychain: %s", err)
	}

	recorder := metrics.New()
	notifier := notify.New(
		db.Tasks(), db.Settings(),
		whatsapp.New(whatsapp.WithLogger(logger)),
		notify.WithLocation(loc),
		notify.WithLogger(logger),
		notify.WithObserver(recorder),
	)

	var cal *calendar.Service
	if g := conf.Google(); g.Enabled() {
		cal = calendar.New(
			db.Integrations(),
			calendar.NewGoogle(calendar.GoogleConfig{
				ClientId:     g.ClientId(),
				ClientSecret: g.ClientSecret(),
				RedirectUri:  g.RedirectUri(),
			}),
			calendar.WithLogger(logger),
		)
	} else {
		logger.Println("google calendar integration is disabled.")
	}

	e := BuildServer(Services{
		DB:           db,
		Location:     loc,
		Now:          time.Now,
		Sessions:     session.New(kc, sessConf),
		Auth:         auth.New(db.Users()),
		Notifier:     notifier,
		Reports:      reports.New(db.Tasks(), loc, time.Now),
		AI:           ai.New(ai.Gemini(conf.Gemini().ApiKey(), conf.Gemini().Model()), ai.WithLocation(loc)),
		Calendar:     cal,
		Metrics:      recorder,
		CronSecret:   conf.Notification().CronSecret(),
		SecureCookie: sessConf.Secure,
	}, *loglevel)
	for _, r := range e.Routes() {
		e.Logger.Debugf("- mount handler: %s %s", strings.ToUpper(r.Method), r.Path)
	}

	ch := make(chan error, 1)
	go func() {
		defer close(ch)
		if err := e.Start(fmt.Sprintf(":%d", conf.Port())); err != nil && err != http.ErrServerClosed {
			ch <- err
		}
	}()

	exit := 0
	select {
	case <-ctx.Done():
		if cause := context.Cause(ctx); cause != nil && cause != context.Canceled {
			e.Logger.Infof("context has been done: %s, cause: %s", ctx.Err(), cause)
			exit = 1
		}
	case err := <-ch:
		if err != nil {
			e.Logger.Error("server stops with error:", err)
			exit = 1
		}
	}

	e.Logger.Info("shutting down...")
	qctx, qcancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer qcancel()
	if err := e.Shutdown(qctx); err != nil {
		e.Logger.Errorf("shutdown with error: %+v", err)
		exit = 1
	}
	return exit
}
