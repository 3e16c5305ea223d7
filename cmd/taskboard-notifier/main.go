package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/opst/taskboard/pkg/configs/server"
	kpg "github.com/opst/taskboard/pkg/db/postgres"
	"github.com/opst/taskboard/pkg/loop/recurring"
	"github.com/opst/taskboard/pkg/notify"
	"github.com/opst/taskboard/pkg/utils/args"
	"github.com/opst/taskboard/pkg/utils/filewatch"
	"github.com/opst/taskboard/pkg/utils/retry"
	"github.com/opst/taskboard/pkg/whatsapp"
)

// times to retry connecting to the database on start up.
const connectRetries = 5

func main() {
	os.Exit(run())
}

func run() int {
	logger := log.New(os.Stderr, "[taskboard-notifier] ", log.LstdFlags|log.Lmsgprefix)

	pconfig := flag.String(
		"config-path", os.Getenv("TASKBOARD_CONFIG"), "path to config file",
	)
	pschedule := flag.String(
		"schedule", "",
		`loop policy, overriding notification.schedule in config`+
			` (syntax: daily:HH:MM|forever[:COOLDOWN]|once).`+
			` "daily:HH:MM" = check every day at the time.`+
			` "forever[:COOLDOWN]" = check, then wait COOLDOWN.`+
			` "once" = check once and exit.`,
	)
	timezone := args.Parser(time.LoadLocation)
	flag.Var(timezone, "timezone", "IANA timezone deciding today, overriding timezone in config")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	conf, err := server.Load(*pconfig)
	if err != nil {
		logger.Printf("can not read configuration: %s", err)
		return 1
	}
	loc := conf.Location()
	if timezone.IsSet() {
		loc = timezone.Value()
	}

	spec := conf.Notification().Schedule().String()
	if *pschedule != "" {
		spec = *pschedule
	}
	policy, err := recurring.ParsePolicy(spec, loc)
	if err != nil {
		logger.Printf("bad schedule: %s", err)
		return 1
	}

	db, err := kpg.New(
		ctx, conf.DBURI(),
		kpg.WithSchemaRepository(conf.Schema()),
		kpg.WithConnectRetry(connectRetries, retry.ExponentialBackoff(time.Second, 2)),
	)
	if err != nil {
		logger.Printf("can not connect to database: %s", err)
		return 1
	}
	defer db.Close()
	{
		ctx_, ccan := db.Schema().Context(ctx)
		defer ccan()
		ctx = ctx_
	}
	if *pconfig != "" {
		ctx_, ccan, err := filewatch.UntilModifyContext(ctx, *pconfig)
		if err != nil {
			logger.Printf("can not watch configuration: %s", err)
			return 1
		}
		defer ccan()
		ctx = ctx_
	}

	notifier := notify.New(
		db.Tasks(), db.Settings(),
		whatsapp.New(whatsapp.WithLogger(logger)),
		notify.WithLocation(loc),
		notify.WithLogger(logger),
	)

	logger.Printf(`start overdue loop /w policy "%s" in %s`, policy, loc)
	tally, err := StartOverdueLoop(ctx, logger, notifier, policy, time.Now)
	logger.Printf(
		"overdue loop stopped: %d checks, %d reports sent, %d failed",
		tally.Checks, tally.Reports, tally.Failed,
	)

	switch {
	case err == nil:
		return 0
	case errors.Is(err, context.Canceled):
		if cause := context.Cause(ctx); cause != nil && cause != context.Canceled {
			logger.Printf("loop context is cancelled by: %s", cause)
			return 1
		}
		return 0
	default:
		logger.Printf("loop stops with error: %s", err)
		return 1
	}
}
