// Package notify reports overdue tasks to the administrator's WhatsApp.
//
// A check is a one-shot batch: it neither retries nor locks.
// Running checks concurrently may send the same report twice.
package notify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	kdb "github.com/opst/taskboard/pkg/db"
	"github.com/opst/taskboard/pkg/metrics"
	"github.com/opst/taskboard/pkg/utils/rfctime"
	"github.com/opst/taskboard/pkg/whatsapp"
)

var (
	// settings have not been saved, or they lack the instance or the phone number.
	ErrSettingsMissing = errors.New("settings missing")
)

// TestMessage is sent by SendTest.
const TestMessage = "🔔 *Teste de Conexão - TaskFlow*\n\nSe você recebeu esta mensagem, a integração com o Evolution API está funcionando corretamente! 🚀"

// Result of an overdue check.
type Result struct {
	Success bool

	// number of overdue tasks found
	Count int

	// cause of failure. nil when Success.
	Err error
}

// Observer receives results of checks.
type Observer interface {
	ObserveNotification(outcome string, found int)
}

type nopObserver struct{}

func (nopObserver) ObserveNotification(string, int) {}

type Notifier struct {
	tasks    kdb.TaskInterface
	settings kdb.SettingsInterface
	sender   whatsapp.Sender

	loc      *time.Location
	logger   *log.Logger
	observer Observer
}

type Option func(*Notifier) *Notifier

// WithLocation sets the timezone deciding "today". Default is UTC.
func WithLocation(loc *time.Location) Option {
	return func(n *Notifier) *Notifier {
		if loc != nil {
			n.loc = loc
		}
		return n
	}
}

func WithLogger(l *log.Logger) Option {
	return func(n *Notifier) *Notifier {
		n.logger = l
		return n
	}
}

func WithObserver(o Observer) Option {
	return func(n *Notifier) *Notifier {
		n.observer = o
		return n
	}
}

func New(tasks kdb.TaskInterface, settings kdb.SettingsInterface, sender whatsapp.Sender, opts ...Option) *Notifier {
	n := &Notifier{
		tasks:    tasks,
		settings: settings,
		sender:   sender,
		loc:      time.UTC,
		logger:   log.New(io.Discard, "", 0),
		observer: nopObserver{},
	}
	for _, o := range opts {
		n = o(n)
	}
	return n
}

func (n *Notifier) notificationSettings(ctx context.Context) (*kdb.Settings, error) {
	s, err := n.settings.Get(ctx)
	if errors.Is(err, kdb.ErrMissing) {
		return nil, ErrSettingsMissing
	} else if err != nil {
		return nil, err
	}
	if !s.CanNotify() {
		return nil, ErrSettingsMissing
	}
	return s, nil
}

// CheckOverdue finds tasks which are not DONE and due before today,
// and sends one message listing them all.
//
// Nothing is sent when there are no such tasks.
func (n *Notifier) CheckOverdue(ctx context.Context, now time.Time) Result {
	n.logger.Println("checking for overdue tasks...")

	s, err := n.notificationSettings(ctx)
	if errors.Is(err, ErrSettingsMissing) {
		n.logger.Println("notification settings are not configured.")
		n.observer.ObserveNotification(metrics.OutcomeNotConfigured, 0)
		return Result{Err: err}
	} else if err != nil {
		n.logger.Printf("failed to load settings: %s", err)
		n.observer.ObserveNotification(metrics.OutcomeFailed, 0)
		return Result{Err: err}
	}

	overdue, err := n.tasks.FindOverdue(ctx, rfctime.StartOfDay(now, n.loc))
	if err != nil {
		n.logger.Printf("failed to find overdue tasks: %s", err)
		n.observer.ObserveNotification(metrics.OutcomeFailed, 0)
		return Result{Err: err}
	}
	if len(overdue) == 0 {
		n.logger.Println("no overdue tasks found.")
		n.observer.ObserveNotification(metrics.OutcomeNothingToSend, 0)
		return Result{Success: true}
	}
	n.logger.Printf("found %d overdue tasks.", len(overdue))

	message := Compose(now, overdue, n.loc)
	if err := n.sender.SendText(ctx, *s, s.NotificationPhone, message); err != nil {
		n.logger.Printf("failed to send the report: %s", err)
		n.observer.ObserveNotification(metrics.OutcomeFailed, len(overdue))
		return Result{Count: len(overdue), Err: err}
	}

	n.observer.ObserveNotification(metrics.OutcomeSent, len(overdue))
	return Result{Success: true, Count: len(overdue)}
}

// Compose the report of overdue tasks.
//
// Dates are formatted as dd/MM/yyyy in loc.
func Compose(now time.Time, overdue []kdb.Task, loc *time.Location) string {
	b := new(strings.Builder)
	fmt.Fprintf(b, "🤖 *Relatório de Tarefas Atrasadas* 📅 %s\n\n", now.In(loc).Format(rfctime.DayMonthYear))
	for _, t := range overdue {
		fmt.Fprintf(
			b, "A tarefa ID: %d - %s [Data: %s] está em atraso, por favor verifique\n\n",
			t.Id, t.Title, t.DueDate.In(loc).Format(rfctime.DayMonthYear),
		)
	}
	b.WriteString("⚠️ _Acesse o sistema para regularizar._")
	return b.String()
}

// SendTest sends TestMessage to the notification phone.
//
// # Returns
//
// - error: ErrSettingsMissing when the instance or the phone is not set.
// Errors from the sender otherwise.
func (n *Notifier) SendTest(ctx context.Context) error {
	s, err := n.notificationSettings(ctx)
	if err != nil {
		return err
	}
	if err := n.sender.SendText(ctx, *s, s.NotificationPhone, TestMessage); err != nil {
		n.logger.Printf("failed to send the test message: %s", err)
		return err
	}
	return nil
}
