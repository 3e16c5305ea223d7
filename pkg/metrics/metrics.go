// Package metrics records Prometheus metrics of the HTTP server and the notifier.
package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Recorder struct {
	gatherer prometheus.Gatherer

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec

	notificationRuns  *prometheus.CounterVec
	overdueTasksFound prometheus.Counter
	sendFailures      prometheus.Counter
}

// New creates a Recorder registering metrics to a new registry.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Recorder{
		gatherer: reg,
		requestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "taskboard_http_requests_total",
				Help: "Total number of HTTP requests by method, route and status",
			},
			[]string{"method", "route", "status"},
		),
		requestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "taskboard_http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		notificationRuns: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "taskboard_overdue_notification_runs_total",
				Help: "Total number of overdue checks by outcome",
			},
			[]string{"outcome"},
		),
		overdueTasksFound: f.NewCounter(prometheus.CounterOpts{
			Name: "taskboard_overdue_tasks_found_total",
			Help: "Total number of overdue tasks found by overdue checks",
		}),
		sendFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "taskboard_whatsapp_send_failures_total",
			Help: "Total number of failed WhatsApp sends",
		}),
	}
}

// Handler serves the metrics in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{})
}

func (r *Recorder) Gatherer() prometheus.Gatherer {
	return r.gatherer
}

// Middleware counts requests and observes their durations.
//
// Routes are labelled with their path templates, not actual paths.
func (r *Recorder) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			begin := time.Now()
			err := next(c)

			status := c.Response().Status
			if err != nil {
				he := new(echo.HTTPError)
				if errors.As(err, &he) {
					status = he.Code
				} else {
					status = http.StatusInternalServerError
				}
			}
			route := c.Path()
			if route == "" {
				route = "(unmatched)"
			}
			r.requestsTotal.WithLabelValues(c.Request().Method, route, strconv.Itoa(status)).Inc()
			r.requestDuration.WithLabelValues(c.Request().Method, route).Observe(time.Since(begin).Seconds())
			return err
		}
	}
}

const (
	OutcomeSent          = "sent"
	OutcomeNothingToSend = "nothing"
	OutcomeNotConfigured = "not_configured"
	OutcomeFailed        = "failed"
)

// ObserveNotification records a result of an overdue check.
func (r *Recorder) ObserveNotification(outcome string, found int) {
	r.notificationRuns.WithLabelValues(outcome).Inc()
	r.overdueTasksFound.Add(float64(found))
	if outcome == OutcomeFailed {
		r.sendFailures.Inc()
	}
}
