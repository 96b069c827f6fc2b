// Package metrics exposes Prometheus instrumentation for the command surface.
//
// Metrics are registered with the default registry at init time and served
// by Handler, normally mounted at /metrics on the configured metrics address.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	CommandsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jasmify_commands_total",
			Help: "Total number of commands by name and result",
		},
		[]string{"command", "result"},
	)

	CommandDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "jasmify_command_duration_seconds",
			Help:    "Command duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"command"},
	)

	AccountsTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "jasmify_accounts_total",
			Help: "Number of stored accounts",
		},
	)
)

func init() {
	prometheus.MustRegister(CommandsTotal)
	prometheus.MustRegister(CommandDuration)
	prometheus.MustRegister(AccountsTotal)
}

// ObserveCommand records one finished command. result is "ok" or the error
// taxonomy name.
func ObserveCommand(command, result string, d time.Duration) {
	CommandsTotal.WithLabelValues(command, result).Inc()
	CommandDuration.WithLabelValues(command).Observe(d.Seconds())
}

// Handler returns the Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer measures elapsed time from its creation.
type Timer struct {
	start time.Time
}

func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
