package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the connector's prometheus collectors on a private registry.
type Metrics struct {
	Registry    *prometheus.Registry
	TicketCount *prometheus.GaugeVec
	PollErrors  *prometheus.CounterVec
	PollSeconds prometheus.Histogram
	LastSuccess prometheus.Gauge
}

func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		TicketCount: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "otrs_ticket_count",
				Help: "Number of tickets fetched in the last poll by state, priority, queue, type.",
			},
			[]string{"state", "priority", "queue", "type"},
		),
		PollErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "otrs_poll_errors_total",
				Help: "Failed OTRS requests by operation.",
			},
			[]string{"operation"},
		),
		PollSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "otrs_poll_duration_seconds",
			Help:    "Duration of a polling cycle.",
			Buckets: prometheus.DefBuckets,
		}),
		LastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "otrs_last_success_timestamp_seconds",
			Help: "Unix time of the last polling cycle that completed its search.",
		}),
	}
	m.Registry.MustRegister(m.TicketCount, m.PollErrors, m.PollSeconds, m.LastSuccess)
	return m
}

// ObservePoll records the duration of a polling cycle.
func (m *Metrics) ObservePoll(took time.Duration) {
	m.PollSeconds.Observe(took.Seconds())
}

// Handler serves the registry in the prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}
