package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the submission pipeline.
type Metrics struct {
	SubmissionsCreated prometheus.Counter
	Transitions        *prometheus.CounterVec
	EventsPublished    *prometheus.CounterVec
	EventsDropped      prometheus.Counter
	ConnectedChannels  prometheus.Gauge
	RequestLatency     *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		SubmissionsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "fieldcheck_submissions_created_total",
			Help: "Total number of submissions accepted by the intake API",
		}),
		Transitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "fieldcheck_transitions_total",
			Help: "Total number of reviewer transitions applied, by resulting status",
		}, []string{"status"}),
		EventsPublished: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "fieldcheck_events_published_total",
			Help: "Total number of events fanned out to channels, by event type",
		}, []string{"type"}),
		EventsDropped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "fieldcheck_events_dropped_total",
			Help: "Events skipped because a channel was closed or its buffer was full",
		}),
		ConnectedChannels: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "fieldcheck_connected_channels",
			Help: "Number of currently connected client session channels",
		}),
		RequestLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "fieldcheck_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "status"}),
	}
}
