package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the collectors of one server instance.
type Metrics struct {
	Registry *prometheus.Registry

	// RequestsTotal counts API requests.
	RequestsTotal *prometheus.CounterVec
	// RequestDuration measures API request duration.
	RequestDuration *prometheus.HistogramVec
	// SeriesSnapshots tracks the length of the last read of each series.
	SeriesSnapshots *prometheus.GaugeVec
	// LoadErrorsTotal counts failed series reads.
	LoadErrorsTotal *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "gputracker",
				Name:      "http_requests_total",
				Help:      "Total number of API requests",
			},
			[]string{"route", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "gputracker",
				Name:      "http_request_duration_seconds",
				Help:      "Duration of API requests in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"route"},
		),
		SeriesSnapshots: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "gputracker",
				Name:      "series_snapshots",
				Help:      "Number of snapshots in a series at last read",
			},
			[]string{"series"},
		),
		LoadErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "gputracker",
				Name:      "series_load_errors_total",
				Help:      "Total number of failed series reads",
			},
			[]string{"series"},
		),
	}
}
