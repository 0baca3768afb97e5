// Package metrics exposes Prometheus collectors for the engine.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal          *prometheus.CounterVec
	httpRequestDurationSeconds *prometheus.HistogramVec
	representatives            *prometheus.GaugeVec
	droppedJobsTotal           prometheus.Counter
	pollsTotal                 *prometheus.CounterVec
	pollRecordsTotal           *prometheus.CounterVec
	sseClients                 prometheus.Gauge

	once sync.Once
)

// Init registers the collectors. It is safe to call more than once.
func Init() {
	once.Do(func() {
		httpRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jobboard_http_requests_total",
				Help: "HTTP requests, labeled by method, route and code.",
			},
			[]string{"method", "route", "code"},
		)

		httpRequestDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "jobboard_http_request_duration_seconds",
				Help:    "HTTP request latencies, labeled by method and route.",
				Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2},
			},
			[]string{"method", "route"},
		)

		representatives = promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "jobboard_representatives",
				Help: "Company representatives in the last computed listing, labeled by tier.",
			},
			[]string{"tier"},
		)

		droppedJobsTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "jobboard_dropped_jobs_total",
				Help: "Jobs that fell into no bucket during categorization.",
			},
		)

		pollsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jobboard_polls_total",
				Help: "Source fetches, labeled by source and status.",
			},
			[]string{"source", "status"},
		)

		pollRecordsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jobboard_poll_records_changed_total",
				Help: "Stored records inserted or updated by polling, labeled by kind.",
			},
			[]string{"kind"},
		)

		sseClients = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "jobboard_sse_clients",
				Help: "Connected /events subscribers.",
			},
		)
	})
}

func Handler() http.Handler {
	return promhttp.Handler()
}

func ObserveHTTPRequest(method, route string, code int, duration time.Duration) {
	Init()
	httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}

// ObserveRepresentatives sets the representative count for one tier.
func ObserveRepresentatives(tier string, n int) {
	Init()
	representatives.WithLabelValues(tier).Set(float64(n))
}

func ObserveDropped(n int) {
	Init()
	if n > 0 {
		droppedJobsTotal.Add(float64(n))
	}
}

// ObservePoll counts one fetch; status is "ok" or "error".
func ObservePoll(source, status string) {
	Init()
	pollsTotal.WithLabelValues(source, status).Inc()
}

func ObserveChanged(kind string, n int) {
	Init()
	if n > 0 {
		pollRecordsTotal.WithLabelValues(kind).Add(float64(n))
	}
}

func IncSSEClients() { Init(); sseClients.Inc() }
func DecSSEClients() { Init(); sseClients.Dec() }
