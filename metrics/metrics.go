package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	once sync.Once

	backendRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cinema_cli",
			Name:      "backend_requests_total",
			Help:      "Backend HTTP calls by method, route and status code.",
		},
		[]string{"method", "route", "status"},
	)

	backendLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "cinema_cli",
			Name:      "backend_request_duration_seconds",
			Help:      "Backend HTTP call latency.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	validations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cinema_cli",
			Name:      "ticket_validations_total",
			Help:      "Ticket validations by outcome.",
		},
		[]string{"outcome"},
	)
)

// Register registers the collectors with the default registry. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(backendRequests, backendLatency, validations)
	})
}

// ObserveRequest records one backend call. A zero status means the call never got a response.
func ObserveRequest(method, route string, status int, elapsed time.Duration) {
	code := "error"
	if status > 0 {
		code = strconv.Itoa(status)
	}
	backendRequests.WithLabelValues(method, route, code).Inc()
	backendLatency.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// IncValidation counts a ticket validation attempt ("ok" or "rejected").
func IncValidation(outcome string) {
	validations.WithLabelValues(outcome).Inc()
}

func Handler() http.Handler {
	return promhttp.Handler()
}
