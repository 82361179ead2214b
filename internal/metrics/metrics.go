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

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by method, route pattern and status code.",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by method and route pattern.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	profileLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "profile_cache_lookups_total",
			Help: "Profile cache lookups by result (hit/miss).",
		},
		[]string{"result"},
	)

	directoryFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "telegram_directory_failures_total",
			Help: "Failed Telegram profile lookup steps (chat/photos/file).",
		},
		[]string{"step"},
	)
)

// MustRegister registers collectors with the default registry (idempotent).
func MustRegister() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, httpDuration, profileLookups, directoryFailures)
	})
}

func Handler() http.Handler {
	return promhttp.Handler()
}

func ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func ProfileCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	profileLookups.WithLabelValues(result).Inc()
}

func DirectoryFailure(step string) {
	directoryFailures.WithLabelValues(step).Inc()
}
