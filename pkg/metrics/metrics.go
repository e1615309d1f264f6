package metrics

import (
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for the service
type Metrics struct {
	RequestCounter   *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	RequestsInFlight *prometheus.GaugeVec
	DBConnPoolStats  *prometheus.GaugeVec

	MigrationsTotal  *prometheus.CounterVec
	CounterDrift     *prometheus.GaugeVec
	RecomputeRuns    prometheus.Counter
}

// NewMetrics creates a new metrics instance
func NewMetrics(serviceName string) *Metrics {
	return &Metrics{
		RequestCounter: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "journalclub",
				Subsystem: serviceName,
				Name:      "requests_total",
				Help:      "Total number of requests",
			},
			[]string{"method", "status"},
		),
		RequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "journalclub",
				Subsystem: serviceName,
				Name:      "request_duration_seconds",
				Help:      "Request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method"},
		),
		RequestsInFlight: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "journalclub",
				Subsystem: serviceName,
				Name:      "requests_in_flight",
				Help:      "Number of requests currently being processed",
			},
			[]string{"method"},
		),
		DBConnPoolStats: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "journalclub",
				Subsystem: serviceName,
				Name:      "db_connection_pool",
				Help:      "Database connection pool statistics",
			},
			[]string{"stat"}, // stat can be: open, in_use, idle, wait_count, etc.
		),
		MigrationsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "journalclub",
				Subsystem: serviceName,
				Name:      "guest_migrations_total",
				Help:      "Guest-to-user migrations by outcome",
			},
			[]string{"outcome"}, // merged, noop, failed
		),
		CounterDrift: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "journalclub",
				Subsystem: serviceName,
				Name:      "reaction_counter_drift",
				Help:      "Episodes whose cached reaction counters disagreed with the reaction table at last recompute",
			},
			[]string{"action"},
		),
		RecomputeRuns: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: "journalclub",
				Subsystem: serviceName,
				Name:      "counter_recompute_runs_total",
				Help:      "Completed counter reconciliation runs",
			},
		),
	}
}

// HTTPMiddleware returns an HTTP middleware that records request metrics
func HTTPMiddleware(m *Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			method := r.Method + " " + r.URL.Path

			m.RequestsInFlight.WithLabelValues(method).Inc()
			defer m.RequestsInFlight.WithLabelValues(method).Dec()

			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			m.RequestDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
			m.RequestCounter.WithLabelValues(method, strconv.Itoa(rec.status)).Inc()
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// CollectDBStats publishes sql.DB pool statistics until stop is closed
func CollectDBStats(m *Metrics, db *sql.DB, interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			stats := db.Stats()
			m.DBConnPoolStats.WithLabelValues("open").Set(float64(stats.OpenConnections))
			m.DBConnPoolStats.WithLabelValues("in_use").Set(float64(stats.InUse))
			m.DBConnPoolStats.WithLabelValues("idle").Set(float64(stats.Idle))
			m.DBConnPoolStats.WithLabelValues("wait_count").Set(float64(stats.WaitCount))
		}
	}
}
