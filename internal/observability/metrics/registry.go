// Package metrics provides centralized Prometheus metrics for the application.
package metrics

import (
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics track HTTP request patterns and performance
var (
	// HTTPRequestsTotal counts total HTTP requests by method, path, and status
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration buckets cover fast (5ms) to slow (10s) API responses.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestsInFlight tracks the current number of HTTP requests being processed
	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Current number of HTTP requests being served",
		},
	)

	// HTTPRequestSize measures HTTP request body size in bytes
	HTTPRequestSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_size_bytes",
			Help:    "HTTP request size in bytes",
			Buckets: prometheus.ExponentialBuckets(100, 10, 8),
		},
		[]string{"method", "path"},
	)

	// HTTPResponseSize measures HTTP response body size in bytes
	HTTPResponseSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_response_size_bytes",
			Help:    "HTTP response size in bytes",
			Buckets: prometheus.ExponentialBuckets(100, 10, 8),
		},
		[]string{"method", "path"},
	)

	// HTTPRateLimited counts requests rejected by the rate limiter
	HTTPRateLimited = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "http_rate_limited_total",
			Help: "Total number of requests rejected by the rate limiter",
		},
	)
)

// Database metrics
var (
	// DBQueryDuration measures article store operations, one label per operation
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Article store operation duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 10),
		},
		[]string{"operation", "status"},
	)

	// DBPoolStatementDuration measures raw statement execution inside the pool,
	// including time spent waiting for a free connection
	DBPoolStatementDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_pool_statement_duration_seconds",
			Help:    "Statement duration including connection wait, in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 10),
		},
		[]string{"kind"},
	)
)

// Business metrics
var (
	// ArticlesTotal tracks total number of articles in database
	ArticlesTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "articles_total",
			Help: "Total number of articles in the database",
		},
	)

	// ArticleMutationsTotal counts update and delete outcomes.
	// result is "applied" when at least one row changed, "noop" otherwise.
	ArticleMutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "article_mutations_total",
			Help: "Total number of article mutations by operation and result",
		},
		[]string{"operation", "result"},
	)
)

// RecordDBQuery records the duration of an article store operation.
func RecordDBQuery(operation string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	DBQueryDuration.WithLabelValues(operation, status).Observe(duration.Seconds())
}

// RecordPoolStatement records one statement executed through the pool.
func RecordPoolStatement(kind string, duration time.Duration) {
	DBPoolStatementDuration.WithLabelValues(kind).Observe(duration.Seconds())
}

// RecordMutation records the affected-row outcome of an update or delete.
func RecordMutation(operation string, affected int64) {
	result := "applied"
	if affected == 0 {
		result = "noop"
	}
	ArticleMutationsTotal.WithLabelValues(operation, result).Inc()
}

// SetArticlesTotal updates the total count of articles in the database.
func SetArticlesTotal(count int64) {
	ArticlesTotal.Set(float64(count))
}

// RegisterDBStats exposes connection pool statistics (open, in-use, idle, wait
// count and duration) under the given db_name label. Registering the same pool
// twice is a no-op.
func RegisterDBStats(db *sql.DB, name string) {
	err := prometheus.Register(collectors.NewDBStatsCollector(db, name))
	if err == nil {
		return
	}
	var already prometheus.AlreadyRegisteredError
	if errors.As(err, &already) {
		return
	}
	slog.Warn("failed to register db stats collector",
		slog.String("db_name", name),
		slog.Any("error", err))
}
