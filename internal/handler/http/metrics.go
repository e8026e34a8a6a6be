package http

import (
	"net/http"
	"strconv"
	"time"

	"news-api/internal/handler/http/pathutil"
	"news-api/internal/handler/http/responsewriter"
	"news-api/internal/observability/metrics"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// unmatchedRoute labels 404s for paths no route serves, so scanners cannot
// mint new label values.
const unmatchedRoute = "unmatched"

// MetricsMiddleware records request count, duration, in-flight requests and
// body sizes. Paths are normalized (e.g. /news/123 → /news/:id) before they
// become labels.
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		metrics.HTTPRequestsInFlight.Inc()
		defer metrics.HTTPRequestsInFlight.Dec()

		start := time.Now()
		rw := responsewriter.Wrap(w)
		next.ServeHTTP(rw, r)
		duration := time.Since(start).Seconds()

		route := routeLabel(r.URL.Path, rw.StatusCode())
		status := strconv.Itoa(rw.StatusCode())

		metrics.HTTPRequestsTotal.WithLabelValues(r.Method, route, status).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(r.Method, route, status).Observe(duration)
		if r.ContentLength > 0 {
			metrics.HTTPRequestSize.WithLabelValues(r.Method, route).Observe(float64(r.ContentLength))
		}
		metrics.HTTPResponseSize.WithLabelValues(r.Method, route).Observe(float64(rw.BytesWritten()))
	})
}

func routeLabel(path string, status int) string {
	normalized := pathutil.NormalizePath(path)
	if status == http.StatusNotFound && normalized != pathutil.ArticleDetailsRoute {
		return unmatchedRoute
	}
	return normalized
}

// MetricsHandler returns an HTTP handler for the Prometheus metrics endpoint.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
