// Package observability groups the logging, metrics and tracing support of
// the news API.
//
// Subpackages:
//   - logging: slog construction and request-scoped loggers
//   - metrics: the Prometheus collectors and their recorders
//   - tracing: the OpenTelemetry provider and HTTP middleware
//
// Example usage:
//
//	import (
//	    "news-api/internal/observability/logging"
//	    "news-api/internal/observability/metrics"
//	)
//
//	func main() {
//	    logger := logging.NewLogger("info", "json")
//	    logger.Info("application started")
//
//	    metrics.SetArticlesTotal(42)
//	}
package observability
