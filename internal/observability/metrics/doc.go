// Package metrics holds every Prometheus collector of the news API.
//
// It covers:
//   - HTTP request metrics (count, duration, in-flight, sizes, rate-limited)
//   - article store metrics (per-operation latency, pool statement latency)
//   - business metrics (articles_total, mutation outcomes)
//
// Collectors are registered with the default registry and served on /metrics.
//
// Example usage:
//
//	import "news-api/internal/observability/metrics"
//
//	func deleteArticle(ctx context.Context, id int64) error {
//	    start := time.Now()
//	    n, err := repo.Delete(ctx, id)
//	    metrics.RecordDBQuery("delete", time.Since(start), err)
//	    if err == nil {
//	        metrics.RecordMutation("delete", n)
//	    }
//	    return err
//	}
package metrics
