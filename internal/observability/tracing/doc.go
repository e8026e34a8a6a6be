// Package tracing provides OpenTelemetry tracing integration.
//
// InitProvider installs the SDK tracer provider and W3C propagators,
// Middleware opens one server span per HTTP request, and GetTracer is used
// by the article service to open child spans around store operations.
//
//	tp, shutdown := tracing.InitProvider(tracing.ProviderConfig{
//	    ServiceName: "news-api",
//	    SampleRatio: 1,
//	})
//	defer shutdown(context.Background())
//	_ = tp
package tracing
