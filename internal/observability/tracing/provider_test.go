package tracing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestInitProvider(t *testing.T) {
	prevTP := otel.GetTracerProvider()
	prevProp := otel.GetTextMapPropagator()
	t.Cleanup(func() {
		otel.SetTracerProvider(prevTP)
		otel.SetTextMapPropagator(prevProp)
	})

	exporter := tracetest.NewInMemoryExporter()
	tp, shutdown := InitProvider(ProviderConfig{
		ServiceName:    "news-api",
		ServiceVersion: "test",
		SampleRatio:    1,
	}, sdktrace.WithSyncer(exporter))
	require.NotNil(t, tp)

	assert.Same(t, tp, otel.GetTracerProvider())
	assert.Contains(t, otel.GetTextMapPropagator().Fields(), "traceparent")

	_, span := GetTracer().Start(context.Background(), "article.count")
	span.End()

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "article.count", spans[0].Name)
	assert.Contains(t, spans[0].Resource.Attributes(), attribute.String("service.name", "news-api"))

	require.NoError(t, shutdown(context.Background()))
}

func TestInitProvider_ZeroRatioDropsRootSpans(t *testing.T) {
	prevTP := otel.GetTracerProvider()
	prevProp := otel.GetTextMapPropagator()
	t.Cleanup(func() {
		otel.SetTracerProvider(prevTP)
		otel.SetTextMapPropagator(prevProp)
	})

	exporter := tracetest.NewInMemoryExporter()
	_, shutdown := InitProvider(ProviderConfig{ServiceName: "news-api"}, sdktrace.WithSyncer(exporter))
	defer func() { _ = shutdown(context.Background()) }()

	_, span := GetTracer().Start(context.Background(), "article.count")
	assert.False(t, span.SpanContext().IsSampled())
	span.End()

	assert.Empty(t, exporter.GetSpans())
}
