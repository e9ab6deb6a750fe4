package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestNewOTLPTracerProviderBuildsAndShutsDown(t *testing.T) {
	tp, err := NewOTLPTracerProvider(context.Background(), ExporterConfig{
		Endpoint: "127.0.0.1:0",
		Insecure: true,
	})
	require.NoError(t, err)
	require.NotNil(t, tp)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, tp.Shutdown(ctx))
}

func TestNewOTLPTracerProviderDefaultsServiceName(t *testing.T) {
	tp, err := NewOTLPTracerProvider(context.Background(), ExporterConfig{
		Endpoint: "127.0.0.1:0",
		Insecure: true,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	defer tp.Shutdown(ctx)

	tracer := tp.Tracer("test")
	require.NotNil(t, tracer)

	_, span := tracer.Start(context.Background(), "probe")
	defer span.End()
	ro, ok := span.(sdktrace.ReadOnlySpan)
	require.True(t, ok)
	name, ok := ro.Resource().Set().Value("service.name")
	require.True(t, ok)
	require.Equal(t, "streamcore", name.AsString())
}
