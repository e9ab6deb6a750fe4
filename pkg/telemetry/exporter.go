package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// ExporterConfig configures an OTLP-over-HTTP trace exporter for streamcore's
// "ai.stream" spans. A plain OTLP collector endpoint is all this core needs;
// vendor-specific tracking headers belong to the host application.
type ExporterConfig struct {
	// Endpoint is the OTLP HTTP collector address, e.g. "localhost:4318".
	Endpoint string

	// ServiceName identifies this process's spans. Defaults to
	// "streamcore" if empty.
	ServiceName string

	// Insecure disables TLS for local collectors.
	Insecure bool
}

// NewOTLPTracerProvider builds and registers a global TracerProvider that
// batches spans to an OTLP HTTP collector, returning it so the caller can
// Shutdown it on exit. Use GetTracer(settings.WithEnabled(true)) afterward
// to have Facade.Stream use the registered global tracer.
func NewOTLPTracerProvider(ctx context.Context, cfg ExporterConfig) (*sdktrace.TracerProvider, error) {
	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "streamcore"
	}

	opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}

	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("telemetry: failed to create OTLP exporter: %w", err)
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes("", attribute.String("service.name", serviceName)),
	)
	if err != nil {
		return nil, fmt.Errorf("telemetry: failed to build resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)

	return tp, nil
}
