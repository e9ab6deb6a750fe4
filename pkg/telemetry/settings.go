// Package telemetry wraps OpenTelemetry tracing for the one span this core
// emits per facade call: "ai.stream" around building the request and opening
// a provider stream (it ends when Stream returns, before the stream is
// drained), or "ai.generate" around a non-streaming Generate call.
package telemetry

import (
	"go.opentelemetry.io/otel/trace"
)

// Settings controls whether and how Facade.Stream traces a call.
// Telemetry is disabled by default and must be explicitly enabled.
type Settings struct {
	// IsEnabled controls whether telemetry is active. Defaults to false.
	IsEnabled bool

	// Tracer is a custom OpenTelemetry tracer. If nil, the global tracer is
	// used once telemetry is enabled.
	Tracer trace.Tracer
}

// DefaultSettings returns telemetry disabled, the zero-config default for a
// Facade that hasn't opted in.
func DefaultSettings() *Settings {
	return &Settings{IsEnabled: false}
}

// WithEnabled returns a copy of Settings with IsEnabled set to the given value.
func (s *Settings) WithEnabled(enabled bool) *Settings {
	copy := *s
	copy.IsEnabled = enabled
	return &copy
}

// WithTracer returns a copy of Settings with Tracer set to the given value.
func (s *Settings) WithTracer(tracer trace.Tracer) *Settings {
	copy := *s
	copy.Tracer = tracer
	return &copy
}
