// Package consumer declares the external Runtime Event Consumer contract:
// the interface a host agent runtime implements to receive canonical
// events from a streamiter.Iterator. This adapter core owns normalization
// and iteration only; everything downstream of OnEvent (tool execution,
// transcript persistence, retries) belongs to the runtime and is out of
// scope here, per the adapter's non-goals.
package consumer

import (
	"context"
	"errors"
	"io"

	"github.com/flowcore-ai/streamcore/pkg/event"
)

// Sink receives canonical events from one stream, in order, until Close.
type Sink interface {
	// OnEvent is called once per canonical event, in emission order. An
	// error aborts the stream.
	OnEvent(ctx context.Context, e event.Event) error

	// Close is called exactly once, after the stream ends (cleanly or by
	// error), to release any resources the sink is holding.
	Close() error
}

// Drain pulls every event from it and forwards each to sink.OnEvent, in
// order, stopping at the first error from either side. It always calls
// sink.Close before returning. Callback, telemetry, and timeout machinery
// belong to the host runtime, not this pump.
func Drain(ctx context.Context, it interface {
	Next(context.Context) (event.Event, error)
}, sink Sink) error {
	defer sink.Close()

	for {
		e, err := it.Next(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if err := sink.OnEvent(ctx, e); err != nil {
			return err
		}
	}
}
