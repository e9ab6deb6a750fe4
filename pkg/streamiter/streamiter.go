// Package streamiter provides a cancellation-safe iterator over canonical
// events, pulling from a provider chunk source through a normalizer. Each
// pulled chunk may yield several events; the iterator buffers them and
// guarantees at-most-once release of the underlying source.
package streamiter

import (
	"context"
	"io"
	"sync"

	"github.com/flowcore-ai/streamcore/pkg/adaptererr"
	"github.com/flowcore-ai/streamcore/pkg/event"
)

// Source is a provider chunk pump: it yields the next raw chunk, or io.EOF
// when the underlying connection has cleanly ended.
type Source interface {
	Next(ctx context.Context) (interface{}, error)
	Close() error
}

// Ingester is implemented by *normalizer.Normalizer; declared here as an
// interface so streamiter does not import normalizer, keeping the
// dependency direction one-way (adapter wires both together).
type Ingester interface {
	Ingest(raw interface{}) ([]event.Event, error)
	Done() bool
}

// Iterator pulls chunks from a Source, normalizes them, and serves the
// resulting canonical events one at a time. It is safe to call Close from
// any goroutine, including concurrently with Next; close is idempotent and
// releases the underlying Source at most once.
type Iterator struct {
	source     Source
	normalizer Ingester

	buf []event.Event

	closeOnce sync.Once
	closeErr  error
	closed    bool
	mu        sync.Mutex
}

// New creates an Iterator over source, feeding every pulled chunk through
// normalizer before buffering its events.
func New(source Source, normalizer Ingester) *Iterator {
	return &Iterator{source: source, normalizer: normalizer}
}

// Next returns the next canonical event. It returns io.EOF once a Final
// event has been delivered and the buffer has drained, or once the source
// ends cleanly without ever producing a Final event.
func (it *Iterator) Next(ctx context.Context) (event.Event, error) {
	for {
		it.mu.Lock()
		if it.closed {
			it.mu.Unlock()
			return event.Event{}, io.EOF
		}
		if len(it.buf) > 0 {
			e := it.buf[0]
			it.buf = it.buf[1:]
			finalDelivered := e.Kind == event.KindFinal
			drained := len(it.buf) == 0
			it.mu.Unlock()
			if finalDelivered && drained {
				_ = it.Close()
			}
			return e, nil
		}
		it.mu.Unlock()

		if it.normalizer.Done() {
			_ = it.Close()
			return event.Event{}, io.EOF
		}

		raw, err := it.source.Next(ctx)
		if err == io.EOF {
			_ = it.Close()
			return event.Event{}, io.EOF
		}
		if err != nil {
			_ = it.Close()
			return event.Event{}, adaptererr.NewTransport("provider stream read failed", err)
		}

		events, err := it.normalizer.Ingest(raw)
		if err != nil {
			_ = it.Close()
			return event.Event{}, err
		}

		it.mu.Lock()
		it.buf = append(it.buf, events...)
		it.mu.Unlock()
	}
}

// Close releases the underlying Source. It is idempotent: the second and
// later calls are no-ops that return the same error the first call saw.
func (it *Iterator) Close() error {
	it.closeOnce.Do(func() {
		it.mu.Lock()
		it.closed = true
		it.mu.Unlock()
		it.closeErr = it.source.Close()
	})
	return it.closeErr
}
