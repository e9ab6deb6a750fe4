package consumer

import (
	"context"
	"strings"
	"sync"

	"github.com/flowcore-ai/streamcore/pkg/event"
	"github.com/flowcore-ai/streamcore/pkg/jsonvalue"
)

// ToolExchange pairs a tool call with its result, once both sides have
// arrived. Output is nil until the matching ToolResult event is seen.
type ToolExchange struct {
	CallID string
	Name   string
	Args   map[string]interface{}
	Output interface{}
}

// TranscriptSink is a minimal reference Sink: it accumulates token content
// into a single transcript string and keeps tool calls and tool results
// paired by call ID. It does not retry, time out, or emit telemetry; a host
// runtime wanting those wraps TranscriptSink or implements Sink itself.
type TranscriptSink struct {
	mu         sync.Mutex
	builder    strings.Builder
	exchanges  map[string]*ToolExchange
	order      []string
	finishedAs event.FinishReason
	usage      map[string]int
	gotFinal   bool
}

// NewTranscriptSink creates an empty TranscriptSink.
func NewTranscriptSink() *TranscriptSink {
	return &TranscriptSink{exchanges: make(map[string]*ToolExchange)}
}

// OnEvent implements Sink.
func (s *TranscriptSink) OnEvent(ctx context.Context, e event.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch e.Kind {
	case event.KindToken:
		s.builder.WriteString(e.TokenContent)
	case event.KindToolCall:
		ex, ok := s.exchanges[e.ToolCallID]
		if !ok {
			ex = &ToolExchange{CallID: e.ToolCallID}
			s.exchanges[e.ToolCallID] = ex
			s.order = append(s.order, e.ToolCallID)
		}
		ex.Name = e.ToolCallName
		ex.Args = toInterfaceMap(e.ToolCallArgs)
	case event.KindToolResult:
		ex, ok := s.exchanges[e.ToolResultCallID]
		if !ok {
			ex = &ToolExchange{CallID: e.ToolResultCallID}
			s.exchanges[e.ToolResultCallID] = ex
			s.order = append(s.order, e.ToolResultCallID)
		}
		ex.Output = e.ToolResultOutput
	case event.KindFinal:
		s.gotFinal = true
		s.finishedAs = e.FinalFinishReason
		s.usage = e.FinalUsage
	}
	return nil
}

// Close implements Sink. TranscriptSink holds no resources to release.
func (s *TranscriptSink) Close() error { return nil }

// Transcript returns the accumulated token content.
func (s *TranscriptSink) Transcript() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.builder.String()
}

// ToolExchanges returns recorded tool calls in the order first seen, each
// with its result filled in if one arrived.
func (s *TranscriptSink) ToolExchanges() []ToolExchange {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ToolExchange, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.exchanges[id])
	}
	return out
}

// FinishReason returns the finish reason from the Final event, if one has
// been seen.
func (s *TranscriptSink) FinishReason() (event.FinishReason, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.finishedAs, s.gotFinal
}

// Usage returns the usage map from the Final event, if one has been seen.
func (s *TranscriptSink) Usage() map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.usage
}

func toInterfaceMap(m map[string]jsonvalue.Value) map[string]interface{} {
	if m == nil {
		return nil
	}
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = v.Thaw()
	}
	return out
}
