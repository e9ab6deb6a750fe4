// Package event defines the canonical streaming event schema that every
// provider-specific chunk format is normalized into. Every event carries a
// dense, strictly increasing sequence number and a monotonic timestamp,
// assigned by the normalizer rather than read from the provider, so ordering
// is a property of the adapter and not of provider clock skew.
package event

import (
	"time"

	"github.com/flowcore-ai/streamcore/pkg/jsonvalue"
)

// FinishReason explains why a stream ended.
type FinishReason string

const (
	FinishReasonStop          FinishReason = "stop"
	FinishReasonLength        FinishReason = "length"
	FinishReasonToolCalls     FinishReason = "tool_calls"
	FinishReasonContentFilter FinishReason = "content_filter"
	FinishReasonOther         FinishReason = "other"
)

// Kind identifies which event variant a value holds.
type Kind int

const (
	KindToken Kind = iota
	KindToolCall
	KindToolResult
	KindFinal
)

func (k Kind) String() string {
	switch k {
	case KindToken:
		return "token"
	case KindToolCall:
		return "tool_call"
	case KindToolResult:
		return "tool_result"
	case KindFinal:
		return "final"
	default:
		return "unknown"
	}
}

// Event is the canonical sum type. Exactly one of the payload fields is
// meaningful, selected by Kind; callers should switch on Kind rather than
// checking fields for a zero value.
type Event struct {
	Kind  Kind
	SeqID uint64
	TS    time.Time

	// Token fields.
	TokenContent string
	TokenIndex   int

	// ToolCall fields.
	ToolCallID   string
	ToolCallName string
	ToolCallArgs map[string]jsonvalue.Value

	// ToolResult fields.
	ToolResultCallID string
	ToolResultOutput string

	// Final fields.
	FinalOutput       string
	FinalFinishReason FinishReason
	FinalUsage        map[string]int
}

// Token constructs a Token event.
func Token(seqID uint64, ts time.Time, content string, index int) Event {
	return Event{Kind: KindToken, SeqID: seqID, TS: ts, TokenContent: content, TokenIndex: index}
}

// ToolCall constructs a ToolCall event.
func ToolCall(seqID uint64, ts time.Time, callID, name string, args map[string]jsonvalue.Value) Event {
	return Event{Kind: KindToolCall, SeqID: seqID, TS: ts, ToolCallID: callID, ToolCallName: name, ToolCallArgs: args}
}

// ToolResult constructs a ToolResult event.
func ToolResult(seqID uint64, ts time.Time, callID, output string) Event {
	return Event{Kind: KindToolResult, SeqID: seqID, TS: ts, ToolResultCallID: callID, ToolResultOutput: output}
}

// Final constructs a Final event.
func Final(seqID uint64, ts time.Time, output string, reason FinishReason, usage map[string]int) Event {
	return Event{Kind: KindFinal, SeqID: seqID, TS: ts, FinalOutput: output, FinalFinishReason: reason, FinalUsage: usage}
}
