// Package providerutils holds small, provider-agnostic mapping helpers
// shared by the normalizer and any concrete provider package. Kept separate
// from normalizer so a second provider package (a future non-OpenAI-shaped
// source) can reuse the same finish-reason vocabulary without importing the
// stateful normalizer itself.
package providerutils

import "github.com/flowcore-ai/streamcore/pkg/event"

// MapFinishReason maps a provider's raw finish-reason string onto the
// canonical event.FinishReason vocabulary. Handles both the current
// ("tool_calls") and legacy ("function_call") OpenAI spellings.
func MapFinishReason(reason string) event.FinishReason {
	switch reason {
	case "stop":
		return event.FinishReasonStop
	case "length":
		return event.FinishReasonLength
	case "tool_calls", "function_call":
		return event.FinishReasonToolCalls
	case "content_filter":
		return event.FinishReasonContentFilter
	default:
		return event.FinishReasonOther
	}
}

// IsTerminal reports whether reason is one of the three values that
// synthesize a Final event. "tool_calls" hands control back to the model
// instead of ending the turn, so it is deliberately excluded.
func IsTerminal(reason string) bool {
	switch reason {
	case "stop", "length", "content_filter":
		return true
	default:
		return false
	}
}
