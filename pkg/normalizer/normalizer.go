// Package normalizer turns OpenAI-shaped provider streaming chunks into the
// canonical event.Event sequence. Tool-call argument fragments are
// accumulated by their per-chunk integer index and flushed, strictly
// JSON-parsed, only once the stream signals completion.
package normalizer

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"github.com/flowcore-ai/streamcore/pkg/adaptererr"
	"github.com/flowcore-ai/streamcore/pkg/clock"
	"github.com/flowcore-ai/streamcore/pkg/event"
	"github.com/flowcore-ai/streamcore/pkg/providerutils"
	"github.com/flowcore-ai/streamcore/pkg/toolbridge"
)

type fragmentAccumulator struct {
	callID    string
	name      string
	fragments []string
}

// Normalizer is a stateful, single-stream event emitter. It is not safe for
// concurrent use; callers own one Normalizer per in-flight stream.
type Normalizer struct {
	gens              clock.Generators
	tokenIndex        int
	accumulator       map[int]*fragmentAccumulator
	finished          bool
	textFragments     []string
	lastTotalTokens   *int
	lastToolResultOut *string
}

// New creates a Normalizer using the default deterministic generators.
func New() *Normalizer {
	return &Normalizer{
		gens:        clock.NewGenerators(),
		accumulator: make(map[int]*fragmentAccumulator),
	}
}

// NewWithGenerators creates a Normalizer using caller-supplied sequence and
// timestamp generators, for tests that need to assert on exact values.
func NewWithGenerators(gens clock.Generators) *Normalizer {
	return &Normalizer{
		gens:        gens,
		accumulator: make(map[int]*fragmentAccumulator),
	}
}

// Done reports whether this stream has already emitted its Final event.
func (n *Normalizer) Done() bool {
	return n.finished
}

// openAIChunk mirrors the wire shape of an OpenAI chat-completions streaming
// chunk, trimmed to the fields the normalizer inspects.
type openAIChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
		FinishReason *string `json:"finish_reason"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     *int `json:"prompt_tokens"`
		CompletionTokens *int `json:"completion_tokens"`
		TotalTokens      *int `json:"total_tokens"`
	} `json:"usage"`

	// ToolResult is not part of the OpenAI wire format; it is an
	// extension point for runtimes that multiplex a tool's execution
	// result back through the same ingestion point so it can be ordered
	// relative to tokens and tool calls within one chunk.
	ToolResult *struct {
		CallID string `json:"id"`
		Output string `json:"output"`
	} `json:"tool_result"`
}

// Ingest consumes one raw provider chunk (a decoded JSON map, raw JSON
// bytes/string, or a bag-like wrapper — see coerce) and returns the
// canonical events it produces, in the fixed per-chunk order: ToolResult (if
// present), then Tokens, then completed ToolCalls, then Final.
//
// Ingest must not be called again after it has returned a Final event.
func (n *Normalizer) Ingest(raw interface{}) ([]event.Event, error) {
	if n.finished {
		return nil, adaptererr.NewBadChunk("", "stream already finished", nil)
	}

	m, err := coerce(raw)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(m)
	if err != nil {
		return nil, adaptererr.NewBadChunk("", "chunk failed to re-encode for inspection", err)
	}
	var chunk openAIChunk
	if err := json.Unmarshal(body, &chunk); err != nil {
		return nil, adaptererr.NewBadChunk("", "chunk does not match the expected provider shape", err)
	}

	if chunk.Choices != nil && len(chunk.Choices) == 0 {
		return nil, adaptererr.NewBadChunk("choices", "choices must not be an empty array", nil)
	}

	if err := n.updateUsage(chunk.Usage); err != nil {
		return nil, err
	}

	var events []event.Event

	if chunk.ToolResult != nil {
		if chunk.ToolResult.CallID == "" {
			return nil, adaptererr.NewBadChunk("tool_result.id", "tool_result.id must be a non-empty string", nil)
		}
		events = append(events, event.ToolResult(n.gens.Seq(), n.gens.TS(), chunk.ToolResult.CallID, chunk.ToolResult.Output))
		out := chunk.ToolResult.Output
		n.lastToolResultOut = &out
	}

	var finishReason *string
	touched := map[int]bool{}
	if len(chunk.Choices) > 0 {
		choice := chunk.Choices[0]
		finishReason = choice.FinishReason

		if choice.Delta.Content != "" {
			events = append(events, event.Token(n.gens.Seq(), n.gens.TS(), choice.Delta.Content, n.tokenIndex))
			n.tokenIndex++
			n.textFragments = append(n.textFragments, choice.Delta.Content)
			n.lastToolResultOut = nil
		}

		var err error
		touched, err = n.ingestToolCallDeltas(m)
		if err != nil {
			return nil, err
		}
	}

	if finishReason != nil && *finishReason == "tool_calls" {
		toolCallEvents, err := n.flushToolCalls(touched)
		if err != nil {
			return nil, err
		}
		events = append(events, toolCallEvents...)
		n.textFragments = nil
		return events, nil
	}

	if finishReason != nil && providerutils.IsTerminal(*finishReason) && !n.finished {
		reason := providerutils.MapFinishReason(*finishReason)

		output := ""
		if len(n.textFragments) > 0 {
			for _, f := range n.textFragments {
				output += f
			}
		} else if n.lastToolResultOut != nil {
			output = *n.lastToolResultOut
		}

		var usage map[string]int
		if n.lastTotalTokens != nil {
			usage = map[string]int{"total_tokens": *n.lastTotalTokens}
		}

		events = append(events, event.Final(n.gens.Seq(), n.gens.TS(), output, reason, usage))
		n.finished = true
	}

	return events, nil
}

// ingestToolCallDeltas walks the raw (still-untyped) choices[0].delta.tool_calls
// array of the current chunk and upserts each entry into its fragment
// accumulator. It is handed the coerced map directly, rather than a typed
// struct field, because a typed int/string field cannot distinguish "absent"
// from "present but zero" — and the provider-chunk contract requires that
// distinction: index must always be present, while id/type/name/arguments
// are each individually optional but, when present, must be well-formed. It
// returns the set of accumulator indices this chunk touched, which the
// caller uses to decide what a terminal tool_calls chunk may flush.
func (n *Normalizer) ingestToolCallDeltas(m map[string]interface{}) (map[int]bool, error) {
	touched := map[int]bool{}

	choices, ok := m["choices"].([]interface{})
	if !ok || len(choices) == 0 {
		return touched, nil
	}
	choice0, ok := choices[0].(map[string]interface{})
	if !ok {
		return touched, nil
	}
	delta, ok := choice0["delta"].(map[string]interface{})
	if !ok {
		return touched, nil
	}
	rawCalls, ok := delta["tool_calls"]
	if !ok {
		return touched, nil
	}
	calls, ok := rawCalls.([]interface{})
	if !ok {
		return nil, adaptererr.NewBadChunk("choices[0].delta.tool_calls", "tool_calls must be an array", nil)
	}

	for i, item := range calls {
		path := fmt.Sprintf("choices[0].delta.tool_calls[%d]", i)
		entry, ok := item.(map[string]interface{})
		if !ok {
			return nil, adaptererr.NewBadChunk(path, "tool call delta must be an object", nil)
		}

		rawIndex, ok := entry["index"]
		if !ok {
			return nil, adaptererr.NewBadChunk(path+".index", "tool call delta must carry an integer index", nil)
		}
		idxFloat, ok := rawIndex.(float64)
		if !ok || idxFloat != math.Trunc(idxFloat) {
			return nil, adaptererr.NewBadChunk(path+".index", "tool call index must be an integer", nil)
		}
		idx := int(idxFloat)
		touched[idx] = true

		acc, ok := n.accumulator[idx]
		if !ok {
			acc = &fragmentAccumulator{}
			n.accumulator[idx] = acc
		}

		if rawID, present := entry["id"]; present {
			id, isStr := rawID.(string)
			if !isStr || id == "" {
				return nil, adaptererr.NewBadChunk(path+".id", "tool call id, if present, must be a non-empty string", nil)
			}
			acc.callID = id
		}

		if rawType, present := entry["type"]; present {
			typ, isStr := rawType.(string)
			if !isStr || typ != "function" {
				return nil, adaptererr.NewBadChunk(path+".type", "tool call type, if present, must be \"function\"", nil)
			}
		}

		if rawFn, present := entry["function"]; present {
			fn, ok := rawFn.(map[string]interface{})
			if !ok {
				return nil, adaptererr.NewBadChunk(path+".function", "tool call function, if present, must be an object", nil)
			}
			if rawName, present := fn["name"]; present {
				name, isStr := rawName.(string)
				if !isStr || name == "" {
					return nil, adaptererr.NewBadChunk(path+".function.name", "tool call function name, if present, must be a non-empty string", nil)
				}
				acc.name = name
			}
			if rawArgs, present := fn["arguments"]; present {
				args, isStr := rawArgs.(string)
				if !isStr {
					return nil, adaptererr.NewBadChunk(path+".function.arguments", "tool call function arguments, if present, must be a string fragment", nil)
				}
				if args != "" {
					acc.fragments = append(acc.fragments, args)
				}
			}
		}
	}

	return touched, nil
}

// flushToolCalls reassembles the fragment accumulators touched by the
// current chunk into ToolCall events, in ascending index order, and removes
// only those entries from the accumulator map. An accumulator that was
// populated by an earlier chunk but not touched by this one stays pending —
// it is not forced out just because the stream is ending on tool_calls.
func (n *Normalizer) flushToolCalls(touched map[int]bool) ([]event.Event, error) {
	if len(touched) == 0 {
		return nil, nil
	}

	indices := make([]int, 0, len(touched))
	for idx := range touched {
		if _, ok := n.accumulator[idx]; ok {
			indices = append(indices, idx)
		}
	}
	sort.Ints(indices)

	events := make([]event.Event, 0, len(indices))
	for _, idx := range indices {
		acc := n.accumulator[idx]
		joined := ""
		for _, f := range acc.fragments {
			joined += f
		}

		tc, err := toolbridge.ParseArguments(acc.callID, acc.name, joined)
		if err != nil {
			return nil, err
		}

		args, _ := tc.Arguments.Object()
		events = append(events, event.ToolCall(n.gens.Seq(), n.gens.TS(), tc.ID, tc.Name, args))
		delete(n.accumulator, idx)
	}

	return events, nil
}

// updateUsage validates and records usage.total_tokens, if present, as the
// normalizer's running last-known value. total_tokens must be a
// non-negative integer; prompt_tokens/completion_tokens are accepted but
// not retained, since the canonical Final event only carries total_tokens.
func (n *Normalizer) updateUsage(u *struct {
	PromptTokens     *int `json:"prompt_tokens"`
	CompletionTokens *int `json:"completion_tokens"`
	TotalTokens      *int `json:"total_tokens"`
}) error {
	if u == nil || u.TotalTokens == nil {
		return nil
	}

	total := *u.TotalTokens
	if total < 0 {
		return adaptererr.NewBadChunk("usage.total_tokens",
			fmt.Sprintf("total_tokens must be a non-negative integer, got %d", total), nil)
	}
	n.lastTotalTokens = &total
	return nil
}
