// Package adapter provides the Adapter Facade: the single entry point that
// resolves request options, builds the provider request payload, and either
// wires a provider stream into a streamiter.Iterator bound to a fresh
// normalizer (Stream) or issues one non-streaming request and parses its
// reply into a single assistant Message (Generate). Both entry points share
// one request builder; each call is wrapped in a telemetry span.
package adapter

import (
	"context"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/flowcore-ai/streamcore/pkg/adaptererr"
	"github.com/flowcore-ai/streamcore/pkg/msgtypes"
	"github.com/flowcore-ai/streamcore/pkg/normalizer"
	"github.com/flowcore-ai/streamcore/pkg/streamiter"
	"github.com/flowcore-ai/streamcore/pkg/telemetry"
	"github.com/flowcore-ai/streamcore/pkg/toolbridge"
)

// reservedOptionKeys cannot be set through Options.DefaultOptions or
// Request.Extra because the facade
// derives them itself from typed request fields.
var reservedOptionKeys = map[string]bool{
	"messages": true,
	"stream":   true,
	"tools":    true,
}

// StreamFactory opens a provider connection for a built request payload and
// returns a streamiter.Source over its chunks. Implementations wrap
// transport concerns (HTTP, SSE framing) that this package does not own.
type StreamFactory func(ctx context.Context, requestBody map[string]interface{}) (streamiter.Source, error)

// GenerateFactory issues a single non-streaming request for a built request
// payload and returns the provider's fully-decoded JSON response.
// Implementations own the same transport concerns as a StreamFactory, minus
// the streaming framing.
type GenerateFactory func(ctx context.Context, requestBody map[string]interface{}) (map[string]interface{}, error)

// Options configures a Facade.
type Options struct {
	// DefaultModel is used when a Request does not specify one.
	DefaultModel string

	// DefaultOptions are merged under any ad-hoc per-request options;
	// ad-hoc options win on key collision.
	DefaultOptions map[string]interface{}

	// GenerateFn, if non-nil, backs Generate's non-streaming entry. A
	// Facade built without one can still Stream; calling Generate on it
	// returns a BadInput error.
	GenerateFn GenerateFactory

	// Tracer, if non-nil, is used for the ai.stream/ai.generate spans. If
	// nil, telemetry is disabled for this facade.
	Tracer trace.Tracer
}

// Facade is the adapter's single entry point, streaming and non-streaming
// alike.
type Facade struct {
	streamFn   StreamFactory
	generateFn GenerateFactory
	opts       Options
}

// New creates a Facade backed by the given stream factory. It rejects
// DefaultOptions entries that collide with a reserved request field —
// messages, tools, and stream are always derived by the facade itself and
// can never be supplied as a default. A "model" entry in DefaultOptions is
// stripped into the DefaultModel field instead of passed through (an
// explicit Options.DefaultModel wins if both are set).
func New(streamFn StreamFactory, opts Options) (*Facade, error) {
	for k := range opts.DefaultOptions {
		if reservedOptionKeys[k] {
			return nil, adaptererr.NewBadInput("defaultOptions."+k, "default option key is reserved and cannot be set directly", nil)
		}
	}

	if rawModel, ok := opts.DefaultOptions["model"]; ok {
		model, isStr := rawModel.(string)
		if !isStr || model == "" {
			return nil, adaptererr.NewBadInput("defaultOptions.model", "model must be a non-empty string", nil)
		}
		stripped := make(map[string]interface{}, len(opts.DefaultOptions)-1)
		for k, v := range opts.DefaultOptions {
			if k != "model" {
				stripped[k] = v
			}
		}
		opts.DefaultOptions = stripped
		if opts.DefaultModel == "" {
			opts.DefaultModel = model
		}
	}

	return &Facade{streamFn: streamFn, generateFn: opts.GenerateFn, opts: opts}, nil
}

// Request is one request to the facade, for either Stream or Generate.
type Request struct {
	Model       string
	Messages    []msgtypes.Message
	Tools       []toolbridge.ToolSpec
	Temperature *float64

	// RawTools carries provider tool definitions already in wire form, for
	// callers that converted ahead of time. Mutually exclusive with Tools:
	// a request supplies one form or the other, never a mix.
	RawTools []map[string]interface{}

	// Extra carries additional provider request fields (e.g. top_p,
	// max_tokens). Keys in reservedOptionKeys are rejected.
	Extra map[string]interface{}
}

// Stream resolves opts, builds the provider request body, opens the
// provider connection, and returns a cancellation-safe event iterator along
// with the stream's correlation ID.
func (f *Facade) Stream(ctx context.Context, req Request) (*streamiter.Iterator, string, error) {
	if len(req.Messages) == 0 {
		return nil, "", adaptererr.NewBadInput("messages", "at least one message is required", nil)
	}

	streamID := uuid.NewString()

	tracer := f.opts.Tracer
	if tracer == nil {
		tracer = telemetry.GetTracer(telemetry.DefaultSettings())
	}

	ctx, span := tracer.Start(ctx, "ai.stream", trace.WithAttributes(
		attribute.String("ai.model.id", resolveModel(req.Model, f.opts.DefaultModel)),
		attribute.String("stream.id", streamID),
	))
	defer span.End()

	body, err := f.buildRequestBody(req)
	if err != nil {
		telemetry.RecordErrorOnSpan(span, err)
		return nil, "", err
	}
	body["stream"] = true

	source, err := f.streamFn(ctx, body)
	if err != nil {
		wrapped := adaptererr.NewTransport("failed to open provider stream", err)
		telemetry.RecordErrorOnSpan(span, wrapped)
		return nil, "", wrapped
	}

	it := streamiter.New(source, normalizer.New())
	return it, streamID, nil
}

// Generate resolves opts, builds the same provider request body Stream does
// minus the stream flag, issues a single non-streaming request, and parses
// its first choice into one assistant Message.
func (f *Facade) Generate(ctx context.Context, req Request) (msgtypes.Message, error) {
	if f.generateFn == nil {
		return msgtypes.Message{}, adaptererr.NewBadInput("", "facade was not configured with a GenerateFn", nil)
	}
	if len(req.Messages) == 0 {
		return msgtypes.Message{}, adaptererr.NewBadInput("messages", "at least one message is required", nil)
	}

	tracer := f.opts.Tracer
	if tracer == nil {
		tracer = telemetry.GetTracer(telemetry.DefaultSettings())
	}

	ctx, span := tracer.Start(ctx, "ai.generate", trace.WithAttributes(
		attribute.String("ai.model.id", resolveModel(req.Model, f.opts.DefaultModel)),
	))
	defer span.End()

	body, err := f.buildRequestBody(req)
	if err != nil {
		telemetry.RecordErrorOnSpan(span, err)
		return msgtypes.Message{}, err
	}

	resp, err := f.generateFn(ctx, body)
	if err != nil {
		wrapped := adaptererr.NewTransport("failed to issue provider request", err)
		telemetry.RecordErrorOnSpan(span, wrapped)
		return msgtypes.Message{}, wrapped
	}

	messagePayload, err := extractFirstChoiceMessage(resp)
	if err != nil {
		telemetry.RecordErrorOnSpan(span, err)
		return msgtypes.Message{}, err
	}

	assistant, err := msgtypes.FromProvider(messagePayload)
	if err != nil {
		telemetry.RecordErrorOnSpan(span, err)
		return msgtypes.Message{}, err
	}
	if assistant.Role != msgtypes.RoleAssistant {
		wrapped := adaptererr.NewBadChunk("choices[0].message.role", "provider response returned a non-assistant message", nil)
		telemetry.RecordErrorOnSpan(span, wrapped)
		return msgtypes.Message{}, wrapped
	}

	return assistant, nil
}

// extractFirstChoiceMessage navigates a chat-completions response body down
// to its first choice's message payload.
func extractFirstChoiceMessage(resp map[string]interface{}) (map[string]interface{}, error) {
	choicesRaw, ok := resp["choices"]
	if !ok {
		return nil, adaptererr.NewBadChunk("choices", "provider response missing choices", nil)
	}
	choices, ok := choicesRaw.([]interface{})
	if !ok || len(choices) == 0 {
		return nil, adaptererr.NewBadChunk("choices", "provider response missing choices", nil)
	}
	choice0, ok := choices[0].(map[string]interface{})
	if !ok {
		return nil, adaptererr.NewBadChunk("choices[0]", "provider response choice must be an object", nil)
	}
	messageRaw, ok := choice0["message"]
	if !ok {
		return nil, adaptererr.NewBadChunk("choices[0].message", "provider response choice missing message", nil)
	}
	message, ok := messageRaw.(map[string]interface{})
	if !ok {
		return nil, adaptererr.NewBadChunk("choices[0].message", "provider response message must be an object", nil)
	}
	return message, nil
}

// buildRequestBody merges DefaultOptions and req.Extra (ad-hoc wins),
// resolves the effective model, defaults temperature to 0 only when neither
// an explicit Request.Temperature nor an Extra/DefaultOptions temperature was
// supplied, and attaches messages/tools. It does not set the stream key;
// callers derive that themselves (Stream forces it true, Generate leaves it
// unset).
func (f *Facade) buildRequestBody(req Request) (map[string]interface{}, error) {
	for k := range req.Extra {
		if reservedOptionKeys[k] {
			return nil, adaptererr.NewBadInput("extra."+k, "option key is reserved and cannot be set directly", nil)
		}
	}

	body := make(map[string]interface{}, len(f.opts.DefaultOptions)+len(req.Extra)+4)
	for k, v := range f.opts.DefaultOptions {
		body[k] = v
	}
	for k, v := range req.Extra {
		body[k] = v
	}

	model := resolveModel(req.Model, f.opts.DefaultModel)
	if model == "" {
		return nil, adaptererr.NewBadInput("model", "no model specified and no default model configured", nil)
	}
	body["model"] = model

	if req.Temperature != nil {
		body["temperature"] = *req.Temperature
	} else if _, alreadySet := body["temperature"]; !alreadySet {
		body["temperature"] = 0.0
	}

	messages, err := msgtypes.ToProvider(req.Messages)
	if err != nil {
		return nil, err
	}
	body["messages"] = messages

	if len(req.Tools) > 0 && len(req.RawTools) > 0 {
		return nil, adaptererr.NewBadInput("tools", "tools must be supplied as specs or as pre-converted mappings, not both", nil)
	}
	if len(req.Tools) > 0 {
		tools, err := toolbridge.SpecsToProvider(req.Tools)
		if err != nil {
			return nil, err
		}
		body["tools"] = tools
	} else if len(req.RawTools) > 0 {
		body["tools"] = req.RawTools
	}

	return body, nil
}

func resolveModel(requested, fallback string) string {
	if requested != "" {
		return requested
	}
	return fallback
}
