// Command demo wires the full streaming adapter core end to end against the
// OpenAI chat-completions API: it opens a Facade-backed stream, drains it
// into a TranscriptSink, and prints the result, then issues a non-streaming
// Generate call against the same Facade.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/flowcore-ai/streamcore/pkg/adapter"
	"github.com/flowcore-ai/streamcore/pkg/consumer"
	"github.com/flowcore-ai/streamcore/pkg/msgtypes"
	"github.com/flowcore-ai/streamcore/pkg/providers/openai"
	"github.com/flowcore-ai/streamcore/pkg/telemetry"
	"github.com/flowcore-ai/streamcore/pkg/toolbridge"
)

func main() {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		log.Fatal("OPENAI_API_KEY environment variable is required")
	}

	ctx := context.Background()

	settings := telemetry.DefaultSettings()
	if endpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); endpoint != "" {
		tp, err := telemetry.NewOTLPTracerProvider(ctx, telemetry.ExporterConfig{
			Endpoint: endpoint,
			Insecure: os.Getenv("OTEL_EXPORTER_OTLP_INSECURE") == "true",
		})
		if err != nil {
			log.Fatalf("configuring telemetry: %v", err)
		}
		defer tp.Shutdown(ctx)
		settings = settings.WithEnabled(true)
	}

	provider := openai.New(openai.Config{APIKey: apiKey})

	facade, err := adapter.New(provider.OpenChunkSource, adapter.Options{
		DefaultModel: openai.ModelGPT4oMini,
		GenerateFn:   provider.GenerateChatCompletion,
		Tracer:       telemetry.GetTracer(settings),
	})
	if err != nil {
		log.Fatalf("building facade: %v", err)
	}

	weatherTool, err := toolbridge.NewSpec(
		"get_weather",
		"Look up the current weather for a city",
		map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"city": map[string]interface{}{"type": "string"},
			},
			"required": []interface{}{"city"},
		},
	)
	if err != nil {
		log.Fatalf("building tool spec: %v", err)
	}

	fmt.Println("=== Streaming chat completion ===")
	it, streamID, err := facade.Stream(ctx, adapter.Request{
		Messages: []msgtypes.Message{
			{Role: msgtypes.RoleUser, Content: "What's the weather in Boston? Use the tool if you need to."},
		},
		Tools: []toolbridge.ToolSpec{weatherTool},
	})
	if err != nil {
		log.Fatalf("opening stream: %v", err)
	}
	fmt.Printf("stream id: %s\n", streamID)

	sink := consumer.NewTranscriptSink()
	if err := consumer.Drain(ctx, it, sink); err != nil {
		log.Fatalf("draining stream: %v", err)
	}

	fmt.Printf("transcript: %s\n", sink.Transcript())
	for _, ex := range sink.ToolExchanges() {
		fmt.Printf("tool call %s(%s) -> %v\n", ex.Name, ex.CallID, ex.Output)
	}
	if reason, ok := sink.FinishReason(); ok {
		fmt.Printf("finished as: %s\n", reason)
	}
	if usage := sink.Usage(); usage != nil {
		fmt.Printf("usage: %v\n", usage)
	}

	fmt.Println("=== Non-streaming chat completion ===")
	reply, err := facade.Generate(ctx, adapter.Request{
		Messages: []msgtypes.Message{
			{Role: msgtypes.RoleUser, Content: "Say hello in one short sentence."},
		},
	})
	if err != nil {
		log.Fatalf("generating: %v", err)
	}
	fmt.Printf("assistant: %s\n", reply.Content)
}
