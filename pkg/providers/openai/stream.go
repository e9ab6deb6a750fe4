package openai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	internalhttp "github.com/flowcore-ai/streamcore/pkg/internal/http"
	"github.com/flowcore-ai/streamcore/pkg/providerutils/streaming"
	"github.com/flowcore-ai/streamcore/pkg/streamiter"
)

// chunkSource adapts an OpenAI chat-completions SSE body into a
// streamiter.Source: each Next call returns one decoded "data:" payload as
// a map[string]interface{}, ready for normalizer.Ingest. Tool-call delta
// reassembly lives in the normalizer, so this type's only job is framing,
// not interpretation.
type chunkSource struct {
	body   io.ReadCloser
	parser *streaming.SSEParser
}

func newChunkSource(body io.ReadCloser) *chunkSource {
	return &chunkSource{body: body, parser: streaming.NewSSEParser(body)}
}

// Next returns the next decoded chunk, or io.EOF once the stream sends the
// "[DONE]" sentinel or the connection closes cleanly.
func (s *chunkSource) Next(ctx context.Context) (interface{}, error) {
	for {
		evt, err := s.parser.Next()
		if err != nil {
			return nil, err
		}
		if streaming.IsStreamDone(evt) {
			return nil, io.EOF
		}
		if evt.Data == "" {
			continue
		}

		var m map[string]interface{}
		if err := json.Unmarshal([]byte(evt.Data), &m); err != nil {
			return nil, err
		}
		return m, nil
	}
}

// Close releases the underlying HTTP response body.
func (s *chunkSource) Close() error {
	return s.body.Close()
}

// GenerateChatCompletion issues a non-streaming chat-completions request
// against p and returns the fully-decoded JSON response. Its signature
// matches adapter.GenerateFactory so it can be passed directly to
// adapter.New, e.g. adapter.New(provider.OpenChunkSource,
// adapter.Options{GenerateFn: provider.GenerateChatCompletion, ...}).
func (p *Provider) GenerateChatCompletion(ctx context.Context, requestBody map[string]interface{}) (map[string]interface{}, error) {
	var result map[string]interface{}
	if err := p.client.DoJSON(ctx, internalhttp.Request{
		Method: http.MethodPost,
		Path:   "/chat/completions",
		Body:   requestBody,
	}, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// OpenChunkSource issues a streaming chat-completions request against p and
// wraps the SSE response body in a streamiter.Source. Its signature matches
// adapter.StreamFactory so it can be passed directly to adapter.New, e.g.
// adapter.New(provider.OpenChunkSource, adapter.Options{...}).
func (p *Provider) OpenChunkSource(ctx context.Context, requestBody map[string]interface{}) (streamiter.Source, error) {
	resp, err := p.client.DoStream(ctx, internalhttp.Request{
		Method: http.MethodPost,
		Path:   "/chat/completions",
		Body:   requestBody,
		Headers: map[string]string{
			"Accept": "text/event-stream",
		},
	})
	if err != nil {
		return nil, err
	}
	return newChunkSource(resp.Body), nil
}
