// Package openai demonstrates the streaming adapter core against a real
// OpenAI-chat-shaped wire format: it owns the HTTP/SSE transport plumbing
// the normalizer and adapter facade deliberately do not, and exposes an
// adapter.StreamFactory-compatible constructor that turns a chat-completions
// streaming response into a streamiter.Source. Language-model chat only:
// embeddings, images, speech, transcription, and reranking are different
// model types outside this core's scope.
package openai

import (
	"fmt"

	internalhttp "github.com/flowcore-ai/streamcore/pkg/internal/http"
)

// DefaultBaseURL is the default OpenAI chat-completions API base URL.
const DefaultBaseURL = "https://api.openai.com/v1"

// Config configures a Provider.
type Config struct {
	// APIKey is the OpenAI API key, sent as a Bearer token.
	APIKey string

	// BaseURL overrides DefaultBaseURL, for proxies and test doubles.
	BaseURL string

	// Organization is the optional OpenAI-Organization header value.
	Organization string

	// Project is the optional OpenAI-Project header value.
	Project string
}

// Provider is a thin wrapper around an HTTP client preconfigured with an
// OpenAI base URL and auth headers. It is stateless and safe to share
// across goroutines, each of which should open its own stream.
type Provider struct {
	client *internalhttp.Client
}

// New creates a Provider from cfg.
func New(cfg Config) *Provider {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	headers := map[string]string{
		"Authorization": fmt.Sprintf("Bearer %s", cfg.APIKey),
	}
	if cfg.Organization != "" {
		headers["OpenAI-Organization"] = cfg.Organization
	}
	if cfg.Project != "" {
		headers["OpenAI-Project"] = cfg.Project
	}

	return &Provider{
		client: internalhttp.NewClient(internalhttp.Config{
			BaseURL: baseURL,
			Headers: headers,
		}),
	}
}

// Name returns the provider's identifier, used as the telemetry
// ai.model.provider attribute by callers that wrap Stream in a span.
func (p *Provider) Name() string {
	return "openai"
}
