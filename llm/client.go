// Package llm provides the text-generation backend client plus local
// fallbacks for prompt authoring and STEP-file export. The backend speaks
// the OpenAI chat-completions protocol; by default it points at Mistral.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"makerkit_backend/core"
	"makerkit_backend/logging"
)

// ErrNotConfigured is returned when a chat completion is requested without
// a configured API key. Callers are expected to route to a local fallback.
var ErrNotConfigured = errors.New("text backend not configured")

// ClientConfig holds the options for creating an OpenAI-compatible client.
type ClientConfig struct {
	// APIKey authenticates against the backend
	APIKey string

	// BaseURL is the primary OpenAI-compatible endpoint
	BaseURL string

	// FallbackURL is used when BaseURL is empty (optional)
	FallbackURL string

	// HTTPClient is a pre-configured HTTP client with TLS and timeout settings
	HTTPClient *http.Client
}

// NewOpenAICompatClient creates an OpenAI-compatible client from a ClientConfig.
// All chat clients in the codebase are built through this one factory so TLS,
// timeout, and base-URL handling stay consistent.
func NewOpenAICompatClient(cfg ClientConfig) *openai.Client {
	clientConfig := openai.DefaultConfig(cfg.APIKey)

	if baseURL := ResolveBaseURL(cfg.BaseURL, cfg.FallbackURL); baseURL != "" {
		clientConfig.BaseURL = baseURL
	}
	if cfg.HTTPClient != nil {
		clientConfig.HTTPClient = cfg.HTTPClient
	}

	return openai.NewClientWithConfig(clientConfig)
}

// ResolveBaseURL returns the primary URL if non-empty, otherwise the fallback.
//
// Example:
//
//	url := llm.ResolveBaseURL("", "https://api.mistral.ai/v1")
//	// url == "https://api.mistral.ai/v1"
func ResolveBaseURL(primary, fallback string) string {
	if primary != "" {
		return primary
	}
	return fallback
}

// Client is the organism wrapping the text backend. It exposes one chat
// operation; the prompt and STEP helpers in this package build on it and
// supply local fallbacks when the backend is absent or misbehaving.
type Client struct {
	api        *openai.Client
	model      string
	configured bool
	logger     *logging.Logger
}

// NewClient creates a text backend client from application configuration.
// A missing API key is a valid state: the client reports unconfigured and
// every caller falls back to local generation.
func NewClient(cfg *core.Config, logger *logging.Logger) *Client {
	return &Client{
		api: NewOpenAICompatClient(ClientConfig{
			APIKey:     cfg.MistralAPIKey,
			BaseURL:    cfg.MistralBaseURL,
			HTTPClient: core.GetHTTPClient(cfg, cfg.InvokeTimeout),
		}),
		model:      cfg.MistralModel,
		configured: cfg.HasTextBackend(),
		logger:     logger.Named("llm"),
	}
}

// Configured reports whether the text backend has an API key.
func (c *Client) Configured() bool {
	return c.configured
}

// ChatCompletion sends one system+user exchange to the backend and returns
// the reply text.
//
// Parameters:
//   - ctx: request context
//   - system: system role content; skipped when empty
//   - user: user role content
//   - maxTokens: completion token cap
//   - temperature: sampling temperature
//
// Returns ErrNotConfigured when no API key is present.
func (c *Client) ChatCompletion(ctx context.Context, system, user string, maxTokens int, temperature float32) (string, error) {
	if !c.configured {
		return "", ErrNotConfigured
	}

	messages := []openai.ChatCompletionMessage{}
	if system != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: system,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: user,
	})

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		MaxTokens:   maxTokens,
		Temperature: temperature,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("chat completion: empty response from %s", c.model)
	}

	c.logger.Debug("chat completion served",
		zap.String("model", c.model),
		zap.Int("reply_chars", len(resp.Choices[0].Message.Content)))

	return resp.Choices[0].Message.Content, nil
}
