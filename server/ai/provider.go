// Package ai wraps the hosted chat-completion API. Groq exposes an
// OpenAI-compatible surface, so the stock OpenAI client is pointed at the
// Groq endpoint.
package ai

import (
	"context"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/sashabaranov/go-openai"
)

// Message represents a chat message.
type Message struct {
	Role    string
	Content string
}

// LLMService is the completion call the chat service depends on. Tests
// substitute a mock.
type LLMService interface {
	Chat(ctx context.Context, messages []Message) (string, error)
}

// Config holds the model provider configuration.
type Config struct {
	BaseURL   string
	APIKey    string
	ChatModel string
	Timeout   time.Duration
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:   "https://api.groq.com/openai/v1",
		ChatModel: "llama-3.1-8b-instant",
		Timeout:   60 * time.Second,
	}
}

// Provider performs synchronous chat completions. It is deliberately thin:
// no retries, no backoff. Callers see the provider's fault as-is.
type Provider struct {
	client *openai.Client
	config *Config
}

// NewProvider creates a new model provider.
func NewProvider(cfg *Config) (*Provider, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.APIKey == "" {
		return nil, errors.New("model API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.groq.com/openai/v1"
	}
	if cfg.ChatModel == "" {
		cfg.ChatModel = "llama-3.1-8b-instant"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	clientConfig.BaseURL = cfg.BaseURL
	clientConfig.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	return &Provider{
		client: openai.NewClientWithConfig(clientConfig),
		config: cfg,
	}, nil
}

// Chat performs a single chat completion with the given ordered messages.
func (p *Provider) Chat(ctx context.Context, messages []Message) (string, error) {
	llmMessages := make([]openai.ChatCompletionMessage, len(messages))
	for i, msg := range messages {
		llmMessages[i] = openai.ChatCompletionMessage{
			Role:    msg.Role,
			Content: msg.Content,
		}
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    p.config.ChatModel,
		Messages: llmMessages,
	})
	if err != nil {
		return "", errors.Wrap(err, "chat completion failed")
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("empty chat completion response")
	}
	return resp.Choices[0].Message.Content, nil
}

// Model returns the configured chat model name.
func (p *Provider) Model() string {
	return p.config.ChatModel
}
