// Package llm provides a provider-neutral text-completion client.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrMissingAPIKey is returned when a provider is selected without credentials.
var ErrMissingAPIKey = errors.New("llm API key is required")

// Provider names accepted by New.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGoogle    = "google"
	ProviderMock      = "mock"
)

// Request is a single-turn completion request.
type Request struct {
	System      string
	Prompt      string
	Temperature float64
	MaxTokens   int
}

// Client sends completion requests to a language model.
type Client interface {
	// Complete returns the model's text response for req.
	Complete(ctx context.Context, req Request) (string, error)

	// Name returns the provider identifier.
	Name() string
}

// Options configures a provider client.
type Options struct {
	Provider string
	APIKey   string
	Model    string
}

// DefaultModel returns the model used when none is configured for provider.
func DefaultModel(provider string) string {
	switch provider {
	case ProviderAnthropic:
		return "claude-3-5-haiku-latest"
	case ProviderGoogle:
		return "gemini-2.0-flash"
	case ProviderMock:
		return "mock-1"
	default:
		return "gpt-3.5-turbo"
	}
}

// New creates a client for the configured provider.
func New(ctx context.Context, opts Options) (Client, error) {
	provider := strings.ToLower(strings.TrimSpace(opts.Provider))
	if provider == "" {
		provider = ProviderOpenAI
	}
	model := opts.Model
	if model == "" {
		model = DefaultModel(provider)
	}

	switch provider {
	case ProviderOpenAI:
		return NewOpenAIClient(opts.APIKey, model)
	case ProviderAnthropic:
		return NewAnthropicClient(opts.APIKey, model)
	case ProviderGoogle:
		return NewGoogleClient(ctx, opts.APIKey, model)
	case ProviderMock:
		return NewMockClient(""), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", opts.Provider)
	}
}
