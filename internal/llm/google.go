package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// GoogleClient implements Client for Gemini models.
type GoogleClient struct {
	client *genai.Client
	model  string
}

// NewGoogleClient creates a new Gemini client.
func NewGoogleClient(ctx context.Context, apiKey, model string) (*GoogleClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("google: %w", ErrMissingAPIKey)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create google client: %w", err)
	}

	return &GoogleClient{client: client, model: model}, nil
}

// Name returns the provider identifier.
func (c *GoogleClient) Name() string {
	return ProviderGoogle
}

// Complete sends the request through GenerateContent.
func (c *GoogleClient) Complete(ctx context.Context, req Request) (string, error) {
	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(req.Temperature)),
	}
	if req.System != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}
	if req.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(req.MaxTokens)
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(req.Prompt), cfg)
	if err != nil {
		return "", &ProviderError{Provider: c.Name(), Err: err}
	}

	if resp == nil || len(resp.Candidates) == 0 {
		return "", &ProviderError{Provider: c.Name(), Err: errors.New("returned no candidates")}
	}

	var content strings.Builder
	if resp.Candidates[0].Content != nil {
		for _, part := range resp.Candidates[0].Content.Parts {
			if part.Text != "" {
				content.WriteString(part.Text)
			}
		}
	}
	return content.String(), nil
}
