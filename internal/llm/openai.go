package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAIClient implements Client for OpenAI chat models.
type OpenAIClient struct {
	client openai.Client
	model  string
}

// NewOpenAIClient creates a new OpenAI client. Extra options are applied
// after the defaults.
func NewOpenAIClient(apiKey, model string, opts ...option.RequestOption) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai: %w", ErrMissingAPIKey)
	}

	client := openai.NewClient(append([]option.RequestOption{option.WithAPIKey(apiKey), option.WithMaxRetries(0)}, opts...)...)
	return &OpenAIClient{client: client, model: model}, nil
}

// Name returns the provider identifier.
func (c *OpenAIClient) Name() string {
	return ProviderOpenAI
}

// Complete sends the request as a system + user chat completion.
func (c *OpenAIClient) Complete(ctx context.Context, req Request) (string, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	if req.System != "" {
		messages = append(messages, openai.SystemMessage(req.System))
	}
	messages = append(messages, openai.UserMessage(req.Prompt))

	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(c.model),
		Messages:    messages,
		Temperature: openai.Float(req.Temperature),
	}
	if req.MaxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(req.MaxTokens))
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		provErr := &ProviderError{Provider: c.Name(), Err: err}
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			provErr.Status = apiErr.StatusCode
		}
		return "", provErr
	}

	if len(resp.Choices) == 0 {
		return "", &ProviderError{Provider: c.Name(), Err: errors.New("returned no choices")}
	}
	return resp.Choices[0].Message.Content, nil
}
