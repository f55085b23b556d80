package ai

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/openai/openai-go/v2/shared"

	"persona-chat/internal/domain/ports/adapter"
)

// Compile-time assurance this adapter satisfies the port
var _ adapter.CompletionClient = (*OpenAIAdapter)(nil)

const DefaultOpenAIModel = "gpt-4o-mini"

// OpenAIAdapter talks to any OpenAI-compatible Chat Completions gateway.
// The key travels per request; SDK-level retries are off so that a call
// maps to exactly one request.
type OpenAIAdapter struct {
	client openai.Client
	model  string
}

func NewOpenAIAdapter(base, model string, timeout time.Duration) *OpenAIAdapter {
	if model == "" {
		model = DefaultOpenAIModel
	}
	opts := []option.RequestOption{option.WithMaxRetries(0)}
	if base = strings.TrimSpace(base); base != "" {
		opts = append(opts, option.WithBaseURL(base))
	}
	if timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(timeout))
	}
	return &OpenAIAdapter{
		client: openai.NewClient(opts...),
		model:  model,
	}
}

func (o *OpenAIAdapter) Complete(ctx context.Context, apiKey, prompt string) (string, error) {
	if apiKey == "" {
		return "", errors.New("openai api key empty")
	}
	completion, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: shared.ChatModel(o.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	}, option.WithAPIKey(apiKey))
	if err != nil {
		return "", mapOpenAIError(err)
	}
	for _, c := range completion.Choices {
		if c.Message.Content != "" {
			return c.Message.Content, nil
		}
	}
	return "", nil
}

func mapOpenAIError(err error) error {
	var apiErr *openai.Error
	if !errors.As(err, &apiErr) {
		return err
	}
	var retryAfter *time.Duration
	if apiErr.Response != nil {
		retryAfter = parseRetryAfter(apiErr.Response.Header.Get("Retry-After"))
	}
	return adapter.NewHTTPFailure(apiErr.StatusCode, retryAfter, apiErr.Message)
}
