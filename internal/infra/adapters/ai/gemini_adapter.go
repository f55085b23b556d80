// File: internal/infra/adapters/ai/gemini_adapter.go
package ai

import (
	"context"
	"errors"
	"sync"

	"google.golang.org/genai"

	"persona-chat/internal/domain/ports/adapter"
)

var _ adapter.CompletionClient = (*GeminiAdapter)(nil)

// GeminiAdapter uses the official SDK. Clients are bound to a key, so one is
// kept per key.
type GeminiAdapter struct {
	baseURL      string
	defaultModel string
	maxOut       int

	mu      sync.Mutex
	clients map[string]*genai.Client
}

func NewGeminiAdapter(baseURL, defaultModel string, maxOut int) *GeminiAdapter {
	if defaultModel == "" {
		defaultModel = DefaultGeminiModel
	}
	return &GeminiAdapter{
		baseURL:      baseURL,
		defaultModel: defaultModel,
		maxOut:       maxOut,
		clients:      make(map[string]*genai.Client),
	}
}

func (g *GeminiAdapter) client(ctx context.Context, apiKey string) (*genai.Client, error) {
	if apiKey == "" {
		return nil, errors.New("gemini: empty api key")
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if c, ok := g.clients[apiKey]; ok {
		return c, nil
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{
			BaseURL: g.baseURL,
		},
	})
	if err != nil {
		return nil, err
	}
	g.clients[apiKey] = c
	return c, nil
}

func (g *GeminiAdapter) Complete(ctx context.Context, apiKey, prompt string) (string, error) {
	c, err := g.client(ctx, apiKey)
	if err != nil {
		return "", err
	}
	var cfg *genai.GenerateContentConfig
	if g.maxOut > 0 {
		cfg = &genai.GenerateContentConfig{MaxOutputTokens: int32(g.maxOut)}
	}
	resp, err := c.Models.GenerateContent(ctx, g.defaultModel, genai.Text(prompt), cfg)
	if err != nil {
		return "", mapGenAIError(err)
	}

	// Extract text
	text := ""
	if resp != nil && len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil && len(resp.Candidates[0].Content.Parts) > 0 {
		text = resp.Candidates[0].Content.Parts[0].Text
	}
	return text, nil
}

func mapGenAIError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) && apiErr.Code > 0 {
		return adapter.NewHTTPFailure(apiErr.Code, nil, apiErr.Message)
	}
	return err
}
