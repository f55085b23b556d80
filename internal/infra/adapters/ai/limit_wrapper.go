package ai

import (
	"context"

	"persona-chat/internal/domain/ports/adapter"
)

// Compile-time check
var _ adapter.CompletionClient = (*limitedAI)(nil)

type limitedAI struct {
	inner adapter.CompletionClient
	sem   chan struct{}
}

// NewLimitedAI caps in-flight calls to inner. maxConcurrent <= 0 disables it.
func NewLimitedAI(inner adapter.CompletionClient, maxConcurrent int) adapter.CompletionClient {
	if maxConcurrent <= 0 {
		return inner
	}
	return &limitedAI{
		inner: inner,
		sem:   make(chan struct{}, maxConcurrent),
	}
}

func (l *limitedAI) Complete(ctx context.Context, apiKey, prompt string) (string, error) {
	select {
	case l.sem <- struct{}{}:
	case <-ctx.Done():
		return "", ctx.Err()
	}
	defer func() { <-l.sem }()
	return l.inner.Complete(ctx, apiKey, prompt)
}
