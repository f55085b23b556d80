package ai

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"persona-chat/internal/domain/ports/adapter"
)

var _ adapter.CompletionClient = (*NoopAIAdapter)(nil)

// NoopAIAdapter answers locally for --dev runs. It logs prompts instead of
// sending them anywhere.
type NoopAIAdapter struct {
	log   *zerolog.Logger
	delay time.Duration
	n     atomic.Uint64
}

func NewNoopAIAdapter(log *zerolog.Logger) *NoopAIAdapter {
	if log == nil {
		l := zerolog.Nop()
		log = &l
	}
	return &NoopAIAdapter{log: log, delay: 100 * time.Millisecond}
}

var noopReplies = []string{
	"That's an interesting thought. Tell me more!",
	"Hmm, I hadn't considered that. What made you think of it?",
	"Sounds like a plan. Let's see where it takes us.",
}

func (a *NoopAIAdapter) Complete(ctx context.Context, _ string, prompt string) (string, error) {
	// Simulate processing time and respect ctx
	select {
	case <-time.After(a.delay):
	case <-ctx.Done():
		return "", ctx.Err()
	}
	a.log.Debug().Int("prompt_len", len(prompt)).Msg("noop-ai complete")
	reply := noopReplies[(a.n.Add(1)-1)%uint64(len(noopReplies))]
	return fmt.Sprintf("%s (offline)", reply), nil
}
