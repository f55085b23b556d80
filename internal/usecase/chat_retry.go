package usecase

import (
	"context"
	"errors"
	"time"

	"persona-chat/internal/domain/ports/adapter"
	"persona-chat/internal/infra/logging"
	"persona-chat/internal/infra/metrics"
)

const (
	// MaxAttempts caps remote calls per send, the first one included.
	MaxAttempts = 3
	// InitialBackoff is the first wait after a 429 without Retry-After.
	InitialBackoff = time.Second
)

// completeWithRetry retries only on 429. Retry-After wins over the backoff,
// and the backoff doubles after every wait either way.
func (m *ChatManager) completeWithRetry(ctx context.Context, prompt string) (string, error) {
	log := logging.With(ctx, m.log)
	backoff := InitialBackoff
	for attempt := 1; ; attempt++ {
		text, err := m.ai.Complete(ctx, m.apiKey, prompt)
		if err == nil {
			return text, nil
		}
		var hf *adapter.HTTPFailure
		if !errors.As(err, &hf) || !hf.RateLimited() || attempt >= MaxAttempts {
			return "", err
		}

		wait := backoff
		if hf.RetryAfter != nil {
			wait = *hf.RetryAfter
		}
		metrics.IncRemoteRetry()
		log.Info().Int("attempt", attempt).Dur("wait", wait).Msg("rate limited; retrying")
		if err := m.sleep(ctx, wait); err != nil {
			return "", err
		}
		backoff *= 2
	}
}
