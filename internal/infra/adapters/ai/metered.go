package ai

import (
	"context"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
	"github.com/rs/zerolog"

	"persona-chat/internal/domain/ports/adapter"
	"persona-chat/internal/infra/metrics"
)

var _ adapter.CompletionClient = (*meteredAI)(nil)

// TokenCounter estimates the token count of a text.
type TokenCounter interface {
	Count(text string) int
}

// TiktokenCounter counts with the cl100k_base encoding, loaded on first use.
// When the encoding cannot be loaded it falls back to runes/4.
type TiktokenCounter struct {
	once sync.Once
	enc  *tiktoken.Tiktoken
	log  *zerolog.Logger
}

func NewTiktokenCounter(log *zerolog.Logger) *TiktokenCounter {
	return &TiktokenCounter{log: log}
}

func (c *TiktokenCounter) Count(text string) int {
	c.once.Do(func() {
		enc, err := tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			if c.log != nil {
				c.log.Warn().Err(err).Msg("tiktoken unavailable; using rune estimate")
			}
			return
		}
		c.enc = enc
	})
	if c.enc == nil {
		return roughTokens(text)
	}
	return len(c.enc.Encode(text, nil, nil))
}

func roughTokens(text string) int {
	n := utf8.RuneCountInString(text)
	if n == 0 {
		return 0
	}
	return (n + 3) / 4
}

type meteredAI struct {
	inner    adapter.CompletionClient
	provider string
	counter  TokenCounter
}

// NewMeteredAI records call latency and outcome per provider, plus token
// estimates for successful calls. A nil counter skips token accounting.
func NewMeteredAI(inner adapter.CompletionClient, provider string, counter TokenCounter) adapter.CompletionClient {
	return &meteredAI{inner: inner, provider: provider, counter: counter}
}

func (m *meteredAI) Complete(ctx context.Context, apiKey, prompt string) (string, error) {
	start := time.Now()
	text, err := m.inner.Complete(ctx, apiKey, prompt)
	metrics.ObserveAICall(m.provider, time.Since(start).Milliseconds(), err == nil)
	if err == nil && m.counter != nil {
		metrics.AddTokens(m.provider, m.counter.Count(prompt), m.counter.Count(text))
	}
	return text, err
}
