package adapter

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// CompletionClient is the port for the remote generative endpoint.
// A call issues exactly one request. An empty reply with a nil error means
// the response carried no candidate text.
type CompletionClient interface {
	Complete(ctx context.Context, apiKey, prompt string) (string, error)
}

// HTTPFailure is a non-2xx answer from the remote endpoint.
type HTTPFailure struct {
	StatusCode int
	// RetryAfter is nil when the server sent no usable Retry-After header.
	RetryAfter *time.Duration
	// Message is the HTTP reason phrase.
	Message string
	// Detail carries the server's error body message, if any.
	Detail string
}

func (e *HTTPFailure) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("http %d %s: %s", e.StatusCode, e.Message, e.Detail)
	}
	return fmt.Sprintf("http %d %s", e.StatusCode, e.Message)
}

// RateLimited reports whether the failure is the retryable 429.
func (e *HTTPFailure) RateLimited() bool {
	return e.StatusCode == http.StatusTooManyRequests
}

// NewHTTPFailure builds a failure with the standard reason phrase.
func NewHTTPFailure(status int, retryAfter *time.Duration, detail string) *HTTPFailure {
	return &HTTPFailure{
		StatusCode: status,
		RetryAfter: retryAfter,
		Message:    http.StatusText(status),
		Detail:     detail,
	}
}
