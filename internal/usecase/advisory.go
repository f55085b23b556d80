package usecase

import (
	"fmt"

	"persona-chat/internal/domain"
)

// AdvisoryKind classifies the single advisory error slot.
type AdvisoryKind string

const (
	// AdvisoryBusy covers both AwaitingResponse and Typing.
	AdvisoryBusy          AdvisoryKind = "busy"
	AdvisoryRateLimited   AdvisoryKind = "rate_limited"
	AdvisoryRemoteFailure AdvisoryKind = "remote_failure"
	AdvisoryTransport     AdvisoryKind = "transport"
)

const (
	msgBusy        = "Please wait for the current response."
	msgRateLimited = "Rate limit reached. Please wait a moment and try again."
)

// Advisory is a non-fatal, user-facing error. errors.Is matches the
// corresponding domain sentinel.
type Advisory struct {
	Kind    AdvisoryKind
	Message string
}

func (a *Advisory) Error() string { return a.Message }

func (a *Advisory) Unwrap() error {
	switch a.Kind {
	case AdvisoryBusy:
		return domain.ErrBusy
	case AdvisoryRateLimited:
		return domain.ErrRateLimited
	case AdvisoryRemoteFailure:
		return domain.ErrRemoteFailure
	case AdvisoryTransport:
		return domain.ErrTransport
	}
	return nil
}

// busyAdvisory rejects work while a turn is in flight: awaiting the remote
// reply or still typing it out.
func busyAdvisory() *Advisory {
	return &Advisory{Kind: AdvisoryBusy, Message: msgBusy}
}

func rateLimitedAdvisory() *Advisory {
	return &Advisory{Kind: AdvisoryRateLimited, Message: msgRateLimited}
}

func remoteFailureAdvisory(code int, message string) *Advisory {
	return &Advisory{Kind: AdvisoryRemoteFailure, Message: fmt.Sprintf("Error %d: %s", code, message)}
}

func transportAdvisory(detail string) *Advisory {
	if detail == "" {
		detail = "Unknown error"
	}
	return &Advisory{Kind: AdvisoryTransport, Message: "Network error: " + detail}
}
