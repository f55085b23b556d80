package repository

import (
	"context"

	"persona-chat/internal/domain/model"
)

// -----------------------------
// Chat Sessions
// -----------------------------

// SessionStore keeps a bounded, recency-ordered set of conversation sessions.
type SessionStore interface {
	// Save inserts or replaces the session by id at the front of the list.
	Save(ctx context.Context, session *model.ConversationSession) error
	// LoadAll returns sessions most recent first. Unreadable data yields an
	// empty list, never an error.
	LoadAll(ctx context.Context) ([]*model.ConversationSession, error)
	// Load returns domain.ErrNotFound when no session has the id.
	Load(ctx context.Context, id string) (*model.ConversationSession, error)
	// Delete is a no-op for unknown ids.
	Delete(ctx context.Context, id string) error
}
