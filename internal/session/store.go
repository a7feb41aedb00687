// Package session provides keyed storage for wizard sessions and their
// idle-timeout lifecycle.
package session

import (
	"context"
	"time"

	"github.com/xisscag-ops/rr4world/internal/flow"
)

// Store is the authoritative per-chat session storage. Implementations must
// be safe for concurrent use by independent conversations.
type Store interface {
	// Get returns the session for a chat, or nil when none exists.
	Get(ctx context.Context, chatID int64) (*flow.Session, error)
	// Put stores the session, replacing any previous one for the chat.
	Put(ctx context.Context, s *flow.Session) error
	// Delete removes the session for a chat. Deleting a missing session is a no-op.
	Delete(ctx context.Context, chatID int64) error
	// Reap evicts sessions idle since the given deadline and returns the count.
	Reap(ctx context.Context, idleSince time.Time) (int, error)
}
