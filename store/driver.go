package store

import "context"

// Driver is the interface a conversation storage backend implements.
// Histories are read and rewritten whole; drivers do not append.
type Driver interface {
	// LoadConversation returns the ordered history for a session. An
	// unknown session yields an empty slice, not an error.
	LoadConversation(ctx context.Context, sessionID string) ([]Message, error)

	// SaveConversation replaces the stored history for a session.
	SaveConversation(ctx context.Context, sessionID string, messages []Message) error

	Close() error
}
