// Package storage provides conversation storage used to prime sessions.
//
// Information Hiding:
// - Storage backend implementation details hidden behind interface
// - Allows swapping between memory and SQLite without API changes
// - Each storage implementation encapsulates its own data structures

package storage

import (
	"context"

	"github.com/google/uuid"

	"github.com/richinex/chatrag/llm"
)

// ConversationStorage stores the user/assistant turns of a session.
type ConversationStorage interface {
	// Save replaces the conversation history of a session.
	Save(ctx context.Context, sessionID string, history []llm.ChatMessage) error

	// Append adds messages to the end of a session's history.
	Append(ctx context.Context, sessionID string, messages ...llm.ChatMessage) error

	// Load loads conversation history for a session.
	// Returns empty slice (not nil) if session doesn't exist.
	// Returns error only for storage failures, not missing sessions.
	Load(ctx context.Context, sessionID string) ([]llm.ChatMessage, error)

	// Recent returns at most limit of the latest messages, oldest first.
	Recent(ctx context.Context, sessionID string, limit int) ([]llm.ChatMessage, error)

	// Delete deletes conversation history for a session.
	Delete(ctx context.Context, sessionID string) error

	// ListSessions lists all session IDs.
	ListSessions(ctx context.Context) ([]string, error)

	// Exists checks if a session exists.
	Exists(ctx context.Context, sessionID string) (bool, error)
}

// NewSessionID returns a fresh random session identifier.
func NewSessionID() string {
	return uuid.NewString()
}

// storable keeps only plain user and assistant text; tool traffic belongs
// to a single session and is never replayed.
func storable(messages []llm.ChatMessage) []llm.ChatMessage {
	out := make([]llm.ChatMessage, 0, len(messages))
	for _, m := range messages {
		if m.Role != llm.RoleUser && m.Role != llm.RoleAssistant {
			continue
		}
		out = append(out, llm.ChatMessage{Role: m.Role, Content: m.Content})
	}
	return out
}

func tail(messages []llm.ChatMessage, limit int) []llm.ChatMessage {
	if limit >= 0 && len(messages) > limit {
		return messages[len(messages)-limit:]
	}
	return messages
}
