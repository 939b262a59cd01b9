package storage

import (
	"context"
	"time"

	"github.com/michaelbrown/crucible/internal/llm"
	"github.com/michaelbrown/crucible/internal/runner"
)

// Conversation is the metadata for a saved chat.
type Conversation struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Provider  string    `json:"provider"`
	Model     string    `json:"model"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Run is one entry in the execution audit log. It records that a sandbox job
// ran and how it went, never the submitted source.
type Run struct {
	ID         string          `json:"id"`
	Language   runner.Language `json:"language"`
	Success    bool            `json:"success"`
	DurationMs int64           `json:"duration_ms"`
	CreatedAt  time.Time       `json:"created_at"`
}

// ConversationListOptions controls pagination for ListConversations.
type ConversationListOptions struct {
	Limit  int
	Offset int
}

// Store is the persistence interface for conversations, messages, and the
// execution audit log.
type Store interface {
	// CreateConversation inserts a new conversation. The ID field must be set
	// by the caller.
	CreateConversation(ctx context.Context, c *Conversation) error

	// GetConversation returns a conversation by ID or ID prefix.
	GetConversation(ctx context.Context, id string) (*Conversation, error)

	// ListConversations returns conversations ordered by updated_at descending.
	ListConversations(ctx context.Context, opts ConversationListOptions) ([]Conversation, error)

	// UpdateConversation updates mutable fields (title, updated_at).
	UpdateConversation(ctx context.Context, c *Conversation) error

	// DeleteConversation removes a conversation and its messages.
	DeleteConversation(ctx context.Context, id string) error

	// SaveMessages overwrites the full message history for a conversation.
	SaveMessages(ctx context.Context, conversationID string, messages []llm.Message) error

	// LoadMessages returns the message history for a conversation.
	LoadMessages(ctx context.Context, conversationID string) ([]llm.Message, error)

	// RecordRun appends one execution audit entry.
	RecordRun(ctx context.Context, r *Run) error

	// ListRuns returns the most recent audit entries, newest first.
	ListRuns(ctx context.Context, limit int) ([]Run, error)

	// Close releases resources.
	Close() error
}
