package ports

import (
	"context"

	"github.com/ghola/conversation-api/internal/core/domain"
)

// StartConversationInput is the DTO carried from the transport layer into
// the chat handshake.
type StartConversationInput struct {
	Email         string
	Token         string
	ProfileID     string
	EnableLogging bool
	CustomerID    string // optional, stored verbatim for billing attribution
}

// StartConversationResult is returned on a successful handshake.
type StartConversationResult struct {
	ConversationID    string
	Credential        string
	ExpiresIn         int64 // seconds
	ProfileVisibility domain.Visibility
}

// ChatService runs the conversation-initialization handshake.
type ChatService interface {
	// StartConversation authenticates the claimed identity, authorizes access
	// to the profile, resolves or creates today's usage record, persists a
	// new conversation, and issues a signed credential. Single-shot: any
	// failure aborts the whole operation without retries, and repeated calls
	// with identical input create distinct conversations and credentials.
	StartConversation(ctx context.Context, input StartConversationInput) (*StartConversationResult, error)

	// GetConversation loads an existing conversation, re-checking existence
	// so that deleted conversations reject otherwise-valid credentials.
	GetConversation(ctx context.Context, conversationID string) (*domain.Conversation, error)
}
