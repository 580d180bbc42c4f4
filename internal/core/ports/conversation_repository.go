package ports

import (
	"context"

	"github.com/ghola/conversation-api/internal/core/domain"
)

// ConversationRepository persists conversation records and their optional
// message logs.
type ConversationRepository interface {
	// Create inserts the conversation and returns it with its assigned ID.
	// When conversation.Messages is nil the stored document must carry no
	// messages field at all (absent, not empty).
	Create(ctx context.Context, conversation *domain.Conversation) (*domain.Conversation, error)

	FindByID(ctx context.Context, id string) (*domain.Conversation, error)

	// AppendMessage pushes a message onto the conversation's log. Callers
	// must only invoke this for conversations with logging enabled.
	AppendMessage(ctx context.Context, conversationID string, message domain.Message) error
}
