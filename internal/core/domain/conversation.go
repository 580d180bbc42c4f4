package domain

import (
	"errors"
	"time"
)

var ErrConversationNotFound = errors.New("conversation not found")

// MessageRole identifies the author of a logged message.
type MessageRole string

const (
	RoleUserMessage      MessageRole = "user"
	RoleAssistantMessage MessageRole = "assistant"
)

// Message is a single entry in a conversation's log.
type Message struct {
	ID         string      `json:"id"`
	Role       MessageRole `json:"role"`
	Content    string      `json:"content"`
	TokenCount int64       `json:"token_count"`
	CreatedAt  time.Time   `json:"created_at"`
}

// Conversation links a user, a profile, and the day's usage record. Messages
// is nil when logging is disabled — the stored document then has no messages
// field at all, which is distinct from a present-but-empty log.
type Conversation struct {
	ID             string     `json:"id"`
	UserID         string     `json:"user_id"`
	UsageID        string     `json:"usage_id"`
	ProfileID      string     `json:"profile_id"`
	CustomerID     string     `json:"customer_id,omitempty"`
	LoggingEnabled bool       `json:"logging_enabled"`
	Messages       *[]Message `json:"messages,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}
