package ports

import (
	"context"
	"time"

	"github.com/ghola/conversation-api/internal/core/domain"
)

// MessageEventInput is the DTO passed from the transport layer to the usage
// pipeline. MessageID makes redelivery idempotent.
type MessageEventInput struct {
	ConversationID string
	MessageID      string
	Role           string
	Content        string
	TokenCount     int64
	Timestamp      time.Time
}

// UsageService processes message events: appends to the conversation log
// when logging is enabled and advances the day's usage counters.
type UsageService interface {
	Process(ctx context.Context, event MessageEventInput) error
}

// UsageReader serves the usage reporting endpoints.
type UsageReader interface {
	// TodayForUser returns the caller's ledger entry for the current
	// server-local day. domain.ErrUsageNotFound when no message has been
	// recorded yet today.
	TodayForUser(ctx context.Context, userID string) (*domain.UsageRecord, error)

	// TodayAll returns every user's entry for the current day. Admin only,
	// enforced by the transport layer.
	TodayAll(ctx context.Context) ([]domain.UsageRecord, error)
}
