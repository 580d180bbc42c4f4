package ports

import (
	"context"
	"time"

	"github.com/ghola/conversation-api/internal/core/domain"
)

// UsageRepository persists the per-user per-day counter ledger.
type UsageRepository interface {
	// FindByUserAndDay looks up the entry for an exact (user, midnight-
	// truncated day) pair. Returns domain.ErrUsageNotFound when absent.
	FindByUserAndDay(ctx context.Context, userID string, day time.Time) (*domain.UsageRecord, error)

	// Create inserts a zero-counter entry. Returns domain.ErrUsageExists when
	// the unique (user_id, day) index rejects a concurrent duplicate.
	Create(ctx context.Context, record *domain.UsageRecord) (*domain.UsageRecord, error)

	// IncrementCounters atomically advances the entry's message and token
	// counters. Never decrements.
	IncrementCounters(ctx context.Context, usageID string, messages, tokens int64) error

	// ListByDay returns every entry for the given day.
	ListByDay(ctx context.Context, day time.Time) ([]domain.UsageRecord, error)
}
