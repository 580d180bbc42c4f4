package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/ghola/conversation-api/internal/core/domain"
	"github.com/ghola/conversation-api/internal/core/ports"
)

// DedupChecker abstracts the idempotency store (Redis).
type DedupChecker interface {
	IsDuplicate(ctx context.Context, conversationID, messageID string) (bool, error)
	Mark(ctx context.Context, conversationID, messageID string) error
}

type UsageService struct {
	conversations ports.ConversationRepository
	usage         ports.UsageRepository
	dedup         DedupChecker
	now           func() time.Time
	log           zerolog.Logger
}

// NewUsageService returns a UsageService that is also a UsageReader.
func NewUsageService(
	conversations ports.ConversationRepository,
	usage ports.UsageRepository,
	dedup DedupChecker,
	log zerolog.Logger,
) *UsageService {
	return &UsageService{
		conversations: conversations,
		usage:         usage,
		dedup:         dedup,
		now:           time.Now,
		log:           log,
	}
}

// Process deduplicates, optionally logs, and accounts a single message
// event. Counters only ever advance; the handshake itself never touches
// them.
func (s *UsageService) Process(ctx context.Context, in ports.MessageEventInput) error {
	// 1. Idempotency check — silently skip redelivered messages.
	isDup, err := s.dedup.IsDuplicate(ctx, in.ConversationID, in.MessageID)
	if err != nil {
		s.log.Warn().Err(err).Str("conversation_id", in.ConversationID).Msg("dedup check failed, processing anyway")
	} else if isDup {
		s.log.Debug().Str("conversation_id", in.ConversationID).Str("message_id", in.MessageID).Msg("duplicate message skipped")
		return nil
	}

	// 2. The conversation must still exist; credentials outlive deletion.
	conversation, err := s.conversations.FindByID(ctx, in.ConversationID)
	if err != nil {
		return fmt.Errorf("process message: %w", err)
	}

	// 3. Mark before writing so a crashed retry cannot double-count.
	if markErr := s.dedup.Mark(ctx, in.ConversationID, in.MessageID); markErr != nil {
		s.log.Warn().Err(markErr).Str("conversation_id", in.ConversationID).Msg("failed to set dedup key")
	}

	// 4. Append to the log only when the conversation opted in at creation.
	if conversation.LoggingEnabled {
		message := domain.Message{
			ID:         in.MessageID,
			Role:       domain.MessageRole(in.Role),
			Content:    in.Content,
			TokenCount: in.TokenCount,
			CreatedAt:  in.Timestamp.UTC(),
		}
		if err := s.conversations.AppendMessage(ctx, conversation.ID, message); err != nil {
			return fmt.Errorf("process message: append: %w", err)
		}
	}

	// 5. Advance the day's counters.
	if err := s.usage.IncrementCounters(ctx, conversation.UsageID, 1, in.TokenCount); err != nil {
		return fmt.Errorf("process message: increment usage: %w", err)
	}

	s.log.Info().
		Str("conversation_id", conversation.ID).
		Str("message_id", in.MessageID).
		Int64("token_count", in.TokenCount).
		Msg("message accounted")

	return nil
}

// TodayForUser returns the caller's ledger entry for the current day.
func (s *UsageService) TodayForUser(ctx context.Context, userID string) (*domain.UsageRecord, error) {
	return s.usage.FindByUserAndDay(ctx, userID, domain.DayStart(s.now()))
}

// TodayAll returns every ledger entry for the current day.
func (s *UsageService) TodayAll(ctx context.Context) ([]domain.UsageRecord, error) {
	return s.usage.ListByDay(ctx, domain.DayStart(s.now()))
}
