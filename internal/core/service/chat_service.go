package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/ghola/conversation-api/internal/core/domain"
	"github.com/ghola/conversation-api/internal/core/ports"
)

// ChatService implements the conversation-initialization handshake.
type ChatService struct {
	users         ports.UserRepository
	profiles      ports.ProfileRepository
	usage         ports.UsageRepository
	conversations ports.ConversationRepository
	issuer        *CredentialIssuer
	now           func() time.Time
	logger        zerolog.Logger
}

func NewChatService(
	users ports.UserRepository,
	profiles ports.ProfileRepository,
	usage ports.UsageRepository,
	conversations ports.ConversationRepository,
	issuer *CredentialIssuer,
	logger zerolog.Logger,
) *ChatService {
	return &ChatService{
		users:         users,
		profiles:      profiles,
		usage:         usage,
		conversations: conversations,
		issuer:        issuer,
		now:           time.Now,
		logger:        logger,
	}
}

// StartConversation runs the handshake as a strictly sequential chain:
// identity → profile → access check → usage record → conversation →
// credential. Each precondition failure is a distinct sentinel; nothing is
// retried. A usage record committed before a later failure stays behind —
// it is idempotent by day and the next handshake reuses it.
func (s *ChatService) StartConversation(ctx context.Context, input ports.StartConversationInput) (*ports.StartConversationResult, error) {
	if input.Email == "" || input.Token == "" || input.ProfileID == "" {
		return nil, domain.ErrMissingFields
	}

	user, err := s.users.FindByEmailAndToken(ctx, input.Email, input.Token)
	if err != nil {
		return nil, err
	}

	profile, err := s.profiles.FindByID(ctx, input.ProfileID)
	if err != nil {
		return nil, err
	}

	if !profile.AccessibleBy(user.ID) {
		return nil, domain.ErrProfileNotAccessible
	}

	usage, err := s.todayUsage(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	conversation := &domain.Conversation{
		UserID:         user.ID,
		UsageID:        usage.ID,
		ProfileID:      profile.ID,
		CustomerID:     input.CustomerID,
		LoggingEnabled: input.EnableLogging,
		CreatedAt:      s.now().UTC(),
	}
	if input.EnableLogging {
		conversation.Messages = &[]domain.Message{}
	}

	created, err := s.conversations.Create(ctx, conversation)
	if err != nil {
		return nil, fmt.Errorf("create conversation: %w", err)
	}

	credential, expiresIn, err := s.issuer.Issue(created.ID)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("user_id", user.ID).
		Str("profile_id", profile.ID).
		Str("conversation_id", created.ID).
		Bool("logging_enabled", input.EnableLogging).
		Msg("conversation started")

	return &ports.StartConversationResult{
		ConversationID:    created.ID,
		Credential:        credential,
		ExpiresIn:         expiresIn,
		ProfileVisibility: profile.Visibility,
	}, nil
}

// GetConversation re-checks existence so deleted conversations reject
// outstanding credentials.
func (s *ChatService) GetConversation(ctx context.Context, conversationID string) (*domain.Conversation, error) {
	return s.conversations.FindByID(ctx, conversationID)
}

// todayUsage resolves or lazily creates the ledger entry for the current
// server-local day. Two concurrent first-requests can both observe "absent";
// the unique (user_id, day) index arbitrates, and the loser re-reads the
// winner's entry.
func (s *ChatService) todayUsage(ctx context.Context, userID string) (*domain.UsageRecord, error) {
	day := domain.DayStart(s.now())

	usage, err := s.usage.FindByUserAndDay(ctx, userID, day)
	if err == nil {
		return usage, nil
	}
	if !errors.Is(err, domain.ErrUsageNotFound) {
		return nil, fmt.Errorf("find usage record: %w", err)
	}

	created, err := s.usage.Create(ctx, &domain.UsageRecord{
		UserID:    userID,
		Day:       day,
		CreatedAt: s.now().UTC(),
	})
	if err == nil {
		s.logger.Debug().Str("user_id", userID).Time("day", day).Msg("usage record created")
		return created, nil
	}
	if errors.Is(err, domain.ErrUsageExists) {
		return s.usage.FindByUserAndDay(ctx, userID, day)
	}
	return nil, fmt.Errorf("create usage record: %w", err)
}
