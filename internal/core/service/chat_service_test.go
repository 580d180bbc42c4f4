package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/ghola/conversation-api/internal/core/domain"
	"github.com/ghola/conversation-api/internal/core/ports"
)

type stubUserRepo struct {
	users []*domain.User
}

func (r *stubUserRepo) FindByEmailAndToken(_ context.Context, email, token string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == email && u.APIToken == token {
			clone := *u
			return &clone, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

type stubProfileRepo struct {
	profiles map[string]*domain.Profile
}

func (r *stubProfileRepo) FindByID(_ context.Context, id string) (*domain.Profile, error) {
	p, ok := r.profiles[id]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	clone := *p
	return &clone, nil
}

func (r *stubProfileRepo) ListPublic(_ context.Context) ([]domain.Profile, error) {
	var out []domain.Profile
	for _, p := range r.profiles {
		if p.Visibility == domain.VisibilityPublic {
			out = append(out, *p)
		}
	}
	return out, nil
}

type stubUsageRepo struct {
	records     map[string]*domain.UsageRecord // key: userID + day
	nextID      int
	findCalls   int
	failCreate  bool // force ErrUsageExists to simulate a lost race
	raceRecord  *domain.UsageRecord
	incremented map[string][2]int64
}

func newStubUsageRepo() *stubUsageRepo {
	return &stubUsageRepo{records: make(map[string]*domain.UsageRecord), incremented: make(map[string][2]int64)}
}

func usageKey(userID string, day time.Time) string {
	return userID + "/" + day.Format("2006-01-02")
}

func (r *stubUsageRepo) FindByUserAndDay(_ context.Context, userID string, day time.Time) (*domain.UsageRecord, error) {
	r.findCalls++
	if rec, ok := r.records[usageKey(userID, day)]; ok {
		clone := *rec
		return &clone, nil
	}
	if r.failCreate && r.findCalls > 1 && r.raceRecord != nil {
		clone := *r.raceRecord
		return &clone, nil
	}
	return nil, domain.ErrUsageNotFound
}

func (r *stubUsageRepo) Create(_ context.Context, record *domain.UsageRecord) (*domain.UsageRecord, error) {
	if r.failCreate {
		return nil, domain.ErrUsageExists
	}
	r.nextID++
	clone := *record
	clone.ID = fmt.Sprintf("usage%d", r.nextID)
	r.records[usageKey(record.UserID, record.Day)] = &clone
	out := clone
	return &out, nil
}

func (r *stubUsageRepo) IncrementCounters(_ context.Context, usageID string, messages, tokens int64) error {
	prev := r.incremented[usageID]
	r.incremented[usageID] = [2]int64{prev[0] + messages, prev[1] + tokens}
	return nil
}

func (r *stubUsageRepo) ListByDay(_ context.Context, day time.Time) ([]domain.UsageRecord, error) {
	var out []domain.UsageRecord
	for _, rec := range r.records {
		if rec.Day.Equal(day) {
			out = append(out, *rec)
		}
	}
	return out, nil
}

type stubConversationRepo struct {
	created []*domain.Conversation
	nextID  int
}

func (r *stubConversationRepo) Create(_ context.Context, conversation *domain.Conversation) (*domain.Conversation, error) {
	r.nextID++
	clone := *conversation
	clone.ID = fmt.Sprintf("conv%d", r.nextID)
	if conversation.Messages != nil {
		messages := append([]domain.Message{}, *conversation.Messages...)
		clone.Messages = &messages
	}
	r.created = append(r.created, &clone)
	out := clone
	return &out, nil
}

func (r *stubConversationRepo) FindByID(_ context.Context, id string) (*domain.Conversation, error) {
	for _, c := range r.created {
		if c.ID == id {
			clone := *c
			return &clone, nil
		}
	}
	return nil, domain.ErrConversationNotFound
}

func (r *stubConversationRepo) AppendMessage(_ context.Context, conversationID string, message domain.Message) error {
	for _, c := range r.created {
		if c.ID == conversationID {
			if c.Messages == nil {
				return domain.ErrConversationNotFound
			}
			*c.Messages = append(*c.Messages, message)
			return nil
		}
	}
	return domain.ErrConversationNotFound
}

func newTestChatService(t *testing.T, users *stubUserRepo, profiles *stubProfileRepo, usage *stubUsageRepo, conversations *stubConversationRepo) *ChatService {
	t.Helper()
	issuer, err := NewCredentialIssuer("secret", time.Hour)
	if err != nil {
		t.Fatalf("NewCredentialIssuer: %v", err)
	}
	return NewChatService(users, profiles, usage, conversations, issuer, zerolog.Nop())
}

func seededRepos() (*stubUserRepo, *stubProfileRepo, *stubUsageRepo, *stubConversationRepo) {
	users := &stubUserRepo{users: []*domain.User{
		{ID: "U1", Email: "a@x.com", APIToken: "T1", Role: domain.RoleStandard},
	}}
	profiles := &stubProfileRepo{profiles: map[string]*domain.Profile{
		"P1": {ID: "P1", Visibility: domain.VisibilityPrivate, CreatorID: "U2"},
		"P2": {ID: "P2", Visibility: domain.VisibilityPublic, CreatorID: "U2"},
	}}
	return users, profiles, newStubUsageRepo(), &stubConversationRepo{}
}

func TestStartConversation_MissingFields(t *testing.T) {
	users, profiles, usage, conversations := seededRepos()
	svc := newTestChatService(t, users, profiles, usage, conversations)

	inputs := []ports.StartConversationInput{
		{Token: "T1", ProfileID: "P2"},
		{Email: "a@x.com", ProfileID: "P2"},
		{Email: "a@x.com", Token: "T1"},
	}
	for _, in := range inputs {
		if _, err := svc.StartConversation(context.Background(), in); err != domain.ErrMissingFields {
			t.Fatalf("expected ErrMissingFields for %+v, got %v", in, err)
		}
	}
	if len(conversations.created) != 0 || len(usage.records) != 0 {
		t.Fatalf("no records should be created on validation failure")
	}
}

func TestStartConversation_UnknownIdentity(t *testing.T) {
	users, profiles, usage, conversations := seededRepos()
	svc := newTestChatService(t, users, profiles, usage, conversations)

	_, err := svc.StartConversation(context.Background(), ports.StartConversationInput{
		Email: "a@x.com", Token: "wrong", ProfileID: "P2",
	})
	if err != domain.ErrUserNotFound {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if len(conversations.created) != 0 || len(usage.records) != 0 {
		t.Fatalf("no records should be created for an unknown identity")
	}
}

func TestStartConversation_UnknownProfile(t *testing.T) {
	users, profiles, usage, conversations := seededRepos()
	svc := newTestChatService(t, users, profiles, usage, conversations)

	_, err := svc.StartConversation(context.Background(), ports.StartConversationInput{
		Email: "a@x.com", Token: "T1", ProfileID: "ghost",
	})
	if err != domain.ErrProfileNotFound {
		t.Fatalf("expected ErrProfileNotFound, got %v", err)
	}
	if len(conversations.created) != 0 || len(usage.records) != 0 {
		t.Fatalf("no records should be created for an unknown profile")
	}
}

func TestStartConversation_PrivateProfileDenied(t *testing.T) {
	users, profiles, usage, conversations := seededRepos()
	svc := newTestChatService(t, users, profiles, usage, conversations)

	// Identity and profile both resolve, access is still denied.
	_, err := svc.StartConversation(context.Background(), ports.StartConversationInput{
		Email: "a@x.com", Token: "T1", ProfileID: "P1",
	})
	if err != domain.ErrProfileNotAccessible {
		t.Fatalf("expected ErrProfileNotAccessible, got %v", err)
	}
	if len(conversations.created) != 0 {
		t.Fatalf("no conversation should be created when access is denied")
	}
	if len(usage.records) != 0 {
		t.Fatalf("authorization precedes the usage ledger; no entry should exist")
	}
}

func TestStartConversation_PrivateProfileCreatorAllowed(t *testing.T) {
	users, profiles, usage, conversations := seededRepos()
	users.users = append(users.users, &domain.User{ID: "U2", Email: "b@x.com", APIToken: "T2", Role: domain.RoleStandard})
	svc := newTestChatService(t, users, profiles, usage, conversations)

	result, err := svc.StartConversation(context.Background(), ports.StartConversationInput{
		Email: "b@x.com", Token: "T2", ProfileID: "P1",
	})
	if err != nil {
		t.Fatalf("creator should access their private profile: %v", err)
	}
	if result.ConversationID == "" {
		t.Fatalf("expected a conversation id")
	}
}

func TestStartConversation_PublicProfileWithLogging(t *testing.T) {
	users, profiles, usage, conversations := seededRepos()
	svc := newTestChatService(t, users, profiles, usage, conversations)

	result, err := svc.StartConversation(context.Background(), ports.StartConversationInput{
		Email: "a@x.com", Token: "T1", ProfileID: "P2", EnableLogging: true, CustomerID: "cust_42",
	})
	if err != nil {
		t.Fatalf("StartConversation: %v", err)
	}

	if len(conversations.created) != 1 {
		t.Fatalf("expected 1 conversation, got %d", len(conversations.created))
	}
	conv := conversations.created[0]
	if conv.Messages == nil {
		t.Fatalf("logging enabled: messages must be present (empty), not absent")
	}
	if len(*conv.Messages) != 0 {
		t.Fatalf("expected empty message log, got %d entries", len(*conv.Messages))
	}
	if !conv.LoggingEnabled {
		t.Fatalf("expected logging_enabled true")
	}
	if conv.CustomerID != "cust_42" {
		t.Fatalf("customer id must be stored verbatim, got %q", conv.CustomerID)
	}
	if conv.UsageID == "" {
		t.Fatalf("conversation must reference the day's usage record")
	}
	if result.ExpiresIn != 3600 {
		t.Fatalf("expected credential lifetime 3600s, got %d", result.ExpiresIn)
	}
}

func TestStartConversation_NoLoggingLeavesMessagesAbsent(t *testing.T) {
	users, profiles, usage, conversations := seededRepos()
	svc := newTestChatService(t, users, profiles, usage, conversations)

	_, err := svc.StartConversation(context.Background(), ports.StartConversationInput{
		Email: "a@x.com", Token: "T1", ProfileID: "P2",
	})
	if err != nil {
		t.Fatalf("StartConversation: %v", err)
	}
	if conversations.created[0].Messages != nil {
		t.Fatalf("logging disabled: messages must be absent, not empty")
	}
}

func TestStartConversation_CredentialBindsConversation(t *testing.T) {
	users, profiles, usage, conversations := seededRepos()
	svc := newTestChatService(t, users, profiles, usage, conversations)

	result, err := svc.StartConversation(context.Background(), ports.StartConversationInput{
		Email: "a@x.com", Token: "T1", ProfileID: "P2",
	})
	if err != nil {
		t.Fatalf("StartConversation: %v", err)
	}

	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(result.Credential, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte("secret"), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("credential invalid: %v", err)
	}
	if claims["conversation_id"] != result.ConversationID {
		t.Fatalf("credential bound to %v, conversation is %s", claims["conversation_id"], result.ConversationID)
	}
}

func TestStartConversation_SameDayReusesLedgerEntry(t *testing.T) {
	users, profiles, usage, conversations := seededRepos()
	svc := newTestChatService(t, users, profiles, usage, conversations)

	first, err := svc.StartConversation(context.Background(), ports.StartConversationInput{
		Email: "a@x.com", Token: "T1", ProfileID: "P2",
	})
	if err != nil {
		t.Fatalf("first handshake: %v", err)
	}
	second, err := svc.StartConversation(context.Background(), ports.StartConversationInput{
		Email: "a@x.com", Token: "T1", ProfileID: "P2",
	})
	if err != nil {
		t.Fatalf("second handshake: %v", err)
	}

	if len(usage.records) != 1 {
		t.Fatalf("expected exactly one usage record for the day, got %d", len(usage.records))
	}
	if len(conversations.created) != 2 {
		t.Fatalf("expected two distinct conversations, got %d", len(conversations.created))
	}
	if first.ConversationID == second.ConversationID {
		t.Fatalf("handshakes must create distinct conversations")
	}
	if first.Credential == second.Credential {
		t.Fatalf("handshakes must issue distinct credentials")
	}
	if conversations.created[0].UsageID != conversations.created[1].UsageID {
		t.Fatalf("both conversations must reference the same ledger entry")
	}
}

func TestStartConversation_LostCreateRaceRefetches(t *testing.T) {
	users, profiles, usage, conversations := seededRepos()
	usage.failCreate = true
	usage.raceRecord = &domain.UsageRecord{ID: "usage_winner", UserID: "U1", Day: domain.DayStart(time.Now())}
	svc := newTestChatService(t, users, profiles, usage, conversations)

	_, err := svc.StartConversation(context.Background(), ports.StartConversationInput{
		Email: "a@x.com", Token: "T1", ProfileID: "P2",
	})
	if err != nil {
		t.Fatalf("losing the create race must fall back to the winner's entry: %v", err)
	}
	if conversations.created[0].UsageID != "usage_winner" {
		t.Fatalf("expected the conversation to reference the winner's entry, got %q", conversations.created[0].UsageID)
	}
}

func TestGetConversation_NotFound(t *testing.T) {
	users, profiles, usage, conversations := seededRepos()
	svc := newTestChatService(t, users, profiles, usage, conversations)

	if _, err := svc.GetConversation(context.Background(), "gone"); err != domain.ErrConversationNotFound {
		t.Fatalf("expected ErrConversationNotFound, got %v", err)
	}
}
