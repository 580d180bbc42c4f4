package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ghola/conversation-api/internal/core/domain"
)

const conversationsCollection = "conversation_records"

type ConversationRepository struct {
	coll *mongo.Collection
}

func NewConversationRepository(db *mongo.Database) *ConversationRepository {
	return &ConversationRepository{coll: db.Collection(conversationsCollection)}
}

type messageDoc struct {
	ID         string    `bson:"id"`
	Role       string    `bson:"role"`
	Content    string    `bson:"content"`
	TokenCount int64     `bson:"token_count"`
	CreatedAt  time.Time `bson:"created_at"`
}

// conversationDoc mirrors domain.Conversation. Messages is a pointer so a
// nil log is omitted from the document entirely: absence means "never record
// messages", while a present empty array means "recorded but empty".
type conversationDoc struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	UserID         primitive.ObjectID `bson:"user_id"`
	UsageID        primitive.ObjectID `bson:"usage_id"`
	ProfileID      primitive.ObjectID `bson:"profile_id"`
	CustomerID     string             `bson:"customer_id,omitempty"`
	LoggingEnabled bool               `bson:"logging_enabled"`
	Messages       *[]messageDoc      `bson:"messages,omitempty"`
	CreatedAt      time.Time          `bson:"created_at"`
}

func (d conversationDoc) toDomain() domain.Conversation {
	c := domain.Conversation{
		ID:             d.ID.Hex(),
		UserID:         d.UserID.Hex(),
		UsageID:        d.UsageID.Hex(),
		ProfileID:      d.ProfileID.Hex(),
		CustomerID:     d.CustomerID,
		LoggingEnabled: d.LoggingEnabled,
		CreatedAt:      d.CreatedAt,
	}
	if d.Messages != nil {
		messages := make([]domain.Message, 0, len(*d.Messages))
		for _, m := range *d.Messages {
			messages = append(messages, domain.Message{
				ID:         m.ID,
				Role:       domain.MessageRole(m.Role),
				Content:    m.Content,
				TokenCount: m.TokenCount,
				CreatedAt:  m.CreatedAt,
			})
		}
		c.Messages = &messages
	}
	return c
}

// Create inserts the conversation and returns it with its assigned id.
func (r *ConversationRepository) Create(ctx context.Context, conversation *domain.Conversation) (*domain.Conversation, error) {
	userID, err := primitive.ObjectIDFromHex(conversation.UserID)
	if err != nil {
		return nil, fmt.Errorf("create conversation: invalid user id %q", conversation.UserID)
	}
	usageID, err := primitive.ObjectIDFromHex(conversation.UsageID)
	if err != nil {
		return nil, fmt.Errorf("create conversation: invalid usage id %q", conversation.UsageID)
	}
	profileID, err := primitive.ObjectIDFromHex(conversation.ProfileID)
	if err != nil {
		return nil, fmt.Errorf("create conversation: invalid profile id %q", conversation.ProfileID)
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := conversationDoc{
		ID:             primitive.NewObjectID(),
		UserID:         userID,
		UsageID:        usageID,
		ProfileID:      profileID,
		CustomerID:     conversation.CustomerID,
		LoggingEnabled: conversation.LoggingEnabled,
		CreatedAt:      conversation.CreatedAt,
	}
	if conversation.Messages != nil {
		empty := make([]messageDoc, 0)
		doc.Messages = &empty
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("insert conversation: %w", err)
	}

	created := doc.toDomain()
	return &created, nil
}

// FindByID resolves a conversation by its hex object id.
func (r *ConversationRepository) FindByID(ctx context.Context, id string) (*domain.Conversation, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrConversationNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc conversationDoc
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrConversationNotFound
		}
		return nil, fmt.Errorf("find conversation: %w", err)
	}

	conversation := doc.toDomain()
	return &conversation, nil
}

// AppendMessage pushes one message onto the log. The filter requires
// logging_enabled so a racing append can never materialize a messages field
// on a conversation that opted out.
func (r *ConversationRepository) AppendMessage(ctx context.Context, conversationID string, message domain.Message) error {
	oid, err := primitive.ObjectIDFromHex(conversationID)
	if err != nil {
		return domain.ErrConversationNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"_id": oid, "logging_enabled": true}
	update := bson.M{"$push": bson.M{"messages": messageDoc{
		ID:         message.ID,
		Role:       string(message.Role),
		Content:    message.Content,
		TokenCount: message.TokenCount,
		CreatedAt:  message.CreatedAt,
	}}}

	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("append message: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrConversationNotFound
	}
	return nil
}

// EnsureIndexes creates the conversations indexes for per-user and per-usage
// queries.
func (r *ConversationRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}}},
		{Keys: bson.D{{Key: "usage_id", Value: 1}}},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexes)
	return err
}
