package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ghola/conversation-api/internal/api/metrics"
	"github.com/ghola/conversation-api/internal/core/domain"
)

const usageCollection = "usage_records"

type UsageRepository struct {
	coll *mongo.Collection
}

func NewUsageRepository(db *mongo.Database) *UsageRepository {
	return &UsageRepository{coll: db.Collection(usageCollection)}
}

type usageDoc struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	UserID       primitive.ObjectID `bson:"user_id"`
	Day          time.Time          `bson:"day"`
	MessageCount int64              `bson:"message_count"`
	TokenCount   int64              `bson:"token_count"`
	CreatedAt    time.Time          `bson:"created_at"`
}

func (d usageDoc) toDomain() domain.UsageRecord {
	return domain.UsageRecord{
		ID:           d.ID.Hex(),
		UserID:       d.UserID.Hex(),
		Day:          d.Day,
		MessageCount: d.MessageCount,
		TokenCount:   d.TokenCount,
		CreatedAt:    d.CreatedAt,
	}
}

// FindByUserAndDay looks up the single entry for an exact (user, day) pair.
func (r *UsageRepository) FindByUserAndDay(ctx context.Context, userID string, day time.Time) (*domain.UsageRecord, error) {
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, domain.ErrUsageNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc usageDoc
	if err := r.coll.FindOne(ctx, bson.M{"user_id": uid, "day": day}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUsageNotFound
		}
		return nil, fmt.Errorf("find usage record: %w", err)
	}

	record := doc.toDomain()
	return &record, nil
}

// Create inserts a fresh entry. The unique (user_id, day) index is the sole
// arbiter of the first-request-of-the-day race; losers get ErrUsageExists.
func (r *UsageRepository) Create(ctx context.Context, record *domain.UsageRecord) (*domain.UsageRecord, error) {
	uid, err := primitive.ObjectIDFromHex(record.UserID)
	if err != nil {
		return nil, fmt.Errorf("create usage record: invalid user id %q", record.UserID)
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := usageDoc{
		ID:           primitive.NewObjectID(),
		UserID:       uid,
		Day:          record.Day,
		MessageCount: record.MessageCount,
		TokenCount:   record.TokenCount,
		CreatedAt:    record.CreatedAt,
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrUsageExists
		}
		return nil, fmt.Errorf("insert usage record: %w", err)
	}

	metrics.UsageRecordsCreatedTotal.Inc()
	created := doc.toDomain()
	return &created, nil
}

// IncrementCounters atomically advances the counters via $inc.
func (r *UsageRepository) IncrementCounters(ctx context.Context, usageID string, messages, tokens int64) error {
	oid, err := primitive.ObjectIDFromHex(usageID)
	if err != nil {
		return fmt.Errorf("increment usage: invalid id %q", usageID)
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	update := bson.M{"$inc": bson.M{"message_count": messages, "token_count": tokens}}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return fmt.Errorf("increment usage: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUsageNotFound
	}
	return nil
}

// ListByDay returns every user's entry for the given day.
func (r *UsageRepository) ListByDay(ctx context.Context, day time.Time) ([]domain.UsageRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cursor, err := r.coll.Find(ctx, bson.M{"day": day})
	if err != nil {
		return nil, fmt.Errorf("list usage records: %w", err)
	}
	defer cursor.Close(ctx)

	var records []domain.UsageRecord
	for cursor.Next(ctx) {
		var doc usageDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode usage record: %w", err)
		}
		records = append(records, doc.toDomain())
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("list usage records: %w", err)
	}
	return records, nil
}

// EnsureIndexes creates the UNIQUE compound (user_id, day) index. Without it
// the lazy-create in the handshake would be able to produce two entries for
// the same user and day.
func (r *UsageRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "day", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "day", Value: 1}}},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexes)
	return err
}
