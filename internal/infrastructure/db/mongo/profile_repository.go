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

const profilesCollection = "profiles"

type ProfileRepository struct {
	coll *mongo.Collection
}

func NewProfileRepository(db *mongo.Database) *ProfileRepository {
	return &ProfileRepository{coll: db.Collection(profilesCollection)}
}

type profileDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Name        string             `bson:"name"`
	Description string             `bson:"description,omitempty"`
	ImageURL    string             `bson:"image_url,omitempty"`
	Visibility  string             `bson:"visibility"`
	Creator     primitive.ObjectID `bson:"creator"`
	CreatedAt   time.Time          `bson:"created_at"`
}

func (d profileDoc) toDomain() domain.Profile {
	return domain.Profile{
		ID:          d.ID.Hex(),
		Name:        d.Name,
		Description: d.Description,
		ImageURL:    d.ImageURL,
		Visibility:  domain.Visibility(d.Visibility),
		CreatorID:   d.Creator.Hex(),
		CreatedAt:   d.CreatedAt,
	}
}

// FindByID resolves a profile by its hex object id. A malformed id is
// reported as not-found rather than as a server error — callers supplied it.
func (r *ProfileRepository) FindByID(ctx context.Context, id string) (*domain.Profile, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrProfileNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc profileDoc
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, fmt.Errorf("find profile: %w", err)
	}

	profile := doc.toDomain()
	return &profile, nil
}

// ListPublic returns all publicly visible profiles.
func (r *ProfileRepository) ListPublic(ctx context.Context) ([]domain.Profile, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cursor, err := r.coll.Find(ctx, bson.M{"visibility": string(domain.VisibilityPublic)})
	if err != nil {
		return nil, fmt.Errorf("list public profiles: %w", err)
	}
	defer cursor.Close(ctx)

	var profiles []domain.Profile
	for cursor.Next(ctx) {
		var doc profileDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode profile: %w", err)
		}
		profiles = append(profiles, doc.toDomain())
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("list public profiles: %w", err)
	}
	return profiles, nil
}

// EnsureIndexes creates the profiles indexes used by the listing and
// ownership queries.
func (r *ProfileRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "visibility", Value: 1}}},
		{Keys: bson.D{{Key: "creator", Value: 1}}},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexes)
	return err
}
