package repositories

import (
	"context"
	"time"

	"github.com/appforge-dev/chirper/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// HashtagRepository defines the interface for hashtag records
type HashtagRepository interface {
	UpsertTag(ctx context.Context, tag string) error
	GetTrendingTags(ctx context.Context, since time.Time, limit int64) ([]models.Hashtag, error)
}

// MongoHashtagRepository implements HashtagRepository for MongoDB
type MongoHashtagRepository struct {
	collection *mongo.Collection
}

// NewMongoHashtagRepository creates a new MongoHashtagRepository
func NewMongoHashtagRepository(db *mongo.Database) *MongoHashtagRepository {
	return &MongoHashtagRepository{collection: db.Collection("hashtags")}
}

// UpsertTag increments the tag's post count, creating the record on first use.
func (r *MongoHashtagRepository) UpsertTag(ctx context.Context, tag string) error {
	opts := options.Update().SetUpsert(true)
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"tag": tag},
		bson.M{
			"$inc": bson.M{"posts_count": 1},
			"$set": bson.M{"last_used_at": time.Now()},
		},
		opts,
	)
	return err
}

// GetTrendingTags returns the most used tags since the cutoff.
func (r *MongoHashtagRepository) GetTrendingTags(ctx context.Context, since time.Time, limit int64) ([]models.Hashtag, error) {
	findOptions := options.Find().
		SetSort(bson.D{{Key: "posts_count", Value: -1}}).
		SetLimit(limit)

	cursor, err := r.collection.Find(ctx, bson.M{"last_used_at": bson.M{"$gte": since}}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var tags []models.Hashtag
	if err = cursor.All(ctx, &tags); err != nil {
		return nil, err
	}
	return tags, nil
}
