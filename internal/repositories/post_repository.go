package repositories

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/appforge-dev/chirper/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	CreatePost(ctx context.Context, post *models.Post) error
	GetPostByID(ctx context.Context, id string) (*models.Post, error)
	SoftDeletePost(ctx context.Context, id string) error
	GetTimeline(ctx context.Context, authorIDs []uint, skip, limit int64) ([]models.Post, int64, error)
	GetPostsByAuthor(ctx context.Context, authorID uint, includeReplies bool, skip, limit int64) ([]models.Post, int64, error)
	GetReplies(ctx context.Context, postID string, skip, limit int64) ([]models.Post, int64, error)
	GetPostsByIDs(ctx context.Context, ids []string) ([]models.Post, error)
	GetTrending(ctx context.Context, since time.Time, skip, limit int64) ([]models.Post, int64, error)
	SearchPosts(ctx context.Context, query string, skip, limit int64) ([]models.Post, int64, error)
	AdjustCounter(ctx context.Context, postID, field string, delta int) error
	AdjustPollVote(ctx context.Context, postID string, optionIndex, delta int) error
}

// MongoPostRepository implements PostRepository for MongoDB
type MongoPostRepository struct {
	collection *mongo.Collection
}

// NewMongoPostRepository creates a new MongoPostRepository
func NewMongoPostRepository(db *mongo.Database) *MongoPostRepository {
	return &MongoPostRepository{collection: db.Collection("posts")}
}

// timelineFilter selects posts visible on a home timeline at queryTime:
// author in set, not soft-deleted, and not scheduled for the future.
func timelineFilter(authorIDs []uint, queryTime time.Time) bson.M {
	return bson.M{
		"author_id":  bson.M{"$in": authorIDs},
		"is_deleted": false,
		"$or": bson.A{
			bson.M{"scheduled_for": bson.M{"$exists": false}},
			bson.M{"scheduled_for": bson.M{"$lte": queryTime}},
		},
	}
}

// trendingFilter selects public, non-deleted posts created since the cutoff.
func trendingFilter(since time.Time) bson.M {
	return bson.M{
		"visibility": models.VisibilityPublic,
		"is_deleted": false,
		"created_at": bson.M{"$gte": since},
	}
}

// searchFilter does a case-insensitive substring match on the post body,
// public and non-deleted posts only.
func searchFilter(query string) bson.M {
	return bson.M{
		"content":    bson.M{"$regex": regexp.QuoteMeta(query), "$options": "i"},
		"visibility": models.VisibilityPublic,
		"is_deleted": false,
	}
}

func (r *MongoPostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	post.ID = primitive.NewObjectID()
	post.CreatedAt = time.Now()
	post.UpdatedAt = post.CreatedAt
	_, err := r.collection.InsertOne(ctx, post)
	return err
}

func (r *MongoPostRepository) GetPostByID(ctx context.Context, id string) (*models.Post, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid post ID format: %w", err)
	}

	var post models.Post
	err = r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&post)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("post not found")
		}
		return nil, err
	}
	return &post, nil
}

// SoftDeletePost marks the post deleted; the document stays in place.
func (r *MongoPostRepository) SoftDeletePost(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid post ID format: %w", err)
	}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": objID},
		bson.M{"$set": bson.M{"is_deleted": true, "updated_at": time.Now()}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("post not found")
	}
	return nil
}

func (r *MongoPostRepository) GetTimeline(ctx context.Context, authorIDs []uint, skip, limit int64) ([]models.Post, int64, error) {
	filter := timelineFilter(authorIDs, time.Now())
	return r.findPage(ctx, filter, bson.D{{Key: "created_at", Value: -1}}, skip, limit)
}

func (r *MongoPostRepository) GetPostsByAuthor(ctx context.Context, authorID uint, includeReplies bool, skip, limit int64) ([]models.Post, int64, error) {
	filter := bson.M{"author_id": authorID, "is_deleted": false}
	if !includeReplies {
		filter["reply_to"] = bson.M{"$exists": false}
	}
	return r.findPage(ctx, filter, bson.D{{Key: "created_at", Value: -1}}, skip, limit)
}

func (r *MongoPostRepository) GetReplies(ctx context.Context, postID string, skip, limit int64) ([]models.Post, int64, error) {
	filter := bson.M{"reply_to": postID, "is_deleted": false}
	return r.findPage(ctx, filter, bson.D{{Key: "created_at", Value: -1}}, skip, limit)
}

func (r *MongoPostRepository) GetPostsByIDs(ctx context.Context, ids []string) ([]models.Post, error) {
	objIDs := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		objID, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			continue
		}
		objIDs = append(objIDs, objID)
	}
	if len(objIDs) == 0 {
		return nil, nil
	}

	var posts []models.Post
	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": objIDs}, "is_deleted": false})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// GetTrending orders by raw engagement, no decay function.
func (r *MongoPostRepository) GetTrending(ctx context.Context, since time.Time, skip, limit int64) ([]models.Post, int64, error) {
	sort := bson.D{
		{Key: "likes_count", Value: -1},
		{Key: "reposts_count", Value: -1},
		{Key: "replies_count", Value: -1},
	}
	return r.findPage(ctx, trendingFilter(since), sort, skip, limit)
}

func (r *MongoPostRepository) SearchPosts(ctx context.Context, query string, skip, limit int64) ([]models.Post, int64, error) {
	return r.findPage(ctx, searchFilter(query), bson.D{{Key: "created_at", Value: -1}}, skip, limit)
}

func (r *MongoPostRepository) AdjustCounter(ctx context.Context, postID, field string, delta int) error {
	objID, err := primitive.ObjectIDFromHex(postID)
	if err != nil {
		return fmt.Errorf("invalid post ID format: %w", err)
	}
	_, err = r.collection.UpdateOne(ctx, bson.M{"_id": objID}, bson.M{"$inc": bson.M{field: delta}})
	return err
}

// AdjustPollVote bumps one option's votes and the poll total together.
// The two $inc fields land in a single update, but nothing reconciles them
// against the vote edges after the fact.
func (r *MongoPostRepository) AdjustPollVote(ctx context.Context, postID string, optionIndex, delta int) error {
	objID, err := primitive.ObjectIDFromHex(postID)
	if err != nil {
		return fmt.Errorf("invalid post ID format: %w", err)
	}
	_, err = r.collection.UpdateOne(ctx, bson.M{"_id": objID}, bson.M{"$inc": bson.M{
		fmt.Sprintf("poll.options.%d.votes", optionIndex): delta,
		"poll.total_votes": delta,
	}})
	return err
}

func (r *MongoPostRepository) findPage(ctx context.Context, filter bson.M, sort bson.D, skip, limit int64) ([]models.Post, int64, error) {
	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	var posts []models.Post
	findOptions := options.Find().SetSkip(skip).SetLimit(limit).SetSort(sort)
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &posts); err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}
