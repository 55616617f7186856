package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/appforge-dev/chirper/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MessageRepository defines the interface for conversations and direct
// messages. Messages are append-only; deletion is per viewer.
type MessageRepository interface {
	GetOrCreateConversation(ctx context.Context, a, b uint) (*models.Conversation, error)
	ListConversations(ctx context.Context, userID uint, skip, limit int64) ([]models.Conversation, int64, error)
	CreateMessage(ctx context.Context, message *models.Message) error
	ListMessages(ctx context.Context, conversationID string, viewerID uint, skip, limit int64) ([]models.Message, int64, error)
	GetConversationByID(ctx context.Context, id string) (*models.Conversation, error)
	MarkConversationRead(ctx context.Context, conversationID string, viewerID uint) error
	DeleteMessageForViewer(ctx context.Context, messageID string, viewerID uint) error
}

// MongoMessageRepository implements MessageRepository for MongoDB
type MongoMessageRepository struct {
	conversations *mongo.Collection
	messages      *mongo.Collection
}

// NewMongoMessageRepository creates a new MongoMessageRepository
func NewMongoMessageRepository(db *mongo.Database) *MongoMessageRepository {
	return &MongoMessageRepository{
		conversations: db.Collection("conversations"),
		messages:      db.Collection("messages"),
	}
}

// GetOrCreateConversation finds the conversation between a and b, creating
// it on first contact. Participants are stored smallest id first so the
// pair is a stable key.
func (r *MongoMessageRepository) GetOrCreateConversation(ctx context.Context, a, b uint) (*models.Conversation, error) {
	if a > b {
		a, b = b, a
	}
	participants := []uint{a, b}

	var conversation models.Conversation
	err := r.conversations.FindOne(ctx, bson.M{"participants": participants}).Decode(&conversation)
	if err == nil {
		return &conversation, nil
	}
	if err != mongo.ErrNoDocuments {
		return nil, err
	}

	conversation = models.Conversation{
		ID:            primitive.NewObjectID(),
		Participants:  participants,
		LastMessageAt: time.Now(),
		CreatedAt:     time.Now(),
	}
	if _, err := r.conversations.InsertOne(ctx, conversation); err != nil {
		return nil, err
	}
	return &conversation, nil
}

func (r *MongoMessageRepository) ListConversations(ctx context.Context, userID uint, skip, limit int64) ([]models.Conversation, int64, error) {
	filter := bson.M{"participants": userID}

	total, err := r.conversations.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	findOptions := options.Find().
		SetSort(bson.D{{Key: "last_message_at", Value: -1}}).
		SetSkip(skip).SetLimit(limit)
	cursor, err := r.conversations.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var conversations []models.Conversation
	if err = cursor.All(ctx, &conversations); err != nil {
		return nil, 0, err
	}
	return conversations, total, nil
}

// CreateMessage persists the message and bumps the conversation's
// last-activity timestamp.
func (r *MongoMessageRepository) CreateMessage(ctx context.Context, message *models.Message) error {
	message.ID = primitive.NewObjectID()
	message.CreatedAt = time.Now()
	if _, err := r.messages.InsertOne(ctx, message); err != nil {
		return err
	}

	_, err := r.conversations.UpdateOne(ctx,
		bson.M{"_id": message.ConversationID},
		bson.M{"$set": bson.M{"last_message_at": message.CreatedAt}})
	return err
}

func (r *MongoMessageRepository) GetConversationByID(ctx context.Context, id string) (*models.Conversation, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid conversation ID format: %w", err)
	}

	var conversation models.Conversation
	err = r.conversations.FindOne(ctx, bson.M{"_id": objID}).Decode(&conversation)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("conversation not found")
		}
		return nil, err
	}
	return &conversation, nil
}

// ListMessages returns a page of messages not deleted for the viewer,
// newest first.
func (r *MongoMessageRepository) ListMessages(ctx context.Context, conversationID string, viewerID uint, skip, limit int64) ([]models.Message, int64, error) {
	objID, err := primitive.ObjectIDFromHex(conversationID)
	if err != nil {
		return nil, 0, fmt.Errorf("invalid conversation ID format: %w", err)
	}

	filter := bson.M{
		"conversation_id": objID,
		"deleted_for":     bson.M{"$ne": viewerID},
	}

	total, err := r.messages.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	findOptions := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(skip).SetLimit(limit)
	cursor, err := r.messages.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var messages []models.Message
	if err = cursor.All(ctx, &messages); err != nil {
		return nil, 0, err
	}
	return messages, total, nil
}

// MarkConversationRead marks all messages addressed to the viewer as read.
func (r *MongoMessageRepository) MarkConversationRead(ctx context.Context, conversationID string, viewerID uint) error {
	objID, err := primitive.ObjectIDFromHex(conversationID)
	if err != nil {
		return fmt.Errorf("invalid conversation ID format: %w", err)
	}
	_, err = r.messages.UpdateMany(ctx,
		bson.M{"conversation_id": objID, "receiver_id": viewerID, "is_read": false},
		bson.M{"$set": bson.M{"is_read": true}})
	return err
}

// DeleteMessageForViewer hides the message from one participant only.
func (r *MongoMessageRepository) DeleteMessageForViewer(ctx context.Context, messageID string, viewerID uint) error {
	objID, err := primitive.ObjectIDFromHex(messageID)
	if err != nil {
		return fmt.Errorf("invalid message ID format: %w", err)
	}
	res, err := r.messages.UpdateOne(ctx,
		bson.M{"_id": objID},
		bson.M{"$addToSet": bson.M{"deleted_for": viewerID}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("message not found")
	}
	return nil
}
