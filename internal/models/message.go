package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Conversation is a pair of participants plus last-activity bookkeeping
// (MongoDB). Participants is stored sorted so the pair is unique.
type Conversation struct {
	ID            primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Participants  []uint             `json:"participants" bson:"participants"`
	LastMessageAt time.Time          `json:"last_message_at" bson:"last_message_at"`
	CreatedAt     time.Time          `json:"created_at" bson:"created_at"`
}

// Message is an append-only direct message (MongoDB). Deletion is
// per-viewer via DeletedFor, never global.
type Message struct {
	ID             primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	ConversationID primitive.ObjectID `json:"conversation_id" bson:"conversation_id"`
	SenderID       uint               `json:"sender_id" bson:"sender_id"`
	ReceiverID     uint               `json:"receiver_id" bson:"receiver_id"`
	Text           string             `json:"text" bson:"text"`
	MediaURL       string             `json:"media_url,omitempty" bson:"media_url,omitempty"`
	IsRead         bool               `json:"is_read" bson:"is_read"`
	DeletedFor     []uint             `json:"-" bson:"deleted_for,omitempty"`
	CreatedAt      time.Time          `json:"created_at" bson:"created_at"`
}

// SendMessageRequest defines the REST request body for sending a DM
type SendMessageRequest struct {
	ReceiverID uint   `json:"receiver_id" validate:"required"`
	Text       string `json:"text" validate:"required,min=1,max=1000"`
	MediaURL   string `json:"media_url,omitempty" validate:"omitempty,url"`
}
