package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Hashtag is an upsert-and-increment record in MongoDB. Tag is stored
// lowercase without the leading '#'.
type Hashtag struct {
	ID         primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Tag        string             `json:"tag" bson:"tag"`
	PostsCount int                `json:"posts_count" bson:"posts_count"`
	LastUsedAt time.Time          `json:"last_used_at" bson:"last_used_at"`
}
