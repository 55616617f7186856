package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Post visibility values.
const (
	VisibilityPublic    = "public"
	VisibilityFollowers = "followers"
)

// PollOption is one choice with its denormalized vote count.
type PollOption struct {
	Text  string `json:"text" bson:"text"`
	Votes int    `json:"votes" bson:"votes"`
}

// Poll is embedded in a post. Votes close at EndsAt.
type Poll struct {
	Options    []PollOption `json:"options" bson:"options"`
	TotalVotes int          `json:"total_votes" bson:"total_votes"`
	EndsAt     time.Time    `json:"ends_at" bson:"ends_at"`
}

// Post represents authored content stored in MongoDB. Engagement counters
// duplicate the Postgres edge collections for read performance; they are
// updated with $inc alongside the edge writes, not transactionally.
type Post struct {
	ID       primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	AuthorID uint               `json:"author_id" bson:"author_id"`
	Content  string             `json:"content" bson:"content"`

	MediaURLs []string `json:"media_urls,omitempty" bson:"media_urls,omitempty"`
	Poll      *Poll    `json:"poll,omitempty" bson:"poll,omitempty"`

	// ReplyTo holds the parent post id for replies; OriginalPost holds the
	// quoted post id for quotes. Both are Mongo ObjectIDs in hex.
	ReplyTo      string `json:"reply_to,omitempty" bson:"reply_to,omitempty"`
	OriginalPost string `json:"original_post,omitempty" bson:"original_post,omitempty"`

	Hashtags []string `json:"hashtags,omitempty" bson:"hashtags,omitempty"`
	Mentions []uint   `json:"mentions,omitempty" bson:"mentions,omitempty"`

	Visibility string `json:"visibility" bson:"visibility"`

	LikesCount     int `json:"likes_count" bson:"likes_count"`
	RepostsCount   int `json:"reposts_count" bson:"reposts_count"`
	QuotesCount    int `json:"quotes_count" bson:"quotes_count"`
	RepliesCount   int `json:"replies_count" bson:"replies_count"`
	BookmarksCount int `json:"bookmarks_count" bson:"bookmarks_count"`
	ViewsCount     int `json:"views_count" bson:"views_count"`

	IsDeleted    bool       `json:"is_deleted" bson:"is_deleted"`
	ScheduledFor *time.Time `json:"scheduled_for,omitempty" bson:"scheduled_for,omitempty"`

	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// CreatePollRequest is the embedded poll payload of a create-post request.
type CreatePollRequest struct {
	Options []string  `json:"options" validate:"required,min=2,max=4,dive,min=1,max=50"`
	EndsAt  time.Time `json:"ends_at" validate:"required"`
}

// CreatePostRequest defines the request body for creating a new post
type CreatePostRequest struct {
	Content      string             `json:"content" validate:"required,min=1,max=280"`
	MediaURLs    []string           `json:"media_urls,omitempty" validate:"omitempty,max=4,dive,url"`
	Poll         *CreatePollRequest `json:"poll,omitempty"`
	Visibility   string             `json:"visibility,omitempty" validate:"omitempty,oneof=public followers"`
	ReplyTo      string             `json:"reply_to,omitempty" validate:"omitempty,len=24,hexadecimal"`
	OriginalPost string             `json:"original_post,omitempty" validate:"omitempty,len=24,hexadecimal"`
	ScheduledFor *time.Time         `json:"scheduled_for,omitempty"`
}

// VotePollRequest defines the request body for voting on a poll
type VotePollRequest struct {
	OptionIndex *int `json:"option_index" validate:"required,min=0"`
}
