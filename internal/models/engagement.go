package models

import "time"

// Like is a (user, post) edge. PostID is the MongoDB ObjectID as a string.
type Like struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"index;uniqueIndex:idx_user_post_like"`
	PostID    string    `json:"post_id" gorm:"index;uniqueIndex:idx_user_post_like;size:24"`
	CreatedAt time.Time `json:"created_at"`
}

// Repost is a (user, post) edge. A quote is not a Repost: it creates a
// second post referencing the original and bumps quotes_count instead.
type Repost struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"index;uniqueIndex:idx_user_post_repost"`
	PostID    string    `json:"post_id" gorm:"index;uniqueIndex:idx_user_post_repost;size:24"`
	CreatedAt time.Time `json:"created_at"`
}

// Bookmark is a private (user, post) edge. Never triggers fan-out.
type Bookmark struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"index;uniqueIndex:idx_user_post_bookmark"`
	PostID    string    `json:"post_id" gorm:"index;uniqueIndex:idx_user_post_bookmark;size:24"`
	CreatedAt time.Time `json:"created_at"`
}

// PollVote is a (user, post) edge recording which option was chosen.
// The unique pair index is what prevents double voting.
type PollVote struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	UserID      uint      `json:"user_id" gorm:"index;uniqueIndex:idx_user_post_vote"`
	PostID      string    `json:"post_id" gorm:"index;uniqueIndex:idx_user_post_vote;size:24"`
	OptionIndex int       `json:"option_index"`
	CreatedAt   time.Time `json:"created_at"`
}
