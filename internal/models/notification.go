package models

import "time"

// Notification types produced by the fan-out bus.
const (
	NotificationLike    = "like"
	NotificationRepost  = "repost"
	NotificationReply   = "reply"
	NotificationQuote   = "quote"
	NotificationFollow  = "follow"
	NotificationMention = "mention"
	NotificationDM      = "dm"
)

// Notification is a per-recipient inbox record (PostgreSQL). It is only
// ever created as a side effect of another mutation.
type Notification struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Type        string    `json:"type" gorm:"size:30;index"`
	ActorID     uint      `json:"actor_id" gorm:"index"`
	RecipientID uint      `json:"recipient_id" gorm:"index"`
	PostID      string    `json:"post_id,omitempty" gorm:"size:24"`
	Message     string    `json:"message"`
	IsRead      bool      `json:"is_read" gorm:"default:false;index"`
	IsDeleted   bool      `json:"is_deleted" gorm:"default:false"`
	CreatedAt   time.Time `json:"created_at" gorm:"index"`
}
