package models

import "time"

// Block is a directed edge that removes follow edges in both directions at
// creation time and forbids new ones while it exists.
type Block struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	BlockerID uint      `json:"blocker_id" gorm:"index;uniqueIndex:idx_blocker_blocked"`
	BlockedID uint      `json:"blocked_id" gorm:"index;uniqueIndex:idx_blocker_blocked"`
	CreatedAt time.Time `json:"created_at"`
}

// Mute is a directed edge that only suppresses the muted user's posts from
// the muter's home timeline. Access is unaffected.
type Mute struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	MuterID   uint      `json:"muter_id" gorm:"index;uniqueIndex:idx_muter_muted"`
	MutedID   uint      `json:"muted_id" gorm:"index;uniqueIndex:idx_muter_muted"`
	CreatedAt time.Time `json:"created_at"`
}
