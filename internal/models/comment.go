package models

import (
	"time"
)

// Comment represents a single-level comment on a feed. Comments are
// append-only; there is no update path.
type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	FeedID    uint      `gorm:"not null;index" json:"feed_id"`
	UserID    uint      `gorm:"not null" json:"user_id"`
	User      User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user"`
	Content   string    `gorm:"type:text;not null" json:"text_content"`
	CreatedAt time.Time `json:"created_at"`
}
